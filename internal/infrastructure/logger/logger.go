package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu    sync.RWMutex
	sugar *zap.SugaredLogger
	base  *zap.Logger
)

// Config 日志配置
type Config struct {
	// 日志级别: debug, info, warn, error
	Level string `mapstructure:"level"`
	// 是否输出到控制台
	Console bool `mapstructure:"console"`
	// 日志文件路径，为空时只输出到控制台
	FilePath string `mapstructure:"file_path"`
	// 单个日志文件最大大小，单位MB
	MaxSize int `mapstructure:"max_size"`
	// 最多保留的旧日志文件数量
	MaxBackups int `mapstructure:"max_backups"`
	// 保留日志文件的最大天数
	MaxAge int `mapstructure:"max_age"`
	// 是否压缩旧日志文件
	Compress bool `mapstructure:"compress"`
}

// Init 初始化日志系统
func Init(config Config) error {
	if config.Level == "" {
		config.Level = "info"
	}
	if config.MaxSize == 0 {
		config.MaxSize = 100
	}
	if config.MaxBackups == 0 {
		config.MaxBackups = 3
	}
	if config.MaxAge == 0 {
		config.MaxAge = 28
	}

	level, err := zapcore.ParseLevel(config.Level)
	if err != nil {
		return fmt.Errorf("无效的日志级别 '%s': %w", config.Level, err)
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	var cores []zapcore.Core

	// 文件输出
	if config.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(config.FilePath), 0755); err != nil {
			return fmt.Errorf("创建日志目录失败: %w", err)
		}
		fileWriter := zapcore.AddSync(&lumberjack.Logger{
			Filename:   config.FilePath,
			MaxSize:    config.MaxSize,
			MaxBackups: config.MaxBackups,
			MaxAge:     config.MaxAge,
			Compress:   config.Compress,
		})
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), fileWriter, level))
	}

	// 控制台输出；未配置文件时总是输出到控制台
	if config.Console || config.FilePath == "" {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderConfig),
			zapcore.AddSync(os.Stdout),
			level,
		))
	}

	l := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(1))

	mu.Lock()
	base = l
	sugar = l.Sugar()
	mu.Unlock()

	Info("日志系统初始化成功", "level", config.Level, "file", config.FilePath)
	return nil
}

func current() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return sugar
}

// Sync 同步日志缓冲区到输出
func Sync() error {
	mu.RLock()
	defer mu.RUnlock()
	if base != nil {
		return base.Sync()
	}
	return nil
}

// Debug 记录调试级别日志
func Debug(msg string, keysAndValues ...interface{}) {
	if s := current(); s != nil {
		s.Debugw(msg, keysAndValues...)
	}
}

// Info 记录信息级别日志
func Info(msg string, keysAndValues ...interface{}) {
	if s := current(); s != nil {
		s.Infow(msg, keysAndValues...)
	}
}

// Warn 记录警告级别日志
func Warn(msg string, keysAndValues ...interface{}) {
	if s := current(); s != nil {
		s.Warnw(msg, keysAndValues...)
	}
}

// Error 记录错误级别日志
func Error(msg string, keysAndValues ...interface{}) {
	if s := current(); s != nil {
		s.Errorw(msg, keysAndValues...)
	}
}

// WithContext 创建带有组件名的日志记录器
func WithContext(component string) *ContextLogger {
	return &ContextLogger{component: component}
}

// ContextLogger 在每条日志前附加组件名
type ContextLogger struct {
	component string
}

func (c *ContextLogger) kv(keysAndValues []interface{}) []interface{} {
	return append([]interface{}{"component", c.component}, keysAndValues...)
}

func (c *ContextLogger) Debug(msg string, keysAndValues ...interface{}) {
	Debug(msg, c.kv(keysAndValues)...)
}

func (c *ContextLogger) Info(msg string, keysAndValues ...interface{}) {
	Info(msg, c.kv(keysAndValues)...)
}

func (c *ContextLogger) Warn(msg string, keysAndValues ...interface{}) {
	Warn(msg, c.kv(keysAndValues)...)
}

func (c *ContextLogger) Error(msg string, keysAndValues ...interface{}) {
	Error(msg, c.kv(keysAndValues)...)
}

// TimeTrack 记录函数执行时间
func TimeTrack(name string) func() {
	start := time.Now()
	return func() {
		Debug("函数执行时间统计", "function", name, "duration", time.Since(start))
	}
}
