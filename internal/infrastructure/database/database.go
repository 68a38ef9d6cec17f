package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/wolfitem/ai-news/internal/infrastructure/logger"
)

// Database 定义数据库接口
type Database interface {
	// Init 初始化数据库
	Init() error
	// Close 关闭数据库连接
	Close() error
	// Ping 检查数据库连接
	Ping(ctx context.Context) error
	// ExecContext 执行SQL语句
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	// QueryContext 查询数据
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	// QueryRowContext 查询单行数据
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// SQLiteDatabase 实现Database接口的SQLite数据库
type SQLiteDatabase struct {
	db         *sql.DB
	dbFilePath string
}

// NewSQLiteDatabase 创建一个新的SQLite数据库实例
func NewSQLiteDatabase(dbFilePath string) *SQLiteDatabase {
	return &SQLiteDatabase{
		dbFilePath: dbFilePath,
	}
}

// Init 打开连接并创建表结构
func (s *SQLiteDatabase) Init() error {
	logger.Info("初始化SQLite数据库", "db_path", s.dbFilePath)

	if dbDir := filepath.Dir(s.dbFilePath); dbDir != "" {
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return fmt.Errorf("创建数据库目录失败: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", s.dbFilePath+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return fmt.Errorf("打开数据库连接失败: %w", err)
	}
	// SQLite 单写者
	db.SetMaxOpenConns(1)
	s.db = db

	if err := db.Ping(); err != nil {
		return fmt.Errorf("数据库连接测试失败: %w", err)
	}

	if err := s.createTables(); err != nil {
		return fmt.Errorf("创建数据库表失败: %w", err)
	}

	logger.Info("SQLite数据库初始化成功")
	return nil
}

// createTables 创建必要的数据库表
func (s *SQLiteDatabase) createTables() error {
	articleTableSQL := `
	CREATE TABLE IF NOT EXISTS articles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url_hash TEXT NOT NULL UNIQUE,
		url TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		content TEXT NOT NULL DEFAULT '',
		image TEXT NOT NULL DEFAULT '',
		published_at TEXT NOT NULL DEFAULT '',
		source_name TEXT NOT NULL DEFAULT '',
		source_url TEXT NOT NULL DEFAULT '',
		analysis TEXT,
		sentiment_label TEXT NOT NULL DEFAULT '',
		session_id TEXT NOT NULL DEFAULT '',
		search_query TEXT NOT NULL DEFAULT '',
		retry_count INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'pending',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_articles_session ON articles(session_id, status, created_at);
	`

	if _, err := s.db.Exec(articleTableSQL); err != nil {
		return fmt.Errorf("创建文章表失败: %w", err)
	}

	logger.Debug("数据库表创建成功")
	return nil
}

// Close 关闭数据库连接
func (s *SQLiteDatabase) Close() error {
	if s.db != nil {
		logger.Info("关闭数据库连接")
		return s.db.Close()
	}
	return nil
}

// Ping 检查数据库连接
func (s *SQLiteDatabase) Ping(ctx context.Context) error {
	if s.db == nil {
		return fmt.Errorf("数据库未初始化")
	}
	return s.db.PingContext(ctx)
}

// ExecContext 执行SQL语句
func (s *SQLiteDatabase) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return s.db.ExecContext(ctx, query, args...)
}

// QueryContext 查询数据
func (s *SQLiteDatabase) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, query, args...)
}

// QueryRowContext 查询单行数据
func (s *SQLiteDatabase) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return s.db.QueryRowContext(ctx, query, args...)
}
