package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	appservice "github.com/wolfitem/ai-news/internal/application/service"
	"github.com/wolfitem/ai-news/internal/domain/model"
	"github.com/wolfitem/ai-news/internal/infrastructure/logger"
	"github.com/wolfitem/ai-news/internal/middleware"
	"golang.org/x/time/rate"
)

// SessionHeader 会话标识请求头
const SessionHeader = "X-Session-ID"

const anonymousSession = "anonymous"

// Server HTTP API 服务
type Server struct {
	echo     *echo.Echo
	address  string
	news     appservice.NewsService
	analysis appservice.AnalysisService
	metrics  *middleware.MetricsCollector
}

// New 创建HTTP服务并注册路由
func New(config model.ServerConfig, news appservice.NewsService, analysis appservice.AnalysisService, metrics *middleware.MetricsCollector) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:     e,
		address:  config.Address,
		news:     news,
		analysis: analysis,
		metrics:  metrics,
	}
	if s.address == "" {
		s.address = ":3000"
	}

	e.HTTPErrorHandler = s.handleError
	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(requestLogger())

	api := e.Group("/api")
	if config.RateLimit > 0 {
		api.Use(echomw.RateLimiter(echomw.NewRateLimiterMemoryStore(rate.Limit(config.RateLimit))))
	}

	api.GET("/health", s.health)

	newsGroup := api.Group("/news")
	newsGroup.GET("/search", s.searchNews)
	newsGroup.GET("/status", s.newsStatus)

	analysisGroup := api.Group("/analysis")
	analysisGroup.POST("/article", s.analyzeArticle)
	analysisGroup.POST("/batch", s.analyzeBatch)
	analysisGroup.GET("/history", s.history)
	analysisGroup.GET("/status", s.analysisStatus)

	if metrics != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{})))
	}
	return s
}

// Handler 返回底层 http.Handler
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start 启动服务，直到 ctx 取消后优雅关闭
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP服务启动", "address", s.address)
		if err := s.echo.Start(s.address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("正在关闭HTTP服务")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.echo.Shutdown(shutdownCtx)
}

// health 健康检查
func (s *Server) health(c echo.Context) error {
	status := s.analysis.Status(c.Request().Context())
	database := "disconnected"
	if status.Database.Connected {
		database = "connected"
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
		"database":  database,
		"memory":    logger.ReadMemStats(),
	})
}

// sessionID 读取会话标识，缺省为 anonymous
func sessionID(c echo.Context) string {
	if id := c.Request().Header.Get(SessionHeader); id != "" {
		return id
	}
	return anonymousSession
}

// requestLogger 使用应用日志记录每个请求
func requestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			req := c.Request()
			logger.Debug("HTTP请求",
				"method", req.Method,
				"path", req.URL.Path,
				"status", c.Response().Status,
				"duration", time.Since(start),
				"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
			)
			return nil
		}
	}
}
