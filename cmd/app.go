package cmd

import (
	"context"
	"fmt"
	"time"

	appservice "github.com/wolfitem/ai-news/internal/application/service"
	"github.com/wolfitem/ai-news/internal/domain/model"
	"github.com/wolfitem/ai-news/internal/domain/service"
	"github.com/wolfitem/ai-news/internal/infrastructure/ai"
	"github.com/wolfitem/ai-news/internal/infrastructure/database"
	"github.com/wolfitem/ai-news/internal/infrastructure/extractor"
	"github.com/wolfitem/ai-news/internal/infrastructure/logger"
	"github.com/wolfitem/ai-news/internal/infrastructure/news"
	"github.com/wolfitem/ai-news/internal/middleware"
)

// application 进程内唯一的一组服务实例
type application struct {
	config   model.AppConfig
	db       *database.SQLiteDatabase
	metrics  *middleware.MetricsCollector
	news     appservice.NewsService
	analysis appservice.AnalysisService
}

// newApplication 按配置装配全部组件
func newApplication(ctx context.Context, config model.AppConfig) (*application, error) {
	defer logger.TimeTrack("newApplication")()

	app := &application{
		config:  config,
		metrics: middleware.NewMetricsCollector(),
	}

	app.db = database.NewSQLiteDatabase(config.Database.FilePath)
	if err := app.db.Init(); err != nil {
		return nil, fmt.Errorf("初始化数据库失败: %w", err)
	}
	store := database.NewSQLiteArticleRepository(app.db)

	searchProvider, err := newSearchProvider(config.News)
	if err != nil {
		app.Close()
		return nil, err
	}
	searchQuota := middleware.NewDailyQuotaTracker(searchProvider.Name(), config.News.DailyLimit)
	app.news = appservice.NewNewsService(searchProvider, service.NewTTLCache(config.News.CacheTTL), searchQuota, config.News, app.metrics)

	summaryProvider := newSummaryProvider(ctx, config)
	summarizerQuota := middleware.NewQuotaTracker("summarizer", config.Summarizer.PerMinuteLimit, time.Minute)
	summarizer := service.NewSummarizationClient(summaryProvider, summarizerQuota, app.metrics)

	opts := []appservice.AnalysisOption{appservice.WithAnalysisMetrics(app.metrics)}
	if config.Extractor.Enabled {
		contentExtractor := extractor.NewReadabilityExtractor(config.Extractor)
		opts = append(opts, appservice.WithEnricher(service.NewContentEnricher(contentExtractor, app.metrics)))
	}
	app.analysis = appservice.NewAnalysisService(store, summarizer, config.Analysis, opts...)

	logger.Info("服务装配完成",
		"search_provider", searchProvider.Name(),
		"summarizer_available", summaryProvider != nil,
		"extractor_enabled", config.Extractor.Enabled,
		"db_path", config.Database.FilePath)
	return app, nil
}

// Close 释放数据库连接
func (a *application) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			logger.Error("关闭数据库失败", "error", err)
		}
	}
}

// newSearchProvider 根据 news.provider 创建搜索提供方
func newSearchProvider(config model.NewsConfig) (service.SearchProvider, error) {
	validator := service.NewValidator()

	switch config.Provider {
	case "", "gnews":
		apiKey, err := validator.GetAPIKey("GNEWS_API_KEY", config.APIKey)
		if err != nil {
			return nil, fmt.Errorf("GNews配置错误: %w", err)
		}
		config.APIKey = apiKey
		return news.NewGNewsClient(config), nil
	case "feed":
		return news.NewFeedProvider(config)
	default:
		return nil, fmt.Errorf("不支持的搜索提供方: %s", config.Provider)
	}
}

// newSummaryProvider 根据 summarizer.provider 创建摘要提供方，未配置密钥时返回 nil 使用启发式摘要
func newSummaryProvider(ctx context.Context, config model.AppConfig) service.SummaryProvider {
	validator := service.NewValidator()

	switch config.Summarizer.Provider {
	case "", "gemini":
		apiKey, err := validator.GetAPIKey("GEMINI_API_KEY", config.Gemini.APIKey)
		if err != nil {
			logger.Warn("未配置Gemini，使用启发式摘要", "error", err)
			return nil
		}
		config.Gemini.APIKey = apiKey
		client, err := ai.NewGeminiClient(ctx, config.Gemini)
		if err != nil {
			logger.Warn("Gemini客户端初始化失败，使用启发式摘要", "error", err)
			return nil
		}
		return client
	case "deepseek":
		apiKey, err := validator.GetAPIKey("DEEPSEEK_API_KEY", config.Deepseek.APIKey)
		if err != nil {
			logger.Warn("未配置Deepseek，使用启发式摘要", "error", err)
			return nil
		}
		config.Deepseek.APIKey = apiKey
		client, err := ai.NewDeepseekClient(config.Deepseek)
		if err != nil {
			logger.Warn("Deepseek客户端初始化失败，使用启发式摘要", "error", err)
			return nil
		}
		return client
	default:
		logger.Warn("未知的摘要提供方，使用启发式摘要", "provider", config.Summarizer.Provider)
		return nil
	}
}
