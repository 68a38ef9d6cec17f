package service

import (
	"context"
	"time"

	"github.com/wolfitem/ai-news/internal/domain/model"
	"github.com/wolfitem/ai-news/internal/infrastructure/logger"
	"github.com/wolfitem/ai-news/internal/middleware"
)

// ContentEnricher 尽力抓取文章全文，任何失败都返回原文章
type ContentEnricher struct {
	provider ContentProvider
	metrics  *middleware.MetricsCollector
}

// NewContentEnricher 创建正文抽取器，provider 为 nil 时不做任何处理
func NewContentEnricher(provider ContentProvider, metrics *middleware.MetricsCollector) *ContentEnricher {
	return &ContentEnricher{provider: provider, metrics: metrics}
}

// Enrich 抓取成功时覆盖 content；title 和 description 只在抽取结果更长时覆盖
func (e *ContentEnricher) Enrich(ctx context.Context, article model.Article) model.Article {
	if e == nil || e.provider == nil || article.URL == "" {
		return article
	}

	start := time.Now()
	extracted, err := e.provider.Fetch(ctx, article.URL)
	if err != nil {
		logger.Warn("正文抽取失败，使用原文章数据", "url", article.URL, "error", err)
		e.metrics.RecordProviderCall("extractor", middleware.OutcomeFailure, time.Since(start))
		return article
	}
	e.metrics.RecordProviderCall("extractor", middleware.OutcomeSuccess, time.Since(start))

	if extracted.Content == "" {
		return article
	}

	enriched := article
	enriched.Content = extracted.Content
	if len([]rune(extracted.Title)) > len([]rune(article.Title)) {
		enriched.Title = extracted.Title
	}
	if len([]rune(extracted.Description)) > len([]rune(article.Description)) {
		enriched.Description = extracted.Description
	}

	logger.Debug("正文抽取成功", "url", article.URL, "content_length", len(extracted.Content))
	return enriched
}
