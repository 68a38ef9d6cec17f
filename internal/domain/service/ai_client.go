package service

import (
	"context"

	"github.com/wolfitem/ai-news/internal/domain/model"
)

// SummaryProvider 定义生成式摘要提供方接口，返回结构化输出
type SummaryProvider interface {
	// Name 返回提供方名称，用于日志和指标
	Name() string
	// Invoke 以提示词调用模型并返回 {summary, sentimentHint}
	Invoke(ctx context.Context, prompt string) (model.SummaryOutput, error)
}

// ArticleSummarizer 为一篇文章生成摘要和情感提示
type ArticleSummarizer interface {
	Summarize(ctx context.Context, article model.Article) (model.SummaryOutput, error)
}

// ContentProvider 根据URL抓取并解析正文
type ContentProvider interface {
	Fetch(ctx context.Context, url string) (model.ExtractedContent, error)
}

// SearchProvider 第三方新闻搜索
type SearchProvider interface {
	Name() string
	Search(ctx context.Context, query string, maxResults int) (model.ProviderSearchResult, error)
}

// ArticleStore 文章持久化，按 urlHash 原子地创建或更新
type ArticleStore interface {
	// FindByURLHash 查询记录，不存在时返回 (nil, nil)
	FindByURLHash(ctx context.Context, urlHash string) (*model.Article, error)
	// UpsertByURLHash 以 urlHash 为键创建或更新记录
	UpsertByURLHash(ctx context.Context, urlHash string, article model.Article) (*model.Article, error)
	// ListHistory 查询会话内已完成的分析记录
	ListHistory(ctx context.Context, query model.HistoryQuery) ([]model.Article, int, error)
	// Ping 检查存储可用性
	Ping(ctx context.Context) error
}
