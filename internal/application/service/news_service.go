package service

import (
	"context"
	"fmt"

	"github.com/wolfitem/ai-news/internal/domain/model"
	"github.com/wolfitem/ai-news/internal/domain/service"
	"github.com/wolfitem/ai-news/internal/infrastructure/logger"
	"github.com/wolfitem/ai-news/internal/middleware"
)

const defaultMaxResults = 100

// NewsService 新闻搜索的应用服务接口
type NewsService interface {
	// SearchNews 搜索并分页，配额耗尽且无缓存时返回 QuotaExceeded
	SearchNews(ctx context.Context, query string, page, limit int) (*model.SearchResult, error)
	// CacheStats 搜索缓存统计
	CacheStats() model.CacheStats
	// RemainingRequests 今日剩余的搜索请求数
	RemainingRequests() int
	// Status 搜索服务状态
	Status() model.NewsStatus
}

// newsService 实现NewsService接口
type newsService struct {
	provider     service.SearchProvider
	cache        *service.TTLCache
	quota        *middleware.QuotaTracker
	validator    *service.Validator
	metrics      *middleware.MetricsCollector
	withMetrics  middleware.WithMetrics
	maxResults   int
	maxDisplayed int
	log          *logger.ContextLogger
}

// NewNewsService 创建新闻搜索服务，cache 同时保存完整结果和分页结果
func NewNewsService(provider service.SearchProvider, cache *service.TTLCache, quota *middleware.QuotaTracker, config model.NewsConfig, metrics *middleware.MetricsCollector) NewsService {
	maxResults := config.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	maxDisplayed := config.MaxDisplayed
	if maxDisplayed <= 0 {
		maxDisplayed = service.DefaultMaxDisplayed
	}
	return &newsService{
		provider:     provider,
		cache:        cache,
		quota:        quota,
		validator:    service.NewValidator(),
		metrics:      metrics,
		withMetrics:  middleware.NewMetricsMiddleware(metrics, provider.Name()),
		maxResults:   maxResults,
		maxDisplayed: maxDisplayed,
		log:          logger.WithContext("news"),
	}
}

// SearchNews 分页缓存 → 完整结果缓存 → 调用搜索接口，然后循环分页
func (s *newsService) SearchNews(ctx context.Context, query string, page, limit int) (*model.SearchResult, error) {
	query = service.NormalizeQuery(query)
	if err := s.validator.ValidateSearch(model.SearchParams{Query: query, Page: page, Limit: limit}); err != nil {
		return nil, err
	}

	pageKey := service.PageCacheKey(query, page, limit)
	if cached, ok := s.cache.Get(pageKey); ok {
		s.metrics.RecordCacheLookup("page", true)
		s.log.Debug("分页缓存命中", "query", query, "page", page, "limit", limit)
		result := *cached.(*model.SearchResult)
		result.Cached = true
		return &result, nil
	}
	s.metrics.RecordCacheLookup("page", false)

	master, err := s.masterResults(ctx, query)
	if err != nil {
		return nil, err
	}

	articles, hasMore := service.Paginate(master.Articles, page, limit, s.maxDisplayed)
	result := &model.SearchResult{
		Articles:     articles,
		CurrentPage:  page,
		HasMore:      hasMore,
		TotalResults: master.TotalArticles,
	}
	s.cache.Set(pageKey, result)

	out := *result
	return &out, nil
}

// masterResults 读取或拉取查询词的完整结果集
func (s *newsService) masterResults(ctx context.Context, query string) (*model.ProviderSearchResult, error) {
	masterKey := service.MasterCacheKey(query)
	if cached, ok := s.cache.Get(masterKey); ok {
		s.metrics.RecordCacheLookup("master", true)
		s.log.Debug("使用缓存的完整结果", "query", query)
		return cached.(*model.ProviderSearchResult), nil
	}
	s.metrics.RecordCacheLookup("master", false)

	if err := s.quota.Consume(); err != nil {
		s.metrics.RecordProviderCall(s.provider.Name(), middleware.OutcomeQuota, 0)
		s.log.Warn("搜索接口今日配额已用完", "query", query)
		return nil, err
	}

	var fetched model.ProviderSearchResult
	err := s.withMetrics(ctx, func(ctx context.Context) error {
		var err error
		fetched, err = s.provider.Search(ctx, query, s.maxResults)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("搜索新闻失败: %w", err)
	}

	master := &model.ProviderSearchResult{
		TotalArticles: fetched.TotalArticles,
		Articles:      make([]model.Article, 0, len(fetched.Articles)),
	}
	for _, a := range fetched.Articles {
		a.URLHash = service.URLHash(a.URL)
		a.Content = a.Body()
		a.SearchQuery = query
		master.Articles = append(master.Articles, a)
	}
	s.cache.Set(masterKey, master)

	s.log.Info("搜索接口调用成功", "query", query, "total", master.TotalArticles,
		"fetched", len(master.Articles), "requests_remaining", s.quota.Remaining())
	return master, nil
}

// CacheStats 搜索缓存统计
func (s *newsService) CacheStats() model.CacheStats {
	return s.cache.GetCacheStats()
}

// RemainingRequests 今日剩余的搜索请求数
func (s *newsService) RemainingRequests() int {
	return s.quota.Remaining()
}

// Status 搜索服务状态
func (s *newsService) Status() model.NewsStatus {
	return model.NewsStatus{
		Provider:          s.provider.Name(),
		RequestsRemaining: s.quota.Remaining(),
		ResetTime:         s.quota.ResetAt(),
		Cache:             s.cache.GetCacheStats(),
	}
}
