package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/wolfitem/ai-news/internal/domain/model"
	"github.com/wolfitem/ai-news/internal/domain/service"
	"github.com/wolfitem/ai-news/internal/infrastructure/logger"
	"github.com/wolfitem/ai-news/internal/middleware"
)

const (
	defaultMaxRetries   = 3
	defaultMaxBatch     = 10
	defaultHistoryLimit = 20
	maxHistoryLimit     = 50
)

// AnalysisService 文章分析的应用服务接口
type AnalysisService interface {
	// AnalyzeArticle 分析单篇文章，失败时返回 QuotaExceeded 或 AnalysisFailed
	AnalyzeArticle(ctx context.Context, article model.Article, sessionID string) (*model.AnalysisResult, error)
	// AnalyzeBatch 并发分析多篇文章，单篇失败不影响其他文章
	AnalyzeBatch(ctx context.Context, articles []model.Article, sessionID string) (*model.BatchResult, error)
	// History 查询会话的分析历史
	History(ctx context.Context, query model.HistoryQuery) (*model.HistoryResult, error)
	// QuotaStatus 摘要服务配额状态
	QuotaStatus() model.QuotaStatus
	// Status 服务整体状态
	Status(ctx context.Context) model.ServiceStatus
}

// quotaReporter 能报告配额状态的摘要客户端
type quotaReporter interface {
	QuotaStatus() model.QuotaStatus
}

// analysisService 实现AnalysisService接口
type analysisService struct {
	store       service.ArticleStore
	summarizer  service.ArticleSummarizer
	enricher    *service.ContentEnricher
	scorer      *service.SentimentScorer
	validator   *service.Validator
	metrics     *middleware.MetricsCollector
	maxRetries  int
	backoffBase time.Duration
	maxBatch    int
	sleep       func(ctx context.Context, d time.Duration) error
	now         func() time.Time
	log         *logger.ContextLogger
}

// AnalysisOption 分析服务选项
type AnalysisOption func(*analysisService)

// WithEnricher 设置正文抽取器
func WithEnricher(enricher *service.ContentEnricher) AnalysisOption {
	return func(s *analysisService) { s.enricher = enricher }
}

// WithAnalysisMetrics 设置指标收集器
func WithAnalysisMetrics(metrics *middleware.MetricsCollector) AnalysisOption {
	return func(s *analysisService) { s.metrics = metrics }
}

// WithSleep 替换重试之间的等待函数
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) AnalysisOption {
	return func(s *analysisService) { s.sleep = sleep }
}

// WithClock 替换时钟
func WithClock(now func() time.Time) AnalysisOption {
	return func(s *analysisService) { s.now = now }
}

// NewAnalysisService 创建分析服务
func NewAnalysisService(store service.ArticleStore, summarizer service.ArticleSummarizer, config model.AnalysisConfig, opts ...AnalysisOption) AnalysisService {
	s := &analysisService{
		store:       store,
		summarizer:  summarizer,
		scorer:      service.NewSentimentScorer(),
		validator:   service.NewValidator(),
		maxRetries:  config.MaxRetries,
		backoffBase: config.BackoffBase,
		maxBatch:    config.MaxBatch,
		sleep:       middleware.Sleep,
		now:         time.Now,
		log:         logger.WithContext("analysis"),
	}
	if s.maxRetries <= 0 {
		s.maxRetries = defaultMaxRetries
	}
	if s.backoffBase <= 0 {
		s.backoffBase = time.Second
	}
	if s.maxBatch <= 0 {
		s.maxBatch = defaultMaxBatch
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AnalyzeArticle 去重检查 → 抽取、摘要、打分、持久化（带重试） → 返回结果。
// 分析一旦开始就执行到底，调用方取消 ctx 不会中断重试。
func (s *analysisService) AnalyzeArticle(ctx context.Context, article model.Article, sessionID string) (*model.AnalysisResult, error) {
	ctx = context.WithoutCancel(ctx)
	if err := s.validator.ValidateArticle(article); err != nil {
		return nil, err
	}

	start := s.now()
	urlHash := service.URLHash(article.URL)

	existing, err := s.store.FindByURLHash(ctx, urlHash)
	if err != nil {
		s.log.Warn("查询已有分析失败，继续分析", "url", article.URL, "error", err)
	} else if existing != nil && existing.Analysis != nil && existing.Analysis.Summary != "" {
		s.log.Info("文章已分析，直接返回已有结果", "url", article.URL, "url_hash", urlHash)
		return existing.Analysis, nil
	}

	var (
		lastErr  error
		attempts int
	)
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		attempts = attempt + 1
		result, err := s.runPipeline(ctx, article, urlHash, sessionID, attempt, start)
		if err == nil {
			s.metrics.RecordAnalysis(model.StatusCompleted, attempt+1)
			s.log.Info("文章分析完成", "url", article.URL, "attempt", attempt+1,
				"sentiment", result.Sentiment.Label, "processing_ms", result.ProcessingTime)
			return result, nil
		}
		if errors.Is(err, model.ErrQuotaExceeded) {
			s.metrics.RecordAnalysis(middleware.OutcomeQuota, attempt+1)
			return nil, err
		}

		lastErr = err
		s.log.Warn("文章分析失败", "url", article.URL, "attempt", attempt+1, "max_retries", s.maxRetries, "error", err)

		if attempt < s.maxRetries-1 {
			if err := s.sleep(ctx, middleware.Backoff(s.backoffBase, attempt)); err != nil {
				s.log.Warn("重试等待被中断", "url", article.URL, "error", err)
				break
			}
		}
	}

	s.recordFailure(ctx, article, urlHash, sessionID, attempts)
	s.metrics.RecordAnalysis(model.StatusFailed, attempts)
	return nil, &model.AnalysisFailedError{URL: article.URL, Attempts: attempts, Err: lastErr}
}

// runPipeline 执行一次完整的分析流程
func (s *analysisService) runPipeline(ctx context.Context, article model.Article, urlHash, sessionID string, attempt int, start time.Time) (*model.AnalysisResult, error) {
	enriched := s.enricher.Enrich(ctx, article)

	out, err := s.summarizer.Summarize(ctx, enriched)
	if err != nil {
		return nil, fmt.Errorf("生成摘要失败: %w", err)
	}

	sentiment := s.scorer.Score(article.Title+" "+article.Body(), out.SentimentHint)

	analyzedAt := s.now()
	result := &model.AnalysisResult{
		Summary:        out.Summary,
		SummaryLength:  SummaryLength(out.Summary),
		Sentiment:      sentiment,
		AnalyzedAt:     analyzedAt,
		ProcessingTime: analyzedAt.Sub(start).Milliseconds(),
	}

	record := article
	record.URLHash = urlHash
	record.SessionID = sessionID
	record.Analysis = result
	record.Status = model.StatusCompleted
	record.RetryCount = attempt
	if _, err := s.store.UpsertByURLHash(ctx, urlHash, record); err != nil {
		return nil, fmt.Errorf("保存分析结果失败: %w", err)
	}
	return result, nil
}

// recordFailure 尽力记录失败状态，存储错误只记录日志
func (s *analysisService) recordFailure(ctx context.Context, article model.Article, urlHash, sessionID string, attempts int) {
	record := article
	record.URLHash = urlHash
	record.SessionID = sessionID
	record.Analysis = nil
	record.Status = model.StatusFailed
	record.RetryCount = attempts
	if _, err := s.store.UpsertByURLHash(ctx, urlHash, record); err != nil {
		s.log.Error("记录分析失败状态失败", "url", article.URL, "error", err)
	}
}

// AnalyzeBatch 为每篇文章启动独立任务，等待全部结算后汇总
func (s *analysisService) AnalyzeBatch(ctx context.Context, articles []model.Article, sessionID string) (*model.BatchResult, error) {
	ctx = context.WithoutCancel(ctx)
	if err := s.validator.ValidateBatch(articles, s.maxBatch); err != nil {
		return nil, err
	}
	defer logger.TimeTrack("AnalyzeBatch")()

	results := make([]model.SettledResult, len(articles))
	var wg sync.WaitGroup
	for i, article := range articles {
		wg.Add(1)
		go func(idx int, a model.Article) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					s.log.Error("批量分析任务异常", "url", a.URL, "panic", r)
					results[idx] = model.SettledResult{Article: a, Status: model.SettledRejected, Error: fmt.Sprint(r)}
				}
			}()

			analysis, err := s.AnalyzeArticle(ctx, a, sessionID)
			if err != nil {
				results[idx] = model.SettledResult{Article: a, Status: model.SettledRejected, Error: err.Error()}
				return
			}
			results[idx] = model.SettledResult{Article: a, Status: model.SettledFulfilled, Analysis: analysis}
		}(i, article)
	}
	wg.Wait()

	summary := model.BatchSummary{Total: len(results)}
	for _, r := range results {
		if r.Status == model.SettledFulfilled {
			summary.Successful++
		} else {
			summary.Failed++
		}
	}

	s.log.Info("批量分析完成", "total", summary.Total, "successful", summary.Successful, "failed", summary.Failed)
	return &model.BatchResult{Results: results, Summary: summary}, nil
}

// History 查询会话内已完成的分析
func (s *analysisService) History(ctx context.Context, query model.HistoryQuery) (*model.HistoryResult, error) {
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = defaultHistoryLimit
	}
	if query.Limit > maxHistoryLimit {
		query.Limit = maxHistoryLimit
	}
	switch query.Sentiment {
	case "", model.SentimentPositive, model.SentimentNeutral, model.SentimentNegative:
	default:
		return nil, &model.InvalidInputError{Field: "sentiment", Message: "sentiment must be positive, neutral or negative"}
	}

	articles, total, err := s.store.ListHistory(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("查询分析历史失败: %w", err)
	}

	return &model.HistoryResult{
		Articles: articles,
		Pagination: model.Pagination{
			Page:  query.Page,
			Limit: query.Limit,
			Total: total,
			Pages: int(math.Ceil(float64(total) / float64(query.Limit))),
		},
	}, nil
}

// QuotaStatus 摘要服务配额状态
func (s *analysisService) QuotaStatus() model.QuotaStatus {
	if r, ok := s.summarizer.(quotaReporter); ok {
		return r.QuotaStatus()
	}
	return model.QuotaStatus{Available: s.summarizer != nil}
}

// Status 汇总摘要、情感和数据库状态
func (s *analysisService) Status(ctx context.Context) model.ServiceStatus {
	status := model.ServiceStatus{
		Status:     model.ServiceOperational,
		Summarizer: s.QuotaStatus(),
		Sentiment:  s.scorer.Info(),
		Timestamp:  s.now(),
	}

	start := time.Now()
	if err := s.store.Ping(ctx); err != nil {
		status.Status = model.ServiceDegraded
		status.Database = model.DatabaseStatus{Connected: false, Error: err.Error()}
	} else {
		status.Database = model.DatabaseStatus{Connected: true, ResponseTime: time.Since(start).Milliseconds()}
	}
	return status
}

// SummaryLength 中文摘要按字符计数，其他按空格分词计数
func SummaryLength(summary string) int {
	if containsCJK(summary) {
		return utf8.RuneCountInString(summary)
	}
	return len(strings.Split(summary, " "))
}

func containsCJK(s string) bool {
	for _, r := range s {
		if r >= '\u4e00' && r <= '\u9fff' {
			return true
		}
	}
	return false
}
