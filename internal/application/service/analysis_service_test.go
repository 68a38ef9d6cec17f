package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfitem/ai-news/internal/domain/model"
	domain "github.com/wolfitem/ai-news/internal/domain/service"
)

func testArticle(n int) model.Article {
	return model.Article{
		URL:     fmt.Sprintf("https://example.com/news/%d", n),
		Title:   "Markets rally",
		Content: "Stocks surged to a record high as investors cheered strong growth.",
	}
}

func newTestAnalysis(store *memoryStore, summarizer domain.ArticleSummarizer, rec *sleepRecorder) AnalysisService {
	return NewAnalysisService(store, summarizer, model.AnalysisConfig{BackoffBase: time.Second}, WithSleep(rec.sleep))
}

func TestAnalyzeArticle_Success(t *testing.T) {
	store := newMemoryStore()
	summarizer := &scriptedSummarizer{}
	rec := &sleepRecorder{}
	svc := newTestAnalysis(store, summarizer, rec)

	article := testArticle(1)
	result, err := svc.AnalyzeArticle(context.Background(), article, "session-1")

	require.NoError(t, err)
	assert.Equal(t, "Stocks rose sharply after strong earnings.", result.Summary)
	assert.Equal(t, 6, result.SummaryLength)
	assert.Equal(t, model.SentimentPositive, result.Sentiment.Label)
	assert.Empty(t, rec.delays)
	assert.Equal(t, 1, store.upserts)

	saved, ok := store.get(domain.URLHash(article.URL))
	require.True(t, ok)
	assert.Equal(t, model.StatusCompleted, saved.Status)
	assert.Equal(t, 0, saved.RetryCount)
	assert.Equal(t, "session-1", saved.SessionID)
	require.NotNil(t, saved.Analysis)
	assert.Equal(t, result.Summary, saved.Analysis.Summary)
}

func TestAnalyzeArticle_RetriesWithBackoff(t *testing.T) {
	store := newMemoryStore()
	summarizer := &scriptedSummarizer{results: []error{errUpstream, errUpstream}}
	rec := &sleepRecorder{}
	svc := newTestAnalysis(store, summarizer, rec)

	article := testArticle(2)
	_, err := svc.AnalyzeArticle(context.Background(), article, "s")

	require.NoError(t, err)
	assert.Equal(t, 3, summarizer.callCount())
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, rec.delays)

	saved, _ := store.get(domain.URLHash(article.URL))
	assert.Equal(t, 2, saved.RetryCount)
	assert.Equal(t, model.StatusCompleted, saved.Status)
}

func TestAnalyzeArticle_FailsAfterMaxRetries(t *testing.T) {
	store := newMemoryStore()
	summarizer := &scriptedSummarizer{results: []error{errUpstream, errUpstream, errUpstream}}
	rec := &sleepRecorder{}
	svc := newTestAnalysis(store, summarizer, rec)

	article := testArticle(3)
	result, err := svc.AnalyzeArticle(context.Background(), article, "s")

	assert.Nil(t, result)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrAnalysisFailed))
	assert.True(t, errors.Is(err, errUpstream))
	assert.Equal(t, 3, summarizer.callCount())
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, rec.delays)

	saved, ok := store.get(domain.URLHash(article.URL))
	require.True(t, ok)
	assert.Equal(t, model.StatusFailed, saved.Status)
	assert.Equal(t, 3, saved.RetryCount)
	assert.Nil(t, saved.Analysis)
}

func TestAnalyzeArticle_PinnedClock(t *testing.T) {
	store := newMemoryStore()
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	calls := 0
	clock := func() time.Time {
		calls++
		return base.Add(time.Duration(calls-1) * 250 * time.Millisecond)
	}
	svc := NewAnalysisService(store, &scriptedSummarizer{}, model.AnalysisConfig{}, WithClock(clock))

	result, err := svc.AnalyzeArticle(context.Background(), testArticle(20), "s")

	require.NoError(t, err)
	assert.Equal(t, base.Add(250*time.Millisecond), result.AnalyzedAt)
	assert.Equal(t, int64(250), result.ProcessingTime)
}

func TestAnalyzeArticle_IgnoresCallerCancellation(t *testing.T) {
	store := newMemoryStore()
	summarizer := &scriptedSummarizer{results: []error{errUpstream}}
	svc := NewAnalysisService(store, summarizer, model.AnalysisConfig{BackoffBase: time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	article := testArticle(21)
	result, err := svc.AnalyzeArticle(ctx, article, "s")

	require.NoError(t, err)
	assert.NotEmpty(t, result.Summary)
	assert.Equal(t, 2, summarizer.callCount())

	saved, _ := store.get(domain.URLHash(article.URL))
	assert.Equal(t, model.StatusCompleted, saved.Status)
	assert.Equal(t, 1, saved.RetryCount)
}

func TestAnalyzeArticle_CancelledCallerStillRetriesAll(t *testing.T) {
	store := newMemoryStore()
	summarizer := &scriptedSummarizer{results: []error{errUpstream, errUpstream, errUpstream}}
	svc := NewAnalysisService(store, summarizer, model.AnalysisConfig{BackoffBase: time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	article := testArticle(22)
	_, err := svc.AnalyzeArticle(ctx, article, "s")

	require.Error(t, err)
	assert.True(t, errors.Is(err, errUpstream))
	assert.False(t, errors.Is(err, context.Canceled))
	var failed *model.AnalysisFailedError
	require.True(t, errors.As(err, &failed))
	assert.Equal(t, 3, failed.Attempts)
	assert.Equal(t, 3, summarizer.callCount())

	saved, _ := store.get(domain.URLHash(article.URL))
	assert.Equal(t, model.StatusFailed, saved.Status)
	assert.Equal(t, 3, saved.RetryCount)
}

func TestAnalyzeArticle_InterruptedSleepReportsAttemptsMade(t *testing.T) {
	store := newMemoryStore()
	summarizer := &scriptedSummarizer{results: []error{errUpstream, errUpstream, errUpstream}}
	interrupted := func(ctx context.Context, d time.Duration) error { return errors.New("shutting down") }
	svc := NewAnalysisService(store, summarizer, model.AnalysisConfig{}, WithSleep(interrupted))

	article := testArticle(23)
	_, err := svc.AnalyzeArticle(context.Background(), article, "s")

	var failed *model.AnalysisFailedError
	require.True(t, errors.As(err, &failed))
	assert.Equal(t, 1, failed.Attempts)
	assert.True(t, errors.Is(err, errUpstream))

	saved, _ := store.get(domain.URLHash(article.URL))
	assert.Equal(t, 1, saved.RetryCount)
}

func TestAnalyzeArticle_QuotaNotRetried(t *testing.T) {
	store := newMemoryStore()
	quotaErr := &model.QuotaExceededError{Provider: "summarizer", Limit: 15, RetryAfter: 30 * time.Second}
	summarizer := &scriptedSummarizer{results: []error{quotaErr}}
	rec := &sleepRecorder{}
	svc := newTestAnalysis(store, summarizer, rec)

	_, err := svc.AnalyzeArticle(context.Background(), testArticle(4), "s")

	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrQuotaExceeded))
	assert.False(t, errors.Is(err, model.ErrAnalysisFailed))
	assert.Equal(t, 1, summarizer.callCount())
	assert.Empty(t, rec.delays)
	assert.Equal(t, 0, store.upserts)
}

func TestAnalyzeArticle_ReturnsExistingAnalysis(t *testing.T) {
	store := newMemoryStore()
	article := testArticle(5)
	existing := &model.AnalysisResult{Summary: "Earlier summary", SummaryLength: 2}
	store.records[domain.URLHash(article.URL)] = model.Article{URL: article.URL, Analysis: existing, Status: model.StatusCompleted}

	summarizer := &scriptedSummarizer{}
	svc := newTestAnalysis(store, summarizer, &sleepRecorder{})

	result, err := svc.AnalyzeArticle(context.Background(), article, "s")

	require.NoError(t, err)
	assert.Equal(t, "Earlier summary", result.Summary)
	assert.Equal(t, 0, summarizer.callCount())
	assert.Equal(t, 0, store.upserts)
}

func TestAnalyzeArticle_ReanalyzesFailedRecord(t *testing.T) {
	store := newMemoryStore()
	article := testArticle(6)
	store.records[domain.URLHash(article.URL)] = model.Article{URL: article.URL, Status: model.StatusFailed, RetryCount: 3}

	summarizer := &scriptedSummarizer{}
	svc := newTestAnalysis(store, summarizer, &sleepRecorder{})

	_, err := svc.AnalyzeArticle(context.Background(), article, "s")

	require.NoError(t, err)
	assert.Equal(t, 1, summarizer.callCount())
}

func TestAnalyzeArticle_LookupErrorIsMiss(t *testing.T) {
	store := newMemoryStore()
	store.findErr = errors.New("database is locked")
	summarizer := &scriptedSummarizer{}
	svc := newTestAnalysis(store, summarizer, &sleepRecorder{})

	_, err := svc.AnalyzeArticle(context.Background(), testArticle(7), "s")

	require.NoError(t, err)
	assert.Equal(t, 1, summarizer.callCount())
}

func TestAnalyzeArticle_InvalidInput(t *testing.T) {
	summarizer := &scriptedSummarizer{}
	svc := newTestAnalysis(newMemoryStore(), summarizer, &sleepRecorder{})

	_, err := svc.AnalyzeArticle(context.Background(), model.Article{URL: "https://example.com/x"}, "s")

	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrInvalidInput))
	assert.Equal(t, 0, summarizer.callCount())
}

func TestSummaryLength(t *testing.T) {
	assert.Equal(t, 11, SummaryLength("OpenAI发布新模型"))
	assert.Equal(t, 5, SummaryLength("OpenAI released a new model"))
	assert.Equal(t, 1, SummaryLength(""))
	assert.Equal(t, 3, SummaryLength("two  spaces"))
}

func TestAnalyzeBatch_MixedResults(t *testing.T) {
	store := newMemoryStore()
	failing := testArticle(11)
	summarizer := &scriptedSummarizer{byURL: map[string]error{failing.URL: errUpstream}}
	svc := newTestAnalysis(store, summarizer, &sleepRecorder{})

	articles := []model.Article{testArticle(10), failing, testArticle(12)}
	result, err := svc.AnalyzeBatch(context.Background(), articles, "batch")

	require.NoError(t, err)
	assert.Equal(t, model.BatchSummary{Total: 3, Successful: 2, Failed: 1}, result.Summary)
	require.Len(t, result.Results, 3)

	assert.Equal(t, model.SettledFulfilled, result.Results[0].Status)
	assert.NotNil(t, result.Results[0].Analysis)
	assert.Equal(t, model.SettledRejected, result.Results[1].Status)
	assert.Equal(t, failing.URL, result.Results[1].Article.URL)
	assert.Contains(t, result.Results[1].Error, "upstream unavailable")
	assert.Nil(t, result.Results[1].Analysis)
	assert.Equal(t, model.SettledFulfilled, result.Results[2].Status)
}

func TestAnalyzeBatch_IgnoresCallerCancellation(t *testing.T) {
	store := newMemoryStore()
	summarizer := &scriptedSummarizer{results: []error{errUpstream}}
	svc := NewAnalysisService(store, summarizer, model.AnalysisConfig{BackoffBase: time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := svc.AnalyzeBatch(ctx, []model.Article{testArticle(30), testArticle(31)}, "batch")

	require.NoError(t, err)
	assert.Equal(t, model.BatchSummary{Total: 2, Successful: 2, Failed: 0}, result.Summary)
}

func TestAnalyzeBatch_Validation(t *testing.T) {
	svc := newTestAnalysis(newMemoryStore(), &scriptedSummarizer{}, &sleepRecorder{})

	_, err := svc.AnalyzeBatch(context.Background(), nil, "s")
	assert.True(t, errors.Is(err, model.ErrInvalidInput))

	tooMany := make([]model.Article, 11)
	for i := range tooMany {
		tooMany[i] = testArticle(i)
	}
	_, err = svc.AnalyzeBatch(context.Background(), tooMany, "s")
	assert.True(t, errors.Is(err, model.ErrInvalidInput))
}

func TestHistory(t *testing.T) {
	store := newMemoryStore()
	store.history = []model.Article{testArticle(1)}
	store.total = 21
	svc := newTestAnalysis(store, &scriptedSummarizer{}, &sleepRecorder{})

	result, err := svc.History(context.Background(), model.HistoryQuery{SessionID: "s"})

	require.NoError(t, err)
	assert.Equal(t, model.Pagination{Page: 1, Limit: 20, Total: 21, Pages: 2}, result.Pagination)
	assert.Equal(t, model.HistoryQuery{SessionID: "s", Page: 1, Limit: 20}, store.lastList)

	result, err = svc.History(context.Background(), model.HistoryQuery{SessionID: "s", Page: 2, Limit: 51})
	require.NoError(t, err)
	assert.Equal(t, model.Pagination{Page: 2, Limit: 50, Total: 21, Pages: 1}, result.Pagination)
	assert.Equal(t, 50, store.lastList.Limit)

	_, err = svc.History(context.Background(), model.HistoryQuery{SessionID: "s", Sentiment: "angry"})
	assert.True(t, errors.Is(err, model.ErrInvalidInput))
}

func TestStatus(t *testing.T) {
	store := newMemoryStore()
	svc := newTestAnalysis(store, &scriptedSummarizer{}, &sleepRecorder{})

	status := svc.Status(context.Background())
	assert.Equal(t, model.ServiceOperational, status.Status)
	assert.True(t, status.Database.Connected)
	assert.True(t, status.Summarizer.Available)

	store.pingErr = errors.New("disk I/O error")
	status = svc.Status(context.Background())
	assert.Equal(t, model.ServiceDegraded, status.Status)
	assert.False(t, status.Database.Connected)
	assert.Equal(t, "disk I/O error", status.Database.Error)
}
