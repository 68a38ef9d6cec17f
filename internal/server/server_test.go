package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfitem/ai-news/internal/domain/model"
	"github.com/wolfitem/ai-news/internal/middleware"
)

type stubNews struct {
	result    *model.SearchResult
	err       error
	gotQuery  string
	gotPage   int
	gotLimit  int
	remaining int
}

func (s *stubNews) SearchNews(ctx context.Context, query string, page, limit int) (*model.SearchResult, error) {
	s.gotQuery, s.gotPage, s.gotLimit = query, page, limit
	return s.result, s.err
}

func (s *stubNews) CacheStats() model.CacheStats { return model.CacheStats{} }
func (s *stubNews) RemainingRequests() int       { return s.remaining }
func (s *stubNews) Status() model.NewsStatus {
	return model.NewsStatus{Provider: "gnews", RequestsRemaining: s.remaining}
}

type stubAnalysis struct {
	result     *model.AnalysisResult
	batch      *model.BatchResult
	history    *model.HistoryResult
	err        error
	gotSession string
	gotArticle model.Article
	gotQuery   model.HistoryQuery
	connected  bool
}

func (s *stubAnalysis) AnalyzeArticle(ctx context.Context, article model.Article, sessionID string) (*model.AnalysisResult, error) {
	s.gotArticle, s.gotSession = article, sessionID
	return s.result, s.err
}

func (s *stubAnalysis) AnalyzeBatch(ctx context.Context, articles []model.Article, sessionID string) (*model.BatchResult, error) {
	s.gotSession = sessionID
	return s.batch, s.err
}

func (s *stubAnalysis) History(ctx context.Context, query model.HistoryQuery) (*model.HistoryResult, error) {
	s.gotQuery = query
	return s.history, s.err
}

func (s *stubAnalysis) QuotaStatus() model.QuotaStatus { return model.QuotaStatus{Available: true} }

func (s *stubAnalysis) Status(ctx context.Context) model.ServiceStatus {
	return model.ServiceStatus{Status: model.ServiceOperational, Database: model.DatabaseStatus{Connected: s.connected}}
}

func newTestServer(news *stubNews, analysis *stubAnalysis) http.Handler {
	return New(model.ServerConfig{}, news, analysis, middleware.NewMetricsCollector()).Handler()
}

func do(t *testing.T, h http.Handler, method, target, body string, headers map[string]string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var decoded map[string]interface{}
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

func TestSearchNews_Defaults(t *testing.T) {
	news := &stubNews{result: &model.SearchResult{CurrentPage: 1, HasMore: true, Articles: []model.Article{}}, remaining: 99}
	h := newTestServer(news, &stubAnalysis{})

	rec, body := do(t, h, http.MethodGet, "/api/news/search?q=ai", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ai", news.gotQuery)
	assert.Equal(t, 1, news.gotPage)
	assert.Equal(t, 9, news.gotLimit)
	assert.Equal(t, true, body["success"])
	meta := body["meta"].(map[string]interface{})
	assert.Equal(t, float64(99), meta["remainingRequests"])
	assert.Equal(t, false, meta["cached"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestSearchNews_QuotaExceeded(t *testing.T) {
	news := &stubNews{err: &model.QuotaExceededError{Provider: "gnews", Limit: 100, RetryAfter: 90*time.Second + 200*time.Millisecond}}
	h := newTestServer(news, &stubAnalysis{})

	rec, body := do(t, h, http.MethodGet, "/api/news/search?q=ai&page=2&limit=5", "", nil)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, float64(91), body["retryAfter"])
	assert.Equal(t, "gnews rate limit exceeded", body["error"])
}

func TestSearchNews_InvalidParams(t *testing.T) {
	h := newTestServer(&stubNews{}, &stubAnalysis{})

	rec, body := do(t, h, http.MethodGet, "/api/news/search?q=ai&page=abc", "", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "page", body["field"])
}

func TestAnalyzeArticle_SessionHeader(t *testing.T) {
	analysis := &stubAnalysis{result: &model.AnalysisResult{Summary: "ok", SummaryLength: 1}}
	h := newTestServer(&stubNews{}, analysis)

	payload := `{"article":{"url":"https://example.com/a","title":"A","content":"text"}}`
	rec, body := do(t, h, http.MethodPost, "/api/analysis/article", payload, map[string]string{SessionHeader: "sess-42"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "sess-42", analysis.gotSession)
	assert.Equal(t, "https://example.com/a", analysis.gotArticle.URL)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "ok", data["summary"])
}

func TestAnalyzeArticle_MissingFields(t *testing.T) {
	analysis := &stubAnalysis{}
	h := newTestServer(&stubNews{}, analysis)

	rec, body := do(t, h, http.MethodPost, "/api/analysis/article", `{"article":{"url":"https://example.com/a"}}`, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Article with url and title is required", body["error"])
	assert.Empty(t, analysis.gotSession)
}

func TestAnalyzeArticle_Failed(t *testing.T) {
	analysis := &stubAnalysis{err: &model.AnalysisFailedError{URL: "u", Attempts: 3, Err: errors.New("boom")}}
	h := newTestServer(&stubNews{}, analysis)

	rec, body := do(t, h, http.MethodPost, "/api/analysis/article", `{"article":{"url":"https://example.com/a","title":"A"}}`, nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to analyze article", body["error"])
	assert.Equal(t, anonymousSession, analysis.gotSession)
}

func TestHistory_Params(t *testing.T) {
	analysis := &stubAnalysis{history: &model.HistoryResult{Articles: []model.Article{}}}
	h := newTestServer(&stubNews{}, analysis)

	rec, _ := do(t, h, http.MethodGet, "/api/analysis/history?page=2&sentiment=negative", "", map[string]string{SessionHeader: "s1"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.HistoryQuery{SessionID: "s1", Sentiment: "negative", Page: 2, Limit: 20}, analysis.gotQuery)
}

func TestHealth(t *testing.T) {
	h := newTestServer(&stubNews{}, &stubAnalysis{connected: true})

	rec, body := do(t, h, http.MethodGet, "/api/health", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "connected", body["database"])
	assert.Contains(t, body, "memory")
}

func TestNotFound(t *testing.T) {
	h := newTestServer(&stubNews{}, &stubAnalysis{})

	rec, _ := do(t, h, http.MethodGet, "/api/unknown", "", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestServer(&stubNews{}, &stubAnalysis{})

	rec, _ := do(t, h, http.MethodGet, "/metrics", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
}
