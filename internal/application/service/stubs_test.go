package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/wolfitem/ai-news/internal/domain/model"
)

// memoryStore 内存实现的 ArticleStore
type memoryStore struct {
	mu       sync.Mutex
	records  map[string]model.Article
	upserts  int
	findErr  error
	pingErr  error
	history  []model.Article
	total    int
	lastList model.HistoryQuery
}

func newMemoryStore() *memoryStore {
	return &memoryStore{records: make(map[string]model.Article)}
}

func (m *memoryStore) FindByURLHash(ctx context.Context, urlHash string) (*model.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	a, ok := m.records[urlHash]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (m *memoryStore) UpsertByURLHash(ctx context.Context, urlHash string, article model.Article) (*model.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserts++
	if old, ok := m.records[urlHash]; ok && article.Analysis == nil {
		article.Analysis = old.Analysis
	}
	m.records[urlHash] = article
	return &article, nil
}

func (m *memoryStore) ListHistory(ctx context.Context, query model.HistoryQuery) ([]model.Article, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastList = query
	return m.history, m.total, nil
}

func (m *memoryStore) Ping(ctx context.Context) error {
	return m.pingErr
}

func (m *memoryStore) get(urlHash string) (model.Article, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.records[urlHash]
	return a, ok
}

// scriptedSummarizer 按调用次序返回预设结果
type scriptedSummarizer struct {
	mu      sync.Mutex
	calls   int
	results []error
	summary string
	hint    string
	byURL   map[string]error
}

func (s *scriptedSummarizer) Summarize(ctx context.Context, article model.Article) (model.SummaryOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.calls
	s.calls++

	if err, ok := s.byURL[article.URL]; ok && err != nil {
		return model.SummaryOutput{}, err
	}
	if idx < len(s.results) && s.results[idx] != nil {
		return model.SummaryOutput{}, s.results[idx]
	}
	summary := s.summary
	if summary == "" {
		summary = "Stocks rose sharply after strong earnings."
	}
	hint := s.hint
	if hint == "" {
		hint = model.SentimentPositive
	}
	return model.SummaryOutput{Summary: summary, SentimentHint: hint}, nil
}

func (s *scriptedSummarizer) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// sleepRecorder 记录退避等待而不真正等待
type sleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delays = append(r.delays, d)
	return nil
}

var errUpstream = errors.New("upstream unavailable")
