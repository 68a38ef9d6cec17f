package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfitem/ai-news/internal/domain/model"
)

func newTestRepository(t *testing.T) *SQLiteArticleRepository {
	t.Helper()
	db := NewSQLiteDatabase(filepath.Join(t.TempDir(), "data", "test.db"))
	require.NoError(t, db.Init())
	t.Cleanup(func() { _ = db.Close() })
	return NewSQLiteArticleRepository(db)
}

// steppingClock 每次调用前进一秒
func steppingClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		current = current.Add(time.Second)
		return current
	}
}

func completedArticle(hash, session, label string) model.Article {
	return model.Article{
		URL:       "https://example.com/" + hash,
		Title:     "Title " + hash,
		Content:   "content",
		Source:    model.Source{Name: "Example", URL: "https://example.com"},
		SessionID: session,
		Status:    model.StatusCompleted,
		Analysis: &model.AnalysisResult{
			Summary:       "summary " + hash,
			SummaryLength: 2,
			Sentiment:     model.SentimentResult{Label: label, Score: 1, Confidence: 0.5},
		},
	}
}

func TestFindByURLHash_Missing(t *testing.T) {
	repo := newTestRepository(t)

	got, err := repo.FindByURLHash(context.Background(), "missing")

	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUpsertByURLHash_RoundTrip(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	published := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	article := completedArticle("a1", "s1", model.SentimentPositive)
	article.PublishedAt = published
	article.RetryCount = 2

	saved, err := repo.UpsertByURLHash(ctx, "a1", article)
	require.NoError(t, err)

	assert.Equal(t, "a1", saved.URLHash)
	assert.Equal(t, model.StatusCompleted, saved.Status)
	assert.Equal(t, 2, saved.RetryCount)
	assert.True(t, published.Equal(saved.PublishedAt))
	require.NotNil(t, saved.Analysis)
	assert.Equal(t, "summary a1", saved.Analysis.Summary)
	assert.Equal(t, model.SentimentPositive, saved.Analysis.Sentiment.Label)
	assert.False(t, saved.CreatedAt.IsZero())
}

func TestUpsertByURLHash_KeepsAnalysisAndCreatedAt(t *testing.T) {
	repo := newTestRepository(t)
	repo.now = steppingClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()

	first, err := repo.UpsertByURLHash(ctx, "a1", completedArticle("a1", "s1", model.SentimentNegative))
	require.NoError(t, err)

	update := completedArticle("a1", "s1", "")
	update.Analysis = nil
	update.Status = model.StatusFailed
	update.RetryCount = 3
	second, err := repo.UpsertByURLHash(ctx, "a1", update)
	require.NoError(t, err)

	assert.Equal(t, model.StatusFailed, second.Status)
	assert.Equal(t, 3, second.RetryCount)
	require.NotNil(t, second.Analysis)
	assert.Equal(t, "summary a1", second.Analysis.Summary)
	assert.True(t, first.CreatedAt.Equal(second.CreatedAt))
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))
}

func TestUpsertByURLHash_DefaultsToPending(t *testing.T) {
	repo := newTestRepository(t)

	saved, err := repo.UpsertByURLHash(context.Background(), "p1", model.Article{URL: "https://example.com/p1", Title: "p"})

	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, saved.Status)
	assert.Nil(t, saved.Analysis)
}

func TestListHistory(t *testing.T) {
	repo := newTestRepository(t)
	repo.now = steppingClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()

	seed := []model.Article{
		completedArticle("h1", "s1", model.SentimentPositive),
		completedArticle("h2", "s1", model.SentimentNegative),
		completedArticle("h3", "s1", model.SentimentPositive),
		completedArticle("h4", "other", model.SentimentPositive),
	}
	failed := completedArticle("h5", "s1", model.SentimentPositive)
	failed.Status = model.StatusFailed
	seed = append(seed, failed)

	for _, a := range seed {
		_, err := repo.UpsertByURLHash(ctx, a.URL[len("https://example.com/"):], a)
		require.NoError(t, err)
	}

	t.Run("按创建时间倒序", func(t *testing.T) {
		articles, total, err := repo.ListHistory(ctx, model.HistoryQuery{SessionID: "s1", Page: 1, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		require.Len(t, articles, 3)
		assert.Equal(t, []string{"h3", "h2", "h1"}, []string{articles[0].URLHash, articles[1].URLHash, articles[2].URLHash})
	})

	t.Run("情感过滤", func(t *testing.T) {
		articles, total, err := repo.ListHistory(ctx, model.HistoryQuery{SessionID: "s1", Sentiment: model.SentimentPositive, Page: 1, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		require.Len(t, articles, 2)
		assert.Equal(t, "h3", articles[0].URLHash)
	})

	t.Run("分页", func(t *testing.T) {
		articles, total, err := repo.ListHistory(ctx, model.HistoryQuery{SessionID: "s1", Page: 2, Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		require.Len(t, articles, 1)
		assert.Equal(t, "h1", articles[0].URLHash)
	})
}

func TestPing(t *testing.T) {
	repo := newTestRepository(t)
	assert.NoError(t, repo.Ping(context.Background()))
}
