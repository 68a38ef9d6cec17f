package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wolfitem/ai-news/internal/domain/model"
)

type stubContentProvider struct {
	content model.ExtractedContent
	err     error
}

func (p *stubContentProvider) Fetch(ctx context.Context, url string) (model.ExtractedContent, error) {
	return p.content, p.err
}

func TestEnrich_OverwritesContentAndLongerFields(t *testing.T) {
	provider := &stubContentProvider{content: model.ExtractedContent{
		Title:       "Short",
		Description: "A much longer extracted description",
		Content:     "Full article text",
	}}
	enricher := NewContentEnricher(provider, nil)
	article := model.Article{URL: "https://example.com/a", Title: "Original title", Description: "Desc", Content: "snippet"}

	got := enricher.Enrich(context.Background(), article)

	assert.Equal(t, "Full article text", got.Content)
	assert.Equal(t, "Original title", got.Title)
	assert.Equal(t, "A much longer extracted description", got.Description)
}

func TestEnrich_ReturnsOriginalOnError(t *testing.T) {
	enricher := NewContentEnricher(&stubContentProvider{err: errors.New("timeout")}, nil)
	article := model.Article{URL: "https://example.com/a", Title: "T", Content: "C"}

	assert.Equal(t, article, enricher.Enrich(context.Background(), article))
}

func TestEnrich_NilEnricher(t *testing.T) {
	var enricher *ContentEnricher
	article := model.Article{URL: "https://example.com/a", Title: "T"}

	assert.Equal(t, article, enricher.Enrich(context.Background(), article))
}
