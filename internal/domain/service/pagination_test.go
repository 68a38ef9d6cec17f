package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfitem/ai-news/internal/domain/model"
)

func masterList(n int) []model.Article {
	articles := make([]model.Article, n)
	for i := range articles {
		articles[i] = model.Article{URL: fmt.Sprintf("https://example.com/%d", i), Title: fmt.Sprintf("article %d", i)}
	}
	return articles
}

func TestPaginate_CyclesThroughMaster(t *testing.T) {
	master := masterList(3)

	page, hasMore := Paginate(master, 2, 5, DefaultMaxDisplayed)

	require.Len(t, page, 5)
	wantIndices := []int{2, 0, 1, 2, 0}
	for i, idx := range wantIndices {
		assert.Equal(t, master[idx].URL, page[i].URL, "position %d", i)
	}
	assert.True(t, hasMore)
}

func TestPaginate_CapEnforcement(t *testing.T) {
	master := masterList(100)

	tests := []struct {
		page, limit int
		wantHasMore bool
	}{
		{1, 9, true},
		{4, 9, true},   // 36
		{5, 9, false},  // 45
		{4, 10, false}, // 40
		{3, 10, true},  // 30
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("page%d_limit%d", tt.page, tt.limit), func(t *testing.T) {
			page, hasMore := Paginate(master, tt.page, tt.limit, DefaultMaxDisplayed)
			assert.Len(t, page, tt.limit)
			assert.Equal(t, tt.wantHasMore, hasMore)
		})
	}
}

func TestPaginate_EmptyMaster(t *testing.T) {
	page, hasMore := Paginate(nil, 1, 9, DefaultMaxDisplayed)

	assert.NotNil(t, page)
	assert.Empty(t, page)
	assert.False(t, hasMore)
}

func TestCacheKeys(t *testing.T) {
	assert.Equal(t, MasterCacheKey("OpenAI"), MasterCacheKey("OpenAI"))
	assert.Contains(t, MasterCacheKey("OpenAI"), "news_master_")
	assert.NotEqual(t, PageCacheKey("OpenAI", 1, 9), PageCacheKey("OpenAI", 2, 9))
	assert.NotEqual(t, PageCacheKey("OpenAI", 1, 9), PageCacheKey("OpenAI", 1, 10))
	assert.Regexp(t, `^news_[0-9a-f]{32}$`, PageCacheKey("OpenAI", 1, 9))
}
