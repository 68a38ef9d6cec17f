package service

import (
	"fmt"

	"github.com/wolfitem/ai-news/internal/domain/model"
)

// DefaultMaxDisplayed 累计展示的文章上限，达到后 hasMore 为 false
const DefaultMaxDisplayed = 40

// MasterCacheKey 查询词对应的完整结果缓存键
func MasterCacheKey(query string) string {
	return hashKey("news_master_", query)
}

// PageCacheKey (query, page, limit) 对应的分页缓存键
func PageCacheKey(query string, page, limit int) string {
	return hashKey("news_", fmt.Sprintf("%s_%d_%d", query, page, limit))
}

// Paginate 从有限的结果集中循环取出第 page 页。
// 第 i 条取 master[(startIndex+i) % len(master)]，结果集用尽后重复使用已有文章；
// 累计展示数达到 maxDisplayed 后 hasMore 为 false。
func Paginate(master []model.Article, page, limit, maxDisplayed int) ([]model.Article, bool) {
	if len(master) == 0 || limit <= 0 {
		return []model.Article{}, false
	}
	if page < 1 {
		page = 1
	}
	if maxDisplayed <= 0 {
		maxDisplayed = DefaultMaxDisplayed
	}

	startIndex := (page - 1) * limit
	articles := make([]model.Article, 0, limit)
	for i := 0; i < limit; i++ {
		articles = append(articles, master[(startIndex+i)%len(master)])
	}

	displayed := startIndex + len(articles)
	return articles, displayed < maxDisplayed
}
