package news

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gilliek/go-opml/opml"
	"github.com/mmcdole/gofeed"
	"github.com/wolfitem/ai-news/internal/domain/model"
	"github.com/wolfitem/ai-news/internal/infrastructure/logger"
)

// FeedSource 表示一个RSS源
type FeedSource struct {
	Title  string
	XMLURL string
}

// FeedProvider 基于RSS的新闻搜索。
// 配置了搜索地址模板时直接请求该模板生成的RSS；否则抓取OPML中的全部订阅源并按查询词过滤。
type FeedProvider struct {
	searchURL   string
	sources     []FeedSource
	concurrency int
	parser      *gofeed.Parser
}

// NewFeedProvider 创建RSS搜索提供方
func NewFeedProvider(config model.NewsConfig) (*FeedProvider, error) {
	timeout := config.TimeoutSeconds
	if timeout <= 0 {
		timeout = 15
	}
	concurrency := config.FeedConcurrency
	if concurrency <= 0 {
		concurrency = 3
	}

	fp := gofeed.NewParser()
	fp.Client = &http.Client{Timeout: time.Duration(timeout) * time.Second}

	p := &FeedProvider{
		searchURL:   config.FeedSearchURL,
		concurrency: concurrency,
		parser:      fp,
	}

	if p.searchURL == "" {
		if config.FeedOpmlFile == "" {
			return nil, fmt.Errorf("RSS搜索需要配置 news.feed_search_url 或 news.feed_opml_file")
		}
		sources, err := ParseOpml(config.FeedOpmlFile)
		if err != nil {
			return nil, err
		}
		p.sources = sources
	}
	return p, nil
}

// Name 返回提供方名称
func (p *FeedProvider) Name() string {
	return "feed"
}

// ParseOpml 解析OPML文件并返回RSS源列表
func ParseOpml(opmlFilePath string) ([]FeedSource, error) {
	doc, err := opml.NewOPMLFromFile(opmlFilePath)
	if err != nil {
		return nil, fmt.Errorf("解析OPML文件失败: %w", err)
	}

	var sources []FeedSource
	for _, outline := range doc.Outlines() {
		sources = append(sources, extractSources(outline)...)
	}

	logger.Info("OPML文件解析完成", "file", opmlFilePath, "sources_count", len(sources))
	return sources, nil
}

// extractSources 递归提取outline中的RSS源
func extractSources(outline opml.Outline) []FeedSource {
	var sources []FeedSource
	if outline.XMLURL != "" {
		sources = append(sources, FeedSource{Title: outline.Title, XMLURL: outline.XMLURL})
	}
	for _, child := range outline.Outlines {
		sources = append(sources, extractSources(child)...)
	}
	return sources
}

// Search 拉取RSS并返回按发布时间倒序的最多 maxResults 篇文章
func (p *FeedProvider) Search(ctx context.Context, query string, maxResults int) (model.ProviderSearchResult, error) {
	var (
		articles []model.Article
		err      error
	)
	if p.searchURL != "" {
		src := FeedSource{Title: "search", XMLURL: buildSearchURL(p.searchURL, query)}
		articles, err = p.fetchSource(ctx, src)
		if err != nil {
			return model.ProviderSearchResult{}, err
		}
	} else {
		articles, err = p.fetchAll(ctx)
		if err != nil {
			return model.ProviderSearchResult{}, err
		}
		articles = filterByQuery(articles, query)
	}

	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].PublishedAt.After(articles[j].PublishedAt)
	})

	total := len(articles)
	if maxResults > 0 && len(articles) > maxResults {
		articles = articles[:maxResults]
	}
	return model.ProviderSearchResult{TotalArticles: total, Articles: articles}, nil
}

func buildSearchURL(template, query string) string {
	if strings.Contains(template, "%s") {
		return fmt.Sprintf(template, url.QueryEscape(query))
	}
	return template + url.QueryEscape(query)
}

// fetchAll 并行抓取全部RSS源，单个源失败不影响其他源
func (p *FeedProvider) fetchAll(ctx context.Context) ([]model.Article, error) {
	type sourceResult struct {
		articles []model.Article
		err      error
		source   FeedSource
	}

	resultChan := make(chan sourceResult, len(p.sources))
	semaphore := make(chan struct{}, p.concurrency)

	for _, source := range p.sources {
		go func(src FeedSource) {
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			articles, err := p.fetchSource(ctx, src)
			resultChan <- sourceResult{articles, err, src}
		}(source)
	}

	var (
		articles []model.Article
		failed   int
		lastErr  error
	)
	for range p.sources {
		result := <-resultChan
		if result.err != nil {
			failed++
			lastErr = result.err
			logger.Warn("处理RSS源失败", "title", result.source.Title, "error", result.err)
			continue
		}
		articles = append(articles, result.articles...)
	}

	if len(p.sources) > 0 && failed == len(p.sources) {
		return nil, fmt.Errorf("全部RSS源获取失败: %w", lastErr)
	}
	return articles, nil
}

func (p *FeedProvider) fetchSource(ctx context.Context, src FeedSource) ([]model.Article, error) {
	feed, err := p.parser.ParseURLWithContext(src.XMLURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("解析RSS源失败 %s: %w", src.XMLURL, err)
	}

	sourceName := feed.Title
	if sourceName == "" {
		sourceName = src.Title
	}

	articles := make([]model.Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item.Link == "" {
			continue
		}
		var publishedAt time.Time
		if item.PublishedParsed != nil {
			publishedAt = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			publishedAt = *item.UpdatedParsed
		}

		var image string
		if item.Image != nil {
			image = item.Image.URL
		}

		articles = append(articles, model.Article{
			URL:         item.Link,
			Title:       strings.TrimSpace(item.Title),
			Description: stripHTMLTags(item.Description),
			Content:     stripHTMLTags(item.Content),
			Image:       image,
			PublishedAt: publishedAt,
			Source:      model.Source{Name: sourceName, URL: feed.Link},
		})
	}
	return articles, nil
}

// filterByQuery 保留标题或描述包含全部查询词的文章
func filterByQuery(articles []model.Article, query string) []model.Article {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return articles
	}

	var matched []model.Article
	for _, a := range articles {
		haystack := strings.ToLower(a.Title + " " + a.Description + " " + a.Content)
		ok := true
		for _, term := range terms {
			if !strings.Contains(haystack, term) {
				ok = false
				break
			}
		}
		if ok {
			matched = append(matched, a)
		}
	}
	return matched
}

// stripHTMLTags 去除HTML标签，只保留纯文本
func stripHTMLTags(html string) string {
	if html == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
