package news

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/wolfitem/ai-news/internal/domain/model"
	"github.com/wolfitem/ai-news/internal/infrastructure/logger"
)

const defaultGNewsEndpoint = "https://gnews.io/api/v4/search"

// GNewsClient GNews 搜索接口客户端
type GNewsClient struct {
	apiKey   string
	endpoint string
	language string
	client   *http.Client
}

type gnewsArticle struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	URL         string `json:"url"`
	Image       string `json:"image"`
	PublishedAt string `json:"publishedAt"`
	Source      struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	} `json:"source"`
}

type gnewsResponse struct {
	TotalArticles int            `json:"totalArticles"`
	Articles      []gnewsArticle `json:"articles"`
}

// NewGNewsClient 创建GNews客户端
func NewGNewsClient(config model.NewsConfig) *GNewsClient {
	endpoint := config.Endpoint
	if endpoint == "" {
		endpoint = defaultGNewsEndpoint
	}
	language := config.Language
	if language == "" {
		language = "en"
	}
	timeout := config.TimeoutSeconds
	if timeout <= 0 {
		timeout = 15
	}

	return &GNewsClient{
		apiKey:   config.APIKey,
		endpoint: endpoint,
		language: language,
		client:   &http.Client{Timeout: time.Duration(timeout) * time.Second},
	}
}

// Name 返回提供方名称
func (c *GNewsClient) Name() string {
	return "gnews"
}

// Search 一次请求拉取最多 maxResults 篇文章
func (c *GNewsClient) Search(ctx context.Context, query string, maxResults int) (model.ProviderSearchResult, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("lang", c.language)
	params.Set("max", strconv.Itoa(maxResults))
	params.Set("apikey", c.apiKey)

	reqURL := fmt.Sprintf("%s?%s", c.endpoint, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return model.ProviderSearchResult{}, fmt.Errorf("创建请求失败: %w", err)
	}

	logger.Debug("调用GNews搜索接口", "query", query, "max", maxResults)
	resp, err := c.client.Do(req)
	if err != nil {
		return model.ProviderSearchResult{}, fmt.Errorf("GNews请求失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return model.ProviderSearchResult{}, fmt.Errorf("GNews API error: %d %s", resp.StatusCode, string(body))
	}

	var payload gnewsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return model.ProviderSearchResult{}, fmt.Errorf("解析GNews响应失败: %w", err)
	}

	articles := make([]model.Article, 0, len(payload.Articles))
	for _, a := range payload.Articles {
		articles = append(articles, model.Article{
			URL:         a.URL,
			Title:       a.Title,
			Description: a.Description,
			Content:     a.Content,
			Image:       a.Image,
			PublishedAt: parsePublishedAt(a.PublishedAt),
			Source:      model.Source{Name: a.Source.Name, URL: a.Source.URL},
		})
	}

	return model.ProviderSearchResult{
		TotalArticles: payload.TotalArticles,
		Articles:      articles,
	}, nil
}

// parsePublishedAt 解析发布时间，失败时返回零值
func parsePublishedAt(raw string) time.Time {
	for _, layout := range []string{time.RFC3339, time.RFC3339Nano, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}
