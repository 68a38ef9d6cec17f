package extractor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/wolfitem/ai-news/internal/domain/model"
	"github.com/wolfitem/ai-news/internal/domain/service"
	"github.com/wolfitem/ai-news/internal/infrastructure/logger"
	"golang.org/x/time/rate"
)

const (
	defaultMaxChars = 12000
	maxBodyBytes    = 4 << 20
	userAgent       = "Mozilla/5.0 (compatible; AI-News-Extractor/1.0)"
)

// ReadabilityExtractor 抓取网页并用 readability 抽取正文
type ReadabilityExtractor struct {
	client   *http.Client
	limiter  *rate.Limiter
	maxChars int
	urlGuard func(string) error
}

// Option 抽取器选项
type Option func(*ReadabilityExtractor)

// WithHTTPClient 使用自定义HTTP客户端
func WithHTTPClient(client *http.Client) Option {
	return func(e *ReadabilityExtractor) { e.client = client }
}

// WithURLGuard 替换URL安全检查，传 nil 表示不检查
func WithURLGuard(guard func(string) error) Option {
	return func(e *ReadabilityExtractor) { e.urlGuard = guard }
}

// NewReadabilityExtractor 创建正文抽取器
func NewReadabilityExtractor(config model.ExtractorConfig, opts ...Option) *ReadabilityExtractor {
	timeout := config.TimeoutSeconds
	if timeout <= 0 {
		timeout = 10
	}
	maxChars := config.MaxChars
	if maxChars <= 0 {
		maxChars = defaultMaxChars
	}
	rps := config.RequestsPerSecond
	if rps <= 0 {
		rps = 2
	}

	e := &ReadabilityExtractor{
		client:   &http.Client{Timeout: time.Duration(timeout) * time.Second},
		limiter:  rate.NewLimiter(rate.Limit(rps), 1),
		maxChars: maxChars,
		urlGuard: service.NewValidator().ValidateFetchURL,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Fetch 抓取URL并返回标题、描述和正文
func (e *ReadabilityExtractor) Fetch(ctx context.Context, rawURL string) (model.ExtractedContent, error) {
	if e.urlGuard != nil {
		if err := e.urlGuard(rawURL); err != nil {
			return model.ExtractedContent{}, err
		}
	}
	pageURL, err := url.Parse(rawURL)
	if err != nil {
		return model.ExtractedContent{}, fmt.Errorf("无效的URL格式: %w", err)
	}

	if err := e.limiter.Wait(ctx); err != nil {
		return model.ExtractedContent{}, fmt.Errorf("等待抓取许可失败: %w", err)
	}

	html, err := e.download(ctx, rawURL)
	if err != nil {
		return model.ExtractedContent{}, err
	}

	article, err := readability.FromReader(bytes.NewReader(html), pageURL)
	if err != nil {
		return model.ExtractedContent{}, fmt.Errorf("正文抽取失败: %w", err)
	}

	content := truncateRunes(strings.TrimSpace(article.TextContent), e.maxChars)
	if content == "" {
		return model.ExtractedContent{}, errors.New("页面不包含可抽取的正文")
	}

	title, description := metaTags(html)
	if title == "" {
		title = strings.TrimSpace(article.Title)
	}
	if description == "" {
		description = strings.TrimSpace(article.Excerpt)
	}

	logger.Debug("网页正文抽取完成", "url", rawURL, "content_length", len(content))
	return model.ExtractedContent{
		Title:       title,
		Description: description,
		Content:     content,
	}, nil
}

func (e *ReadabilityExtractor) download(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("抓取网页失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("抓取网页失败: HTTP %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "html") {
		return nil, fmt.Errorf("不支持的内容类型: %s", ct)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("读取网页内容失败: %w", err)
	}
	return body, nil
}

// metaTags 读取 og:title 和 og:description，缺失时退回 <title> 和 description
func metaTags(html []byte) (string, string) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return "", ""
	}

	attr := func(selector string) string {
		v, _ := doc.Find(selector).First().Attr("content")
		return strings.TrimSpace(v)
	}

	title := attr(`meta[property="og:title"]`)
	if title == "" {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	description := attr(`meta[property="og:description"]`)
	if description == "" {
		description = attr(`meta[name="description"]`)
	}
	return title, description
}

func truncateRunes(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
