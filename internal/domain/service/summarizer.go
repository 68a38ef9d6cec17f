package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/wolfitem/ai-news/internal/domain/model"
	"github.com/wolfitem/ai-news/internal/infrastructure/logger"
	"github.com/wolfitem/ai-news/internal/middleware"
)

// 兜底摘要长度不足该值时改用标题
const minFallbackSummaryLen = 50

const summaryPromptTemplate = `
Analyze this news article and provide:
1. A clear and concise summary in the same language as the article. The summary should capture the main points and important details, ideally between 100-200 words, but adjust the length if the content requires more or less explanation.
2. Initial sentiment assessment

Article Title: %s
Article Content: %s
`

// SummarizationClient 调用生成式模型生成摘要。
// 每次调用先消耗一个配额单位；模型调用失败或输出不合法时退回到启发式摘要，不向上返回错误。
type SummarizationClient struct {
	provider  SummaryProvider
	quota     *middleware.QuotaTracker
	validator *Validator
	metrics   *middleware.MetricsCollector
	log       *logger.ContextLogger
}

// NewSummarizationClient 创建摘要客户端，provider 为 nil 时总是使用启发式摘要
func NewSummarizationClient(provider SummaryProvider, quota *middleware.QuotaTracker, metrics *middleware.MetricsCollector) *SummarizationClient {
	return &SummarizationClient{
		provider:  provider,
		quota:     quota,
		validator: NewValidator(),
		metrics:   metrics,
		log:       logger.WithContext("summarizer"),
	}
}

// BuildSummaryPrompt 构造摘要提示词
func BuildSummaryPrompt(article model.Article) string {
	return fmt.Sprintf(summaryPromptTemplate, article.Title, article.Body())
}

// Summarize 生成摘要和情感提示。配额耗尽时在任何网络调用之前返回 QuotaExceeded。
func (c *SummarizationClient) Summarize(ctx context.Context, article model.Article) (model.SummaryOutput, error) {
	if c.quota != nil {
		if err := c.quota.Consume(); err != nil {
			c.metrics.RecordProviderCall(c.providerName(), middleware.OutcomeQuota, 0)
			return model.SummaryOutput{}, err
		}
	}

	if c.provider == nil {
		return FallbackSummary(article), nil
	}

	start := time.Now()
	out, err := c.provider.Invoke(ctx, BuildSummaryPrompt(article))
	if err == nil {
		err = c.validator.ValidateSummary(out)
		if err != nil {
			err = fmt.Errorf("结构化输出校验失败: %w", err)
		}
	}
	if err != nil {
		c.log.Warn("模型摘要失败，使用启发式摘要", "title", article.Title, "provider", c.provider.Name(), "error", err)
		c.metrics.RecordProviderCall(c.provider.Name(), middleware.OutcomeFallback, time.Since(start))
		return FallbackSummary(article), nil
	}

	c.metrics.RecordProviderCall(c.provider.Name(), middleware.OutcomeSuccess, time.Since(start))
	if c.quota != nil {
		c.log.Info("模型摘要成功", "title", article.Title, "requests_remaining", c.quota.Remaining())
	}
	return out, nil
}

// Available 是否配置了模型提供方
func (c *SummarizationClient) Available() bool {
	return c.provider != nil
}

// QuotaStatus 返回摘要服务配额状态
func (c *SummarizationClient) QuotaStatus() model.QuotaStatus {
	status := model.QuotaStatus{Available: c.Available()}
	if c.quota != nil {
		s := c.quota.GetStatus()
		status.RequestsRemaining = s.Remaining
		status.ResetTime = s.ResetAt
	}
	return status
}

func (c *SummarizationClient) providerName() string {
	if c.provider == nil {
		return "heuristic"
	}
	return c.provider.Name()
}

// FallbackSummary 确定性的启发式摘要：取正文前三句；不足50字符时使用标题。情感提示为 neutral。
func FallbackSummary(article model.Article) model.SummaryOutput {
	sentences := strings.Split(article.Body(), ". ")
	if len(sentences) > 3 {
		sentences = sentences[:3]
	}
	summary := strings.Join(sentences, ". ")
	if utf8.RuneCountInString(summary) < minFallbackSummaryLen {
		summary = article.Title
	}
	return model.SummaryOutput{
		Summary:       summary,
		SentimentHint: model.SentimentNeutral,
	}
}
