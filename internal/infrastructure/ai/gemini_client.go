package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wolfitem/ai-news/internal/domain/model"
	"github.com/wolfitem/ai-news/internal/infrastructure/logger"
	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.0-flash"

// GeminiClient 使用 Gemini 结构化输出生成摘要和情感提示
type GeminiClient struct {
	config model.GeminiConfig
	client *genai.Client
}

// NewGeminiClient 创建Gemini客户端
func NewGeminiClient(ctx context.Context, config model.GeminiConfig) (*GeminiClient, error) {
	if config.APIKey == "" {
		return nil, errors.New("未配置Gemini API密钥")
	}
	if config.Model == "" {
		config.Model = defaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("初始化Gemini客户端失败: %w", err)
	}

	return &GeminiClient{config: config, client: client}, nil
}

// Name 返回提供方名称
func (c *GeminiClient) Name() string {
	return "gemini"
}

// summarySchema 摘要结构化输出的JSON Schema
func summarySchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"summary": {
				Type:        genai.TypeString,
				Description: "Concise summary of the article in the article's language",
			},
			"sentimentHint": {
				Type: genai.TypeString,
				Enum: []string{model.SentimentPositive, model.SentimentNeutral, model.SentimentNegative},
			},
		},
		Required: []string{"summary", "sentimentHint"},
	}
}

// Invoke 调用模型并解析结构化输出
func (c *GeminiClient) Invoke(ctx context.Context, prompt string) (model.SummaryOutput, error) {
	if c.config.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(c.config.TimeoutSeconds)*time.Second)
		defer cancel()
	}

	temperature := c.config.Temperature
	if temperature <= 0 {
		temperature = 0.3
	}
	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(temperature),
		ResponseMIMEType: "application/json",
		ResponseSchema:   summarySchema(),
	}
	if c.config.MaxOutputTokens > 0 {
		config.MaxOutputTokens = int32(c.config.MaxOutputTokens)
	}

	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
	resp, err := c.client.Models.GenerateContent(ctx, c.config.Model, contents, config)
	if err != nil {
		return model.SummaryOutput{}, fmt.Errorf("Gemini调用失败: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return model.SummaryOutput{}, errors.New("Gemini响应为空")
	}

	out, err := ParseSummaryOutput(resp.Text())
	if err != nil {
		return model.SummaryOutput{}, err
	}

	if resp.UsageMetadata != nil {
		logger.Debug("Gemini调用成功", "model", c.config.Model, "total_tokens", resp.UsageMetadata.TotalTokenCount)
	}
	return out, nil
}

// ParseSummaryOutput 解析模型返回的JSON，兼容被 ``` 代码块包裹的输出
func ParseSummaryOutput(raw string) (model.SummaryOutput, error) {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)
	if text == "" {
		return model.SummaryOutput{}, errors.New("模型输出为空")
	}

	var out model.SummaryOutput
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return model.SummaryOutput{}, fmt.Errorf("解析模型输出失败: %w", err)
	}
	out.Summary = strings.TrimSpace(out.Summary)
	out.SentimentHint = strings.ToLower(strings.TrimSpace(out.SentimentHint))
	return out, nil
}
