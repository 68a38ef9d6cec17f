package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/wolfitem/ai-news/internal/domain/model"
	"github.com/wolfitem/ai-news/internal/infrastructure/logger"
)

const defaultDeepseekEndpoint = "https://api.deepseek.com/v1/chat/completions"

// JSON 模式下要求模型按该格式输出
const deepseekJSONInstruction = `Respond only with a JSON object of the form {"summary": "...", "sentimentHint": "positive|neutral|negative"}.`

// DeepseekClient 基于 Deepseek chat completions 的摘要提供方
type DeepseekClient struct {
	config   model.DeepseekConfig
	endpoint string
	client   *http.Client
}

// NewDeepseekClient 创建新的Deepseek客户端
func NewDeepseekClient(config model.DeepseekConfig) (*DeepseekClient, error) {
	if config.APIKey == "" {
		return nil, errors.New("未配置Deepseek API密钥")
	}
	endpoint := config.APIUrl
	if endpoint == "" {
		endpoint = defaultDeepseekEndpoint
	}
	if _, err := url.Parse(endpoint); err != nil {
		return nil, fmt.Errorf("无效的API端点: %w", err)
	}
	if config.Model == "" {
		config.Model = "deepseek-chat"
	}
	timeout := config.APITimeout
	if timeout <= 0 {
		timeout = 30
	}

	transport := &http.Transport{
		ResponseHeaderTimeout: 30 * time.Second,
		TLSHandshakeTimeout:   15 * time.Second,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
	}

	return &DeepseekClient{
		config:   config,
		endpoint: endpoint,
		client: &http.Client{
			Timeout:   time.Duration(timeout) * time.Second,
			Transport: transport,
		},
	}, nil
}

// Name 返回提供方名称
func (c *DeepseekClient) Name() string {
	return "deepseek"
}

// Invoke 以 JSON 模式调用模型并解析结构化输出
func (c *DeepseekClient) Invoke(ctx context.Context, prompt string) (model.SummaryOutput, error) {
	requestBody := map[string]interface{}{
		"model": c.config.Model,
		"messages": []map[string]string{
			{"role": "system", "content": deepseekJSONInstruction},
			{"role": "user", "content": prompt},
		},
		"stream":          false,
		"temperature":     0.3,
		"response_format": map[string]string{"type": "json_object"},
	}
	if c.config.MaxTokens > 0 {
		requestBody["max_tokens"] = c.config.MaxTokens
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return model.SummaryOutput{}, fmt.Errorf("创建请求体失败: %w", err)
	}

	content, err := c.doRequest(ctx, jsonData)
	if err != nil {
		return model.SummaryOutput{}, err
	}
	return ParseSummaryOutput(content)
}

// doRequest 执行HTTP请求
func (c *DeepseekClient) doRequest(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("创建请求失败: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("User-Agent", "AI-News-Client/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("发送请求失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("API返回错误: %d %s", resp.StatusCode, string(body))
	}

	var response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage struct {
			PromptTokens int `json:"prompt_tokens"`
			TotalTokens  int `json:"total_tokens"`
		} `json:"usage"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("解析响应失败: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", errors.New("响应不包含有效内容")
	}

	logger.Debug("Deepseek调用成功", "prompt_tokens", response.Usage.PromptTokens, "total_tokens", response.Usage.TotalTokens)
	return response.Choices[0].Message.Content, nil
}
