package service

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/wolfitem/ai-news/internal/domain/model"
)

// Validator 提供输入和模型输出校验
type Validator struct {
	validate *validator.Validate
}

// NewValidator 创建新的验证器实例
func NewValidator() *Validator {
	return &Validator{validate: validator.New()}
}

// ValidateSearch 校验搜索参数：查询词非空且不超过100字符，page 和 limit 在 [1,10]
func (v *Validator) ValidateSearch(params model.SearchParams) error {
	params.Query = strings.TrimSpace(params.Query)
	return v.structErr(params)
}

// ValidateArticle 校验待分析文章，必须包含 url 和 title
func (v *Validator) ValidateArticle(article model.Article) error {
	return v.structErr(article)
}

// ValidateBatch 校验批量分析请求
func (v *Validator) ValidateBatch(articles []model.Article, max int) error {
	if len(articles) == 0 {
		return &model.InvalidInputError{Field: "articles", Message: "articles array is required"}
	}
	if len(articles) > max {
		return &model.InvalidInputError{
			Field:   "articles",
			Message: fmt.Sprintf("maximum %d articles can be analyzed at once", max),
		}
	}
	for i, article := range articles {
		if err := v.ValidateArticle(article); err != nil {
			return &model.InvalidInputError{Field: fmt.Sprintf("articles[%d]", i), Message: err.Error()}
		}
	}
	return nil
}

// ValidateSummary 校验模型结构化输出：summary 非空，sentimentHint 为三种标签之一
func (v *Validator) ValidateSummary(out model.SummaryOutput) error {
	if strings.TrimSpace(out.Summary) == "" {
		return &model.InvalidInputError{Field: "summary", Message: "summary must not be empty"}
	}
	return v.structErr(out)
}

func (v *Validator) structErr(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &model.InvalidInputError{
			Field:   fe.Field(),
			Message: fmt.Sprintf("failed on '%s' rule", fe.Tag()),
		}
	}
	return &model.InvalidInputError{Message: err.Error()}
}

// 禁止抓取的内网地址
var blockedHosts = []string{
	"localhost", "127.", "0.0.0.0", "::1",
	"192.168.", "10.", "172.16.", "169.254.",
}

// ValidateFetchURL 校验待抓取的URL，只允许 http/https 且禁止访问内部网络
func (v *Validator) ValidateFetchURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return errors.New("URL不能为空")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("无效的URL格式: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("只允许HTTP/HTTPS协议: %s", raw)
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return fmt.Errorf("URL缺少主机名: %s", raw)
	}
	for _, banned := range blockedHosts {
		if host == banned || strings.HasPrefix(host, banned) {
			return fmt.Errorf("禁止访问内部网络地址: %s", host)
		}
	}
	return nil
}

// GetAPIKey 优先从环境变量获取API密钥，其次使用配置值
func (v *Validator) GetAPIKey(envKey, configured string) (string, error) {
	if apiKey := os.Getenv(envKey); apiKey != "" {
		return apiKey, nil
	}
	if configured == "" {
		return "", fmt.Errorf("未找到API密钥配置，请设置环境变量: export %s=your-key-here", envKey)
	}
	if strings.Contains(configured, "****") {
		return "", errors.New("检测到占位符API密钥，请使用环境变量设置真实密钥")
	}
	return configured, nil
}
