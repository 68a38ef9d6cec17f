package model

import "time"

// 文章状态
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// 情感标签
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// 批量分析单项结果状态
const (
	SettledFulfilled = "fulfilled"
	SettledRejected  = "rejected"
)

// Source 表示文章来源
type Source struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Article 表示一篇新闻文章，以URLHash作为持久化主键
type Article struct {
	URL         string          `json:"url" validate:"required,url"`
	URLHash     string          `json:"urlHash"`
	Title       string          `json:"title" validate:"required"`
	Description string          `json:"description,omitempty"`
	Content     string          `json:"content"`
	Image       string          `json:"image,omitempty"`
	PublishedAt time.Time       `json:"publishedAt"`
	Source      Source          `json:"source"`
	Analysis    *AnalysisResult `json:"analysis,omitempty"`
	SessionID   string          `json:"sessionId,omitempty"`
	SearchQuery string          `json:"searchQuery,omitempty"`
	RetryCount  int             `json:"retryCount"`
	Status      string          `json:"status,omitempty"`
	CreatedAt   time.Time       `json:"createdAt,omitempty"`
	UpdatedAt   time.Time       `json:"updatedAt,omitempty"`
}

// Body 返回用于摘要和情感分析的正文：content 优先，其次 description
func (a Article) Body() string {
	if a.Content != "" {
		return a.Content
	}
	return a.Description
}

// AnalysisResult 表示一次完整的文章分析结果
type AnalysisResult struct {
	Summary        string          `json:"summary"`
	SummaryLength  int             `json:"summaryLength"`
	Sentiment      SentimentResult `json:"sentiment"`
	AnalyzedAt     time.Time       `json:"analyzedAt"`
	ProcessingTime int64           `json:"processingTime"` // 毫秒
}

// SentimentResult 情感分析结果，Score 范围 [-5,5]，Confidence 范围 [0,1]
type SentimentResult struct {
	Label      string           `json:"label"`
	Score      float64          `json:"score"`
	Confidence float64          `json:"confidence"`
	Details    SentimentDetails `json:"details"`
}

// SentimentDetails 情感词明细
type SentimentDetails struct {
	PositiveWords []string `json:"positiveWords"`
	NegativeWords []string `json:"negativeWords"`
	Comparative   float64  `json:"comparative"`
}

// SummaryOutput 摘要服务的结构化输出
type SummaryOutput struct {
	Summary       string `json:"summary" validate:"required"`
	SentimentHint string `json:"sentimentHint" validate:"required,oneof=positive neutral negative"`
}

// ExtractedContent 正文抽取结果
type ExtractedContent struct {
	Title       string
	Description string
	Content     string
}

// ProviderSearchResult 第三方新闻搜索的原始结果
type ProviderSearchResult struct {
	TotalArticles int
	Articles      []Article
}

// SearchResult 分页后的搜索结果
type SearchResult struct {
	Articles     []Article `json:"articles"`
	CurrentPage  int       `json:"currentPage"`
	HasMore      bool      `json:"hasMore"`
	TotalResults int       `json:"totalResults"`
	Cached       bool      `json:"cached"`
}

// SearchParams 搜索请求参数
type SearchParams struct {
	Query string `validate:"required,max=100"`
	Page  int    `validate:"min=1,max=10"`
	Limit int    `validate:"min=1,max=10"`
}

// SettledResult 批量分析中单篇文章的结算结果
type SettledResult struct {
	Article  Article         `json:"article"`
	Status   string          `json:"status"`
	Analysis *AnalysisResult `json:"analysis"`
	Error    string          `json:"error,omitempty"`
}

// BatchSummary 批量分析汇总
type BatchSummary struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}

// BatchResult 批量分析结果
type BatchResult struct {
	Results []SettledResult `json:"results"`
	Summary BatchSummary    `json:"summary"`
}

// HistoryQuery 会话分析历史查询条件
type HistoryQuery struct {
	SessionID string
	Sentiment string
	Page      int
	Limit     int
}

// Pagination 分页信息
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// HistoryResult 会话分析历史
type HistoryResult struct {
	Articles   []Article  `json:"articles"`
	Pagination Pagination `json:"pagination"`
}

// QuotaStatus 外部服务配额状态
type QuotaStatus struct {
	Available         bool      `json:"available"`
	RequestsRemaining int       `json:"requestsRemaining"`
	ResetTime         time.Time `json:"resetTime"`
}

// CacheStats 搜索缓存统计
type CacheStats struct {
	KeyCount int   `json:"keys"`
	Hits     int64 `json:"hits"`
	Misses   int64 `json:"misses"`
}

// ScorerInfo 情感分析器信息
type ScorerInfo struct {
	Available bool     `json:"available"`
	Version   string   `json:"version"`
	Features  []string `json:"features"`
}

// 服务整体状态
const (
	ServiceOperational = "operational"
	ServiceDegraded    = "degraded"
)

// DatabaseStatus 数据库连接状态
type DatabaseStatus struct {
	Connected    bool   `json:"connected"`
	ResponseTime int64  `json:"responseTime"` // 毫秒
	Error        string `json:"error,omitempty"`
}

// ServiceStatus 分析服务状态
type ServiceStatus struct {
	Status     string         `json:"status"`
	Summarizer QuotaStatus    `json:"summarizer"`
	Sentiment  ScorerInfo     `json:"sentiment"`
	Database   DatabaseStatus `json:"database"`
	Timestamp  time.Time      `json:"timestamp"`
}

// NewsStatus 搜索服务状态
type NewsStatus struct {
	Provider          string     `json:"provider"`
	RequestsRemaining int        `json:"requestsRemaining"`
	ResetTime         time.Time  `json:"resetTime"`
	Cache             CacheStats `json:"cache"`
}
