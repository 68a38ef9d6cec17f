package model

import "time"

// AppConfig 汇总程序运行所需的全部配置
type AppConfig struct {
	Server     ServerConfig
	Gemini     GeminiConfig
	Deepseek   DeepseekConfig
	Summarizer SummarizerConfig
	News       NewsConfig
	Extractor  ExtractorConfig
	Analysis   AnalysisConfig
	Database   DatabaseConfig
}

// ServerConfig HTTP服务配置
type ServerConfig struct {
	Address   string
	RateLimit float64 // 每个客户端每秒请求数，0 表示不限制
}

// GeminiConfig 包含Gemini API的配置信息
type GeminiConfig struct {
	APIKey          string  // API密钥
	Model           string  // 模型名称
	Temperature     float32 // 采样温度
	MaxOutputTokens int     // 最大输出令牌数
	TimeoutSeconds  int     // 单次调用超时
}

// DeepseekConfig 包含Deepseek API的配置信息
type DeepseekConfig struct {
	APIKey     string // API密钥
	Model      string // 模型名称
	MaxTokens  int    // 最大令牌数
	APIUrl     string // API接口地址
	APITimeout int    // 超时时间(秒)
}

// SummarizerConfig 摘要服务配置
type SummarizerConfig struct {
	Provider       string // gemini 或 deepseek
	PerMinuteLimit int    // 每分钟调用上限
}

// NewsConfig 新闻搜索配置
type NewsConfig struct {
	Provider        string        // gnews 或 feed
	APIKey          string        // GNews API密钥
	Endpoint        string        // GNews 搜索接口地址
	Language        string        // 搜索语言
	MaxResults      int           // 单次拉取的最大文章数
	DailyLimit      int           // 每日调用上限
	CacheTTL        time.Duration // 缓存有效期
	MaxDisplayed    int           // 累计展示上限
	FeedOpmlFile    string        // RSS源列表(OPML)
	FeedSearchURL   string        // RSS搜索地址模板，%s 为查询词
	FeedConcurrency int           // RSS并发数
	TimeoutSeconds  int           // 请求超时
}

// ExtractorConfig 正文抽取配置
type ExtractorConfig struct {
	Enabled           bool
	TimeoutSeconds    int
	RequestsPerSecond float64
	MaxChars          int
}

// AnalysisConfig 分析流程配置
type AnalysisConfig struct {
	MaxRetries  int
	BackoffBase time.Duration
	MaxBatch    int
}

// DatabaseConfig 包含数据库的配置信息
type DatabaseConfig struct {
	FilePath string // 数据库文件路径
}
