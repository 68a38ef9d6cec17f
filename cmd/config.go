package cmd

import (
	"time"

	"github.com/spf13/viper"
	"github.com/wolfitem/ai-news/internal/domain/model"
)

// setDefaults 设置各配置项的默认值
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":3000")
	v.SetDefault("server.rate_limit", 0)

	v.SetDefault("gemini.model", "gemini-2.0-flash")
	v.SetDefault("gemini.temperature", 0.3)
	v.SetDefault("gemini.max_output_tokens", 1024)
	v.SetDefault("gemini.timeout_seconds", 30)

	v.SetDefault("deepseek.model", "deepseek-chat")
	v.SetDefault("deepseek.max_tokens", 1024)
	v.SetDefault("deepseek.api_timeout", 30)

	v.SetDefault("summarizer.provider", "gemini")
	v.SetDefault("summarizer.per_minute_limit", 15)

	v.SetDefault("news.provider", "gnews")
	v.SetDefault("news.language", "en")
	v.SetDefault("news.max_results", 100)
	v.SetDefault("news.daily_limit", 100)
	v.SetDefault("news.cache_ttl", "5m")
	v.SetDefault("news.max_displayed", 40)
	v.SetDefault("news.feed_concurrency", 3)
	v.SetDefault("news.timeout_seconds", 15)

	v.SetDefault("extractor.enabled", true)
	v.SetDefault("extractor.timeout_seconds", 10)
	v.SetDefault("extractor.requests_per_second", 2)
	v.SetDefault("extractor.max_chars", 12000)

	v.SetDefault("analysis.max_retries", 3)
	v.SetDefault("analysis.backoff_base", "1s")
	v.SetDefault("analysis.max_batch", 10)

	v.SetDefault("database.file_path", "data/ai-news.db")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.console", true)
}

// loadConfig 从 viper 读取完整配置
func loadConfig(v *viper.Viper) model.AppConfig {
	return model.AppConfig{
		Server: model.ServerConfig{
			Address:   v.GetString("server.address"),
			RateLimit: v.GetFloat64("server.rate_limit"),
		},
		Gemini: model.GeminiConfig{
			APIKey:          v.GetString("gemini.api_key"),
			Model:           v.GetString("gemini.model"),
			Temperature:     float32(v.GetFloat64("gemini.temperature")),
			MaxOutputTokens: v.GetInt("gemini.max_output_tokens"),
			TimeoutSeconds:  v.GetInt("gemini.timeout_seconds"),
		},
		Deepseek: model.DeepseekConfig{
			APIKey:     v.GetString("deepseek.api_key"),
			Model:      v.GetString("deepseek.model"),
			MaxTokens:  v.GetInt("deepseek.max_tokens"),
			APIUrl:     v.GetString("deepseek.api_url"),
			APITimeout: v.GetInt("deepseek.api_timeout"),
		},
		Summarizer: model.SummarizerConfig{
			Provider:       v.GetString("summarizer.provider"),
			PerMinuteLimit: v.GetInt("summarizer.per_minute_limit"),
		},
		News: model.NewsConfig{
			Provider:        v.GetString("news.provider"),
			APIKey:          v.GetString("news.api_key"),
			Endpoint:        v.GetString("news.endpoint"),
			Language:        v.GetString("news.language"),
			MaxResults:      v.GetInt("news.max_results"),
			DailyLimit:      v.GetInt("news.daily_limit"),
			CacheTTL:        durationOr(v.GetDuration("news.cache_ttl"), 5*time.Minute),
			MaxDisplayed:    v.GetInt("news.max_displayed"),
			FeedOpmlFile:    v.GetString("news.feed_opml_file"),
			FeedSearchURL:   v.GetString("news.feed_search_url"),
			FeedConcurrency: v.GetInt("news.feed_concurrency"),
			TimeoutSeconds:  v.GetInt("news.timeout_seconds"),
		},
		Extractor: model.ExtractorConfig{
			Enabled:           v.GetBool("extractor.enabled"),
			TimeoutSeconds:    v.GetInt("extractor.timeout_seconds"),
			RequestsPerSecond: v.GetFloat64("extractor.requests_per_second"),
			MaxChars:          v.GetInt("extractor.max_chars"),
		},
		Analysis: model.AnalysisConfig{
			MaxRetries:  v.GetInt("analysis.max_retries"),
			BackoffBase: durationOr(v.GetDuration("analysis.backoff_base"), time.Second),
			MaxBatch:    v.GetInt("analysis.max_batch"),
		},
		Database: model.DatabaseConfig{
			FilePath: v.GetString("database.file_path"),
		},
	}
}

func durationOr(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}
