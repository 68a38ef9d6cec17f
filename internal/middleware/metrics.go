package middleware

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/wolfitem/ai-news/internal/infrastructure/logger"
)

// 调用结果标签
const (
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeFallback = "fallback"
	OutcomeQuota    = "quota_exceeded"
)

// MetricsCollector 收集外部调用、缓存和分析流程指标
type MetricsCollector struct {
	registry *prometheus.Registry

	providerCalls    *prometheus.CounterVec
	providerDuration *prometheus.HistogramVec
	cacheLookups     *prometheus.CounterVec
	analyses         *prometheus.CounterVec
	analysisAttempts prometheus.Histogram
}

// NewMetricsCollector 创建新的指标收集器，并注册到独立的 registry
func NewMetricsCollector() *MetricsCollector {
	m := &MetricsCollector{
		registry: prometheus.NewRegistry(),
		providerCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ainews",
			Name:      "provider_calls_total",
			Help:      "External provider calls by provider and outcome.",
		}, []string{"provider", "outcome"}),
		providerDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ainews",
			Name:      "provider_call_duration_seconds",
			Help:      "External provider call latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ainews",
			Name:      "search_cache_lookups_total",
			Help:      "Search cache lookups by layer (page, master) and result (hit, miss).",
		}, []string{"layer", "result"}),
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ainews",
			Name:      "analyses_total",
			Help:      "Article analyses by final status.",
		}, []string{"status"}),
		analysisAttempts: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ainews",
			Name:      "analysis_attempts",
			Help:      "Pipeline attempts used per analysis.",
			Buckets:   []float64{1, 2, 3, 4, 5},
		}),
	}

	m.registry.MustRegister(
		m.providerCalls,
		m.providerDuration,
		m.cacheLookups,
		m.analyses,
		m.analysisAttempts,
		prometheus.NewGoCollector(),
	)
	return m
}

// Registry 返回指标 registry，供 /metrics 暴露
func (m *MetricsCollector) Registry() *prometheus.Registry {
	return m.registry
}

// RecordProviderCall 记录外部调用
func (m *MetricsCollector) RecordProviderCall(provider, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.providerCalls.WithLabelValues(provider, outcome).Inc()
	if duration > 0 {
		m.providerDuration.WithLabelValues(provider).Observe(duration.Seconds())
	}
}

// RecordCacheLookup 记录缓存查询
func (m *MetricsCollector) RecordCacheLookup(layer string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(layer, result).Inc()
}

// RecordAnalysis 记录分析最终状态和使用的尝试次数
func (m *MetricsCollector) RecordAnalysis(status string, attempts int) {
	if m == nil {
		return
	}
	m.analyses.WithLabelValues(status).Inc()
	if attempts > 0 {
		m.analysisAttempts.Observe(float64(attempts))
	}
}

// WithMetrics 中间件函数包装器
type WithMetrics func(ctx context.Context, fn func(context.Context) error) error

// NewMetricsMiddleware 创建记录外部调用耗时和结果的中间件
func NewMetricsMiddleware(collector *MetricsCollector, provider string) WithMetrics {
	return func(ctx context.Context, fn func(context.Context) error) error {
		start := time.Now()

		err := fn(ctx)

		outcome := OutcomeSuccess
		if err != nil {
			outcome = OutcomeFailure
		}
		collector.RecordProviderCall(provider, outcome, time.Since(start))
		if err != nil {
			logger.Debug("外部调用失败", "provider", provider, "duration", time.Since(start), "error", err)
		}
		return err
	}
}
