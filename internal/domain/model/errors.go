package model

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrQuotaExceeded 外部服务配额耗尽
	ErrQuotaExceeded = errors.New("quota exceeded")
	// ErrAnalysisFailed 分析在全部重试后仍然失败
	ErrAnalysisFailed = errors.New("analysis failed")
	// ErrInvalidInput 请求参数不合法
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound 记录不存在
	ErrNotFound = errors.New("not found")
)

// QuotaExceededError 配额错误，携带重试等待时间
type QuotaExceededError struct {
	Provider   string
	Limit      int
	ResetAt    time.Time
	RetryAfter time.Duration
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("%s quota exceeded: limit %d, retry after %v",
		e.Provider, e.Limit, e.RetryAfter.Round(time.Second))
}

// Is 使 errors.Is(err, ErrQuotaExceeded) 成立
func (e *QuotaExceededError) Is(target error) bool {
	return target == ErrQuotaExceeded
}

// AnalysisFailedError 分析失败错误，包装最后一次失败原因
type AnalysisFailedError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *AnalysisFailedError) Error() string {
	return fmt.Sprintf("analysis failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *AnalysisFailedError) Unwrap() error {
	return e.Err
}

// Is 使 errors.Is(err, ErrAnalysisFailed) 成立
func (e *AnalysisFailedError) Is(target error) bool {
	return target == ErrAnalysisFailed
}

// InvalidInputError 参数校验错误
type InvalidInputError struct {
	Field   string
	Message string
}

func (e *InvalidInputError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}
