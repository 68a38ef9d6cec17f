package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/wolfitem/ai-news/internal/domain/model"
)

// QuotaTracker 固定窗口请求计数器。
// 窗口到期后的第一次调用将计数清零，并把 windowResetAt 推到下一个窗口；
// 不是滑动窗口，窗口边界处允许突发。
type QuotaTracker struct {
	mu            sync.Mutex
	provider      string
	limit         int
	count         int
	windowResetAt time.Time
	nextReset     func(now time.Time) time.Time
	now           func() time.Time
}

// Status 配额状态
type Status struct {
	Provider    string
	Limit       int
	Used        int
	Remaining   int
	PercentUsed float64
	ResetAt     time.Time
	ResetIn     time.Duration
}

// NewQuotaTracker 创建按固定时长滚动的配额计数器
func NewQuotaTracker(provider string, limit int, window time.Duration) *QuotaTracker {
	return newQuotaTracker(provider, limit, func(now time.Time) time.Time {
		return now.Add(window)
	}, time.Now)
}

// NewDailyQuotaTracker 创建在本地午夜重置的配额计数器
func NewDailyQuotaTracker(provider string, limit int) *QuotaTracker {
	return newQuotaTracker(provider, limit, NextLocalMidnight, time.Now)
}

// NewQuotaTrackerWithClock 使用自定义时钟创建计数器
func NewQuotaTrackerWithClock(provider string, limit int, nextReset func(time.Time) time.Time, now func() time.Time) *QuotaTracker {
	return newQuotaTracker(provider, limit, nextReset, now)
}

func newQuotaTracker(provider string, limit int, nextReset func(time.Time) time.Time, now func() time.Time) *QuotaTracker {
	return &QuotaTracker{
		provider:      provider,
		limit:         limit,
		nextReset:     nextReset,
		now:           now,
		windowResetAt: nextReset(now()),
	}
}

// NextLocalMidnight 返回 now 之后的下一个本地午夜
func NextLocalMidnight(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, now.Location())
}

// rollLocked 窗口到期时重置计数，调用方需持有锁
func (q *QuotaTracker) rollLocked(now time.Time) {
	if !now.Before(q.windowResetAt) {
		q.count = 0
		q.windowResetAt = q.nextReset(now)
	}
}

// TryConsume 尝试消耗一个配额单位，配额耗尽时返回 false
func (q *QuotaTracker) TryConsume() bool {
	if q.limit <= 0 {
		return true // 不限额
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	q.rollLocked(q.now())
	if q.count < q.limit {
		q.count++
		return true
	}
	return false
}

// Consume 消耗一个配额单位，配额耗尽时返回 *model.QuotaExceededError
func (q *QuotaTracker) Consume() error {
	if q.TryConsume() {
		return nil
	}
	return q.Err()
}

// Remaining 返回当前窗口剩余的请求数
func (q *QuotaTracker) Remaining() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.rollLocked(q.now())
	remaining := q.limit - q.count
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// ResetAt 返回当前窗口的重置时间
func (q *QuotaTracker) ResetAt() time.Time {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.rollLocked(q.now())
	return q.windowResetAt
}

// GetStatus 获取当前状态
func (q *QuotaTracker) GetStatus() Status {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now()
	q.rollLocked(now)

	remaining := q.limit - q.count
	if remaining < 0 {
		remaining = 0
	}
	var percentUsed float64
	if q.limit > 0 {
		percentUsed = float64(q.count) / float64(q.limit) * 100
	}

	return Status{
		Provider:    q.provider,
		Limit:       q.limit,
		Used:        q.count,
		Remaining:   remaining,
		PercentUsed: percentUsed,
		ResetAt:     q.windowResetAt,
		ResetIn:     q.windowResetAt.Sub(now),
	}
}

// Err 构造当前窗口的配额错误
func (q *QuotaTracker) Err() error {
	status := q.GetStatus()
	retryAfter := status.ResetIn
	if retryAfter < 0 {
		retryAfter = 0
	}
	return &model.QuotaExceededError{
		Provider:   q.provider,
		Limit:      q.limit,
		ResetAt:    status.ResetAt,
		RetryAfter: retryAfter,
	}
}

// Backoff 返回第 attempt 次失败后的等待时间: base * 2^attempt
func Backoff(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		base = time.Second
	}
	return base * time.Duration(1<<attempt)
}

// Sleep 等待 d 或直到 ctx 取消
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
