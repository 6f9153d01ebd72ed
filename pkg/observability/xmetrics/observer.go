package xmetrics

import (
	"context"
	"time"

	"github.com/omeyang/xbackoff/pkg/resilience/xbackoff"
)

// Outcome 标识一次尝试的结果，用作指标维度。
type Outcome string

const (
	// OutcomeSuccess 尝试成功。
	OutcomeSuccess Outcome = "success"
	// OutcomeRetryable 尝试失败且可能重试。
	OutcomeRetryable Outcome = "retryable"
	// OutcomeFatal 尝试失败且不可重试。
	OutcomeFatal Outcome = "fatal"
	// OutcomeTimeout 重试预算耗尽。
	OutcomeTimeout Outcome = "timeout"
)

// OutcomeOf 把失败分类映射为指标维度。nil 失败表示成功。
func OutcomeOf(f *xbackoff.Failure) Outcome {
	if f == nil {
		return OutcomeSuccess
	}
	switch f.Class() {
	case xbackoff.ClassFatal:
		return OutcomeFatal
	case xbackoff.ClassTimedOut:
		return OutcomeTimeout
	default:
		return OutcomeRetryable
	}
}

// Observer 定义重试序列的观测接口。
type Observer interface {
	// ObserveAttempt 记录一次尝试及其结果。err 可为 nil。
	ObserveAttempt(ctx context.Context, operation string, outcome Outcome, err error)

	// ObserveDelay 记录一次退避等待的时长。
	ObserveDelay(ctx context.Context, operation string, delay time.Duration)
}

// NoopObserver 是空实现。
type NoopObserver struct{}

// ObserveAttempt 空实现，不做任何处理。
func (NoopObserver) ObserveAttempt(context.Context, string, Outcome, error) {}

// ObserveDelay 空实现，不做任何处理。
func (NoopObserver) ObserveDelay(context.Context, string, time.Duration) {}

// InspectFunc 把 Observer 适配为 Result.Inspect 的钩子。
// Inspect 只在失败时触发，成功的尝试需要调用方自行上报
// （或只关心失败计数）。obs 为 nil 时返回空钩子。
func InspectFunc(ctx context.Context, obs Observer, operation string) func(*xbackoff.Failure) {
	if obs == nil {
		return func(*xbackoff.Failure) {}
	}
	return func(f *xbackoff.Failure) {
		obs.ObserveAttempt(ctx, operation, OutcomeOf(f), f.Unwrap())
	}
}
