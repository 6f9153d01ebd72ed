package xbackoff

import "strconv"

// Class 标识一次失败的分类标签。
// 标签从不持久化，只在调用点强制一次明确的重试/终止决定。
type Class int

const (
	// ClassMaybeRetryable 新鲜失败，尚未分类。
	ClassMaybeRetryable Class = iota
	// ClassFatal 明确不可重试。
	ClassFatal
	// ClassTimedOut 截止时间已过。
	ClassTimedOut
)

// String 返回 Class 的可读字符串表示，用于调试和日志输出。
func (c Class) String() string {
	switch c {
	case ClassMaybeRetryable:
		return "MaybeRetryable"
	case ClassFatal:
		return "Fatal"
	case ClassTimedOut:
		return "TimedOut"
	default:
		return "Class(" + strconv.Itoa(int(c)) + ")"
	}
}

// Failure 一次尝试的失败结果：分类标签加底层错误。
// ClassTimedOut 的底层错误是超时前最近一次真实失败，
// 或由调用方（EnforceDeadlineWith）合成的错误。
type Failure struct {
	class Class
	err   error
}

// MaybeRetryable 构造一个未分类的新鲜失败。
func MaybeRetryable(err error) *Failure {
	return &Failure{class: ClassMaybeRetryable, err: err}
}

// Fatal 构造一个明确不可重试的失败。
func Fatal(err error) *Failure {
	return &Failure{class: ClassFatal, err: err}
}

// TimedOut 构造一个超时失败，last 为最近一次真实失败（可为 nil）。
func TimedOut(last error) *Failure {
	return &Failure{class: ClassTimedOut, err: last}
}

// Class 返回失败的分类标签。
func (f *Failure) Class() Class {
	if f == nil {
		return ClassMaybeRetryable
	}
	return f.class
}

func (f *Failure) Error() string {
	if f == nil || f.err == nil {
		return f.Class().String()
	}
	return f.err.Error()
}

// Unwrap 返回底层错误。
func (f *Failure) Unwrap() error {
	if f == nil {
		return nil
	}
	return f.err
}

// Result 单次尝试的结果包装，由执行适配器 TryBlocking / TryContext 返回。
//
// 必须且只能通过 OrRetry / OrRetryIf 之一消费——这是失败离开重试序列的
// 唯一通道，不存在静默丢弃或静默重试的路径。未消费就对同一 Backoff
// 发起新的尝试会 panic（见 Backoff.beginAttempt）。
type Result[T any] struct {
	b       *Backoff
	value   T
	failure *Failure // nil 表示成功
}

func succeeded[T any](b *Backoff, value T) *Result[T] {
	return &Result[T]{b: b, value: value}
}

func failed[T any](b *Backoff, f *Failure) *Result[T] {
	return &Result[T]{b: b, failure: f}
}

// OnTimeout 在分类之前把超时失败改写为其他标签
// （例如折算回 ClassMaybeRetryable 以便继续重试）。
// fn 接收超时携带的最近一次失败；返回 nil 时保持原样。
// 非超时结果原样通过。
func (r *Result[T]) OnTimeout(fn func(last error) *Failure) *Result[T] {
	if r == nil || fn == nil {
		return r
	}
	if r.failure != nil && r.failure.class == ClassTimedOut {
		if f := fn(r.failure.err); f != nil {
			r.failure = f
		}
	}
	return r
}

// Inspect 观察钩子（记录日志、指标等），不改变结果。
// 成功结果不会触发 fn。
func (r *Result[T]) Inspect(fn func(*Failure)) *Result[T] {
	if r != nil && r.failure != nil && fn != nil {
		fn(r.failure)
	}
	return r
}

// OrRetry 用 RetryableError 能力分类：底层错误按 IsRetryable 判定。
// 语义见 OrRetryIf。
func (r *Result[T]) OrRetry() (T, bool, error) {
	return r.OrRetryIf(func(f *Failure) bool {
		return IsRetryable(f.Unwrap())
	})
}

// OrRetryIf 消费本次结果并做出重试决定：
//   - 成功：清除控制器存储的最近错误（不会有陈旧错误在之后的超时里复活），
//     返回 (value, true, nil)；
//   - 失败且判定可重试：把底层错误存入控制器并返回 (零值, false, nil)，
//     表示"继续循环，下一次等待会在下次尝试时被安排"；
//   - 其他：返回 (零值, false, 底层错误)，序列终止。
//
// pred 只对 ClassMaybeRetryable 的失败生效：ClassFatal 与 ClassTimedOut
// 永远不会被判定为可重试，除非先用 OnTimeout 重新打标。
// pred 为 nil 等同于永不重试。
func (r *Result[T]) OrRetryIf(pred func(*Failure) bool) (T, bool, error) {
	var zero T
	if r == nil {
		return zero, false, ErrNilBackoff
	}
	if r.b != nil {
		r.b.outstanding = false
	}

	if r.failure == nil {
		if r.b != nil {
			r.b.lastErr = nil
		}
		return r.value, true, nil
	}

	if r.failure.class == ClassMaybeRetryable && pred != nil && pred(r.failure) {
		if r.b != nil {
			r.b.lastErr = r.failure.err
		}
		return zero, false, nil
	}
	if r.failure.err != nil {
		return zero, false, r.failure.err
	}
	// 底层错误缺失（例如 EnforceDeadlineWith 的 makeErr 返回了 nil）时
	// 退回 Failure 本身，避免终止被误读成重试信号。
	return zero, false, r.failure
}
