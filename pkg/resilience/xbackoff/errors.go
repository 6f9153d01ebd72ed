package xbackoff

import "errors"

// 调用方误用相关的哨兵错误。
var (
	// ErrNilBackoff 表示传入了 nil 的 *Backoff。
	ErrNilBackoff = errors.New("xbackoff: nil Backoff")

	// ErrNilContext 表示传入了 nil 的 context。
	ErrNilContext = errors.New("xbackoff: nil context")

	// ErrNilOp 表示传入了 nil 的操作函数。
	ErrNilOp = errors.New("xbackoff: nil operation")
)

// RetryableError 可重试分类能力。
// 实现此接口的错误会在 OrRetry 分类时按 Retryable() 的返回值判定，
// 无需调用方另行提供判断函数。
type RetryableError interface {
	error
	Retryable() bool
}

// taggedError 携带固定重试分类的包装错误。
type taggedError struct {
	err       error
	retryable bool
	fallback  string // 内部错误为 nil 时的描述
}

func (e *taggedError) Error() string {
	if e.err == nil {
		return e.fallback
	}
	return e.err.Error()
}

func (e *taggedError) Unwrap() error {
	return e.err
}

func (e *taggedError) Retryable() bool {
	return e.retryable
}

// Permanent 将错误标记为永久性（不应重试）。
func Permanent(err error) error {
	return &taggedError{err: err, retryable: false, fallback: "permanent error"}
}

// Temporary 将错误标记为临时性（应该重试）。
func Temporary(err error) error {
	return &taggedError{err: err, retryable: true, fallback: "temporary error"}
}

// IsRetryable 检查错误是否可重试。
// 规则：
//   - nil 错误：不需要重试（视为成功）；
//   - 错误链上存在 RetryableError 实现：按 Retryable() 返回值判定；
//   - 其他错误：默认视为可重试。
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var re RetryableError
	if errors.As(err, &re) {
		return re.Retryable()
	}

	// 默认：未知错误视为可重试
	return true
}

// IsPermanent 检查错误是否为永久性错误。
func IsPermanent(err error) bool {
	if err == nil {
		return false
	}
	return !IsRetryable(err)
}

var _ RetryableError = (*taggedError)(nil)
