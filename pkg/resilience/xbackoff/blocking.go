package xbackoff

import (
	"errors"
	"time"
)

// TryBlocking 尝试一次阻塞式操作。
//
// 先向控制器询问下次尝试时刻，必要时挂起当前 goroutine 等到该时刻
// （时刻已过则不等待），然后调用 op 恰好一次，失败包装为 ClassMaybeRetryable。
//
// 截止时间只在调用 op 之前检查：一旦开始执行，阻塞操作会运行到完成，
// 途中取消是操作自己的责任（例如它自带的超时参数）。
//
// 设计决策: 这是泛型函数，Go 的方法不能引入新类型参数，
// 因此与 TryContext 一样只能作为包级函数提供。
func TryBlocking[T any](b *Backoff, op func() (T, error)) *Result[T] {
	if b == nil {
		return failed[T](nil, Fatal(ErrNilBackoff))
	}
	b.beginAttempt()
	if op == nil {
		return failed[T](b, Fatal(ErrNilOp))
	}

	at, ok, err := b.NextRetryAt()
	if err != nil {
		return failed[T](b, timeoutFailure(err))
	}
	if ok {
		b.sleepUntil(at)
	}

	value, opErr := op()
	if opErr != nil {
		return failed[T](b, MaybeRetryable(opErr))
	}
	return succeeded(b, value)
}

// sleepUntil 挂起当前 goroutine 直到 at；时刻已过时立即返回。
func (b *Backoff) sleepUntil(at time.Time) {
	d := at.Sub(b.clk.Now())
	if d <= 0 {
		return
	}
	<-b.clk.After(d)
}

// timeoutFailure 把 NextRetryAt 的错误转换为对应的 Failure。
func timeoutFailure(err error) *Failure {
	var te *TimeoutError
	if errors.As(err, &te) {
		return TimedOut(te.LastError)
	}
	return Fatal(err)
}
