package xbackoff

import (
	"context"
	"time"
)

// tryConfig 单次尝试的执行配置。
type tryConfig struct {
	makeErr func(last error) error
}

// TryOption 单次尝试的执行选项。
type TryOption func(*tryConfig)

// EnforceDeadlineWith 让本次尝试在整体截止时间到达时被强制取消：
// 操作与截止时间定时器赛跑，定时器先到则在途操作被放弃
// （其部分进展被丢弃，操作通过被取消的子 context 感知退出），
// 并调用 makeErr 合成一个新的错误作为超时结果。
// makeErr 接收上一次尝试存储的错误（可能为 nil）作为上下文。
//
// 控制器没有设置截止时间、或 makeErr 为 nil 时，本选项不生效。
func EnforceDeadlineWith(makeErr func(last error) error) TryOption {
	return func(c *tryConfig) {
		if makeErr != nil {
			c.makeErr = makeErr
		}
	}
}

// TryContext 尝试一次上下文感知的操作（异步适配器）。
//
// 等待阶段挂起的是逻辑任务而非线程：对时钟定时器与 ctx.Done 一起 select，
// 不做轮询；ctx 取消会立刻解除等待、释放定时器，并以 ClassFatal 返回
// ctx 的错误。
//
// 默认情况下，操作一旦开始执行就不会在截止时间处被打断，而是运行到完成，
// 只有下一次调度决策才会观察到截止时间。需要在截止时间处中断在途操作时，
// 使用 EnforceDeadlineWith；彼时若截止时间在操作开始前就已流逝，
// op 完全不会被调用。
func TryContext[T any](ctx context.Context, b *Backoff, op func(ctx context.Context) (T, error), opts ...TryOption) *Result[T] {
	if b == nil {
		return failed[T](nil, Fatal(ErrNilBackoff))
	}
	b.beginAttempt()
	if ctx == nil {
		return failed[T](b, Fatal(ErrNilContext))
	}
	if op == nil {
		return failed[T](b, Fatal(ErrNilOp))
	}

	var cfg tryConfig
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	at, ok, err := b.NextRetryAt()
	if err != nil {
		return failed[T](b, timeoutFailure(err))
	}
	if ok {
		if sleepErr := b.sleepUntilCtx(ctx, at); sleepErr != nil {
			return failed[T](b, Fatal(sleepErr))
		}
	}

	if cfg.makeErr != nil && !b.deadline.IsZero() {
		return runEnforced(ctx, b, op, cfg.makeErr)
	}

	value, opErr := op(ctx)
	if opErr != nil {
		return failed[T](b, MaybeRetryable(opErr))
	}
	return succeeded(b, value)
}

// sleepUntilCtx 挂起任务直到 at 或 ctx 取消，取消时返回 ctx 的错误。
func (b *Backoff) sleepUntilCtx(ctx context.Context, at time.Time) error {
	d := at.Sub(b.clk.Now())
	if d <= 0 {
		return nil
	}
	timer := b.clk.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.Chan():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// runEnforced 在截止时间强制生效的模式下执行操作。
func runEnforced[T any](ctx context.Context, b *Backoff, op func(ctx context.Context) (T, error), makeErr func(last error) error) *Result[T] {
	now := b.clk.Now()
	if !now.Before(b.deadline) {
		// 截止时间已过：操作完全不被调用，任何惰性构造都被跳过。
		return failed[T](b, TimedOut(makeErr(b.takeLastErr())))
	}

	opCtx, cancel := context.WithDeadline(ctx, b.deadline)
	defer cancel()

	type opResult struct {
		value T
		err   error
	}
	// 缓冲一格：操作 goroutine 在被放弃后也能发送并退出，不泄漏。
	done := make(chan opResult, 1)
	go func() {
		value, err := op(opCtx)
		done <- opResult{value: value, err: err}
	}()

	timer := b.clk.NewTimer(b.deadline.Sub(now))
	defer timer.Stop()

	select {
	case res := <-done:
		if res.err != nil {
			return failed[T](b, MaybeRetryable(res.err))
		}
		return succeeded(b, res.value)
	case <-timer.Chan():
		// 在途操作被放弃，部分进展丢弃。
		return failed[T](b, TimedOut(makeErr(b.takeLastErr())))
	case <-ctx.Done():
		return failed[T](b, Fatal(ctx.Err()))
	}
}
