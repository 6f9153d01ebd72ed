package xbackoff

import (
	"errors"
	"fmt"
	"time"

	"github.com/juju/clock"
)

// TimeoutError 表示截止时间已过、不允许再安排后续尝试。
// LastError 携带最近一次真实失败（或由调用方通过 EnforceDeadlineWith 合成的错误），
// 仅用于诊断。
type TimeoutError struct {
	LastError error
}

func (e *TimeoutError) Error() string {
	if e.LastError == nil {
		return "xbackoff: retry deadline exceeded"
	}
	return fmt.Sprintf("xbackoff: retry deadline exceeded, last error: %v", e.LastError)
}

func (e *TimeoutError) Unwrap() error {
	return e.LastError
}

// Backoff 有状态退避控制器，驱动单个调用点完成一次完整的重试序列。
//
// 一个实例只服务一个逻辑序列：内部的尝试计数与最近错误是序列私有的
// 单写者状态，不可被两个序列并发使用。需要跨大量并发操作共享调度时，
// 共享的应当是无状态的 Core（见 xsched 包），而不是 Backoff。
//
// 生命周期：由 StartUnlimited / StartTimeout / StartDeadline 之一创建，
// 由执行适配器 TryBlocking / TryContext 通过"尝试"循环独占推进，
// 序列结束（成功、致命错误或超时）后丢弃。
type Backoff struct {
	core      Core
	clk       clock.Clock
	rnd       Random
	startedAt time.Time
	deadline  time.Time // 零值表示无限重试

	numAttempts uint64
	lastErr     error

	// outstanding 表示上一次尝试返回的 Result 尚未被 OrRetry/OrRetryIf 消费。
	outstanding bool
}

// StartOption 控制器构造选项。
type StartOption func(*Backoff)

// WithClock 设置时钟。默认 clock.WallClock；测试中可注入 testclock。
// 传入 nil 会被静默忽略。
func WithClock(c clock.Clock) StartOption {
	return func(b *Backoff) {
		if c != nil {
			b.clk = c
		}
	}
}

// WithRandom 设置抖动随机源。默认基于 crypto/rand。
// 传入 nil 会被静默忽略。
func WithRandom(r Random) StartOption {
	return func(b *Backoff) {
		if r != nil {
			b.rnd = r
		}
	}
}

func start(o Options, opts []StartOption) *Backoff {
	b := &Backoff{
		core: NewCore(o),
		clk:  clock.WallClock,
		rnd:  DefaultRandom(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(b)
	}
	b.startedAt = b.clk.Now()
	return b
}

// StartUnlimited 开始无限重试的序列：
// 直到操作成功或遇到不可重试的错误为止。
func StartUnlimited(o Options, opts ...StartOption) *Backoff {
	return start(o, opts)
}

// StartTimeout 开始受超时限制的序列。
// 截止时间在此刻一次性计算为 startedAt + timeout，不会逐次重新推算。
// 无论超时是否为零或早已流逝，首次尝试总会执行——截止时间只阻止后续尝试。
func StartTimeout(o Options, timeout time.Duration, opts ...StartOption) *Backoff {
	b := start(o, opts)
	b.deadline = b.startedAt.Add(timeout)
	return b
}

// StartTimeoutOpt 与 StartTimeout 相同，但 timeout 为 nil 时等价于 StartUnlimited。
func StartTimeoutOpt(o Options, timeout *time.Duration, opts ...StartOption) *Backoff {
	if timeout == nil {
		return StartUnlimited(o, opts...)
	}
	return StartTimeout(o, *timeout, opts...)
}

// StartDeadline 开始在给定时刻停止安排新尝试的序列。
// deadline 为零值时等价于 StartUnlimited。
// 无论 deadline 是否已经过去，首次尝试总会执行。
func StartDeadline(o Options, deadline time.Time, opts ...StartOption) *Backoff {
	b := start(o, opts)
	b.deadline = deadline
	return b
}

// NextRetryAt 给出下一次尝试的建议时刻。
//
// 返回值：
//   - (at, true, nil)：等待到 at 之后再尝试；
//   - (_, false, nil)：立即尝试；
//   - err 为 *TimeoutError：截止时间不允许再尝试，序列应终止。
//
// 首次尝试（或上次成功之后）会把尝试计数归零，且永不受整体截止时间约束，
// 只受 initialJitter 影响。通常无需直接调用本方法，
// 执行适配器 TryBlocking / TryContext 会代为驱动。
func (b *Backoff) NextRetryAt() (time.Time, bool, error) {
	if b == nil {
		return time.Time{}, false, ErrNilBackoff
	}
	now := b.clk.Now()

	if b.lastErr == nil {
		b.numAttempts = 0
		return b.core.NthRetryAt(0, now, time.Time{}, b.rnd)
	}

	b.numAttempts = saturatingInc(b.numAttempts)
	at, ok, err := b.core.NthRetryAt(b.numAttempts, now, b.deadline, b.rnd)
	var de *DeadlineExceededError
	if errors.As(err, &de) {
		// 超时只可能发生在至少一次失败之后；
		// 存储的最近错误被移交给 TimeoutError，不会被后续超时重复使用。
		return time.Time{}, false, &TimeoutError{LastError: b.takeLastErr()}
	}
	return at, ok, err
}

// StartedAt 返回序列开始的时刻。nil 接收者返回零值。
func (b *Backoff) StartedAt() time.Time {
	if b == nil {
		return time.Time{}
	}
	return b.startedAt
}

// Deadline 返回序列的截止时间；零值表示无限重试。nil 接收者返回零值。
func (b *Backoff) Deadline() time.Time {
	if b == nil {
		return time.Time{}
	}
	return b.deadline
}

// NumAttempts 返回已经历的尝试次数（饱和计数，到达无符号上限后不再增长）。
// 成功会在下一次调度决策时将其归零。nil 接收者返回 0。
func (b *Backoff) NumAttempts() uint64 {
	if b == nil {
		return 0
	}
	return b.numAttempts
}

// Options 返回序列持有的退避参数副本。nil 接收者返回零值。
func (b *Backoff) Options() Options {
	if b == nil {
		return Options{}
	}
	return b.core.Options()
}

// takeLastErr 取走并清空存储的最近错误。
func (b *Backoff) takeLastErr() error {
	err := b.lastErr
	b.lastErr = nil
	return err
}

// beginAttempt 标记新一次尝试开始。
// 上一个 Result 尚未被分类消费就再次发起尝试属于调用方缺陷，
// 这会静默吞掉一次失败，宁可尽早 panic 暴露（类比 sync 包对误用的处理）。
func (b *Backoff) beginAttempt() {
	if b.outstanding {
		panic("xbackoff: previous attempt result was not classified; call OrRetry or OrRetryIf before the next attempt")
	}
	b.outstanding = true
}
