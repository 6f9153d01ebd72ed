package xbackoff

import (
	"fmt"
	"math"
	"time"
)

// Core 无状态调度核心：只持有一份 Options，自身没有任何可变状态，
// 可被任意多个同时在途的操作无同步地只读共享。
// 每个操作各自记录尝试计数与截止时间（例如放在各自的记录里，
// 配合一个定时器队列），这是高扇出重试调度的推荐形态，参见 xsched 包。
type Core struct {
	opts Options
}

// NewCore 用给定参数创建调度核心。
func NewCore(o Options) Core {
	return Core{opts: o}
}

// Options 返回核心持有的参数副本。
func (c Core) Options() Options {
	return c.opts
}

// DeadlineExceededError 表示按退避计划计算出的下次尝试时刻已严格晚于截止时间。
// 这是调度层的内部信号：Backoff 控制器会把它转换为 *TimeoutError，
// 直接使用 Core 的调用方则应将其视为"不再尝试，上报超时"。
type DeadlineExceededError struct {
	// Attempt 是被拒绝的尝试序号（从 0 起）。
	Attempt uint64
	// RetryAt 是抖动之后计算出的尝试时刻。
	RetryAt time.Time
	// Deadline 是被超过的截止时间。
	Deadline time.Time
}

func (e *DeadlineExceededError) Error() string {
	return fmt.Sprintf("xbackoff: attempt %d scheduled at %s exceeds deadline %s",
		e.Attempt, e.RetryAt.Format(time.RFC3339Nano), e.Deadline.Format(time.RFC3339Nano))
}

// NthRetryAt 计算第 n 次尝试（n 从 0 起，0 为首次尝试）的建议时刻。
//
// 返回值：
//   - ok == false 且 err == nil：立即尝试，无需等待；
//   - ok == true：在 retryAt 时刻尝试；
//   - err 为 *DeadlineExceededError：计算出的时刻严格晚于 deadline。
//     截止时间只是对已抖动时刻的接受/拒绝闸门，绝不会把时刻夹到
//     deadline 上，也绝不会用来拉长延迟。
//
// n == 0 时仅当 initialJitter > 0 才会给出等待时刻
// （now + initialDelay - 抖动），否则立即尝试。
// n >= 1 时延迟为 min(initialDelay * multiplier^(n-1), maxDelay)，
// 指数增长使用饱和运算，再按普通 jitter 比例扣除抖动。
//
// deadline 为零值表示无截止时间；rnd 为 nil 时使用默认 crypto/rand 随机源。
// 本方法是纯函数：相同输入加上重放的随机取样产生相同输出，
// 可被共享同一 Options 的任意多个逻辑操作并发调用。
func (c Core) NthRetryAt(n uint64, now time.Time, deadline time.Time, rnd Random) (retryAt time.Time, ok bool, err error) {
	if rnd == nil {
		rnd = DefaultRandom()
	}

	if n == 0 {
		// NaN 或 <= 0 都按"立即尝试"处理
		if !(c.opts.initialJitter > 0) {
			return time.Time{}, false, nil
		}
		at := now.Add(c.opts.initialDelay - jitterAmount(c.opts.initialDelay, c.opts.initialJitter, rnd.Float64()))
		return c.gate(n, at, deadline)
	}

	delay := saturatingScale(c.opts.initialDelay, math.Pow(c.opts.multiplier, float64(n-1)))
	if delay > c.opts.maxDelay {
		delay = c.opts.maxDelay
	}
	at := now.Add(delay - jitterAmount(delay, c.opts.jitter, rnd.Float64()))
	return c.gate(n, at, deadline)
}

func (c Core) gate(n uint64, at, deadline time.Time) (time.Time, bool, error) {
	if !deadline.IsZero() && at.After(deadline) {
		return time.Time{}, false, &DeadlineExceededError{Attempt: n, RetryAt: at, Deadline: deadline}
	}
	return at, true, nil
}
