package xsched

import (
	"time"

	"github.com/juju/clock"

	"github.com/omeyang/xbackoff/pkg/resilience/xbackoff"
)

// schedOptions 保存调度器的可配置项。
type schedOptions struct {
	clk            clock.Clock
	rnd            xbackoff.Random
	maxConcurrency int64
	perOpTimeout   time.Duration
}

// Option 配置调度器。
type Option func(*schedOptions)

func defaultOptions() *schedOptions {
	return &schedOptions{
		clk: clock.WallClock,
		rnd: xbackoff.DefaultRandom(),
	}
}

// WithClock 替换时间源，主要用于测试。
// 设计决策: nil 静默忽略，保持默认墙钟，与 xbackoff.WithClock 行为一致。
func WithClock(clk clock.Clock) Option {
	return func(o *schedOptions) {
		if clk != nil {
			o.clk = clk
		}
	}
}

// WithRandom 替换抖动随机源，主要用于测试。nil 静默忽略。
func WithRandom(rnd xbackoff.Random) Option {
	return func(o *schedOptions) {
		if rnd != nil {
			o.rnd = rnd
		}
	}
}

// WithMaxConcurrency 限制同时在途的操作调用数。
// n <= 0 表示不限制（默认）。退避等待不占用并发额度。
func WithMaxConcurrency(n int64) Option {
	return func(o *schedOptions) {
		if n > 0 {
			o.maxConcurrency = n
		}
	}
}

// WithPerOpTimeout 为每个操作设置独立的重试预算，从操作提交时刻起算。
// 预算耗尽后不再调度新的尝试，操作以 *xbackoff.TimeoutError 失败。
// d <= 0 表示不限制（默认）。
func WithPerOpTimeout(d time.Duration) Option {
	return func(o *schedOptions) {
		if d > 0 {
			o.perOpTimeout = d
		}
	}
}

// GoOption 配置单次提交。
type GoOption func(*goOptions)

type goOptions struct {
	id string
}

// WithID 指定操作标识，用于在 Wait 的结果中区分操作。
// 未指定时自动生成 UUID。空字符串静默忽略。
func WithID(id string) GoOption {
	return func(o *goOptions) {
		if id != "" {
			o.id = id
		}
	}
}
