package xbackoff

import "time"

// 默认退避参数。
const (
	// DefaultMultiplier 默认增长倍数。
	DefaultMultiplier = 2.0
	// DefaultJitter 默认抖动比例。
	DefaultJitter = 0.25
	// DefaultInitialDelay 首次尝试的基础延迟。
	DefaultInitialDelay = 150 * time.Millisecond
	// DefaultMaxDelay 默认延迟上限。
	DefaultMaxDelay = time.Minute
)

// Options 退避参数，不可变值类型。
//
// 每个 WithX 方法返回新的 Options 而非原地修改，因此可以安全地存放在
// 包级变量中，供任意多个并发重试序列只读共享：
//
//	var backoffOpts = xbackoff.NewOptions().
//	    WithInitialJitter(0.25).
//	    WithInitialDelay(time.Second).
//	    WithMaxDelay(5 * time.Minute)
//
// 零值 Options 的所有参数均为字面零（延迟为 0、无增长、无抖动），
// 通常应从 NewOptions 出发。
type Options struct {
	multiplier    float64
	jitter        float64
	initialJitter float64
	initialDelay  time.Duration
	maxDelay      time.Duration
}

// NewOptions 返回适合大多数应用的默认参数：
// multiplier 2.0、jitter 0.25、initialJitter 0、initialDelay 150ms、maxDelay 60s。
func NewOptions() Options {
	return Options{
		multiplier:   DefaultMultiplier,
		jitter:       DefaultJitter,
		initialDelay: DefaultInitialDelay,
		maxDelay:     DefaultMaxDelay,
	}
}

// WithMultiplier 设置每次可重试失败后延迟的增长倍数。
//   - > 1：指数退避；
//   - == 1：抖动前为固定延迟；
//   - < 1：合法但不推荐（延迟会收缩）。
//
// 任何导致时长溢出的乘法都会饱和到最大时长，再被 maxDelay 收口。
func (o Options) WithMultiplier(m float64) Options {
	o.multiplier = m
	return o
}

// Multiplier 返回增长倍数。
func (o Options) Multiplier() float64 {
	return o.multiplier
}

// WithJitter 设置抖动比例，作用于首次之后的每次尝试。
// 下次延迟会乘以 (1-jitter, 1] 区间的随机因子；
// jitter >= 1 时延迟可落在 [0, 延迟] 的任意位置（下次尝试可能立即发生）；
// jitter <= 0 或 NaN 时不抖动（多数场景不推荐：并发调用方的尝试会对齐，
// 形成惊群）。
func (o Options) WithJitter(j float64) Options {
	o.jitter = j
	return o
}

// Jitter 返回抖动比例。
func (o Options) Jitter() float64 {
	return o.jitter
}

// WithInitialJitter 设置只作用于首次尝试的抖动比例。
// 大于 0 时，首次尝试前会等待 initialDelay 乘以 (1-initialJitter, 1]
// 区间的随机因子，用于缓解多个进程同时启动、同时访问同一资源的惊群；
// <= 0 或 NaN 时首次尝试立即发生（默认行为）。
// 首次失败之后的延迟照常计算，multiplier 在首次可重试失败之后才开始生效。
func (o Options) WithInitialJitter(j float64) Options {
	o.initialJitter = j
	return o
}

// InitialJitter 返回首次尝试的抖动比例。
func (o Options) InitialJitter() float64 {
	return o.initialJitter
}

// WithInitialDelay 设置第一次退避的基础延迟（乘数生效之前的值）。
func (o Options) WithInitialDelay(d time.Duration) Options {
	o.initialDelay = d
	return o
}

// InitialDelay 返回第一次退避的基础延迟。
func (o Options) InitialDelay() time.Duration {
	return o.initialDelay
}

// WithMaxDelay 设置两次尝试之间延迟的硬上限：指数增长先被截断到上限，
// 抖动再从截断后的值中扣减。
// initialDelay <= maxDelay 是预期用法，但不做程序化校验；
// 增长始终被 maxDelay 截断。
func (o Options) WithMaxDelay(d time.Duration) Options {
	o.maxDelay = d
	return o
}

// MaxDelay 返回延迟的硬上限。
func (o Options) MaxDelay() time.Duration {
	return o.maxDelay
}

// Core 将 Options 转换为无状态调度核心。
func (o Options) Core() Core {
	return NewCore(o)
}
