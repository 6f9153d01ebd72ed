package xbackoff

import (
	"math"
	"time"
)

// maxDuration 是 time.Duration 的最大可表示值。
const maxDuration = time.Duration(math.MaxInt64)

// saturatingScale 将时长乘以浮点因子，任何溢出或非法结果饱和为最大时长，
// 再由调用方按 maxDelay 收口。不会 panic，不返回错误。
// 设计决策: NaN 安全。当因子来自 math.Pow 溢出为 +Inf 时，乘积可能为
// +Inf 甚至 NaN（0 * +Inf）。IEEE 754 中 NaN 的所有比较均返回 false，
// 若不先行拦截会绕过上限判断。NaN/负数统一按饱和处理。
func saturatingScale(d time.Duration, factor float64) time.Duration {
	product := float64(d) * factor
	if math.IsNaN(product) || product < 0 {
		return maxDuration
	}
	if product >= float64(maxDuration) {
		return maxDuration
	}
	return time.Duration(product)
}

// jitterAmount 计算应从 base 中扣除的抖动量。u 为 [0,1) 区间的均匀随机数。
// 规则：
//   - 0 < factor < 1：扣除 base * factor * u，剩余延迟落在 (base*(1-factor), base]；
//   - factor >= 1：按 factor == 1 处理，扣除 base * u，剩余延迟落在 [0, base]；
//   - factor <= 0 或 NaN：不抖动，扣除 0。
//
// 只做减法：抖动只会让下次尝试提前，绝不推后，截止时间因此是硬上限。
func jitterAmount(base time.Duration, factor, u float64) time.Duration {
	switch {
	case factor > 0 && factor < 1:
		return saturatingScale(base, factor*u)
	case factor >= 1:
		return saturatingScale(base, u)
	default:
		// factor 为 NaN 或 <= 0
		return 0
	}
}

// saturatingInc 饱和自增：到达 math.MaxUint64 后不再增长，永不回绕。
func saturatingInc(n uint64) uint64 {
	if n == math.MaxUint64 {
		return n
	}
	return n + 1
}
