package xbackoff

import (
	"time"

	retry "github.com/avast/retry-go/v5"
)

// DelayType 把 Options 描述的退避曲线适配为 retry-go 的 DelayTypeFunc，
// 让既有的 retry-go 调用点无需改写循环即可采用本包的延迟曲线
// （含饱和运算与只减不加的抖动）。
//
// rnd 为 nil 时使用默认 crypto/rand 随机源。
//
// 示例:
//
//	retrier := retry.New(
//	    retry.Attempts(5),
//	    retry.DelayType(xbackoff.DelayType(opts, nil)),
//	)
func DelayType(o Options, rnd Random) retry.DelayTypeFunc {
	if rnd == nil {
		rnd = DefaultRandom()
	}
	core := NewCore(o)
	return func(n uint, _ error, _ retry.DelayContext) time.Duration {
		// retry-go v5 中 DelayType 的 n 从 1 开始，与 NthRetryAt 的重试序号一致
		if n < 1 {
			n = 1
		}
		ref := time.Unix(0, 0)
		at, ok, err := core.NthRetryAt(uint64(n), ref, time.Time{}, rnd)
		if err != nil || !ok {
			// 未传截止时间，正常情况下不可达
			return 0
		}
		return at.Sub(ref)
	}
}

// RetryIf 返回基于本包错误分类的 retry-go 重试判断函数：
// 先检查 retry-go 自身的 Unrecoverable 标记，再按 IsRetryable 判定
// （Permanent/Temporary 包装与 RetryableError 能力在此生效）。
func RetryIf() retry.RetryIfFunc {
	return func(err error) bool {
		if !retry.IsRecoverable(err) {
			return false
		}
		return IsRetryable(err)
	}
}
