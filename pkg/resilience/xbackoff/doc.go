// Package xbackoff 提供带抖动的指数退避控制器。
//
// 与一般的重试执行器不同，xbackoff 只负责"何时再试"的决策，
// 重试循环本身由调用方持有。这样调用方可以在循环的任意位置
// 插入自己的逻辑（日志、指标、提前退出等）。
//
// # 设计理念
//
// 三层结构，自下而上：
//   - Options：不可变的退避参数，可安全存放在包级变量中被任意多个序列共享；
//   - Core：无状态调度核心，给定尝试序号与当前时刻，计算下次尝试的建议时刻；
//   - Backoff：有状态控制器，为单个重试序列维护尝试计数与最近错误。
//
// # 使用方式
//
// 阻塞式：
//
//	opts := xbackoff.NewOptions().WithInitialDelay(time.Second)
//	b := xbackoff.StartTimeout(opts, 30*time.Second)
//	for {
//	    v, ok, err := xbackoff.TryBlocking(b, fetch).OrRetry()
//	    if err != nil {
//	        return err
//	    }
//	    if ok {
//	        return use(v)
//	    }
//	}
//
// 上下文感知（等待阶段挂起任务而非线程，ctx 取消立即解除等待）：
//
//	v, ok, err := xbackoff.TryContext(ctx, b, fetchCtx).OrRetry()
//
// 高扇出场景（大量并发操作共享一个无状态核心）参见 xsched 包。
//
// # 错误分类
//
// 每次失败都必须经过 OrRetry 或 OrRetryIf 分类后才能离开重试序列，
// 不存在静默丢弃或静默重试的路径：
//   - Temporary(err)：标记为临时性错误（应该重试）；
//   - Permanent(err)：标记为永久性错误（不应重试）；
//   - 实现 RetryableError 接口的错误按 Retryable() 判定；
//   - 未知错误默认可重试。
//
// # 抖动方向
//
// 抖动只做减法：随机量只会让下次尝试提前，绝不推后。
// 因此调用方设定的截止时间始终是硬上限，不受随机性影响。
//
// # 随机性与性能
//
// 默认随机源基于 crypto/rand。单次调度决策耗时约 50-100ns，
// 对重试场景（通常每秒最多几次）完全可接受。
// 需要确定性行为时可用 WithJitter(0) 或注入自定义 Random。
package xbackoff
