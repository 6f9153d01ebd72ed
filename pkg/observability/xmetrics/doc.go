// Package xmetrics 为重试序列提供可选的 OpenTelemetry 观测。
//
// 退避控制器自身不产生任何日志和指标；观测完全由调用方通过
// Observer 接入。OTel 实现记录：
//
//   - xbackoff.attempts.total{operation, outcome} 尝试计数
//   - xbackoff.timeouts.total{operation} 超时计数
//   - xbackoff.delay.duration{operation} 退避等待时长（秒）
//
// 若调用方 context 中存在活跃的 trace span，每次尝试还会附加
// 一个 span 事件。
//
// 使用方式：
//
//	obs, err := xmetrics.NewOTelObserver()
//	if err != nil {
//	    return err
//	}
//	res := xbackoff.TryContext(ctx, b, op).
//	    Inspect(xmetrics.InspectFunc(ctx, obs, "fetch-user"))
package xmetrics
