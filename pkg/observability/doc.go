// Package observability 提供可观测性相关的子包。
//
// 子包列表：
//   - xmetrics: 重试序列的 OpenTelemetry 指标与 span 事件
//
// 设计原则：
//   - 遵循 OpenTelemetry 语义规范
//   - 观测完全由调用方按需接入，库自身不产生日志和指标
package observability
