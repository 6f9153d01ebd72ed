// Package xconf 从 YAML 或 JSON 配置加载退避曲线参数。
//
// 基于 koanf 实现。支持的键（均可省略，省略时保持 xbackoff 默认值）：
//
//	multiplier:    2.0        # 指数增长因子
//	jitter:        0.25       # 重试抖动比例
//	initial_jitter: 0         # 首次尝试抖动比例
//	initial_delay: 150ms      # 首次重试延迟（Go duration 字符串）
//	max_delay:     1m         # 延迟上限
//
// 使用方式：
//
//	opts, err := xconf.FromFile("backoff.yaml")
//	if err != nil {
//	    return err
//	}
//	b := xbackoff.StartTimeout(opts, 30*time.Second)
//
// 未知键被忽略。曲线参数是进程级常量，不提供热加载。
package xconf
