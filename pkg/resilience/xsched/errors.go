package xsched

import "errors"

// 包级哨兵错误。
var (
	// ErrNilScheduler 表示在 nil 调度器上调用了方法。
	ErrNilScheduler = errors.New("xsched: nil scheduler")

	// ErrNilOp 表示提交了 nil 操作。
	ErrNilOp = errors.New("xsched: nil operation")

	// ErrNilContext 表示传入了 nil context。
	ErrNilContext = errors.New("xsched: nil context")
)
