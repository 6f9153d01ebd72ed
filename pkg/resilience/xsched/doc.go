// Package xsched 提供基于共享退避曲线的高扇出重试调度器。
//
// 所有操作共享同一份不可变的 xbackoff.Core（曲线参数只读、可并发使用），
// 每个操作拥有自己的失败计数和截止时间。适合"一批独立任务各自重试、
// 整体限流"的场景，例如对同一下游批量发起的请求。
//
// 使用方式：
//
//	s := xsched.New(xbackoff.NewOptions(),
//	    xsched.WithMaxConcurrency(8),
//	    xsched.WithPerOpTimeout(30*time.Second),
//	)
//	for _, job := range jobs {
//	    s.Go(ctx, job.Run)
//	}
//	for _, out := range s.Wait() {
//	    if out.Err != nil {
//	        log.Printf("job %s failed after %d attempts: %v", out.ID, out.Attempts, out.Err)
//	    }
//	}
//
// 并发控制只约束在途的操作调用，退避等待不占用并发额度。
// 单序列的重试控制请直接使用 xbackoff.Backoff。
package xsched
