package xsched

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/juju/clock"
	"golang.org/x/sync/semaphore"

	"github.com/omeyang/xbackoff/pkg/resilience/xbackoff"
)

// Operation 是被调度的可重试操作。
// 返回的错误按 xbackoff.IsRetryable 分类：可重试则进入退避等待，
// 否则操作立即以该错误结束。
type Operation func(ctx context.Context) error

// Outcome 是单个操作的最终结果。
type Outcome struct {
	// ID 是提交时指定或自动生成的操作标识。
	ID string

	// Attempts 是实际发起的尝试次数（至少为 1，除非提交即被取消）。
	Attempts uint64

	// Err 为 nil 表示成功；重试预算耗尽时为 *xbackoff.TimeoutError，
	// 携带最后一次真实失败。
	Err error
}

// Scheduler 以共享退避曲线并发驱动多个独立的重试序列。
//
// Go、Wait 可安全地从多个 goroutine 并发调用；Wait 返回后仍可继续提交，
// 后续结果由下一次 Wait 收集。
type Scheduler struct {
	core xbackoff.Core
	clk  clock.Clock
	rnd  xbackoff.Random
	sem  *semaphore.Weighted
	ttl  time.Duration

	wg sync.WaitGroup

	mu       sync.Mutex
	outcomes []Outcome
}

// New 创建调度器。opts 中的曲线参数被拷贝为只读共享状态。
func New(opts xbackoff.Options, sopts ...Option) *Scheduler {
	options := defaultOptions()
	for _, opt := range sopts {
		if opt == nil {
			continue
		}
		opt(options)
	}

	s := &Scheduler{
		core: xbackoff.NewCore(opts),
		clk:  options.clk,
		rnd:  options.rnd,
		ttl:  options.perOpTimeout,
	}
	if options.maxConcurrency > 0 {
		s.sem = semaphore.NewWeighted(options.maxConcurrency)
	}
	return s
}

// Go 提交一个操作并立即返回其标识。
// 操作在独立的 goroutine 中按共享曲线重试，结果通过 Wait 收集。
func (s *Scheduler) Go(ctx context.Context, op Operation, opts ...GoOption) (string, error) {
	if s == nil {
		return "", ErrNilScheduler
	}
	if ctx == nil {
		return "", ErrNilContext
	}
	if op == nil {
		return "", ErrNilOp
	}

	g := &goOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(g)
	}
	if g.id == "" {
		g.id = uuid.NewString()
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.record(s.run(ctx, g.id, op))
	}()
	return g.id, nil
}

// Wait 等待所有已提交的操作完成，返回并清空累积的结果。
func (s *Scheduler) Wait() []Outcome {
	if s == nil {
		return nil
	}
	s.wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.outcomes
	s.outcomes = nil
	return out
}

func (s *Scheduler) record(o Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outcomes = append(s.outcomes, o)
}

// run 驱动单个操作的重试序列直到成功、致命失败或预算耗尽。
func (s *Scheduler) run(ctx context.Context, id string, op Operation) Outcome {
	// 截止时间从提交时刻起算，只计算一次
	var deadline time.Time
	if s.ttl > 0 {
		deadline = s.clk.Now().Add(s.ttl)
	}

	var (
		failures uint64
		attempts uint64
		lastErr  error
	)
	for {
		// 首次尝试无条件发生，截止时间只约束重试
		gate := deadline
		if failures == 0 {
			gate = time.Time{}
		}
		at, wait, err := s.core.NthRetryAt(failures, s.clk.Now(), gate, s.rnd)
		if err != nil {
			// 预算耗尽: 携带最后一次真实失败
			return Outcome{ID: id, Attempts: attempts, Err: &xbackoff.TimeoutError{LastError: lastErr}}
		}
		if wait {
			if err := s.sleepUntil(ctx, at); err != nil {
				return Outcome{ID: id, Attempts: attempts, Err: err}
			}
		}

		err = s.attempt(ctx, op)
		attempts = saturatingInc(attempts)
		if err == nil {
			return Outcome{ID: id, Attempts: attempts}
		}
		if ctx.Err() != nil {
			return Outcome{ID: id, Attempts: attempts, Err: ctx.Err()}
		}
		if !xbackoff.IsRetryable(err) {
			return Outcome{ID: id, Attempts: attempts, Err: err}
		}
		lastErr = err
		failures = saturatingInc(failures)
	}
}

// attempt 在并发额度内调用一次操作。
func (s *Scheduler) attempt(ctx context.Context, op Operation) error {
	if s.sem != nil {
		if err := s.sem.Acquire(ctx, 1); err != nil {
			return err
		}
		defer s.sem.Release(1)
	}
	return op(ctx)
}

// sleepUntil 等待到指定时刻，context 取消时提前返回其错误。
func (s *Scheduler) sleepUntil(ctx context.Context, at time.Time) error {
	d := at.Sub(s.clk.Now())
	if d <= 0 {
		return nil
	}
	timer := s.clk.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.Chan():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func saturatingInc(n uint64) uint64 {
	if n == math.MaxUint64 {
		return n
	}
	return n + 1
}
