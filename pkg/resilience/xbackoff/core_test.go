package xbackoff

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedRandom 返回固定值的随机源，用于确定性断言。
type fixedRandom float64

func (f fixedRandom) Float64() float64 {
	return float64(f)
}

func TestCoreNthRetryAt_FirstAttempt(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	t.Run("NoInitialJitterMeansImmediate", func(t *testing.T) {
		c := NewCore(NewOptions())

		// now/deadline 取值无关紧要，幂等地返回"立即尝试"
		for _, deadline := range []time.Time{{}, now.Add(-time.Hour), now.Add(time.Hour)} {
			at, ok, err := c.NthRetryAt(0, now, deadline, fixedRandom(0.5))
			require.NoError(t, err)
			assert.False(t, ok)
			assert.True(t, at.IsZero())
		}
	})

	t.Run("InitialJitterDelaysFirstAttempt", func(t *testing.T) {
		c := NewCore(NewOptions().
			WithInitialDelay(time.Second).
			WithInitialJitter(0.5))

		// u=0 时不扣抖动: now + initialDelay
		at, ok, err := c.NthRetryAt(0, now, time.Time{}, fixedRandom(0))
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, now.Add(time.Second), at)

		// u=0.5 时扣除 initialDelay * 0.5 * 0.5
		at, ok, err = c.NthRetryAt(0, now, time.Time{}, fixedRandom(0.5))
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, now.Add(750*time.Millisecond), at)
	})
}

func TestCoreNthRetryAt_ExponentialGrowth(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	c := NewCore(NewOptions().
		WithInitialDelay(time.Second).
		WithMultiplier(2.0).
		WithJitter(0).
		WithMaxDelay(time.Minute))

	// jitter=0 消除随机性: 延迟精确为 min(initial * mult^(n-1), max)
	expect := map[uint64]time.Duration{
		1: time.Second,
		2: 2 * time.Second,
		3: 4 * time.Second,
		4: 8 * time.Second,
		7: time.Minute, // 名义值 64s 被 maxDelay 截断
	}

	for n, want := range expect {
		at, ok, err := c.NthRetryAt(n, now, time.Time{}, nil)
		require.NoError(t, err, "n=%d", n)
		require.True(t, ok, "n=%d", n)
		assert.Equal(t, now.Add(want), at, "n=%d", n)
	}
}

func TestCoreNthRetryAt_JitterOnlySubtracts(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	c := NewCore(NewOptions().
		WithInitialDelay(time.Second).
		WithMultiplier(2.0).
		WithJitter(0.5).
		WithMaxDelay(time.Minute))

	rnd := DefaultRandom()
	farDeadline := now.Add(24 * time.Hour)

	for n := uint64(1); n <= 6; n++ {
		nominal := time.Second << (n - 1)
		at, ok, err := c.NthRetryAt(n, now, farDeadline, rnd)
		require.NoError(t, err, "n=%d", n)
		require.True(t, ok, "n=%d", n)

		delay := at.Sub(now)
		// 延迟落在 [nominal*(1-jitter), nominal]，永不为负，永不晚于名义值
		assert.GreaterOrEqual(t, delay, nominal/2, "n=%d", n)
		assert.LessOrEqual(t, delay, nominal, "n=%d", n)
	}
}

func TestCoreNthRetryAt_DeadlineRejectsNeverClamps(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	c := NewCore(NewOptions().
		WithInitialDelay(10 * time.Second).
		WithMultiplier(2.0).
		WithJitter(0).
		WithMaxDelay(time.Minute))

	// 名义时刻 now+10s 严格晚于 deadline now+5s: 拒绝而不是夹到 deadline
	deadline := now.Add(5 * time.Second)
	at, ok, err := c.NthRetryAt(1, now, deadline, nil)
	assert.False(t, ok)
	assert.True(t, at.IsZero())

	var de *DeadlineExceededError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, uint64(1), de.Attempt)
	assert.Equal(t, now.Add(10*time.Second), de.RetryAt)
	assert.Equal(t, deadline, de.Deadline)
	assert.Contains(t, de.Error(), "exceeds deadline")
}

func TestCoreNthRetryAt_DeadlineBoundaryInclusive(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	c := NewCore(NewOptions().
		WithInitialDelay(5 * time.Second).
		WithJitter(0))

	// 恰好等于 deadline 不算超过（闸门是"严格晚于"）
	deadline := now.Add(5 * time.Second)
	at, ok, err := c.NthRetryAt(1, now, deadline, nil)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, deadline, at)
}

func TestCoreNthRetryAt_Deterministic(t *testing.T) {
	// 纯函数: 相同输入加重放的随机取样产生相同输出
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	c := NewCore(NewOptions().WithJitter(0.8))

	at1, ok1, err1 := c.NthRetryAt(3, now, time.Time{}, fixedRandom(0.42))
	at2, ok2, err2 := c.NthRetryAt(3, now, time.Time{}, fixedRandom(0.42))
	assert.Equal(t, at1, at2)
	assert.Equal(t, ok1, ok2)
	assert.Equal(t, err1, err2)
}

func TestCoreNthRetryAt_SaturatesAtMaxDelay(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	c := NewCore(NewOptions().
		WithInitialDelay(time.Second).
		WithMultiplier(10).
		WithJitter(0).
		WithMaxDelay(30 * time.Second))

	// 极大的 n 会让 math.Pow 溢出为 +Inf，饱和后仍被 maxDelay 收口
	at, ok, err := c.NthRetryAt(100000, now, time.Time{}, nil)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, now.Add(30*time.Second), at)
}

func TestCoreSharedAcrossGoroutines(t *testing.T) {
	// Core 无可变状态，可被并发只读使用（-race 下验证）
	now := time.Now()
	c := NewCore(NewOptions())

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for n := uint64(0); n < 100; n++ {
				_, _, _ = c.NthRetryAt(n, now, time.Time{}, nil)
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}
