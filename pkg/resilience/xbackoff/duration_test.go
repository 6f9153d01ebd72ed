package xbackoff

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSaturatingScale(t *testing.T) {
	t.Run("Normal", func(t *testing.T) {
		assert.Equal(t, 2*time.Second, saturatingScale(time.Second, 2.0))
		assert.Equal(t, 500*time.Millisecond, saturatingScale(time.Second, 0.5))
		assert.Equal(t, time.Duration(0), saturatingScale(time.Second, 0))
	})

	t.Run("OverflowSaturates", func(t *testing.T) {
		assert.Equal(t, maxDuration, saturatingScale(time.Hour, math.MaxFloat64))
		assert.Equal(t, maxDuration, saturatingScale(maxDuration, 2.0))
		assert.Equal(t, maxDuration, saturatingScale(time.Second, math.Inf(1)))
	})

	t.Run("NaNSaturates", func(t *testing.T) {
		assert.Equal(t, maxDuration, saturatingScale(time.Second, math.NaN()))
		// 0 * +Inf 产生 NaN
		assert.Equal(t, maxDuration, saturatingScale(0, math.Inf(1)))
	})

	t.Run("NegativeSaturates", func(t *testing.T) {
		assert.Equal(t, maxDuration, saturatingScale(time.Second, -1.0))
	})
}

func TestJitterAmount(t *testing.T) {
	const base = 10 * time.Second

	t.Run("FractionalFactor", func(t *testing.T) {
		// 0 < factor < 1: 扣除量 = base * factor * u
		assert.Equal(t, time.Duration(0), jitterAmount(base, 0.5, 0))
		assert.Equal(t, 2500*time.Millisecond, jitterAmount(base, 0.5, 0.5))
		// u 永远 < 1，扣除量严格小于 base*factor
		got := jitterAmount(base, 0.5, 0.999999)
		assert.Less(t, got, 5*time.Second)
	})

	t.Run("FactorAtLeastOne", func(t *testing.T) {
		// factor >= 1 按 factor == 1 处理: 扣除量 = base * u
		assert.Equal(t, 5*time.Second, jitterAmount(base, 1.0, 0.5))
		assert.Equal(t, 5*time.Second, jitterAmount(base, 7.5, 0.5))
	})

	t.Run("NonPositiveFactor", func(t *testing.T) {
		assert.Equal(t, time.Duration(0), jitterAmount(base, 0, 0.9))
		assert.Equal(t, time.Duration(0), jitterAmount(base, -0.5, 0.9))
	})

	t.Run("NaNFactor", func(t *testing.T) {
		assert.Equal(t, time.Duration(0), jitterAmount(base, math.NaN(), 0.9))
	})
}

func TestSaturatingInc(t *testing.T) {
	assert.Equal(t, uint64(1), saturatingInc(0))
	assert.Equal(t, uint64(math.MaxUint64), saturatingInc(math.MaxUint64-1))
	assert.Equal(t, uint64(math.MaxUint64), saturatingInc(math.MaxUint64))
}

func TestCryptoRandomRange(t *testing.T) {
	rnd := DefaultRandom()
	for i := 0; i < 1000; i++ {
		u := rnd.Float64()
		assert.GreaterOrEqual(t, u, 0.0)
		assert.Less(t, u, 1.0)
	}
}
