package xbackoff

import (
	"testing"
	"time"
)

func BenchmarkNthRetryAt(b *testing.B) {
	c := NewCore(NewOptions())
	now := time.Unix(1700000000, 0)
	rnd := fixedRandom(0.5)

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_, _, _ = c.NthRetryAt(5, now, time.Time{}, rnd)
	}
}

func BenchmarkNthRetryAt_CryptoRandom(b *testing.B) {
	c := NewCore(NewOptions())
	now := time.Unix(1700000000, 0)
	rnd := DefaultRandom()

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_, _, _ = c.NthRetryAt(5, now, time.Time{}, rnd)
	}
}

func BenchmarkSaturatingScale(b *testing.B) {
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_ = saturatingScale(time.Second, 1.75)
	}
}

func BenchmarkTryBlocking_Success(b *testing.B) {
	bo := StartUnlimited(noJitterOptions())
	op := func() (int, error) { return 1, nil }

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_, _, _ = TryBlocking(bo, op).OrRetry()
	}
}
