package xbackoff

import (
	"crypto/rand"
	"encoding/binary"
)

const (
	floatBits  = 53
	floatScale = 1.0 / (1 << floatBits)
)

// Random 均匀随机源能力：按需产生 [0,1) 区间的 float64。
// 每次调度决策独立取样一次。默认实现无内部状态；
// 自定义实现若被多个并发序列共享，需自行保证并发安全。
type Random interface {
	Float64() float64
}

// cryptoRandom 基于 crypto/rand 的默认随机源。
type cryptoRandom struct{}

func (cryptoRandom) Float64() float64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand 失败时返回 0，这意味着无抖动（安全默认值）
		return 0
	}
	return float64(binary.LittleEndian.Uint64(buf[:])>>11) * floatScale
}

// DefaultRandom 返回默认的 crypto/rand 随机源。
func DefaultRandom() Random {
	return cryptoRandom{}
}

var _ Random = cryptoRandom{}
