package mathx

import (
	"math"
)

const (
	seedZ = 12345
	seedW = 65435
)

// Rand is Marsaglia's multiply-with-carry generator. It is deterministic
// for a given seed, which keeps scripted sequences reproducible across
// runs.
type Rand struct {
	z, w uint32
}

func NewRand() *Rand {
	return &Rand{z: seedZ, w: seedW}
}

func (r *Rand) Uint32() uint32 {
	r.z = 36969*(r.z&65535) + (r.z >> 16)
	r.w = 18000*(r.w&65535) + (r.w >> 16)
	return (r.z << 16) + r.w
}

// Float01 returns a value in [0, 1] built from the low 16 bits.
func (r *Rand) Float01() float64 {
	return float64(r.Uint32()&math.MaxUint16) / math.MaxUint16
}

// Between scales Float01 into the range between a and b. Reversed bounds
// are swapped, so Between(b, a) draws the same value as Between(a, b).
func (r *Rand) Between(a, b float64) float64 {
	if b < a {
		a, b = b, a
	}
	return r.Float01()*(b-a) + a
}
