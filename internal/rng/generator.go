package rng

import (
	"errors"
	"math"
)

// ErrEmptyRange is returned when asked for an index in an empty range.
var ErrEmptyRange = errors.New("rng: n must be > 0")

// Source yields uniformly distributed indices in [0, n).
type Source interface {
	Intn(n int) (int, error)
}

// Intn returns a uniform integer in [0, n). Modulo bias is removed by
// rejecting words that fall in the final partial bucket.
func (c *CSPRNG) Intn(n int) (int, error) {
	if n <= 0 {
		return 0, ErrEmptyRange
	}
	bound := uint64(n)
	limit := math.MaxUint64 - (math.MaxUint64 % bound)
	for {
		v, err := c.Uint64()
		if err != nil {
			return 0, err
		}
		if v < limit {
			return int(v % bound), nil
		}
	}
}

// Fixed always returns the same index; used to pin draws in tests and
// replays. Values outside [0, n) are reduced modulo n.
type Fixed int

func (f Fixed) Intn(n int) (int, error) {
	if n <= 0 {
		return 0, ErrEmptyRange
	}
	v := int(f) % n
	if v < 0 {
		v += n
	}
	return v, nil
}
