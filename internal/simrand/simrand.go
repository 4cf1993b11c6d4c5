// Package simrand provides the seeded draws that stand in for behavioral
// telemetry the portfolio data does not carry (contract tenure, growth
// trajectory, renewal/payment/engagement signals).
//
// Every draw is a pure function of (contract id + category offset), so the
// same dataset always yields the same predictions. Replace the Source with a
// telemetry-backed one once real usage history exists.
package simrand

import (
	"math/rand"
)

// Category offsets added to the contract id to form a seed
const (
	OffsetTimeline   int64 = 0
	OffsetGrowth     int64 = 100
	OffsetRenewal    int64 = 200
	OffsetExpansion  int64 = 300
	OffsetPayment    int64 = 400
	OffsetEngagement int64 = 500
)

// Source hands out independent streams per seed
type Source interface {
	Stream(seed int64) Stream
}

// Stream is a sequence of draws from one seed
type Stream interface {
	// IntRange returns an int in [lo, hi] inclusive. hi < lo is treated as hi = lo.
	IntRange(lo, hi int) int
	// Float64 returns a value in [0, 1)
	Float64() float64
	// Uniform returns a value in [lo, hi)
	Uniform(lo, hi float64) float64
}

// Seed forms the seed of a contract/category pair
func Seed(contractID int, offset int64) int64 {
	return int64(contractID) + offset
}

// =============================================================================
// Seeded (production)
// =============================================================================

type seeded struct{}

// NewSeeded returns the math/rand backed source
func NewSeeded() Source {
	return seeded{}
}

func (seeded) Stream(seed int64) Stream {
	return &randStream{r: rand.New(rand.NewSource(seed))}
}

type randStream struct {
	r *rand.Rand
}

func (s *randStream) IntRange(lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	return lo + s.r.Intn(hi-lo+1)
}

func (s *randStream) Float64() float64 {
	return s.r.Float64()
}

func (s *randStream) Uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*s.r.Float64()
}

// =============================================================================
// Fixed (tests)
// =============================================================================

// Fixed replays scripted values in [0, 1) per seed. Seeds without a script,
// or streams that ran out, yield Default.
type Fixed struct {
	Sequences map[int64][]float64
	Default   float64
}

// Stream implements Source
func (f Fixed) Stream(seed int64) Stream {
	return &fixedStream{values: f.Sequences[seed], def: f.Default}
}

type fixedStream struct {
	values []float64
	pos    int
	def    float64
}

func (s *fixedStream) next() float64 {
	if s.pos >= len(s.values) {
		return s.def
	}
	v := s.values[s.pos]
	s.pos++
	return v
}

func (s *fixedStream) IntRange(lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	n := lo + int(s.next()*float64(hi-lo+1))
	if n > hi {
		n = hi
	}
	return n
}

func (s *fixedStream) Float64() float64 {
	return s.next()
}

func (s *fixedStream) Uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*s.next()
}
