// Package testutil provides deterministic randomness and corpus generators
// for facetgo tests.
package testutil

import (
	"math/rand"
	"sync"
)

// RNG encapsulates a seeded random number generator.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Int63n returns a non-negative pseudo-random int64 in [0,n).
func (r *RNG) Int63n(n int64) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Int63n(n)
}

// Int64 returns a pseudo-random int64 over the full signed range.
func (r *RNG) Int64() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(r.rand.Uint64())
}

// ExpFloat64 returns an exponentially distributed float64 with rate 1.
func (r *RNG) ExpFloat64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.ExpFloat64()
}

// UniformInts returns n pseudo-random values in [lo, hi).
func (r *RNG) UniformInts(n int, lo, hi int64) []int64 {
	out := make([]int64, n)
	for i := range out {
		out[i] = lo + r.Int63n(hi-lo)
	}
	return out
}

// SkewedPrices returns n long-tailed price-like values, mostly small with
// rare large outliers. Useful for exercising equi-depth bucketing against
// distributions where equal-width buckets would degenerate.
func (r *RNG) SkewedPrices(n int) []int64 {
	out := make([]int64, n)
	for i := range out {
		v := int64(r.ExpFloat64() * 100)
		if v > 1_000_000 {
			v = 1_000_000
		}
		out[i] = v
	}
	return out
}
