package engine

import (
	"fmt"
	"hash/fnv"
	"math/rand"
)

// SeedFor derives a deterministic seed from the run seed and a stream label.
func SeedFor(base int64, label string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(fmt.Sprintf("%d/%s", base, label)))
	return int64(h.Sum64())
}

// RNG is a reproducible random stream owned by a single actor.
type RNG struct {
	base  int64
	label string
	r     *rand.Rand
}

// NewRNG returns a stream seeded from base and label.
func NewRNG(base int64, label string) *RNG {
	rng := &RNG{base: base, label: label}
	rng.Reseed(base, label)
	return rng
}

// Reseed restarts the stream for a new base seed and label.
func (g *RNG) Reseed(base int64, label string) {
	g.base = base
	g.label = label
	g.r = rand.New(rand.NewSource(SeedFor(base, label)))
}

// Label returns the label the stream was last seeded with.
func (g *RNG) Label() string {
	return g.label
}

// Float64 returns a uniform value in [0, 1).
func (g *RNG) Float64() float64 {
	return g.r.Float64()
}

// Roll returns true with probability p.
func (g *RNG) Roll(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return g.r.Float64() < p
}

// Range returns a uniform value in [lo, hi].
func (g *RNG) Range(lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + (hi-lo)*g.r.Float64()
}

// Shuffle permutes n elements using swap.
func (g *RNG) Shuffle(n int, swap func(i, j int)) {
	g.r.Shuffle(n, swap)
}
