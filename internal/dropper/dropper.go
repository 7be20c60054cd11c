// Package dropper makes erasure decisions for channel values, either
// independently or in bursts.
package dropper

import (
	"fmt"
	"math/rand"
)

// Dropper decides, value after value, whether to erase.
type Dropper interface {
	Drop() bool
}

// Bernoulli erases each value independently with probability p.
type Bernoulli struct {
	p   float64
	rng *rand.Rand
}

func New(p float64, rng *rand.Rand) *Bernoulli { return &Bernoulli{p: p, rng: rng} }

// P returns the erasure probability.
func (b *Bernoulli) P() float64 { return b.p }

func (b *Bernoulli) Drop() bool {
	if b.p <= 0 {
		return false
	}
	if b.p >= 1 {
		return true
	}
	return b.rng.Float64() < b.p
}

// Gilbert is a two-state burst model: every value is erased in the bad
// state and none in the good one. Bursts have a geometric length.
type Gilbert struct {
	toBad  float64
	toGood float64
	bad    bool
	rng    *rand.Rand
}

// NewGilbert builds a burst model with a long-run erasure rate p and a mean
// burst length of meanBurst values (at least 1).
func NewGilbert(p, meanBurst float64, rng *rand.Rand) (*Gilbert, error) {
	if p < 0 || p >= 1 {
		return nil, fmt.Errorf("dropper: burst erasure rate %v not in [0,1)", p)
	}
	if meanBurst < 1 {
		return nil, fmt.Errorf("dropper: mean burst length %v below 1", meanBurst)
	}
	toGood := 1 / meanBurst
	// stationary P(bad) = toBad / (toBad + toGood) = p
	return &Gilbert{toBad: p * toGood / (1 - p), toGood: toGood, rng: rng}, nil
}

func (g *Gilbert) Drop() bool {
	if g.bad {
		if g.rng.Float64() < g.toGood {
			g.bad = false
		}
	} else if g.toBad > 0 && g.rng.Float64() < g.toBad {
		g.bad = true
	}
	return g.bad
}

// Erase zeroes the values of s that d drops and returns how many it
// erased. A zero value carries no information about its bit.
func Erase(d Dropper, s []float64) int {
	n := 0
	for i := range s {
		if d.Drop() {
			s[i] = 0
			n++
		}
	}
	return n
}
