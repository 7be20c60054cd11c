package sim

import (
	"fmt"
	"math/rand"

	"github.com/Observe-l/fecsim/fec"
	"github.com/Observe-l/fecsim/internal/dropper"
)

// ChannelKind selects a Channel.
type ChannelKind string

const (
	ChannelNone    ChannelKind = "none"
	ChannelAWGN    ChannelKind = "awgn"
	ChannelErasure ChannelKind = "bec"
)

// ChannelParams configures a channel. Sigma is the noise standard deviation
// of the AWGN channel, ErasureProb the erasure probability of the erasure
// channel. A BurstLength above 1 makes erasures come in bursts of that mean
// length at the same overall rate.
type ChannelParams struct {
	Kind        ChannelKind `json:"type" yaml:"type"`
	Sigma       float64     `json:"sigma,omitempty" yaml:"sigma,omitempty"`
	ErasureProb float64     `json:"erasure_prob,omitempty" yaml:"erasure_prob,omitempty"`
	BurstLength float64     `json:"burst_length,omitempty" yaml:"burst_length,omitempty"`
}

// Channel corrupts modulated values.
type Channel interface {
	Add(s, y []float64) error
}

// NewChannel builds the channel described by p.
func NewChannel(p ChannelParams, seed int64) (Channel, error) {
	rng := rand.New(rand.NewSource(seed))
	switch p.Kind {
	case "", ChannelNone:
		return noChannel{}, nil
	case ChannelAWGN:
		if p.Sigma < 0 {
			return nil, fmt.Errorf("channel: negative sigma %v", p.Sigma)
		}
		return &AWGN{sigma: p.Sigma, rng: rng}, nil
	case ChannelErasure:
		if p.ErasureProb < 0 || p.ErasureProb > 1 {
			return nil, fmt.Errorf("channel: erasure probability %v not in [0,1]", p.ErasureProb)
		}
		if p.BurstLength > 1 {
			g, err := dropper.NewGilbert(p.ErasureProb, p.BurstLength, rng)
			if err != nil {
				return nil, fmt.Errorf("channel: %w", err)
			}
			return &Erasure{drop: g}, nil
		}
		return &Erasure{drop: dropper.New(p.ErasureProb, rng)}, nil
	}
	return nil, fmt.Errorf("channel: unknown type %q", p.Kind)
}

func checkPair(what string, s, y []float64) error {
	if len(s) != len(y) {
		return fmt.Errorf("%s: got %d values, want %d: %w", what, len(y), len(s), fec.ErrShapeMismatch)
	}
	return nil
}

type noChannel struct{}

func (noChannel) Add(s, y []float64) error {
	if err := checkPair("channel", s, y); err != nil {
		return err
	}
	copy(y, s)
	return nil
}

// AWGN adds white Gaussian noise.
type AWGN struct {
	sigma float64
	rng   *rand.Rand
}

func (c *AWGN) Add(s, y []float64) error {
	if err := checkPair("awgn", s, y); err != nil {
		return err
	}
	for i, v := range s {
		y[i] = v + c.sigma*c.rng.NormFloat64()
	}
	return nil
}

// Erasure zeroes values, independently or in bursts.
type Erasure struct {
	drop dropper.Dropper
}

func (c *Erasure) Add(s, y []float64) error {
	if err := checkPair("erasure", s, y); err != nil {
		return err
	}
	copy(y, s)
	dropper.Erase(c.drop, y)
	return nil
}
