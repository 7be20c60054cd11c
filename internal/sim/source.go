// Package sim holds the collaborators that surround a decoder in a
// simulated link: bit source, integrity check, channels, quantizer, coset
// transforms and error monitor. They only produce or consume buffers.
package sim

import (
	"fmt"
	"math/rand"

	"github.com/Observe-l/fecsim/fec"
)

// SourceKind selects what a Source emits.
type SourceKind string

const (
	SourceRandom SourceKind = "random"
	SourceAZCW   SourceKind = "azcw" // all zeros
)

// Source emits K bits per frame.
type Source struct {
	k, frames int
	kind      SourceKind
	rng       *rand.Rand
}

func NewSource(kind SourceKind, K, frames int, seed int64) (*Source, error) {
	if K <= 0 || frames < 1 {
		return nil, fmt.Errorf("source: K=%d frames=%d: %w", K, frames, fec.ErrInvalidLength)
	}
	switch kind {
	case "":
		kind = SourceRandom
	case SourceRandom, SourceAZCW:
	default:
		return nil, fmt.Errorf("source: unknown type %q", kind)
	}
	return &Source{k: K, frames: frames, kind: kind, rng: rand.New(rand.NewSource(seed))}, nil
}

func (s *Source) K() int { return s.k }

func (s *Source) Generate(u []uint8) error {
	if len(u) != s.k*s.frames {
		return fmt.Errorf("source: got %d values, want %d: %w", len(u), s.k*s.frames, fec.ErrShapeMismatch)
	}
	for i := range u {
		if s.kind == SourceAZCW {
			u[i] = 0
		} else {
			u[i] = uint8(s.rng.Intn(2))
		}
	}
	return nil
}
