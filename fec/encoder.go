package fec

import (
	"fmt"
	"math/rand"
)

// Generic encoders used when a code has no native encoder in the current
// configuration. Both produce codewords the decoder can only handle through
// the all-zero or coset approach.

// AZCWEncoder emits the all-zero codeword whatever the input.
type AZCWEncoder struct {
	k, n, frames int
}

func NewAZCWEncoder(K, N, frames int) (*AZCWEncoder, error) {
	if K < 0 || N <= 0 || K > N || frames < 1 {
		return nil, fmt.Errorf("azcw encoder: K=%d N=%d frames=%d: %w", K, N, frames, ErrInvalidLength)
	}
	return &AZCWEncoder{k: K, n: N, frames: frames}, nil
}

func (e *AZCWEncoder) K() int      { return e.k }
func (e *AZCWEncoder) N() int      { return e.n }
func (e *AZCWEncoder) Frames() int { return e.frames }

func (e *AZCWEncoder) Encode(u, x []uint8) error {
	if err := checkShape("azcw encoder input", len(u), e.k*e.frames); err != nil {
		return err
	}
	if err := checkShape("azcw encoder output", len(x), e.n*e.frames); err != nil {
		return err
	}
	for i := range x {
		x[i] = 0
	}
	return nil
}

// CosetEncoder copies the K information bits to the head of the frame and
// fills the N-K remaining positions with seeded random bits.
type CosetEncoder struct {
	k, n, frames int
	rng          *rand.Rand
}

func NewCosetEncoder(K, N, frames int, seed int64) (*CosetEncoder, error) {
	if K < 0 || N <= 0 || K > N || frames < 1 {
		return nil, fmt.Errorf("coset encoder: K=%d N=%d frames=%d: %w", K, N, frames, ErrInvalidLength)
	}
	return &CosetEncoder{k: K, n: N, frames: frames, rng: rand.New(rand.NewSource(seed))}, nil
}

func (e *CosetEncoder) K() int      { return e.k }
func (e *CosetEncoder) N() int      { return e.n }
func (e *CosetEncoder) Frames() int { return e.frames }

func (e *CosetEncoder) Encode(u, x []uint8) error {
	if err := checkShape("coset encoder input", len(u), e.k*e.frames); err != nil {
		return err
	}
	if err := checkShape("coset encoder output", len(x), e.n*e.frames); err != nil {
		return err
	}
	for f := 0; f < e.frames; f++ {
		xf := x[f*e.n : (f+1)*e.n]
		copy(xf, u[f*e.k:(f+1)*e.k])
		for i := e.k; i < e.n; i++ {
			xf[i] = uint8(e.rng.Intn(2))
		}
	}
	return nil
}
