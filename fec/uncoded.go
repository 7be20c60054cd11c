package fec

import "fmt"

// Uncoded is the identity code, K == N. It covers the encoder, the hard
// decoder and a SISO that adds no extrinsic information.
type Uncoded struct {
	k, frames int
	y         []float64
}

func NewUncoded(K, frames int) (*Uncoded, error) {
	if K <= 0 || frames < 1 {
		return nil, fmt.Errorf("uncoded: K=%d frames=%d: %w", K, frames, ErrInvalidLength)
	}
	return &Uncoded{k: K, frames: frames, y: make([]float64, K*frames)}, nil
}

func (u *Uncoded) K() int      { return u.k }
func (u *Uncoded) N() int      { return u.k }
func (u *Uncoded) Frames() int { return u.frames }

func (u *Uncoded) Encode(in, x []uint8) error {
	if err := checkShape("uncoded encoder input", len(in), u.k*u.frames); err != nil {
		return err
	}
	if err := checkShape("uncoded encoder output", len(x), u.k*u.frames); err != nil {
		return err
	}
	copy(x, in)
	return nil
}

func (u *Uncoded) Load(y []float64) error {
	if err := checkShape("uncoded load", len(y), u.k*u.frames); err != nil {
		return err
	}
	if u.y == nil {
		return fmt.Errorf("uncoded: decoder released: %w", ErrInvariantViolation)
	}
	copy(u.y, y)
	return nil
}

func (u *Uncoded) Decode() {}

func (u *Uncoded) Store(v []uint8) error {
	if err := checkShape("uncoded store", len(v), u.k*u.frames); err != nil {
		return err
	}
	if u.y == nil {
		return fmt.Errorf("uncoded: decoder released: %w", ErrInvariantViolation)
	}
	for i, l := range u.y {
		v[i] = HardDecision(l)
	}
	return nil
}

func (u *Uncoded) SoftDecode(in, ext []float64) error {
	if err := checkShape("uncoded soft input", len(in), u.k*u.frames); err != nil {
		return err
	}
	if err := checkShape("uncoded soft output", len(ext), u.k*u.frames); err != nil {
		return err
	}
	for i := range ext {
		ext[i] = 0
	}
	return nil
}

func (u *Uncoded) Release() { u.y = nil }
