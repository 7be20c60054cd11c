package modem

import (
	"fmt"

	"github.com/Observe-l/fecsim/fec"
)

// BPSK maps 0 to +1 and 1 to -1.
type BPSK struct {
	n, frames int
	scale     float64 // 2/sigma^2
}

// NewBPSK builds a BPSK modem. sigma is the noise standard deviation used to
// scale reliabilities; sigma <= 0 leaves them unscaled.
func NewBPSK(n, frames int, sigma float64) (*BPSK, error) {
	if n <= 0 || frames < 1 {
		return nil, fmt.Errorf("bpsk: n=%d frames=%d: %w", n, frames, fec.ErrInvalidLength)
	}
	scale := 1.0
	if sigma > 0 {
		scale = 2 / (sigma * sigma)
	}
	return &BPSK{n: n, frames: frames, scale: scale}, nil
}

func (m *BPSK) N() int             { return m.n }
func (m *BPSK) Frames() int        { return m.frames }
func (m *BPSK) ModulatedSize() int { return m.n }

func (m *BPSK) Modulate(x []uint8, s []float64) error {
	if err := checkShape("bpsk modulate input", len(x), m.n*m.frames); err != nil {
		return err
	}
	if err := checkShape("bpsk modulate output", len(s), m.n*m.frames); err != nil {
		return err
	}
	for i, b := range x {
		s[i] = 1 - 2*float64(b&1)
	}
	return nil
}

func (m *BPSK) Demodulate(y, l []float64) error {
	if err := checkShape("bpsk demodulate input", len(y), m.n*m.frames); err != nil {
		return err
	}
	if err := checkShape("bpsk demodulate output", len(l), m.n*m.frames); err != nil {
		return err
	}
	for i, v := range y {
		l[i] = m.scale * v
	}
	return nil
}

// DemodulateWithPrior ignores prior: a memoryless mapping has no extrinsic
// information beyond the channel value itself.
func (m *BPSK) DemodulateWithPrior(y, prior, ext []float64) error {
	if err := checkShape("bpsk prior", len(prior), m.n*m.frames); err != nil {
		return err
	}
	return m.Demodulate(y, ext)
}
