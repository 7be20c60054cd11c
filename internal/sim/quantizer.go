package sim

import (
	"fmt"
	"math"

	"github.com/Observe-l/fecsim/fec"
)

// QuantizerParams configures fixed-point quantization of reliabilities:
// values are rounded to multiples of 2^-FracBits and saturated to
// ±(2^(Bits-1)-1)·2^-FracBits. Bits == 0 disables quantization.
type QuantizerParams struct {
	Bits     int `json:"bits,omitempty" yaml:"bits,omitempty"`
	FracBits int `json:"frac_bits,omitempty" yaml:"frac_bits,omitempty"`
}

// Quantizer applies QuantizerParams.
type Quantizer struct {
	scale float64
	sat   float64
	off   bool
}

func NewQuantizer(p QuantizerParams) (*Quantizer, error) {
	if p.Bits == 0 {
		return &Quantizer{off: true}, nil
	}
	if p.Bits < 2 || p.Bits > 32 || p.FracBits < 0 || p.FracBits >= p.Bits {
		return nil, fmt.Errorf("quantizer: %d bits with %d fractional bits", p.Bits, p.FracBits)
	}
	return &Quantizer{
		scale: math.Ldexp(1, p.FracBits),
		sat:   math.Ldexp(1, p.Bits-1) - 1,
	}, nil
}

func (q *Quantizer) Process(in, out []float64) error {
	if len(in) != len(out) {
		return fmt.Errorf("quantizer: got %d values, want %d: %w", len(out), len(in), fec.ErrShapeMismatch)
	}
	if q.off {
		copy(out, in)
		return nil
	}
	for i, v := range in {
		r := math.Round(v * q.scale)
		r = math.Max(-q.sat, math.Min(q.sat, r))
		out[i] = r / q.scale
	}
	return nil
}
