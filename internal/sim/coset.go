package sim

import (
	"fmt"

	"github.com/Observe-l/fecsim/fec"
)

// CosetReal flips the sign of every reliability whose reference bit is 1,
// so a decoder sees the all-zero codeword whatever was transmitted.
func CosetReal(ref []uint8, in, out []float64) error {
	if len(ref) != len(in) || len(in) != len(out) {
		return fmt.Errorf("coset: %d reference bits for %d/%d values: %w", len(ref), len(in), len(out), fec.ErrShapeMismatch)
	}
	for i, v := range in {
		if ref[i]&1 == 1 {
			v = -v
		}
		out[i] = v
	}
	return nil
}

// CosetBit XORs decisions with the reference bits, undoing CosetReal on
// the decoded side.
func CosetBit(ref, in, out []uint8) error {
	if len(ref) != len(in) || len(in) != len(out) {
		return fmt.Errorf("coset: %d reference bits for %d/%d values: %w", len(ref), len(in), len(out), fec.ErrShapeMismatch)
	}
	for i, b := range in {
		out[i] = (b ^ ref[i]) & 1
	}
	return nil
}
