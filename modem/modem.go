// Package modem maps codeword bits onto channel values and back onto
// reliabilities (positive favours bit 0).
package modem

import (
	"fmt"

	"github.com/Observe-l/fecsim/fec"
)

// Modem converts N bits per frame into ModulatedSize() channel values per
// frame and back.
type Modem interface {
	N() int
	Frames() int
	ModulatedSize() int
	Modulate(x []uint8, s []float64) error
	Demodulate(y []float64, l []float64) error
}

// SoftModem can take a priori information from a decoder and return
// extrinsic information, for iterative demodulation and decoding.
type SoftModem interface {
	Modem
	DemodulateWithPrior(y, prior, ext []float64) error
}

func checkShape(what string, got, want int) error {
	if got != want {
		return fmt.Errorf("%s: got %d values, want %d: %w", what, got, want, fec.ErrShapeMismatch)
	}
	return nil
}
