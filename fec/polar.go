package fec

import (
	"fmt"
	"math"
	"math/bits"
	"sort"
)

// Polar construction and encoding.
//
// Positions use natural order: bit n-1 of a position is the first split of
// the decoding tree, so leaf j of the SC tree is u[j].

func checkPolarParams(K, N, frames int, frozen []bool) error {
	if !isPow2(N) {
		return fmt.Errorf("polar: N=%d is not a power of two: %w", N, ErrInvalidLength)
	}
	if K < 0 || K > N {
		return fmt.Errorf("polar: K=%d out of range for N=%d: %w", K, N, ErrInvalidLength)
	}
	if len(frozen) != N {
		return fmt.Errorf("polar: frozen mask has %d entries, want %d: %w", len(frozen), N, ErrInvalidLength)
	}
	if frames < 1 {
		return fmt.Errorf("polar: frames=%d: %w", frames, ErrInvalidLength)
	}
	return nil
}

// bhattacharyyaBEC returns the Bhattacharyya parameter of every synthetic
// channel of a BEC(eps), natural order. Lower means more reliable.
func bhattacharyyaBEC(N int, eps float64) []float64 {
	// iterative breadth-first over stages, [2z - z^2, z^2] per split
	z := []float64{eps}
	for len(z) < N {
		next := make([]float64, 0, len(z)*2)
		for _, v := range z {
			next = append(next, 2*v-v*v, v*v)
		}
		z = next
	}
	return z
}

// FrozenBitsBEC freezes the N-K least reliable positions of a BEC(eps)
// construction. Ties freeze the lower position first.
func FrozenBitsBEC(N, K int, eps float64) ([]bool, error) {
	if K < 0 || K > N {
		return nil, fmt.Errorf("polar: K=%d out of range for N=%d: %w", K, N, ErrInvalidLength)
	}
	order, err := ReliabilityOrderBEC(N, eps)
	if err != nil {
		return nil, err
	}
	return FrozenBitsFromOrder(order, N, K, false)
}

// ReliabilityOrderBEC lists the positions of a BEC(eps) construction from
// most to least reliable. Of two equally reliable positions the higher one
// comes first.
func ReliabilityOrderBEC(N int, eps float64) ([]int, error) {
	if !isPow2(N) {
		return nil, fmt.Errorf("polar: N=%d is not a power of two: %w", N, ErrInvalidLength)
	}
	if eps <= 0 || eps >= 1 || math.IsNaN(eps) {
		return nil, fmt.Errorf("polar: design erasure probability %v not in (0,1)", eps)
	}
	z := bhattacharyyaBEC(N, eps)
	idx := make([]int, N)
	for i := range idx {
		idx[i] = N - 1 - i
	}
	sort.SliceStable(idx, func(a, b int) bool { return z[idx[a]] < z[idx[b]] })
	return idx, nil
}

// FrozenBitsFromOrder builds a mask from a reliability sequence listed from
// most to least reliable. Entries >= N are skipped so nested sequences of a
// larger mother code can be used as is. With bitReversed the sequence is
// taken to index bit-reversed positions.
func FrozenBitsFromOrder(order []int, N, K int, bitReversed bool) ([]bool, error) {
	if !isPow2(N) {
		return nil, fmt.Errorf("polar: N=%d is not a power of two: %w", N, ErrInvalidLength)
	}
	n := bits.TrailingZeros(uint(N))
	frozen := make([]bool, N)
	for i := range frozen {
		frozen[i] = true
	}
	info := 0
	for _, idx := range order {
		if info == K {
			break
		}
		if idx < 0 || idx >= N {
			continue
		}
		if bitReversed {
			idx = bitReverseN(idx, n)
		}
		if !frozen[idx] {
			return nil, fmt.Errorf("polar: position %d listed twice", idx)
		}
		frozen[idx] = false
		info++
	}
	if info != K {
		return nil, fmt.Errorf("polar: reliability sequence covers %d positions, want %d: %w", info, K, ErrInvalidLength)
	}
	return frozen, nil
}

// bitReverseN returns the integer formed by reversing the lower n bits of x.
func bitReverseN(x int, n int) int {
	var r int
	for i := 0; i < n; i++ {
		r = (r << 1) | ((x >> i) & 1)
	}
	return r
}

func countInfo(frozen []bool) int {
	k := 0
	for _, f := range frozen {
		if !f {
			k++
		}
	}
	return k
}

// PolarEncoder computes x = u·F^{⊗n}, u holding the information bits at the
// non-frozen positions in increasing order.
type PolarEncoder struct {
	k, n, frames int
	frozen       []bool
}

// NewPolarEncoder checks that the mask leaves exactly K information positions.
func NewPolarEncoder(K, N, frames int, frozen []bool) (*PolarEncoder, error) {
	if err := checkPolarParams(K, N, frames, frozen); err != nil {
		return nil, err
	}
	if info := countInfo(frozen); info != K {
		return nil, fmt.Errorf("polar: mask has %d information positions, want K=%d: %w", info, K, ErrInvalidLength)
	}
	return &PolarEncoder{k: K, n: N, frames: frames, frozen: frozen}, nil
}

func (e *PolarEncoder) K() int      { return e.k }
func (e *PolarEncoder) N() int      { return e.n }
func (e *PolarEncoder) Frames() int { return e.frames }

func (e *PolarEncoder) Encode(u, x []uint8) error {
	if err := checkShape("polar encoder input", len(u), e.k*e.frames); err != nil {
		return err
	}
	if err := checkShape("polar encoder output", len(x), e.n*e.frames); err != nil {
		return err
	}
	for f := 0; f < e.frames; f++ {
		uf := u[f*e.k : (f+1)*e.k]
		xf := x[f*e.n : (f+1)*e.n]
		j := 0
		for i := range xf {
			if e.frozen[i] {
				xf[i] = 0
				continue
			}
			xf[i] = uf[j] & 1
			j++
		}
		polarTransform(xf)
	}
	return nil
}

// polarTransform applies the butterfly stages in place.
func polarTransform(x []uint8) {
	N := len(x)
	for half := 1; half < N; half <<= 1 {
		block := half << 1
		for start := 0; start < N; start += block {
			for j := 0; j < half; j++ {
				x[start+j] ^= x[start+j+half]
			}
		}
	}
}
