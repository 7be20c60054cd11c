package fec

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// repetitionLayout places the rep+1 copies of K bits inside a frame of N.
type repetitionLayout struct {
	k, n, rep int
	buffered  bool
}

func newRepetitionLayout(K, N int, buffered bool) (repetitionLayout, error) {
	if K <= 0 || N <= 0 || N%K != 0 {
		return repetitionLayout{}, fmt.Errorf("repetition: N=%d is not a positive multiple of K=%d: %w", N, K, ErrInvalidLength)
	}
	return repetitionLayout{k: K, n: N, rep: N/K - 1, buffered: buffered}, nil
}

// pos returns the frame offset of copy c (0 = systematic) of bit i.
// Buffered frames hold the K systematic bits, then each parity block of K;
// otherwise the copies of each bit are contiguous.
func (l repetitionLayout) pos(i, c int) int {
	if l.buffered {
		return c*l.k + i
	}
	return i*(l.rep+1) + c
}

// RepetitionEncoder repeats every information bit N/K times. When an
// interleaver is attached the codeword is permuted by it.
type RepetitionEncoder struct {
	layout repetitionLayout
	frames int
	itl    *Interleaver
	tmp    []uint8
}

func NewRepetitionEncoder(K, N, frames int, buffered bool, itl *Interleaver) (*RepetitionEncoder, error) {
	layout, err := newRepetitionLayout(K, N, buffered)
	if err != nil {
		return nil, err
	}
	if frames < 1 {
		return nil, fmt.Errorf("repetition: frames=%d: %w", frames, ErrInvalidLength)
	}
	if itl != nil && itl.Size() != N {
		return nil, fmt.Errorf("repetition: interleaver size %d, want N=%d: %w", itl.Size(), N, ErrInvalidLength)
	}
	e := &RepetitionEncoder{layout: layout, frames: frames, itl: itl}
	if itl != nil {
		e.tmp = make([]uint8, N*frames)
	}
	return e, nil
}

func (e *RepetitionEncoder) K() int      { return e.layout.k }
func (e *RepetitionEncoder) N() int      { return e.layout.n }
func (e *RepetitionEncoder) Frames() int { return e.frames }

func (e *RepetitionEncoder) Encode(u, x []uint8) error {
	l := e.layout
	if err := checkShape("repetition encoder input", len(u), l.k*e.frames); err != nil {
		return err
	}
	if err := checkShape("repetition encoder output", len(x), l.n*e.frames); err != nil {
		return err
	}
	dst := x
	if e.itl != nil {
		dst = e.tmp
	}
	for f := 0; f < e.frames; f++ {
		uf, xf := u[f*l.k:(f+1)*l.k], dst[f*l.n:(f+1)*l.n]
		for i, b := range uf {
			for c := 0; c <= l.rep; c++ {
				xf[l.pos(i, c)] = b
			}
		}
	}
	if e.itl != nil {
		return Interleave(e.itl, e.tmp, x)
	}
	return nil
}

// Repetition decodes a repetition code. One instance serves both the hard
// and the soft role.
type Repetition struct {
	layout repetitionLayout
	frames int
	itl    *Interleaver

	sys []float64 // K per frame
	par []float64 // rep blocks of K per frame
	ext []float64 // K per frame
	tmp []float64
}

// NewRepetition builds a decoder. buffered selects the frame layout; a
// non-nil itl undoes the permutation applied by the matching encoder.
func NewRepetition(K, N, frames int, buffered bool, itl *Interleaver) (*Repetition, error) {
	layout, err := newRepetitionLayout(K, N, buffered)
	if err != nil {
		return nil, err
	}
	if frames < 1 {
		return nil, fmt.Errorf("repetition: frames=%d: %w", frames, ErrInvalidLength)
	}
	if itl != nil && itl.Size() != N {
		return nil, fmt.Errorf("repetition: interleaver size %d, want N=%d: %w", itl.Size(), N, ErrInvalidLength)
	}
	d := &Repetition{
		layout: layout,
		frames: frames,
		itl:    itl,
		sys:    make([]float64, K*frames),
		par:    make([]float64, K*layout.rep*frames),
		ext:    make([]float64, K*frames),
	}
	if itl != nil {
		d.tmp = make([]float64, N*frames)
	}
	return d, nil
}

func (d *Repetition) K() int      { return d.layout.k }
func (d *Repetition) N() int      { return d.layout.n }
func (d *Repetition) Frames() int { return d.frames }

// Repeats returns the number of parity copies, N/K - 1.
func (d *Repetition) Repeats() int { return d.layout.rep }

func (d *Repetition) unpermute(in []float64) ([]float64, error) {
	if d.itl == nil {
		return in, nil
	}
	if err := Deinterleave(d.itl, in, d.tmp); err != nil {
		return nil, err
	}
	return d.tmp, nil
}

var errRepetitionReleased = fmt.Errorf("repetition: decoder released: %w", ErrInvariantViolation)

func (d *Repetition) Load(y []float64) error {
	l := d.layout
	if err := checkShape("repetition load", len(y), l.n*d.frames); err != nil {
		return err
	}
	if d.sys == nil {
		return errRepetitionReleased
	}
	y, err := d.unpermute(y)
	if err != nil {
		return err
	}
	for f := 0; f < d.frames; f++ {
		yf := y[f*l.n : (f+1)*l.n]
		sys := d.sys[f*l.k : (f+1)*l.k]
		par := d.par[f*l.k*l.rep : (f+1)*l.k*l.rep]
		for i := 0; i < l.k; i++ {
			sys[i] = yf[l.pos(i, 0)]
			for c := 1; c <= l.rep; c++ {
				par[(c-1)*l.k+i] = yf[l.pos(i, c)]
			}
		}
	}
	return nil
}

// Decode is a no-op after Release.
func (d *Repetition) Decode() {
	if d.sys == nil {
		return
	}
	d.sumParity(d.par, d.ext)
}

func (d *Repetition) Store(v []uint8) error {
	if err := checkShape("repetition store", len(v), d.layout.k*d.frames); err != nil {
		return err
	}
	if d.sys == nil {
		return errRepetitionReleased
	}
	for i := range v {
		v[i] = HardDecision(d.sys[i] + d.ext[i])
	}
	return nil
}

// SoftDecodeSysPar computes the extrinsic value of each information bit as
// the sum of its parity copies. sys and ext hold K values per frame, par
// holds rep blocks of K per frame.
func (d *Repetition) SoftDecodeSysPar(sys, par, ext []float64) error {
	l := d.layout
	if err := checkShape("repetition systematic input", len(sys), l.k*d.frames); err != nil {
		return err
	}
	if err := checkShape("repetition parity input", len(par), l.k*l.rep*d.frames); err != nil {
		return err
	}
	if err := checkShape("repetition extrinsic output", len(ext), l.k*d.frames); err != nil {
		return err
	}
	d.sumParity(par, ext)
	return nil
}

func (d *Repetition) sumParity(par, ext []float64) {
	l := d.layout
	for f := 0; f < d.frames; f++ {
		e := ext[f*l.k : (f+1)*l.k]
		for i := range e {
			e[i] = 0
		}
		for c := 0; c < l.rep; c++ {
			off := (f*l.rep + c) * l.k
			floats.Add(e, par[off:off+l.k])
		}
	}
}

// SoftDecode gives every copy the sum of the other copies of the same bit.
func (d *Repetition) SoftDecode(in, ext []float64) error {
	l := d.layout
	if err := checkShape("repetition soft input", len(in), l.n*d.frames); err != nil {
		return err
	}
	if err := checkShape("repetition soft output", len(ext), l.n*d.frames); err != nil {
		return err
	}
	if d.sys == nil {
		return errRepetitionReleased
	}
	in, err := d.unpermute(in)
	if err != nil {
		return err
	}
	out := ext
	if d.itl != nil {
		out = make([]float64, len(ext))
	}
	for f := 0; f < d.frames; f++ {
		inf, of := in[f*l.n:(f+1)*l.n], out[f*l.n:(f+1)*l.n]
		for i := 0; i < l.k; i++ {
			total := 0.0
			for c := 0; c <= l.rep; c++ {
				total += inf[l.pos(i, c)]
			}
			for c := 0; c <= l.rep; c++ {
				p := l.pos(i, c)
				of[p] = total - inf[p]
			}
		}
	}
	if d.itl != nil {
		return Interleave(d.itl, out, ext)
	}
	return nil
}

func (d *Repetition) Release() {
	d.sys, d.par, d.ext, d.tmp = nil, nil, nil, nil
}
