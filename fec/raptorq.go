package fec

import (
	"fmt"

	rqq "github.com/xssnick/raptorq"
)

// RaptorQ codes carry K information bits in symbols of L bytes and transmit
// N/(8L) symbols: the systematic ones first, then repair symbols. Bits are
// packed least significant first.

type raptorqGeometry struct {
	k, n, frames int
	symSize      int // bytes
	symbols      int
}

func newRaptorQGeometry(K, N, frames, symbolSize int) (raptorqGeometry, error) {
	g := raptorqGeometry{k: K, n: N, frames: frames, symSize: symbolSize}
	switch {
	case K <= 0 || K%8 != 0:
		return g, fmt.Errorf("raptorq: K=%d must be a positive multiple of 8: %w", K, ErrInvalidLength)
	case symbolSize <= 0 || N%(8*symbolSize) != 0:
		return g, fmt.Errorf("raptorq: N=%d is not a whole number of %d-byte symbols: %w", N, symbolSize, ErrInvalidLength)
	case frames < 1:
		return g, fmt.Errorf("raptorq: frames=%d: %w", frames, ErrInvalidLength)
	}
	g.symbols = N / (8 * symbolSize)
	if g.symbols*symbolSize < K/8 {
		return g, fmt.Errorf("raptorq: %d symbols cannot carry %d bytes: %w", g.symbols, K/8, ErrInvalidLength)
	}
	return g, nil
}

func packBits(bitsIn []uint8) []byte {
	out := make([]byte, (len(bitsIn)+7)/8)
	for i, b := range bitsIn {
		if b&1 == 1 {
			out[i/8] |= 1 << (i % 8)
		}
	}
	return out
}

func unpackBits(data []byte, out []uint8) {
	for i := range out {
		if i/8 < len(data) {
			out[i] = (data[i/8] >> (i % 8)) & 1
		} else {
			out[i] = 0
		}
	}
}

// RaptorQEncoder encodes each frame as one RaptorQ source block.
type RaptorQEncoder struct {
	g  raptorqGeometry
	rq *rqq.RaptorQ
}

func NewRaptorQEncoder(K, N, frames, symbolSize int) (*RaptorQEncoder, error) {
	g, err := newRaptorQGeometry(K, N, frames, symbolSize)
	if err != nil {
		return nil, err
	}
	return &RaptorQEncoder{g: g, rq: rqq.NewRaptorQ(uint32(symbolSize))}, nil
}

func (e *RaptorQEncoder) K() int      { return e.g.k }
func (e *RaptorQEncoder) N() int      { return e.g.n }
func (e *RaptorQEncoder) Frames() int { return e.g.frames }

func (e *RaptorQEncoder) Encode(u, x []uint8) error {
	g := e.g
	if err := checkShape("raptorq encoder input", len(u), g.k*g.frames); err != nil {
		return err
	}
	if err := checkShape("raptorq encoder output", len(x), g.n*g.frames); err != nil {
		return err
	}
	symBits := 8 * g.symSize
	for f := 0; f < g.frames; f++ {
		enc, err := e.rq.CreateEncoder(packBits(u[f*g.k : (f+1)*g.k]))
		if err != nil {
			return fmt.Errorf("raptorq: frame %d: %w", f, err)
		}
		xf := x[f*g.n : (f+1)*g.n]
		for s := 0; s < g.symbols; s++ {
			unpackBits(enc.GenSymbol(uint32(s)), xf[s*symBits:(s+1)*symBits])
		}
	}
	return nil
}

// RaptorQDecoder treats a symbol as erased when any of its reliabilities is
// zero and hands the others, hard decided, to the RaptorQ decoder. A frame
// that cannot be recovered falls back to the hard decisions of its
// systematic symbols.
type RaptorQDecoder struct {
	g        raptorqGeometry
	rq       *rqq.RaptorQ
	y        []float64
	out      []uint8
	failures int
}

func NewRaptorQDecoder(K, N, frames, symbolSize int) (*RaptorQDecoder, error) {
	g, err := newRaptorQGeometry(K, N, frames, symbolSize)
	if err != nil {
		return nil, err
	}
	return &RaptorQDecoder{
		g:   g,
		rq:  rqq.NewRaptorQ(uint32(symbolSize)),
		y:   make([]float64, N*frames),
		out: make([]uint8, K*frames),
	}, nil
}

func (d *RaptorQDecoder) K() int      { return d.g.k }
func (d *RaptorQDecoder) N() int      { return d.g.n }
func (d *RaptorQDecoder) Frames() int { return d.g.frames }

// Failures returns how many frames fell back to systematic decisions.
func (d *RaptorQDecoder) Failures() int { return d.failures }

func (d *RaptorQDecoder) Load(y []float64) error {
	if err := checkShape("raptorq load", len(y), d.g.n*d.g.frames); err != nil {
		return err
	}
	copy(d.y, y)
	return nil
}

func (d *RaptorQDecoder) Decode() {
	for f := 0; f < d.g.frames; f++ {
		if !d.decodeFrame(f) {
			d.failures++
			yf := d.y[f*d.g.n:]
			for i, o := 0, d.out[f*d.g.k:(f+1)*d.g.k]; i < len(o); i++ {
				o[i] = HardDecision(yf[i])
			}
		}
	}
}

func (d *RaptorQDecoder) decodeFrame(f int) bool {
	g := d.g
	dec, err := d.rq.CreateDecoder(uint32(g.k / 8))
	if err != nil {
		return false
	}
	symBits := 8 * g.symSize
	hard := make([]uint8, symBits)
	yf := d.y[f*g.n : (f+1)*g.n]
	for s := 0; s < g.symbols; s++ {
		llr := yf[s*symBits : (s+1)*symBits]
		erased := false
		for i, l := range llr {
			if l == 0 {
				erased = true
				break
			}
			hard[i] = HardDecision(l)
		}
		if erased {
			continue
		}
		if _, err := dec.AddSymbol(uint32(s), packBits(hard)); err != nil {
			// ignore bad symbol; continue adding
			continue
		}
	}
	ok, data, err := dec.Decode()
	if err != nil || !ok || len(data) < g.k/8 {
		return false
	}
	unpackBits(data, d.out[f*g.k:(f+1)*g.k])
	return true
}

func (d *RaptorQDecoder) Store(v []uint8) error {
	if err := checkShape("raptorq store", len(v), d.g.k*d.g.frames); err != nil {
		return err
	}
	copy(v, d.out)
	return nil
}

func (d *RaptorQDecoder) Release() {
	d.y, d.out = nil, nil
}
