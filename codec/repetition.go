package codec

import (
	"fmt"

	"github.com/Observe-l/fecsim/fec"
)

// RepetitionParams configures a repetition code. With Permuted the
// codeword goes through the lane interleaver, which then has to exist
// before the encoder can be built.
type RepetitionParams struct {
	K        int  `json:"k" yaml:"k"`
	N        int  `json:"n" yaml:"n"`
	Frames   int  `json:"frames,omitempty" yaml:"frames,omitempty"`
	Buffered bool `json:"buffered" yaml:"buffered"`
	Permuted bool `json:"permuted,omitempty" yaml:"permuted,omitempty"`
}

// Repetition serves both decoder roles with one instance.
type Repetition struct {
	p RepetitionParams
}

func NewRepetition(p RepetitionParams) (*Repetition, error) {
	if p.Frames <= 0 {
		p.Frames = 1
	}
	if p.K <= 0 || p.N%p.K != 0 {
		return nil, fmt.Errorf("repetition codec: N=%d is not a multiple of K=%d: %w", p.N, p.K, fec.ErrInvalidLength)
	}
	return &Repetition{p: p}, nil
}

func (c *Repetition) Name() string { return "repetition" }
func (c *Repetition) K() int       { return c.p.K }
func (c *Repetition) N() int       { return c.p.N }
func (c *Repetition) Frames() int  { return c.p.Frames }

func (c *Repetition) permutation(itl *fec.Interleaver) (*fec.Interleaver, error) {
	if !c.p.Permuted {
		return nil, nil
	}
	if itl == nil || !itl.Ready() {
		return nil, fmt.Errorf("repetition codec: permuted layout needs an initialized interleaver: %w", fec.ErrCannotAllocate)
	}
	return itl, nil
}

func (c *Repetition) BuildEncoder(_ int, _ int64, itl *fec.Interleaver) (fec.Encoder, error) {
	pi, err := c.permutation(itl)
	if err != nil {
		return nil, err
	}
	return fec.NewRepetitionEncoder(c.p.K, c.p.N, c.p.Frames, c.p.Buffered, pi)
}

func (c *Repetition) BuildDecoders(_ int, itl *fec.Interleaver) (Decoders, error) {
	pi, err := c.permutation(itl)
	if err != nil {
		return Decoders{}, err
	}
	d, err := fec.NewRepetition(c.p.K, c.p.N, c.p.Frames, c.p.Buffered, pi)
	if err != nil {
		return Decoders{}, err
	}
	return NewShared(d), nil
}
