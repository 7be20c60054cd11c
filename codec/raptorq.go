package codec

import "github.com/Observe-l/fecsim/fec"

// RaptorQParams configures the RaptorQ erasure family.
type RaptorQParams struct {
	K          int `json:"k" yaml:"k"`
	N          int `json:"n" yaml:"n"`
	Frames     int `json:"frames,omitempty" yaml:"frames,omitempty"`
	SymbolSize int `json:"symbol_size" yaml:"symbol_size"`
}

// RaptorQ has no soft decoder; its pair is Distinct with a nil SISO.
type RaptorQ struct {
	p RaptorQParams
}

func NewRaptorQ(p RaptorQParams) (*RaptorQ, error) {
	if p.Frames <= 0 {
		p.Frames = 1
	}
	if p.SymbolSize <= 0 {
		p.SymbolSize = 1
	}
	if _, err := fec.NewRaptorQEncoder(p.K, p.N, p.Frames, p.SymbolSize); err != nil {
		return nil, err
	}
	return &RaptorQ{p: p}, nil
}

func (c *RaptorQ) Name() string { return "raptorq" }
func (c *RaptorQ) K() int       { return c.p.K }
func (c *RaptorQ) N() int       { return c.p.N }
func (c *RaptorQ) Frames() int  { return c.p.Frames }

func (c *RaptorQ) BuildEncoder(_ int, _ int64, _ *fec.Interleaver) (fec.Encoder, error) {
	return fec.NewRaptorQEncoder(c.p.K, c.p.N, c.p.Frames, c.p.SymbolSize)
}

func (c *RaptorQ) BuildDecoders(_ int, _ *fec.Interleaver) (Decoders, error) {
	d, err := fec.NewRaptorQDecoder(c.p.K, c.p.N, c.p.Frames, c.p.SymbolSize)
	if err != nil {
		return Decoders{}, err
	}
	return NewDistinct(nil, d), nil
}
