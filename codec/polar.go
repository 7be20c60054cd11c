package codec

import (
	"fmt"

	"github.com/Observe-l/fecsim/fec"
)

// PolarParams configures a polar code. The frozen mask is, by priority, the
// explicit Frozen mask, the K most reliable positions of Reliability, or a
// BEC(DesignEps) construction.
type PolarParams struct {
	K         int     `json:"k" yaml:"k"`
	N         int     `json:"n" yaml:"n"`
	Frames    int     `json:"frames,omitempty" yaml:"frames,omitempty"`
	DesignEps float64 `json:"design_eps,omitempty" yaml:"design_eps,omitempty"`
	Frozen    []bool  `json:"frozen,omitempty" yaml:"frozen,omitempty"`
	// Reliability lists positions from most to least reliable, as read by
	// fec.ReadReliabilityTable.
	Reliability []int `json:"reliability,omitempty" yaml:"reliability,omitempty"`
	// Kernel is "min-sum" (default) or "boxplus".
	Kernel         string `json:"kernel,omitempty" yaml:"kernel,omitempty"`
	ScanIterations int    `json:"scan_iterations,omitempty" yaml:"scan_iterations,omitempty"`
}

func (p *PolarParams) setDefaults() {
	if p.Frames <= 0 {
		p.Frames = 1
	}
	if p.DesignEps == 0 {
		p.DesignEps = 0.5
	}
	if p.Kernel == "" {
		p.Kernel = "min-sum"
	}
	if p.ScanIterations <= 0 {
		p.ScanIterations = 1
	}
}

func (p *PolarParams) frozenMask() ([]bool, error) {
	switch {
	case p.Frozen != nil:
		return append([]bool(nil), p.Frozen...), nil
	case p.Reliability != nil:
		return fec.FrozenBitsFromOrder(p.Reliability, p.N, p.K, false)
	}
	return fec.FrozenBitsBEC(p.N, p.K, p.DesignEps)
}

// Polar decodes with SC for the hard role and SCAN for the soft role.
type Polar struct {
	p      PolarParams
	frozen []bool
	kern   fec.PolarKernels
}

func NewPolar(p PolarParams) (*Polar, error) {
	p.setDefaults()
	var kern fec.PolarKernels
	switch p.Kernel {
	case "min-sum":
		kern.F = fec.MinSum
	case "boxplus":
		kern.F = fec.BoxPlus
	default:
		return nil, fmt.Errorf("polar codec: unknown kernel %q", p.Kernel)
	}
	frozen, err := p.frozenMask()
	if err != nil {
		return nil, err
	}
	// the encoder checks the mask against K
	if _, err := fec.NewPolarEncoder(p.K, p.N, p.Frames, frozen); err != nil {
		return nil, err
	}
	return &Polar{p: p, frozen: frozen, kern: kern}, nil
}

func (c *Polar) Name() string { return "polar" }
func (c *Polar) K() int       { return c.p.K }
func (c *Polar) N() int       { return c.p.N }
func (c *Polar) Frames() int  { return c.p.Frames }

// Frozen returns a copy of the frozen mask.
func (c *Polar) Frozen() []bool { return append([]bool(nil), c.frozen...) }

func (c *Polar) BuildEncoder(_ int, _ int64, _ *fec.Interleaver) (fec.Encoder, error) {
	return fec.NewPolarEncoder(c.p.K, c.p.N, c.p.Frames, c.frozen)
}

func (c *Polar) BuildDecoders(_ int, _ *fec.Interleaver) (Decoders, error) {
	hard, err := fec.NewPolarSC(c.p.K, c.p.N, c.p.Frames, c.frozen, c.kern)
	if err != nil {
		return Decoders{}, err
	}
	soft, err := fec.NewPolarSCAN(c.p.N, c.p.Frames, c.frozen, c.p.ScanIterations, c.kern.F)
	if err != nil {
		hard.Release()
		return Decoders{}, err
	}
	return NewDistinct(soft, hard), nil
}
