package fec

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/Observe-l/fecsim/internal/bintree"
)

// scanMaxLLR bounds inputs and outputs so that feedback sums stay finite.
const scanMaxLLR = 1e6

type scanNode struct {
	l []float64 // from the channel side
	b []float64 // feedback from the code side
}

// PolarSCAN is a soft-cancellation decoder. It shares the SC tree layout but
// propagates soft feedback instead of hard partial sums, so it can serve as
// the SISO role of a polar code.
type PolarSCAN struct {
	n, frames  int
	iterations int
	f          FFunc
	frozen     []bool
	tree       *bintree.Tree[scanNode]
}

// NewPolarSCAN builds a SCAN decoder running iterations passes per frame
// (at least one). f defaults to MinSum.
func NewPolarSCAN(N, frames int, frozen []bool, iterations int, f FFunc) (*PolarSCAN, error) {
	if err := checkPolarParams(0, N, frames, frozen); err != nil {
		return nil, err
	}
	if iterations < 1 {
		iterations = 1
	}
	if f == nil {
		f = MinSum
	}
	levels := bits.Len(uint(N))
	t, err := bintree.New(levels, func(depth, lane int) scanNode {
		size := N >> depth
		return scanNode{l: make([]float64, size), b: make([]float64, size)}
	})
	if err != nil {
		return nil, err
	}
	return &PolarSCAN{n: N, frames: frames, iterations: iterations, f: f, frozen: frozen, tree: t}, nil
}

func (d *PolarSCAN) N() int      { return d.n }
func (d *PolarSCAN) Frames() int { return d.frames }

// SoftDecode writes the root feedback, which excludes the input itself.
// Outputs are bounded like the inputs so that frozen positions stay finite.
func (d *PolarSCAN) SoftDecode(in, ext []float64) error {
	if err := checkShape("polar scan input", len(in), d.n*d.frames); err != nil {
		return err
	}
	if err := checkShape("polar scan output", len(ext), d.n*d.frames); err != nil {
		return err
	}
	if d.tree == nil {
		return fmt.Errorf("polar scan: decoder released: %w", ErrInvariantViolation)
	}
	t := d.tree
	root := t.Contents(t.Root())
	for f := 0; f < d.frames; f++ {
		for i, v := range in[f*d.n : (f+1)*d.n] {
			root.l[i] = math.Max(-scanMaxLLR, math.Min(scanMaxLLR, v))
		}
		d.resetFeedback()
		for it := 0; it < d.iterations; it++ {
			d.scanNode(t.Root())
		}
		for i, v := range root.b {
			ext[f*d.n+i] = math.Max(-scanMaxLLR, math.Min(scanMaxLLR, v))
		}
	}
	return nil
}

func (d *PolarSCAN) resetFeedback() {
	t := d.tree
	t.Walk(func(i int) {
		c := t.Contents(i)
		if t.IsLeaf(i) {
			if d.frozen[t.Node(i).Lane] {
				c.b[0] = math.Inf(1)
			} else {
				c.b[0] = 0
			}
			return
		}
		for j := range c.b {
			c.b[j] = 0
		}
	})
}

func (d *PolarSCAN) scanNode(i int) {
	t := d.tree
	node := t.Node(i)
	if node.Left == bintree.None {
		return
	}
	c := &node.C
	l, r := t.Contents(node.Left), t.Contents(node.Right)
	m := len(c.l) / 2
	f := d.f

	for j := 0; j < m; j++ {
		l.l[j] = f(c.l[j], c.l[m+j]+r.b[j])
	}
	d.scanNode(node.Left)

	for j := 0; j < m; j++ {
		r.l[j] = c.l[m+j] + f(c.l[j], l.b[j])
	}
	d.scanNode(node.Right)

	for j := 0; j < m; j++ {
		c.b[j] = f(l.b[j], r.b[j]+c.l[m+j])
		c.b[m+j] = r.b[j] + f(l.b[j], c.l[j])
	}
}

func (d *PolarSCAN) Release() {
	if d.tree != nil {
		d.tree.Release()
		d.tree = nil
	}
}
