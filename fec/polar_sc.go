package fec

import (
	"fmt"
	"math/bits"

	"github.com/Observe-l/fecsim/internal/bintree"
)

// scNode is the content of one SC tree node: the reliabilities entering the
// node and the partial-sum decisions leaving it.
type scNode struct {
	lambda []float64
	s      []uint8
	frozen bool
}

// PolarSC is a successive-cancellation decoder for polar codes. It keeps one
// tree per frame, allocated at construction.
type PolarSC struct {
	k, n, frames int
	frozen       []bool // shared, read only
	kern         PolarKernels
	trees        []*bintree.Tree[scNode]
}

// NewPolarSC builds the decoding trees. The number of information positions
// in frozen is not checked here; Store reports a mismatch with K.
func NewPolarSC(K, N, frames int, frozen []bool, kern PolarKernels) (*PolarSC, error) {
	if err := checkPolarParams(K, N, frames, frozen); err != nil {
		return nil, err
	}
	kern.setDefaults()
	d := &PolarSC{k: K, n: N, frames: frames, frozen: frozen, kern: kern}
	levels := bits.Len(uint(N))
	for f := 0; f < frames; f++ {
		t, err := bintree.New(levels, func(depth, lane int) scNode {
			size := N >> depth
			c := scNode{lambda: make([]float64, size), s: make([]uint8, size)}
			if depth == levels-1 {
				c.frozen = frozen[lane]
			}
			return c
		})
		if err != nil {
			return nil, err
		}
		d.trees = append(d.trees, t)
	}
	return d, nil
}

func (d *PolarSC) K() int      { return d.k }
func (d *PolarSC) N() int      { return d.n }
func (d *PolarSC) Frames() int { return d.frames }

func (d *PolarSC) Load(y []float64) error {
	if err := checkShape("polar sc load", len(y), d.n*d.frames); err != nil {
		return err
	}
	if d.trees == nil {
		return fmt.Errorf("polar sc: decoder released: %w", ErrInvariantViolation)
	}
	for f, t := range d.trees {
		copy(t.Contents(t.Root()).lambda, y[f*d.n:(f+1)*d.n])
	}
	return nil
}

func (d *PolarSC) Decode() {
	for _, t := range d.trees {
		d.decodeNode(t, t.Root())
	}
}

func (d *PolarSC) decodeNode(t *bintree.Tree[scNode], i int) {
	node := t.Node(i)
	c := &node.C
	if node.Left == bintree.None {
		if c.frozen {
			c.s[0] = 0
		} else {
			c.s[0] = d.kern.H(c.lambda[0])
		}
		return
	}
	l, r := t.Contents(node.Left), t.Contents(node.Right)
	m := len(c.lambda) / 2

	for j := 0; j < m; j++ {
		l.lambda[j] = d.kern.F(c.lambda[j], c.lambda[m+j])
	}
	d.decodeNode(t, node.Left)

	for j := 0; j < m; j++ {
		r.lambda[j] = d.kern.G(c.lambda[j], c.lambda[m+j], l.s[j])
	}
	d.decodeNode(t, node.Right)

	for j := 0; j < m; j++ {
		c.s[j] = l.s[j] ^ r.s[j]
		c.s[m+j] = r.s[j]
	}
}

// Store emits the decisions of the non-frozen leaves in leaf order.
func (d *PolarSC) Store(v []uint8) error {
	if err := checkShape("polar sc store", len(v), d.k*d.frames); err != nil {
		return err
	}
	if d.trees == nil {
		return fmt.Errorf("polar sc: decoder released: %w", ErrInvariantViolation)
	}
	for f, t := range d.trees {
		out := v[f*d.k : (f+1)*d.k]
		k := 0
		for _, i := range t.Leaves() {
			c := t.Contents(i)
			if c.frozen {
				continue
			}
			if k < d.k {
				out[k] = c.s[0]
			}
			k++
		}
		if k != d.k {
			return fmt.Errorf("polar sc store: frame %d emitted %d information bits, want K=%d: %w",
				f, k, d.k, ErrInvariantViolation)
		}
	}
	return nil
}

// Codeword returns the re-encoded decisions of frame f held at the root.
func (d *PolarSC) Codeword(f int) []uint8 {
	t := d.trees[f]
	return append([]uint8(nil), t.Contents(t.Root()).s...)
}

func (d *PolarSC) Release() {
	for _, t := range d.trees {
		t.Release()
	}
	d.trees = nil
}
