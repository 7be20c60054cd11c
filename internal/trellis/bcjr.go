package trellis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/Observe-l/fecsim/fec"
)

// MaxFunc is the pairwise combine of the log domain.
type MaxFunc func(a, b float64) float64

// MaxStar is the exact Jacobian logarithm log(e^a + e^b).
func MaxStar(a, b float64) float64 {
	if math.IsInf(a, -1) {
		return b
	}
	if math.IsInf(b, -1) {
		return a
	}
	if a > b {
		return a + math.Log1p(math.Exp(b-a))
	}
	return b + math.Log1p(math.Exp(a-b))
}

// MaxLog drops the correction term of MaxStar.
func MaxLog(a, b float64) float64 { return math.Max(a, b) }

var negInf = math.Inf(-1)

// BCJR runs forward-backward recursions over one frame of steps trellis
// sections. The first n steps carry information bits; the remaining tail
// steps only terminate the trellis in state 0. Metric buffers are owned by
// the instance, which is therefore not safe for concurrent use.
type BCJR struct {
	t     *Trellis
	n     int
	tail  int
	max   MaxFunc
	alpha []float64 // (steps+1)*S
	beta  []float64 // (steps+1)*S
	gamma []float64 // steps*2*S, index (t*2+b)*S+s
}

// NewBCJR allocates the metric buffers. A nil combine selects MaxStar.
func NewBCJR(t *Trellis, n, tail int, combine MaxFunc) (*BCJR, error) {
	if n <= 0 || tail < 0 {
		return nil, fmt.Errorf("trellis: bcjr over %d steps with tail %d", n, tail)
	}
	if tail > 0 {
		if d := t.MaxDistance(); d < 0 || d > tail {
			return nil, fmt.Errorf("%w: tail %d cannot terminate (needs %d)", ErrInvalidTopology, tail, d)
		}
	}
	if combine == nil {
		combine = MaxStar
	}
	steps := n + tail
	S := t.states
	return &BCJR{
		t:     t,
		n:     n,
		tail:  tail,
		max:   combine,
		alpha: make([]float64, (steps+1)*S),
		beta:  make([]float64, (steps+1)*S),
		gamma: make([]float64, steps*2*S),
	}, nil
}

// Steps returns the number of trellis sections per frame, tail included.
func (b *BCJR) Steps() int { return b.n + b.tail }

// Decode writes the a posteriori LLR of each of the n information bits.
// metrics holds Labels() log branch metrics per step. prior may be nil;
// otherwise it holds n a priori LLRs that are included in app.
func (b *BCJR) Decode(metrics, prior, app []float64) error {
	if err := b.checkShapes(metrics, prior, app); err != nil {
		return err
	}
	b.branches(metrics, prior)
	b.forward()
	b.backward()
	b.posterior(app)
	return nil
}

// DecodeSISO writes app - prior, the extrinsic information of each bit. A
// zero prior makes it equal to Decode.
func (b *BCJR) DecodeSISO(metrics, prior, ext []float64) error {
	if prior == nil {
		return fmt.Errorf("trellis: soft decode needs a prior of %d values: %w", b.n, fec.ErrShapeMismatch)
	}
	if err := b.Decode(metrics, prior, ext); err != nil {
		return err
	}
	floats.Sub(ext, prior)
	return nil
}

func (b *BCJR) checkShapes(metrics, prior, out []float64) error {
	if want := b.Steps() * b.t.labels; len(metrics) != want {
		return fmt.Errorf("trellis: %d branch metrics, want %d: %w", len(metrics), want, fec.ErrShapeMismatch)
	}
	if prior != nil && len(prior) != b.n {
		return fmt.Errorf("trellis: %d prior values, want %d: %w", len(prior), b.n, fec.ErrShapeMismatch)
	}
	if len(out) != b.n {
		return fmt.Errorf("trellis: output of %d values, want %d: %w", len(out), b.n, fec.ErrShapeMismatch)
	}
	return nil
}

func (b *BCJR) branches(metrics, prior []float64) {
	S, L := b.t.states, b.t.labels
	for t := 0; t < b.Steps(); t++ {
		half := 0.0
		if prior != nil && t < b.n {
			half = prior[t] / 2
		}
		m := metrics[t*L : (t+1)*L]
		g0 := b.gamma[(t*2)*S : (t*2+1)*S]
		g1 := b.gamma[(t*2+1)*S : (t*2+2)*S]
		for s := 0; s < S; s++ {
			g0[s] = m[b.t.Label(s, 0)] + half
			g1[s] = m[b.t.Label(s, 1)] - half
		}
	}
}

func (b *BCJR) forward() {
	S := b.t.states
	row := b.alpha[:S]
	for s := range row {
		row[s] = negInf
	}
	row[0] = 0
	for t := 0; t < b.Steps(); t++ {
		cur := b.alpha[t*S : (t+1)*S]
		nxt := b.alpha[(t+1)*S : (t+2)*S]
		for s := 0; s < S; s++ {
			acc := negInf
			for k := 0; k < 2; k++ {
				p, in := b.t.Prev(s, k)
				acc = b.max(acc, cur[p]+b.gamma[(t*2+int(in))*S+p])
			}
			nxt[s] = acc
		}
		normalize(nxt)
	}
}

func (b *BCJR) backward() {
	S := b.t.states
	steps := b.Steps()
	last := b.beta[steps*S : (steps+1)*S]
	for s := range last {
		if b.tail > 0 && s != 0 {
			last[s] = negInf
		} else {
			last[s] = 0
		}
	}
	for t := steps - 1; t >= 0; t-- {
		cur := b.beta[t*S : (t+1)*S]
		nxt := b.beta[(t+1)*S : (t+2)*S]
		for s := 0; s < S; s++ {
			acc := negInf
			for in := uint8(0); in < 2; in++ {
				acc = b.max(acc, b.gamma[(t*2+int(in))*S+s]+nxt[b.t.Next(s, in)])
			}
			cur[s] = acc
		}
		normalize(cur)
	}
}

func (b *BCJR) posterior(app []float64) {
	S := b.t.states
	for t := 0; t < b.n; t++ {
		alpha := b.alpha[t*S : (t+1)*S]
		beta := b.beta[(t+1)*S : (t+2)*S]
		var acc [2]float64
		acc[0], acc[1] = negInf, negInf
		for s := 0; s < S; s++ {
			for in := uint8(0); in < 2; in++ {
				v := alpha[s] + b.gamma[(t*2+int(in))*S+s] + beta[b.t.Next(s, in)]
				acc[in] = b.max(acc[in], v)
			}
		}
		app[t] = acc[0] - acc[1]
	}
}

// normalize subtracts the row maximum so metrics stay bounded.
func normalize(row []float64) {
	m := floats.Max(row)
	if math.IsInf(m, 0) {
		return
	}
	floats.AddConst(-m, row)
}
