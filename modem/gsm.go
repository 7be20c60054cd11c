package modem

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/Observe-l/fecsim/fec"
	"github.com/Observe-l/fecsim/internal/trellis"
)

// GSM continuous-phase modulation seen through its 8-state trellis. Each
// step of the trellis emits one of 16 reference waveforms; the channel
// values of a step are the 16 correlator outputs against those references.
const (
	GSMStates  = 8
	GSMLabels  = 16
	GSMTailLen = 6
)

var (
	gsmNext = []int{
		0, 1, 1, 0, 2, 3, 3, 2, // input 0
		4, 5, 5, 4, 6, 7, 7, 6, // input 1
	}
	gsmPrev  = []int{0, 3, 1, 2, 4, 7, 5, 6, 0, 3, 1, 2, 4, 7, 5, 6}
	gsmInput = []int{0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 1, 1, 1, 1}
)

func gsmLabels() []int {
	l := make([]int, 2*GSMStates)
	for i := range l {
		l[i] = i // branch b*8+s
	}
	return l
}

// gsmTrellis is read only and shared by every GSM modem.
var gsmTrellis = mustTrellis(trellis.New(GSMStates, GSMLabels, gsmNext, gsmLabels(), gsmPrev, gsmInput))

func mustTrellis(t *trellis.Trellis, err error) *trellis.Trellis {
	if err != nil {
		panic(err)
	}
	return t
}

// GSMParams configures a GSM modem.
type GSMParams struct {
	Sigma    float64 `json:"sigma" yaml:"sigma"`
	Tailless bool    `json:"tailless,omitempty" yaml:"tailless,omitempty"`
	MaxLog   bool    `json:"max_log,omitempty" yaml:"max_log,omitempty"`
}

// GSM modulates and demodulates frames of N bits. Demodulation runs one
// BCJR pass per frame; the metric buffers belong to the modem.
type GSM struct {
	n, frames int
	tail      int
	invVar    float64
	bcjr      *trellis.BCJR
	labels    []int
	metrics   []float64
}

func NewGSM(n, frames int, p GSMParams) (*GSM, error) {
	if n <= 0 || frames < 1 {
		return nil, fmt.Errorf("gsm: n=%d frames=%d: %w", n, frames, fec.ErrInvalidLength)
	}
	tail := GSMTailLen
	if p.Tailless {
		tail = 0
	}
	combine := trellis.MaxStar
	if p.MaxLog {
		combine = trellis.MaxLog
	}
	bcjr, err := trellis.NewBCJR(gsmTrellis, n, tail, combine)
	if err != nil {
		return nil, err
	}
	invVar := 1.0
	if p.Sigma > 0 {
		invVar = 1 / (p.Sigma * p.Sigma)
	}
	steps := n + tail
	return &GSM{
		n:       n,
		frames:  frames,
		tail:    tail,
		invVar:  invVar,
		bcjr:    bcjr,
		labels:  make([]int, steps),
		metrics: make([]float64, steps*GSMLabels),
	}, nil
}

func (m *GSM) N() int      { return m.n }
func (m *GSM) Frames() int { return m.frames }

// TailLength returns the number of terminating steps per frame.
func (m *GSM) TailLength() int { return m.tail }

// ModulatedSize is (N+tail)·16.
func (m *GSM) ModulatedSize() int { return (m.n + m.tail) * GSMLabels }

// Modulate emits, for every step, 1 on the correlator of the transmitted
// branch and 0 on the others.
func (m *GSM) Modulate(x []uint8, s []float64) error {
	if err := checkShape("gsm modulate input", len(x), m.n*m.frames); err != nil {
		return err
	}
	size := m.ModulatedSize()
	if err := checkShape("gsm modulate output", len(s), size*m.frames); err != nil {
		return err
	}
	for f := 0; f < m.frames; f++ {
		if err := gsmTrellis.Encode(x[f*m.n:(f+1)*m.n], m.tail, m.labels); err != nil {
			return err
		}
		sf := s[f*size : (f+1)*size]
		for i := range sf {
			sf[i] = 0
		}
		for t, label := range m.labels {
			sf[t*GSMLabels+label] = 1
		}
	}
	return nil
}

// Demodulate writes the a posteriori reliability of every bit.
func (m *GSM) Demodulate(y, l []float64) error {
	return m.demodulate(y, nil, l)
}

// DemodulateWithPrior writes extrinsic reliabilities given a priori ones.
func (m *GSM) DemodulateWithPrior(y, prior, ext []float64) error {
	if err := checkShape("gsm prior", len(prior), m.n*m.frames); err != nil {
		return err
	}
	return m.demodulate(y, prior, ext)
}

func (m *GSM) demodulate(y, prior, out []float64) error {
	size := m.ModulatedSize()
	if err := checkShape("gsm demodulate input", len(y), size*m.frames); err != nil {
		return err
	}
	if err := checkShape("gsm demodulate output", len(out), m.n*m.frames); err != nil {
		return err
	}
	if m.bcjr == nil {
		return fmt.Errorf("gsm: modem released: %w", fec.ErrInvariantViolation)
	}
	for f := 0; f < m.frames; f++ {
		floats.ScaleTo(m.metrics, m.invVar, y[f*size:(f+1)*size])
		o := out[f*m.n : (f+1)*m.n]
		var err error
		if prior == nil {
			err = m.bcjr.Decode(m.metrics, nil, o)
		} else {
			err = m.bcjr.DecodeSISO(m.metrics, prior[f*m.n:(f+1)*m.n], o)
		}
		if err != nil {
			return fmt.Errorf("gsm: frame %d: %w", f, err)
		}
	}
	return nil
}

func (m *GSM) Release() {
	m.bcjr = nil
	m.metrics, m.labels = nil, nil
}
