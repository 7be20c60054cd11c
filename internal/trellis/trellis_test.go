package trellis

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Observe-l/fecsim/fec"
)

// 8-state machine with one label per branch (b*8+s).
var (
	testNext  = []int{0, 1, 1, 0, 2, 3, 3, 2, 4, 5, 5, 4, 6, 7, 7, 6}
	testPrev  = []int{0, 3, 1, 2, 4, 7, 5, 6, 0, 3, 1, 2, 4, 7, 5, 6}
	testInput = []int{0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 1, 1, 1, 1}
)

func testLabels() []int {
	l := make([]int, 16)
	for i := range l {
		l[i] = i
	}
	return l
}

func newTestTrellis(t *testing.T) *Trellis {
	t.Helper()
	tr, err := New(8, 16, testNext, testLabels(), testPrev, testInput)
	require.NoError(t, err)
	return tr
}

func TestNewRejectsInconsistentTables(t *testing.T) {
	_, err := New(8, 16, testNext[:15], testLabels(), testPrev, testInput)
	require.ErrorIs(t, err, ErrInvalidTopology)

	prev := append([]int(nil), testPrev...)
	prev[0], prev[1] = prev[1], prev[2]
	_, err = New(8, 16, testNext, testLabels(), prev, testInput)
	require.ErrorIs(t, err, ErrInvalidTopology)

	labels := testLabels()
	labels[3] = 16
	_, err = New(8, 16, testNext, labels, testPrev, testInput)
	require.ErrorIs(t, err, ErrInvalidTopology)

	input := append([]int(nil), testInput...)
	input[0] = 2
	_, err = New(8, 16, testNext, testLabels(), testPrev, input)
	require.ErrorIs(t, err, ErrInvalidTopology)

	_, err = New(0, 16, nil, nil, nil, nil)
	require.ErrorIs(t, err, ErrInvalidTopology)
}

func TestDistances(t *testing.T) {
	tr := newTestTrellis(t)
	want := []int{0, 3, 3, 1, 3, 2, 2, 3}
	for s, d := range want {
		assert.Equal(t, d, tr.Distance(s), "state %d", s)
	}
	assert.Equal(t, 3, tr.MaxDistance())
	assert.Equal(t, 8, tr.States())
	assert.Equal(t, 16, tr.Labels())

	p, in := tr.Prev(6, 1)
	assert.Equal(t, 7, p)
	assert.Equal(t, uint8(1), in)
	assert.Equal(t, 6, tr.Next(p, in))
}

func TestEncodeTerminates(t *testing.T) {
	tr := newTestTrellis(t)
	labels := make([]int, 10)
	require.NoError(t, tr.Encode([]uint8{1, 0, 1, 1}, 6, labels))
	assert.Equal(t, []int{8, 4, 10, 13, 15, 6, 3, 0, 0, 0}, labels)

	require.ErrorIs(t, tr.Encode([]uint8{1, 0, 1, 1}, 2, make([]int, 6)), ErrInvalidTopology)
	require.ErrorIs(t, tr.Encode([]uint8{1}, 6, make([]int, 3)), fec.ErrShapeMismatch)
	// no tail: the final state is free
	require.NoError(t, tr.Encode([]uint8{1, 0, 1, 1}, 0, make([]int, 4)))
}

func TestMaxFuncs(t *testing.T) {
	assert.InDelta(t, 1+math.Ln2, MaxStar(1, 1), 1e-12)
	assert.InDelta(t, math.Log(math.Exp(2)+math.Exp(-1)), MaxStar(2, -1), 1e-12)
	assert.True(t, math.IsInf(MaxStar(math.Inf(-1), math.Inf(-1)), -1))
	assert.Equal(t, 3.0, MaxStar(math.Inf(-1), 3))
	assert.Equal(t, 2.0, MaxLog(1, 2))
}

// oneHot builds branch metrics that favour exactly the labels of a path.
func oneHot(labels []int, nLabels int, mag float64) []float64 {
	m := make([]float64, len(labels)*nLabels)
	for t, l := range labels {
		m[t*nLabels+l] = mag
	}
	return m
}

func TestBCJRNoiseless(t *testing.T) {
	tr := newTestTrellis(t)
	rng := rand.New(rand.NewSource(5))
	const n = 32
	for _, tc := range []struct {
		name    string
		tail    int
		combine MaxFunc
	}{
		{"max-star tail", 6, nil},
		{"max-log tail", 6, MaxLog},
		{"max-star tailless", 0, MaxStar},
	} {
		t.Run(tc.name, func(t *testing.T) {
			bits := make([]uint8, n)
			for i := range bits {
				bits[i] = uint8(rng.Intn(2))
			}
			labels := make([]int, n+tc.tail)
			require.NoError(t, tr.Encode(bits, tc.tail, labels))

			b, err := NewBCJR(tr, n, tc.tail, tc.combine)
			require.NoError(t, err)
			require.Equal(t, n+tc.tail, b.Steps())
			app := make([]float64, n)
			require.NoError(t, b.Decode(oneHot(labels, 16, 20), nil, app))
			for i, l := range app {
				if bits[i] == 0 {
					assert.Greater(t, l, 5.0, "bit %d", i)
				} else {
					assert.Less(t, l, -5.0, "bit %d", i)
				}
			}
		})
	}
}

func TestBCJRSoftConsistency(t *testing.T) {
	tr := newTestTrellis(t)
	const n = 12
	b, err := NewBCJR(tr, n, 6, nil)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(9))
	metrics := make([]float64, (n+6)*16)
	for i := range metrics {
		metrics[i] = rng.NormFloat64()
	}
	app := make([]float64, n)
	ext := make([]float64, n)
	require.NoError(t, b.Decode(metrics, nil, app))
	require.NoError(t, b.DecodeSISO(metrics, make([]float64, n), ext))
	assert.InDeltaSlice(t, app, ext, 1e-9)

	require.ErrorIs(t, b.DecodeSISO(metrics, nil, ext), fec.ErrShapeMismatch)
	require.ErrorIs(t, b.Decode(metrics[:16], nil, app), fec.ErrShapeMismatch)
	require.ErrorIs(t, b.Decode(metrics, make([]float64, 3), app), fec.ErrShapeMismatch)
	require.ErrorIs(t, b.Decode(metrics, nil, app[:2]), fec.ErrShapeMismatch)
}

func TestBCJRPriorOnly(t *testing.T) {
	// flat branch metrics carry no information; without a tail the
	// posterior is the prior and nothing is extrinsic
	tr := newTestTrellis(t)
	const n = 8
	b, err := NewBCJR(tr, n, 0, nil)
	require.NoError(t, err)
	prior := []float64{3, -2, 0.5, 0, -7, 1, 1, -1}
	app := make([]float64, n)
	require.NoError(t, b.Decode(make([]float64, n*16), prior, app))
	assert.InDeltaSlice(t, prior, app, 1e-9)

	ext := make([]float64, n)
	require.NoError(t, b.DecodeSISO(make([]float64, n*16), prior, ext))
	assert.InDeltaSlice(t, make([]float64, n), ext, 1e-9)
}

func TestNewBCJRChecksTail(t *testing.T) {
	tr := newTestTrellis(t)
	_, err := NewBCJR(tr, 8, 2, nil)
	require.ErrorIs(t, err, ErrInvalidTopology)
	_, err = NewBCJR(tr, 0, 6, nil)
	require.Error(t, err)
}
