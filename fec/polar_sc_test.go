package fec

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Observe-l/fecsim/internal/bintree"
)

func maskOf(s string) []bool {
	m := make([]bool, len(s))
	for i, c := range s {
		m[i] = c == 'T'
	}
	return m
}

// noiseless maps bits to infinite-magnitude reliabilities.
func noiseless(x []uint8) []float64 {
	y := make([]float64, len(x))
	for i, b := range x {
		y[i] = math.Inf(1)
		if b == 1 {
			y[i] = math.Inf(-1)
		}
	}
	return y
}

func encodePolar(t *testing.T, K, N, frames int, frozen []bool, u []uint8) []uint8 {
	t.Helper()
	enc, err := NewPolarEncoder(K, N, frames, frozen)
	require.NoError(t, err)
	x := make([]uint8, N*frames)
	require.NoError(t, enc.Encode(u, x))
	return x
}

func TestPolarSCAllZeroNoiseless(t *testing.T) {
	for _, tc := range []struct{ K, N int }{{1, 1}, {1, 2}, {4, 8}, {8, 16}, {32, 64}, {100, 256}, {256, 256}, {0, 32}} {
		frozen, err := FrozenBitsBEC(tc.N, tc.K, 0.5)
		require.NoError(t, err)
		d, err := NewPolarSC(tc.K, tc.N, 1, frozen, PolarKernels{})
		require.NoError(t, err)
		y := make([]float64, tc.N)
		for i := range y {
			y[i] = math.Inf(1)
		}
		v := make([]uint8, tc.K)
		require.NoError(t, DecodeFrames(d, nil, y, v))
		assert.Equal(t, make([]uint8, tc.K), v, "K=%d N=%d", tc.K, tc.N)
	}
}

func TestPolarSCFourInfoLeaves(t *testing.T) {
	frozen := maskOf("TTTFTFFF") // information leaves 3, 5, 6, 7
	u := []uint8{0, 0, 1, 1}
	x := encodePolar(t, 4, 8, 1, frozen, u)

	d, err := NewPolarSC(4, 8, 1, frozen, PolarKernels{})
	require.NoError(t, err)
	v := make([]uint8, 4)
	require.NoError(t, DecodeFrames(d, nil, noiseless(x), v))
	assert.Equal(t, u, v)
}

func TestPolarSCThreeInfoLeaves(t *testing.T) {
	frozen := maskOf("TTTTTFFF")
	u := []uint8{0, 0, 1}
	x := encodePolar(t, 3, 8, 1, frozen, u)

	d, err := NewPolarSC(3, 8, 1, frozen, PolarKernels{})
	require.NoError(t, err)
	v := make([]uint8, 3)
	require.NoError(t, DecodeFrames(d, nil, noiseless(x), v))
	assert.Equal(t, []uint8{0, 0, 1}, v)
}

func TestPolarSCStoreCountMismatch(t *testing.T) {
	// four information leaves but K=3
	d, err := NewPolarSC(3, 8, 1, maskOf("TTTFTFFF"), PolarKernels{})
	require.NoError(t, err)
	y := make([]float64, 8)
	for i := range y {
		y[i] = math.Inf(1)
	}
	require.NoError(t, d.Load(y))
	d.Decode()
	err = d.Store(make([]uint8, 3))
	require.ErrorIs(t, err, ErrInvariantViolation)
}

func TestPolarSCFrozenLeavesDecideZero(t *testing.T) {
	frozen, err := FrozenBitsBEC(32, 12, 0.3)
	require.NoError(t, err)
	d, err := NewPolarSC(12, 32, 1, frozen, PolarKernels{})
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(5))
	inputs := [][]float64{make([]float64, 32), make([]float64, 32), make([]float64, 32)}
	for i := 0; i < 32; i++ {
		inputs[0][i] = math.Inf(-1)
		inputs[1][i] = -math.MaxFloat64
		inputs[2][i] = rng.NormFloat64() * 1e9
	}
	for _, y := range inputs {
		require.NoError(t, d.Load(y))
		d.Decode()
		tr := d.trees[0]
		for _, i := range tr.Leaves() {
			if frozen[tr.Node(i).Lane] {
				assert.Equal(t, uint8(0), tr.Contents(i).s[0])
			}
		}
	}
}

func TestPolarSCPartialSumInvariant(t *testing.T) {
	const N = 64
	frozen, err := FrozenBitsBEC(N, 20, 0.4)
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(11))
	for _, kern := range []PolarKernels{{}, {F: BoxPlus}} {
		d, err := NewPolarSC(20, N, 1, frozen, kern)
		require.NoError(t, err)
		y := make([]float64, N)
		for i := range y {
			y[i] = 1 + 1.5*rng.NormFloat64()
		}
		require.NoError(t, d.Load(y))
		d.Decode()

		tr := d.trees[0]
		tr.Walk(func(i int) {
			n := tr.Node(i)
			if n.Left == bintree.None {
				return
			}
			c, l, r := tr.Contents(i), tr.Contents(n.Left), tr.Contents(n.Right)
			m := len(c.s) / 2
			for j := 0; j < m; j++ {
				require.Equal(t, l.s[j]^r.s[j], c.s[j], "node %d, bit %d", i, j)
				require.Equal(t, r.s[j], c.s[m+j], "node %d, bit %d", i, m+j)
			}
		})

		// the root holds a codeword of the code
		u := make([]uint8, 20)
		require.NoError(t, d.Store(u))
		assert.Equal(t, encodePolar(t, 20, N, 1, frozen, u), d.Codeword(0))
	}
}

func TestPolarSCDecodeIdempotent(t *testing.T) {
	const N, K = 128, 60
	frozen, err := FrozenBitsBEC(N, K, 0.5)
	require.NoError(t, err)
	d, err := NewPolarSC(K, N, 1, frozen, PolarKernels{})
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(3))
	y := make([]float64, N)
	for i := range y {
		y[i] = 0.5 + rng.NormFloat64()
	}
	require.NoError(t, d.Load(y))
	d.Decode()
	once := make([]uint8, K)
	require.NoError(t, d.Store(once))
	d.Decode()
	twice := make([]uint8, K)
	require.NoError(t, d.Store(twice))
	assert.Equal(t, once, twice)
}

func TestPolarSCMultiFrame(t *testing.T) {
	const N, K, F = 32, 16, 3
	frozen, err := FrozenBitsBEC(N, K, 0.5)
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(9))
	u := make([]uint8, K*F)
	for i := range u {
		u[i] = uint8(rng.Intn(2))
	}
	x := encodePolar(t, K, N, F, frozen, u)
	y := make([]float64, len(x))
	for i, b := range x {
		y[i] = 4 * (1 - 2*float64(b))
	}
	d, err := NewPolarSC(K, N, F, frozen, PolarKernels{})
	require.NoError(t, err)
	v := make([]uint8, K*F)
	var totals StageTotals
	require.NoError(t, DecodeFrames(d, &totals, y, v))
	assert.Equal(t, u, v)
	assert.Equal(t, 1, totals.Calls)
}

func TestPolarSCShapes(t *testing.T) {
	frozen := maskOf("TTTFTFFF")
	d, err := NewPolarSC(4, 8, 2, frozen, PolarKernels{})
	require.NoError(t, err)
	require.ErrorIs(t, d.Load(make([]float64, 8)), ErrShapeMismatch)
	require.NoError(t, d.Load(make([]float64, 16)))
	d.Decode()
	require.ErrorIs(t, d.Store(make([]uint8, 4)), ErrShapeMismatch)
	require.NoError(t, d.Store(make([]uint8, 8)))
}

func TestNewPolarSCInvalid(t *testing.T) {
	_, err := NewPolarSC(2, 6, 1, make([]bool, 6), PolarKernels{})
	require.ErrorIs(t, err, ErrInvalidLength)
	_, err = NewPolarSC(2, 8, 1, make([]bool, 4), PolarKernels{})
	require.ErrorIs(t, err, ErrInvalidLength)
	_, err = NewPolarSC(9, 8, 1, make([]bool, 8), PolarKernels{})
	require.ErrorIs(t, err, ErrInvalidLength)
}

func TestPolarSCRelease(t *testing.T) {
	d, err := NewPolarSC(4, 8, 1, maskOf("TTTFTFFF"), PolarKernels{})
	require.NoError(t, err)
	d.Release()
	assert.Nil(t, d.trees)
	d.Release()

	require.ErrorIs(t, d.Load(make([]float64, 8)), ErrInvariantViolation)
	d.Decode()
	v := []uint8{9, 9, 9, 9}
	require.ErrorIs(t, d.Store(v), ErrInvariantViolation)
	assert.Equal(t, []uint8{9, 9, 9, 9}, v)
}
