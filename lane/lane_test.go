package lane

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"gopkg.in/yaml.v3"

	"github.com/Observe-l/fecsim/codec"
	"github.com/Observe-l/fecsim/fec"
	"github.com/Observe-l/fecsim/internal/mocks"
	"github.com/Observe-l/fecsim/internal/sim"
)

func noiselessParams() Params {
	return Params{Seed: 1, Channel: sim.ChannelParams{Kind: sim.ChannelNone}}
}

func mockCodec(ctrl *gomock.Controller, K, N int) *mocks.MockCodec {
	c := mocks.NewMockCodec(ctrl)
	c.EXPECT().Name().Return("mock").AnyTimes()
	c.EXPECT().K().Return(K).AnyTimes()
	c.EXPECT().N().Return(N).AnyTimes()
	c.EXPECT().Frames().Return(1).AnyTimes()
	return c
}

func TestSharedDecoderReleasedOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mockCodec(ctrl, 8, 8)
	dec := mocks.NewMockSoftHardDecoder(ctrl)
	dec.EXPECT().Release().Times(1)
	c.EXPECT().BuildEncoder(0, gomock.Any(), gomock.Nil()).DoAndReturn(
		func(int, int64, *fec.Interleaver) (fec.Encoder, error) { return fec.NewUncoded(8, 1) })
	c.EXPECT().BuildDecoders(0, gomock.Any()).Return(codec.NewShared(dec), nil)

	l, err := Build(noiselessParams(), c, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, codec.Shared, l.Decoders().Kind())
	l.Release()
	l.Release()

	_, err = l.RunFrame()
	require.ErrorIs(t, err, fec.ErrInvariantViolation)
}

func TestBuildOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mockCodec(ctrl, 8, 8)
	var decodersSawInterleaver bool
	gomock.InOrder(
		c.EXPECT().BuildEncoder(3, gomock.Any(), gomock.Nil()).DoAndReturn(
			func(int, int64, *fec.Interleaver) (fec.Encoder, error) { return fec.NewUncoded(8, 1) }),
		c.EXPECT().BuildDecoders(3, gomock.Not(gomock.Nil())).DoAndReturn(
			func(_ int, itl *fec.Interleaver) (codec.Decoders, error) {
				decodersSawInterleaver = itl.Ready()
				d, err := fec.NewUncoded(8, 1)
				return codec.NewShared(d), err
			}),
	)
	p := noiselessParams()
	p.Interleaver = fec.InterleaverParams{Kind: fec.InterleaverRandom}
	l, err := Build(p, c, 3, nil)
	require.NoError(t, err)
	defer l.Release()
	assert.True(t, decodersSawInterleaver)
	assert.Equal(t, fec.InterleaverRandom, l.Interleaver().Kind())

	res, err := l.RunFrame()
	require.NoError(t, err)
	assert.Equal(t, Result{Frames: 1}, res)
}

func TestMissingHardDecoderReleasesSoft(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mockCodec(ctrl, 8, 8)
	soft := mocks.NewMockSoftHardDecoder(ctrl)
	soft.EXPECT().Release().Times(1)
	c.EXPECT().BuildEncoder(0, gomock.Any(), gomock.Any()).DoAndReturn(
		func(int, int64, *fec.Interleaver) (fec.Encoder, error) { return fec.NewUncoded(8, 1) })
	c.EXPECT().BuildDecoders(0, gomock.Any()).Return(codec.NewDistinct(soft, nil), nil)

	l, err := Build(noiselessParams(), c, 0, nil)
	require.ErrorIs(t, err, fec.ErrInvariantViolation)
	assert.Nil(t, l)
}

func TestEncoderErrorsAreWrapped(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mockCodec(ctrl, 8, 8)
	boom := errors.New("boom")
	c.EXPECT().BuildEncoder(0, gomock.Any(), gomock.Any()).Return(nil, boom)

	_, err := Build(noiselessParams(), c, 0, nil)
	require.ErrorIs(t, err, boom)

	c2 := mockCodec(ctrl, 8, 8)
	c2.EXPECT().BuildEncoder(0, gomock.Any(), gomock.Any()).DoAndReturn(
		func(int, int64, *fec.Interleaver) (fec.Encoder, error) { return fec.NewUncoded(4, 1) })
	_, err = Build(noiselessParams(), c2, 0, nil)
	require.ErrorIs(t, err, fec.ErrInvalidLength)
}

func TestFallbackEncoder(t *testing.T) {
	for _, fallback := range []string{"coset", "azcw"} {
		t.Run(fallback, func(t *testing.T) {
			c, err := codec.NewRepetition(codec.RepetitionParams{K: 8, N: 24, Permuted: true})
			require.NoError(t, err)
			var buf bytes.Buffer
			p := noiselessParams()
			p.Fallback = fallback
			p.Interleaver = fec.InterleaverParams{Kind: fec.InterleaverRandom}
			p.Logger = log.New(&buf, "", 0)

			l, err := Build(p, c, 0, nil)
			require.NoError(t, err)
			defer l.Release()
			assert.True(t, l.UsesFallbackEncoder())
			assert.True(t, strings.Contains(buf.String(), "[warn] lane 0: repetition encoder unavailable"), buf.String())

			for i := 0; i < 4; i++ {
				res, err := l.RunFrame()
				require.NoError(t, err)
				assert.Equal(t, 0, res.BitErrors)
			}
		})
	}
}

func TestUniformInterleaverRefreshedByMonitor(t *testing.T) {
	c, err := codec.NewUncoded(16, 1)
	require.NoError(t, err)
	var buf bytes.Buffer
	p := noiselessParams()
	p.Interleaver = fec.InterleaverParams{Kind: fec.InterleaverUniform}
	p.Logger = log.New(&buf, "", 0)
	mon := sim.NewMonitor()

	l, err := Build(p, c, 0, mon)
	require.NoError(t, err)
	defer l.Release()
	assert.Contains(t, buf.String(), "[info]")

	before := l.Interleaver().Perm()
	mon.Check()
	assert.NotEqual(t, before, l.Interleaver().Perm())

	res, err := l.RunFrame()
	require.NoError(t, err)
	assert.Equal(t, 0, res.BitErrors)
	frames, _, _ := mon.Counts()
	assert.Equal(t, 1, frames)
}

func TestLaneSeeds(t *testing.T) {
	assert.Equal(t, laneSeeds(7, 2), laneSeeds(7, 2))
	assert.NotEqual(t, laneSeeds(7, 2), laneSeeds(7, 3))
	// lane id and global seed are summed
	assert.Equal(t, laneSeeds(7, 2), laneSeeds(8, 1))

	c, err := codec.NewUncoded(64, 1)
	require.NoError(t, err)
	p := Params{Seed: 11, Channel: sim.ChannelParams{Kind: sim.ChannelAWGN, Sigma: 1}}
	run := func() Result {
		l, err := Build(p, c, 0, nil)
		require.NoError(t, err)
		defer l.Release()
		var total Result
		for i := 0; i < 5; i++ {
			res, err := l.RunFrame()
			require.NoError(t, err)
			total.Frames += res.Frames
			total.BitErrors += res.BitErrors
		}
		return total
	}
	first := run()
	assert.Equal(t, first, run())
	assert.Greater(t, first.BitErrors, 0)
}

func TestCRCFailuresAreCounted(t *testing.T) {
	c, err := codec.NewUncoded(64, 2)
	require.NoError(t, err)
	p := noiselessParams()
	p.CRC = sim.CRC32
	l, err := Build(p, c, 0, nil)
	require.NoError(t, err)
	defer l.Release()
	res, err := l.RunFrame()
	require.NoError(t, err)
	assert.Equal(t, Result{Frames: 2}, res)

	p.Channel = sim.ChannelParams{Kind: sim.ChannelAWGN, Sigma: 3}
	noisy, err := Build(p, c, 0, nil)
	require.NoError(t, err)
	defer noisy.Release()
	res, err = noisy.RunFrame()
	require.NoError(t, err)
	assert.Greater(t, res.CRCFailures, 0)
}

func TestAZCWLaneCRC(t *testing.T) {
	c, err := codec.NewRepetition(codec.RepetitionParams{K: 40, N: 120, Permuted: true})
	require.NoError(t, err)
	p := noiselessParams()
	p.CRC = sim.CRC32
	p.Fallback = "azcw"
	p.Interleaver = fec.InterleaverParams{Kind: fec.InterleaverRandom}
	l, err := Build(p, c, 0, nil)
	require.NoError(t, err)
	defer l.Release()
	require.True(t, l.UsesFallbackEncoder())

	for i := 0; i < 3; i++ {
		res, err := l.RunFrame()
		require.NoError(t, err)
		assert.Equal(t, Result{Frames: 1}, res)
	}
}

func TestInterleaverSeedAcrossLanes(t *testing.T) {
	c, err := codec.NewUncoded(16, 1)
	require.NoError(t, err)
	perms := func(kind fec.InterleaverKind) (a, b []int) {
		p := noiselessParams()
		p.Interleaver = fec.InterleaverParams{Kind: kind, Seed: 42}
		l0, err := Build(p, c, 0, nil)
		require.NoError(t, err)
		defer l0.Release()
		l1, err := Build(p, c, 1, nil)
		require.NoError(t, err)
		defer l1.Release()
		return l0.Interleaver().Perm(), l1.Interleaver().Perm()
	}

	a, b := perms(fec.InterleaverRandom)
	assert.Equal(t, a, b)
	other, err := fec.NewInterleaver(fec.InterleaverParams{Kind: fec.InterleaverRandom}, 16, 42)
	require.NoError(t, err)
	require.NoError(t, other.Init())
	assert.Equal(t, other.Perm(), a)

	a, b = perms(fec.InterleaverUniform)
	assert.NotEqual(t, a, b)
}

func TestParamsFromYAML(t *testing.T) {
	const doc = `
lanes: 2
seed: 7
iterations: 3
coset: true
crc: crc32
modem:
  type: gsm
  tailless: true
channel:
  type: awgn
  sigma: 0.5
interleaver:
  type: slope
  rows: 4
  seed: 9
`
	var p Params
	require.NoError(t, yaml.Unmarshal([]byte(doc), &p))
	p.setDefaults()
	require.NoError(t, p.Validate())
	assert.Equal(t, 2, p.Lanes)
	assert.Equal(t, int64(7), p.Seed)
	assert.Equal(t, "gsm", p.Modem.Kind)
	assert.True(t, p.Modem.Tailless)
	assert.Equal(t, 0.5, p.Modem.Sigma)
	assert.Equal(t, sim.CRC32, p.CRC)
	assert.Equal(t, fec.InterleaverSlope, p.Interleaver.Kind)
	assert.Equal(t, 4, p.Interleaver.Rows)
	assert.Equal(t, int64(9), p.Interleaver.Seed)
	assert.Equal(t, "coset", p.Fallback)

	bad := Params{Fallback: "zeros"}
	require.Error(t, bad.Validate())
	bad = Params{Modem: ModemParams{Kind: "qam"}}
	require.Error(t, bad.Validate())
}

func TestPool(t *testing.T) {
	c, err := codec.NewUncoded(32, 1)
	require.NoError(t, err)
	mon := sim.NewMonitor()
	p := Params{Lanes: 3, Seed: 5, Channel: sim.ChannelParams{Kind: sim.ChannelAWGN, Sigma: 0.7}}
	pool, err := NewPool(context.Background(), p, c, func(int) Monitor { return mon })
	require.NoError(t, err)
	defer pool.Release()
	require.Len(t, pool.Lanes(), 3)

	var runs atomic.Int32
	err = pool.Run(context.Background(), func(ctx context.Context, l *Lane) error {
		for i := 0; i < 4; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			if _, err := l.RunFrame(); err != nil {
				return err
			}
			runs.Add(1)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int32(12), runs.Load())
	frames, _, _ := mon.Counts()
	assert.Equal(t, 12, frames)
	assert.Equal(t, 12, pool.Timings().Calls)

	boom := errors.New("boom")
	err = pool.Run(context.Background(), func(ctx context.Context, l *Lane) error {
		if l.ID == 1 {
			return boom
		}
		<-ctx.Done()
		return nil
	})
	require.ErrorIs(t, err, boom)

	_, err = NewPool(context.Background(), Params{Lanes: 2, Modem: ModemParams{Kind: "qam"}}, c, nil)
	require.Error(t, err)
}
