package lane_test

import (
	"context"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/Observe-l/fecsim/codec"
	"github.com/Observe-l/fecsim/fec"
	"github.com/Observe-l/fecsim/internal/sim"
	"github.com/Observe-l/fecsim/lane"
)

// runPool drives every lane for trials frames and returns the totals.
func runPool(t *testing.T, p lane.Params, c codec.Codec, trials int) lane.Result {
	t.Helper()
	mon := sim.NewMonitor()
	pool, err := lane.NewPool(context.Background(), p, c, func(int) lane.Monitor { return mon })
	if err != nil {
		t.Fatalf("build pool: %v", err)
	}
	defer pool.Release()

	var (
		mu    sync.Mutex
		total lane.Result
	)
	err = pool.Run(context.Background(), func(ctx context.Context, l *lane.Lane) error {
		for i := 0; i < trials; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := l.RunFrame()
			if err != nil {
				return err
			}
			mu.Lock()
			total.Frames += res.Frames
			total.FrameErrors += res.FrameErrors
			total.BitErrors += res.BitErrors
			total.CRCFailures += res.CRCFailures
			mu.Unlock()
		}
		return nil
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	// handlers touch lane state, so only between runs
	mon.Check()
	frames, frameErrors, bitErrors := mon.Counts()
	if frames != total.Frames || frameErrors != total.FrameErrors || bitErrors != total.BitErrors {
		t.Fatalf("monitor saw %d/%d/%d, lanes returned %+v", frames, frameErrors, bitErrors, total)
	}
	t.Logf("%s: frames=%d frame_errors=%d bit_errors=%d crc_failures=%d",
		c.Name(), total.Frames, total.FrameErrors, total.BitErrors, total.CRCFailures)
	return total
}

func TestPolarOverAWGN(t *testing.T) {
	c, err := codec.NewPolar(codec.PolarParams{K: 64, N: 128, Frames: 2})
	if err != nil {
		t.Fatal(err)
	}
	reg := prometheus.NewRegistry()
	hook, err := fec.NewPromStageHook(reg, "fecsim")
	if err != nil {
		t.Fatal(err)
	}
	p := lane.Params{
		Lanes:   4,
		Seed:    2024,
		CRC:     sim.CRC32,
		Channel: sim.ChannelParams{Kind: sim.ChannelAWGN, Sigma: 0.2},
		Metrics: hook,
	}
	res := runPool(t, p, c, 25)
	if res.Frames != 4*25*2 {
		t.Fatalf("frames = %d", res.Frames)
	}
	if res.FrameErrors != 0 || res.CRCFailures != 0 {
		t.Fatalf("unexpected errors at high SNR: %+v", res)
	}
	n, err := testutil.GatherAndCount(reg, "fecsim_decoder_stage_seconds")
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Fatalf("expected one series per stage, got %d", n)
	}
}

func TestPermutedRepetitionFallsBackToCoset(t *testing.T) {
	c, err := codec.NewRepetition(codec.RepetitionParams{K: 32, N: 96, Buffered: true, Permuted: true})
	if err != nil {
		t.Fatal(err)
	}
	p := lane.Params{
		Lanes:       2,
		Seed:        7,
		Channel:     sim.ChannelParams{Kind: sim.ChannelAWGN, Sigma: 0.5},
		Interleaver: fec.InterleaverParams{Kind: fec.InterleaverUniform},
	}
	res := runPool(t, p, c, 50)
	if ber := float64(res.BitErrors) / float64(res.Frames*32); ber > 0.01 {
		t.Fatalf("bit error rate %.4f too high for rate 1/3 repetition", ber)
	}
}

func TestGSMIterativePolar(t *testing.T) {
	c, err := codec.NewPolar(codec.PolarParams{K: 32, N: 64, ScanIterations: 2})
	if err != nil {
		t.Fatal(err)
	}
	p := lane.Params{
		Seed:        3,
		Iterations:  2,
		Modem:       lane.ModemParams{Kind: "gsm", Sigma: 0.3},
		Channel:     sim.ChannelParams{Kind: sim.ChannelNone},
		Interleaver: fec.InterleaverParams{Kind: fec.InterleaverRandom},
	}
	res := runPool(t, p, c, 10)
	if res.FrameErrors != 0 {
		t.Fatalf("noiseless GSM link lost frames: %+v", res)
	}
}

func TestRaptorQOverErasures(t *testing.T) {
	c, err := codec.NewRaptorQ(codec.RaptorQParams{K: 128, N: 384, SymbolSize: 4})
	if err != nil {
		t.Fatal(err)
	}
	p := lane.Params{
		Lanes:   2,
		Seed:    11,
		Channel: sim.ChannelParams{Kind: sim.ChannelErasure, ErasureProb: 0.005},
	}
	res := runPool(t, p, c, 20)
	if res.FrameErrors != 0 {
		t.Fatalf("raptorq failed to recover: %+v", res)
	}
}

func TestUncodedGSM(t *testing.T) {
	c, err := codec.NewUncoded(64, 1)
	if err != nil {
		t.Fatal(err)
	}
	p := lane.Params{
		Seed:    5,
		Modem:   lane.ModemParams{Kind: "gsm", MaxLog: true},
		Channel: sim.ChannelParams{Kind: sim.ChannelAWGN, Sigma: 0.3},
	}
	res := runPool(t, p, c, 20)
	if ber := float64(res.BitErrors) / float64(res.Frames*64); ber > 0.01 {
		t.Fatalf("bit error rate %.4f", ber)
	}
}
