// Package lane composes the modules of one execution lane around a code
// family and runs frames through them. Lanes share no mutable state; a
// Pool builds and drives several of them in parallel.
package lane

import (
	"errors"
	"fmt"
	"log"
	"math/rand"

	"github.com/Observe-l/fecsim/codec"
	"github.com/Observe-l/fecsim/fec"
	"github.com/Observe-l/fecsim/internal/sim"
	"github.com/Observe-l/fecsim/modem"
)

// Monitor receives frame outcomes and the check handlers of lane modules.
// *sim.Monitor implements it.
type Monitor interface {
	AddCheckHandler(fn func())
	Record(frames, frameErrors, bitErrors int)
}

type releaser interface {
	Release()
}

// Result is the outcome of one RunFrame call.
type Result struct {
	Frames      int
	FrameErrors int
	BitErrors   int
	CRCFailures int
}

// seeds are drawn in this order from the lane generator.
type seeds struct {
	src, enc, chn, itl int64
}

func laneSeeds(global int64, id int) seeds {
	rng := rand.New(rand.NewSource(global + int64(id)))
	return seeds{src: rng.Int63(), enc: rng.Int63(), chn: rng.Int63(), itl: rng.Int63()}
}

// Lane owns one instance of every module of the chain.
type Lane struct {
	ID int

	p       Params
	codec   codec.Codec
	log     *log.Logger
	monitor Monitor

	source   *sim.Source
	crc      *sim.CRC
	encoder  fec.Encoder
	fallback bool
	azcw     bool
	modem    modem.Modem
	channel  sim.Channel
	quant    *sim.Quantizer
	itl      *fec.Interleaver
	coset    bool
	decoders codec.Decoders

	timings fec.StageTotals
	hook    fec.StageHook

	src, u, x, xi, v, ref []uint8
	s, y, q               []float64
	li, lc, prior, ext    []float64

	released bool
}

// Build creates the modules of lane id in chain order: source, CRC,
// encoder, modem, channel, quantizer, interleaver, coset, soft decoder,
// hard decoder. If the codec cannot build its encoder yet, the generic
// encoder named by p.Fallback is used instead. A uniform interleaver
// registers its Refresh with mon. On error every module built so far is
// released.
func Build(p Params, c codec.Codec, id int, mon Monitor) (l *Lane, err error) {
	p.setDefaults()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	K, N, F := c.K(), c.N(), c.Frames()
	sd := laneSeeds(p.Seed, id)
	l = &Lane{ID: id, p: p, codec: c, log: p.Logger, monitor: mon, coset: p.Coset}
	defer func() {
		if err != nil {
			l.Release()
			l = nil
		}
	}()

	data := K - sim.CRCSize(p.CRC)
	if l.source, err = sim.NewSource(p.Source, data, F, sd.src); err != nil {
		return l, err
	}
	if l.crc, err = sim.NewCRC(p.CRC, K, F); err != nil {
		return l, err
	}
	if err = l.buildEncoder(sd.enc); err != nil {
		return l, err
	}
	if l.modem, err = newModem(p.Modem, N, F); err != nil {
		return l, err
	}
	if l.channel, err = sim.NewChannel(p.Channel, sd.chn); err != nil {
		return l, err
	}
	if l.quant, err = sim.NewQuantizer(p.Quantizer); err != nil {
		return l, err
	}
	if err = l.buildInterleaver(N, sd.itl); err != nil {
		return l, err
	}
	if l.decoders, err = c.BuildDecoders(id, l.itl); err != nil {
		return l, fmt.Errorf("lane %d: %s decoders: %w", id, c.Name(), err)
	}
	if l.decoders.SIHO() == nil {
		return l, fmt.Errorf("lane %d: %s codec has no hard decoder: %w", id, c.Name(), fec.ErrInvariantViolation)
	}

	M := l.modem.ModulatedSize()
	l.src = make([]uint8, data*F)
	l.u = make([]uint8, K*F)
	l.x = make([]uint8, N*F)
	l.xi = make([]uint8, N*F)
	l.v = make([]uint8, K*F)
	l.ref = make([]uint8, K*F)
	l.s = make([]float64, M*F)
	l.y = make([]float64, M*F)
	l.q = make([]float64, M*F)
	l.li = make([]float64, N*F)
	l.lc = make([]float64, N*F)
	l.prior = make([]float64, N*F)
	l.ext = make([]float64, N*F)

	l.hook = fec.StageHooks(&l.timings, p.Metrics.For(c.Name()))
	return l, nil
}

func (l *Lane) buildEncoder(seed int64) error {
	c := l.codec
	enc, err := c.BuildEncoder(l.ID, seed, l.itl)
	if errors.Is(err, fec.ErrCannotAllocate) {
		l.log.Printf("[warn] lane %d: %s encoder unavailable (%v), using %s encoder", l.ID, c.Name(), err, l.p.Fallback)
		l.fallback = true
		switch l.p.Fallback {
		case "azcw":
			l.azcw = true
			enc, err = fec.NewAZCWEncoder(c.K(), c.N(), c.Frames())
		default:
			l.coset = true
			enc, err = fec.NewCosetEncoder(c.K(), c.N(), c.Frames(), seed)
		}
	}
	if err != nil {
		return fmt.Errorf("lane %d: %s encoder: %w", l.ID, c.Name(), err)
	}
	if enc.K() != c.K() || enc.N() != c.N() {
		return fmt.Errorf("lane %d: encoder is (%d,%d), codec is (%d,%d): %w",
			l.ID, enc.N(), enc.K(), c.N(), c.K(), fec.ErrInvalidLength)
	}
	l.encoder = enc
	return nil
}

// buildInterleaver seeds a uniform interleaver with the lane seed; every
// other kind uses the configured seed so all lanes share one permutation.
func (l *Lane) buildInterleaver(N int, laneSeed int64) error {
	seed := l.p.Interleaver.Seed
	if l.p.Interleaver.Kind == fec.InterleaverUniform {
		seed = laneSeed
	}
	itl, err := fec.NewInterleaver(l.p.Interleaver, N, seed)
	if err != nil {
		return err
	}
	if err := itl.Init(); err != nil {
		return err
	}
	l.itl = itl
	if itl.IsUniform() && l.monitor != nil {
		l.monitor.AddCheckHandler(itl.Refresh)
		l.log.Printf("[info] lane %d: uniform interleaver refreshed on monitor checks", l.ID)
	}
	return nil
}

func newModem(p ModemParams, N, frames int) (modem.Modem, error) {
	switch p.Kind {
	case "gsm":
		return modem.NewGSM(N, frames, modem.GSMParams{Sigma: p.Sigma, Tailless: p.Tailless, MaxLog: p.MaxLog})
	default:
		return modem.NewBPSK(N, frames, p.Sigma)
	}
}

// UsesFallbackEncoder reports whether the generic encoder replaced the
// codec's own.
func (l *Lane) UsesFallbackEncoder() bool { return l.fallback }

// Decoders returns the decoder pair of the lane.
func (l *Lane) Decoders() codec.Decoders { return l.decoders }

// Interleaver returns the lane interleaver.
func (l *Lane) Interleaver() *fec.Interleaver { return l.itl }

// Timings returns the accumulated decoder stage durations.
func (l *Lane) Timings() fec.StageTotals { return l.timings.Snapshot() }

// Release releases every module once. Further calls do nothing.
func (l *Lane) Release() {
	if l == nil || l.released {
		return
	}
	l.released = true
	l.decoders.Release()
	for _, m := range []any{l.encoder, l.modem} {
		if r, ok := m.(releaser); ok {
			r.Release()
		}
	}
	l.source, l.crc, l.encoder, l.modem, l.channel, l.quant, l.itl = nil, nil, nil, nil, nil, nil, nil
}
