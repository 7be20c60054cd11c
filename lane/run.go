package lane

import (
	"fmt"

	"github.com/Observe-l/fecsim/fec"
	"github.com/Observe-l/fecsim/internal/sim"
	"github.com/Observe-l/fecsim/modem"
)

// RunFrame pushes one batch of frames through the chain and counts the
// errors on the data bits. With Iterations > 0, a soft modem and a SISO
// decoder, the demodulator and the decoder first exchange extrinsic
// information that many times. The outcome is also recorded on the lane
// monitor.
func (l *Lane) RunFrame() (Result, error) {
	if l.released {
		return Result{}, fmt.Errorf("lane %d: released: %w", l.ID, fec.ErrInvariantViolation)
	}
	if err := l.transmit(); err != nil {
		return Result{}, fmt.Errorf("lane %d: %w", l.ID, err)
	}
	if err := l.receive(); err != nil {
		return Result{}, fmt.Errorf("lane %d: %w", l.ID, err)
	}
	res := l.count()
	if l.monitor != nil {
		l.monitor.Record(res.Frames, res.FrameErrors, res.BitErrors)
	}
	return res, nil
}

func (l *Lane) transmit() error {
	if err := l.source.Generate(l.src); err != nil {
		return err
	}
	if err := l.crc.Build(l.src, l.u); err != nil {
		return err
	}
	if err := l.encoder.Encode(l.u, l.x); err != nil {
		return err
	}
	if err := fec.Interleave(l.itl, l.x, l.xi); err != nil {
		return err
	}
	if err := l.modem.Modulate(l.xi, l.s); err != nil {
		return err
	}
	if err := l.channel.Add(l.s, l.y); err != nil {
		return err
	}
	return l.quant.Process(l.y, l.q)
}

// toCode brings demodulator output li back to code order in lc, seen
// through the coset when enabled.
func (l *Lane) toCode() error {
	if err := fec.Deinterleave(l.itl, l.li, l.lc); err != nil {
		return err
	}
	if l.coset {
		return sim.CosetReal(l.x, l.lc, l.lc)
	}
	return nil
}

func (l *Lane) receive() error {
	soft := l.decoders.SISO()
	sm, isSoft := l.modem.(modem.SoftModem)
	if l.p.Iterations > 0 && soft != nil && isSoft {
		for i := range l.prior {
			l.prior[i] = 0
		}
		for it := 0; it < l.p.Iterations; it++ {
			if err := sm.DemodulateWithPrior(l.q, l.prior, l.li); err != nil {
				return err
			}
			if err := l.toCode(); err != nil {
				return err
			}
			if err := soft.SoftDecode(l.lc, l.ext); err != nil {
				return err
			}
			if l.coset {
				if err := sim.CosetReal(l.x, l.ext, l.ext); err != nil {
					return err
				}
			}
			if err := fec.Interleave(l.itl, l.ext, l.prior); err != nil {
				return err
			}
		}
		if err := sm.DemodulateWithPrior(l.q, l.prior, l.li); err != nil {
			return err
		}
	} else if err := l.modem.Demodulate(l.q, l.li); err != nil {
		return err
	}
	if err := l.toCode(); err != nil {
		return err
	}

	if err := fec.DecodeFrames(l.decoders.SIHO(), l.hook, l.lc, l.v); err != nil {
		return err
	}
	if l.coset {
		return sim.CosetBit(l.u, l.v, l.v)
	}
	return nil
}

func (l *Lane) count() Result {
	K, F := l.codec.K(), l.codec.Frames()
	data := len(l.src) / F
	if !l.azcw {
		copy(l.ref, l.u)
	}
	res := Result{Frames: F}
	for f := 0; f < F; f++ {
		errs := 0
		for i := 0; i < data; i++ {
			if l.v[f*K+i] != l.ref[f*K+i] {
				errs++
			}
		}
		if errs > 0 {
			res.FrameErrors++
			res.BitErrors += errs
		}
		if !l.crcOK(f, data, K) {
			res.CRCFailures++
		}
	}
	return res
}

// crcOK checks the CRC of frame f. The all-zero codeword carries no valid
// checksum, so an azcw lane compares the CRC field with the reference.
func (l *Lane) crcOK(f, data, K int) bool {
	if !l.azcw {
		return l.crc.Check(l.v, f)
	}
	for i := f*K + data; i < (f+1)*K; i++ {
		if l.v[i] != l.ref[i] {
			return false
		}
	}
	return true
}
