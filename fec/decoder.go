package fec

import "time"

// Decoder is the soft-input hard-output role shared by every code family.
//
// Buffers are frame-major: Load takes N·Frames reliabilities and Store fills
// K·Frames bits. Positive reliabilities favour bit 0.
type Decoder interface {
	K() int
	N() int
	Frames() int
	// Load copies the observation into the decoder; nothing is decoded.
	Load(y []float64) error
	// Decode runs the recovery algorithm on the loaded state. Calling it
	// again without a new Load yields the same decisions.
	Decode()
	// Store writes the recovered information bits.
	Store(v []uint8) error
	Release()
}

// SISO is the soft-input soft-output role used in iterative exchanges.
// SoftDecode reads N·Frames a priori values and writes N·Frames extrinsic
// values.
type SISO interface {
	N() int
	Frames() int
	SoftDecode(in, ext []float64) error
	Release()
}

// SoftHardDecoder is a single instance serving both roles.
type SoftHardDecoder interface {
	Decoder
	SISO
}

// Encoder maps K·Frames information bits onto N·Frames codeword bits.
type Encoder interface {
	K() int
	N() int
	Frames() int
	Encode(u, x []uint8) error
}

// DecodeFrames runs Load, Decode and Store in sequence and reports the
// duration of each stage to hook. A nil hook disables timing.
func DecodeFrames(d Decoder, hook StageHook, y []float64, v []uint8) error {
	if hook == nil {
		if err := d.Load(y); err != nil {
			return err
		}
		d.Decode()
		return d.Store(v)
	}

	t0 := time.Now()
	if err := d.Load(y); err != nil {
		return err
	}
	t1 := time.Now()
	hook.ObserveStage(StageLoad, t1.Sub(t0))

	d.Decode()
	t2 := time.Now()
	hook.ObserveStage(StageDecode, t2.Sub(t1))

	err := d.Store(v)
	hook.ObserveStage(StageStore, time.Since(t2))
	return err
}
