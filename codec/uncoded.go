package codec

import "github.com/Observe-l/fecsim/fec"

// Uncoded transmits the information bits as they are.
type Uncoded struct {
	k, frames int
}

func NewUncoded(K, frames int) (*Uncoded, error) {
	if frames <= 0 {
		frames = 1
	}
	// validate once
	if _, err := fec.NewUncoded(K, frames); err != nil {
		return nil, err
	}
	return &Uncoded{k: K, frames: frames}, nil
}

func (c *Uncoded) Name() string { return "uncoded" }
func (c *Uncoded) K() int       { return c.k }
func (c *Uncoded) N() int       { return c.k }
func (c *Uncoded) Frames() int  { return c.frames }

func (c *Uncoded) BuildEncoder(_ int, _ int64, _ *fec.Interleaver) (fec.Encoder, error) {
	return fec.NewUncoded(c.k, c.frames)
}

func (c *Uncoded) BuildDecoders(_ int, _ *fec.Interleaver) (Decoders, error) {
	d, err := fec.NewUncoded(c.k, c.frames)
	if err != nil {
		return Decoders{}, err
	}
	return NewShared(d), nil
}
