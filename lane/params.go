package lane

import (
	"fmt"
	"io"
	"log"

	"github.com/Observe-l/fecsim/fec"
	"github.com/Observe-l/fecsim/internal/sim"
)

// ModemParams selects the modulation of a lane. A zero Sigma takes the
// channel's.
type ModemParams struct {
	Kind     string  `json:"type" yaml:"type"` // "bpsk" or "gsm"
	Sigma    float64 `json:"sigma,omitempty" yaml:"sigma,omitempty"`
	Tailless bool    `json:"tailless,omitempty" yaml:"tailless,omitempty"`
	MaxLog   bool    `json:"max_log,omitempty" yaml:"max_log,omitempty"`
}

// Params configures every lane of a run. The code itself comes from a
// codec.Codec given next to it.
type Params struct {
	Lanes int   `json:"lanes" yaml:"lanes"`
	Seed  int64 `json:"seed" yaml:"seed"`
	// Iterations of the demodulator/decoder exchange before the final hard
	// decoding; 0 disables the exchange.
	Iterations int  `json:"iterations,omitempty" yaml:"iterations,omitempty"`
	Coset      bool `json:"coset,omitempty" yaml:"coset,omitempty"`
	// Fallback is the generic encoder used when the codec cannot build its
	// own: "coset" (default) or "azcw".
	Fallback string `json:"fallback,omitempty" yaml:"fallback,omitempty"`

	Source      sim.SourceKind        `json:"source,omitempty" yaml:"source,omitempty"`
	CRC         sim.CRCKind           `json:"crc,omitempty" yaml:"crc,omitempty"`
	Modem       ModemParams           `json:"modem" yaml:"modem"`
	Channel     sim.ChannelParams     `json:"channel" yaml:"channel"`
	Quantizer   sim.QuantizerParams   `json:"quantizer,omitempty" yaml:"quantizer,omitempty"`
	Interleaver fec.InterleaverParams `json:"interleaver,omitempty" yaml:"interleaver,omitempty"`

	Logger  *log.Logger        `json:"-" yaml:"-"`
	Metrics *fec.PromStageHook `json:"-" yaml:"-"`
}

func (p *Params) setDefaults() {
	if p.Lanes <= 0 {
		p.Lanes = 1
	}
	if p.Fallback == "" {
		p.Fallback = "coset"
	}
	if p.Source == "" {
		p.Source = sim.SourceRandom
	}
	if p.CRC == "" {
		p.CRC = sim.CRCNone
	}
	if p.Modem.Kind == "" {
		p.Modem.Kind = "bpsk"
	}
	if p.Modem.Sigma == 0 {
		p.Modem.Sigma = p.Channel.Sigma
	}
	if p.Channel.Kind == "" {
		p.Channel.Kind = sim.ChannelAWGN
	}
	if p.Interleaver.Kind == "" {
		p.Interleaver.Kind = fec.InterleaverNone
	}
	if p.Logger == nil {
		p.Logger = log.New(io.Discard, "", 0)
	}
}

// Validate checks the fields that do not depend on the code.
func (p *Params) Validate() error {
	if p.Lanes < 0 {
		return fmt.Errorf("lane: %d lanes", p.Lanes)
	}
	if p.Iterations < 0 {
		return fmt.Errorf("lane: %d iterations", p.Iterations)
	}
	switch p.Fallback {
	case "", "coset", "azcw":
	default:
		return fmt.Errorf("lane: unknown fallback encoder %q", p.Fallback)
	}
	switch p.Modem.Kind {
	case "", "bpsk", "gsm":
	default:
		return fmt.Errorf("lane: unknown modem %q", p.Modem.Kind)
	}
	return nil
}
