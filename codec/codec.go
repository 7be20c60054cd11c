// Package codec groups the code families a lane can be built with. A Codec
// builds matched encoder and decoder instances for one lane; the decoders
// come back as a tagged pair stating whether the soft and hard roles are
// served by one instance or by two.
package codec

import "github.com/Observe-l/fecsim/fec"

//go:generate mockgen -destination=../internal/mocks/codec.go -package=mocks github.com/Observe-l/fecsim/codec Codec
//go:generate mockgen -destination=../internal/mocks/decoder.go -package=mocks github.com/Observe-l/fecsim/fec SoftHardDecoder

// Codec is a code family with fixed parameters. Implementations hold only
// read-only state (frozen masks, geometry) and can serve every lane.
type Codec interface {
	Name() string
	K() int
	N() int
	Frames() int
	// BuildEncoder returns an error wrapping fec.ErrCannotAllocate when the
	// native encoder cannot be built, e.g. because it needs an interleaver
	// that is not available yet.
	BuildEncoder(lane int, seed int64, itl *fec.Interleaver) (fec.Encoder, error)
	BuildDecoders(lane int, itl *fec.Interleaver) (Decoders, error)
}

// DecoderKind tells how the soft and hard roles of a Decoders pair relate.
type DecoderKind int

const (
	// Distinct roles are served by two instances; the soft one may be nil
	// when the family has no SISO decoder.
	Distinct DecoderKind = iota + 1
	// Shared roles are served by one instance.
	Shared
)

func (k DecoderKind) String() string {
	switch k {
	case Distinct:
		return "distinct"
	case Shared:
		return "shared"
	}
	return "none"
}

// Decoders is the decoder side of a lane.
type Decoders struct {
	kind DecoderKind
	soft fec.SISO
	hard fec.Decoder
}

// NewDistinct pairs two separate instances.
func NewDistinct(soft fec.SISO, hard fec.Decoder) Decoders {
	return Decoders{kind: Distinct, soft: soft, hard: hard}
}

// NewShared exposes one instance through both roles.
func NewShared(d fec.SoftHardDecoder) Decoders {
	return Decoders{kind: Shared, soft: d, hard: d}
}

func (d Decoders) Kind() DecoderKind { return d.kind }
func (d Decoders) SISO() fec.SISO    { return d.soft }
func (d Decoders) SIHO() fec.Decoder { return d.hard }

// Release releases every underlying instance once and empties the pair, so
// calling it again does nothing.
func (d *Decoders) Release() {
	switch d.kind {
	case Shared:
		if d.hard != nil {
			d.hard.Release()
		}
	case Distinct:
		if d.soft != nil {
			d.soft.Release()
		}
		if d.hard != nil {
			d.hard.Release()
		}
	}
	*d = Decoders{}
}
