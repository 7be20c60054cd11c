package sim

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"

	"github.com/Observe-l/fecsim/fec"
)

// CRCKind selects the integrity check appended to each frame.
type CRCKind string

const (
	CRCNone CRCKind = "none"
	CRC32   CRCKind = "crc32"
)

// CRC appends a checksum of the first K-Size() bits of a frame to its end.
type CRC struct {
	kind      CRCKind
	k, frames int
}

// NewCRC builds a check over frames of K bits, checksum included.
func NewCRC(kind CRCKind, K, frames int) (*CRC, error) {
	if kind == "" {
		kind = CRCNone
	}
	c := &CRC{kind: kind, k: K, frames: frames}
	switch kind {
	case CRCNone, CRC32:
	default:
		return nil, fmt.Errorf("crc: unknown type %q", kind)
	}
	if K <= c.Size() || frames < 1 {
		return nil, fmt.Errorf("crc: K=%d leaves no room for data: %w", K, fec.ErrInvalidLength)
	}
	return c, nil
}

// Size returns the number of checksum bits.
func (c *CRC) Size() int { return CRCSize(c.kind) }

// CRCSize returns the number of checksum bits appended by kind.
func CRCSize(kind CRCKind) int {
	if kind == CRC32 {
		return 32
	}
	return 0
}

func (c *CRC) sum(data []uint8) uint32 {
	packed := make([]byte, (len(data)+7)/8)
	for i, b := range data {
		packed[i/8] |= (b & 1) << (i % 8)
	}
	return crc32.ChecksumIEEE(packed)
}

// Build copies the K-Size() data bits of each frame of in to out and
// appends their checksum, most significant bit first.
func (c *CRC) Build(in, out []uint8) error {
	data := c.k - c.Size()
	if len(in) != data*c.frames || len(out) != c.k*c.frames {
		return fmt.Errorf("crc: got %d/%d values, want %d/%d: %w", len(in), len(out), data*c.frames, c.k*c.frames, fec.ErrShapeMismatch)
	}
	var word [4]byte
	for f := 0; f < c.frames; f++ {
		src, dst := in[f*data:(f+1)*data], out[f*c.k:(f+1)*c.k]
		copy(dst, src)
		if c.Size() == 0 {
			continue
		}
		binary.BigEndian.PutUint32(word[:], c.sum(src))
		for i := 0; i < 32; i++ {
			dst[data+i] = (word[i/8] >> (7 - i%8)) & 1
		}
	}
	return nil
}

// Check reports whether frame f of v (K bits per frame) carries a valid
// checksum. It is always true without a checksum.
func (c *CRC) Check(v []uint8, f int) bool {
	if c.Size() == 0 {
		return true
	}
	data := c.k - c.Size()
	frame := v[f*c.k : (f+1)*c.k]
	var word [4]byte
	binary.BigEndian.PutUint32(word[:], c.sum(frame[:data]))
	for i := 0; i < 32; i++ {
		if frame[data+i] != (word[i/8]>>(7-i%8))&1 {
			return false
		}
	}
	return true
}
