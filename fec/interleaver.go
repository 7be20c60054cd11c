package fec

import (
	"errors"
	"fmt"
	"math/rand"
)

// InterleaverKind selects how the permutation is drawn.
type InterleaverKind string

const (
	InterleaverNone    InterleaverKind = "none"
	InterleaverRandom  InterleaverKind = "random"  // drawn once from the seed
	InterleaverUniform InterleaverKind = "uniform" // redrawn on every Refresh
	InterleaverSlope   InterleaverKind = "slope"
)

// InterleaverParams configures an Interleaver.
//
// The slope mapping views a frame of size M as Rows rows of M/Rows values:
//
//	q = s + Rows*j        (value j of row s)
//	t = (Offset + Step*q) mod M
//	out[t] = in[s*(M/Rows) + j]
//
// Step must be coprime with M; 0 picks M-1. Seed fixes the permutation of
// a random interleaver, which is part of the code and the same in every
// lane. Uniform interleavers are seeded per lane instead.
type InterleaverParams struct {
	Kind   InterleaverKind `json:"type" yaml:"type"`
	Rows   int             `json:"rows,omitempty" yaml:"rows,omitempty"`
	Step   int             `json:"step,omitempty" yaml:"step,omitempty"`
	Offset int             `json:"offset,omitempty" yaml:"offset,omitempty"`
	Seed   int64           `json:"seed,omitempty" yaml:"seed,omitempty"`
}

func (p *InterleaverParams) setDefaults() {
	if p.Kind == "" {
		p.Kind = InterleaverNone
	}
	if p.Kind == InterleaverSlope && p.Rows <= 0 {
		p.Rows = 1
	}
}

// Validate checks the kind and the slope geometry for a given frame size.
func (p InterleaverParams) Validate(size int) error {
	p.setDefaults()
	switch p.Kind {
	case InterleaverNone, InterleaverRandom, InterleaverUniform:
	case InterleaverSlope:
		if size%p.Rows != 0 {
			return fmt.Errorf("interleaver: %d rows do not divide size %d: %w", p.Rows, size, ErrInvalidLength)
		}
		step := p.Step
		if step == 0 {
			step = size - 1
		}
		if gcd(step, size) != 1 {
			return fmt.Errorf("interleaver: step (%d) must be coprime with M=%d", step, size)
		}
	default:
		return fmt.Errorf("interleaver: unknown type %q", p.Kind)
	}
	return nil
}

// Interleaver permutes frames of a fixed size: out[i] = in[pi[i]]. The
// permutation is only valid after Init.
type Interleaver struct {
	p    InterleaverParams
	size int
	seed int64
	rng  *rand.Rand
	pi   []int
	inv  []int
}

var errNotInitialized = errors.New("interleaver: not initialized")

// NewInterleaver validates p. Call Init before use.
func NewInterleaver(p InterleaverParams, size int, seed int64) (*Interleaver, error) {
	if size <= 0 {
		return nil, fmt.Errorf("interleaver: size %d: %w", size, ErrInvalidLength)
	}
	p.setDefaults()
	if err := p.Validate(size); err != nil {
		return nil, err
	}
	return &Interleaver{p: p, size: size, seed: seed}, nil
}

func (it *Interleaver) Kind() InterleaverKind { return it.p.Kind }
func (it *Interleaver) Size() int             { return it.size }
func (it *Interleaver) Ready() bool           { return it.pi != nil }

// IsUniform reports whether Refresh draws new permutations.
func (it *Interleaver) IsUniform() bool { return it.p.Kind == InterleaverUniform }

// Init computes the permutation. Re-running Init restarts the seeded
// sequence, so a random interleaver always yields the same permutation.
func (it *Interleaver) Init() error {
	it.rng = rand.New(rand.NewSource(it.seed))
	switch it.p.Kind {
	case InterleaverNone:
		it.pi = make([]int, it.size)
		for i := range it.pi {
			it.pi[i] = i
		}
	case InterleaverRandom, InterleaverUniform:
		it.pi = it.rng.Perm(it.size)
	case InterleaverSlope:
		pi, err := slopePerm(it.size, it.p.Rows, it.p.Offset, it.p.Step)
		if err != nil {
			return err
		}
		it.pi = pi
	}
	it.inv = invertMap(it.pi)
	return nil
}

// Refresh draws the next permutation of a uniform interleaver; other kinds
// are left unchanged.
func (it *Interleaver) Refresh() {
	if !it.IsUniform() || it.rng == nil {
		return
	}
	it.pi = it.rng.Perm(it.size)
	it.inv = invertMap(it.pi)
}

// Perm returns a copy of the current permutation.
func (it *Interleaver) Perm() []int { return append([]int(nil), it.pi...) }

// Interleave permutes every frame of in into out. A nil interleaver copies.
func Interleave[T any](it *Interleaver, in, out []T) error {
	if it == nil {
		return copyFrames(in, out)
	}
	if it.pi == nil {
		return errNotInitialized
	}
	return permute(in, out, it.pi, it.size)
}

// Deinterleave undoes Interleave.
func Deinterleave[T any](it *Interleaver, in, out []T) error {
	if it == nil {
		return copyFrames(in, out)
	}
	if it.inv == nil {
		return errNotInitialized
	}
	return permute(in, out, it.inv, it.size)
}

func copyFrames[T any](in, out []T) error {
	if err := checkShape("interleaver output", len(out), len(in)); err != nil {
		return err
	}
	copy(out, in)
	return nil
}

func permute[T any](in, out []T, table []int, size int) error {
	if len(in)%size != 0 {
		return fmt.Errorf("interleaver: %d values is not a whole number of frames of %d: %w", len(in), size, ErrShapeMismatch)
	}
	if err := checkShape("interleaver output", len(out), len(in)); err != nil {
		return err
	}
	for f := 0; f < len(in); f += size {
		src, dst := in[f:f+size], out[f:f+size]
		for i, j := range table {
			dst[i] = src[j]
		}
	}
	return nil
}

func slopePerm(M, rows, offset, step int) ([]int, error) {
	if step == 0 {
		step = M - 1
	}
	if gcd(step, M) != 1 {
		return nil, fmt.Errorf("interleaver: step (%d) must be coprime with M=%d", step, M)
	}
	inv, ok := modInverse(step, M)
	if !ok {
		return nil, fmt.Errorf("interleaver: no modular inverse for step=%d mod M=%d", step, M)
	}
	cols := M / rows
	pi := make([]int, M)
	for t := 0; t < M; t++ {
		tp := (t - offset) % M
		if tp < 0 {
			tp += M
		}
		q := (inv * tp) % M
		s, j := q%rows, q/rows
		pi[t] = s*cols + j
	}
	return pi, nil
}

func invertMap(forward []int) []int {
	inv := make([]int, len(forward))
	for i, v := range forward {
		inv[v] = i
	}
	return inv
}

func gcd(a, b int) int {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// modInverse computes x such that (a*x) % m == 1, if it exists.
func modInverse(a, m int) (int, bool) {
	t, newT := 0, 1
	r, newR := m, a%m
	for newR != 0 {
		q := r / newR
		t, newT = newT, t-q*newT
		r, newR = newR, r-q*newR
	}
	if r != 1 {
		return 0, false
	}
	if t < 0 {
		t += m
	}
	return t, true
}
