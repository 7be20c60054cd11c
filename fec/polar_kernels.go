package fec

import "math"

// FFunc combines two reliabilities into the reliability of their XOR.
type FFunc func(a, b float64) float64

// GFunc combines two reliabilities given the already decided bit s of the
// first half.
type GFunc func(a, b float64, s uint8) float64

// HFunc maps a reliability to a hard decision.
type HFunc func(l float64) uint8

// PolarKernels groups the combine functions of the successive-cancellation
// tree. Zero fields take MinSum, GSum and HardDecision.
type PolarKernels struct {
	F FFunc
	G GFunc
	H HFunc
}

func (k *PolarKernels) setDefaults() {
	if k.F == nil {
		k.F = MinSum
	}
	if k.G == nil {
		k.G = GSum
	}
	if k.H == nil {
		k.H = HardDecision
	}
}

// MinSum is the sign-min approximation of the boxplus operator.
func MinSum(a, b float64) float64 {
	m := math.Min(math.Abs(a), math.Abs(b))
	if (a < 0) != (b < 0) {
		return -m
	}
	return m
}

// BoxPlus is the exact boxplus operator 2·atanh(tanh(a/2)·tanh(b/2)),
// computed as MinSum plus its correction terms. Infinite inputs reduce to
// MinSum.
func BoxPlus(a, b float64) float64 {
	if math.IsInf(a, 0) || math.IsInf(b, 0) {
		return MinSum(a, b)
	}
	return MinSum(a, b) + math.Log1p(math.Exp(-math.Abs(a+b))) - math.Log1p(math.Exp(-math.Abs(a-b)))
}

// GSum returns (1-2s)·a + b. Opposite infinities resolve to 0.
func GSum(a, b float64, s uint8) float64 {
	var r float64
	if s == 0 {
		r = b + a
	} else {
		r = b - a
	}
	if math.IsNaN(r) {
		return 0
	}
	return r
}

// HardDecision returns 1 for negative reliabilities and 0 otherwise, so a
// zero reliability decides 0.
func HardDecision(l float64) uint8 {
	if l < 0 {
		return 1
	}
	return 0
}
