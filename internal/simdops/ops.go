// Package simdops provides the span backends the convolution loops are written against.
//
// A backend applies one step of the accumulation order to a whole span of
// float32 values: scale, add, subtract, and a fused multiply-add with a
// broadcast coefficient. Border handling and ring-buffer scheduling are
// written once against Backend; the backend only decides how the span is
// walked (one value at a time, or SIMD registers from github.com/tphakala/simd).
//
// Every backend must produce bit-identical results: products and sums are
// rounded to float32 exactly once, and MulAdd rounds a*s+dst once (see FMA32).
package simdops

import "math"

// Backend is a float32 span instruction set.
//
// Every operation processes exactly len(dst) elements and never reads or
// writes past them; the source slices must be at least that long. dst must not
// overlap the sources unless stated.
type Backend interface {
	// Name identifies the backend in diagnostics.
	Name() string

	// Lanes returns the register width in float32 elements. The narrow
	// interior of the row pass is cut to a multiple of it.
	Lanes() int

	// Scale sets dst[i] = src[i] * s.
	Scale(dst, src []float32, s float32)

	// Add sets dst[i] = a[i] + b[i].
	Add(dst, a, b []float32)

	// Sub sets dst[i] = a[i] - b[i].
	Sub(dst, a, b []float32)

	// MulAdd sets dst[i] = a[i]*s + dst[i] with a single rounding.
	MulAdd(dst, a []float32, s float32)
}

// Kind selects a backend implementation.
type Kind int

const (
	// KindSIMD uses the assembly kernels of github.com/tphakala/simd when the
	// CPU has a fused multiply-add path.
	KindSIMD Kind = iota

	// KindScalar processes one float32 at a time. It is the reference for the
	// SIMD path and the fallback on CPUs without fused multiply-add.
	KindScalar
)

// String returns the backend name for the kind.
func (k Kind) String() string {
	switch k {
	case KindSIMD:
		return simdName
	case KindScalar:
		return scalarName
	default:
		return "unknown"
	}
}

// FMA32 returns a*b+c rounded once to float32.
//
// The product of two float32 values is exact in float64, so this matches a
// hardware single-precision fused multiply-add.
func FMA32(a, b, c float32) float32 {
	return float32(math.FMA(float64(a), float64(b), float64(c)))
}

// New returns the backend for kind. ok is false when the SIMD backend was
// requested but this CPU cannot run it; the scalar backend is returned instead.
func New(kind Kind) (b Backend, ok bool) {
	if kind == KindSIMD {
		if s, ok := NewSIMD(); ok {
			return s, true
		}
		return NewScalar(), false
	}
	return NewScalar(), true
}
