// Package testutil provides reusable test helpers for the convolution packages.
package testutil

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tphakala/go-fastfilter/internal/simdops"
)

// Default tolerances for various test scenarios.
const (
	DefaultTolerance = 1e-6
	LooseTolerance   = 1e-4
)

// halfDivisor is used for finding center indices in symmetric arrays.
const halfDivisor = 2

// AssertBitExact verifies that two float32 slices are identical bit-for-bit.
func AssertBitExact(t *testing.T, expected, actual []float32, msgAndArgs ...any) bool {
	t.Helper()
	if !assert.Len(t, actual, len(expected), msgAndArgs...) {
		return false
	}
	for i := range expected {
		if math.Float32bits(expected[i]) != math.Float32bits(actual[i]) {
			return assert.Fail(t, "values differ",
				"index %d: expected %g (0x%08x), got %g (0x%08x)",
				i, expected[i], math.Float32bits(expected[i]), actual[i], math.Float32bits(actual[i]))
		}
	}
	return true
}

// AssertSlicesInDelta verifies that two float32 slices agree element-wise within tolerance.
func AssertSlicesInDelta(t *testing.T, expected, actual []float32, tolerance float64, msgAndArgs ...any) bool {
	t.Helper()
	if !assert.Len(t, actual, len(expected), msgAndArgs...) {
		return false
	}
	for i := range expected {
		if !assert.InDelta(t, expected[i], actual[i], tolerance, "index %d", i) {
			return false
		}
	}
	return true
}

// AssertSymmetric verifies that a slice is symmetric (s[i] == s[n-1-i]).
func AssertSymmetric(t *testing.T, s []float32, tolerance float64, msgAndArgs ...any) bool {
	t.Helper()
	n := len(s)
	for i := 0; i < n/halfDivisor; i++ {
		j := n - 1 - i
		if !assert.InDelta(t, s[i], s[j], tolerance,
			"slice not symmetric at i=%d: s[%d]=%f != s[%d]=%f", i, i, s[i], j, s[j]) {
			return false
		}
	}
	return true
}

// AssertNoNaNOrInf verifies that no elements in the slice are NaN or Inf.
func AssertNoNaNOrInf(t *testing.T, s []float32, msgAndArgs ...any) bool {
	t.Helper()
	for i, v := range s {
		f := float64(v)
		if math.IsNaN(f) {
			return assert.Fail(t, "found NaN", "s[%d] is NaN", i)
		}
		if math.IsInf(f, 0) {
			return assert.Fail(t, "found Inf", "s[%d] is Inf", i)
		}
	}
	return true
}

// AssertRelativeError verifies that the relative error between actual and expected is within tolerance.
func AssertRelativeError(t *testing.T, expected, actual, tolerance float64, msgAndArgs ...any) bool {
	t.Helper()
	if expected == 0 {
		return assert.InDelta(t, expected, actual, tolerance, msgAndArgs...)
	}
	relError := math.Abs(actual-expected) / math.Abs(expected)
	return assert.LessOrEqual(t, relError, tolerance,
		"relative error %e exceeds tolerance %e (expected=%f, actual=%f)",
		relError, tolerance, expected, actual)
}

// Impulse returns n zeros with a single 1 at index pos.
func Impulse(n, pos int) []float32 {
	s := make([]float32, n)
	s[pos] = 1
	return s
}

// RandomSignal returns n values uniformly drawn from [-1, 1) with a fixed seed.
func RandomSignal(n int, seed uint64) []float32 {
	r := rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))
	s := make([]float32, n)
	for i := range s {
		s[i] = r.Float32()*2 - 1
	}
	return s
}

// RandomKernel returns radius+1 taps drawn from (0, 1] with a fixed seed.
func RandomKernel(radius int, seed uint64) []float32 {
	r := rand.New(rand.NewPCG(seed, ^seed))
	k := make([]float32, radius+1)
	for i := range k {
		k[i] = 1 - r.Float32()
	}
	return k
}

// Mirror returns the reflected neighbours of position i at distance k in a
// signal of length n: left reflects about 0 and right about n-1.
func Mirror(i, k, n int) (left, right int) {
	left = i - k
	if i < k {
		left = k - i
	}
	right = i + k
	if i+k >= n {
		right = n - ((k + i) % n) - 2
	}
	return left, right
}

// ReferenceRow computes the mirrored symmetric convolution one element at a
// time, using the same accumulation order as the vector paths so results can
// be compared bit-for-bit. odd selects right-left instead of right+left.
func ReferenceRow(in, kernel []float32, odd bool) []float32 {
	n := len(in)
	out := make([]float32, n)
	for i := range n {
		acc := float32(kernel[0] * in[i])
		for k := 1; k < len(kernel); k++ {
			left, right := Mirror(i, k, n)
			var c float32
			if odd {
				c = in[right] - in[left]
			} else {
				c = in[right] + in[left]
			}
			acc = simdops.FMA32(c, kernel[k], acc)
		}
		out[i] = acc
	}
	return out
}

// ReferenceColumns filters each column of a strided image with ReferenceRow.
func ReferenceColumns(in []float32, width, height, stride int, kernel []float32, odd bool) []float32 {
	out := make([]float32, (height-1)*stride+width)
	col := make([]float32, height)
	for x := range width {
		for y := range height {
			col[y] = in[y*stride+x]
		}
		res := ReferenceRow(col, kernel, odd)
		for y := range height {
			out[y*stride+x] = res[y]
		}
	}
	return out
}
