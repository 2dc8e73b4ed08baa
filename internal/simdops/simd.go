package simdops

import (
	"github.com/tphakala/simd/cpu"
	"github.com/tphakala/simd/f32"
)

const simdName = "simd"

// Register widths, in float32 elements.
const (
	avx512Lanes = 16
	avxLanes    = 8
	neonLanes   = 4
)

// SIMD runs spans through github.com/tphakala/simd/f32. MulAdd maps to
// f32.AddScaled, which is a single-rounding VFMADD231/FMLA on AVX+FMA, AVX-512
// and NEON. Other CPUs take a multiply-then-add path that rounds twice, so the
// backend is only offered where FusedLanes reports a width.
type SIMD struct {
	lanes int
}

// FusedLanes returns the float32 width of the fused multiply-add kernels
// github.com/tphakala/simd selects on this CPU, or 0 when it has none.
func FusedLanes() int {
	switch {
	case cpu.X86.AVX512F && cpu.X86.AVX512VL:
		return avx512Lanes
	case cpu.X86.AVX && cpu.X86.FMA:
		return avxLanes
	case cpu.ARM64.NEON:
		return neonLanes
	default:
		return 0
	}
}

// NewSIMD returns the SIMD backend. ok is false on CPUs without fused
// multiply-add kernels.
func NewSIMD() (s SIMD, ok bool) {
	lanes := FusedLanes()
	if lanes == 0 {
		return SIMD{}, false
	}
	return SIMD{lanes: lanes}, true
}

func (s SIMD) Name() string { return simdName }
func (s SIMD) Lanes() int   { return s.lanes }

func (s SIMD) Scale(dst, src []float32, k float32) {
	f32.Scale(dst, src[:len(dst)], k)
}

func (s SIMD) Add(dst, a, b []float32) {
	f32.Add(dst, a[:len(dst)], b[:len(dst)])
}

func (s SIMD) Sub(dst, a, b []float32) {
	f32.Sub(dst, a[:len(dst)], b[:len(dst)])
}

// MulAdd hands spans of at least one register to f32.AddScaled. Shorter spans
// may reach the library's portable loop on arm64, so they are fused here.
func (s SIMD) MulAdd(dst, a []float32, k float32) {
	if len(dst) < s.lanes {
		for i := range dst {
			dst[i] = FMA32(a[i], k, dst[i])
		}
		return
	}
	f32.AddScaled(dst, k, a[:len(dst)])
}
