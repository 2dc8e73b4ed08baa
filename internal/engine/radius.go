package engine

import "github.com/tphakala/go-fastfilter/internal/logging"

// maxFixedRadius is the largest radius with an unrolled tap sequence.
const maxFixedRadius = 4

// blockVectors is the number of registers in one wide block. A block and its
// combine buffer stay resident in L1 while all taps are applied.
const blockVectors = 64

// selectSteps picks between the unrolled and the runtime tap sequence. Both
// apply the taps in the same order and give bit-identical results.
func (e *Engine) selectSteps(fixed bool) {
	e.fixed = false
	if !fixed || e.radius == 0 {
		return
	}
	if e.radius > maxFixedRadius {
		logging.Logger().Warn("no unrolled taps for radius, using runtime loop",
			"radius", e.radius,
			"max_fixed_radius", maxFixedRadius)
		return
	}
	e.fixed = true
}

// span writes the filtered values of w to dst, using tmp for the combined
// neighbours. len(dst) and len(tmp) equal w.n.
func (e *Engine) span(dst, tmp []float32, w *window) {
	e.b.Scale(dst, w.centre(), e.kernel[0])
	if e.fixed {
		e.spanFixed(dst, tmp, w)
		return
	}
	for k := 1; k <= e.radius; k++ {
		e.tap(dst, tmp, w, k)
	}
}

// tap accumulates combine(right, left)*kk for distance k into dst.
func (e *Engine) tap(dst, tmp []float32, w *window, k int) {
	right, left := w.pair(k)
	e.combine(tmp, right, left)
	e.b.MulAdd(dst, tmp, e.kernel[k])
}

func (e *Engine) spanFixed(dst, tmp []float32, w *window) {
	switch e.radius {
	case 1:
		e.tap(dst, tmp, w, 1)
	case 2:
		e.tap(dst, tmp, w, 1)
		e.tap(dst, tmp, w, 2)
	case 3:
		e.tap(dst, tmp, w, 1)
		e.tap(dst, tmp, w, 2)
		e.tap(dst, tmp, w, 3)
	case 4:
		e.tap(dst, tmp, w, 1)
		e.tap(dst, tmp, w, 2)
		e.tap(dst, tmp, w, 3)
		e.tap(dst, tmp, w, 4)
	}
}
