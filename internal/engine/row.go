package engine

import (
	"fmt"
	"unsafe"
)

// Rows filters a contiguous signal of length N into out (also length N).
//
// The signal is split into a mirrored left border [0, R), an interior walked
// in wide blocks, then one narrow span of whole registers, then scalars, and a
// mirrored right border [N-R, N). Requires 2R+1 <= N. Rows does not allocate.
func (e *Engine) Rows(in, out []float32) error {
	if err := e.checkRows(in, out); err != nil {
		return err
	}
	n, r := len(in), e.radius
	if r == 0 {
		e.b.Scale(out, in, e.kernel[0])
		return nil
	}

	for i := range r {
		out[i] = e.scalarAt(in, i)
	}

	end := n - r
	i := r
	if end-i >= e.lanes {
		p := e.rowTmp.Get().(*[]float32)
		tmp := (*p)[:e.block]
		w := window{in: in}
		for ; i+e.block <= end; i += e.block {
			w.at, w.n = i, e.block
			e.span(out[i:i+e.block], tmp, &w)
		}
		if m := (end - i) / e.lanes * e.lanes; m > 0 {
			w.at, w.n = i, m
			e.span(out[i:i+m], tmp[:m], &w)
			i += m
		}
		e.rowTmp.Put(p)
	}

	// Scalar remainder of the interior, then the right border.
	for ; i < n; i++ {
		out[i] = e.scalarAt(in, i)
	}
	return nil
}

func (e *Engine) checkRows(in, out []float32) error {
	n := len(in)
	switch {
	case n == 0:
		return fmt.Errorf("%w: empty input", ErrInvalidArgument)
	case len(out) != n:
		return fmt.Errorf("%w: output length %d, want %d", ErrInvalidArgument, len(out), n)
	case 2*e.radius+1 > n:
		return fmt.Errorf("%w: length %d too short for radius %d", ErrInvalidArgument, n, e.radius)
	case overlaps(in, out):
		return fmt.Errorf("%w: input and output overlap", ErrInvalidArgument)
	}
	return nil
}

// overlaps reports whether two non-empty slices share any element.
func overlaps(a, b []float32) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	const size = unsafe.Sizeof(float32(0))
	a0 := uintptr(unsafe.Pointer(unsafe.SliceData(a)))
	b0 := uintptr(unsafe.Pointer(unsafe.SliceData(b)))
	a1 := a0 + uintptr(len(a))*size
	b1 := b0 + uintptr(len(b))*size
	return a0 < b1 && b0 < a1
}

// sameView reports whether a and b start at the same element.
func sameView(a, b []float32) bool {
	return len(a) > 0 && len(b) > 0 && unsafe.SliceData(a) == unsafe.SliceData(b)
}
