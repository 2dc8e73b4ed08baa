package engine

import (
	"fmt"
	"math"

	"github.com/tphakala/go-fastfilter/internal/scratch"
)

// floatBytes is the size of one float32 element.
const floatBytes = 4

// Columns filters every column of a width x height image.
//
// Rows are swept top to bottom; each is computed across x in blocks (the last
// block covers only what remains of the row) into a ring of R+1 rows held in
// scratch. Once row y is done, row y-R is final and is copied out. This
// ordering lets out be the same view as in. Requires 2R+1 <= height. The
// scratch buffer is the only allocation.
func (e *Engine) Columns(in []float32, width, height, inStride int, out []float32, outStride int) (err error) {
	if err := e.checkColumns(in, width, height, inStride, out, outStride); err != nil {
		return err
	}
	r := e.radius
	if r == 0 {
		k0 := e.kernel[0]
		for y := range height {
			e.b.Scale(out[y*outStride:y*outStride+width], in[y*inStride:y*inStride+width], k0)
		}
		return nil
	}

	slots := r + 1
	slotLen := ringSlotLen(width, e.lanes)
	tmpLen := min(e.block, slotLen)
	floats, err := scratchFloats(slots, slotLen, tmpLen)
	if err != nil {
		return err
	}
	buf, err := e.alloc.Alloc(floats * floatBytes)
	if err != nil {
		return err
	}
	defer func() {
		if rerr := buf.Release(); rerr != nil && err == nil {
			err = rerr
		}
	}()

	data := buf.Floats()
	ring := newRowRing(data, slots, slotLen)
	tmp := data[slots*slotLen : slots*slotLen+tmpLen]

	w := window{in: in, column: true, height: height, stride: inStride}
	for y := range height {
		w.y = y
		e.columnRow(ring.slot(y)[:width], tmp, &w)
		if y >= r {
			ring.drain(y-r, width, out, outStride)
		}
	}
	for y := height - r; y < height; y++ {
		ring.drain(y, width, out, outStride)
	}
	return nil
}

// columnRow filters image row w.y into dst in blocks of len(tmp) across x.
func (e *Engine) columnRow(dst, tmp []float32, w *window) {
	base := w.y * w.stride
	for x := 0; x < len(dst); x += len(tmp) {
		n := min(len(tmp), len(dst)-x)
		w.at, w.n = base+x, n
		e.span(dst[x:x+n], tmp[:n], w)
	}
}

// scratchFloats returns the ring plus combine-buffer size in float32 values.
func scratchFloats(slots, slotLen, tmpLen int) (int, error) {
	if slotLen > (math.MaxInt/floatBytes-tmpLen)/slots {
		return 0, fmt.Errorf("%w: %d rows of %d values", scratch.ErrExhausted, slots, slotLen)
	}
	return slots*slotLen + tmpLen, nil
}

func (e *Engine) checkColumns(in []float32, width, height, inStride int, out []float32, outStride int) error {
	switch {
	case width < 1 || height < 1:
		return fmt.Errorf("%w: image %dx%d", ErrInvalidArgument, width, height)
	case inStride < width || outStride < width:
		return fmt.Errorf("%w: stride (in %d, out %d) below width %d", ErrInvalidArgument, inStride, outStride, width)
	case 2*e.radius+1 > height:
		return fmt.Errorf("%w: height %d too short for radius %d", ErrInvalidArgument, height, e.radius)
	}
	if height > 1 {
		if limit := (math.MaxInt - width) / (height - 1); inStride > limit || outStride > limit {
			return fmt.Errorf("%w: stride (in %d, out %d) overflows a %d-row image", ErrInvalidArgument, inStride, outStride, height)
		}
	}

	inSpan := (height-1)*inStride + width
	outSpan := (height-1)*outStride + width
	switch {
	case len(in) < inSpan:
		return fmt.Errorf("%w: input holds %d values, need %d", ErrInvalidArgument, len(in), inSpan)
	case len(out) < outSpan:
		return fmt.Errorf("%w: output holds %d values, need %d", ErrInvalidArgument, len(out), outSpan)
	}

	in, out = in[:inSpan], out[:outSpan]
	if overlaps(in, out) && (!sameView(in, out) || inStride != outStride) {
		return fmt.Errorf("%w: output partially overlaps input", ErrInvalidArgument)
	}
	return nil
}
