package engine

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-fastfilter/internal/scratch"
	"github.com/tphakala/go-fastfilter/internal/simdops"
	"github.com/tphakala/go-fastfilter/internal/testutil"
)

var testKernel = []float32{0.4, 0.25, 0.05}

// impulseResponse is the expected output for a unit impulse at index 10 of 21 samples.
func impulseResponse() []float32 {
	want := make([]float32, 21)
	want[8], want[9], want[10], want[11], want[12] = 0.05, 0.25, 0.4, 0.25, 0.05
	return want
}

type convolverCase struct {
	name  string
	kind  simdops.Kind
	fixed bool
}

var convolverCases = []convolverCase{
	{"scalar", simdops.KindScalar, false},
	{"scalar-fixed", simdops.KindScalar, true},
	{"simd", simdops.KindSIMD, false},
	{"simd-fixed", simdops.KindSIMD, true},
}

func newTestConvolver(t *testing.T, c convolverCase, kernel []float32, sym Symmetry) Convolver {
	t.Helper()
	conv, err := NewConvolver(c.kind, kernel, sym, Options{FixedRadius: c.fixed})
	require.NoError(t, err)
	return conv
}

func TestNewConvolver(t *testing.T) {
	conv, err := NewConvolver(simdops.KindScalar, testKernel, Even, Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, conv.Radius())
	assert.Equal(t, 1, conv.Lanes())
	assert.Equal(t, "scalar", conv.BackendName())
	assert.False(t, conv.FixedRadius())

	conv, err = NewConvolver(simdops.KindSIMD, testKernel, Odd, Options{FixedRadius: true})
	require.NoError(t, err)
	assert.True(t, conv.FixedRadius())
	if lanes := simdops.FusedLanes(); lanes > 0 {
		assert.Equal(t, "simd", conv.BackendName())
		assert.Equal(t, lanes, conv.Lanes())
	} else {
		assert.Equal(t, "scalar", conv.BackendName())
		assert.Equal(t, 1, conv.Lanes())
	}
}

func TestNewRejects(t *testing.T) {
	_, err := NewConvolver(simdops.KindScalar, nil, Even, Options{})
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = NewConvolver(simdops.KindScalar, testKernel, NotSymmetric, Options{})
	require.ErrorIs(t, err, ErrUnsupportedSymmetry)

	_, err = NewConvolver(simdops.KindScalar, testKernel, Symmetry(9), Options{})
	require.ErrorIs(t, err, ErrUnsupportedSymmetry)

	_, err = NewConvolver(simdops.Kind(9), testKernel, Even, Options{})
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = NewConvolver(simdops.KindScalar, testKernel, Even, Options{Scratch: scratch.Allocator{Alignment: 48}})
	require.ErrorIs(t, err, scratch.ErrInvalidAlignment)
}

func TestKernelIsCopied(t *testing.T) {
	k := []float32{1, 0.5}
	e, err := New(simdops.NewScalar(), k, Even, Options{})
	require.NoError(t, err)
	k[0] = 7
	assert.Equal(t, []float32{1, 0.5}, e.Kernel())
	assert.Equal(t, Even, e.Symmetry())
}

func TestFixedRadiusFallback(t *testing.T) {
	kernel := testutil.RandomKernel(6, 1)
	e, err := New(simdops.NewScalar(), kernel, Even, Options{FixedRadius: true})
	require.NoError(t, err)
	assert.False(t, e.FixedRadius())

	e, err = New(simdops.NewScalar(), []float32{2}, Even, Options{FixedRadius: true})
	require.NoError(t, err)
	assert.False(t, e.FixedRadius(), "radius 0 has no step")
}

func TestSymmetryString(t *testing.T) {
	assert.Equal(t, "even", Even.String())
	assert.Equal(t, "odd", Odd.String())
	assert.Equal(t, "not-symmetric", NotSymmetric.String())
	assert.Equal(t, "Symmetry(7)", Symmetry(7).String())
}

func TestMirrorMatchesReference(t *testing.T) {
	for n := 1; n <= 12; n++ {
		for k := 0; k < n; k++ {
			for i := range n {
				l, r := mirror(i, k, n)
				wl, wr := testutil.Mirror(i, k, n)
				assert.Equal(t, wl, l)
				assert.Equal(t, wr, r)
				assert.GreaterOrEqual(t, l, 0)
				assert.GreaterOrEqual(t, r, 0)
				assert.Less(t, l, n)
				assert.Less(t, r, n)
			}
		}
	}
}

func TestWindowPairs(t *testing.T) {
	// 5 rows of stride 10; each value encodes its row and column.
	in := make([]float32, 50)
	for i := range in {
		in[i] = float32(i/10*100 + i%10)
	}

	w := window{in: in, column: true, height: 5, stride: 10, y: 0, at: 3, n: 2}
	assert.Equal(t, []float32{3, 4}, w.centre())
	right, left := w.pair(2)
	assert.Equal(t, []float32{203, 204}, right)
	assert.Equal(t, []float32{203, 204}, left, "top edge mirrors to row 2")

	w.y, w.at = 4, 43
	right, left = w.pair(1)
	assert.Equal(t, []float32{303, 304}, right, "bottom edge mirrors to row 3")
	assert.Equal(t, []float32{303, 304}, left)

	row := window{in: in, at: 20, n: 3}
	right, left = row.pair(2)
	assert.Equal(t, []float32{202, 203, 204}, right)
	assert.Equal(t, in[18:21], left)
}

func TestRowRing(t *testing.T) {
	ring := newRowRing(make([]float32, 12), 3, 4)
	for y := range 5 {
		s := ring.slot(y)
		require.Len(t, s, 4)
		for i := range s {
			s[i] = float32(y*10 + i)
		}
	}
	// Row 4 reused slot 1, overwriting row 1.
	assert.Equal(t, float32(40), ring.slot(1)[0])

	out := make([]float32, 5*3)
	ring.drain(4, 2, out, 3)
	assert.Equal(t, float32(40), out[12])
	assert.Equal(t, float32(41), out[13])
	assert.Equal(t, float32(0), out[14])

	assert.Equal(t, 8, ringSlotLen(5, 4))
	assert.Equal(t, 8, ringSlotLen(8, 4))
	assert.Equal(t, 3, ringSlotLen(3, 1))
}

func TestOverlaps(t *testing.T) {
	buf := make([]float32, 10)
	assert.True(t, overlaps(buf[:5], buf[4:]))
	assert.False(t, overlaps(buf[:5], buf[5:]))
	assert.False(t, overlaps(buf[:0], buf))
	assert.True(t, sameView(buf[:3], buf[:8]))
	assert.False(t, sameView(buf[1:], buf))
	assert.False(t, overlaps(make([]float32, 4), make([]float32, 4)))
}

func TestRowsImpulse(t *testing.T) {
	for _, c := range convolverCases {
		t.Run(c.name, func(t *testing.T) {
			conv := newTestConvolver(t, c, testKernel, Even)
			out := make([]float32, 21)
			require.NoError(t, conv.Rows(testutil.Impulse(21, 10), out))
			testutil.AssertBitExact(t, impulseResponse(), out)
		})
	}
}

func TestColumnsImpulse(t *testing.T) {
	for _, c := range convolverCases {
		t.Run(c.name, func(t *testing.T) {
			conv := newTestConvolver(t, c, testKernel, Even)
			out := make([]float32, 21)
			require.NoError(t, conv.Columns(testutil.Impulse(21, 10), 1, 21, 1, out, 1))
			testutil.AssertBitExact(t, impulseResponse(), out)
		})
	}
}

func TestRowsOddImpulse(t *testing.T) {
	conv := newTestConvolver(t, convolverCases[2], testKernel, Odd)
	out := make([]float32, 21)
	require.NoError(t, conv.Rows(testutil.Impulse(21, 10), out))

	// Subtracting the left neighbour flips the sign of the leading half.
	want := make([]float32, 21)
	want[8], want[9], want[10], want[11], want[12] = 0.05, 0.25, 0.4, -0.25, -0.05
	testutil.AssertBitExact(t, want, out)
}

// TestRowsMatchReference sweeps lengths across every span boundary
// (border, wide, narrow, scalar) and checks bit-exact agreement.
func TestRowsMatchReference(t *testing.T) {
	for _, c := range convolverCases {
		for _, sym := range []Symmetry{Even, Odd} {
			for radius := 0; radius <= 6; radius++ {
				kernel := testutil.RandomKernel(radius, uint64(radius+1))
				conv := newTestConvolver(t, c, kernel, sym)
				block := conv.(*Engine).block
				var lengths []int
				for n := 2*radius + 1; n <= 2*radius+1+5*conv.Lanes()+3; n++ {
					lengths = append(lengths, n)
				}
				lengths = append(lengths,
					block+2*radius, block+2*radius+1, 2*block+2*radius+conv.Lanes()+1,
					2*block+2*radius+conv.Lanes()-1, 3*block+7)
				for _, n := range lengths {
					in := testutil.RandomSignal(n, uint64(n))
					out := make([]float32, n)
					require.NoError(t, conv.Rows(in, out))
					want := testutil.ReferenceRow(in, kernel, sym == Odd)
					if !testutil.AssertBitExact(t, want, out, "%s sym=%s R=%d N=%d", c.name, sym, radius, n) {
						return
					}
				}
			}
		}
	}
}

func TestColumnsMatchReference(t *testing.T) {
	for _, c := range convolverCases {
		for _, sym := range []Symmetry{Even, Odd} {
			for _, radius := range []int{0, 1, 2, 3, 4, 5} {
				kernel := testutil.RandomKernel(radius, uint64(10+radius))
				conv := newTestConvolver(t, c, kernel, sym)
				lanes := conv.Lanes()
				block := conv.(*Engine).block
				widths := []int{1, lanes, lanes + 1, 4*lanes - 1, 4 * lanes, 5*lanes + 3, block + 1, 2*block + lanes - 1}
				for _, width := range widths {
					for _, height := range []int{2*radius + 1, 2*radius + 4, 17} {
						if height < 2*radius+1 {
							continue
						}
						t.Run(fmt.Sprintf("%s/%s/R%d/%dx%d", c.name, sym, radius, width, height), func(t *testing.T) {
							stride := width + 3
							in := testutil.RandomSignal((height-1)*stride+width, uint64(width*height))
							out := make([]float32, (height-1)*stride+width)
							require.NoError(t, conv.Columns(in, width, height, stride, out, stride))
							want := testutil.ReferenceColumns(in, width, height, stride, kernel, sym == Odd)
							for y := range height {
								row := y * stride
								testutil.AssertBitExact(t, want[row:row+width], out[row:row+width], "row %d", y)
							}
						})
					}
				}
			}
		}
	}
}

func TestSingleColumnEqualsRow(t *testing.T) {
	for _, c := range convolverCases {
		kernel := testutil.RandomKernel(3, 5)
		conv := newTestConvolver(t, c, kernel, Even)
		in := testutil.RandomSignal(40, 3)

		rowOut := make([]float32, 40)
		colOut := make([]float32, 40)
		require.NoError(t, conv.Rows(in, rowOut))
		require.NoError(t, conv.Columns(in, 1, 40, 1, colOut, 1))
		testutil.AssertBitExact(t, rowOut, colOut, c.name)
	}
}

func TestColumnsDifferentStrides(t *testing.T) {
	kernel := testutil.RandomKernel(2, 8)
	conv := newTestConvolver(t, convolverCases[2], kernel, Even)
	width, height := 13, 9
	in := testutil.RandomSignal((height-1)*20+width, 4)
	out := make([]float32, (height-1)*width+width)
	require.NoError(t, conv.Columns(in, width, height, 20, out, width))

	want := testutil.ReferenceColumns(in, width, height, 20, kernel, false)
	for y := range height {
		testutil.AssertBitExact(t, want[y*20:y*20+width], out[y*width:(y+1)*width], "row %d", y)
	}
}

func TestColumnsPreservesStridePadding(t *testing.T) {
	conv := newTestConvolver(t, convolverCases[2], testKernel, Even)
	width, height, stride := 5, 7, 8
	in := testutil.RandomSignal((height-1)*stride+width, 2)
	out := make([]float32, (height-1)*stride+width)
	for i := range out {
		out[i] = -9
	}
	require.NoError(t, conv.Columns(in, width, height, stride, out, stride))
	for y := 0; y < height-1; y++ {
		for x := width; x < stride; x++ {
			assert.Equal(t, float32(-9), out[y*stride+x], "padding at row %d col %d", y, x)
		}
	}
}

func TestColumnsInPlace(t *testing.T) {
	for _, c := range convolverCases {
		for _, radius := range []int{0, 1, 3, 5} {
			kernel := testutil.RandomKernel(radius, 21)
			conv := newTestConvolver(t, c, kernel, Odd)
			width, height, stride := 11, 2*radius+6, 12
			in := testutil.RandomSignal((height-1)*stride+width, 6)

			want := make([]float32, len(in))
			require.NoError(t, conv.Columns(in, width, height, stride, want, stride))

			data := append([]float32(nil), in...)
			require.NoError(t, conv.Columns(data, width, height, stride, data, stride))
			for y := range height {
				testutil.AssertBitExact(t, want[y*stride:y*stride+width], data[y*stride:y*stride+width],
					"%s R=%d row %d", c.name, radius, y)
			}
		}
	}
}

func TestRowsErrors(t *testing.T) {
	conv := newTestConvolver(t, convolverCases[0], testKernel, Even)

	tests := []struct {
		name string
		in   []float32
		out  []float32
	}{
		{"empty", nil, nil},
		{"length mismatch", make([]float32, 8), make([]float32, 7)},
		{"too short", make([]float32, 4), make([]float32, 4)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, conv.Rows(tt.in, tt.out), ErrInvalidArgument)
		})
	}

	buf := make([]float32, 12)
	assert.ErrorIs(t, conv.Rows(buf[:6], buf[3:9]), ErrInvalidArgument)
	assert.ErrorIs(t, conv.Rows(buf[:6], buf[:6]), ErrInvalidArgument)

	// The shortest accepted signal is 2R+1.
	assert.NoError(t, conv.Rows(make([]float32, 5), make([]float32, 5)))
}

func TestColumnsErrors(t *testing.T) {
	conv := newTestConvolver(t, convolverCases[2], testKernel, Even)
	in := make([]float32, 64)
	out := make([]float32, 64)

	assert.ErrorIs(t, conv.Columns(in, 0, 5, 4, out, 4), ErrInvalidArgument)
	assert.ErrorIs(t, conv.Columns(in, 4, 0, 4, out, 4), ErrInvalidArgument)
	assert.ErrorIs(t, conv.Columns(in, 4, 5, 3, out, 4), ErrInvalidArgument)
	assert.ErrorIs(t, conv.Columns(in, 4, 5, 4, out, 3), ErrInvalidArgument)
	assert.ErrorIs(t, conv.Columns(in, 4, 4, 4, out, 4), ErrInvalidArgument)
	assert.ErrorIs(t, conv.Columns(in[:10], 4, 5, 4, out, 4), ErrInvalidArgument)
	assert.ErrorIs(t, conv.Columns(in, 4, 5, 4, out[:19], 4), ErrInvalidArgument)

	// Shifted or restrided views of the same buffer are not the same view.
	assert.ErrorIs(t, conv.Columns(in, 4, 5, 4, in[1:], 4), ErrInvalidArgument)
	assert.ErrorIs(t, conv.Columns(in, 4, 5, 4, in, 5), ErrInvalidArgument)

	// Strides whose span overflows int.
	short := newTestConvolver(t, convolverCases[2], []float32{0.5, 0.25}, Even)
	assert.ErrorIs(t, short.Columns(in, 1, 3, math.MaxInt/2+1, out, math.MaxInt/2+1), ErrInvalidArgument)
	assert.ErrorIs(t, short.Columns(in, 1, 3, 1, out, math.MaxInt/2+1), ErrInvalidArgument)
	assert.ErrorIs(t, short.Columns(in, 1, 3, math.MaxInt, out, math.MaxInt), ErrInvalidArgument)
	assert.NoError(t, short.Columns(in, 1, 3, 1, out, 1))

	assert.NoError(t, conv.Columns(in, 4, 5, 4, out, 4))
	assert.NoError(t, conv.Columns(in, 4, 5, 4, in, 4))
}

func TestScratchFloatsOverflow(t *testing.T) {
	n, err := scratchFloats(3, 16, 16)
	require.NoError(t, err)
	assert.Equal(t, 64, n)

	_, err = scratchFloats(1<<20, math.MaxInt/(1<<20), 64)
	assert.ErrorIs(t, err, scratch.ErrExhausted)
}

// TestColumnRowStaysInWidth checks that a row computed in partial blocks
// writes exactly width values and nothing past them.
func TestColumnRowStaysInWidth(t *testing.T) {
	const sentinel = float32(-555)
	for _, c := range convolverCases {
		kernel := testutil.RandomKernel(2, 4)
		e := newTestConvolver(t, c, kernel, Even).(*Engine)
		for _, width := range []int{1, e.lanes - 1, e.block - 1, e.block + 3, 2*e.block + e.lanes + 1} {
			if width < 1 {
				continue
			}
			height, stride := 6, width+2
			in := testutil.RandomSignal((height-1)*stride+width, 9)
			slot := make([]float32, ringSlotLen(width, e.lanes)+e.lanes)
			for i := range slot {
				slot[i] = sentinel
			}
			tmp := make([]float32, min(e.block, ringSlotLen(width, e.lanes)))

			w := window{in: in, column: true, height: height, stride: stride, y: 3}
			e.columnRow(slot[:width], tmp, &w)

			want := testutil.ReferenceColumns(in, width, height, stride, kernel, false)
			testutil.AssertBitExact(t, want[3*stride:3*stride+width], slot[:width], "%s width %d", c.name, width)
			for i := width; i < len(slot); i++ {
				require.Equal(t, sentinel, slot[i], "%s width %d wrote index %d", c.name, width, i)
			}
		}
	}
}

func TestRowsDoNotAllocate(t *testing.T) {
	for _, c := range convolverCases {
		for _, radius := range []int{0, 2, 6} {
			conv := newTestConvolver(t, c, testutil.RandomKernel(radius, 3), Even)
			in := testutil.RandomSignal(4096, 5)
			out := make([]float32, len(in))
			allocs := testing.AllocsPerRun(20, func() {
				if err := conv.Rows(in, out); err != nil {
					panic(err)
				}
			})
			assert.Zero(t, allocs, "%s R=%d", c.name, radius)
		}
	}
}

func TestColumnsAllocateOnlyScratch(t *testing.T) {
	for _, c := range convolverCases {
		conv := newTestConvolver(t, c, testutil.RandomKernel(3, 3), Odd)
		width, height := 300, 40
		in := testutil.RandomSignal(width*height, 5)
		out := make([]float32, len(in))

		allocs := testing.AllocsPerRun(20, func() {
			if err := conv.Columns(in, width, height, width, out, width); err != nil {
				panic(err)
			}
		})
		assert.Equal(t, 1.0, allocs, c.name)

		allocs = testing.AllocsPerRun(20, func() {
			if err := conv.Columns(in, width, height, width, in, width); err != nil {
				panic(err)
			}
		})
		assert.Equal(t, 1.0, allocs, "%s in place", c.name)
	}
}

func TestColumnsScratchLimit(t *testing.T) {
	conv, err := NewConvolver(simdops.KindScalar, testKernel, Even,
		Options{Scratch: scratch.Allocator{MaxBytes: 16}})
	require.NoError(t, err)

	in := make([]float32, 100*5)
	out := make([]float32, 100*5)
	require.ErrorIs(t, conv.Columns(in, 100, 5, 100, out, 100), scratch.ErrExhausted)

	// Radius 0 never touches scratch.
	conv, err = NewConvolver(simdops.KindScalar, []float32{2}, Even,
		Options{Scratch: scratch.Allocator{MaxBytes: 16}})
	require.NoError(t, err)
	require.NoError(t, conv.Columns(in, 100, 5, 100, out, 100))
}
