// Package engine implements separable symmetric convolution over float32 data.
//
// A kernel of radius R is stored as its R+1 non-negative taps k0..kR. For
// every output position the engine folds the two neighbours at distance k
// into one term, so an even kernel costs R multiply-adds per sample instead
// of 2R+1. Borders are resolved by mirroring about the first and last sample
// without repeating them.
//
// Accumulation order is fixed: acc = k0*x, then acc = combine(right, left)*kk + acc
// for k = 1..R with a single rounding per step. Every code path (wide blocks,
// narrow spans, partial column blocks, scalar borders, fixed-radius and
// runtime-radius) follows that order, so results do not depend on how the
// signal is partitioned or which backend runs it.
package engine

import (
	"fmt"
	"sync"

	"github.com/tphakala/go-fastfilter/internal/logging"
	"github.com/tphakala/go-fastfilter/internal/scratch"
	"github.com/tphakala/go-fastfilter/internal/simdops"
)

// Convolver is the backend-independent view of an Engine.
type Convolver interface {
	// Rows filters a contiguous signal. in and out must not overlap.
	Rows(in, out []float32) error

	// Columns filters every column of a strided image. out may be the same
	// view as in (same first element and stride); any other overlap is rejected.
	Columns(in []float32, width, height, inStride int, out []float32, outStride int) error

	Radius() int
	Lanes() int
	BackendName() string
	FixedRadius() bool
}

// Options tunes engine assembly.
type Options struct {
	// FixedRadius selects unrolled tap sequences for radius 1 through 4.
	FixedRadius bool

	// Scratch provides the column ring buffer.
	Scratch scratch.Allocator
}

// Engine is a convolver bound to one backend and one kernel. It is immutable
// after New and safe for concurrent use.
type Engine struct {
	b      simdops.Backend
	lanes  int
	block  int
	radius int
	sym    Symmetry
	kernel []float32
	fixed  bool
	alloc  scratch.Allocator

	// rowTmp holds block-sized buffers for combined row neighbours.
	rowTmp sync.Pool
}

// New assembles an engine. kernel holds k0..kR and must not be empty.
func New(b simdops.Backend, kernel []float32, sym Symmetry, opts Options) (*Engine, error) {
	if len(kernel) == 0 {
		return nil, fmt.Errorf("%w: kernel has no taps", ErrInvalidArgument)
	}
	if err := sym.validate(); err != nil {
		return nil, err
	}
	if _, err := scratch.ResolveAlignment(opts.Scratch.Alignment); err != nil {
		return nil, err
	}

	e := &Engine{
		b:      b,
		lanes:  b.Lanes(),
		radius: len(kernel) - 1,
		sym:    sym,
		kernel: append([]float32(nil), kernel...),
		alloc:  opts.Scratch,
	}
	e.block = blockVectors * e.lanes
	e.rowTmp.New = func() any {
		buf := make([]float32, e.block)
		return &buf
	}
	e.selectSteps(opts.FixedRadius)

	logging.Logger().Debug("convolver assembled",
		"backend", b.Name(),
		"lanes", e.lanes,
		"radius", e.radius,
		"symmetry", sym.String(),
		"fixed_radius", e.fixed)
	return e, nil
}

// NewConvolver assembles an engine for the backend kind. A SIMD request on a
// CPU without fused multiply-add kernels is served by the scalar backend.
func NewConvolver(kind simdops.Kind, kernel []float32, sym Symmetry, opts Options) (Convolver, error) {
	if kind != simdops.KindSIMD && kind != simdops.KindScalar {
		return nil, fmt.Errorf("%w: unknown backend %d", ErrInvalidArgument, int(kind))
	}
	b, ok := simdops.New(kind)
	if !ok {
		logging.Logger().Warn("no fused multiply-add SIMD path on this CPU, using scalar backend",
			"requested", kind.String())
	}
	return New(b, kernel, sym, opts)
}

// Radius returns the kernel radius R.
func (e *Engine) Radius() int { return e.radius }

// Lanes returns the backend register width in float32 elements.
func (e *Engine) Lanes() int { return e.lanes }

// BackendName returns the backend name.
func (e *Engine) BackendName() string { return e.b.Name() }

// FixedRadius reports whether an unrolled tap sequence is in use.
func (e *Engine) FixedRadius() bool { return e.fixed }

// Symmetry returns the kernel symmetry.
func (e *Engine) Symmetry() Symmetry { return e.sym }

// Kernel returns a copy of the taps k0..kR.
func (e *Engine) Kernel() []float32 {
	return append([]float32(nil), e.kernel...)
}

// scalarAt computes one output sample of a contiguous signal.
func (e *Engine) scalarAt(src []float32, i int) float32 {
	n := len(src)
	acc := float32(src[i] * e.kernel[0])
	for k := 1; k <= e.radius; k++ {
		l, r := mirror(i, k, n)
		acc = simdops.FMA32(e.combine1(src[r], src[l]), e.kernel[k], acc)
	}
	return acc
}
