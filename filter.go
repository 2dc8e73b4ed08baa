package fastfilter

import (
	"errors"
	"fmt"

	"github.com/tphakala/simd/cpu"

	"github.com/tphakala/go-fastfilter/internal/engine"
	"github.com/tphakala/go-fastfilter/internal/logging"
	"github.com/tphakala/go-fastfilter/internal/scratch"
	"github.com/tphakala/go-fastfilter/internal/simdops"
)

// Backend selects the vector implementation.
type Backend int

const (
	// BackendAuto uses SIMD kernels when the CPU has fused multiply-add
	// vectors and the scalar path otherwise.
	BackendAuto Backend = iota

	// BackendScalar processes one sample per step. Results are identical to
	// the SIMD backend.
	BackendScalar

	// BackendSIMD uses the tphakala/simd float32 kernels. On a CPU without
	// fused multiply-add vectors it falls back to the scalar path.
	BackendSIMD
)

// String returns the backend name.
func (b Backend) String() string {
	switch b {
	case BackendAuto:
		return "auto"
	case BackendScalar:
		return "scalar"
	case BackendSIMD:
		return "simd"
	default:
		return fmt.Sprintf("Backend(%d)", int(b))
	}
}

// Common errors returned by the filter.
var (
	// ErrInvalidConfig indicates invalid configuration parameters.
	ErrInvalidConfig = errors.New("invalid filter configuration")

	// ErrInvalidArgument indicates a bad buffer, extent, stride, or aliasing
	// on a Rows or Columns call.
	ErrInvalidArgument = engine.ErrInvalidArgument

	// ErrUnsupportedSymmetry indicates a kernel that is neither even nor odd.
	ErrUnsupportedSymmetry = engine.ErrUnsupportedSymmetry

	// ErrScratchExhausted indicates the column-pass scratch could not be allocated.
	ErrScratchExhausted = scratch.ErrExhausted

	// ErrScratchCorrupted indicates a write past the end of column-pass scratch.
	ErrScratchCorrupted = scratch.ErrCorrupted
)

// Config holds filter configuration.
type Config struct {
	// Kernel is copied by New; later changes to it do not affect the Filter.
	Kernel Kernel

	// Backend selects the vector implementation. The zero value is BackendAuto.
	Backend Backend

	// FixedRadius selects unrolled steps for radius 1 through 4. Larger radii
	// fall back to the runtime loop. Output is identical either way.
	FixedRadius bool

	// ScratchAlignment is the byte alignment of column-pass scratch. It must be
	// zero or a power of two below 256. Zero uses DefaultScratchAlignment.
	ScratchAlignment int

	// MaxScratchBytes caps a single column-pass scratch allocation. Zero uses
	// DefaultMaxScratchBytes.
	MaxScratchBytes int
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := c.Kernel.Validate(); err != nil {
		return err
	}

	if c.Backend < BackendAuto || c.Backend > BackendSIMD {
		return fmt.Errorf("%w: unknown backend %d", ErrInvalidConfig, int(c.Backend))
	}

	if _, err := scratch.ResolveAlignment(c.ScratchAlignment); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if c.MaxScratchBytes < 0 {
		return fmt.Errorf("%w: max scratch bytes must not be negative", ErrInvalidConfig)
	}

	return nil
}

// Filter applies one symmetric kernel along rows or columns.
type Filter struct {
	conv   engine.Convolver
	kernel Kernel
}

// New assembles a Filter: the kernel symmetry is resolved, the backend and
// the radius path are chosen, and the kernel is copied.
func New(config *Config) (*Filter, error) {
	if config == nil {
		return nil, fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	sym, err := config.Kernel.Symmetry.engine()
	if err != nil {
		return nil, err
	}

	kind := simdops.KindSIMD
	if config.Backend == BackendScalar {
		kind = simdops.KindScalar
	}

	conv, err := engine.NewConvolver(kind, config.Kernel.Coefficients, sym, engine.Options{
		FixedRadius: config.FixedRadius,
		Scratch: scratch.Allocator{
			Alignment: config.ScratchAlignment,
			MaxBytes:  config.MaxScratchBytes,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to assemble filter: %w", err)
	}

	logging.Logger().Debug("filter ready",
		"backend", conv.BackendName(),
		"radius", conv.Radius(),
		"symmetry", config.Kernel.Symmetry.String())

	return &Filter{
		conv: conv,
		kernel: Kernel{
			Coefficients: append([]float32(nil), config.Kernel.Coefficients...),
			Symmetry:     config.Kernel.Symmetry,
		},
	}, nil
}

// Rows filters the contiguous signal in into out.
//
// len(out) must equal len(in), the signal must hold at least 2R+1 samples,
// and the two slices must not overlap.
func (f *Filter) Rows(in, out []float32) error {
	return f.conv.Rows(in, out)
}

// Columns filters every column of a width x height image stored with
// inStride elements between rows, writing rows outStride apart into out.
//
// The image must hold at least 2R+1 rows. out may be the same view as in
// (identical first element and stride) for in-place filtering; any other
// overlap is rejected. Elements between width and the stride are untouched.
func (f *Filter) Columns(in []float32, width, height, inStride int, out []float32, outStride int) error {
	return f.conv.Columns(in, width, height, inStride, out, outStride)
}

// Radius returns the kernel radius R.
func (f *Filter) Radius() int {
	return f.conv.Radius()
}

// Kernel returns a copy of the filter's kernel.
func (f *Filter) Kernel() Kernel {
	return Kernel{
		Coefficients: append([]float32(nil), f.kernel.Coefficients...),
		Symmetry:     f.kernel.Symmetry,
	}
}

// MinExtent returns the shortest signal length or image height the filter accepts.
func (f *Filter) MinExtent() int {
	return 2*f.conv.Radius() + 1
}

// Info returns information about the filter implementation.
type Info struct {
	// Backend is the resolved backend, "simd" or "scalar".
	Backend string

	// Lanes is the number of float32 values per fused multiply-add vector,
	// or 1 for the scalar backend.
	Lanes int

	// SIMDType describes the SIMD instruction set detected on this CPU.
	SIMDType string

	// Radius is the kernel radius.
	Radius int

	// Symmetry is the kernel symmetry.
	Symmetry Symmetry

	// FixedRadius reports whether an unrolled per-radius step is in use.
	FixedRadius bool
}

// GetInfo returns information about a filter.
func GetInfo(f *Filter) Info {
	return Info{
		Backend:     f.conv.BackendName(),
		Lanes:       f.conv.Lanes(),
		SIMDType:    cpu.Info(),
		Radius:      f.conv.Radius(),
		Symmetry:    f.kernel.Symmetry,
		FixedRadius: f.conv.FixedRadius(),
	}
}
