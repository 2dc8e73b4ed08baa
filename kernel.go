package fastfilter

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tphakala/go-fastfilter/internal/engine"
)

// Symmetry describes how a kernel's taps mirror about the centre.
type Symmetry int

const (
	// SymmetryEven kernels satisfy k[-i] == k[i] (smoothing filters).
	SymmetryEven Symmetry = iota

	// SymmetryOdd kernels satisfy k[-i] == -k[i] (derivative filters).
	SymmetryOdd

	// SymmetryNone marks a kernel without symmetry. It is declared so callers
	// can describe such kernels, but New rejects it.
	SymmetryNone
)

// String returns the symmetry name.
func (s Symmetry) String() string {
	switch s {
	case SymmetryEven:
		return "even"
	case SymmetryOdd:
		return "odd"
	case SymmetryNone:
		return "none"
	default:
		return fmt.Sprintf("Symmetry(%d)", int(s))
	}
}

// ParseSymmetry converts "even", "odd" or "none" into a Symmetry.
func ParseSymmetry(s string) (Symmetry, error) {
	switch s {
	case "even":
		return SymmetryEven, nil
	case "odd":
		return SymmetryOdd, nil
	case "none":
		return SymmetryNone, nil
	default:
		return 0, fmt.Errorf("%w: unknown symmetry %q", ErrInvalidConfig, s)
	}
}

func (s Symmetry) engine() (engine.Symmetry, error) {
	switch s {
	case SymmetryEven:
		return engine.Even, nil
	case SymmetryOdd:
		return engine.Odd, nil
	default:
		return engine.NotSymmetric, fmt.Errorf("%w: %s", ErrUnsupportedSymmetry, s)
	}
}

// Kernel is a one-sided symmetric convolution kernel.
type Kernel struct {
	// Coefficients holds the taps k0..kR; index 0 is the centre.
	Coefficients []float32

	// Symmetry selects how the mirrored neighbours are combined.
	Symmetry Symmetry
}

// Radius returns R, the number of taps on each side of the centre.
func (k Kernel) Radius() int {
	return len(k.Coefficients) - 1
}

// Validate checks that the kernel has at least one finite tap.
func (k Kernel) Validate() error {
	if len(k.Coefficients) == 0 {
		return fmt.Errorf("%w: kernel has no coefficients", ErrInvalidConfig)
	}
	for i, c := range k.Coefficients {
		if math.IsNaN(float64(c)) || math.IsInf(float64(c), 0) {
			return fmt.Errorf("%w: coefficient %d is not finite", ErrInvalidConfig, i)
		}
	}
	return nil
}

// ParseKernel builds a Kernel from comma-separated one-sided taps such as
// "0.4,0.25,0.05" and a symmetry name accepted by ParseSymmetry.
func ParseKernel(coefficients, symmetry string) (Kernel, error) {
	sym, err := ParseSymmetry(strings.ToLower(strings.TrimSpace(symmetry)))
	if err != nil {
		return Kernel{}, err
	}

	fields := strings.Split(coefficients, ",")
	k := Kernel{Coefficients: make([]float32, 0, len(fields)), Symmetry: sym}
	for i, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			return Kernel{}, fmt.Errorf("%w: coefficient %d is empty", ErrInvalidConfig, i)
		}
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return Kernel{}, fmt.Errorf("%w: coefficient %d: %w", ErrInvalidConfig, i, err)
		}
		k.Coefficients = append(k.Coefficients, float32(v))
	}
	return k, k.Validate()
}
