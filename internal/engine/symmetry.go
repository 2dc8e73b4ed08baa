package engine

import "fmt"

// Symmetry describes how the taps on either side of the centre relate.
type Symmetry int

const (
	// Even kernels satisfy k[-i] == k[i]; mirrored neighbours are summed.
	Even Symmetry = iota

	// Odd kernels satisfy k[-i] == -k[i]; the left neighbour is subtracted
	// from the right one.
	Odd

	// NotSymmetric kernels cannot be folded and are rejected.
	NotSymmetric
)

// String returns the symmetry name.
func (s Symmetry) String() string {
	switch s {
	case Even:
		return "even"
	case Odd:
		return "odd"
	case NotSymmetric:
		return "not-symmetric"
	default:
		return fmt.Sprintf("Symmetry(%d)", int(s))
	}
}

func (s Symmetry) validate() error {
	if s != Even && s != Odd {
		return fmt.Errorf("%w: %s", ErrUnsupportedSymmetry, s)
	}
	return nil
}

// combine folds the right and left neighbour spans of one tap into dst.
func (e *Engine) combine(dst, right, left []float32) {
	if e.sym == Odd {
		e.b.Sub(dst, right, left)
		return
	}
	e.b.Add(dst, right, left)
}

// combine1 is combine for a single pair of samples.
func (e *Engine) combine1(right, left float32) float32 {
	if e.sym == Odd {
		return right - left
	}
	return right + left
}
