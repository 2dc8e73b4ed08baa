package engine

import "errors"

var (
	// ErrInvalidArgument reports a bad shape, stride, buffer length, aliasing,
	// or a signal too short for the kernel radius.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnsupportedSymmetry is returned when assembling a convolver for a
	// kernel that is neither even nor odd.
	ErrUnsupportedSymmetry = errors.New("unsupported kernel symmetry")
)
