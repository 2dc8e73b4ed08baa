package fastfilter

import "github.com/tphakala/go-fastfilter/internal/scratch"

// Scratch defaults.
const (
	// DefaultScratchAlignment aligns column-pass scratch to a cache line.
	DefaultScratchAlignment = scratch.DefaultAlignment

	// DefaultMaxScratchBytes caps one column-pass scratch allocation.
	DefaultMaxScratchBytes = scratch.DefaultMaxBytes
)
