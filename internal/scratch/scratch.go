// Package scratch provides aligned, guarded float32 work buffers.
//
// Each Buffer owns one raw byte allocation. The usable region starts at the
// first address inside it that is a multiple of the requested alignment, and a
// fixed guard tag is written immediately after the usable region. Release
// verifies the tag so that writes past the end of the scratch are reported
// rather than silently corrupting neighbouring data.
//
// Go's collector does not move heap objects, so the aligned offset computed at
// allocation time stays valid for the lifetime of the Buffer.
package scratch

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"unsafe"

	"github.com/tphakala/go-fastfilter/internal/logging"
)

const (
	// DefaultAlignment is the cache-line alignment used when none is configured.
	DefaultAlignment = 64

	// MaxAlignment is the exclusive upper bound on alignment.
	MaxAlignment = 256

	// DefaultMaxBytes caps a single allocation at 1 GiB.
	DefaultMaxBytes = 1 << 30

	minAlignment = 4 // sizeof(float32)
	guardSize    = 8
	guardTag     = uint64(0xF17E_5C2A_7C4B_0A1D)
)

var (
	// ErrInvalidAlignment is returned when the alignment is not a power of two below MaxAlignment.
	ErrInvalidAlignment = errors.New("scratch: invalid alignment")

	// ErrExhausted is returned when the request exceeds the size cap or cannot be satisfied.
	ErrExhausted = errors.New("scratch: allocation failed")

	// ErrCorrupted is returned by Release when the guard tag was overwritten.
	ErrCorrupted = errors.New("scratch: guard overwritten")

	// ErrReleased is returned when a Buffer is released twice.
	ErrReleased = errors.New("scratch: buffer already released")
)

// Allocator hands out Buffers. The zero value uses DefaultAlignment and DefaultMaxBytes.
type Allocator struct {
	// Alignment of the usable region in bytes. Values below 4 are raised to 4.
	Alignment int

	// MaxBytes caps the usable size of a single allocation.
	MaxBytes int
}

// Buffer is an aligned scratch region. It is owned by the variable Alloc's
// result was assigned to and must not be copied; Release drops it.
type Buffer struct {
	raw    []byte
	offset int
	size   int
	align  int
}

// ResolveAlignment applies defaults and validates an alignment value.
func ResolveAlignment(align int) (int, error) {
	if align == 0 {
		return DefaultAlignment, nil
	}
	if align < 0 || align >= MaxAlignment || align&(align-1) != 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidAlignment, align)
	}
	return max(align, minAlignment), nil
}

// Alloc returns a Buffer with size usable bytes. size is rounded up to a
// whole number of float32 elements.
func (a Allocator) Alloc(size int) (Buffer, error) {
	align, err := ResolveAlignment(a.Alignment)
	if err != nil {
		return Buffer{}, err
	}
	limit := a.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	if size < 0 {
		return Buffer{}, fmt.Errorf("%w: negative size %d", ErrExhausted, size)
	}
	size = (size + minAlignment - 1) &^ (minAlignment - 1)
	if size > limit {
		return Buffer{}, fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrExhausted, size, limit)
	}

	raw, err := allocRaw(size + align - 1 + guardSize)
	if err != nil {
		return Buffer{}, err
	}

	base := uintptr(unsafe.Pointer(unsafe.SliceData(raw)))
	offset := int((uintptr(align) - base%uintptr(align)) % uintptr(align))

	b := Buffer{raw: raw, offset: offset, size: size, align: align}
	binary.LittleEndian.PutUint64(b.guard(), guardTag)

	// Checked first so the column pass stays at one allocation when silent.
	if l := logging.Logger(); l.Enabled(context.Background(), slog.LevelDebug) {
		l.Debug("scratch allocated",
			"bytes", size,
			"alignment", align,
			"offset", offset)
	}
	return b, nil
}

// allocRaw converts a runtime allocation panic into ErrExhausted.
func allocRaw(n int) (raw []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			raw = nil
			err = fmt.Errorf("%w: %v", ErrExhausted, r)
		}
	}()
	return make([]byte, n), nil
}

// Floats returns the usable region viewed as float32 elements.
func (b *Buffer) Floats() []float32 {
	n := b.size / minAlignment
	if n == 0 || b.raw == nil {
		return nil
	}
	return unsafe.Slice((*float32)(unsafe.Pointer(&b.raw[b.offset])), n)
}

// Size returns the usable size in bytes.
func (b *Buffer) Size() int { return b.size }

// Alignment returns the alignment of the usable region.
func (b *Buffer) Alignment() int { return b.align }

func (b *Buffer) guard() []byte {
	start := b.offset + b.size
	return b.raw[start : start+guardSize]
}

// Release checks the guard tag and drops the allocation. Releasing twice, or
// releasing a zero Buffer, returns ErrReleased.
func (b *Buffer) Release() error {
	if b.raw == nil {
		return ErrReleased
	}
	ok := binary.LittleEndian.Uint64(b.guard()) == guardTag
	b.raw = nil
	if !ok {
		return fmt.Errorf("%w: %d-byte buffer", ErrCorrupted, b.size)
	}
	return nil
}
