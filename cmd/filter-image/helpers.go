package main

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"

	// Registered decoders.
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/ajroetker/go-highway/hwy/contrib/workerpool"

	fastfilter "github.com/tphakala/go-fastfilter"
)

const (
	// Minimum columns per band so each band still fills whole vectors.
	minBandWidth = 64

	maxGray = 255
)

// axis selects which directions are filtered.
type axis int

const (
	axisBoth axis = iota
	axisX
	axisY
)

func (a axis) String() string {
	switch a {
	case axisX:
		return "x"
	case axisY:
		return "y"
	default:
		return "both"
	}
}

func parseAxis(s string) (axis, error) {
	switch strings.ToLower(s) {
	case "both", "xy":
		return axisBoth, nil
	case "x":
		return axisX, nil
	case "y":
		return axisY, nil
	default:
		return 0, fmt.Errorf("unknown axis %q (want x, y or both)", s)
	}
}

// plane is a float32 grayscale image with rows stride elements apart.
type plane struct {
	data          []float32
	width, height int
	stride        int
}

// loadGray decodes an image file and converts it to a [0, 1] luminance plane.
func loadGray(path string) (*plane, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer func() { _ = file.Close() }()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return grayPlane(img), nil
}

// grayPlane converts any image to a luminance plane.
func grayPlane(img image.Image) *plane {
	b := img.Bounds()
	p := &plane{
		data:   make([]float32, b.Dx()*b.Dy()),
		width:  b.Dx(),
		height: b.Dy(),
		stride: b.Dx(),
	}
	for y := range p.height {
		row := p.data[y*p.stride:]
		for x := range p.width {
			g := color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray)
			row[x] = float32(g.Y) / maxGray
		}
	}
	return p
}

// toGray quantizes the plane after adding bias, clipping to [0, 1].
func toGray(p *plane, bias float32) *image.Gray {
	out := image.NewGray(image.Rect(0, 0, p.width, p.height))
	for y := range p.height {
		row := p.data[y*p.stride:]
		for x := range p.width {
			v := min(max(row[x]+bias, 0), 1)
			out.Pix[y*out.Stride+x] = uint8(v*maxGray + 0.5)
		}
	}
	return out
}

// saveGray encodes the plane as PNG or TIFF depending on the file extension.
func saveGray(path string, p *plane, bias float32) (err error) {
	img := toGray(p, bias)

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); err == nil {
			err = closeErr
		}
	}()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".tif", ".tiff":
		err = tiff.Encode(file, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		err = png.Encode(file, img)
	}
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return nil
}

// firstError records the first error reported from pool workers.
type firstError struct {
	mu  sync.Mutex
	err error
}

func (e *firstError) set(err error) {
	if err == nil {
		return
	}
	e.mu.Lock()
	if e.err == nil {
		e.err = err
	}
	e.mu.Unlock()
}

// filterRows runs the row pass over chunks of rows in parallel.
func filterRows(pool *workerpool.Pool, f *fastfilter.Filter, src, dst *plane) error {
	var fe firstError
	w := src.width
	pool.ParallelFor(src.height, func(start, end int) {
		for y := start; y < end; y++ {
			if err := f.Rows(src.data[y*src.stride:y*src.stride+w], dst.data[y*dst.stride:y*dst.stride+w]); err != nil {
				fe.set(fmt.Errorf("row %d: %w", y, err))
				return
			}
		}
	})
	return fe.err
}

// filterColumns runs the column pass over vertical bands in parallel. Bands
// share the stride, so each is a narrower image starting at its first column.
func filterColumns(pool *workerpool.Pool, f *fastfilter.Filter, src, dst *plane) error {
	bands := max(1, min(pool.NumWorkers(), src.width/minBandWidth))
	bandWidth := (src.width + bands - 1) / bands

	var fe firstError
	pool.ParallelFor(bands, func(start, end int) {
		for b := start; b < end; b++ {
			x0 := b * bandWidth
			x1 := min(x0+bandWidth, src.width)
			if x0 >= x1 {
				continue
			}
			if err := f.Columns(src.data[x0:], x1-x0, src.height, src.stride, dst.data[x0:], dst.stride); err != nil {
				fe.set(fmt.Errorf("columns %d-%d: %w", x0, x1, err))
				return
			}
		}
	})
	return fe.err
}

// filterPlane filters p in place along the selected axes.
func filterPlane(pool *workerpool.Pool, f *fastfilter.Filter, p *plane, ax axis) error {
	if ax == axisBoth || ax == axisX {
		if p.width < f.MinExtent() {
			return fmt.Errorf("image width %d is below the kernel extent %d", p.width, f.MinExtent())
		}
		tmp := &plane{data: make([]float32, len(p.data)), width: p.width, height: p.height, stride: p.stride}
		if err := filterRows(pool, f, p, tmp); err != nil {
			return err
		}
		p.data = tmp.data
	}
	if ax == axisBoth || ax == axisY {
		if p.height < f.MinExtent() {
			return fmt.Errorf("image height %d is below the kernel extent %d", p.height, f.MinExtent())
		}
		// Identical views: the column pass filters in place.
		if err := filterColumns(pool, f, p, p); err != nil {
			return err
		}
	}
	return nil
}
