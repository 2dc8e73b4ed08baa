// Package fastfilter provides vectorized separable convolution of float32
// signals and images with symmetric kernels.
//
// A kernel of radius R is given by its R+1 one-sided taps: Coefficients[0] is
// the centre tap and Coefficients[k] applies at distance k on both sides.
// Even kernels add the two mirrored neighbours before multiplying, odd
// kernels (derivatives) subtract the left neighbour from the right one, so
// every output sample costs R multiply-adds instead of 2R+1.
//
// # Quick Start
//
// For a one-shot row convolution:
//
//	kernel := fastfilter.Kernel{
//	    Coefficients: []float32{0.4, 0.25, 0.05},
//	    Symmetry:     fastfilter.SymmetryEven,
//	}
//	out := make([]float32, len(signal))
//	if err := fastfilter.ConvolveRows(kernel, signal, out); err != nil {
//	    log.Fatal(err)
//	}
//
// For repeated use, assemble a Filter once:
//
//	f, err := fastfilter.New(&fastfilter.Config{Kernel: kernel, FixedRadius: true})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	// Smooth along x, then along y.
//	for y := 0; y < height; y++ {
//	    row := y * stride
//	    if err := f.Rows(img[row:row+width], tmp[row:row+width]); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//	err = f.Columns(tmp, width, height, stride, img, stride)
//
// # Borders
//
// Samples outside the signal are taken by mirroring about the first and last
// sample without repeating them: position -1 reads sample 1 and position N
// reads sample N-2. A kernel of radius R therefore needs at least 2R+1
// samples along the filtered axis; shorter inputs are rejected with
// [ErrInvalidArgument].
//
// # Column Pass
//
// [Filter.Columns] filters every column of a strided image at once. Rows are
// computed with vectors across x into a ring of R+1 rows held in aligned
// scratch memory, and each finished row is copied to the output once no later
// row needs the input it replaces. The output may therefore be the very same
// view as the input (same first element and stride). The row pass does not
// support aliasing.
//
// # Reproducibility
//
// Every code path accumulates in the same order with one rounding per
// multiply-add, so results are bit-identical across backends, vector widths,
// fixed and runtime radius selection, and row versus single-column filtering.
//
// # Thread Safety
//
// A [Filter] is immutable after [New] and may be used from multiple goroutines
// at once, provided the goroutines work on disjoint output buffers.
package fastfilter
