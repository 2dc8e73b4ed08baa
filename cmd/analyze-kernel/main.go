// Command analyze-kernel prints the impulse and frequency response of a
// symmetric kernel as applied by the row pass.
//
// Usage:
//
//	analyze-kernel -kernel 0.4,0.25,0.05
//	analyze-kernel -kernel 0,0.5 -symmetry odd -n 64
package main

import (
	"flag"
	"fmt"
	"log"

	fastfilter "github.com/tphakala/go-fastfilter"
)

const (
	defaultKernel  = "0.4,0.25,0.05"
	defaultFFTSize = 256
	defaultPoints  = 9    // Frequency rows to display
	stopbandStart  = 0.25 // Normalized frequency treated as stopband
	dcTolerance    = 1e-6 // Deviation from unity reported as a DC gain warning
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	kernelFlag := flag.String("kernel", defaultKernel, "One-sided kernel taps, centre first (comma separated)")
	symmetry := flag.String("symmetry", "even", "Kernel symmetry: even or odd")
	size := flag.Int("n", defaultFFTSize, "Transform size (signal length)")
	points := flag.Int("points", defaultPoints, "Number of frequency rows to print")
	flag.Parse()

	kernel, err := fastfilter.ParseKernel(*kernelFlag, *symmetry)
	if err != nil {
		return err
	}
	f, err := fastfilter.New(&fastfilter.Config{Kernel: kernel})
	if err != nil {
		return err
	}

	h, err := impulseResponse(f, *size)
	if err != nil {
		return err
	}
	report := analyze(h, *size/2, *points)

	fmt.Println("=== Analyzing Kernel ===")
	fmt.Printf("  Taps: %v\n", kernel.Coefficients)
	fmt.Printf("  Symmetry: %s\n", kernel.Symmetry)
	fmt.Printf("  Radius: %d (full length %d)\n", f.Radius(), f.MinExtent())

	fmt.Println("\nImpulse response:")
	for i, v := range report.taps {
		fmt.Printf("  h[%+d] = %g\n", i-f.Radius(), v)
	}

	fmt.Printf("\nDC gain: %.8f\n", report.dcGain)
	if kernel.Symmetry == fastfilter.SymmetryEven && !report.unityDC {
		fmt.Println("  (kernel is not normalized; DC level will change)")
	}

	fmt.Println("\nFrequency response:")
	fmt.Println("  freq      magnitude     dB")
	for _, row := range report.rows {
		fmt.Printf("  %.4f   %.8f   %8.2f\n", row.freq, row.magnitude, row.db)
	}
	fmt.Printf("\nPeak above %.2f: %.2f dB\n", stopbandStart, report.stopband)
	return nil
}
