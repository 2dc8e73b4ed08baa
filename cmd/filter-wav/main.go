// Command filter-wav applies a symmetric FIR kernel along time to every
// channel of a WAV file.
//
// Usage:
//
//	filter-wav -kernel 0.4,0.25,0.05 input.wav output.wav
//	filter-wav -kernel 0,0.5 -symmetry odd input.wav slope.wav
//
// The kernel is given as its one-sided taps, centre first. Interleaved frames
// are filtered in place with the column pass: one column per channel.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	fastfilter "github.com/tphakala/go-fastfilter"
)

const (
	// CLI defaults
	defaultKernel   = "0.4,0.25,0.05"
	minRequiredArgs = 2
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	kernelFlag := flag.String("kernel", defaultKernel, "One-sided kernel taps, centre first (comma separated)")
	symmetry := flag.String("symmetry", "even", "Kernel symmetry: even or odd")
	scalar := flag.Bool("scalar", false, "Use the scalar backend instead of vector instructions")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	args := flag.Args()
	if len(args) < minRequiredArgs {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] input.wav output.wav\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -kernel 0.4,0.25,0.05 in.wav smooth.wav   # 5-tap smoothing\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -kernel 0,0.5 -symmetry odd in.wav d.wav  # central difference\n", os.Args[0])
		return fmt.Errorf("insufficient arguments")
	}

	kernel, err := fastfilter.ParseKernel(*kernelFlag, *symmetry)
	if err != nil {
		return err
	}

	if *verbose {
		fastfilter.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	backend := fastfilter.BackendAuto
	if *scalar {
		backend = fastfilter.BackendScalar
	}
	f, err := fastfilter.New(&fastfilter.Config{
		Kernel:      kernel,
		Backend:     backend,
		FixedRadius: true,
	})
	if err != nil {
		return err
	}

	inputPath, outputPath := args[0], args[1]
	if *verbose {
		info := fastfilter.GetInfo(f)
		log.Printf("Input: %s", inputPath)
		log.Printf("Output: %s", outputPath)
		log.Printf("Kernel: %v (%s, radius %d)", kernel.Coefficients, kernel.Symmetry, info.Radius)
		log.Printf("Backend: %s (%d lanes, %s)", info.Backend, info.Lanes, info.SIMDType)
	}

	start := time.Now()
	stats, err := filterWAV(f, inputPath, outputPath)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("Filtered %s -> %s\n", filepath.Base(inputPath), filepath.Base(outputPath))
	fmt.Printf("  %d Hz, %d channels, %d-bit, %d frames\n",
		stats.sampleRate, stats.channels, stats.bitDepth, stats.frames)
	fmt.Printf("  Duration: %.2fs, Speed: %.1fx realtime\n",
		elapsed.Seconds(),
		float64(stats.frames)/float64(stats.sampleRate)/elapsed.Seconds())

	return nil
}
