package main

import (
	"fmt"
	"log"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	fastfilter "github.com/tphakala/go-fastfilter"
)

const (
	// Sample format constants
	bitsPerSample16 = 16
	bitsPerSample24 = 24
	bitsPerSample32 = 32

	// Conversion constants
	maxInt16 = 32767.0
	maxInt24 = 8388607.0
	maxInt32 = 2147483647.0

	// WAV format tag for integer PCM
	wavFormatPCM = 1
)

// filterStats summarises a processed file.
type filterStats struct {
	sampleRate int
	channels   int
	bitDepth   int
	frames     int
}

// wavInput holds a fully decoded WAV file.
type wavInput struct {
	buffer     *audio.IntBuffer
	sampleRate int
	channels   int
	bitDepth   int
}

// readWAV opens, validates and decodes a whole WAV file.
func readWAV(path string) (*wavInput, error) {
	inputFile, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer func() { _ = inputFile.Close() }()

	decoder := wav.NewDecoder(inputFile)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file: %s", path)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	format := decoder.Format()
	in := &wavInput{
		buffer:     buf,
		sampleRate: format.SampleRate,
		channels:   format.NumChannels,
		bitDepth:   int(decoder.BitDepth),
	}
	if in.channels < 1 {
		return nil, fmt.Errorf("invalid channel count %d in %s", in.channels, path)
	}
	if getMaxValue(in.bitDepth) == 0 {
		return nil, fmt.Errorf("unsupported bit depth %d in %s", in.bitDepth, path)
	}
	return in, nil
}

// writeWAV encodes interleaved integer samples to path.
func writeWAV(path string, data []int, sampleRate, bitDepth, channels int) (err error) {
	outputFile, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if closeErr := outputFile.Close(); err == nil {
			err = closeErr
		}
	}()

	encoder := wav.NewEncoder(outputFile, sampleRate, bitDepth, channels, wavFormatPCM)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: bitDepth,
	}
	if err := encoder.Write(buf); err != nil {
		return fmt.Errorf("failed to write samples: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("failed to finalize WAV: %w", err)
	}
	return nil
}

// filterWAV filters every channel of inputPath and writes outputPath with the
// same format.
func filterWAV(f *fastfilter.Filter, inputPath, outputPath string) (*filterStats, error) {
	in, err := readWAV(inputPath)
	if err != nil {
		return nil, err
	}

	frames := len(in.buffer.Data) / in.channels
	if frames < f.MinExtent() {
		return nil, fmt.Errorf("%s has %d frames, kernel needs at least %d", inputPath, frames, f.MinExtent())
	}
	samples := in.buffer.Data[:frames*in.channels]

	maxVal := getMaxValue(in.bitDepth)
	data := toFloat32(samples, maxVal)

	// Each channel is one column of a frames x channels image.
	if err := f.ColumnsInPlace(data, in.channels, frames, in.channels); err != nil {
		return nil, fmt.Errorf("filtering failed: %w", err)
	}

	clipped := fromFloat32(data, samples, maxVal)
	if clipped > 0 {
		log.Printf("Warning: %d samples clipped", clipped)
	}

	if err := writeWAV(outputPath, samples, in.sampleRate, in.bitDepth, in.channels); err != nil {
		return nil, err
	}

	return &filterStats{
		sampleRate: in.sampleRate,
		channels:   in.channels,
		bitDepth:   in.bitDepth,
		frames:     frames,
	}, nil
}

// getMaxValue returns the full-scale integer value for a bit depth, or 0 if
// the depth is unsupported.
func getMaxValue(bitDepth int) float64 {
	switch bitDepth {
	case bitsPerSample16:
		return maxInt16
	case bitsPerSample24:
		return maxInt24
	case bitsPerSample32:
		return maxInt32
	default:
		return 0
	}
}

// toFloat32 normalizes integer samples to [-1, 1].
func toFloat32(samples []int, maxVal float64) []float32 {
	inv := 1.0 / maxVal
	out := make([]float32, len(samples))
	for i, s := range samples {
		out[i] = float32(float64(s) * inv)
	}
	return out
}

// fromFloat32 converts normalized samples back to integers in dst, clipping
// to full scale. It returns the number of clipped samples.
func fromFloat32(src []float32, dst []int, maxVal float64) int {
	clipped := 0
	for i, v := range src {
		sample := float64(v)
		if sample > 1.0 {
			sample = 1.0
			clipped++
		} else if sample < -1.0 {
			sample = -1.0
			clipped++
		}
		dst[i] = int(math.Round(sample * maxVal))
	}
	return clipped
}
