// Package analysis computes frequency-domain properties of filter impulse responses.
package analysis

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
)

const (
	minMagnitude = 1e-10 // Avoid log(0)
	dbMultiplier = 20.0  // 20*log10 for magnitude
)

// Response holds the frequency response of a filter.
type Response struct {
	// Frequencies at which response was calculated (normalized, 0 to 0.5)
	Frequencies []float64

	// Magnitude response at each frequency (linear scale)
	Magnitude []float64

	// Phase response at each frequency (radians), relative to the centre tap
	Phase []float64
}

// FrequencyResponse evaluates the response of an impulse response h whose
// centre tap sits at index center. len(h) sets the frequency resolution:
// the result has len(h)/2+1 bins from DC to Nyquist.
func FrequencyResponse(h []float32, center int) Response {
	n := len(h)
	seq := make([]float64, n)
	// Rotate so the centre tap is at index 0; a symmetric kernel then has a
	// purely real (even) or purely imaginary (odd) spectrum.
	for i, v := range h {
		seq[(i-center+n)%n] = float64(v)
	}

	coeffs := fourier.NewFFT(n).Coefficients(nil, seq)
	r := Response{
		Frequencies: make([]float64, len(coeffs)),
		Magnitude:   make([]float64, len(coeffs)),
		Phase:       make([]float64, len(coeffs)),
	}
	for k, c := range coeffs {
		r.Frequencies[k] = float64(k) / float64(n)
		r.Magnitude[k] = cmplx.Abs(c)
		r.Phase[k] = cmplx.Phase(c)
	}
	return r
}

// MagnitudeDB converts linear magnitude to decibels.
func MagnitudeDB(magnitude float64) float64 {
	if magnitude < minMagnitude {
		magnitude = minMagnitude
	}
	return dbMultiplier * math.Log10(magnitude)
}

// DCGain returns the sum of an impulse response.
func DCGain(h []float32) float64 {
	s := make([]float64, len(h))
	for i, v := range h {
		s[i] = float64(v)
	}
	return floats.Sum(s)
}

// StopbandFloor returns the largest magnitude, in dB, at or above the
// normalized frequency from.
func StopbandFloor(r Response, from float64) float64 {
	peak := 0.0
	for k, f := range r.Frequencies {
		if f >= from {
			peak = max(peak, r.Magnitude[k])
		}
	}
	return MagnitudeDB(peak)
}
