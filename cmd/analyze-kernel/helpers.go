package main

import (
	"fmt"
	"math"

	fastfilter "github.com/tphakala/go-fastfilter"
	"github.com/tphakala/go-fastfilter/internal/analysis"
)

// impulseResponse filters a unit impulse at the centre of n samples.
func impulseResponse(f *fastfilter.Filter, n int) ([]float32, error) {
	if n < f.MinExtent() {
		return nil, fmt.Errorf("transform size %d is below the kernel extent %d", n, f.MinExtent())
	}
	in := make([]float32, n)
	in[n/2] = 1
	out := make([]float32, n)
	if err := f.Rows(in, out); err != nil {
		return nil, err
	}
	return out, nil
}

type responseRow struct {
	freq      float64
	magnitude float64
	db        float64
}

type kernelReport struct {
	taps     []float32
	dcGain   float64
	unityDC  bool
	rows     []responseRow
	stopband float64
}

// analyze summarises an impulse response centred at center.
func analyze(h []float32, center, points int) kernelReport {
	resp := analysis.FrequencyResponse(h, center)

	// Trim to the non-zero span around the centre.
	lo, hi := center, center
	for i := range h {
		if h[i] != 0 {
			lo = min(lo, i)
			hi = max(hi, i)
		}
	}
	radius := max(center-lo, hi-center)

	report := kernelReport{
		taps:     h[center-radius : center+radius+1],
		dcGain:   analysis.DCGain(h),
		stopband: analysis.StopbandFloor(resp, stopbandStart),
	}
	report.unityDC = math.Abs(report.dcGain-1) < dcTolerance

	bins := len(resp.Frequencies)
	points = max(2, min(points, bins))
	for p := range points {
		k := p * (bins - 1) / (points - 1)
		report.rows = append(report.rows, responseRow{
			freq:      resp.Frequencies[k],
			magnitude: resp.Magnitude[k],
			db:        analysis.MagnitudeDB(resp.Magnitude[k]),
		})
	}
	return report
}
