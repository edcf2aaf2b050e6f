// SPDX-License-Identifier: MIT
//
// Package render turns waveforms and spectra into plot frames and hands
// them to a transport.
package render

import (
	"errors"
	"math"

	applog "wavemath/internal/log"
	"wavemath/internal/signal"
	"wavemath/internal/spectral"
	"wavemath/internal/transport"
)

// DefaultMaxPoints bounds each plotted series.
const DefaultMaxPoints = 2048

// ErrNoData is returned when there is nothing to plot.
var ErrNoData = errors.New("nothing to plot")

// Plotter builds frames and sends them on a transport.
type Plotter struct {
	transport transport.Transport
	maxPoints int
}

// NewPlotter returns a Plotter that decimates every series to maxPoints.
// Values below 2 select DefaultMaxPoints.
func NewPlotter(t transport.Transport, maxPoints int) *Plotter {
	if maxPoints < 2 {
		maxPoints = DefaultMaxPoints
	}
	return &Plotter{transport: t, maxPoints: maxPoints}
}

// PlotWaveform sends buf as a WaveformFrame.
func (p *Plotter) PlotWaveform(title string, buf signal.Buffer) error {
	frame, err := p.WaveformFrame(title, buf)
	if err != nil {
		return err
	}
	applog.Debugf("render: %s %q, %d points", frame.Kind, title, len(frame.Times))
	return p.transport.Send(frame)
}

// PlotSpectrum sends the positive half of bins as a SpectrumFrame, with the
// dominant components attached when given.
func (p *Plotter) PlotSpectrum(title string, bins []spectral.FrequencyBin, components []spectral.SpectralComponent) error {
	frame, err := p.SpectrumFrame(title, bins, components)
	if err != nil {
		return err
	}
	applog.Debugf("render: %s %q, %d points", frame.Kind, title, len(frame.Frequencies))
	return p.transport.Send(frame)
}

// WaveformFrame builds the frame PlotWaveform sends.
func (p *Plotter) WaveformFrame(title string, buf signal.Buffer) (WaveformFrame, error) {
	if buf.IsZero() {
		return WaveformFrame{}, ErrNoData
	}

	samples := buf.Samples()
	times := buf.Times()
	keep := peakIndices(samples, p.maxPoints, math.Abs)

	frame := WaveformFrame{
		Kind:            KindWaveform,
		Title:           title,
		SampleRate:      buf.SampleRate(),
		DurationSeconds: buf.DurationSeconds(),
		Times:           make([]float64, len(keep)),
		Amplitudes:      make([]float64, len(keep)),
	}
	for i, idx := range keep {
		frame.Times[i] = times[idx]
		frame.Amplitudes[i] = samples[idx]
	}
	return frame, nil
}

// SpectrumFrame builds the frame PlotSpectrum sends.
func (p *Plotter) SpectrumFrame(title string, bins []spectral.FrequencyBin, components []spectral.SpectralComponent) (SpectrumFrame, error) {
	half := spectral.PositiveHalf(bins)
	if len(half) == 0 {
		return SpectrumFrame{}, ErrNoData
	}

	magnitudes := make([]float64, len(half))
	for i, b := range half {
		magnitudes[i] = b.Magnitude()
	}
	keep := peakIndices(magnitudes, p.maxPoints, func(v float64) float64 { return v })

	frame := SpectrumFrame{
		Kind:        KindSpectrum,
		Title:       title,
		Frequencies: make([]float64, len(keep)),
		Magnitudes:  make([]float64, len(keep)),
		Real:        make([]float64, len(keep)),
		Imag:        make([]float64, len(keep)),
		Bands:       make(map[string]float64),
		Components:  components,
	}
	for i, idx := range keep {
		frame.Frequencies[i] = half[idx].FrequencyHz
		frame.Magnitudes[i] = magnitudes[idx]
		frame.Real[i] = half[idx].Real
		frame.Imag[i] = half[idx].Imag
	}
	for _, band := range spectral.BandLevels(bins, len(bins)) {
		frame.Bands[band.Name] = band.Level
	}
	return frame, nil
}

// peakIndices splits values into at most maxPoints consecutive groups and
// returns, per group, the index whose weight is largest. Series that
// already fit are returned whole.
func peakIndices(values []float64, maxPoints int, weight func(float64) float64) []int {
	n := len(values)
	if n <= maxPoints {
		keep := make([]int, n)
		for i := range keep {
			keep[i] = i
		}
		return keep
	}

	group := (n + maxPoints - 1) / maxPoints
	keep := make([]int, 0, maxPoints)
	for start := 0; start < n; start += group {
		end := min(start+group, n)
		best := start
		for i := start + 1; i < end; i++ {
			if weight(values[i]) > weight(values[best]) {
				best = i
			}
		}
		keep = append(keep, best)
	}
	return keep
}
