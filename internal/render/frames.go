// SPDX-License-Identifier: MIT
package render

import "wavemath/internal/spectral"

// Frame kinds.
const (
	KindWaveform = "waveform"
	KindSpectrum = "spectrum"
)

// WaveformFrame is amplitude against time.
type WaveformFrame struct {
	Kind            string    `json:"kind"`
	Title           string    `json:"title"`
	SampleRate      uint32    `json:"sampleRate"`
	DurationSeconds float64   `json:"durationSeconds"`
	Times           []float64 `json:"times"`
	Amplitudes      []float64 `json:"amplitudes"`
}

// SpectrumFrame is the positive half of a spectrum: magnitude plus the
// real and imaginary parts per frequency, and the mean level per band.
type SpectrumFrame struct {
	Kind        string                       `json:"kind"`
	Title       string                       `json:"title"`
	Frequencies []float64                    `json:"frequencies"`
	Magnitudes  []float64                    `json:"magnitudes"`
	Real        []float64                    `json:"real"`
	Imag        []float64                    `json:"imag"`
	Bands       map[string]float64           `json:"bands"`
	Components  []spectral.SpectralComponent `json:"components,omitempty"`
}

// PlotMagnitudes returns the magnitude series for binary transports.
func (f SpectrumFrame) PlotMagnitudes() []float64 {
	return f.Magnitudes
}
