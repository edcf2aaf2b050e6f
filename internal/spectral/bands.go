// SPDX-License-Identifier: MIT
package spectral

import "math"

// FrequencyBand names a half-open frequency range [LowHz, HighHz).
type FrequencyBand struct {
	Name   string  `json:"name"`
	LowHz  float64 `json:"low_hz"`
	HighHz float64 `json:"high_hz"`
}

// BandLevel is the mean component amplitude measured inside a band.
type BandLevel struct {
	FrequencyBand
	Level float64 `json:"level"`
	Bins  int     `json:"bins"`
}

// DefaultBands covers the audible range in six perceptual bands. The top
// band is open-ended and stops at whatever Nyquist the buffer has.
var DefaultBands = []FrequencyBand{
	{Name: "sub", LowHz: 20, HighHz: 60},
	{Name: "bass", LowHz: 60, HighHz: 250},
	{Name: "lowMid", LowHz: 250, HighHz: 500},
	{Name: "mid", LowHz: 500, HighHz: 2000},
	{Name: "highMid", LowHz: 2000, HighHz: 4000},
	{Name: "treble", LowHz: 4000, HighHz: math.Inf(1)},
}

// BandLevels averages |X|/sampleCount over the positive-frequency bins that
// fall in each of DefaultBands. Bands with no bins report a zero level. The
// open top edge is reported as the highest positive bin frequency, so every
// returned edge is finite.
func BandLevels(bins []FrequencyBin, sampleCount int) []BandLevel {
	if sampleCount <= 0 {
		sampleCount = len(bins)
	}

	levels := make([]BandLevel, len(DefaultBands))
	for i, band := range DefaultBands {
		levels[i].FrequencyBand = band
	}

	var topHz float64
	for _, b := range bins {
		if b.FrequencyHz <= 0 {
			continue
		}
		topHz = max(topHz, b.FrequencyHz)
		for i := range levels {
			if b.FrequencyHz >= levels[i].LowHz && b.FrequencyHz < levels[i].HighHz {
				levels[i].Level += b.Magnitude()
				levels[i].Bins++
				break
			}
		}
	}

	for i := range levels {
		if levels[i].Bins > 0 {
			levels[i].Level /= float64(levels[i].Bins) * float64(sampleCount)
		}
		if math.IsInf(levels[i].HighHz, 1) {
			levels[i].HighHz = max(topHz, levels[i].LowHz)
		}
	}
	return levels
}
