// SPDX-License-Identifier: MIT
package spectral

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// DefaultTopK is the number of bins ranked when building an equation.
const DefaultTopK = 5

// SpectralComponent is one sinusoid of the additive approximation:
// Amplitude * sin(2*pi*FrequencyHz*t + PhaseRad).
type SpectralComponent struct {
	FrequencyHz float64 `json:"frequency_hz"`
	Amplitude   float64 `json:"amplitude"`
	PhaseRad    float64 `json:"phase_rad"`
}

// PeakAmplitude returns the time-domain peak of the sinusoid the bin
// stands for. A real sinusoid splits its energy between the positive and
// the mirrored bin, so this is twice Amplitude.
func (c SpectralComponent) PeakAmplitude() float64 {
	return 2 * c.Amplitude
}

// Term formats the component as an evaluator-compatible sine term with two
// decimal places per value.
func (c SpectralComponent) Term() string {
	return fmt.Sprintf("%.2f * sin(2*pi * %.2f * t + %.2f)", c.Amplitude, c.FrequencyHz, c.PhaseRad)
}

// FormatEquation joins the terms of components with " + ". It returns the
// empty string when components is empty.
func FormatEquation(components []SpectralComponent) string {
	terms := make([]string, len(components))
	for i, c := range components {
		terms[i] = c.Term()
	}
	return strings.Join(terms, " + ")
}

// ExtractTop ranks bins by magnitude and keeps the k largest, ordered from
// largest to smallest. Ranking happens before the positive-frequency
// filter: a DC or negative-frequency bin that ranks in the top k takes a
// slot but contributes no component, so fewer than k components may be
// returned. Ties keep their original bin order.
//
// Amplitudes are magnitude / sampleCount. A non-positive sampleCount falls
// back to len(bins).
func ExtractTop(bins []FrequencyBin, k, sampleCount int) ([]SpectralComponent, string) {
	components := toComponents(bins, topIndices(bins, k), sampleCount)
	return components, FormatEquation(components)
}

// ExtractTopPositive is ExtractTop with the positive-frequency filter
// applied before ranking, so up to k positive components are returned.
func ExtractTopPositive(bins []FrequencyBin, k, sampleCount int) ([]SpectralComponent, string) {
	positive := make([]FrequencyBin, 0, len(bins)/2)
	for _, b := range bins {
		if b.FrequencyHz > 0 {
			positive = append(positive, b)
		}
	}
	if sampleCount <= 0 {
		sampleCount = len(bins)
	}
	components := toComponents(positive, topIndices(positive, k), sampleCount)
	return components, FormatEquation(components)
}

// topIndices returns the indices of the k largest-magnitude bins in
// descending order of magnitude.
func topIndices(bins []FrequencyBin, k int) []int {
	if k <= 0 || len(bins) == 0 {
		return nil
	}

	mags := make([]float64, len(bins))
	order := make([]int, len(bins))
	for i, b := range bins {
		mags[i] = b.Magnitude()
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(mags[a], mags[b])
	})

	if k > len(order) {
		k = len(order)
	}
	top := order[len(order)-k:]
	slices.Reverse(top)
	return top
}

func toComponents(bins []FrequencyBin, indices []int, sampleCount int) []SpectralComponent {
	if sampleCount <= 0 {
		sampleCount = len(bins)
	}

	var components []SpectralComponent
	for _, idx := range indices {
		b := bins[idx]
		if b.FrequencyHz <= 0 {
			continue
		}
		components = append(components, SpectralComponent{
			FrequencyHz: b.FrequencyHz,
			Amplitude:   b.Magnitude() / float64(sampleCount),
			PhaseRad:    b.Phase(),
		})
	}
	return components
}
