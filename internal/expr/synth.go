// SPDX-License-Identifier: MIT
package expr

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"wavemath/internal/signal"
)

// NormalizedPeak is the peak absolute value of every synthesized waveform.
const NormalizedPeak = 0.5

// TimeVector returns round(durationSec*sampleRate) sample instants i/sampleRate.
func TimeVector(durationSec float64, sampleRate uint32) ([]float64, error) {
	if sampleRate == 0 || durationSec <= 0 || math.IsNaN(durationSec) || math.IsInf(durationSec, 0) {
		return nil, fmt.Errorf("%w: duration %v s at %d Hz", signal.ErrInvalidInput, durationSec, sampleRate)
	}
	total := math.Round(durationSec * float64(sampleRate))
	if total < 1 || total > math.MaxInt32 {
		return nil, fmt.Errorf("%w: %v samples", signal.ErrInvalidInput, total)
	}

	t := make([]float64, int(total))
	rate := float64(sampleRate)
	for i := range t {
		t[i] = float64(i) / rate
	}
	return t, nil
}

// Normalize scales raw so that its peak absolute value is NormalizedPeak.
func Normalize(raw []float64) ([]float64, error) {
	if len(raw) == 0 {
		return nil, &SynthesisError{Reason: "empty waveform"}
	}
	peak := floats.Norm(raw, math.Inf(1))
	if peak == 0 {
		return nil, &SynthesisError{Reason: "waveform is silent"}
	}
	if math.IsNaN(peak) || math.IsInf(peak, 0) {
		return nil, &SynthesisError{Reason: "waveform contains non-finite samples"}
	}

	out := make([]float64, len(raw))
	floats.ScaleTo(out, NormalizedPeak/peak, raw)
	return out, nil
}

// Synthesize evaluates the program over durationSec seconds at sampleRate
// and returns the normalized waveform.
func (p *Program) Synthesize(durationSec float64, sampleRate uint32) (signal.Buffer, error) {
	if !p.UsesTime() {
		return signal.Buffer{}, &SynthesisError{Reason: fmt.Sprintf("expression %q does not depend on t", p.source)}
	}

	t, err := TimeVector(durationSec, sampleRate)
	if err != nil {
		return signal.Buffer{}, err
	}
	raw, err := p.Eval(t)
	if err != nil {
		return signal.Buffer{}, err
	}
	for i, v := range raw {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return signal.Buffer{}, &SynthesisError{Reason: fmt.Sprintf("non-finite sample %v at t=%g", v, t[i])}
		}
	}

	samples, err := Normalize(raw)
	if err != nil {
		return signal.Buffer{}, err
	}
	buf, err := signal.New(samples, sampleRate)
	if err != nil {
		return signal.Buffer{}, &SynthesisError{Reason: "packaging waveform", Err: err}
	}
	return buf, nil
}

// Synthesize compiles text and synthesizes it.
func Synthesize(text string, durationSec float64, sampleRate uint32) (signal.Buffer, error) {
	p, err := Compile(text)
	if err != nil {
		return signal.Buffer{}, err
	}
	return p.Synthesize(durationSec, sampleRate)
}
