// SPDX-License-Identifier: MIT
//
// Package synth ties spectral decomposition and expression synthesis
// together: audio in, equation out, and equation in, waveform out.
package synth

import (
	"fmt"

	"wavemath/internal/expr"
	applog "wavemath/internal/log"
	"wavemath/internal/signal"
	"wavemath/internal/spectral"
)

// Defaults used when GenerateFromEquation receives zero values.
const (
	DefaultDuration   = 10.0
	DefaultSampleRate = 44100
)

// ToneTemplate renders the reference sine for a frequency.
const ToneTemplate = "sin(2*pi*%g*t)"

// Equation describes the expression behind a synthesized waveform.
type Equation struct {
	Source      string   `json:"source"`
	Identifiers []string `json:"identifiers"`
	Generated   bool     `json:"generated"` // Produced by ComputeEquation rather than typed in.
}

// SynthesisResult is the waveform rendered from an equation.
type SynthesisResult struct {
	Waveform signal.Buffer
	Equation Equation
}

// Pipeline runs analysis and synthesis with fixed settings. It holds no
// mutable state and is safe for concurrent use.
type Pipeline struct {
	transformer   *spectral.Transformer
	topK          int
	positiveFirst bool
	duration      float64
	sampleRate    uint32
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithTransformer selects the FFT backend and window.
func WithTransformer(t *spectral.Transformer) Option {
	return func(p *Pipeline) {
		if t != nil {
			p.transformer = t
		}
	}
}

// WithTopK sets how many dominant bins are considered.
func WithTopK(k int) Option {
	return func(p *Pipeline) {
		if k > 0 {
			p.topK = k
		}
	}
}

// WithPositiveFirst drops non-positive frequencies before ranking, so every
// one of the k slots yields a component.
func WithPositiveFirst(enabled bool) Option {
	return func(p *Pipeline) { p.positiveFirst = enabled }
}

// WithDefaults replaces the duration and sample rate used for zero arguments.
func WithDefaults(durationSec float64, sampleRate uint32) Option {
	return func(p *Pipeline) {
		if durationSec > 0 {
			p.duration = durationSec
		}
		if sampleRate > 0 {
			p.sampleRate = sampleRate
		}
	}
}

// New returns a Pipeline using the gonum backend without windowing, the
// top five bins, 10 s and 44100 Hz unless overridden.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		transformer: spectral.NewTransformer(),
		topK:        spectral.DefaultTopK,
		duration:    DefaultDuration,
		sampleRate:  DefaultSampleRate,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// TopK returns the configured number of ranked bins.
func (p *Pipeline) TopK() int { return p.topK }

// Analyze transforms buf and extracts its dominant positive-frequency
// components. The full spectrum is returned alongside for plotting.
func (p *Pipeline) Analyze(buf signal.Buffer) ([]spectral.SpectralComponent, []spectral.FrequencyBin, error) {
	bins, err := p.transformer.Transform(buf)
	if err != nil {
		return nil, nil, err
	}

	var components []spectral.SpectralComponent
	if p.positiveFirst {
		components, _ = spectral.ExtractTopPositive(bins, p.topK, buf.Len())
	} else {
		components, _ = spectral.ExtractTop(bins, p.topK, buf.Len())
	}

	applog.Debugf("synth: analyzed %d samples at %d Hz with %s, %d of top %d bins kept",
		buf.Len(), buf.SampleRate(), p.transformer.Backend(), len(components), p.topK)
	return components, bins, nil
}

// ComputeEquation returns the sum-of-sines text for buf's dominant components.
func (p *Pipeline) ComputeEquation(buf signal.Buffer) (string, error) {
	components, _, err := p.Analyze(buf)
	if err != nil {
		return "", err
	}
	equation := spectral.FormatEquation(components)
	applog.Debugf("synth: equation %q", equation)
	return equation, nil
}

// GenerateFromEquation renders text over durationSec seconds at sampleRate.
// Zero values select the pipeline defaults.
func (p *Pipeline) GenerateFromEquation(text string, durationSec float64, sampleRate uint32) (SynthesisResult, error) {
	if durationSec == 0 {
		durationSec = p.duration
	}
	if sampleRate == 0 {
		sampleRate = p.sampleRate
	}

	program, err := expr.Compile(text)
	if err != nil {
		return SynthesisResult{}, err
	}
	waveform, err := program.Synthesize(durationSec, sampleRate)
	if err != nil {
		return SynthesisResult{}, err
	}

	applog.Debugf("synth: rendered %q as %d samples at %d Hz", program.String(), waveform.Len(), sampleRate)
	return SynthesisResult{
		Waveform: waveform,
		Equation: Equation{
			Source:      text,
			Identifiers: program.Identifiers(),
		},
	}, nil
}

// Resynthesize computes buf's equation and renders it at buf's own length
// and sample rate.
func (p *Pipeline) Resynthesize(buf signal.Buffer) (SynthesisResult, error) {
	equation, err := p.ComputeEquation(buf)
	if err != nil {
		return SynthesisResult{}, err
	}
	result, err := p.GenerateFromEquation(equation, buf.DurationSeconds(), buf.SampleRate())
	if err != nil {
		return SynthesisResult{}, fmt.Errorf("resynthesizing %q: %w", equation, err)
	}
	result.Equation.Generated = true
	return result, nil
}

// Tone renders a sine at frequencyHz with the standard 0.5 peak.
func (p *Pipeline) Tone(frequencyHz, durationSec float64, sampleRate uint32) (SynthesisResult, error) {
	if frequencyHz <= 0 {
		return SynthesisResult{}, fmt.Errorf("%w: tone frequency %v Hz", signal.ErrInvalidInput, frequencyHz)
	}
	return p.GenerateFromEquation(fmt.Sprintf(ToneTemplate, frequencyHz), durationSec, sampleRate)
}
