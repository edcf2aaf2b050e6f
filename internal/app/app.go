// SPDX-License-Identifier: MIT
//
// Package app implements the user-facing actions: playing files and tones,
// analyzing audio, computing its equation and generating audio from an
// equation. Devices, plots and files are reached through injected
// dependencies.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	applog "wavemath/internal/log"
	"wavemath/internal/signal"
	"wavemath/internal/spectral"
	"wavemath/internal/synth"
)

// ErrNoPlayer is returned by playback actions when no player is configured.
var ErrNoPlayer = errors.New("no audio player configured")

// Player plays a buffer, blocking until it finishes or ctx is done.
type Player interface {
	Play(ctx context.Context, buf signal.Buffer) error
}

// Plotter publishes waveform and spectrum plots.
type Plotter interface {
	PlotWaveform(title string, buf signal.Buffer) error
	PlotSpectrum(title string, bins []spectral.FrequencyBin, components []spectral.SpectralComponent) error
}

// LoadFunc decodes an audio file.
type LoadFunc func(path string) (signal.Buffer, error)

// SaveFunc writes a buffer to a file.
type SaveFunc func(path string, buf signal.Buffer, bitDepth int) error

// Settings are the per-action parameters taken from configuration.
type Settings struct {
	ToneFrequency float64
	ToneDuration  float64
	Duration      float64
	SampleRate    uint32
	Play          bool   // Play generated waveforms.
	OutputPath    string // Export generated waveforms when set.
	BitDepth      int
}

// DefaultSettings mirrors the classic menu: a 440 Hz, 2 s tone and 10 s of
// generated audio at 44100 Hz, played but not exported.
func DefaultSettings() Settings {
	return Settings{
		ToneFrequency: 440,
		ToneDuration:  2,
		Duration:      synth.DefaultDuration,
		SampleRate:    synth.DefaultSampleRate,
		Play:          true,
		BitDepth:      16,
	}
}

// App runs menu and command actions.
type App struct {
	pipeline *synth.Pipeline
	player   Player
	plotter  Plotter
	load     LoadFunc
	save     SaveFunc
	out      io.Writer
	settings Settings

	mu         sync.Mutex
	cancel     context.CancelFunc
	generation uint64
}

// Option configures an App.
type Option func(*App)

// WithPlayer sets the audio output.
func WithPlayer(p Player) Option { return func(a *App) { a.player = p } }

// WithPlotter sets the plot sink.
func WithPlotter(p Plotter) Option { return func(a *App) { a.plotter = p } }

// WithLoader sets the audio file decoder.
func WithLoader(fn LoadFunc) Option { return func(a *App) { a.load = fn } }

// WithSaver sets the waveform exporter.
func WithSaver(fn SaveFunc) Option { return func(a *App) { a.save = fn } }

// WithOutput sets where equations and summaries are printed.
func WithOutput(w io.Writer) Option { return func(a *App) { a.out = w } }

// WithSettings replaces DefaultSettings.
func WithSettings(s Settings) Option { return func(a *App) { a.settings = s } }

// New returns an App around pipeline. Without a loader every file action
// fails; without a plotter plots are skipped.
func New(pipeline *synth.Pipeline, opts ...Option) *App {
	a := &App{
		pipeline: pipeline,
		out:      os.Stdout,
		settings: DefaultSettings(),
		load: func(path string) (signal.Buffer, error) {
			return signal.Buffer{}, fmt.Errorf("no audio loader configured for %s", path)
		},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Settings returns the active settings.
func (a *App) Settings() Settings {
	return a.settings
}

// PlayFile plays an audio file until it ends or Stop is called.
func (a *App) PlayFile(ctx context.Context, path string) error {
	buf, err := a.load(path)
	if err != nil {
		return err
	}
	applog.Infof("Playing %s (%s)", path, buf.Duration())
	return a.play(ctx, buf)
}

// PlayTone plays the configured reference sine.
func (a *App) PlayTone(ctx context.Context) error {
	result, err := a.pipeline.Tone(a.settings.ToneFrequency, a.settings.ToneDuration, a.settings.SampleRate)
	if err != nil {
		return err
	}
	applog.Infof("Playing %g Hz sine for %gs", a.settings.ToneFrequency, a.settings.ToneDuration)
	return a.play(ctx, result.Waveform)
}

// Analyze plots the waveform and spectrum of an audio file and returns its
// dominant components.
func (a *App) Analyze(path string) ([]spectral.SpectralComponent, error) {
	buf, err := a.load(path)
	if err != nil {
		return nil, err
	}

	a.plotWaveform("Waveform", buf)

	components, bins, err := a.pipeline.Analyze(buf)
	if err != nil {
		return nil, err
	}
	a.plotSpectrum("Frequency Spectrum (Fourier Transform)", bins, components)

	fmt.Fprintf(a.out, "%s: %d samples at %d Hz (%.2fs)\n", path, buf.Len(), buf.SampleRate(), buf.DurationSeconds())
	for _, c := range components {
		fmt.Fprintf(a.out, "  %10.2f Hz  amplitude %.4f  phase %+.2f rad\n", c.FrequencyHz, c.Amplitude, c.PhaseRad)
	}
	return components, nil
}

// ComputeEquation prints and returns the sum-of-sines equation of an audio
// file. When an output path is set the equation is rendered at the file's
// length and rate and exported there.
func (a *App) ComputeEquation(path string) (string, error) {
	buf, err := a.load(path)
	if err != nil {
		return "", err
	}
	equation, err := a.pipeline.ComputeEquation(buf)
	if err != nil {
		return "", err
	}

	fmt.Fprintln(a.out, "Waveform Equation:")
	fmt.Fprintln(a.out, equation)

	if a.settings.OutputPath != "" && equation != "" {
		result, err := a.pipeline.GenerateFromEquation(equation, buf.DurationSeconds(), buf.SampleRate())
		if err != nil {
			return equation, err
		}
		if err := a.export(a.settings.OutputPath, result.Waveform); err != nil {
			return equation, err
		}
	}
	return equation, nil
}

// Generate renders text, exports it when an output path is set, plays it
// when enabled, then plots its waveform and spectrum.
func (a *App) Generate(ctx context.Context, text string) (synth.SynthesisResult, error) {
	result, err := a.pipeline.GenerateFromEquation(text, a.settings.Duration, a.settings.SampleRate)
	if err != nil {
		return synth.SynthesisResult{}, fmt.Errorf("error generating music: %w", err)
	}

	if a.settings.OutputPath != "" {
		if err := a.export(a.settings.OutputPath, result.Waveform); err != nil {
			return result, err
		}
	}

	if a.settings.Play {
		if err := a.play(ctx, result.Waveform); err != nil {
			return result, err
		}
	}

	a.plotWaveform("Generated Waveform", result.Waveform)
	if a.plotter != nil {
		components, bins, err := a.pipeline.Analyze(result.Waveform)
		if err != nil {
			return result, err
		}
		a.plotSpectrum("Frequency Spectrum", bins, components)
	}
	return result, nil
}

// Stop cancels in-flight playback. It is a no-op when nothing is playing.
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
		applog.Infof("Playback stopped")
	}
}

// Playing reports whether a playback is in flight.
func (a *App) Playing() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cancel != nil
}

// play runs one playback at a time; starting a new one stops the previous.
func (a *App) play(ctx context.Context, buf signal.Buffer) error {
	if a.player == nil {
		return ErrNoPlayer
	}

	ctx, cancel := context.WithCancel(ctx)
	a.mu.Lock()
	if a.cancel != nil {
		a.cancel()
	}
	a.cancel = cancel
	a.generation++
	gen := a.generation
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		if a.generation == gen {
			a.cancel = nil
		}
		a.mu.Unlock()
		cancel()
	}()

	err := a.player.Play(ctx, buf)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (a *App) export(path string, buf signal.Buffer) error {
	if a.save == nil {
		return fmt.Errorf("no exporter configured for %s", path)
	}
	if err := a.save(path, buf, a.settings.BitDepth); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Wrote %s\n", path)
	return nil
}

func (a *App) plotWaveform(title string, buf signal.Buffer) {
	if a.plotter == nil {
		return
	}
	if err := a.plotter.PlotWaveform(title, buf); err != nil {
		applog.Warnf("Plot %q failed: %v", title, err)
	}
}

func (a *App) plotSpectrum(title string, bins []spectral.FrequencyBin, components []spectral.SpectralComponent) {
	if a.plotter == nil {
		return
	}
	if err := a.plotter.PlotSpectrum(title, bins, components); err != nil {
		applog.Warnf("Plot %q failed: %v", title, err)
	}
}
