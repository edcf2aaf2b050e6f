// SPDX-License-Identifier: MIT
package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wavemath/internal/audio"
	"wavemath/internal/signal"
	"wavemath/internal/spectral"
	"wavemath/internal/synth"
)

type fakeRunner struct {
	played    []string
	tones     int
	generated []string
	stops     int
	err       error
}

func (f *fakeRunner) PlayFile(_ context.Context, path string) error {
	f.played = append(f.played, path)
	return f.err
}

func (f *fakeRunner) PlayTone(context.Context) error {
	f.tones++
	return f.err
}

func (f *fakeRunner) Analyze(string) ([]spectral.SpectralComponent, error) {
	return []spectral.SpectralComponent{{FrequencyHz: 440, Amplitude: 0.25}}, f.err
}

func (f *fakeRunner) ComputeEquation(string) (string, error) {
	return "0.25 * sin(2*pi * 440.00 * t + -1.57)", f.err
}

func (f *fakeRunner) Generate(_ context.Context, text string) (synth.SynthesisResult, error) {
	f.generated = append(f.generated, text)
	buf, err := signal.New(make([]float64, 100), 100)
	if err != nil {
		return synth.SynthesisResult{}, err
	}
	return synth.SynthesisResult{Waveform: buf}, f.err
}

func (f *fakeRunner) Stop() { f.stops++ }

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press sends a key and runs the resulting command, if any, feeding its
// message back into the model.
func press(t *testing.T, m tea.Model, msg tea.KeyMsg) tea.Model {
	t.Helper()
	m, cmd := m.Update(msg)
	if cmd == nil {
		return m
	}
	if out := cmd(); out != nil {
		if _, quit := out.(tea.QuitMsg); !quit {
			m, _ = m.Update(out)
		}
	}
	return m
}

func newTestModel(r Runner, lister DeviceLister) Model {
	return NewModel(context.Background(), r, Files{Music: "untitled.mp3", Waveform: "untitled.wav"}, lister)
}

func TestMenuActions(t *testing.T) {
	r := &fakeRunner{}
	var m tea.Model = newTestModel(r, nil)

	m = press(t, m, runes("1"))
	assert.Equal(t, []string{"untitled.mp3"}, r.played)
	assert.Contains(t, m.View(), "Finished untitled.mp3")

	m = press(t, m, runes("2"))
	assert.Equal(t, 1, r.tones)

	m = press(t, m, runes("3"))
	assert.Contains(t, m.View(), "Dominant frequencies: 440.0 Hz")

	m = press(t, m, runes("4"))
	assert.Contains(t, m.View(), "Equation Generated: 0.25 * sin(2*pi * 440.00 * t + -1.57)")

	m = press(t, m, runes("6"))
	assert.Equal(t, 1, r.stops)
	assert.Contains(t, m.View(), "Music stopped")
}

func TestMenuGenerate(t *testing.T) {
	r := &fakeRunner{}
	var m tea.Model = newTestModel(r, nil)

	m = press(t, m, runes("5"))
	require.Equal(t, EquationScreen, m.(Model).activeScreen)
	assert.Contains(t, m.View(), "use 't' for time variable")

	m = press(t, m, runes("sin(t)"))
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, MenuScreen, m.(Model).activeScreen)
	assert.Equal(t, []string{"sin(t)"}, r.generated)
	assert.Contains(t, m.View(), "Generated 1s of sin(t)")

	// Escape abandons the input without generating.
	m = press(t, m, runes("5"))
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, MenuScreen, m.(Model).activeScreen)
	assert.Len(t, r.generated, 1)
}

func TestMenuErrors(t *testing.T) {
	r := &fakeRunner{err: errors.New("no such file")}
	var m tea.Model = newTestModel(r, nil)

	m = press(t, m, runes("3"))
	assert.Contains(t, m.View(), "Error: no such file")

	// Stopping clears the error.
	m = press(t, m, runes("6"))
	assert.NotContains(t, m.View(), "Error:")
}

func TestMenuQuitStopsPlayback(t *testing.T) {
	r := &fakeRunner{}
	m := newTestModel(r, nil)

	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Equal(t, 1, r.stops)
}

func TestDeviceScreen(t *testing.T) {
	lister := func() ([]audio.Device, error) {
		return []audio.Device{
			{ID: 0, Name: "Built-in Output", MaxOutputChannels: 2, DefaultSampleRate: 48000},
			{ID: 1, Name: "USB Mic", MaxInputChannels: 1, DefaultSampleRate: 44100},
		}, nil
	}
	var m tea.Model = newTestModel(&fakeRunner{}, lister)
	assert.Contains(t, m.View(), "Output Devices")

	m = press(t, m, runes("d"))
	require.Equal(t, DeviceScreen, m.(Model).activeScreen)
	view := m.View()
	assert.Contains(t, view, "[0] Built-in Output (Output)")
	assert.Contains(t, view, "[1] USB Mic (Input)")
	assert.Contains(t, view, "Default sample rate: 48000 Hz")

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, MenuScreen, m.(Model).activeScreen)
}

func TestDeviceScreenHiddenWithoutLister(t *testing.T) {
	var m tea.Model = newTestModel(&fakeRunner{}, nil)
	assert.NotContains(t, m.View(), "Output Devices")

	m = press(t, m, runes("d"))
	assert.Equal(t, MenuScreen, m.(Model).activeScreen)
}
