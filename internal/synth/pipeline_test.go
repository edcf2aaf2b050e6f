// SPDX-License-Identifier: MIT
package synth

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wavemath/internal/expr"
	"wavemath/internal/signal"
	"wavemath/internal/spectral"
	"wavemath/pkg/utils"
)

const testSampleRate = 8000

func sineBuffer(t *testing.T, freq, amplitude float64) signal.Buffer {
	t.Helper()
	buf, err := signal.New(utils.GenerateSineWave(testSampleRate, testSampleRate, freq, amplitude, 0), testSampleRate)
	require.NoError(t, err)
	return buf
}

func TestAnalyzeDominantComponent(t *testing.T) {
	p := New()
	components, bins, err := p.Analyze(sineBuffer(t, 440, 0.5))
	require.NoError(t, err)

	assert.Len(t, bins, testSampleRate)
	require.NotEmpty(t, components)
	assert.InDelta(t, 440.0, components[0].FrequencyHz, 1e-9)
	assert.InDelta(t, 0.5, components[0].PeakAmplitude(), 1e-6)
	for _, c := range components {
		assert.Greater(t, c.FrequencyHz, 0.0)
	}
	assert.LessOrEqual(t, len(components), spectral.DefaultTopK)
}

func TestAnalyzeEmpty(t *testing.T) {
	_, _, err := New().Analyze(signal.Buffer{})
	assert.ErrorIs(t, err, signal.ErrInvalidInput)

	_, err = New().ComputeEquation(signal.Buffer{})
	assert.ErrorIs(t, err, signal.ErrInvalidInput)
}

func TestPositiveFirstFillsEverySlot(t *testing.T) {
	buf, err := signal.New(utils.GenerateComplexWave(testSampleRate, testSampleRate), testSampleRate)
	require.NoError(t, err)

	components, _, err := New(WithTopK(3), WithPositiveFirst(true)).Analyze(buf)
	require.NoError(t, err)
	require.Len(t, components, 3)
	assert.InDelta(t, 440.0, components[0].FrequencyHz, 1e-9)

	ranked, _, err := New(WithTopK(3)).Analyze(buf)
	require.NoError(t, err)
	assert.Less(t, len(ranked), 3, "negative-frequency mirrors consume ranked slots")
}

func TestComputeEquation(t *testing.T) {
	equation, err := New().ComputeEquation(sineBuffer(t, 440, 0.5))
	require.NoError(t, err)
	assert.Contains(t, equation, "0.25 * sin(2*pi * 440.00 * t + -1.57)")

	_, err = expr.Compile(equation)
	assert.NoError(t, err, "generated equations are valid evaluator input")
}

func TestGenerateFromEquationDefaults(t *testing.T) {
	result, err := New().GenerateFromEquation("sin(2*pi*440*t)", 0, 0)
	require.NoError(t, err)

	assert.Equal(t, int(DefaultDuration*DefaultSampleRate), result.Waveform.Len())
	assert.Equal(t, uint32(DefaultSampleRate), result.Waveform.SampleRate())
	assert.Equal(t, "sin(2*pi*440*t)", result.Equation.Source)
	assert.Equal(t, []string{"pi", "sin", "t"}, result.Equation.Identifiers)
	assert.False(t, result.Equation.Generated)
	assert.InDelta(t, expr.NormalizedPeak, result.Waveform.Peak(), 1e-12)
}

func TestGenerateFromEquationOverrides(t *testing.T) {
	p := New(WithDefaults(0.5, 8000))
	result, err := p.GenerateFromEquation("cos(t)", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 4000, result.Waveform.Len())

	result, err = p.GenerateFromEquation("cos(t)", 2, 44100)
	require.NoError(t, err)
	assert.Equal(t, 88200, result.Waveform.Len())
}

func TestGenerateFromEquationErrors(t *testing.T) {
	p := New()
	tests := []struct {
		text   string
		target error
	}{
		{"os.system('rm -rf /')", expr.ErrUnboundIdentifier},
		{"__import__('os')", expr.ErrUnboundIdentifier},
		{"sin(2*pi*t", expr.ErrParse},
		{"0*t", expr.ErrSynthesis},
		{"", expr.ErrParse},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			result, err := p.GenerateFromEquation(tt.text, 1, 8000)
			assert.ErrorIs(t, err, tt.target)
			assert.True(t, result.Waveform.IsZero())
		})
	}
}

func TestTone(t *testing.T) {
	result, err := New().Tone(440, 2, 44100)
	require.NoError(t, err)
	assert.Equal(t, 88200, result.Waveform.Len())
	assert.Equal(t, "sin(2*pi*440*t)", result.Equation.Source)

	samples := result.Waveform.Samples()
	for i := 0; i < len(samples); i += 1009 {
		want := 0.5 * math.Sin(2*math.Pi*440*float64(i)/44100)
		require.InDelta(t, want, samples[i], 1e-3, "sample %d", i)
	}

	_, err = New().Tone(0, 1, 44100)
	assert.ErrorIs(t, err, signal.ErrInvalidInput)
}

func TestResynthesize(t *testing.T) {
	in := sineBuffer(t, 440, 0.5)
	result, err := New().Resynthesize(in)
	require.NoError(t, err)

	assert.True(t, result.Equation.Generated)
	assert.True(t, strings.HasPrefix(result.Equation.Source, "0.25 * sin(2*pi * 440.00"))
	assert.Equal(t, in.Len(), result.Waveform.Len())
	assert.Equal(t, in.SampleRate(), result.Waveform.SampleRate())
}

func TestWithTransformerBackends(t *testing.T) {
	in := sineBuffer(t, 1000, 0.3)
	for _, backend := range []spectral.Backend{spectral.Gonum, spectral.GoDSP} {
		t.Run(backend.String(), func(t *testing.T) {
			p := New(WithTransformer(spectral.NewTransformer(spectral.WithBackend(backend))))
			equation, err := p.ComputeEquation(in)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(equation, "0.15 * sin(2*pi * 1000.00 * t"), equation)
		})
	}
}

func TestOptionsIgnoreInvalidValues(t *testing.T) {
	p := New(WithTopK(0), WithTransformer(nil), WithDefaults(-1, 0))
	assert.Equal(t, spectral.DefaultTopK, p.TopK())
	result, err := p.GenerateFromEquation("t", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, uint32(DefaultSampleRate), result.Waveform.SampleRate())
}
