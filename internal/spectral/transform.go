// SPDX-License-Identifier: MIT
//
// Package spectral converts signal buffers into frequency-domain bins and
// extracts the dominant sinusoidal components from them.
package spectral

import (
	"fmt"
	"math"
	"math/cmplx"
	"strings"

	"wavemath/internal/signal"

	dspfft "github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/dsp/fourier"
)

// Backend selects the FFT implementation.
type Backend int

const (
	Gonum Backend = iota // gonum.org/v1/gonum/dsp/fourier
	GoDSP                // github.com/mjibson/go-dsp/fft
)

func (b Backend) String() string {
	switch b {
	case Gonum:
		return "gonum"
	case GoDSP:
		return "godsp"
	default:
		return fmt.Sprintf("Backend(%d)", int(b))
	}
}

// ParseBackend converts a backend name (case-insensitive) to a Backend.
// Unknown names return Gonum and an error.
func ParseBackend(name string) (Backend, error) {
	switch strings.ToLower(name) {
	case "", "gonum":
		return Gonum, nil
	case "godsp", "go-dsp":
		return GoDSP, nil
	default:
		return Gonum, fmt.Errorf("unknown FFT backend: '%s'", name)
	}
}

// FrequencyBin is one DFT output coefficient together with its frequency.
// FrequencyHz is negative for the mirrored half of the spectrum.
type FrequencyBin struct {
	FrequencyHz float64 `json:"frequency_hz"`
	Real        float64 `json:"real"`
	Imag        float64 `json:"imag"`
}

// Coefficient returns the bin as a complex number.
func (b FrequencyBin) Coefficient() complex128 {
	return complex(b.Real, b.Imag)
}

// Magnitude returns |Real + i·Imag|.
func (b FrequencyBin) Magnitude() float64 {
	return cmplx.Abs(b.Coefficient())
}

// Phase returns atan2(Imag, Real) in radians.
func (b FrequencyBin) Phase() float64 {
	return math.Atan2(b.Imag, b.Real)
}

// Transformer computes forward and inverse DFTs over whole buffers. It
// holds only immutable configuration and is safe for concurrent use.
type Transformer struct {
	backend Backend
	window  WindowFunc
}

// Option configures a Transformer.
type Option func(*Transformer)

// WithBackend selects the FFT implementation.
func WithBackend(b Backend) Option {
	return func(t *Transformer) { t.backend = b }
}

// WithWindow applies an analysis window before the transform. Any window
// other than None scales the coefficients, so amplitudes derived from them
// no longer equal the time-domain amplitudes.
func WithWindow(w WindowFunc) Option {
	return func(t *Transformer) { t.window = w }
}

// NewTransformer returns a Transformer using the gonum backend and no
// window unless overridden.
func NewTransformer(opts ...Option) *Transformer {
	t := &Transformer{backend: Gonum, window: None}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Backend returns the configured FFT implementation.
func (t *Transformer) Backend() Backend {
	return t.backend
}

// Window returns the configured analysis window.
func (t *Transformer) Window() WindowFunc {
	return t.window
}

var defaultTransformer = NewTransformer()

// Transform runs the default Transformer over buf.
func Transform(buf signal.Buffer) ([]FrequencyBin, error) {
	return defaultTransformer.Transform(buf)
}

// Inverse runs the default Transformer's inverse over bins.
func Inverse(bins []FrequencyBin) ([]float64, error) {
	return defaultTransformer.Inverse(bins)
}

// Transform returns exactly buf.Len() bins: the unnormalized forward DFT
// of the samples, paired with FrequencyAxis(buf.Len(), buf.SampleRate()).
func (t *Transformer) Transform(buf signal.Buffer) ([]FrequencyBin, error) {
	if buf.Len() == 0 {
		return nil, fmt.Errorf("%w: cannot transform an empty buffer", signal.ErrInvalidInput)
	}

	samples := buf.Samples()
	applyWindow(samples, t.window)

	var coeffs []complex128
	switch t.backend {
	case GoDSP:
		coeffs = dspfft.FFTReal(samples)
	default:
		seq := make([]complex128, len(samples))
		for i, s := range samples {
			seq[i] = complex(s, 0)
		}
		coeffs = fourier.NewCmplxFFT(len(seq)).Coefficients(nil, seq)
	}

	freqs := FrequencyAxis(len(coeffs), float64(buf.SampleRate()))
	bins := make([]FrequencyBin, len(coeffs))
	for i, c := range coeffs {
		bins[i] = FrequencyBin{FrequencyHz: freqs[i], Real: real(c), Imag: imag(c)}
	}
	return bins, nil
}

// Inverse reconstructs the real time-domain sequence from a full set of
// bins as produced by Transform. Windowing is not undone.
func (t *Transformer) Inverse(bins []FrequencyBin) ([]float64, error) {
	if len(bins) == 0 {
		return nil, fmt.Errorf("%w: cannot invert an empty spectrum", signal.ErrInvalidInput)
	}

	coeffs := make([]complex128, len(bins))
	for i, b := range bins {
		coeffs[i] = b.Coefficient()
	}

	var seq []complex128
	scale := 1.0
	switch t.backend {
	case GoDSP:
		seq = dspfft.IFFT(coeffs)
	default:
		// gonum's Sequence is unnormalized.
		seq = fourier.NewCmplxFFT(len(coeffs)).Sequence(nil, coeffs)
		scale = 1 / float64(len(coeffs))
	}

	out := make([]float64, len(seq))
	for i, v := range seq {
		out[i] = real(v) * scale
	}
	return out, nil
}

// FrequencyAxis returns the frequency in Hz of each of n DFT bins using the
// conventional layout: bins 0..(n-1)/2 are non-negative and the remainder
// wrap around to negative frequencies. For even n the bin at n/2 is -sr/2.
func FrequencyAxis(n int, sampleRate float64) []float64 {
	if n <= 0 {
		return nil
	}
	freqs := make([]float64, n)
	resolution := sampleRate / float64(n)
	for i := range n {
		k := i
		if i > (n-1)/2 {
			k = i - n
		}
		freqs[i] = float64(k) * resolution
	}
	return freqs
}

// PositiveHalf returns the first len(bins)/2 bins, the half of the
// spectrum spanning DC up to just below Nyquist.
func PositiveHalf(bins []FrequencyBin) []FrequencyBin {
	return bins[:len(bins)/2]
}
