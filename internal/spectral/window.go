// SPDX-License-Identifier: MIT
package spectral

import (
	"fmt"
	"strings"

	applog "wavemath/internal/log"

	"gonum.org/v1/gonum/dsp/window"
)

// WindowFunc selects an analysis window applied before the transform.
type WindowFunc int

const (
	None WindowFunc = iota // rectangular, leaves samples untouched
	BartlettHann
	Blackman
	BlackmanNuttall
	Hann
	Hamming
	Lanczos
	Nuttall
)

func (w WindowFunc) String() string {
	switch w {
	case None:
		return "none"
	case BartlettHann:
		return "bartletthann"
	case Blackman:
		return "blackman"
	case BlackmanNuttall:
		return "blackmannuttall"
	case Hann:
		return "hann"
	case Hamming:
		return "hamming"
	case Lanczos:
		return "lanczos"
	case Nuttall:
		return "nuttall"
	default:
		return fmt.Sprintf("WindowFunc(%d)", int(w))
	}
}

// ParseWindowFunc converts a string name (case-insensitive) to a WindowFunc.
// Unknown names return None and an error.
func ParseWindowFunc(name string) (WindowFunc, error) {
	switch strings.ToLower(name) {
	case "", "none", "rectangular":
		return None, nil
	case "bartletthann":
		return BartlettHann, nil
	case "blackman":
		return Blackman, nil
	case "blackmannuttall":
		return BlackmanNuttall, nil
	case "hann", "hanning":
		return Hann, nil
	case "hamming":
		return Hamming, nil
	case "lanczos":
		return Lanczos, nil
	case "nuttall":
		return Nuttall, nil
	default:
		return None, fmt.Errorf("unknown FFT window function name: '%s'", name)
	}
}

// applyWindow multiplies samples in place by the selected window.
func applyWindow(samples []float64, w WindowFunc) {
	switch w {
	case None:
	case BartlettHann:
		window.BartlettHann(samples)
	case Blackman:
		window.Blackman(samples)
	case BlackmanNuttall:
		window.BlackmanNuttall(samples)
	case Hann:
		window.Hann(samples)
	case Hamming:
		window.Hamming(samples)
	case Lanczos:
		window.Lanczos(samples)
	case Nuttall:
		window.Nuttall(samples)
	default:
		applog.Warnf("Spectral: Unknown window function type %d, leaving samples unwindowed", w)
	}
}
