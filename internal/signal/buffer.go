// SPDX-License-Identifier: MIT
//
// Package signal defines the sample buffer shared by the analysis and
// synthesis packages. A Buffer is a finite, fully materialized run of real
// samples at a fixed sample rate and is never modified after construction.
package signal

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
)

// ErrInvalidInput reports an empty or otherwise malformed buffer.
var ErrInvalidInput = errors.New("invalid signal buffer")

// Buffer is an immutable sequence of real samples at a known sample rate.
// The zero value is an empty, invalid buffer; use New to build one.
type Buffer struct {
	samples    []float64
	sampleRate uint32
}

// New copies samples into a Buffer. It fails with ErrInvalidInput when
// samples is empty or sampleRate is zero.
func New(samples []float64, sampleRate uint32) (Buffer, error) {
	if len(samples) == 0 {
		return Buffer{}, fmt.Errorf("%w: no samples", ErrInvalidInput)
	}
	if sampleRate == 0 {
		return Buffer{}, fmt.Errorf("%w: sample rate must be positive", ErrInvalidInput)
	}

	owned := make([]float64, len(samples))
	copy(owned, samples)
	return Buffer{samples: owned, sampleRate: sampleRate}, nil
}

// Len returns the number of samples.
func (b Buffer) Len() int {
	return len(b.samples)
}

// SampleRate returns the sample rate in Hz.
func (b Buffer) SampleRate() uint32 {
	return b.sampleRate
}

// IsZero reports whether b was never populated by New.
func (b Buffer) IsZero() bool {
	return len(b.samples) == 0
}

// Samples returns a copy of the samples. Callers may modify the result.
func (b Buffer) Samples() []float64 {
	out := make([]float64, len(b.samples))
	copy(out, b.samples)
	return out
}

// At returns sample i. It panics if i is out of range, like a slice index.
func (b Buffer) At(i int) float64 {
	return b.samples[i]
}

// DurationSeconds returns Len / SampleRate.
func (b Buffer) DurationSeconds() float64 {
	if b.sampleRate == 0 {
		return 0
	}
	return float64(len(b.samples)) / float64(b.sampleRate)
}

// Duration returns the buffer length as a time.Duration.
func (b Buffer) Duration() time.Duration {
	return time.Duration(b.DurationSeconds() * float64(time.Second))
}

// Peak returns the largest absolute sample value.
func (b Buffer) Peak() float64 {
	if len(b.samples) == 0 {
		return 0
	}
	return floats.Norm(b.samples, math.Inf(1))
}

// Times returns the time in seconds of every sample, starting at zero.
func (b Buffer) Times() []float64 {
	times := make([]float64, len(b.samples))
	if b.sampleRate == 0 {
		return times
	}
	for i := range times {
		times[i] = float64(i) / float64(b.sampleRate)
	}
	return times
}
