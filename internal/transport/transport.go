// SPDX-License-Identifier: MIT
//
// Package transport delivers plot frames to observers outside the process.
package transport

import "errors"

// ErrClosed is returned by Send after Close.
var ErrClosed = errors.New("transport closed")

// Transport defines a generic interface for sending plot frames.
// Implementations should be thread-safe.
type Transport interface {
	Send(data any) error
	Close() error
}

// MagnitudeFrame is implemented by frames that carry a magnitude series,
// which binary transports can pack without knowing the frame type.
type MagnitudeFrame interface {
	PlotMagnitudes() []float64
}

// Multi fans every frame out to all transports. Send and Close visit every
// transport and join their errors.
type Multi []Transport

// Send forwards data to every transport.
func (m Multi) Send(data any) error {
	var errs []error
	for _, t := range m {
		if err := t.Send(data); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every transport.
func (m Multi) Close() error {
	var errs []error
	for _, t := range m {
		if err := t.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var _ Transport = Multi(nil)
