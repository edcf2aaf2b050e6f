// SPDX-License-Identifier: MIT
package expr

import (
	"errors"
	"fmt"
)

var (
	// ErrParse is matched by every *ParseError.
	ErrParse = errors.New("malformed expression")
	// ErrUnboundIdentifier is matched by every *UnboundIdentifierError.
	ErrUnboundIdentifier = errors.New("unbound identifier")
	// ErrSynthesis is matched by every *SynthesisError.
	ErrSynthesis = errors.New("synthesis failed")
)

// ParseError reports malformed expression text at a byte offset.
type ParseError struct {
	Offset int
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at offset %d: %s", e.Offset, e.Msg)
}

func (e *ParseError) Unwrap() error { return ErrParse }

// UnboundIdentifierError reports a name outside the evaluator vocabulary.
type UnboundIdentifierError struct {
	Name   string
	Offset int
}

func (e *UnboundIdentifierError) Error() string {
	return fmt.Sprintf("unbound identifier %q at offset %d", e.Name, e.Offset)
}

func (e *UnboundIdentifierError) Unwrap() error { return ErrUnboundIdentifier }

// SynthesisError reports an expression that parsed but did not produce a
// usable waveform.
type SynthesisError struct {
	Reason string
	Err    error
}

func (e *SynthesisError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("synthesis failed: %s: %v", e.Reason, e.Err)
	}
	return "synthesis failed: " + e.Reason
}

func (e *SynthesisError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrSynthesis, e.Err}
	}
	return []error{ErrSynthesis}
}
