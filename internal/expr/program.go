// SPDX-License-Identifier: MIT
//
// Package expr compiles waveform expressions over the time variable t into
// programs that evaluate elementwise. The grammar is closed: numbers, t,
// pi, sin, cos and their np.* aliases, combined with + - * / ^ ** and
// parentheses. Nothing outside that vocabulary can be named or executed.
package expr

import (
	"slices"

	"wavemath/internal/signal"
)

// Program is a compiled expression. It is immutable and safe for
// concurrent use.
type Program struct {
	source string
	root   node
	idents []string
}

// Compile parses text into a Program.
func Compile(text string) (*Program, error) {
	root, err := parse(text)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var idents []string
	root.names(func(name string) {
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		idents = append(idents, name)
	})
	slices.Sort(idents)

	return &Program{source: text, root: root, idents: idents}, nil
}

// Eval evaluates the program once per element of t.
func (p *Program) Eval(t []float64) ([]float64, error) {
	if len(t) == 0 {
		return nil, signal.ErrInvalidInput
	}
	return p.root.eval(t), nil
}

// Identifiers returns the sorted, distinct names the expression uses.
func (p *Program) Identifiers() []string {
	return slices.Clone(p.idents)
}

// UsesTime reports whether the expression references t.
func (p *Program) UsesTime() bool {
	_, found := slices.BinarySearch(p.idents, TimeVariable)
	return found
}

// Source returns the text the program was compiled from.
func (p *Program) Source() string {
	return p.source
}

// String returns the canonical, fully parenthesized form.
func (p *Program) String() string {
	return p.root.String()
}
