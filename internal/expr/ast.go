// SPDX-License-Identifier: MIT
package expr

import (
	"math"
	"strconv"

	"gonum.org/v1/gonum/floats"
)

// TimeVariable is the only variable an expression may reference.
const TimeVariable = "t"

var constants = map[string]float64{
	"pi":    math.Pi,
	"np.pi": math.Pi,
}

var functions = map[string]func(float64) float64{
	"sin":    math.Sin,
	"cos":    math.Cos,
	"np.sin": math.Sin,
	"np.cos": math.Cos,
}

// node is a compiled expression. eval returns a fresh slice of len(t)
// that the caller may overwrite.
type node interface {
	eval(t []float64) []float64
	String() string
	names(visit func(string))
}

type numberNode struct {
	value float64
}

func (n *numberNode) eval(t []float64) []float64 { return fill(len(t), n.value) }
func (n *numberNode) String() string {
	return strconv.FormatFloat(n.value, 'g', -1, 64)
}
func (n *numberNode) names(func(string)) {}

type timeNode struct{}

func (timeNode) eval(t []float64) []float64 { return append([]float64(nil), t...) }
func (timeNode) String() string             { return TimeVariable }
func (timeNode) names(visit func(string))   { visit(TimeVariable) }

type constNode struct {
	name  string
	value float64
}

func (n *constNode) eval(t []float64) []float64 { return fill(len(t), n.value) }
func (n *constNode) String() string             { return n.name }
func (n *constNode) names(visit func(string))   { visit(n.name) }

type callNode struct {
	name string
	fn   func(float64) float64
	arg  node
}

func (n *callNode) eval(t []float64) []float64 {
	v := n.arg.eval(t)
	for i, x := range v {
		v[i] = n.fn(x)
	}
	return v
}

func (n *callNode) String() string { return n.name + "(" + n.arg.String() + ")" }

func (n *callNode) names(visit func(string)) {
	visit(n.name)
	n.arg.names(visit)
}

type negNode struct {
	x node
}

func (n *negNode) eval(t []float64) []float64 {
	v := n.x.eval(t)
	floats.Scale(-1, v)
	return v
}

func (n *negNode) String() string           { return "(-" + n.x.String() + ")" }
func (n *negNode) names(visit func(string)) { n.x.names(visit) }

type binaryNode struct {
	op          tokenKind
	left, right node
}

func (n *binaryNode) eval(t []float64) []float64 {
	l := n.left.eval(t)
	r := n.right.eval(t)
	switch n.op {
	case tokPlus:
		floats.AddTo(l, l, r)
	case tokMinus:
		floats.SubTo(l, l, r)
	case tokStar:
		floats.MulTo(l, l, r)
	case tokSlash:
		floats.DivTo(l, l, r)
	case tokPow:
		for i := range l {
			l[i] = math.Pow(l[i], r[i])
		}
	}
	return l
}

func (n *binaryNode) String() string {
	op := map[tokenKind]string{
		tokPlus:  " + ",
		tokMinus: " - ",
		tokStar:  " * ",
		tokSlash: " / ",
		tokPow:   " ^ ",
	}[n.op]
	return "(" + n.left.String() + op + n.right.String() + ")"
}

func (n *binaryNode) names(visit func(string)) {
	n.left.names(visit)
	n.right.names(visit)
}

func fill(n int, v float64) []float64 {
	out := make([]float64, n)
	if v != 0 {
		for i := range out {
			out[i] = v
		}
	}
	return out
}
