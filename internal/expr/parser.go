// SPDX-License-Identifier: MIT
package expr

import "fmt"

// MaxDepth bounds expression nesting.
const MaxDepth = 256

type parser struct {
	lex   lexer
	tok   token
	depth int
}

func parse(text string) (node, error) {
	p := &parser{lex: lexer{src: text}}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.tok.kind == tokEOF {
		return nil, &ParseError{Offset: p.tok.offset, Msg: "empty expression"}
	}

	n, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, p.unexpected()
	}
	return n, nil
}

func (p *parser) advance() error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *parser) unexpected() error {
	if p.tok.kind == tokEOF {
		return &ParseError{Offset: p.tok.offset, Msg: "unexpected end of input"}
	}
	return &ParseError{Offset: p.tok.offset, Msg: fmt.Sprintf("unexpected %s %q", p.tok.kind, p.tok.text)}
}

func (p *parser) enter() error {
	p.depth++
	if p.depth > MaxDepth {
		return &ParseError{Offset: p.tok.offset, Msg: fmt.Sprintf("nesting deeper than %d", MaxDepth)}
	}
	return nil
}

func (p *parser) leave() { p.depth-- }

// expr := term { ("+" | "-") term }
func (p *parser) parseExpr() (node, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokPlus || p.tok.kind == tokMinus {
		op := p.tok.kind
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: op, left: left, right: right}
	}
	return left, nil
}

// term := unary { ("*" | "/") unary }
func (p *parser) parseTerm() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokStar || p.tok.kind == tokSlash {
		op := p.tok.kind
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: op, left: left, right: right}
	}
	return left, nil
}

// unary := ("+" | "-") unary | power
func (p *parser) parseUnary() (node, error) {
	if p.tok.kind != tokPlus && p.tok.kind != tokMinus {
		return p.parsePower()
	}
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	neg := p.tok.kind == tokMinus
	if err := p.advance(); err != nil {
		return nil, err
	}
	x, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	if neg {
		return &negNode{x: x}, nil
	}
	return x, nil
}

// power := primary [ ("^" | "**") unary ]
func (p *parser) parsePower() (node, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokPow {
		return base, nil
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	exp, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return &binaryNode{op: tokPow, left: base, right: exp}, nil
}

// primary := NUMBER | NAME | NAME "(" expr ")" | "(" expr ")"
func (p *parser) parsePrimary() (node, error) {
	tok := p.tok
	switch tok.kind {
	case tokNumber:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &numberNode{value: tok.value}, nil

	case tokLParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.tok.kind != tokRParen {
			if p.tok.kind == tokEOF {
				return nil, &ParseError{Offset: tok.offset, Msg: "unbalanced parenthesis"}
			}
			return nil, p.unexpected()
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return inner, nil

	case tokName:
		return p.parseName(tok)

	default:
		return nil, p.unexpected()
	}
}

func (p *parser) parseName(tok token) (node, error) {
	fn, isFunc := functions[tok.text]
	value, isConst := constants[tok.text]
	isTime := tok.text == TimeVariable
	if !isFunc && !isConst && !isTime {
		return nil, &UnboundIdentifierError{Name: tok.text, Offset: tok.offset}
	}

	if err := p.advance(); err != nil {
		return nil, err
	}
	called := p.tok.kind == tokLParen

	switch {
	case isFunc && !called:
		return nil, &ParseError{Offset: tok.offset, Msg: fmt.Sprintf("function %q must be called", tok.text)}
	case !isFunc && called:
		return nil, &ParseError{Offset: p.tok.offset, Msg: fmt.Sprintf("%q is not callable", tok.text)}
	case isTime:
		return timeNode{}, nil
	case isConst:
		return &constNode{name: tok.text, value: value}, nil
	}

	open := p.tok
	if err := p.advance(); err != nil {
		return nil, err
	}
	arg, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokRParen {
		if p.tok.kind == tokEOF {
			return nil, &ParseError{Offset: open.offset, Msg: "unbalanced parenthesis"}
		}
		return nil, p.unexpected()
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return &callNode{name: tok.text, fn: fn, arg: arg}, nil
}
