package expr

import (
	"fmt"
	"strconv"
	"strings"
	"text/scanner"
)

// Parse reads an infix expression such as "x4*cos(x2) + 0.5*u0^2".
//
// Operators are + - * / and ^ (or **), with the usual precedence; ^ is right
// associative and binds tighter than unary minus. Subtraction is represented
// as a + (-1)*b and division as a * b^-1, the same shapes a computer algebra
// system hands to the generator.
func Parse(src string) (Node, error) {
	p := &parser{src: src}
	p.s.Init(strings.NewReader(src))
	p.s.Mode = scanner.ScanIdents | scanner.ScanInts | scanner.ScanFloats
	p.s.Error = func(s *scanner.Scanner, msg string) {
		if p.err == nil {
			p.err = fmt.Errorf("%d: %s", s.Pos().Column, msg)
		}
	}
	p.next()
	n := p.parseSum()
	if p.err == nil && p.tok != scanner.EOF {
		p.fail("unexpected %q", p.text)
	}
	if p.err != nil {
		return nil, fmt.Errorf("parse %q: %w", src, p.err)
	}
	return n, nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// hand-written models.
func MustParse(src string) Node {
	n, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return n
}

type parser struct {
	src  string
	s    scanner.Scanner
	tok  rune
	text string
	err  error
}

func (p *parser) next() {
	p.tok = p.s.Scan()
	p.text = p.s.TokenText()
}

func (p *parser) fail(format string, args ...interface{}) {
	if p.err == nil {
		p.err = fmt.Errorf("%d: %s", p.s.Position.Column, fmt.Sprintf(format, args...))
	}
}

func (p *parser) expect(r rune) {
	if p.tok != r {
		p.fail("expected %q, found %q", string(r), p.text)
		return
	}
	p.next()
}

func (p *parser) parseSum() Node {
	terms := []Node{p.parseProduct()}
	for p.err == nil && (p.tok == '+' || p.tok == '-') {
		neg := p.tok == '-'
		p.next()
		t := p.parseProduct()
		if neg {
			t = negate(t)
		}
		terms = append(terms, t)
	}
	if len(terms) == 1 {
		return terms[0]
	}
	return Add(terms...)
}

func (p *parser) parseProduct() Node {
	factors := []Node{p.parseUnary()}
	for p.err == nil && (p.tok == '*' || p.tok == '/') {
		div := p.tok == '/'
		p.next()
		f := p.parseUnary()
		if div {
			f = Pow(f, Num(-1))
		}
		factors = append(factors, f)
	}
	if len(factors) == 1 {
		return factors[0]
	}
	return Mul(factors...)
}

func (p *parser) parseUnary() Node {
	switch p.tok {
	case '-':
		p.next()
		return negate(p.parseUnary())
	case '+':
		p.next()
		return p.parseUnary()
	}
	return p.parsePower()
}

func (p *parser) parsePower() Node {
	base := p.parseAtom()
	if p.err != nil {
		return base
	}
	switch {
	case p.tok == '^':
		p.next()
	case p.tok == '*' && p.s.Peek() == '*':
		p.next()
		p.next()
	default:
		return base
	}
	return Pow(base, p.parseUnary())
}

func (p *parser) parseAtom() Node {
	switch p.tok {
	case scanner.Int, scanner.Float:
		v, err := strconv.ParseFloat(p.text, 64)
		if err != nil {
			p.fail("bad number %q", p.text)
			return nil
		}
		p.next()
		return Num(v)
	case scanner.Ident:
		name := p.text
		p.next()
		if p.tok != '(' {
			return Sym(name)
		}
		p.next()
		var args []Node
		if p.tok != ')' {
			args = append(args, p.parseSum())
			for p.err == nil && p.tok == ',' {
				p.next()
				args = append(args, p.parseSum())
			}
		}
		p.expect(')')
		return Fn(strings.ToLower(name), args...)
	case '(':
		p.next()
		n := p.parseSum()
		p.expect(')')
		return n
	case scanner.EOF:
		p.fail("unexpected end of expression")
		return nil
	}
	p.fail("unexpected %q", p.text)
	return nil
}

func negate(n Node) Node {
	switch v := n.(type) {
	case *Number:
		return Num(-v.val)
	case *Product:
		if c, ok := v.factors[0].(*Number); ok {
			return Mul(append([]Node{Num(-c.val)}, v.factors[1:]...)...)
		}
		return Mul(append([]Node{Num(-1)}, v.factors...)...)
	}
	return Mul(Num(-1), n)
}
