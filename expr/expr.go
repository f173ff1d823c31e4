// Package expr defines the expression trees consumed by the code generator.
//
// A tree is built from exactly six node kinds: Sum, Product, Power, Call,
// Symbol and Number. The set is closed: Node carries an unexported marker
// method, so every consumer can switch over the six kinds exhaustively and
// reject anything else.
//
// Nodes are immutable once constructed. Constructors do not simplify; the
// tree handed to the generator is lowered exactly as built.
package expr

import (
	"math"
	"strconv"
	"strings"
)

// Node is a scalar expression.
type Node interface {
	// String renders the node in plain infix form, for diagnostics.
	String() string
	node()
}

// ============================================================
// Sum
// ============================================================

type Sum struct{ terms []Node }

// Add builds the sum of terms. The slice is copied.
func Add(terms ...Node) *Sum { return &Sum{terms: append([]Node(nil), terms...)} }

func (s *Sum) node()         {}
func (s *Sum) Terms() []Node { return s.terms }

func (s *Sum) String() string {
	if len(s.terms) == 0 {
		return "0"
	}
	parts := make([]string, len(s.terms))
	for i, t := range s.terms {
		parts[i] = str(t)
	}
	return strings.Join(parts, " + ")
}

// ============================================================
// Product
// ============================================================

type Product struct{ factors []Node }

// Mul builds the product of factors. The slice is copied.
func Mul(factors ...Node) *Product { return &Product{factors: append([]Node(nil), factors...)} }

func (p *Product) node()           {}
func (p *Product) Factors() []Node { return p.factors }

func (p *Product) String() string {
	if len(p.factors) == 0 {
		return "1"
	}
	parts := make([]string, len(p.factors))
	for i, f := range p.factors {
		if _, isSum := f.(*Sum); isSum {
			parts[i] = "(" + str(f) + ")"
		} else {
			parts[i] = str(f)
		}
	}
	return strings.Join(parts, "*")
}

// ============================================================
// Power
// ============================================================

type Power struct{ base, exp Node }

func Pow(base, exp Node) *Power { return &Power{base: base, exp: exp} }

func (p *Power) node()         {}
func (p *Power) Base() Node    { return p.base }
func (p *Power) ExpExpr() Node { return p.exp }

func (p *Power) String() string {
	b, e := str(p.base), str(p.exp)
	switch p.base.(type) {
	case *Sum, *Product, *Power:
		b = "(" + b + ")"
	}
	switch p.exp.(type) {
	case *Sum, *Product, *Power:
		e = "(" + e + ")"
	}
	return b + "^" + e
}

// ============================================================
// Call
// ============================================================

type Call struct {
	name string
	args []Node
}

// Fn applies the function name to args. The slice is copied.
func Fn(name string, args ...Node) *Call {
	return &Call{name: name, args: append([]Node(nil), args...)}
}

func Sin(arg Node) *Call  { return Fn("sin", arg) }
func Cos(arg Node) *Call  { return Fn("cos", arg) }
func Tan(arg Node) *Call  { return Fn("tan", arg) }
func Exp(arg Node) *Call  { return Fn("exp", arg) }
func Log(arg Node) *Call  { return Fn("log", arg) }
func Sqrt(arg Node) *Call { return Fn("sqrt", arg) }

func (c *Call) node()        {}
func (c *Call) Name() string { return c.name }
func (c *Call) Args() []Node { return c.args }

func (c *Call) String() string {
	parts := make([]string, len(c.args))
	for i, a := range c.args {
		parts[i] = str(a)
	}
	return c.name + "(" + strings.Join(parts, ", ") + ")"
}

// ============================================================
// Symbol
// ============================================================

// Symbol is an opaque identifier. Symbols created with Var also know the
// variable group they index into, so code generators never have to recover
// that from the name.
type Symbol struct {
	name  string
	group string
	index int
}

// Sym creates a symbol that only has a name, conventionally <group><index>.
func Sym(name string) *Symbol { return &Symbol{name: name, index: -1} }

// Var creates the symbol for element index of the vector group.
func Var(group string, index int) *Symbol {
	return &Symbol{name: group + strconv.Itoa(index), group: group, index: index}
}

func (s *Symbol) node()          {}
func (s *Symbol) Name() string   { return s.name }
func (s *Symbol) String() string { return s.name }

// Group returns the group and index recorded by Var. ok is false for symbols
// made with Sym.
func (s *Symbol) Group() (group string, index int, ok bool) {
	if s.group == "" || s.index < 0 {
		return "", 0, false
	}
	return s.group, s.index, true
}

// ============================================================
// Number
// ============================================================

type Number struct{ val float64 }

func Num(v float64) *Number { return &Number{val: v} }

func (n *Number) node()          {}
func (n *Number) Value() float64 { return n.val }
func (n *Number) IsZero() bool   { return n.val == 0 }
func (n *Number) IsOne() bool    { return n.val == 1 }

func (n *Number) String() string { return strconv.FormatFloat(n.val, 'g', -1, 64) }

// IsInteger reports whether the value is finite and has no fractional part.
func (n *Number) IsInteger() bool {
	return !math.IsInf(n.val, 0) && n.val == math.Trunc(n.val)
}

// ============================================================
// Helpers
// ============================================================

// IsZero reports whether n is a structural zero: nil or a zero Number.
func IsZero(n Node) bool {
	if n == nil {
		return true
	}
	num, ok := n.(*Number)
	return ok && (num == nil || num.IsZero())
}

func str(n Node) string {
	if n == nil {
		return "<nil>"
	}
	return n.String()
}
