// Package lower turns expression trees into target-language expression text.
//
// Lowering is syntax directed: every node kind maps to one textual form and
// children are lowered recursively. There is no fallback. A node outside the
// closed expr vocabulary, or a structurally invalid one, is an error, because
// a silently mis-lowered expression compiles into wrong numbers.
package lower

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/njchilds90/symgen/expr"
)

var (
	// ErrUnsupportedNode is returned for nodes outside the expression
	// vocabulary and for structurally invalid nodes such as an empty sum.
	ErrUnsupportedNode = errors.New("unsupported expression node")

	// ErrUnknownFunction is returned for calls to functions the dialect does
	// not provide, unless the Lowerer is permissive.
	ErrUnknownFunction = errors.New("unknown function")
)

// NodeError locates a lowering failure inside the tree.
type NodeError struct {
	Path []int     // child indices from the root to the offending node
	Node expr.Node // offending node, possibly nil
	Err  error
}

func (e *NodeError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Err.Error())
	if len(e.Path) > 0 {
		sb.WriteString(" at ")
		for i, p := range e.Path {
			if i > 0 {
				sb.WriteByte('.')
			}
			sb.WriteString(strconv.Itoa(p))
		}
	}
	if e.Node != nil {
		fmt.Fprintf(&sb, " (%T)", e.Node)
	}
	return sb.String()
}

func (e *NodeError) Unwrap() error { return e.Err }

// Resolver maps a symbol to its target spelling, typically an indexed
// parameter access. It is how variable grouping enters lowering without the
// engine knowing about it.
type Resolver func(s *expr.Symbol) (string, error)

// Lowerer lowers expressions for one dialect. The zero value is not usable;
// use New. A Lowerer is immutable and safe for concurrent use.
type Lowerer struct {
	dialect    *Dialect
	resolve    Resolver
	permissive bool
}

type Option func(*Lowerer)

// WithResolver installs a symbol resolver. Without one symbols are emitted
// by name.
func WithResolver(r Resolver) Option { return func(l *Lowerer) { l.resolve = r } }

// Permissive passes calls to unknown functions through verbatim instead of
// failing. Arity is not checked either.
func Permissive(on bool) Option { return func(l *Lowerer) { l.permissive = on } }

func New(d *Dialect, opts ...Option) *Lowerer {
	if d == nil {
		d = Eigen
	}
	l := &Lowerer{dialect: d}
	for _, o := range opts {
		o(l)
	}
	return l
}

func (l *Lowerer) Dialect() *Dialect { return l.dialect }

var defaultLowerer = New(Eigen)

// Lower lowers n for the Eigen dialect with symbols emitted verbatim.
func Lower(n expr.Node) (string, error) { return defaultLowerer.Lower(n) }

// Lower returns the target expression text for n.
func (l *Lowerer) Lower(n expr.Node) (string, error) {
	var sb strings.Builder
	if err := l.lower(&sb, n); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (l *Lowerer) lower(sb *strings.Builder, n expr.Node) error {
	switch v := n.(type) {
	case *expr.Sum:
		if v == nil || len(v.Terms()) == 0 {
			return unsupported(n, "empty sum")
		}
		return l.list(sb, v.Terms(), " + ", false)

	case *expr.Product:
		if v == nil || len(v.Factors()) == 0 {
			return unsupported(n, "empty product")
		}
		return l.list(sb, v.Factors(), " * ", true)

	case *expr.Power:
		if v == nil {
			return unsupported(n, "nil power")
		}
		sb.WriteString(l.dialect.Namespace)
		sb.WriteString(l.dialect.Pow)
		sb.WriteByte('(')
		if err := l.child(sb, v.Base(), 0); err != nil {
			return err
		}
		sb.WriteString(", ")
		if err := l.child(sb, v.ExpExpr(), 1); err != nil {
			return err
		}
		sb.WriteByte(')')
		return nil

	case *expr.Call:
		if v == nil {
			return unsupported(n, "nil call")
		}
		name := strings.ToLower(v.Name())
		ident := name
		if f, ok := l.dialect.Lookup(name); ok {
			if !l.permissive && f.Arity != len(v.Args()) {
				return unsupported(n, fmt.Sprintf("%s takes %d argument(s), got %d", name, f.Arity, len(v.Args())))
			}
			ident = f.Ident
		} else if !l.permissive {
			return &NodeError{Node: n, Err: fmt.Errorf("%w %q in dialect %s", ErrUnknownFunction, v.Name(), l.dialect.Name)}
		}
		sb.WriteString(l.dialect.Namespace)
		sb.WriteString(ident)
		sb.WriteByte('(')
		if err := l.list(sb, v.Args(), ", ", false); err != nil {
			return err
		}
		sb.WriteByte(')')
		return nil

	case *expr.Symbol:
		if v == nil {
			return unsupported(n, "nil symbol")
		}
		if l.resolve == nil {
			sb.WriteString(v.Name())
			return nil
		}
		s, err := l.resolve(v)
		if err != nil {
			return &NodeError{Node: n, Err: err}
		}
		sb.WriteString(s)
		return nil

	case *expr.Number:
		if v == nil {
			return unsupported(n, "nil number")
		}
		s, ok := FormatFloat(v.Value())
		if !ok {
			return unsupported(n, fmt.Sprintf("non-finite literal %v", v.Value()))
		}
		sb.WriteString(s)
		return nil
	}
	return unsupported(n, fmt.Sprintf("node type %T", n))
}

func (l *Lowerer) list(sb *strings.Builder, nodes []expr.Node, sep string, groupSums bool) error {
	for i, c := range nodes {
		if i > 0 {
			sb.WriteString(sep)
		}
		_, isSum := c.(*expr.Sum)
		if groupSums && isSum {
			sb.WriteByte('(')
		}
		if err := l.child(sb, c, i); err != nil {
			return err
		}
		if groupSums && isSum {
			sb.WriteByte(')')
		}
	}
	return nil
}

func (l *Lowerer) child(sb *strings.Builder, c expr.Node, idx int) error {
	err := l.lower(sb, c)
	if ne, ok := err.(*NodeError); ok {
		ne.Path = append([]int{idx}, ne.Path...)
	}
	return err
}

func unsupported(n expr.Node, reason string) error {
	return &NodeError{Node: n, Err: fmt.Errorf("%w: %s", ErrUnsupportedNode, reason)}
}

// FormatFloat renders v as the shortest floating literal that parses back to
// exactly v. Integral values keep a ".0" so they stay floating point in C-like
// targets. ok is false for NaN and infinities, which have no literal form.
func FormatFloat(v float64) (s string, ok bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "", false
	}
	s = strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s, true
}
