// Package emit assembles complete target-language procedures from matrices of
// expressions.
//
// Emit walks the matrix in row-major order, skips structural zeros, lowers
// every remaining cell with symbols resolved to indexed parameter access, and
// renders the result through the dialect's procedure template: an empty
// sparse output of the matrix shape, a triplet list reserved to the exact
// nonzero count, one insertion per cell, and finalisation from the triplets.
package emit

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/njchilds90/symgen/expr"
	"github.com/njchilds90/symgen/lower"
)

var (
	// ErrEmptyDeclaration is returned when the matrix references symbols but
	// no variable group was declared.
	ErrEmptyDeclaration = errors.New("empty variable declaration")

	// ErrMalformedSymbol is returned for symbols that are not
	// <declared group><index within its dimension>.
	ErrMalformedSymbol = errors.New("malformed symbol name")

	// ErrInvalidDeclaration is returned for duplicate or badly named groups
	// and non-positive dimensions.
	ErrInvalidDeclaration = errors.New("invalid variable declaration")

	// ErrInvalidName is returned when the procedure name is not an
	// identifier, or a name collides with the template's own identifiers.
	ErrInvalidName = errors.New("invalid procedure name")
)

// CellError locates a failure at one matrix cell.
type CellError struct {
	Row, Col int
	Err      error
}

func (e *CellError) Error() string { return fmt.Sprintf("cell (%d, %d): %v", e.Row, e.Col, e.Err) }
func (e *CellError) Unwrap() error { return e.Err }

// Triplet is one nonzero entry of the generated sparse output.
type Triplet struct {
	Row, Col int
	Expr     string
}

// Procedure is a generated procedure. It holds only text and metadata; no
// reference into the input tree survives Emit.
type Procedure struct {
	Name     string
	Dialect  string
	Params   Declaration
	Rows     int
	Cols     int
	NonZeros int // capacity hint: exactly len(Triplets)
	Triplets []Triplet
	Body     string
}

type config struct {
	dialect    *lower.Dialect
	permissive bool
	pkg        string
}

type Option func(*config)

// WithDialect selects the target language. The default is lower.Eigen.
func WithDialect(d *lower.Dialect) Option {
	return func(c *config) {
		if d != nil {
			c.dialect = d
		}
	}
}

// Permissive lets calls to functions unknown to the dialect through verbatim.
func Permissive(on bool) Option { return func(c *config) { c.permissive = on } }

// WithPackage sets the package clause of Go output. The default is "generated".
func WithPackage(name string) Option { return func(c *config) { c.pkg = name } }

// Emit generates the procedure name computing m over the variables vars.
func Emit(m *expr.Matrix, vars Declaration, name string, opts ...Option) (*Procedure, error) {
	cfg := config{dialect: lower.Eigen, pkg: "generated"}
	for _, o := range opts {
		o(&cfg)
	}
	if m == nil {
		return nil, errors.Errorf("emit %s: nil matrix", name)
	}
	tmpl, ok := templates[cfg.dialect.Name]
	if !ok {
		return nil, errors.Errorf("emit %s: no procedure template for dialect %q", name, cfg.dialect.Name)
	}
	if err := checkNames(tmpl, vars, name, cfg.pkg); err != nil {
		return nil, errors.WithMessagef(err, "emit %s", name)
	}

	table := newSymbolTable(vars, cfg.dialect.Index)
	l := lower.New(cfg.dialect, lower.WithResolver(table.Resolve), lower.Permissive(cfg.permissive))

	p := &Procedure{
		Name:    name,
		Dialect: cfg.dialect.Name,
		Params:  append(Declaration(nil), vars...),
		Rows:    m.Rows(),
		Cols:    m.Cols(),
	}
	for i := 0; i < m.Rows(); i++ {
		for j := 0; j < m.Cols(); j++ {
			cell := m.At(i, j)
			if expr.IsZero(cell) {
				continue
			}
			text, err := l.Lower(cell)
			if err != nil {
				return nil, errors.WithMessagef(&CellError{Row: i, Col: j, Err: err}, "emit %s", name)
			}
			p.Triplets = append(p.Triplets, Triplet{Row: i, Col: j, Expr: text})
		}
	}
	p.NonZeros = len(p.Triplets)

	body, err := tmpl.render(p, cfg.pkg)
	if err != nil {
		return nil, errors.Wrapf(err, "emit %s", name)
	}
	p.Body = body
	return p, nil
}

func checkNames(t *procTemplate, vars Declaration, name, pkg string) error {
	if !identRE.MatchString(name) || t.reserved[name] {
		return errors.Wrapf(ErrInvalidName, "%q", name)
	}
	if t.needsPackage && (!identRE.MatchString(pkg) || t.reserved[pkg]) {
		return errors.Wrapf(ErrInvalidName, "package %q", pkg)
	}
	if err := vars.Validate(); err != nil {
		return err
	}
	for _, g := range vars {
		if t.reserved[g.Name] || g.Name == name {
			return errors.Wrapf(ErrInvalidDeclaration, "group name %q collides with generated code", g.Name)
		}
	}
	return nil
}
