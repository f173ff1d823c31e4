package deriv

import (
	"github.com/pkg/errors"

	"github.com/njchilds90/symgen/expr"
)

// Symbols returns the vector group name0..name<dim-1>.
func Symbols(group string, dim int) []*expr.Symbol {
	out := make([]*expr.Symbol, dim)
	for i := range out {
		out[i] = expr.Var(group, i)
	}
	return out
}

// Gradient returns ∂f/∂v for every v in vars.
func Gradient(f expr.Node, vars []*expr.Symbol) ([]expr.Node, error) {
	out := make([]expr.Node, len(vars))
	for i, v := range vars {
		d, err := Diff(f, v.Name())
		if err != nil {
			return nil, errors.WithMessagef(err, "d/d%s", v.Name())
		}
		out[i] = d
	}
	return out, nil
}

// Jacobian returns the len(fs)×len(vars) matrix ∂f_i/∂v_j.
func Jacobian(fs []expr.Node, vars []*expr.Symbol) (*expr.Matrix, error) {
	m := expr.NewMatrix(len(fs), len(vars))
	for i, f := range fs {
		for j, v := range vars {
			d, err := Diff(f, v.Name())
			if err != nil {
				return nil, errors.WithMessagef(err, "jacobian (%d, %d)", i, j)
			}
			m.Set(i, j, d)
		}
	}
	return m, nil
}

// Hessian returns the len(a)×len(b) matrix ∂²f/∂a_i∂b_j.
func Hessian(f expr.Node, a, b []*expr.Symbol) (*expr.Matrix, error) {
	grad, err := Gradient(f, a)
	if err != nil {
		return nil, err
	}
	return Jacobian(grad, b)
}

// Entries returns the cells of m in row-major order, the flattening used to
// treat a matrix-valued function as a vector of scalars.
func Entries(m *expr.Matrix) []expr.Node {
	out := make([]expr.Node, 0, m.Rows()*m.Cols())
	for i := 0; i < m.Rows(); i++ {
		for j := 0; j < m.Cols(); j++ {
			c := m.At(i, j)
			if c == nil {
				c = expr.Num(0)
			}
			out = append(out, c)
		}
	}
	return out
}
