package deriv

import (
	"github.com/pkg/errors"

	"github.com/njchilds90/symgen/expr"
)

// Implicit rewrites explicit dynamics xdot = f into the residual form
// xdot_i - f_i.
func Implicit(f []expr.Node, xdot []*expr.Symbol) ([]expr.Node, error) {
	if len(f) != len(xdot) {
		return nil, errors.Errorf("implicit form: %d equations for %d derivatives", len(f), len(xdot))
	}
	out := make([]expr.Node, len(f))
	for i := range f {
		out[i] = Simplify(expr.Add(xdot[i], neg(f[i])))
	}
	return out, nil
}

// DynamicsSet holds the derivatives of explicit dynamics f(x, u) and of their
// implicit residual xdot - f(x, u).
type DynamicsSet struct {
	JacobianX, JacobianU *expr.Matrix

	ImplicitX, ImplicitU, ImplicitXDot *expr.Matrix
}

// Dynamics differentiates f with respect to x and u. The implicit Jacobians
// use the companion group xdot, which must have len(f) entries.
func Dynamics(f []expr.Node, x, u, xdot []*expr.Symbol) (*DynamicsSet, error) {
	var (
		s   DynamicsSet
		err error
	)
	if s.JacobianX, err = Jacobian(f, x); err != nil {
		return nil, errors.WithMessage(err, "dynamics jacobian x")
	}
	if s.JacobianU, err = Jacobian(f, u); err != nil {
		return nil, errors.WithMessage(err, "dynamics jacobian u")
	}
	imp, err := Implicit(f, xdot)
	if err != nil {
		return nil, err
	}
	if s.ImplicitX, err = Jacobian(imp, x); err != nil {
		return nil, errors.WithMessage(err, "implicit jacobian x")
	}
	if s.ImplicitU, err = Jacobian(imp, u); err != nil {
		return nil, errors.WithMessage(err, "implicit jacobian u")
	}
	if s.ImplicitXDot, err = Jacobian(imp, xdot); err != nil {
		return nil, errors.WithMessage(err, "implicit jacobian xdot")
	}
	return &s, nil
}

// CostSet holds the first and second derivatives of a scalar cost. The
// Jacobians are row vectors.
type CostSet struct {
	JacobianX, JacobianU *expr.Matrix

	HessianXX, HessianUU, HessianUX *expr.Matrix
}

// Cost differentiates a scalar cost with respect to x and u.
func Cost(cost expr.Node, x, u []*expr.Symbol) (*CostSet, error) {
	gx, err := Gradient(cost, x)
	if err != nil {
		return nil, errors.WithMessage(err, "cost jacobian x")
	}
	gu, err := Gradient(cost, u)
	if err != nil {
		return nil, errors.WithMessage(err, "cost jacobian u")
	}
	s := &CostSet{
		JacobianX: expr.Row(gx...),
		JacobianU: expr.Row(gu...),
	}
	if s.HessianXX, err = Jacobian(gx, x); err != nil {
		return nil, errors.WithMessage(err, "cost hessian xx")
	}
	if s.HessianUU, err = Jacobian(gu, u); err != nil {
		return nil, errors.WithMessage(err, "cost hessian uu")
	}
	if s.HessianUX, err = Jacobian(gu, x); err != nil {
		return nil, errors.WithMessage(err, "cost hessian ux")
	}
	return s, nil
}
