// Package deriv differentiates expression trees and assembles the derivative
// matrices an optimal-control pipeline consumes: Jacobians of the dynamics
// and gradients and Hessians of the cost.
//
// Results pass through Simplify so that structural zeros come out as literal
// zeros, which the code generator then leaves out of the sparse output.
package deriv

import (
	"math"

	"github.com/njchilds90/symgen/expr"
)

// Simplify applies local rewrites: flattening of nested sums and products,
// constant folding, removal of additive zeros and multiplicative ones,
// combination of like terms and like factors, and the identities
// x^0 = 1, x^1 = x, sin(0) = 0, cos(0) = 1, exp(0) = 1, log(1) = 0.
func Simplify(n expr.Node) expr.Node {
	switch v := n.(type) {
	case *expr.Sum:
		return simplifySum(v)
	case *expr.Product:
		return simplifyProduct(v)
	case *expr.Power:
		return simplifyPower(v)
	case *expr.Call:
		return simplifyCall(v)
	}
	return n
}

func simplifySum(s *expr.Sum) expr.Node {
	flat := make([]expr.Node, 0, len(s.Terms()))
	for _, t := range s.Terms() {
		t = Simplify(t)
		if inner, ok := t.(*expr.Sum); ok {
			flat = append(flat, inner.Terms()...)
		} else {
			flat = append(flat, t)
		}
	}

	constant := 0.0
	coeffs := map[string]float64{}
	rests := map[string]expr.Node{}
	var order []string
	for _, t := range flat {
		if num, ok := t.(*expr.Number); ok {
			constant += num.Value()
			continue
		}
		c, rest := splitCoefficient(t)
		key := rest.String()
		if _, seen := coeffs[key]; !seen {
			order = append(order, key)
			rests[key] = rest
		}
		coeffs[key] += c
	}

	var result []expr.Node
	for _, key := range order {
		switch c := coeffs[key]; c {
		case 0:
		case 1:
			result = append(result, rests[key])
		default:
			result = append(result, withCoefficient(c, rests[key]))
		}
	}
	if constant != 0 {
		result = append(result, expr.Num(constant))
	}
	switch len(result) {
	case 0:
		return expr.Num(0)
	case 1:
		return result[0]
	}
	return expr.Add(result...)
}

// splitCoefficient separates a leading numeric factor: 3*x*y -> (3, x*y).
func splitCoefficient(n expr.Node) (float64, expr.Node) {
	p, ok := n.(*expr.Product)
	if !ok {
		return 1, n
	}
	fs := p.Factors()
	if len(fs) == 0 {
		return 1, n
	}
	num, ok := fs[0].(*expr.Number)
	if !ok {
		return 1, n
	}
	if len(fs) == 2 {
		return num.Value(), fs[1]
	}
	return num.Value(), expr.Mul(fs[1:]...)
}

func withCoefficient(c float64, rest expr.Node) expr.Node {
	if p, ok := rest.(*expr.Product); ok {
		return expr.Mul(append([]expr.Node{expr.Num(c)}, p.Factors()...)...)
	}
	return expr.Mul(expr.Num(c), rest)
}

func simplifyProduct(p *expr.Product) expr.Node {
	flat := make([]expr.Node, 0, len(p.Factors()))
	for _, f := range p.Factors() {
		f = Simplify(f)
		if inner, ok := f.(*expr.Product); ok {
			flat = append(flat, inner.Factors()...)
		} else {
			flat = append(flat, f)
		}
	}

	coeff := 1.0
	exps := map[string]float64{}
	bases := map[string]expr.Node{}
	var order []string
	for _, f := range flat {
		if num, ok := f.(*expr.Number); ok {
			coeff *= num.Value()
			continue
		}
		base, e := f, 1.0
		if pw, ok := f.(*expr.Power); ok {
			if en, ok := pw.ExpExpr().(*expr.Number); ok {
				base, e = pw.Base(), en.Value()
			}
		}
		key := base.String()
		if _, seen := exps[key]; !seen {
			order = append(order, key)
			bases[key] = base
		}
		exps[key] += e
	}
	if coeff == 0 {
		return expr.Num(0)
	}

	var result []expr.Node
	for _, key := range order {
		switch e := exps[key]; e {
		case 0:
		case 1:
			result = append(result, bases[key])
		default:
			result = append(result, simplifyPower(expr.Pow(bases[key], expr.Num(e))))
		}
	}
	if len(result) == 0 {
		return expr.Num(coeff)
	}
	if coeff != 1 {
		result = append([]expr.Node{expr.Num(coeff)}, result...)
	}
	if len(result) == 1 {
		return result[0]
	}
	return expr.Mul(result...)
}

func simplifyPower(p *expr.Power) expr.Node {
	base := Simplify(p.Base())
	exp := Simplify(p.ExpExpr())

	en, expNum := exp.(*expr.Number)
	bn, baseNum := base.(*expr.Number)
	if expNum && en.IsZero() {
		return expr.Num(1)
	}
	if expNum && en.IsOne() {
		return base
	}
	if baseNum && bn.IsOne() {
		return expr.Num(1)
	}
	if baseNum && expNum {
		// 0^0 and 0^negative stay symbolic.
		if v := math.Pow(bn.Value(), en.Value()); !math.IsNaN(v) && !math.IsInf(v, 0) {
			return expr.Num(v)
		}
		return expr.Pow(base, exp)
	}
	if baseNum && bn.IsZero() {
		return expr.Pow(base, exp)
	}
	if inner, ok := base.(*expr.Power); ok && expNum && en.IsInteger() {
		if ie, ok := inner.ExpExpr().(*expr.Number); ok {
			return simplifyPower(expr.Pow(inner.Base(), expr.Num(ie.Value()*en.Value())))
		}
	}
	return expr.Pow(base, exp)
}

func simplifyCall(c *expr.Call) expr.Node {
	args := make([]expr.Node, len(c.Args()))
	vals := make([]float64, len(args))
	allNum := true
	for i, a := range c.Args() {
		args[i] = Simplify(a)
		if num, ok := args[i].(*expr.Number); ok {
			vals[i] = num.Value()
		} else {
			allNum = false
		}
	}
	if allNum {
		if fn, ok := numeric[c.Name()]; ok && len(vals) == fn.arity {
			if v := fn.eval(vals); !math.IsNaN(v) && !math.IsInf(v, 0) {
				return expr.Num(v)
			}
		}
	}
	return expr.Fn(c.Name(), args...)
}

type numericFunc struct {
	arity int
	eval  func(a []float64) float64
}

func unary(f func(float64) float64) numericFunc {
	return numericFunc{1, func(a []float64) float64 { return f(a[0]) }}
}

var numeric = map[string]numericFunc{
	"sin":   unary(math.Sin),
	"cos":   unary(math.Cos),
	"tan":   unary(math.Tan),
	"asin":  unary(math.Asin),
	"acos":  unary(math.Acos),
	"atan":  unary(math.Atan),
	"sinh":  unary(math.Sinh),
	"cosh":  unary(math.Cosh),
	"tanh":  unary(math.Tanh),
	"exp":   unary(math.Exp),
	"log":   unary(math.Log),
	"ln":    unary(math.Log),
	"sqrt":  unary(math.Sqrt),
	"abs":   unary(math.Abs),
	"floor": unary(math.Floor),
	"ceil":  unary(math.Ceil),
	"atan2": {2, func(a []float64) float64 { return math.Atan2(a[0], a[1]) }},
	"hypot": {2, func(a []float64) float64 { return math.Hypot(a[0], a[1]) }},
}
