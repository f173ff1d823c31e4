package deriv

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/njchilds90/symgen/expr"
)

// ErrNotDifferentiable is returned for calls to functions without a
// derivative rule.
var ErrNotDifferentiable = errors.New("no derivative rule")

// Diff returns the simplified partial derivative of n with respect to the
// symbol called name.
func Diff(n expr.Node, name string) (expr.Node, error) {
	d, err := diff(n, name)
	if err != nil {
		return nil, err
	}
	return Simplify(d), nil
}

func diff(n expr.Node, name string) (expr.Node, error) {
	if !expr.HasSymbol(n, name) {
		return expr.Num(0), nil
	}
	switch v := n.(type) {
	case *expr.Symbol:
		return expr.Num(1), nil

	case *expr.Sum:
		terms := make([]expr.Node, len(v.Terms()))
		for i, t := range v.Terms() {
			d, err := diff(t, name)
			if err != nil {
				return nil, err
			}
			terms[i] = d
		}
		return expr.Add(terms...), nil

	case *expr.Product:
		fs := v.Factors()
		terms := make([]expr.Node, 0, len(fs))
		for i, fi := range fs {
			if !expr.HasSymbol(fi, name) {
				continue
			}
			dfi, err := diff(fi, name)
			if err != nil {
				return nil, err
			}
			factors := make([]expr.Node, 0, len(fs))
			factors = append(factors, fs[:i]...)
			factors = append(factors, dfi)
			factors = append(factors, fs[i+1:]...)
			terms = append(terms, expr.Mul(factors...))
		}
		return expr.Add(terms...), nil

	case *expr.Power:
		return diffPower(v, name)

	case *expr.Call:
		return diffCall(v, name)
	}
	return nil, fmt.Errorf("cannot differentiate %T", n)
}

func diffPower(p *expr.Power, name string) (expr.Node, error) {
	b, e := p.Base(), p.ExpExpr()
	switch {
	case !expr.HasSymbol(e, name):
		// d(b^e) = e * b^(e-1) * db
		db, err := diff(b, name)
		if err != nil {
			return nil, err
		}
		return expr.Mul(e, expr.Pow(b, expr.Add(e, expr.Num(-1))), db), nil
	case !expr.HasSymbol(b, name):
		// d(b^e) = b^e * log(b) * de
		de, err := diff(e, name)
		if err != nil {
			return nil, err
		}
		return expr.Mul(p, expr.Log(b), de), nil
	}
	db, err := diff(b, name)
	if err != nil {
		return nil, err
	}
	de, err := diff(e, name)
	if err != nil {
		return nil, err
	}
	// d(b^e) = b^e * (de*log(b) + e*db/b)
	return expr.Mul(p, expr.Add(
		expr.Mul(de, expr.Log(b)),
		expr.Mul(e, db, expr.Pow(b, expr.Num(-1))),
	)), nil
}

func neg(n expr.Node) expr.Node { return expr.Mul(expr.Num(-1), n) }

func diffCall(c *expr.Call, name string) (expr.Node, error) {
	args := c.Args()
	if len(args) == 2 {
		return diffBinaryCall(c, name)
	}
	if len(args) != 1 {
		return nil, errors.Wrapf(ErrNotDifferentiable, "%s with %d arguments", c.Name(), len(args))
	}
	u := args[0]
	du, err := diff(u, name)
	if err != nil {
		return nil, err
	}
	one := expr.Num(1)
	var outer expr.Node
	switch c.Name() {
	case "sin":
		outer = expr.Cos(u)
	case "cos":
		outer = neg(expr.Sin(u))
	case "tan":
		outer = expr.Add(one, expr.Pow(expr.Tan(u), expr.Num(2)))
	case "exp":
		outer = expr.Exp(u)
	case "log", "ln":
		outer = expr.Pow(u, expr.Num(-1))
	case "sqrt":
		outer = expr.Mul(expr.Num(0.5), expr.Pow(expr.Sqrt(u), expr.Num(-1)))
	case "asin":
		outer = expr.Pow(expr.Add(one, neg(expr.Pow(u, expr.Num(2)))), expr.Num(-0.5))
	case "acos":
		outer = neg(expr.Pow(expr.Add(one, neg(expr.Pow(u, expr.Num(2)))), expr.Num(-0.5)))
	case "atan":
		outer = expr.Pow(expr.Add(one, expr.Pow(u, expr.Num(2))), expr.Num(-1))
	case "sinh":
		outer = expr.Fn("cosh", u)
	case "cosh":
		outer = expr.Fn("sinh", u)
	case "tanh":
		outer = expr.Add(one, neg(expr.Pow(expr.Fn("tanh", u), expr.Num(2))))
	case "abs":
		outer = expr.Mul(u, expr.Pow(expr.Fn("abs", u), expr.Num(-1)))
	default:
		return nil, errors.Wrapf(ErrNotDifferentiable, "%s", c.Name())
	}
	return expr.Mul(outer, du), nil
}

func diffBinaryCall(c *expr.Call, name string) (expr.Node, error) {
	a, b := c.Args()[0], c.Args()[1]
	da, err := diff(a, name)
	if err != nil {
		return nil, err
	}
	db, err := diff(b, name)
	if err != nil {
		return nil, err
	}
	switch c.Name() {
	case "atan2":
		// atan2(y, x): (x dy - y dx) / (x^2 + y^2)
		den := expr.Pow(expr.Add(expr.Pow(b, expr.Num(2)), expr.Pow(a, expr.Num(2))), expr.Num(-1))
		return expr.Mul(expr.Add(expr.Mul(b, da), neg(expr.Mul(a, db))), den), nil
	case "hypot":
		return expr.Mul(expr.Add(expr.Mul(a, da), expr.Mul(b, db)), expr.Pow(c, expr.Num(-1))), nil
	case "pow":
		return diffPower(expr.Pow(a, b), name)
	}
	return nil, errors.Wrapf(ErrNotDifferentiable, "%s", c.Name())
}
