package job

import (
	"github.com/pkg/errors"

	"github.com/njchilds90/symgen/deriv"
	"github.com/njchilds90/symgen/emit"
	"github.com/njchilds90/symgen/expr"
)

// Task kinds.
const (
	KindValue            = "value"
	KindJacobian         = "jacobian"
	KindHessian          = "hessian"
	KindImplicitJacobian = "implicit_jacobian"
)

// Task is one procedure to generate.
type Task struct {
	Name     string
	Function string
	Kind     string
	Matrix   *expr.Matrix
	Vars     emit.Declaration
}

// Plan parses every function of cfg and expands it into tasks, in job file
// order: the value, then <fn>_jacobian_<g> per Jacobian group,
// <fn>_hessian_<a><b> per Hessian pair, and <fn>_implicit_jacobian_<g> for
// the Jacobian groups and the xdot group of the residual xdot - f.
func Plan(cfg *Config) ([]Task, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	decl := cfg.Declaration()
	var tasks []Task
	for _, fn := range cfg.Function {
		ft, err := planFunction(decl, fn)
		if err != nil {
			return nil, errors.WithMessagef(err, "function %s", fn.Name)
		}
		tasks = append(tasks, ft...)
	}
	return tasks, nil
}

func planFunction(decl emit.Declaration, fn FunctionConfig) ([]Task, error) {
	rows := make([]expr.Node, len(fn.Value))
	for i, src := range fn.Value {
		n, err := expr.Parse(src)
		if err != nil {
			return nil, errors.WithMessagef(err, "row %d", i)
		}
		rows[i] = n
	}
	params := decl
	if len(fn.Params) > 0 {
		params = make(emit.Declaration, 0, len(fn.Params))
		for _, name := range fn.Params {
			g, _ := decl.Lookup(name)
			params = append(params, g)
		}
	}
	symbols := func(name string) []*expr.Symbol {
		g, _ := decl.Lookup(name)
		return deriv.Symbols(g.Name, g.Dim)
	}
	task := func(name, kind string, m *expr.Matrix, vars emit.Declaration) Task {
		return Task{Name: name, Function: fn.Name, Kind: kind, Matrix: m, Vars: vars}
	}

	tasks := []Task{task(fn.Name, KindValue, expr.Column(rows...), params)}
	for _, g := range fn.Jacobian {
		m, err := deriv.Jacobian(rows, symbols(g))
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task(fn.Name+"_jacobian_"+g, KindJacobian, m, params))
	}
	for _, pair := range fn.Hessian {
		m, err := deriv.Hessian(rows[0], symbols(pair[0]), symbols(pair[1]))
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task(fn.Name+"_hessian_"+pair[0]+pair[1], KindHessian, m, params))
	}
	if fn.Implicit != "" {
		xdot, _ := decl.Lookup(fn.Implicit)
		imp, err := deriv.Implicit(rows, symbols(xdot.Name))
		if err != nil {
			return nil, err
		}
		vars := params
		if _, ok := params.Lookup(xdot.Name); !ok {
			vars = append(append(emit.Declaration(nil), params...), xdot)
		}
		for _, g := range append(append([]string(nil), fn.Jacobian...), xdot.Name) {
			m, err := deriv.Jacobian(imp, symbols(g))
			if err != nil {
				return nil, err
			}
			tasks = append(tasks, task(fn.Name+"_implicit_jacobian_"+g, KindImplicitJacobian, m, vars))
		}
	}
	return tasks, nil
}
