// Package symgen compiles matrices of symbolic expressions into source code
// for procedures that build the matrix as a sparse value.
//
// The work is split across subpackages:
//   - expr: the expression tree, its infix parser and JSON codec
//   - lower: expression to target-language text, per dialect
//   - emit: complete procedures from expression matrices
//   - deriv: Simplify, Diff, Jacobians and Hessians
//   - manifest: source files and Bazel rules on disk
//   - job: TOML job files run on a worker pool
//   - sparse: the runtime used by generated Go code
//
// This package holds shortcuts over the common path.
package symgen

import (
	"github.com/njchilds90/symgen/deriv"
	"github.com/njchilds90/symgen/emit"
	"github.com/njchilds90/symgen/expr"
	"github.com/njchilds90/symgen/manifest"
)

// Generate returns the source of procedure name computing m over vars.
func Generate(m *expr.Matrix, vars emit.Declaration, name string, opts ...emit.Option) (string, error) {
	p, err := emit.Emit(m, vars, name, opts...)
	if err != nil {
		return "", err
	}
	return p.Body, nil
}

// GenerateJacobian emits the Jacobian of the column fs with respect to the
// dim-element group wrt.
func GenerateJacobian(fs []expr.Node, wrt string, dim int, vars emit.Declaration, name string, opts ...emit.Option) (*emit.Procedure, error) {
	m, err := deriv.Jacobian(fs, deriv.Symbols(wrt, dim))
	if err != nil {
		return nil, err
	}
	return emit.Emit(m, vars, name, opts...)
}

// Save writes procedures into dir, adding BUILD rules for C++ headers. It
// returns the paths written.
func Save(dir string, procs ...*emit.Procedure) ([]string, error) {
	w := manifest.NewWriter(dir)
	paths := make([]string, 0, len(procs))
	for _, p := range procs {
		res, err := w.Write(p)
		if err != nil {
			return paths, err
		}
		paths = append(paths, res.Path)
	}
	return paths, nil
}
