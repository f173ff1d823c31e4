package emit

import (
	"strconv"
	"strings"
	"text/template"
)

// procTemplate renders a Procedure for one dialect.
type procTemplate struct {
	tmpl         *template.Template
	param        func(g Group) string
	reserved     map[string]bool
	needsPackage bool
}

type procView struct {
	*Procedure
	Package    string
	ParamList  string
	RuntimePkg string
}

func (t *procTemplate) render(p *Procedure, pkg string) (string, error) {
	params := make([]string, len(p.Params))
	for i, g := range p.Params {
		params[i] = t.param(g)
	}
	var sb strings.Builder
	err := t.tmpl.Execute(&sb, procView{
		Procedure:  p,
		Package:    pkg,
		ParamList:  strings.Join(params, ", "),
		RuntimePkg: RuntimeImportPath,
	})
	return sb.String(), err
}

// RuntimeImportPath is the import path of the sparse runtime that generated
// Go code builds its result with.
const RuntimeImportPath = "github.com/njchilds90/symgen/sparse"

const eigenSource = `#pragma once
#include <Eigen/Dense>
#include <Eigen/Sparse>
#include <cmath>
#include <vector>

Eigen::SparseMatrix<double> {{.Name}}({{.ParamList}}) {
    Eigen::SparseMatrix<double> out({{.Rows}}, {{.Cols}});
    std::vector<Eigen::Triplet<double>> tripletList;
    tripletList.reserve({{.NonZeros}});
{{- range .Triplets}}
    tripletList.emplace_back({{.Row}}, {{.Col}}, {{.Expr}});
{{- end}}
    out.setFromTriplets(tripletList.begin(), tripletList.end());
    return out;
}
`

const goSource = `// Code generated by symgen. DO NOT EDIT.

package {{.Package}}

import (
	"math"

	"{{.RuntimePkg}}"
)

var _ = math.Pow

// {{.Name}} builds the {{.Rows}}x{{.Cols}} sparse value with {{.NonZeros}} nonzeros.
func {{.Name}}({{.ParamList}}) *sparse.Matrix {
	out := sparse.NewBuilder({{.Rows}}, {{.Cols}}, {{.NonZeros}})
{{- range .Triplets}}
	out.Add({{.Row}}, {{.Col}}, {{.Expr}})
{{- end}}
	return out.Build()
}
`

func reservedSet(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

var templates = map[string]*procTemplate{
	"eigen": {
		tmpl: template.Must(template.New("eigen").Parse(eigenSource)),
		param: func(g Group) string {
			return "const Eigen::Matrix<double, " + strconv.Itoa(g.Dim) + ", 1> &" + g.Name
		},
		reserved: reservedSet(
			"out", "tripletList", "std", "Eigen",
			"auto", "bool", "break", "case", "char", "class", "const", "continue",
			"default", "delete", "do", "double", "else", "enum", "extern", "float",
			"for", "goto", "if", "inline", "int", "long", "namespace", "new",
			"operator", "private", "protected", "public", "return", "short",
			"signed", "sizeof", "static", "struct", "switch", "template", "this",
			"typedef", "union", "unsigned", "using", "virtual", "void", "volatile", "while",
		),
	},
	"go": {
		tmpl: template.Must(template.New("go").Parse(goSource)),
		param: func(g Group) string {
			return g.Name + " *[" + strconv.Itoa(g.Dim) + "]float64"
		},
		reserved: reservedSet(
			"out", "math", "sparse", "float64",
			"break", "case", "chan", "const", "continue", "default", "defer",
			"else", "fallthrough", "for", "func", "go", "goto", "if", "import",
			"interface", "map", "package", "range", "return", "select", "struct",
			"switch", "type", "var",
		),
		needsPackage: true,
	},
}
