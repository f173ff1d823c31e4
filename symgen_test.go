package symgen_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/njchilds90/symgen"
	"github.com/njchilds90/symgen/emit"
	"github.com/njchilds90/symgen/expr"
)

func TestGenerate(t *testing.T) {
	m := expr.MatrixOf(1, 1, expr.MustParse("x0*cos(x2)"))
	src, err := symgen.Generate(m, emit.Vars("x", 3), "f")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(src, "tripletList.emplace_back(0, 0, x[0] * std::cos(x[2]));") {
		t.Errorf("unexpected source:\n%s", src)
	}
	if _, err := symgen.Generate(m, nil, "f"); err == nil {
		t.Error("symbols without a declaration should fail")
	}
}

func TestGenerateJacobian_Save(t *testing.T) {
	fs := []expr.Node{expr.MustParse("x1*cos(x0)"), expr.MustParse("u0")}
	vars := emit.Vars("x", 2, "u", 1)
	p, err := symgen.GenerateJacobian(fs, "x", 2, vars, "dyn_x")
	if err != nil {
		t.Fatal(err)
	}
	if p.Rows != 2 || p.Cols != 2 || p.NonZeros != 2 {
		t.Errorf("want 2x2 with 2 nonzeros, got %dx%d with %d", p.Rows, p.Cols, p.NonZeros)
	}

	dir := t.TempDir()
	paths, err := symgen.Save(dir, p)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 1 || paths[0] != filepath.Join(dir, "dyn_x.h") {
		t.Errorf("unexpected paths %v", paths)
	}
	if _, err := os.Stat(filepath.Join(dir, "BUILD")); err != nil {
		t.Errorf("BUILD file missing: %v", err)
	}
}
