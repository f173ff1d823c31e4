package deriv_test

import (
	"errors"
	"testing"

	"github.com/njchilds90/symgen/deriv"
	"github.com/njchilds90/symgen/expr"
)

// ============================================================
// Simplify tests
// ============================================================

func TestSimplify_Rules(t *testing.T) {
	cases := []struct{ src, want string }{
		{"x + 0", "x"},
		{"2*3*x", "6*x"},
		{"1*x", "x"},
		{"0*x + y", "y"},
		{"x*x^2", "x^3"},
		{"x^0", "1"},
		{"x^1", "x"},
		{"1^x", "1"},
		{"2^3", "8"},
		{"0^-1", "0^-1"},
		{"(x^2)^3", "x^6"},
		{"sin(0) + cos(0)", "1"},
		{"exp(0)*log(1) + y", "y"},
		{"x + x - x", "x"},
		{"x - x", "0"},
		{"x + 2*x + 1 + 2", "3*x + 3"},
		{"(x + (y + z))", "x + y + z"},
	}
	for _, c := range cases {
		got := deriv.Simplify(expr.MustParse(c.src)).String()
		if got != c.want {
			t.Errorf("Simplify(%s) = %s, want %s", c.src, got, c.want)
		}
	}
}

func TestSimplify_LeavesLeaves(t *testing.T) {
	x := expr.Sym("x")
	if deriv.Simplify(x) != expr.Node(x) {
		t.Error("symbols should be returned unchanged")
	}
}

// ============================================================
// Diff tests
// ============================================================

func TestDiff_Rules(t *testing.T) {
	cases := []struct{ src, wrt, want string }{
		{"5", "x", "0"},
		{"x", "x", "1"},
		{"y", "x", "0"},
		{"x0*cos(x2)", "x0", "cos(x2)"},
		{"x0*cos(x2)", "x2", "-1*x0*sin(x2)"},
		{"x^3", "x", "3*x^2"},
		{"x*x", "x", "2*x"},
		{"exp(2*x)", "x", "2*exp(2*x)"},
		{"log(x)", "x", "x^-1"},
		{"sin(y)", "x", "0"},
		{"floor(y)", "x", "0"},
	}
	for _, c := range cases {
		d, err := deriv.Diff(expr.MustParse(c.src), c.wrt)
		if err != nil {
			t.Errorf("d/d%s %s: %v", c.wrt, c.src, err)
			continue
		}
		if got := d.String(); got != c.want {
			t.Errorf("d/d%s %s = %s, want %s", c.wrt, c.src, got, c.want)
		}
	}
}

func TestDiff_NotDifferentiable(t *testing.T) {
	_, err := deriv.Diff(expr.MustParse("floor(x)*y"), "x")
	if !errors.Is(err, deriv.ErrNotDifferentiable) {
		t.Errorf("want ErrNotDifferentiable, got %v", err)
	}
}

func TestDiff_PowerForms(t *testing.T) {
	cases := []struct{ src, want string }{
		{"a^x", "a^x*log(a)"},
		{"2^x", "0.6931471805599453*2^x"},
	}
	for _, c := range cases {
		d, err := deriv.Diff(expr.MustParse(c.src), "x")
		if err != nil {
			t.Fatal(err)
		}
		if got := d.String(); got != c.want {
			t.Errorf("d/dx %s = %s, want %s", c.src, got, c.want)
		}
	}

	// General form: both base and exponent depend on x.
	d, err := deriv.Diff(expr.MustParse("x^x"), "x")
	if err != nil {
		t.Fatal(err)
	}
	if !expr.HasSymbol(d, "x") || !containsCall(d, "log") {
		t.Errorf("d/dx x^x = %s, want x^x*(log(x) + 1)", d)
	}
}

func containsCall(n expr.Node, name string) bool {
	found := false
	expr.Walk(n, func(c expr.Node) bool {
		if call, ok := c.(*expr.Call); ok && call.Name() == name {
			found = true
		}
		return !found
	})
	return found
}

// ============================================================
// Matrices
// ============================================================

func bicycle() (f []expr.Node, x, u, xdot []*expr.Symbol) {
	x = deriv.Symbols("x", 6)
	u = deriv.Symbols("u", 2)
	xdot = deriv.Symbols("x_dot", 6)
	f = []expr.Node{
		expr.MustParse("x4*cos(x2)"),
		expr.MustParse("x4*sin(x2)"),
		expr.MustParse("x4*tan(x3)/(3.0*(1 + 0.0003*x4*x4))"),
		expr.MustParse("u0"),
		expr.MustParse("x5"),
		expr.MustParse("u1"),
	}
	return f, x, u, xdot
}

func TestJacobian_Sparsity(t *testing.T) {
	f, x, u, _ := bicycle()
	jx, err := deriv.Jacobian(f, x)
	if err != nil {
		t.Fatal(err)
	}
	if jx.Rows() != 6 || jx.Cols() != 6 {
		t.Fatalf("want 6x6, got %dx%d", jx.Rows(), jx.Cols())
	}
	if jx.NonZeros() != 7 {
		t.Errorf("want 7 nonzeros, got %d in %s", jx.NonZeros(), jx)
	}
	if got := jx.At(0, 2).String(); got != "-1*x4*sin(x2)" {
		t.Errorf("df0/dx2 = %s", got)
	}
	if got := jx.At(4, 5).String(); got != "1" {
		t.Errorf("df4/dx5 = %s", got)
	}
	ju, err := deriv.Jacobian(f, u)
	if err != nil {
		t.Fatal(err)
	}
	if ju.NonZeros() != 2 || ju.At(3, 0).String() != "1" || ju.At(5, 1).String() != "1" {
		t.Errorf("unexpected du Jacobian %s", ju)
	}
}

func TestDynamics_Implicit(t *testing.T) {
	f, x, u, xdot := bicycle()
	s, err := deriv.Dynamics(f, x, u, xdot)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 6; i++ {
		for j := 0; j < 6; j++ {
			c := s.ImplicitXDot.At(i, j)
			if i == j && c.String() != "1" {
				t.Errorf("dr%d/dxdot%d = %s, want 1", i, j, c)
			}
			if i != j && !expr.IsZero(c) {
				t.Errorf("dr%d/dxdot%d = %s, want 0", i, j, c)
			}
		}
	}
	if s.ImplicitX.NonZeros() != s.JacobianX.NonZeros() {
		t.Errorf("implicit and explicit x-Jacobians should share sparsity")
	}
	if got := s.ImplicitU.At(3, 0).String(); got != "-1" {
		t.Errorf("dr3/du0 = %s, want -1", got)
	}

	if _, err := deriv.Dynamics(f, x, u, xdot[:3]); err == nil {
		t.Error("mismatched xdot group should fail")
	}
}

func TestCost_QuadraticTracking(t *testing.T) {
	x := deriv.Symbols("x", 2)
	u := deriv.Symbols("u", 1)
	cost := deriv.Simplify(expr.MustParse("(x0 - goal0)*q0*(x0 - goal0) + (x1 - goal1)*q1*(x1 - goal1) + u0*r0*u0"))
	s, err := deriv.Cost(cost, x, u)
	if err != nil {
		t.Fatal(err)
	}
	if s.JacobianX.Rows() != 1 || s.JacobianX.Cols() != 2 {
		t.Errorf("cost Jacobian should be a row, got %dx%d", s.JacobianX.Rows(), s.JacobianX.Cols())
	}
	if got := s.HessianXX.At(0, 0).String(); got != "2*q0" {
		t.Errorf("d2c/dx0dx0 = %s, want 2*q0", got)
	}
	if !expr.IsZero(s.HessianXX.At(0, 1)) {
		t.Errorf("d2c/dx0dx1 = %s, want 0", s.HessianXX.At(0, 1))
	}
	if got := s.HessianUU.At(0, 0).String(); got != "2*r0" {
		t.Errorf("d2c/du0du0 = %s, want 2*r0", got)
	}
	if s.HessianUX.NonZeros() != 0 {
		t.Errorf("cost is separable, want empty ux Hessian, got %s", s.HessianUX)
	}
}

func TestSymbols(t *testing.T) {
	s := deriv.Symbols("goal", 3)
	if len(s) != 3 || s[2].Name() != "goal2" {
		t.Errorf("unexpected symbols %v", s)
	}
}

func TestEntries(t *testing.T) {
	m := expr.MatrixOf(2, 2, expr.Sym("a"), nil, expr.Sym("c"), expr.Sym("d"))
	got := deriv.Entries(m)
	if len(got) != 4 || got[1].String() != "0" || got[2].String() != "c" {
		t.Errorf("unexpected entries %v", got)
	}
}
