package unicycle

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/njchilds90/symgen/sparse"
)

var (
	state   = [3]float64{0.3, -1.2, 0.7}
	control = [2]float64{2.5, -0.4}

	approx = cmpopts.EquateApprox(0, 1e-6)
)

type procedure func(x *[3]float64, u *[2]float64) *sparse.Matrix

// flatten returns the entries of a column or a scalar in row order.
func flatten(m *sparse.Matrix) []float64 {
	var out []float64
	for _, row := range m.Dense() {
		out = append(out, row...)
	}
	return out
}

// finiteJacobian differentiates f by central differences around
// (state, control) with respect to group "x" or "u".
func finiteJacobian(f procedure, group string) [][]float64 {
	const h = 1e-6
	n := len(state)
	if group == "u" {
		n = len(control)
	}
	rows := len(flatten(f(&state, &control)))
	out := make([][]float64, rows)
	for i := range out {
		out[i] = make([]float64, n)
	}
	for j := 0; j < n; j++ {
		xp, up, xm, um := state, control, state, control
		if group == "x" {
			xp[j] += h
			xm[j] -= h
		} else {
			up[j] += h
			um[j] -= h
		}
		fp, fm := flatten(f(&xp, &up)), flatten(f(&xm, &um))
		for i := range fp {
			out[i][j] = (fp[i] - fm[i]) / (2 * h)
		}
	}
	return out
}

// ============================================================
// Values
// ============================================================

func TestDynamic_Value(t *testing.T) {
	x, u := state, control
	want := [][]float64{
		{u[0] * math.Cos(x[2])},
		{u[0] * math.Sin(x[2])},
		{u[1]},
	}
	if diff := cmp.Diff(want, dynamic(&x, &u).Dense(), approx); diff != "" {
		t.Errorf("dynamic mismatch (-want +got):\n%s", diff)
	}
}

func TestCost_Value(t *testing.T) {
	x, u := state, control
	want := (x[0]-1)*(x[0]-1) + 0.5*u[1]*u[1]
	if got := cost(&x, &u).At(0, 0); math.Abs(got-want) > 1e-12 {
		t.Errorf("cost = %v, want %v", got, want)
	}
}

// ============================================================
// Derivatives
// ============================================================

func TestJacobians_MatchFiniteDifferences(t *testing.T) {
	cases := []struct {
		name  string
		jac   procedure
		of    procedure
		group string
		nnz   int
	}{
		{"dynamic_jacobian_x", dynamic_jacobian_x, dynamic, "x", 2},
		{"dynamic_jacobian_u", dynamic_jacobian_u, dynamic, "u", 3},
		{"cost_jacobian_x", cost_jacobian_x, cost, "x", 1},
	}
	for _, c := range cases {
		m := c.jac(&state, &control)
		if diff := cmp.Diff(finiteJacobian(c.of, c.group), m.Dense(), approx); diff != "" {
			t.Errorf("%s mismatch (-finite differences +generated):\n%s", c.name, diff)
		}
		if m.NonZeros() != c.nnz {
			t.Errorf("%s: want %d stored entries, got %d", c.name, c.nnz, m.NonZeros())
		}
	}
}

func TestCostHessian(t *testing.T) {
	want := [][]float64{{0, 0}, {0, 1}}
	if diff := cmp.Diff(want, cost_hessian_uu(&state, &control).Dense()); diff != "" {
		t.Errorf("cost_hessian_uu mismatch (-want +got):\n%s", diff)
	}
}
