package expr_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/njchilds90/symgen/expr"
)

func TestJSON_RoundTrip(t *testing.T) {
	orig := expr.Add(
		expr.Mul(expr.Var("x", 4), expr.Cos(expr.Var("x", 2))),
		expr.Pow(expr.Sym("u0"), expr.Num(-0.5)),
		expr.Fn("atan2", expr.Sym("y"), expr.Num(0.0003)),
	)
	s, err := expr.ToJSON(orig)
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	back, err := expr.ParseJSON([]byte(s))
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if !expr.Equal(orig, back) {
		t.Errorf("round trip changed the tree: %s -> %s", orig, back)
	}
	// Group metadata survives.
	sym := back.(*expr.Sum).Terms()[0].(*expr.Product).Factors()[0].(*expr.Symbol)
	if g, i, ok := sym.Group(); !ok || g != "x" || i != 4 {
		t.Errorf("lost group metadata: %q %d %v", g, i, ok)
	}
}

func TestFromJSON_Lenient(t *testing.T) {
	src := `{"type":"func","name":"sin","arg":{"type":"num","value":"0.25"}}`
	n, err := expr.ParseJSON([]byte(src))
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if n.String() != "sin(0.25)" {
		t.Errorf("want sin(0.25), got %s", n)
	}
}

func TestFromJSON_Errors(t *testing.T) {
	cases := []struct{ src, want string }{
		{`{}`, "missing 'type'"},
		{`{"type":"frob"}`, "unknown expression type"},
		{`{"type":"num"}`, "missing 'value'"},
		{`{"type":"sym","name":""}`, "non-empty string"},
		{`{"type":"add","terms":[1]}`, "must be an object"},
		{`{"type":"pow","base":{"type":"num","value":1}}`, `missing "exp"`},
		{`{"type":"sym","name":"x1","group":"x","index":2}`, "does not match"},
	}
	for _, c := range cases {
		_, err := expr.ParseJSON([]byte(c.src))
		if err == nil || !strings.Contains(err.Error(), c.want) {
			t.Errorf("ParseJSON(%s) = %v, want error containing %q", c.src, err, c.want)
		}
	}
}

func TestMatrixJSON(t *testing.T) {
	var obj map[string]interface{}
	src := `{"rows":2,"cols":2,"entries":["x0*cos(x2)",null,{"type":"num","value":0},"u1"]}`
	if err := json.Unmarshal([]byte(src), &obj); err != nil {
		t.Fatal(err)
	}
	m, err := expr.MatrixFromJSON(obj)
	if err != nil {
		t.Fatalf("MatrixFromJSON: %v", err)
	}
	if m.NonZeros() != 2 {
		t.Errorf("want 2 nonzeros, got %d", m.NonZeros())
	}
	if m.At(0, 0).String() != "x0*cos(x2)" || m.At(0, 1) != nil {
		t.Errorf("unexpected matrix %s", m)
	}

	enc, err := expr.EncodeMatrix(m)
	if err != nil {
		t.Fatalf("EncodeMatrix: %v", err)
	}
	if enc["rows"] != 2 || enc["cols"] != 2 {
		t.Errorf("bad shape in %v", enc)
	}

	obj["entries"] = []interface{}{"x0"}
	if _, err := expr.MatrixFromJSON(obj); err == nil {
		t.Error("entry count mismatch should fail")
	}
}

func TestMatrixJSON_BadShapes(t *testing.T) {
	cases := []struct{ name, src string }{
		{"fractional rows", `{"rows":1.5,"cols":1,"entries":["x0"]}`},
		{"fractional cols", `{"rows":1,"cols":0.5,"entries":[]}`},
		{"negative", `{"rows":-1,"cols":1,"entries":[]}`},
		{"cell count wraps", `{"rows":4294967296,"cols":4294967296,"entries":[]}`},
		{"huge rows", `{"rows":1e300,"cols":0,"entries":[]}`},
		{"string shape", `{"rows":"1","cols":1,"entries":["x0"]}`},
	}
	for _, c := range cases {
		var obj map[string]interface{}
		if err := json.Unmarshal([]byte(c.src), &obj); err != nil {
			t.Fatal(err)
		}
		if m, err := expr.MatrixFromJSON(obj); err == nil {
			t.Errorf("%s: want error, got %dx%d matrix", c.name, m.Rows(), m.Cols())
		}
	}
}
