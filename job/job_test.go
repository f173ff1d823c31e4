package job_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/symgen/emit"
	"github.com/njchilds90/symgen/job"
	"github.com/njchilds90/symgen/lower"
)

const bicycleJob = `
Dialect = "eigen"
Workers = 2

[[Group]]
Name = "x"
Dim = 2

[[Group]]
Name = "u"
Dim = 1

[[Group]]
Name = "x_dot"
Dim = 2

[[Function]]
Name = "dynamic"
Params = ["x", "u"]
Value = ["x1*cos(x0)", "u0"]
Jacobian = ["x", "u"]
Implicit = "x_dot"

[[Function]]
Name = "cost"
Params = ["x", "u"]
Value = ["x0^2 + x1^2 + u0^2"]
Jacobian = ["x"]
Hessian = [["x", "x"], ["u", "x"]]
`

func decode(t *testing.T, src string) *job.Config {
	t.Helper()
	cfg, err := job.Decode(strings.NewReader(src))
	require.NoError(t, err)
	return cfg
}

func TestDecode_Defaults(t *testing.T) {
	cfg := decode(t, bicycleJob)
	assert.Equal(t, "generated", cfg.Dir)
	assert.Equal(t, "generated", cfg.Package)
	assert.Equal(t, 2, cfg.WorkerCount())
	assert.Equal(t, emit.Vars("x", 2, "u", 1, "x_dot", 2), cfg.Declaration())
	require.Len(t, cfg.Function, 2)
	assert.Equal(t, [][]string{{"x", "x"}, {"u", "x"}}, cfg.Function[1].Hessian)
}

func TestLoad_AnnotatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.toml")
	require.NoError(t, os.WriteFile(path, []byte("Dialect = \"eigen\"\nBogus = 1\n"), 0o644))
	_, err := job.Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
	assert.Contains(t, err.Error(), "Bogus")
}

func TestDump_RoundTrip(t *testing.T) {
	cfg := decode(t, bicycleJob)
	var buf bytes.Buffer
	require.NoError(t, job.Dump(&buf, cfg))
	again := decode(t, buf.String())
	assert.Equal(t, cfg, again)
}

func TestValidate(t *testing.T) {
	cases := map[string]string{
		"unknown dialect":   "Dialect = \"fortran\"",
		"undeclared group":  "[[Function]]\nName = \"f\"\nValue = [\"y0\"]\nJacobian = [\"y\"]",
		"vector hessian":    "[[Group]]\nName = \"x\"\nDim = 1\n[[Function]]\nName = \"f\"\nValue = [\"x0\", \"x0\"]\nHessian = [[\"x\", \"x\"]]",
		"implicit mismatch": "[[Group]]\nName = \"x\"\nDim = 2\n[[Function]]\nName = \"f\"\nValue = [\"x0\"]\nImplicit = \"x\"",
		"duplicate":         "[[Function]]\nName = \"f\"\nValue = [\"1\"]\n[[Function]]\nName = \"f\"\nValue = [\"2\"]",
		"empty value":       "[[Function]]\nName = \"f\"",
		"bad group":         "[[Group]]\nName = \"x\"\nDim = 0",
	}
	for name, src := range cases {
		cfg := decode(t, src)
		assert.Error(t, cfg.Validate(), name)
	}
}

// ============================================================
// Plan
// ============================================================

func TestPlan_TaskNames(t *testing.T) {
	tasks, err := job.Plan(decode(t, bicycleJob))
	require.NoError(t, err)

	var names []string
	for _, task := range tasks {
		names = append(names, task.Name)
	}
	assert.Equal(t, []string{
		"dynamic",
		"dynamic_jacobian_x",
		"dynamic_jacobian_u",
		"dynamic_implicit_jacobian_x",
		"dynamic_implicit_jacobian_u",
		"dynamic_implicit_jacobian_x_dot",
		"cost",
		"cost_jacobian_x",
		"cost_hessian_xx",
		"cost_hessian_ux",
	}, names)

	byName := map[string]job.Task{}
	for _, task := range tasks {
		byName[task.Name] = task
	}
	assert.Equal(t, job.KindImplicitJacobian, byName["dynamic_implicit_jacobian_x_dot"].Kind)
	assert.Equal(t, emit.Vars("x", 2, "u", 1, "x_dot", 2), byName["dynamic_implicit_jacobian_x"].Vars)
	assert.Equal(t, emit.Vars("x", 2, "u", 1), byName["dynamic_jacobian_x"].Vars)

	h := byName["cost_hessian_xx"].Matrix
	require.Equal(t, 2, h.Rows())
	assert.Equal(t, "2", h.At(0, 0).String())
	assert.Equal(t, 2, h.NonZeros())
	assert.Equal(t, 0, byName["cost_hessian_ux"].Matrix.NonZeros())
}

func TestPlan_ParseError(t *testing.T) {
	_, err := job.Plan(decode(t, "[[Function]]\nName = \"f\"\nValue = [\"x0 +\"]"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "function f")
}

// ============================================================
// Run
// ============================================================

func TestRun_EmitsEveryTask(t *testing.T) {
	tasks, err := job.Plan(decode(t, bicycleJob))
	require.NoError(t, err)

	var (
		mu   sync.Mutex
		seen = map[string]bool{}
	)
	sink := func(p *emit.Procedure) error {
		mu.Lock()
		defer mu.Unlock()
		seen[p.Name] = true
		return nil
	}
	results := job.Run(context.Background(), tasks, job.Options{Workers: 3, Dialect: lower.Eigen}, sink)
	require.Len(t, results, len(tasks))
	assert.Equal(t, 0, job.Failed(results))
	for i, r := range results {
		assert.Equal(t, tasks[i].Name, r.Task, "results keep task order")
		assert.True(t, seen[r.Task])
	}
}

func TestRun_FailureIsolated(t *testing.T) {
	cfg := decode(t, `
[[Group]]
Name = "x"
Dim = 1

[[Function]]
Name = "good"
Value = ["sin(x0)"]

[[Function]]
Name = "bad"
Value = ["frob(x0)"]

[[Function]]
Name = "also_good"
Value = ["x0^2"]
`)
	cfg.Dir = t.TempDir()
	results, err := job.Generate(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 3")
	require.Len(t, results, 3)
	assert.NoError(t, results[0].Err)
	assert.ErrorIs(t, results[1].Err, lower.ErrUnknownFunction)
	assert.NoError(t, results[2].Err)

	_, statErr := os.Stat(filepath.Join(cfg.Dir, "also_good.h"))
	assert.NoError(t, statErr)
	_, statErr = os.Stat(filepath.Join(cfg.Dir, "bad.h"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestRun_Cancelled(t *testing.T) {
	tasks, err := job.Plan(decode(t, bicycleJob))
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results := job.Run(ctx, tasks, job.Options{Workers: 1}, nil)
	assert.Equal(t, len(tasks), job.Failed(results))
	assert.ErrorIs(t, results[0].Err, context.Canceled)
}

func TestGenerate_GoDialect(t *testing.T) {
	cfg := decode(t, bicycleJob)
	cfg.Dir = t.TempDir()
	cfg.Dialect = "go"
	cfg.Package = "bicycle"
	results, err := job.Generate(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, results, 10)

	src, err := os.ReadFile(filepath.Join(cfg.Dir, "dynamic.go"))
	require.NoError(t, err)
	assert.Contains(t, string(src), "package bicycle")
	assert.Contains(t, string(src), "out.Add(0, 0, x[1] * math.Cos(x[0]))")
}
