// Package job turns a TOML job file into generated procedures: it parses the
// declared functions, expands them into value and derivative tasks, and runs
// the tasks on a bounded worker pool.
package job

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"reflect"
	"runtime"

	"github.com/ethereum/go-ethereum/log"
	"github.com/naoina/toml"
	"github.com/pkg/errors"

	"github.com/njchilds90/symgen/emit"
	"github.com/njchilds90/symgen/lower"
)

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		return fmt.Errorf("field '%s' is not defined in %s", field, rt.String())
	},
}

// Config is the content of a job file.
type Config struct {
	Dir        string // output directory
	Dialect    string // "eigen" or "go"
	Package    string `toml:",omitempty"` // package clause of Go output
	Permissive bool   // pass unknown functions through
	Workers    int    // concurrent emitters, <= 0 means one per CPU

	Group    []GroupConfig
	Function []FunctionConfig
}

// GroupConfig declares one vector variable group.
type GroupConfig struct {
	Name string
	Dim  int
}

// FunctionConfig declares a column-vector function and the derivatives to
// generate for it.
type FunctionConfig struct {
	Name     string
	Params   []string   `toml:",omitempty"` // parameter groups, all groups when empty
	Value    []string   // one infix expression per row
	Jacobian []string   `toml:",omitempty"` // groups to differentiate by
	Hessian  [][]string `toml:",omitempty"` // [a, b] group pairs, scalar functions only
	Implicit string     `toml:",omitempty"` // xdot group for implicit-form Jacobians
}

// Defaults are the values a job file starts from.
var Defaults = Config{
	Dir:     "generated",
	Dialect: lower.Eigen.Name,
	Package: "generated",
}

// Load reads a job file on top of Defaults.
func Load(file string) (*Config, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg, err := Decode(bufio.NewReader(f))
	// Add file name to errors that have a line number.
	if _, ok := errors.Cause(err).(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	return cfg, err
}

// Decode reads a job from r on top of Defaults.
func Decode(r io.Reader) (*Config, error) {
	cfg := Defaults
	if err := tomlSettings.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Dump writes cfg in job file syntax.
func Dump(w io.Writer, cfg *Config) error {
	return tomlSettings.NewEncoder(w).Encode(cfg)
}

// Declaration returns the variable groups in declaration order.
func (c *Config) Declaration() emit.Declaration {
	d := make(emit.Declaration, len(c.Group))
	for i, g := range c.Group {
		d[i] = emit.Group{Name: g.Name, Dim: g.Dim}
	}
	return d
}

// WorkerCount resolves Workers to a positive number.
func (c *Config) WorkerCount() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.NumCPU()
}

// Validate checks the cross references of a job.
func (c *Config) Validate() error {
	if _, ok := lower.DialectByName(c.Dialect); !ok {
		return errors.Errorf("unknown dialect %q, want one of %v", c.Dialect, lower.DialectNames())
	}
	decl := c.Declaration()
	if err := decl.Validate(); err != nil {
		return err
	}
	seen := make(map[string]bool, len(c.Function))
	for _, fn := range c.Function {
		if fn.Name == "" {
			return errors.New("function without a name")
		}
		if seen[fn.Name] {
			return errors.Errorf("duplicate function %q", fn.Name)
		}
		seen[fn.Name] = true
		if len(fn.Value) == 0 {
			return errors.Errorf("function %s: empty value", fn.Name)
		}
		for _, g := range append(append([]string(nil), fn.Params...), fn.Jacobian...) {
			if _, ok := decl.Lookup(g); !ok {
				return errors.Errorf("function %s: undeclared group %q", fn.Name, g)
			}
		}
		for _, pair := range fn.Hessian {
			if len(pair) != 2 {
				return errors.Errorf("function %s: hessian entry %v is not a group pair", fn.Name, pair)
			}
			if len(fn.Value) != 1 {
				return errors.Errorf("function %s: hessian of a %d-row function", fn.Name, len(fn.Value))
			}
			for _, g := range pair {
				if _, ok := decl.Lookup(g); !ok {
					return errors.Errorf("function %s: undeclared group %q", fn.Name, g)
				}
			}
		}
		if fn.Implicit != "" {
			g, ok := decl.Lookup(fn.Implicit)
			if !ok {
				return errors.Errorf("function %s: undeclared group %q", fn.Name, fn.Implicit)
			}
			if g.Dim != len(fn.Value) {
				return errors.Errorf("function %s: implicit group %s has %d entries for %d rows", fn.Name, g.Name, g.Dim, len(fn.Value))
			}
		}
	}
	if len(c.Function) == 0 {
		log.Warn("Job declares no functions")
	}
	return nil
}
