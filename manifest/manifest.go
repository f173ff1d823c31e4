// Package manifest persists generated procedures: one source file per
// procedure plus, for C++ headers, a Bazel cc_library rule per header.
package manifest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"sync"

	mapset "github.com/deckarep/golang-set"
	"github.com/pkg/errors"

	"github.com/njchilds90/symgen/emit"
)

// BuildFile is the name of the Bazel build file kept next to the headers.
const BuildFile = "BUILD"

var ruleNameRE = regexp.MustCompile(`name\s*=\s*"([^"]+)"`)

// Writer saves procedures into Dir. It is safe for concurrent use.
type Writer struct {
	Dir string

	mu    sync.Mutex
	rules mapset.Set // rule names known to be in BUILD, loaded lazily
}

// NewWriter returns a writer targeting dir.
func NewWriter(dir string) *Writer { return &Writer{Dir: dir} }

// Result describes what a Write call changed on disk.
type Result struct {
	Path      string // source file written
	RuleAdded bool   // a cc_library rule was appended to BUILD
}

// Extension returns the source file extension used for a dialect.
func Extension(dialect string) string {
	if dialect == "go" {
		return ".go"
	}
	return ".h"
}

// Write stores p as <Dir>/<name><ext>, creating Dir when needed. Existing
// sources are overwritten; BUILD rules are appended only once per name.
func (w *Writer) Write(p *emit.Procedure) (*Result, error) {
	if w.Dir == "" {
		return nil, errors.New("manifest: no output directory")
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "manifest: create output directory")
	}
	file := p.Name + Extension(p.Dialect)
	res := &Result{Path: filepath.Join(w.Dir, file)}
	if err := os.WriteFile(res.Path, []byte(p.Body), 0o644); err != nil {
		return nil, errors.Wrapf(err, "manifest: write %s", file)
	}
	if p.Dialect == "go" {
		return res, nil
	}

	if err := w.loadRules(); err != nil {
		return nil, err
	}
	if w.rules.Contains(p.Name) {
		return res, nil
	}
	if err := w.appendRule(p.Name, file); err != nil {
		return nil, err
	}
	w.rules.Add(p.Name)
	res.RuleAdded = true
	return res, nil
}

// Rules returns the sorted rule names currently declared in BUILD.
func (w *Writer) Rules() ([]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.rules = nil
	if err := w.loadRules(); err != nil {
		return nil, err
	}
	out := make([]string, 0, w.rules.Cardinality())
	for _, name := range w.rules.ToSlice() {
		out = append(out, name.(string))
	}
	sort.Strings(out)
	return out, nil
}

func (w *Writer) buildPath() string { return filepath.Join(w.Dir, BuildFile) }

func (w *Writer) loadRules() error {
	if w.rules != nil {
		return nil
	}
	data, err := os.ReadFile(w.buildPath())
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "manifest: read BUILD")
	}
	w.rules = mapset.NewSet()
	for _, m := range ruleNameRE.FindAllSubmatch(data, -1) {
		w.rules.Add(string(m[1]))
	}
	return nil
}

func (w *Writer) appendRule(name, header string) error {
	f, err := os.OpenFile(w.buildPath(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrap(err, "manifest: open BUILD")
	}
	if _, err := f.Write(CCLibrary(name, header)); err != nil {
		f.Close()
		return errors.Wrap(err, "manifest: append BUILD rule")
	}
	return errors.Wrap(f.Close(), "manifest: close BUILD")
}

// CCLibrary renders the header-only cc_library rule for one generated header.
func CCLibrary(name, header string) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, `
cc_library(
    name = %q,
    hdrs = [
        %q,
    ],
    copts = ["-O3", "-march=native"],
    deps = [
        "@eigen",
    ],
    visibility = ["//visibility:public"],
)
`, name, header)
	return b.Bytes()
}
