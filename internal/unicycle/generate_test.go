package unicycle

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/njchilds90/symgen/emit"
	"github.com/njchilds90/symgen/job"
)

var update = flag.Bool("update", false, "rewrite the generated procedures")

func TestGeneratedSourceUpToDate(t *testing.T) {
	cfg, err := job.Load("unicycle.toml")
	if err != nil {
		t.Fatal(err)
	}
	if *update {
		if _, err := job.Generate(context.Background(), cfg); err != nil {
			t.Fatal(err)
		}
	}

	tasks, err := job.Plan(cfg)
	if err != nil {
		t.Fatal(err)
	}
	var (
		mu     sync.Mutex
		bodies = map[string]string{}
	)
	results := job.Run(context.Background(), tasks, cfg.Options(), func(p *emit.Procedure) error {
		mu.Lock()
		defer mu.Unlock()
		bodies[p.Name+".go"] = p.Body
		return nil
	})
	for _, r := range results {
		if r.Err != nil {
			t.Fatalf("%s: %v", r.Task, r.Err)
		}
	}

	for name, want := range bodies {
		got, err := os.ReadFile(name)
		if err != nil {
			t.Errorf("%s: %v (run go generate)", name, err)
			continue
		}
		if diff := cmp.Diff(want, string(got)); diff != "" {
			t.Errorf("%s is stale, run go generate (-generated +checked in):\n%s", name, diff)
		}
	}

	files, err := filepath.Glob("*.go")
	if err != nil {
		t.Fatal(err)
	}
	var extra []string
	for _, f := range files {
		if strings.HasSuffix(f, "_test.go") || f == "doc.go" {
			continue
		}
		if _, ok := bodies[f]; !ok {
			extra = append(extra, f)
		}
	}
	sort.Strings(extra)
	if len(extra) > 0 {
		t.Errorf("files not produced by unicycle.toml: %v", extra)
	}
}
