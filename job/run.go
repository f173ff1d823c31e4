package job

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/njchilds90/symgen/emit"
	"github.com/njchilds90/symgen/lower"
	"github.com/njchilds90/symgen/manifest"
)

// Result is the outcome of one task.
type Result struct {
	Task    string
	Proc    *emit.Procedure
	Err     error
	Elapsed time.Duration
}

// Sink receives every successfully emitted procedure. It may be called from
// several goroutines at once.
type Sink func(*emit.Procedure) error

// Options controls how Run emits procedures.
type Options struct {
	Workers    int
	Dialect    *lower.Dialect
	Package    string
	Permissive bool
}

// Options derives the emit options of a job file.
func (c *Config) Options() Options {
	d, _ := lower.DialectByName(c.Dialect)
	return Options{Workers: c.WorkerCount(), Dialect: d, Package: c.Package, Permissive: c.Permissive}
}

func (o Options) emitOptions() []emit.Option {
	opts := []emit.Option{emit.WithDialect(o.Dialect), emit.Permissive(o.Permissive)}
	if o.Package != "" {
		opts = append(opts, emit.WithPackage(o.Package))
	}
	return opts
}

// Run emits every task with at most opts.Workers in flight and hands each
// procedure to sink. A failing task does not stop the others; results come
// back in task order. Tasks not yet started when ctx is cancelled fail with
// the context's error.
func Run(ctx context.Context, tasks []Task, opts Options, sink Sink) []Result {
	results := make([]Result, len(tasks))
	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}
	var g errgroup.Group
	g.SetLimit(workers)
	for i := range tasks {
		i, t := i, tasks[i]
		g.Go(func() error {
			results[i] = runTask(ctx, t, opts, sink)
			return nil
		})
	}
	g.Wait()
	return results
}

func runTask(ctx context.Context, t Task, opts Options, sink Sink) Result {
	res := Result{Task: t.Name}
	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}
	start := time.Now()
	log.Debug("Emitting procedure", "name", t.Name, "kind", t.Kind, "shape", t.Matrix.String())
	p, err := emit.Emit(t.Matrix, t.Vars, t.Name, opts.emitOptions()...)
	if err == nil && sink != nil {
		err = sink(p)
	}
	res.Elapsed = time.Since(start)
	if err != nil {
		res.Err = err
		log.Error("Failed to generate procedure", "name", t.Name, "err", err)
		return res
	}
	res.Proc = p
	log.Info("Generated procedure", "name", t.Name, "rows", p.Rows, "cols", p.Cols, "nnz", p.NonZeros, "elapsed", res.Elapsed)
	return res
}

// Failed returns the number of results carrying an error.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}

// Generate plans cfg, writes every procedure into cfg.Dir and returns the
// per-task results. The error reports planning failures or, when some tasks
// failed, how many.
func Generate(ctx context.Context, cfg *Config) ([]Result, error) {
	tasks, err := Plan(cfg)
	if err != nil {
		return nil, err
	}
	w := manifest.NewWriter(cfg.Dir)
	sink := func(p *emit.Procedure) error {
		res, err := w.Write(p)
		if err != nil {
			return err
		}
		log.Debug("Saved procedure", "path", res.Path, "rule", res.RuleAdded)
		return nil
	}
	results := Run(ctx, tasks, cfg.Options(), sink)
	if n := Failed(results); n > 0 {
		return results, errors.Errorf("%d of %d procedures failed", n, len(results))
	}
	return results, nil
}
