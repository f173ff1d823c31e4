package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/urfave/cli.v1"

	"github.com/njchilds90/symgen/job"
)

var (
	generateCommand = cli.Command{
		Action:    generate,
		Name:      "generate",
		Usage:     "Generate every procedure of a job file",
		ArgsUsage: "<job.toml>",
		Flags:     []cli.Flag{dirFlag, dialectFlag, workersFlag, permissiveFlag},
		Description: `The generate command expands the functions of the job file into value,
Jacobian and Hessian procedures and writes them to the output directory.
C++ headers get a Bazel cc_library rule in the directory's BUILD file.`,
	}
	planCommand = cli.Command{
		Action:      plan,
		Name:        "plan",
		Usage:       "Show the procedures a job file would generate",
		ArgsUsage:   "<job.toml>",
		Flags:       []cli.Flag{dialectFlag},
		Description: `The plan command lists the tasks of a job without writing anything.`,
	}
	dumpConfigCommand = cli.Command{
		Action:      dumpConfig,
		Name:        "dumpconfig",
		Usage:       "Show job configuration values",
		ArgsUsage:   "[job.toml]",
		Flags:       []cli.Flag{dirFlag, dialectFlag, workersFlag, permissiveFlag},
		Description: `The dumpconfig command shows the job values after defaults and flags apply.`,
	}
)

func generate(ctx *cli.Context) error {
	cfg, err := loadJob(ctx)
	if err != nil {
		return err
	}
	results, err := job.Generate(context.Background(), cfg)
	printResults(results)
	return err
}

func printResults(results []job.Result) {
	for _, r := range results {
		if r.Err != nil {
			failColor.Printf("FAIL %s: %v\n", r.Task, r.Err)
			continue
		}
		okColor.Printf("ok   %s", r.Task)
		noteColor.Printf(" %dx%d nnz=%d\n", r.Proc.Rows, r.Proc.Cols, r.Proc.NonZeros)
	}
}

func plan(ctx *cli.Context) error {
	cfg, err := loadJob(ctx)
	if err != nil {
		return err
	}
	tasks, err := job.Plan(cfg)
	if err != nil {
		return err
	}
	table := tablewriter.NewWriter(ctx.App.Writer)
	table.SetHeader([]string{"Procedure", "Kind", "Shape", "Nonzeros", "Params"})
	for _, t := range tasks {
		table.Append([]string{
			t.Name,
			t.Kind,
			fmt.Sprintf("%dx%d", t.Matrix.Rows(), t.Matrix.Cols()),
			strconv.Itoa(t.Matrix.NonZeros()),
			t.Vars.String(),
		})
	}
	table.Render()
	noteColor.Fprintf(ctx.App.Writer, "%d procedures, dialect %s, output %s\n", len(tasks), cfg.Dialect, cfg.Dir)
	return nil
}

func dumpConfig(ctx *cli.Context) error {
	cfg := job.Defaults
	if ctx.NArg() > 0 {
		loaded, err := loadJob(ctx)
		if err != nil {
			return err
		}
		cfg = *loaded
	}
	return job.Dump(ctx.App.Writer, &cfg)
}
