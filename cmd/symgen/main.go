// symgen compiles expression matrices into sparse-matrix procedures.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"gopkg.in/urfave/cli.v1"

	"github.com/njchilds90/symgen/internal/logging"
	"github.com/njchilds90/symgen/job"
)

var (
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Usage: "Logging verbosity: 0=crit, 1=error, 2=warn, 3=info, 4=debug, 5=trace",
		Value: logging.DefaultVerbosity,
	}
	dirFlag = cli.StringFlag{
		Name:  "dir",
		Usage: "Output directory (overrides the job file)",
	}
	dialectFlag = cli.StringFlag{
		Name:  "dialect",
		Usage: "Target language: eigen or go",
	}
	workersFlag = cli.IntFlag{
		Name:  "workers",
		Usage: "Concurrent emitters (overrides the job file)",
	}
	permissiveFlag = cli.BoolFlag{
		Name:  "permissive",
		Usage: "Pass functions unknown to the dialect through verbatim",
	}

	okColor   = color.New(color.FgGreen)
	failColor = color.New(color.FgRed, color.Bold)
	noteColor = color.New(color.FgCyan)
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		failColor.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newApp builds the command line application. Table and config output go
// to app.Writer.
func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "symgen"
	app.Usage = "generate sparse-matrix procedures from symbolic expressions"
	app.Flags = []cli.Flag{verbosityFlag}
	app.Before = func(ctx *cli.Context) error {
		logging.Setup(ctx.GlobalInt(verbosityFlag.Name))
		return nil
	}
	app.Commands = []cli.Command{
		generateCommand,
		planCommand,
		lowerCommand,
		watchCommand,
		dumpConfigCommand,
	}
	return app
}

// loadJob reads the job file named by the first argument and applies the
// command line overrides.
func loadJob(ctx *cli.Context) (*job.Config, error) {
	if ctx.NArg() != 1 {
		return nil, fmt.Errorf("expected exactly one job file argument")
	}
	cfg, err := job.Load(ctx.Args().First())
	if err != nil {
		return nil, err
	}
	if ctx.IsSet(dirFlag.Name) {
		cfg.Dir = ctx.String(dirFlag.Name)
	}
	if ctx.IsSet(dialectFlag.Name) {
		cfg.Dialect = ctx.String(dialectFlag.Name)
	}
	if ctx.IsSet(workersFlag.Name) {
		cfg.Workers = ctx.Int(workersFlag.Name)
	}
	if ctx.Bool(permissiveFlag.Name) {
		cfg.Permissive = true
	}
	return cfg, nil
}
