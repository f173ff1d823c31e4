package main

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/rjeczalik/notify"
	"gopkg.in/urfave/cli.v1"

	"github.com/njchilds90/symgen/job"
)

// Editors often write a file in several steps; changes closer together than
// this are handled once.
const watchDebounce = 300 * time.Millisecond

var watchCommand = cli.Command{
	Action:    watch,
	Name:      "watch",
	Usage:     "Regenerate a job whenever its file changes",
	ArgsUsage: "<job.toml>",
	Flags:     []cli.Flag{dirFlag, dialectFlag, workersFlag, permissiveFlag},
}

func watch(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return fmt.Errorf("expected exactly one job file argument")
	}
	path, err := filepath.Abs(ctx.Args().First())
	if err != nil {
		return err
	}
	// Watch the directory: editors that save by rename replace the file.
	events := make(chan notify.EventInfo, 16)
	if err := notify.Watch(filepath.Dir(path), events, notify.Write, notify.Create, notify.Rename); err != nil {
		return err
	}
	defer notify.Stop(events)

	// An interrupt cancels a generation in flight and ends the watch.
	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	watchLoop(runCtx, path, events, func(runCtx context.Context) {
		cfg, err := loadJob(ctx)
		if err != nil {
			failColor.Println(err)
			return
		}
		results, err := job.Generate(runCtx, cfg)
		printResults(results)
		if err != nil {
			failColor.Println(err)
		}
	})
	return nil
}

// watchLoop calls run once, then again after every debounced change to path,
// until ctx is done. run receives ctx so that it can stop early.
func watchLoop(ctx context.Context, path string, events <-chan notify.EventInfo, run func(context.Context)) {
	run(ctx)
	log.Info("Watching job file", "path", path)

	var pending <-chan time.Time
	for {
		select {
		case ei := <-events:
			if ei.Path() != path {
				continue
			}
			log.Debug("Job file changed", "event", ei.Event())
			pending = time.After(watchDebounce)
		case <-pending:
			pending = nil
			run(ctx)
		case <-ctx.Done():
			log.Info("Stopped watching job file", "path", path)
			return
		}
	}
}
