// symgen-server exposes the symgen tools as an HTTP endpoint for agent
// frameworks.
//
//	POST /tool   execute a tool call
//	GET  /schema tool schema for agent registration
//	GET  /health liveness check
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"gopkg.in/urfave/cli.v1"

	"github.com/njchilds90/symgen/internal/logging"
	"github.com/njchilds90/symgen/server"
)

var (
	portFlag = cli.IntFlag{
		Name:  "port",
		Usage: "Port to listen on",
		Value: 8080,
	}
	cacheFlag = cli.IntFlag{
		Name:  "cache",
		Usage: "Number of tool responses to memoise (0 disables)",
		Value: server.DefaultConfig.CacheSize,
	}
	corsFlag = cli.StringSliceFlag{
		Name:  "cors",
		Usage: "Allowed CORS origin (repeatable, default any)",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Usage: "Logging verbosity: 0=crit, 1=error, 2=warn, 3=info, 4=debug, 5=trace",
		Value: logging.DefaultVerbosity,
	}
)

func main() {
	app := cli.NewApp()
	app.Name = "symgen-server"
	app.Usage = "serve symgen tool calls over HTTP"
	app.Flags = []cli.Flag{portFlag, cacheFlag, corsFlag, verbosityFlag}
	app.Action = serve
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serve(ctx *cli.Context) error {
	logging.Setup(ctx.Int(verbosityFlag.Name))

	s, err := server.NewServer(server.Config{
		CacheSize:   ctx.Int(cacheFlag.Name),
		CorsOrigins: ctx.StringSlice(corsFlag.Name),
	})
	if err != nil {
		return err
	}
	addr := fmt.Sprintf(":%d", ctx.Int(portFlag.Name))
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigc
		log.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Info("Tool server listening", "addr", addr, "cache", ctx.Int(cacheFlag.Name))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
