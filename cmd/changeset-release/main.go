// Package main is the entry point for the changeset-release command.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexanderchan/changeset-release/internal/bootstrap"
	"github.com/alexanderchan/changeset-release/internal/buildinfo"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
	builtBy = "unknown"
)

func main() {
	buildinfo.Set(version, commit, date, builtBy)
	buildinfo.Enrich()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := bootstrap.Run(ctx, os.Args, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
