package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"

	"github.com/makeitchaccha/fluent-locale-checker/checker/commands"
)

var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	status := commands.Run(ctx, afero.NewOsFs(), os.Args[1:], os.Stdout, os.Stderr, Version+" ("+Commit+")")
	stop()
	os.Exit(status)
}
