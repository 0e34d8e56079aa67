package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/router-for-me/CLIProxyAPISelector/internal/cli"
	log "github.com/sirupsen/logrus"
)

// main runs the CLI and exits 1 on unrecoverable command errors.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if errRun := cli.Execute(ctx, os.Args[1:]); errRun != nil {
		log.WithError(errRun).Error("command failed")
		stop()
		os.Exit(1)
	}
}
