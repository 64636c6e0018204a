package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"morphtest/internal/cli"
)

// main is the exit-code boundary: everything below it returns errors.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	res, _ := cli.Run(ctx, os.Args[1:], cli.Streams{Stdout: os.Stdout, Stderr: os.Stderr})
	stop()
	os.Exit(res.ExitCode)
}
