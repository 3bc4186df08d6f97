// Package main is the retrofit command-line entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rshade/retrofit/internal/cli"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func run(ctx context.Context, args []string) error {
	root := cli.NewRootCmd(version)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:])
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
