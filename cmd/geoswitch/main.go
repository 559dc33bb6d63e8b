package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nejeja/geoswitch/internal/cli"
)

var version = "dev"

func main() {
	// An interrupt mid-switch must still run cleanup (privilege release,
	// backend teardown deferred in the commands), so commands get a
	// signal-aware context instead of being killed outright.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cli.SetVersion(version)
	if err := cli.NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
