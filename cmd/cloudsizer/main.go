package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"cloudsizer/internal/cli"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cli.NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "cloudsizer: %v\n", err)
		os.Exit(2)
	}
}
