// Command predictionmcp is the entry point for the prediction markets MCP
// server. It sets up signal handling and hands control to the CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alanyoungcy/predictionmcp/internal/cli"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// Setup signal handling for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCmd(version).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
