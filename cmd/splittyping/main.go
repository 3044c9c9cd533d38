// Package main is the entry point for the splittyping CLI.
//
// Usage:
//
//	splittyping [flags] <command> [args]
//
// Commands:
//
//	split    - Split replies into fragments
//	preview  - Play back a reply with typing pacing
//	serve    - Run the WebSocket delivery server
//	config   - Show or initialize the settings file
//	version  - Show version information
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/haivivi/splittyping/cmd/splittyping/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := commands.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
