// Videohub-cfg reads, saves, compares and applies routing presets on
// Blackmagic Videohub matrix routers.
//
// It talks to the hub's text control protocol on TCP port 9990. Presets
// are JSON files holding a routing table and the labels seen when it was
// saved.
//
// Usage:
//
//	videohub-cfg [command] [flags]
//
// Running without arguments launches the interactive menu.
// See 'videohub-cfg --help' for available commands.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/muurk/videohub/internal/logging"
)

// reportedError marks an error that has already been shown to the user
type reportedError struct {
	error
}

func (e reportedError) Unwrap() error {
	return e.error
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	logging.Sync()

	if err != nil {
		var reported reportedError
		if !errors.As(err, &reported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
