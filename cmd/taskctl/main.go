// Command taskctl is a terminal client for the taskdesk API.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/redmonkez12/taskdesk/cmd/taskctl/ui"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		ui.Error(os.Stderr, err.Error())
		stop()
		os.Exit(1)
	}
}
