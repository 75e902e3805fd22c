package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/cujulink/internal/loadtest"
)

const runTimeout = 10 * time.Minute

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	if err := loadtest.NewCommand().ExecuteContext(ctx); err != nil {
		os.Stderr.WriteString("loadtest: " + err.Error() + "\n")
		cancel()
		stop()
		os.Exit(1)
	}
}
