package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/cujulink/internal/importer"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := importer.NewCommand().ExecuteContext(ctx); err != nil {
		os.Stderr.WriteString("populate: " + err.Error() + "\n")
		stop()
		os.Exit(1)
	}
}
