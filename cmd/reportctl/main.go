package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/odyssey-erp/odyssey-reports/cmd/reportctl/cli"
	"github.com/odyssey-erp/odyssey-reports/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	open := func() (*cli.QueueCLI, error) {
		cfg, err := app.LoadConfig()
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		return cli.NewQueueCLI(cfg.QueueOptions()), nil
	}

	if err := cli.NewRootCmd(open).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "reportctl:", err)
		os.Exit(1)
	}
}
