package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/trigoo007/cagcore/pkg/config"
	"github.com/trigoo007/cagcore/pkg/logx"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the maintenance scheduler and block until interrupted",
	Long: "serve starts the background cache-cleanup, memory-maintenance,\n" +
		"global-memory-maintenance and metrics-retention jobs and blocks until\n" +
		"SIGINT/SIGTERM, at which point the scheduler is stopped gracefully.",
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()

	c, err := NewContainer(ctx, cfg)
	if err != nil {
		return err
	}
	defer c.Cleanup()

	if err := c.Scheduler.Start(ctx); err != nil {
		return err
	}
	logx.Info("cagmw: serving, press ctrl-c to stop")

	<-ctx.Done()
	logx.Info("cagmw: shutting down")
	c.Scheduler.Stop()
	return nil
}
