package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trigoo007/cagcore/pkg/config"
)

var maintenanceCmd = &cobra.Command{
	Use:   "maintenance",
	Short: "Run one pass of cache cleanup, memory maintenance and global-memory maintenance, then exit",
	RunE:  runMaintenance,
}

func runMaintenance(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg := config.Load()

	c, err := NewContainer(ctx, cfg)
	if err != nil {
		return err
	}
	defer c.Cleanup()

	if err := c.Cache.Cleanup(ctx); err != nil {
		return fmt.Errorf("cache cleanup: %w", err)
	}
	fmt.Println("cache cleanup: ok")

	if err := c.Memory.PerformMaintenance(ctx); err != nil {
		return fmt.Errorf("memory maintenance: %w", err)
	}
	fmt.Println("memory maintenance: ok")

	if err := c.Global.PerformMaintenance(ctx); err != nil {
		return fmt.Errorf("global memory maintenance: %w", err)
	}
	fmt.Println("global memory maintenance: ok")

	if _, err := c.Metrics.PruneRetention(ctx, cfg.Scheduler.MetricsRetention); err != nil {
		return fmt.Errorf("metrics retention: %w", err)
	}
	fmt.Println("metrics retention: ok")

	return nil
}
