package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trigoo007/cagcore/pkg/config"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print analysis-cache, context-manager and global-memory statistics",
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg := config.Load()

	c, err := NewContainer(ctx, cfg)
	if err != nil {
		return err
	}
	defer c.Cleanup()

	globalStats, err := c.Global.GetGlobalMemoryStats(ctx)
	if err != nil {
		return fmt.Errorf("global memory stats: %w", err)
	}

	report := struct {
		ContextManager interface{} `json:"contextManager"`
		GlobalMemory   interface{} `json:"globalMemory"`
	}{
		ContextManager: c.Manager.GetContextStats(),
		GlobalMemory:   globalStats,
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
