package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/groblegark/gymwall/internal/api"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the server is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		start := time.Now()
		_, err := wall.ListPosts(ctx)
		elapsed := time.Since(start).Round(time.Millisecond)

		status := "ok"
		if api.IsAuthExpired(err) {
			// The server answered; only the token is bad.
			status = "ok (authentication required)"
			err = nil
		} else if err != nil {
			status = err.Error()
		}
		if jsonOutput {
			printJSON(map[string]any{"server": serverURL(), "status": status, "latency_ms": elapsed.Milliseconds()})
		} else {
			fmt.Printf("Server:  %s\n", serverURL())
			fmt.Printf("Status:  %s\n", status)
			fmt.Printf("Latency: %s\n", elapsed)
		}
		if err != nil {
			return fmt.Errorf("unhealthy: %w", err)
		}
		return nil
	},
}
