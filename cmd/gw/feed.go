package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Show the wall feed",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}
		posts, err := wall.ListPosts(context.Background())
		if err != nil {
			return handleAuthExpired(fmt.Errorf("loading feed: %w", err))
		}
		if jsonOutput {
			printJSON(posts)
		} else {
			printPostListTable(posts)
		}
		return nil
	},
}
