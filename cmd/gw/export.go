package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	wallsync "github.com/groblegark/gymwall/internal/sync"
)

// fileDestination writes the snapshot to a local path.
type fileDestination struct {
	path string
}

func (d *fileDestination) Write(_ context.Context, data []byte) error {
	if err := os.WriteFile(d.path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", d.path, err)
	}
	return nil
}

// exportTargets collects the destination flags of the export command.
type exportTargets struct {
	outFile   string
	s3        bool
	gitRepo   string
	gitFile   string
	gitBranch string
}

// buildDestinations turns the flag set into snapshot destinations.
func (t exportTargets) buildDestinations(ctx context.Context) ([]wallsync.Destination, error) {
	var destinations []wallsync.Destination
	if t.outFile != "" {
		destinations = append(destinations, &fileDestination{path: t.outFile})
	}
	if t.gitRepo != "" {
		destinations = append(destinations, wallsync.NewGitDestination(t.gitRepo, t.gitFile, t.gitBranch))
	}
	if t.s3 {
		if cfg.ExportS3Bucket == "" {
			return nil, fmt.Errorf("--s3 requires GYMWALL_EXPORT_S3_BUCKET")
		}
		dest, err := wallsync.NewS3Destination(ctx, cfg.ExportS3Bucket, cfg.ExportS3Key, cfg.ExportS3Region, cfg.ExportS3Endpoint)
		if err != nil {
			return nil, fmt.Errorf("configuring S3 destination: %w", err)
		}
		destinations = append(destinations, dest)
	}
	return destinations, nil
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Snapshot the wall as JSONL",
	Long: `Export writes the wall (posts with embedded comment threads) as JSONL.

By default the snapshot goes to stdout. With --out it is written to a file;
with --git it is committed and pushed inside a local clone; with --s3 it is
uploaded to the bucket from GYMWALL_EXPORT_S3_BUCKET. With --interval the
export repeats until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}
		targets := exportTargets{}
		targets.outFile, _ = cmd.Flags().GetString("out")
		targets.s3, _ = cmd.Flags().GetBool("s3")
		targets.gitRepo, _ = cmd.Flags().GetString("git")
		targets.gitFile, _ = cmd.Flags().GetString("git-file")
		targets.gitBranch, _ = cmd.Flags().GetString("git-branch")
		interval, _ := cmd.Flags().GetDuration("interval")

		ctx := context.Background()

		destinations, err := targets.buildDestinations(ctx)
		if err != nil {
			return err
		}

		if interval > 0 {
			if len(destinations) == 0 {
				return fmt.Errorf("--interval needs --out, --git, or --s3")
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
			sched := wallsync.NewScheduler(wall, destinations, interval, logger)
			sched.Start()
			defer sched.Stop()

			// Run until interrupted.
			waitForInterrupt()
			return nil
		}

		var buf bytes.Buffer
		if err := wallsync.ExportJSONL(ctx, wall, &buf); err != nil {
			return handleAuthExpired(fmt.Errorf("exporting wall: %w", err))
		}
		if len(destinations) == 0 {
			os.Stdout.Write(buf.Bytes())
			return nil
		}
		for _, dest := range destinations {
			if err := dest.Write(ctx, buf.Bytes()); err != nil {
				return err
			}
		}
		fmt.Fprintf(os.Stderr, "Exported %d bytes\n", buf.Len())
		return nil
	},
}

func init() {
	exportCmd.Flags().StringP("out", "o", "", "write the snapshot to a file")
	exportCmd.Flags().Bool("s3", false, "upload the snapshot to the configured bucket")
	exportCmd.Flags().String("git", "", "commit the snapshot inside this local clone and push")
	exportCmd.Flags().String("git-file", "wall.jsonl", "file path within the --git repo")
	exportCmd.Flags().String("git-branch", "main", "branch to commit and push to")
	exportCmd.Flags().Duration("interval", 0, "repeat the export at this interval (0 = once)")
}
