package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/groblegark/gymwall/internal/api"
	"github.com/groblegark/gymwall/internal/config"
	"github.com/groblegark/gymwall/internal/session"
	"github.com/groblegark/gymwall/internal/ui"
)

var (
	serverFlag string
	jsonOutput bool

	cfg  *config.Config
	sess *session.Session
	wall api.WallClient
)

// serverURL resolves the target server: flag wins, then the saved session,
// then the environment default.
func serverURL() string {
	if serverFlag != "" {
		return serverFlag
	}
	if sess != nil && sess.ServerURL != "" {
		return sess.ServerURL
	}
	return cfg.ServerURL
}

var rootCmd = &cobra.Command{
	Use:   "gw",
	Short: "CLI client for the GymWall fitness social network",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		sess, err = session.Load()
		if err != nil {
			return fmt.Errorf("loading session: %w", err)
		}
		token := ""
		if sess != nil {
			if sess.Expired(time.Now()) {
				fmt.Fprintln(os.Stderr, "Warning: saved session has expired; run 'gw login'")
			}
			token = sess.Token
		}
		wall = api.NewHTTPClient(serverURL(), token)
		if !ui.ShouldUseColor() {
			ui.ForceNoColor()
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if wall != nil {
			wall.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverFlag, "server", "", "server base URL (default from session or GYMWALL_SERVER_URL)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(feedCmd)
	rootCmd.AddCommand(postCmd)
	rootCmd.AddCommand(commentCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(healthCmd)
}

// requireSession fails a command early when no one is signed in.
func requireSession() error {
	if sess == nil || sess.Token == "" {
		return fmt.Errorf("not signed in: run 'gw login' first")
	}
	return nil
}

// handleAuthExpired clears the saved session when the server rejects the
// token, so the next invocation prompts for a fresh login.
func handleAuthExpired(err error) error {
	if api.IsAuthExpired(err) {
		_ = session.Clear()
		return fmt.Errorf("session expired, please sign in again: %w", err)
	}
	return err
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
