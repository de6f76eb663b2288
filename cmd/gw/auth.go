package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/groblegark/gymwall/internal/api"
	"github.com/groblegark/gymwall/internal/session"
)

// promptPassword reads a password without echo when stdin is a terminal,
// falling back to a plain line read (for piped input).
func promptPassword(label string) (string, error) {
	fmt.Fprintf(os.Stderr, "%s: ", label)
	if term.IsTerminal(int(syscall.Stdin)) {
		b, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return string(b), nil
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

var loginCmd = &cobra.Command{
	Use:   "login <username>",
	Short: "Sign in and save the session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		username := args[0]
		password, _ := cmd.Flags().GetString("password")
		if password == "" {
			var err error
			if password, err = promptPassword("Password"); err != nil {
				return err
			}
		}

		auth, err := wall.SignIn(context.Background(), username, password)
		if err != nil {
			return fmt.Errorf("signing in: %w", err)
		}

		s := &session.Session{
			ServerURL: serverURL(),
			Token:     auth.Token,
			UserID:    auth.ID,
			Username:  auth.Username,
			FullName:  auth.FullName,
			Email:     auth.Email,
		}
		if err := session.Save(s); err != nil {
			return fmt.Errorf("saving session: %w", err)
		}

		if jsonOutput {
			printJSON(map[string]any{"username": auth.Username, "id": auth.ID})
		} else {
			fmt.Printf("Signed in as %s\n", auth.Username)
		}
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register <username> <email>",
	Short: "Create an account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, _ := cmd.Flags().GetString("password")
		fullName, _ := cmd.Flags().GetString("name")
		if password == "" {
			var err error
			if password, err = promptPassword("Password"); err != nil {
				return err
			}
		}

		req := &api.SignUpRequest{
			Username: args[0],
			Email:    args[1],
			Password: password,
			FullName: fullName,
		}
		if err := wall.SignUp(context.Background(), req); err != nil {
			return fmt.Errorf("registering: %w", err)
		}

		fmt.Printf("Account %s created, run 'gw login %s' to sign in\n", args[0], args[0])
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Discard the saved session",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := session.Clear(); err != nil {
			return fmt.Errorf("clearing session: %w", err)
		}
		fmt.Println("Signed out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}
		if jsonOutput {
			printJSON(sess)
			return nil
		}
		fmt.Printf("User:   %s (#%d)\n", sess.Username, sess.UserID)
		if sess.FullName != "" {
			fmt.Printf("Name:   %s\n", sess.FullName)
		}
		if sess.Email != "" {
			fmt.Printf("Email:  %s\n", sess.Email)
		}
		fmt.Printf("Server: %s\n", sess.ServerURL)
		return nil
	},
}

func init() {
	loginCmd.Flags().String("password", "", "password (prompted when omitted)")
	registerCmd.Flags().String("password", "", "password (prompted when omitted)")
	registerCmd.Flags().String("name", "", "full name")
}
