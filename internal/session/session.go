// Package session persists the authenticated user's bearer session on disk.
// It replaces the browser-style ambient "current user" lookup with an
// explicit object the CLI loads once and hands to every collaborator.
package session

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/golang-jwt/jwt/v5"
)

// Session holds everything the client needs to issue authenticated requests.
// The token is kept out of JSON so `gw whoami --json` and similar dumps never
// echo the credential; only the TOML state file carries it.
type Session struct {
	ServerURL string `toml:"server_url" json:"server_url"`
	Token     string `toml:"token" json:"-"`
	UserID    int64  `toml:"user_id" json:"user_id"`
	Username  string `toml:"username,omitempty" json:"username,omitempty"`
	FullName  string `toml:"full_name,omitempty" json:"full_name,omitempty"`
	Email     string `toml:"email,omitempty" json:"email,omitempty"`
}

// Path returns the session file location. GYMWALL_STATE_DIR overrides the
// default state directory (used by tests).
func Path() (string, error) {
	dir := os.Getenv("GYMWALL_STATE_DIR")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, ".local", "state", "gymwall")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return filepath.Join(dir, "session.toml"), nil
}

// Load reads the persisted session. A missing file yields (nil, nil): the
// user is simply not logged in.
func Load() (*Session, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	var s Session
	if _, err := toml.DecodeFile(path, &s); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading session: %w", err)
	}
	if s.Token == "" {
		return nil, nil
	}
	return &s, nil
}

// Save writes the session with owner-only permissions.
func Save(s *Session) error {
	path, err := Path()
	if err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(s)
}

// Clear removes the persisted session, if any.
func Clear() error {
	path, err := Path()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Expired reports whether the bearer token's exp claim has passed. The claim
// is decoded without signature verification: the server remains the
// authority, this only lets the CLI warn before a doomed request. Tokens
// without an exp claim, or that fail to parse, are left for the server to
// judge.
func (s *Session) Expired(now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(s.Token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(now)
}
