package ui

import "fmt"

// ANSI256 color codes for the wall view.
const (
	colorAccent  = 74  // blue: usernames
	colorMuted   = 245 // medium gray: timestamps, counts
	colorPending = 178 // amber: comments awaiting server confirmation
	colorError   = 167 // red: per-post error banners
)

var noColor bool

// RenderAccent returns s in the accent (blue) color.
func RenderAccent(s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", colorAccent, s)
}

// RenderMuted returns s in the muted (gray) color.
func RenderMuted(s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", colorMuted, s)
}

// RenderPending marks text for an entry not yet confirmed by the server.
func RenderPending(s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", colorPending, s)
}

// RenderError returns s styled for an error banner.
func RenderError(s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", colorError, s)
}

// ForceNoColor disables color output globally.
func ForceNoColor() {
	noColor = true
}
