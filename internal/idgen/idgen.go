// Package idgen allocates provisional comment identifiers: placeholders that
// stand in for a comment until the server confirms it with a durable id.
// Combining a millisecond timestamp, the owning post id, and a nanoid random
// suffix keeps placeholders unique within a session.
package idgen

import (
	"fmt"
	"time"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// Prefix is the reserved marker prepended to every provisional identifier.
// It must never collide with a server-issued (numeric) identifier.
var Prefix = "temp_"

// Alphabet defines the character set used for the random suffix.
var Alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// SuffixLength is the number of random characters in the suffix.
var SuffixLength = 7

// now is swappable for tests.
var now = time.Now

// Provisional returns a new provisional identifier scoped to the given post.
func Provisional(postID int64) (string, error) {
	suffix, err := nanoid.Generate(Alphabet, SuffixLength)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return fmt.Sprintf("%s%d_%d_%s", Prefix, now().UnixMilli(), postID, suffix), nil
}
