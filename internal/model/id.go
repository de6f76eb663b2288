package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ProvisionalPrefix marks client-synthesized comment identifiers. Identifiers
// that arrive as plain strings are classified by this prefix when no explicit
// tag is available.
const ProvisionalPrefix = "temp_"

// IDKind distinguishes server-issued identifiers from client placeholders.
type IDKind int

const (
	// IDNone is the zero kind: no identifier has been assigned.
	IDNone IDKind = iota
	// IDDurable is a server-issued identifier, stable for the comment's lifetime.
	IDDurable
	// IDProvisional is a client-synthesized placeholder awaiting server confirmation.
	IDProvisional
)

// CommentID is a tagged comment identifier. The server issues numeric ids but
// a round of JSON parsing may deliver them as numbers or strings; a CommentID
// normalizes both to a textual value and keeps the provisional/durable
// distinction explicit instead of relying on prefix sniffing at call sites.
type CommentID struct {
	kind  IDKind
	value string
}

// DurableID returns a durable CommentID for a server-issued numeric identifier.
func DurableID(n int64) CommentID {
	return CommentID{kind: IDDurable, value: strconv.FormatInt(n, 10)}
}

// ProvisionalID returns a provisional CommentID wrapping a placeholder value.
func ProvisionalID(v string) CommentID {
	return CommentID{kind: IDProvisional, value: v}
}

// ParseID classifies a raw string identifier. Values carrying the reserved
// provisional prefix become provisional; everything else non-empty is durable.
func ParseID(v string) CommentID {
	if v == "" {
		return CommentID{}
	}
	if strings.HasPrefix(v, ProvisionalPrefix) {
		return CommentID{kind: IDProvisional, value: v}
	}
	return CommentID{kind: IDDurable, value: v}
}

// Kind returns the identifier kind.
func (id CommentID) Kind() IDKind { return id.kind }

// IsZero reports whether no identifier has been assigned.
func (id CommentID) IsZero() bool { return id.kind == IDNone }

// IsProvisional reports whether the identifier is a client placeholder.
func (id CommentID) IsProvisional() bool { return id.kind == IDProvisional }

// String returns the textual form of the identifier, or "" when unassigned.
func (id CommentID) String() string { return id.value }

// Int64 returns the numeric value of a durable identifier. It fails for
// provisional or unassigned identifiers and for non-numeric durable values.
func (id CommentID) Int64() (int64, error) {
	if id.kind != IDDurable {
		return 0, fmt.Errorf("comment id %q is not durable", id.value)
	}
	n, err := strconv.ParseInt(id.value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("comment id %q is not numeric", id.value)
	}
	return n, nil
}

// Equal reports whether two identifiers refer to the same comment. Durable
// identifiers compare by their textual representation, so the numeric 42 and
// the string "42" match. A provisional identifier never equals a durable one;
// two provisional identifiers match only on the exact placeholder value.
func (id CommentID) Equal(other CommentID) bool {
	if id.kind == IDNone || other.kind == IDNone {
		return false
	}
	if id.kind != other.kind {
		return false
	}
	return id.value == other.value
}

// MarshalJSON writes durable numeric identifiers as JSON numbers (matching
// what the server issues), provisional identifiers as strings, and unassigned
// identifiers as null.
func (id CommentID) MarshalJSON() ([]byte, error) {
	switch id.kind {
	case IDNone:
		return []byte("null"), nil
	case IDDurable:
		if _, err := strconv.ParseInt(id.value, 10, 64); err == nil {
			return []byte(id.value), nil
		}
	}
	return json.Marshal(id.value)
}

// UnmarshalJSON accepts numbers, strings, and null. String values carrying
// the reserved provisional prefix are tagged provisional.
func (id *CommentID) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*id = CommentID{}
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*id = ParseID(v)
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("comment id: %w", err)
	}
	*id = DurableID(n)
	return nil
}
