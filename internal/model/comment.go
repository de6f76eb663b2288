package model

import "time"

// Comment represents one user comment on one wall post. A comment created
// locally carries a provisional identifier until the server confirms it; the
// identifier kind is the single source of truth for provisional status.
type Comment struct {
	ID        CommentID   `json:"id"`
	PostID    int64       `json:"postId,omitempty"`
	User      UserSummary `json:"user"`
	Text      string      `json:"text"`
	CreatedAt time.Time   `json:"createdAt,omitzero"`
	UpdatedAt time.Time   `json:"updatedAt,omitzero"`
}

// Provisional reports whether the comment has not yet been confirmed by the
// server under a durable identifier.
func (c *Comment) Provisional() bool {
	return c.ID.IsZero() || c.ID.IsProvisional()
}
