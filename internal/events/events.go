// Package events defines the wall's lifecycle event bus. The feed controller
// publishes a message for each comment/post transition so other local tooling
// (a second terminal running `gw watch`, scripts) can follow activity without
// polling the server.
package events

import (
	"context"

	"github.com/groblegark/gymwall/internal/model"
)

// Event topic constants
const (
	TopicPostCreated = "wall.post.created"
	TopicPostUpdated = "wall.post.updated"
	TopicPostDeleted = "wall.post.deleted"

	// Comment lifecycle. "created" fires when a provisional comment enters
	// the store, "confirmed" when the server acknowledges it.
	TopicCommentCreated   = "wall.comment.created"
	TopicCommentConfirmed = "wall.comment.confirmed"
	TopicCommentUpdated   = "wall.comment.updated"
	TopicCommentRemoved   = "wall.comment.removed"
)

// Event types

type PostCreated struct {
	Post *model.Post `json:"post"`
}

type PostUpdated struct {
	Post *model.Post `json:"post"`
}

type PostDeleted struct {
	PostID int64 `json:"post_id"`
}

type CommentCreated struct {
	Comment *model.Comment `json:"comment"`
}

type CommentConfirmed struct {
	Comment *model.Comment `json:"comment"`
	// ProvisionalID is the placeholder the comment carried before the server
	// acknowledged it.
	ProvisionalID string `json:"provisional_id"`
	// Unconfirmed is set when the server response omitted an identifier and
	// the comment remains editable only locally.
	Unconfirmed bool `json:"unconfirmed,omitempty"`
}

type CommentUpdated struct {
	Comment *model.Comment `json:"comment"`
}

type CommentRemoved struct {
	PostID    int64  `json:"post_id"`
	CommentID string `json:"comment_id"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
