// Package sync exports wall snapshots as JSONL and ships them to one or more
// destinations (file, git, S3) on a schedule.
package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/groblegark/gymwall/internal/api"
)

// header is the first JSONL record written by ExportJSONL.
type header struct {
	Version      string    `json:"version"`
	Type         string    `json:"type"`
	Timestamp    time.Time `json:"timestamp"`
	PostCount    int       `json:"post_count"`
	CommentCount int       `json:"comment_count"`
}

// record wraps a single JSONL line with a type discriminator.
type record struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// ExportJSONL writes the wall as JSONL to w: a header record followed by one
// record per post, each with its comment thread embedded. Only server state
// is exported; provisional comments never appear because the snapshot is
// fetched fresh from the API.
func ExportJSONL(ctx context.Context, client api.WallClient, w io.Writer) error {
	posts, err := client.ListPosts(ctx)
	if err != nil {
		return fmt.Errorf("list posts: %w", err)
	}

	commentCount := 0
	for _, p := range posts {
		comments, err := client.ListComments(ctx, p.ID)
		if err != nil {
			return fmt.Errorf("list comments for post %d: %w", p.ID, err)
		}
		p.Comments = comments
		commentCount += len(comments)
	}

	sort.Slice(posts, func(i, j int) bool {
		return posts[i].ID < posts[j].ID
	})

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(header{
		Version:      "1",
		Type:         "header",
		Timestamp:    time.Now().UTC(),
		PostCount:    len(posts),
		CommentCount: commentCount,
	}); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}

	for _, p := range posts {
		if err := enc.Encode(record{Type: "post", Data: p}); err != nil {
			return fmt.Errorf("encode post %d: %w", p.ID, err)
		}
	}

	return nil
}
