package sync

import (
	"context"
	"strings"

	"github.com/groblegark/gymwall/internal/api"
	"github.com/groblegark/gymwall/internal/model"
)

// mockClient serves canned posts and comments for export tests. Endpoints
// the exporter never touches fall through to the embedded nil interface.
type mockClient struct {
	api.WallClient

	posts    map[int64]*model.Post
	comments map[int64][]*model.Comment
}

func newMockClient() *mockClient {
	return &mockClient{
		posts:    make(map[int64]*model.Post),
		comments: make(map[int64][]*model.Comment),
	}
}

func (m *mockClient) ListPosts(ctx context.Context) ([]*model.Post, error) {
	out := make([]*model.Post, 0, len(m.posts))
	for _, p := range m.posts {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockClient) ListComments(ctx context.Context, postID int64) ([]*model.Comment, error) {
	return m.comments[postID], nil
}

func (m *mockClient) Close() error { return nil }

func nonEmptyLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}
