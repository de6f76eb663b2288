package feed

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/groblegark/gymwall/internal/api"
	"github.com/groblegark/gymwall/internal/events"
	"github.com/groblegark/gymwall/internal/model"
)

// stubClient implements the comment endpoints under test; everything else
// panics through the embedded nil interface if touched.
type stubClient struct {
	api.WallClient

	mu            sync.Mutex
	listCalls     int
	addCalls      int
	updateCalls   int
	deleteCalls   int
	listComments  func(ctx context.Context, postID int64) ([]*model.Comment, error)
	addComment    func(ctx context.Context, postID int64, text string) (*model.Comment, error)
	updateComment func(ctx context.Context, postID int64, id model.CommentID, text string) (*model.Comment, error)
	deleteComment func(ctx context.Context, postID int64, id model.CommentID) error
	createPost    func(ctx context.Context, req *api.CreatePostRequest) (*model.Post, error)
	updatePost    func(ctx context.Context, postID int64, text string) (*model.Post, error)
	deletePost    func(ctx context.Context, postID int64) error
}

func (s *stubClient) ListComments(ctx context.Context, postID int64) ([]*model.Comment, error) {
	s.mu.Lock()
	s.listCalls++
	s.mu.Unlock()
	return s.listComments(ctx, postID)
}

func (s *stubClient) AddComment(ctx context.Context, postID int64, text string) (*model.Comment, error) {
	s.mu.Lock()
	s.addCalls++
	s.mu.Unlock()
	return s.addComment(ctx, postID, text)
}

func (s *stubClient) UpdateComment(ctx context.Context, postID int64, id model.CommentID, text string) (*model.Comment, error) {
	s.mu.Lock()
	s.updateCalls++
	s.mu.Unlock()
	return s.updateComment(ctx, postID, id, text)
}

func (s *stubClient) DeleteComment(ctx context.Context, postID int64, id model.CommentID) error {
	s.mu.Lock()
	s.deleteCalls++
	s.mu.Unlock()
	return s.deleteComment(ctx, postID, id)
}

func (s *stubClient) CreatePost(ctx context.Context, req *api.CreatePostRequest) (*model.Post, error) {
	return s.createPost(ctx, req)
}

func (s *stubClient) UpdatePost(ctx context.Context, postID int64, text string) (*model.Post, error) {
	return s.updatePost(ctx, postID, text)
}

func (s *stubClient) DeletePost(ctx context.Context, postID int64) error {
	return s.deletePost(ctx, postID)
}

// recordingPublisher captures published topics and payloads.
type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
	events []any
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) published() ([]string, []any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.topics...), append([]any(nil), p.events...)
}

func (s *stubClient) calls() (list, add, update, del int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listCalls, s.addCalls, s.updateCalls, s.deleteCalls
}

func TestSubmitCommentConfirmsProvisional(t *testing.T) {
	store := NewStore()
	var midflight []model.Comment
	client := &stubClient{
		addComment: func(ctx context.Context, postID int64, text string) (*model.Comment, error) {
			// Capture the thread while the request is in flight: the
			// provisional record must already be visible.
			midflight, _, _ = store.Comments(postID)
			return &model.Comment{ID: model.DurableID(501), PostID: postID, Text: text}, nil
		},
	}
	c := NewController(client, store)

	got, err := c.SubmitComment(context.Background(), 7, "Great session!")
	if err != nil {
		t.Fatalf("SubmitComment: %v", err)
	}

	if len(midflight) != 1 || !midflight[0].Provisional() {
		t.Fatalf("expected one provisional comment while in flight, got %+v", midflight)
	}
	if !strings.HasPrefix(midflight[0].ID.String(), "temp_") {
		t.Fatalf("provisional id missing temp_ prefix: %s", midflight[0].ID)
	}

	comments, _, _ := store.Comments(7)
	if len(comments) != 1 {
		t.Fatalf("expected exactly 1 comment, got %d", len(comments))
	}
	if !comments[0].ID.Equal(model.DurableID(501)) || comments[0].Provisional() {
		t.Fatalf("expected confirmed comment 501, got %+v", comments[0])
	}
	if !got.ID.Equal(model.DurableID(501)) {
		t.Fatalf("returned comment has id %s", got.ID)
	}
}

func TestSubmitCommentValidation(t *testing.T) {
	c := NewController(&stubClient{}, NewStore())
	if _, err := c.SubmitComment(context.Background(), 7, "   "); !errors.Is(err, ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}
	if _, err := c.SubmitComment(context.Background(), 0, "hi"); !errors.Is(err, ErrNoPostRef) {
		t.Fatalf("expected ErrNoPostRef, got %v", err)
	}
}

func TestSubmitCommentFailureRemovesProvisional(t *testing.T) {
	store := NewStore()
	client := &stubClient{
		addComment: func(ctx context.Context, postID int64, text string) (*model.Comment, error) {
			return nil, &api.APIError{StatusCode: 500, Message: "boom"}
		},
	}
	c := NewController(client, store)

	if _, err := c.SubmitComment(context.Background(), 7, "hello"); err == nil {
		t.Fatal("expected error")
	}
	if got := store.Len(7); got != 0 {
		t.Fatalf("provisional must be rolled back on failure, got %d comments", got)
	}
}

func TestSubmitCommentServerOmitsID(t *testing.T) {
	store := NewStore()
	client := &stubClient{
		addComment: func(ctx context.Context, postID int64, text string) (*model.Comment, error) {
			return &model.Comment{PostID: postID, Text: text}, nil
		},
	}
	c := NewController(client, store)

	got, err := c.SubmitComment(context.Background(), 7, "kept anyway")
	if err != nil {
		t.Fatalf("SubmitComment: %v", err)
	}
	// The comment is kept with a synthesized placeholder so later edits and
	// deletes stay local.
	if !got.Provisional() {
		t.Fatalf("expected synthesized provisional id, got %s", got.ID)
	}
	comments, _, _ := store.Comments(7)
	if len(comments) != 1 || comments[0].Text != "kept anyway" {
		t.Fatalf("comment dropped: %+v", comments)
	}
}

func TestSubmitCommentBlocksDuplicate(t *testing.T) {
	store := NewStore()
	entered := make(chan struct{})
	release := make(chan struct{})
	client := &stubClient{
		addComment: func(ctx context.Context, postID int64, text string) (*model.Comment, error) {
			close(entered)
			<-release
			return &model.Comment{ID: model.DurableID(1), Text: text}, nil
		},
	}
	c := NewController(client, store)

	done := make(chan error, 1)
	go func() {
		_, err := c.SubmitComment(context.Background(), 7, "first")
		done <- err
	}()
	<-entered

	if _, err := c.SubmitComment(context.Background(), 7, "second"); !errors.Is(err, ErrInFlight) {
		t.Fatalf("expected ErrInFlight, got %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first submit: %v", err)
	}
}

func TestEditDurableComment(t *testing.T) {
	store := NewStore()
	store.Attach(7, []*model.Comment{{ID: model.DurableID(501), PostID: 7, Text: "Great session!"}})
	client := &stubClient{
		updateComment: func(ctx context.Context, postID int64, id model.CommentID, text string) (*model.Comment, error) {
			return &model.Comment{ID: id, PostID: postID, Text: text, UpdatedAt: time.Now()}, nil
		},
	}
	c := NewController(client, store)

	got, err := c.EditComment(context.Background(), 7, model.DurableID(501), "Great session, felt strong!")
	if err != nil {
		t.Fatalf("EditComment: %v", err)
	}
	if !got.ID.Equal(model.DurableID(501)) {
		t.Fatalf("id changed: %s", got.ID)
	}
	comments, _, _ := store.Comments(7)
	if comments[0].Text != "Great session, felt strong!" {
		t.Fatalf("text not updated: %q", comments[0].Text)
	}
	if _, add, update, _ := client.calls(); add != 0 || update != 1 {
		t.Fatalf("expected exactly one update call, got add=%d update=%d", add, update)
	}
}

func TestEditProvisionalCommentIssuesCreate(t *testing.T) {
	store := NewStore()
	prov := model.ProvisionalID("temp_17000_7_abc")
	store.Attach(7, []*model.Comment{{ID: prov, PostID: 7, Text: "draft"}})
	client := &stubClient{
		addComment: func(ctx context.Context, postID int64, text string) (*model.Comment, error) {
			return &model.Comment{ID: model.DurableID(600), PostID: postID, Text: text}, nil
		},
	}
	c := NewController(client, store)

	got, err := c.EditComment(context.Background(), 7, prov, "final text")
	if err != nil {
		t.Fatalf("EditComment: %v", err)
	}
	if !got.ID.Equal(model.DurableID(600)) {
		t.Fatalf("expected created comment 600, got %s", got.ID)
	}
	if _, add, update, _ := client.calls(); add != 1 || update != 0 {
		t.Fatalf("provisional edit must create, not update: add=%d update=%d", add, update)
	}
	comments, _, _ := store.Comments(7)
	if len(comments) != 1 {
		t.Fatalf("comment count must be unchanged, got %d", len(comments))
	}
	if !comments[0].ID.Equal(model.DurableID(600)) || comments[0].Text != "final text" {
		t.Fatalf("provisional slot not replaced: %+v", comments[0])
	}
}

func TestEditFailureLeavesTextUnchanged(t *testing.T) {
	store := NewStore()
	store.Attach(7, []*model.Comment{{ID: model.DurableID(501), Text: "original"}})
	client := &stubClient{
		updateComment: func(ctx context.Context, postID int64, id model.CommentID, text string) (*model.Comment, error) {
			return nil, &api.APIError{StatusCode: 500, Message: "boom"}
		},
	}
	c := NewController(client, store)

	if _, err := c.EditComment(context.Background(), 7, model.DurableID(501), "new"); err == nil {
		t.Fatal("expected error")
	}
	comments, _, _ := store.Comments(7)
	if comments[0].Text != "original" {
		t.Fatalf("failed edit must leave text unchanged, got %q", comments[0].Text)
	}
}

func TestDeleteDurableComment(t *testing.T) {
	store := NewStore()
	store.Attach(7, []*model.Comment{{ID: model.DurableID(501)}})
	client := &stubClient{
		deleteComment: func(ctx context.Context, postID int64, id model.CommentID) error {
			return nil
		},
	}
	c := NewController(client, store)

	if err := c.DeleteComment(context.Background(), 7, model.DurableID(501)); err != nil {
		t.Fatalf("DeleteComment: %v", err)
	}
	if got := store.Len(7); got != 0 {
		t.Fatalf("expected empty thread, got %d", got)
	}
}

func TestDeleteNotFoundTreatedAsSuccess(t *testing.T) {
	store := NewStore()
	store.Attach(7, []*model.Comment{{ID: model.DurableID(501)}})
	client := &stubClient{
		deleteComment: func(ctx context.Context, postID int64, id model.CommentID) error {
			return &api.APIError{StatusCode: 404, Message: "comment not found"}
		},
	}
	c := NewController(client, store)

	if err := c.DeleteComment(context.Background(), 7, model.DurableID(501)); err != nil {
		t.Fatalf("not-found delete must succeed, got %v", err)
	}
	if got := store.Len(7); got != 0 {
		t.Fatalf("comment must be absent after not-found delete, got %d", got)
	}
}

func TestDeleteProvisionalIsLocalOnly(t *testing.T) {
	store := NewStore()
	prov := model.ProvisionalID("temp_17000_7_abc")
	store.Attach(7, []*model.Comment{{ID: prov, Text: "draft"}})
	client := &stubClient{}
	c := NewController(client, store)

	if err := c.DeleteComment(context.Background(), 7, prov); err != nil {
		t.Fatalf("DeleteComment: %v", err)
	}
	if got := store.Len(7); got != 0 {
		t.Fatalf("provisional must disappear immediately, got %d", got)
	}
	if _, _, _, del := client.calls(); del != 0 {
		t.Fatalf("provisional delete must not touch the network, got %d calls", del)
	}
}

func TestDeleteFailureKeepsComment(t *testing.T) {
	store := NewStore()
	store.Attach(7, []*model.Comment{{ID: model.DurableID(501)}})
	client := &stubClient{
		deleteComment: func(ctx context.Context, postID int64, id model.CommentID) error {
			return &api.APIError{StatusCode: 500, Message: "boom"}
		},
	}
	c := NewController(client, store)

	if err := c.DeleteComment(context.Background(), 7, model.DurableID(501)); err == nil {
		t.Fatal("expected error")
	}
	if got := store.Len(7); got != 1 {
		t.Fatalf("failed delete must leave the comment in place, got %d", got)
	}
}

func TestLoadCommentsAttachesThread(t *testing.T) {
	store := NewStore()
	client := &stubClient{
		listComments: func(ctx context.Context, postID int64) ([]*model.Comment, error) {
			return []*model.Comment{
				{ID: model.DurableID(1), Text: "nice"},
				{Text: "no id from server"},
			}, nil
		},
	}
	c := NewController(client, store)

	if err := c.LoadComments(context.Background(), 7); err != nil {
		t.Fatalf("LoadComments: %v", err)
	}
	view := c.Thread(7)
	if view.Loading || view.Err != "" || len(view.Comments) != 2 {
		t.Fatalf("unexpected view: %+v", view)
	}
	if view.Comments[0].PostID != 7 {
		t.Fatal("post id not stamped")
	}
	// A record without an identifier gets a synthesized provisional one.
	if !view.Comments[1].Provisional() || view.Comments[1].ID.IsZero() {
		t.Fatalf("missing id not synthesized: %+v", view.Comments[1])
	}
}

func TestLoadCommentsTimeout(t *testing.T) {
	store := NewStore()
	client := &stubClient{
		listComments: func(ctx context.Context, postID int64) ([]*model.Comment, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
	c := NewController(client, store, WithLoadTimeout(20*time.Millisecond))

	err := c.LoadComments(context.Background(), 7)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	view := c.Thread(7)
	if view.Loading {
		t.Fatal("loading flag must be cleared after timeout")
	}
	if view.Err != "Timeout loading comments. Server might be down." {
		t.Fatalf("unexpected error message %q", view.Err)
	}
	if len(view.Comments) != 0 {
		t.Fatalf("timeout must attach an empty thread, got %d", len(view.Comments))
	}
}

func TestLoadCommentsDiscardsStaleResponse(t *testing.T) {
	store := NewStore()
	firstEntered := make(chan struct{})
	releaseFirst := make(chan struct{})
	client := &stubClient{}
	client.listComments = func(ctx context.Context, postID int64) ([]*model.Comment, error) {
		list, _, _, _ := client.calls()
		if list == 1 {
			close(firstEntered)
			<-releaseFirst
			return []*model.Comment{{ID: model.DurableID(1), Text: "stale"}}, nil
		}
		return []*model.Comment{{ID: model.DurableID(2), Text: "fresh"}}, nil
	}
	c := NewController(client, store)

	firstDone := make(chan error, 1)
	go func() {
		firstDone <- c.LoadComments(context.Background(), 7)
	}()
	<-firstEntered

	// A second load for the same post supersedes the first.
	if err := c.LoadComments(context.Background(), 7); err != nil {
		t.Fatalf("second load: %v", err)
	}

	// The first response arrives late and must be dropped.
	close(releaseFirst)
	if err := <-firstDone; err != nil {
		t.Fatalf("stale load must not report an error: %v", err)
	}

	view := c.Thread(7)
	if len(view.Comments) != 1 || view.Comments[0].Text != "fresh" {
		t.Fatalf("stale response overwrote fresher data: %+v", view.Comments)
	}
}

func TestCreatePostPublishesEvent(t *testing.T) {
	client := &stubClient{
		createPost: func(ctx context.Context, req *api.CreatePostRequest) (*model.Post, error) {
			return &model.Post{ID: 7, Text: req.Text}, nil
		},
	}
	pub := &recordingPublisher{}
	c := NewController(client, NewStore(), WithPublisher(pub))

	post, err := c.CreatePost(context.Background(), &api.CreatePostRequest{Text: "Leg day"})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	if post.ID != 7 {
		t.Fatalf("unexpected post: %+v", post)
	}
	topics, payloads := pub.published()
	if len(topics) != 1 || topics[0] != events.TopicPostCreated {
		t.Fatalf("expected %s published, got %v", events.TopicPostCreated, topics)
	}
	if got := payloads[0].(events.PostCreated); got.Post.ID != 7 {
		t.Fatalf("unexpected event payload: %+v", got)
	}

	if _, err := c.CreatePost(context.Background(), &api.CreatePostRequest{Text: "  "}); !errors.Is(err, ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}
}

func TestUpdatePostPublishesEvent(t *testing.T) {
	client := &stubClient{
		updatePost: func(ctx context.Context, postID int64, text string) (*model.Post, error) {
			return &model.Post{ID: postID, Text: text}, nil
		},
	}
	pub := &recordingPublisher{}
	c := NewController(client, NewStore(), WithPublisher(pub))

	if _, err := c.UpdatePost(context.Background(), 7, "Leg day, extended"); err != nil {
		t.Fatalf("UpdatePost: %v", err)
	}
	topics, _ := pub.published()
	if len(topics) != 1 || topics[0] != events.TopicPostUpdated {
		t.Fatalf("expected %s published, got %v", events.TopicPostUpdated, topics)
	}
}

func TestDeletePostDropsThread(t *testing.T) {
	store := NewStore()
	store.Attach(7, []*model.Comment{{ID: model.DurableID(501), Text: "nice"}})
	client := &stubClient{
		deletePost: func(ctx context.Context, postID int64) error {
			return &api.APIError{StatusCode: 404, Message: "post not found"}
		},
	}
	pub := &recordingPublisher{}
	c := NewController(client, store, WithPublisher(pub))

	// Not-found counts as success, same as for comments.
	if err := c.DeletePost(context.Background(), 7); err != nil {
		t.Fatalf("DeletePost: %v", err)
	}
	if view := c.Thread(7); view.Loaded || len(view.Comments) != 0 {
		t.Fatalf("thread must be forgotten after post delete: %+v", view)
	}
	topics, payloads := pub.published()
	if len(topics) != 1 || topics[0] != events.TopicPostDeleted {
		t.Fatalf("expected %s published, got %v", events.TopicPostDeleted, topics)
	}
	if got := payloads[0].(events.PostDeleted); got.PostID != 7 {
		t.Fatalf("unexpected event payload: %+v", got)
	}
}

func TestDeletePostFailureKeepsThread(t *testing.T) {
	store := NewStore()
	store.Attach(7, []*model.Comment{{ID: model.DurableID(501)}})
	client := &stubClient{
		deletePost: func(ctx context.Context, postID int64) error {
			return &api.APIError{StatusCode: 500, Message: "boom"}
		},
	}
	pub := &recordingPublisher{}
	c := NewController(client, store, WithPublisher(pub))

	if err := c.DeletePost(context.Background(), 7); err == nil {
		t.Fatal("expected error")
	}
	if got := store.Len(7); got != 1 {
		t.Fatalf("failed delete must keep the thread, got %d comments", got)
	}
	if topics, _ := pub.published(); len(topics) != 0 {
		t.Fatalf("no event on failure, got %v", topics)
	}
}

func TestSubmitCommentPublishesLifecycle(t *testing.T) {
	client := &stubClient{
		addComment: func(ctx context.Context, postID int64, text string) (*model.Comment, error) {
			return &model.Comment{PostID: postID, Text: text}, nil
		},
	}
	pub := &recordingPublisher{}
	c := NewController(client, NewStore(), WithPublisher(pub))

	if _, err := c.SubmitComment(context.Background(), 7, "kept anyway"); err != nil {
		t.Fatalf("SubmitComment: %v", err)
	}
	topics, payloads := pub.published()
	if len(topics) != 2 || topics[0] != events.TopicCommentCreated || topics[1] != events.TopicCommentConfirmed {
		t.Fatalf("expected created then confirmed, got %v", topics)
	}
	confirmed := payloads[1].(events.CommentConfirmed)
	if !confirmed.Unconfirmed {
		t.Fatal("server omitted the id; the confirmed event must say so")
	}
	if confirmed.ProvisionalID == "" {
		t.Fatal("confirmed event must carry the provisional id")
	}
}
