package feed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/groblegark/gymwall/internal/api"
	"github.com/groblegark/gymwall/internal/events"
	"github.com/groblegark/gymwall/internal/idgen"
	"github.com/groblegark/gymwall/internal/model"
)

// Timeout message shown on the thread when a comment load exceeds the bound.
const timeoutMessage = "Timeout loading comments. Server might be down."

var (
	// ErrEmptyText rejects comment text that is empty after trimming.
	ErrEmptyText = errors.New("comment text is empty")
	// ErrNoPostRef is returned when an operation cannot resolve its post.
	ErrNoPostRef = errors.New("no post reference for comment operation")
	// ErrInFlight is returned when the same action is already running.
	ErrInFlight = errors.New("operation already in flight")
	// ErrTimeout wraps a comment-list load that exceeded the bound.
	ErrTimeout = errors.New("timed out loading comments")
)

// DefaultLoadTimeout bounds a comment-list load before the thread is shown
// empty with a retryable error.
const DefaultLoadTimeout = 10 * time.Second

// Controller drives the optimistic comment lifecycle for the wall: it calls
// the remote API, reconciles responses into the Store, and keeps per-post
// and per-action in-flight flags so callers can disable controls and avoid
// duplicate submissions.
type Controller struct {
	client api.WallClient
	store  *Store
	bus    events.Publisher
	author model.UserSummary

	loadTimeout time.Duration

	mu       sync.Mutex
	loading  map[int64]bool
	inflight map[string]bool
	loadSeq  map[int64]uint64
}

// Option configures a Controller.
type Option func(*Controller)

// WithLoadTimeout overrides the comment-list load bound.
func WithLoadTimeout(d time.Duration) Option {
	return func(c *Controller) { c.loadTimeout = d }
}

// WithPublisher attaches an event bus for comment lifecycle notifications.
func WithPublisher(p events.Publisher) Option {
	return func(c *Controller) { c.bus = p }
}

// WithAuthor sets the current user stamped onto provisional comments so the
// thread renders the author before the server echoes it back.
func WithAuthor(u model.UserSummary) Option {
	return func(c *Controller) { c.author = u }
}

func NewController(client api.WallClient, store *Store, opts ...Option) *Controller {
	c := &Controller{
		client:      client,
		store:       store,
		bus:         &events.NoopPublisher{},
		loadTimeout: DefaultLoadTimeout,
		loading:     make(map[int64]bool),
		inflight:    make(map[string]bool),
		loadSeq:     make(map[int64]uint64),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// View is the read-only thread state handed to the rendering layer.
type View struct {
	Comments []model.Comment
	Err      string
	Loading  bool
	Loaded   bool
}

// Thread snapshots the comment thread for a post.
func (c *Controller) Thread(postID int64) View {
	comments, errMsg, loaded := c.store.Comments(postID)
	c.mu.Lock()
	loading := c.loading[postID]
	c.mu.Unlock()
	return View{Comments: comments, Err: errMsg, Loading: loading, Loaded: loaded}
}

// LoadComments fetches the thread for a post and attaches it to the store.
// The call is bounded by the load timeout: on expiry the thread is attached
// empty with a retryable error and ErrTimeout is returned, and a late
// response is discarded. A newer load for the same post supersedes an older
// one: the older response, whenever it arrives, is dropped by sequence
// token rather than overwriting fresher data.
func (c *Controller) LoadComments(ctx context.Context, postID int64) error {
	if postID <= 0 {
		return ErrNoPostRef
	}
	c.mu.Lock()
	c.loadSeq[postID]++
	seq := c.loadSeq[postID]
	c.loading[postID] = true
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, c.loadTimeout)
	defer cancel()

	comments, err := c.client.ListComments(ctx, postID)

	c.mu.Lock()
	stale := c.loadSeq[postID] != seq
	if !stale {
		c.loading[postID] = false
	}
	c.mu.Unlock()
	if stale {
		return nil
	}

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			c.store.Fail(postID, timeoutMessage)
			return fmt.Errorf("%w: post %d", ErrTimeout, postID)
		}
		c.store.Fail(postID, "Failed to load comments. Please try again.")
		return fmt.Errorf("loading comments for post %d: %w", postID, err)
	}

	c.store.Attach(postID, c.normalize(postID, comments))
	return nil
}

// normalize patches server records for local use: stamps the owning post and
// synthesizes a provisional identifier for any record that arrived without
// one, so every stored comment stays addressable.
func (c *Controller) normalize(postID int64, comments []*model.Comment) []*model.Comment {
	for _, cm := range comments {
		if cm.PostID == 0 {
			cm.PostID = postID
		}
		if cm.ID.IsZero() {
			if pid, err := idgen.Provisional(postID); err == nil {
				cm.ID = model.ProvisionalID(pid)
			}
		}
	}
	return comments
}

// CreatePost publishes the post to the wall and announces it on the bus.
func (c *Controller) CreatePost(ctx context.Context, req *api.CreatePostRequest) (*model.Post, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, ErrEmptyText
	}
	post, err := c.client.CreatePost(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("creating post: %w", err)
	}
	c.publish(ctx, events.TopicPostCreated, events.PostCreated{Post: post})
	return post, nil
}

// UpdatePost replaces a post's text.
func (c *Controller) UpdatePost(ctx context.Context, postID int64, text string) (*model.Post, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	if postID <= 0 {
		return nil, ErrNoPostRef
	}
	post, err := c.client.UpdatePost(ctx, postID, text)
	if err != nil {
		return nil, fmt.Errorf("updating post %d: %w", postID, err)
	}
	c.publish(ctx, events.TopicPostUpdated, events.PostUpdated{Post: post})
	return post, nil
}

// DeletePost removes a post and forgets its comment thread. As with
// comments, a not-found answer counts as success: the post is gone either
// way.
func (c *Controller) DeletePost(ctx context.Context, postID int64) error {
	if postID <= 0 {
		return ErrNoPostRef
	}
	if err := c.client.DeletePost(ctx, postID); err != nil && !api.IsNotFound(err) {
		return fmt.Errorf("deleting post %d: %w", postID, err)
	}
	c.store.DropThread(postID)
	c.publish(ctx, events.TopicPostDeleted, events.PostDeleted{PostID: postID})
	return nil
}

// SubmitComment creates a comment optimistically: a provisional record is
// inserted immediately and confirmed or rolled back when the server answers.
// The returned comment is the stored record (confirmed id when the server
// supplied one).
func (c *Controller) SubmitComment(ctx context.Context, postID int64, text string) (*model.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}
	if postID <= 0 {
		return nil, ErrNoPostRef
	}
	key := fmt.Sprintf("submit_%d", postID)
	if !c.acquire(key) {
		return nil, ErrInFlight
	}
	defer c.release(key)

	pid, err := idgen.Provisional(postID)
	if err != nil {
		return nil, fmt.Errorf("allocating provisional id: %w", err)
	}
	provisional := &model.Comment{
		ID:        model.ProvisionalID(pid),
		PostID:    postID,
		User:      c.author,
		Text:      text,
		CreatedAt: time.Now(),
	}
	c.store.InsertProvisional(postID, provisional)
	c.publish(ctx, events.TopicCommentCreated, events.CommentCreated{Comment: provisional})

	created, err := c.client.AddComment(ctx, postID, text)
	if err != nil {
		c.store.Remove(postID, provisional.ID)
		return nil, fmt.Errorf("creating comment on post %d: %w", postID, err)
	}
	return c.confirm(ctx, postID, provisional, created), nil
}

// confirm reconciles a server create response against a provisional record.
// A response without an identifier is kept rather than discarded: the record
// gets a fresh provisional id so later edits and deletes route through the
// local-only path.
func (c *Controller) confirm(ctx context.Context, postID int64, provisional, created *model.Comment) *model.Comment {
	if created == nil {
		created = &model.Comment{}
	}
	if created.PostID == 0 {
		created.PostID = postID
	}
	if created.Text == "" {
		created.Text = provisional.Text
	}
	if created.User == (model.UserSummary{}) {
		created.User = provisional.User
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = provisional.CreatedAt
	}
	unconfirmed := false
	if created.ID.IsZero() {
		unconfirmed = true
		if pid, err := idgen.Provisional(postID); err == nil {
			created.ID = model.ProvisionalID(pid)
		} else {
			created.ID = provisional.ID
		}
	}
	c.store.Confirm(postID, provisional.ID, created)
	c.publish(ctx, events.TopicCommentConfirmed, events.CommentConfirmed{
		Comment:       created,
		ProvisionalID: provisional.ID.String(),
		Unconfirmed:   unconfirmed,
	})
	return created
}

// EditComment updates a comment's text. A provisional target has no server
// record yet, so the edit becomes a create whose result replaces the
// provisional entry in place; a durable target goes through the update
// endpoint, and on failure the stored text is left unchanged.
func (c *Controller) EditComment(ctx context.Context, postID int64, id model.CommentID, text string) (*model.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}
	if postID <= 0 {
		return nil, ErrNoPostRef
	}
	key := fmt.Sprintf("edit_%d_%s", postID, id)
	if !c.acquire(key) {
		return nil, ErrInFlight
	}
	defer c.release(key)

	if id.IsProvisional() || id.IsZero() {
		created, err := c.client.AddComment(ctx, postID, text)
		if err != nil {
			return nil, fmt.Errorf("creating comment on post %d: %w", postID, err)
		}
		prior := &model.Comment{ID: id, PostID: postID, User: c.author, Text: text}
		return c.confirm(ctx, postID, prior, created), nil
	}

	updated, err := c.client.UpdateComment(ctx, postID, id, text)
	if err != nil {
		return nil, fmt.Errorf("updating comment %s on post %d: %w", id, postID, err)
	}
	patch := CommentPatch{Text: &text}
	if updated != nil {
		if updated.Text != "" {
			patch.Text = &updated.Text
		}
		if !updated.UpdatedAt.IsZero() {
			patch.UpdatedAt = &updated.UpdatedAt
		}
	}
	if err := c.store.Update(postID, id, patch); err != nil {
		return nil, err
	}
	out := &model.Comment{ID: id, PostID: postID, Text: *patch.Text}
	if updated != nil && !updated.ID.IsZero() {
		out = updated
	}
	c.publish(ctx, events.TopicCommentUpdated, events.CommentUpdated{Comment: out})
	return out, nil
}

// DeleteComment removes a comment. A provisional target is removed locally
// with no network call; a durable target goes through the delete endpoint,
// where a not-found answer counts as success since the end state matches
// the user's intent. Any other failure leaves the comment in place.
func (c *Controller) DeleteComment(ctx context.Context, postID int64, id model.CommentID) error {
	if postID <= 0 {
		return ErrNoPostRef
	}
	key := fmt.Sprintf("delete_%d_%s", postID, id)
	if !c.acquire(key) {
		return ErrInFlight
	}
	defer c.release(key)

	if id.IsProvisional() || id.IsZero() {
		c.store.Remove(postID, id)
		c.publish(ctx, events.TopicCommentRemoved, events.CommentRemoved{PostID: postID, CommentID: id.String()})
		return nil
	}

	if err := c.client.DeleteComment(ctx, postID, id); err != nil && !api.IsNotFound(err) {
		return fmt.Errorf("deleting comment %s on post %d: %w", id, postID, err)
	}
	c.store.Remove(postID, id)
	c.publish(ctx, events.TopicCommentRemoved, events.CommentRemoved{PostID: postID, CommentID: id.String()})
	return nil
}

func (c *Controller) acquire(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inflight[key] {
		return false
	}
	c.inflight[key] = true
	return true
}

func (c *Controller) release(key string) {
	c.mu.Lock()
	delete(c.inflight, key)
	c.mu.Unlock()
}

// publish is best effort: the thread state is authoritative, the bus is
// advisory.
func (c *Controller) publish(ctx context.Context, topic string, event any) {
	_ = c.bus.Publish(ctx, topic, event)
}
