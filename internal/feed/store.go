// Package feed manages the wall's comment threads on the client side: an
// in-memory store of per-post comment lists and a controller that reconciles
// optimistic local state with what the server confirms.
package feed

import (
	"errors"
	"sync"
	"time"

	"github.com/groblegark/gymwall/internal/model"
)

// ErrNoSuchComment is reported when an update targets a durable identifier
// that is not present in the store.
var ErrNoSuchComment = errors.New("no comment with that id")

// Store owns the comment sequence for each post while the wall view is
// mounted. All operations are synchronous and idempotent; the rendering
// layer only reads snapshots.
type Store struct {
	mu      sync.Mutex
	threads map[int64]*thread
}

type thread struct {
	comments []*model.Comment
	err      string // last load error surfaced to the user, "" when healthy
	loaded   bool
}

func NewStore() *Store {
	return &Store{threads: make(map[int64]*thread)}
}

func (s *Store) thread(postID int64) *thread {
	t, ok := s.threads[postID]
	if !ok {
		t = &thread{}
		s.threads[postID] = t
	}
	return t
}

// Attach replaces the full comment list for a post (used after a load) and
// clears any previous error.
func (s *Store) Attach(postID int64, comments []*model.Comment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.thread(postID)
	t.comments = append([]*model.Comment(nil), comments...)
	t.err = ""
	t.loaded = true
}

// Fail records a load failure: the thread gets an empty comment list (so the
// view is not stuck on a stale spinner) and the error message to surface.
// Errors are scoped to the affected post.
func (s *Store) Fail(postID int64, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.thread(postID)
	t.comments = []*model.Comment{}
	t.err = msg
	t.loaded = true
}

// InsertProvisional appends a comment awaiting server confirmation.
func (s *Store) InsertProvisional(postID int64, c *model.Comment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.thread(postID)
	t.comments = append(t.comments, c)
	t.loaded = true
}

// Confirm replaces the entry matching provisionalID with the confirmed
// record. When no entry matches (already confirmed, or the provisional was
// lost), an entry matching the confirmed id is replaced instead, and failing
// that the record is appended — the comment must not be dropped.
func (s *Store) Confirm(postID int64, provisionalID model.CommentID, confirmed *model.Comment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.thread(postID)
	for i, c := range t.comments {
		if c.ID.Equal(provisionalID) {
			t.comments[i] = confirmed
			return
		}
	}
	for i, c := range t.comments {
		if c.ID.Equal(confirmed.ID) {
			t.comments[i] = confirmed
			return
		}
	}
	t.comments = append(t.comments, confirmed)
}

// CommentPatch holds optional fields to merge into a stored comment.
// Nil pointer fields mean "don't change".
type CommentPatch struct {
	Text      *string
	UpdatedAt *time.Time
}

// Update merges patch into the comment matching id. A miss on a durable
// identifier is reported as ErrNoSuchComment; a miss on a provisional one is
// a silent no-op (the entry was already resolved locally).
func (s *Store) Update(postID int64, id model.CommentID, patch CommentPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.thread(postID)
	for _, c := range t.comments {
		if !c.ID.Equal(id) {
			continue
		}
		if patch.Text != nil {
			c.Text = *patch.Text
		}
		if patch.UpdatedAt != nil {
			c.UpdatedAt = *patch.UpdatedAt
		}
		return nil
	}
	if id.IsProvisional() {
		return nil
	}
	return ErrNoSuchComment
}

// Remove deletes the comment matching id. Removing an absent comment is a
// no-op, so repeated removal is safe.
func (s *Store) Remove(postID int64, id model.CommentID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.thread(postID)
	for i, c := range t.comments {
		if c.ID.Equal(id) {
			t.comments = append(t.comments[:i], t.comments[i+1:]...)
			return
		}
	}
}

// DropThread forgets a post's thread entirely (the post was deleted).
func (s *Store) DropThread(postID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.threads, postID)
}

// Comments returns a copy of the thread for a post plus its error string.
// loaded is false until the first Attach/Fail, letting the view distinguish
// "never expanded" from "empty thread".
func (s *Store) Comments(postID int64) (comments []model.Comment, errMsg string, loaded bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.threads[postID]
	if !ok {
		return nil, "", false
	}
	out := make([]model.Comment, len(t.comments))
	for i, c := range t.comments {
		out[i] = *c
	}
	return out, t.err, t.loaded
}

// Len returns the number of comments currently held for a post.
func (s *Store) Len(postID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.threads[postID]
	if !ok {
		return 0
	}
	return len(t.comments)
}
