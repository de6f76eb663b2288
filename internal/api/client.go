// Package api provides a transport-agnostic interface for the GymWall
// service and an HTTP/JSON implementation that talks to its REST API.
package api

import (
	"context"
	"io"

	"github.com/groblegark/gymwall/internal/model"
)

// WallClient is the interface the CLI and the feed controller use to
// communicate with the GymWall server. It is implemented by HTTPClient.
type WallClient interface {
	// Auth
	SignIn(ctx context.Context, username, password string) (*AuthResponse, error)
	SignUp(ctx context.Context, req *SignUpRequest) error

	// Posts
	ListPosts(ctx context.Context) ([]*model.Post, error)
	GetPost(ctx context.Context, id int64) (*model.Post, error)
	CreatePost(ctx context.Context, req *CreatePostRequest) (*model.Post, error)
	UpdatePost(ctx context.Context, id int64, text string) (*model.Post, error)
	DeletePost(ctx context.Context, id int64) error
	LikePost(ctx context.Context, id int64) error
	UnlikePost(ctx context.Context, id int64) error

	// Comments
	ListComments(ctx context.Context, postID int64) ([]*model.Comment, error)
	AddComment(ctx context.Context, postID int64, text string) (*model.Comment, error)
	UpdateComment(ctx context.Context, postID int64, commentID model.CommentID, text string) (*model.Comment, error)
	DeleteComment(ctx context.Context, postID int64, commentID model.CommentID) error

	// Progress goals
	ListProgress(ctx context.Context) ([]*model.Progress, error)
	GetProgress(ctx context.Context, id int64) (*model.Progress, error)
	CreateProgress(ctx context.Context, p *model.Progress) (*model.Progress, error)
	UpdateProgress(ctx context.Context, id int64, p *model.Progress) (*model.Progress, error)
	DeleteProgress(ctx context.Context, id int64) error
	GetProgressHistory(ctx context.Context, progressID int64) ([]*model.ProgressHistory, error)
	AddProgressHistory(ctx context.Context, progressID int64, h *model.ProgressHistory) (*model.ProgressHistory, error)

	// Workout schedules
	ListSchedules(ctx context.Context) ([]*model.WorkoutSchedule, error)
	GetSchedule(ctx context.Context, id int64) (*model.WorkoutSchedule, error)
	CreateSchedule(ctx context.Context, s *model.WorkoutSchedule) (*model.WorkoutSchedule, error)
	UpdateSchedule(ctx context.Context, id int64, s *model.WorkoutSchedule) (*model.WorkoutSchedule, error)
	DeleteSchedule(ctx context.Context, id int64) error
	CompleteExercise(ctx context.Context, scheduleID, exerciseID int64) (*model.WorkoutSchedule, error)

	// Lifecycle
	Close() error
}

// AuthResponse is the payload returned from a successful sign-in.
type AuthResponse struct {
	Token    string `json:"token"`
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	FullName string `json:"fullName,omitempty"`
}

// SignUpRequest holds parameters for registering a new account.
type SignUpRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName,omitempty"`
}

// FileUpload is one attachment streamed into the multipart create-post body.
type FileUpload struct {
	Name        string // file name reported to the server
	ContentType string // optional; sniffed server-side when empty
	Reader      io.Reader
}

// MaxPostImages is the attachment cap enforced before any bytes are sent.
const MaxPostImages = 3

// CreatePostRequest holds parameters for creating a post. At most
// MaxPostImages images and one video may be attached.
type CreatePostRequest struct {
	Text   string
	Images []FileUpload
	Video  *FileUpload
}
