package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/groblegark/gymwall/internal/model"
)

// HTTPClient implements WallClient using the GymWall HTTP/JSON REST API.
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewHTTPClient creates a new HTTP client targeting the given base URL
// (e.g. "http://localhost:8080"). When token is non-empty, a bearer
// Authorization header is set on every request. Request deadlines are
// context-driven; the client itself imposes no timeout.
func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{},
	}
}

// Close is a no-op for the HTTP client.
func (c *HTTPClient) Close() error { return nil }

// --- Auth ---

func (c *HTTPClient) SignIn(ctx context.Context, username, password string) (*AuthResponse, error) {
	body := map[string]string{"username": username, "password": password}
	var resp AuthResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/signin", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) SignUp(ctx context.Context, req *SignUpRequest) error {
	return c.doJSON(ctx, http.MethodPost, "/api/auth/signup", req, nil)
}

// --- Posts ---

func (c *HTTPClient) ListPosts(ctx context.Context) ([]*model.Post, error) {
	var posts []*model.Post
	if err := c.doJSON(ctx, http.MethodGet, "/api/posts", nil, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (c *HTTPClient) GetPost(ctx context.Context, id int64) (*model.Post, error) {
	var post model.Post
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/posts/%d", id), nil, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

func (c *HTTPClient) CreatePost(ctx context.Context, req *CreatePostRequest) (*model.Post, error) {
	if len(req.Images) > MaxPostImages {
		return nil, fmt.Errorf("at most %d images per post, got %d", MaxPostImages, len(req.Images))
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("text", req.Text); err != nil {
		return nil, fmt.Errorf("writing text field: %w", err)
	}
	for _, img := range req.Images {
		if err := writeFilePart(w, "images", img); err != nil {
			return nil, err
		}
	}
	if req.Video != nil {
		if err := writeFilePart(w, "video", *req.Video); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("closing multipart body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/posts", &buf)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", w.FormDataContentType())
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	var post model.Post
	if err := c.do(httpReq, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

func (c *HTTPClient) UpdatePost(ctx context.Context, id int64, text string) (*model.Post, error) {
	body := map[string]string{"text": text}
	var post model.Post
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/api/posts/%d", id), body, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

func (c *HTTPClient) DeletePost(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/api/posts/%d", id), nil, nil)
}

func (c *HTTPClient) LikePost(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/api/posts/%d/like", id), struct{}{}, nil)
}

func (c *HTTPClient) UnlikePost(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/api/posts/%d/unlike", id), struct{}{}, nil)
}

// --- Comments ---

func (c *HTTPClient) ListComments(ctx context.Context, postID int64) ([]*model.Comment, error) {
	var comments []*model.Comment
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/posts/%d/comments", postID), nil, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

func (c *HTTPClient) AddComment(ctx context.Context, postID int64, text string) (*model.Comment, error) {
	body := map[string]string{"text": text}
	var comment model.Comment
	if err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/api/posts/%d/comments", postID), body, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

// UpdateComment edits a comment's text. Provisional identifiers are rejected
// before any network call: the server has no record to update.
func (c *HTTPClient) UpdateComment(ctx context.Context, postID int64, commentID model.CommentID, text string) (*model.Comment, error) {
	n, err := durableCommentID(commentID)
	if err != nil {
		return nil, err
	}
	body := map[string]string{"text": strings.TrimSpace(text)}
	var comment model.Comment
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/api/posts/%d/comments/%d", postID, n), body, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

// DeleteComment deletes a comment by durable identifier. Provisional
// identifiers are rejected; the caller removes those locally.
func (c *HTTPClient) DeleteComment(ctx context.Context, postID int64, commentID model.CommentID) error {
	n, err := durableCommentID(commentID)
	if err != nil {
		return err
	}
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/api/posts/%d/comments/%d", postID, n), nil, nil)
}

// --- Progress goals ---

func (c *HTTPClient) ListProgress(ctx context.Context) ([]*model.Progress, error) {
	var out []*model.Progress
	if err := c.doJSON(ctx, http.MethodGet, "/api/progress", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) GetProgress(ctx context.Context, id int64) (*model.Progress, error) {
	var p model.Progress
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/progress/%d", id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *HTTPClient) CreateProgress(ctx context.Context, p *model.Progress) (*model.Progress, error) {
	var out model.Progress
	if err := c.doJSON(ctx, http.MethodPost, "/api/progress", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) UpdateProgress(ctx context.Context, id int64, p *model.Progress) (*model.Progress, error) {
	var out model.Progress
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/api/progress/%d", id), p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) DeleteProgress(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/api/progress/%d", id), nil, nil)
}

func (c *HTTPClient) GetProgressHistory(ctx context.Context, progressID int64) ([]*model.ProgressHistory, error) {
	var out []*model.ProgressHistory
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/progress/%d/history", progressID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) AddProgressHistory(ctx context.Context, progressID int64, h *model.ProgressHistory) (*model.ProgressHistory, error) {
	var out model.ProgressHistory
	if err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/api/progress/%d/history", progressID), h, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- Workout schedules ---

func (c *HTTPClient) ListSchedules(ctx context.Context) ([]*model.WorkoutSchedule, error) {
	var out []*model.WorkoutSchedule
	if err := c.doJSON(ctx, http.MethodGet, "/api/workout-schedule", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) GetSchedule(ctx context.Context, id int64) (*model.WorkoutSchedule, error) {
	var s model.WorkoutSchedule
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/workout-schedule/%d", id), nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *HTTPClient) CreateSchedule(ctx context.Context, s *model.WorkoutSchedule) (*model.WorkoutSchedule, error) {
	var out model.WorkoutSchedule
	if err := c.doJSON(ctx, http.MethodPost, "/api/workout-schedule", s, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) UpdateSchedule(ctx context.Context, id int64, s *model.WorkoutSchedule) (*model.WorkoutSchedule, error) {
	var out model.WorkoutSchedule
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/api/workout-schedule/%d", id), s, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) DeleteSchedule(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/api/workout-schedule/%d", id), nil, nil)
}

func (c *HTTPClient) CompleteExercise(ctx context.Context, scheduleID, exerciseID int64) (*model.WorkoutSchedule, error) {
	var out model.WorkoutSchedule
	path := fmt.Sprintf("/api/workout-schedule/%d/exercises/%d/complete", scheduleID, exerciseID)
	if err := c.doJSON(ctx, http.MethodPut, path, struct{}{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- internal helpers ---

func durableCommentID(id model.CommentID) (int64, error) {
	if id.IsProvisional() {
		return 0, ErrProvisionalID
	}
	n, err := id.Int64()
	if err != nil {
		return 0, fmt.Errorf("comment id: %w", err)
	}
	return n, nil
}

func writeFilePart(w *multipart.Writer, field string, f FileUpload) error {
	var (
		part io.Writer
		err  error
	)
	if f.ContentType != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, f.Name))
		h.Set("Content-Type", f.ContentType)
		part, err = w.CreatePart(h)
	} else {
		part, err = w.CreateFormFile(field, f.Name)
	}
	if err != nil {
		return fmt.Errorf("creating %s part: %w", field, err)
	}
	if _, err := io.Copy(part, f.Reader); err != nil {
		return fmt.Errorf("copying %s %q: %w", field, f.Name, err)
	}
	return nil
}

// doJSON performs an HTTP request with optional JSON body and decodes the
// JSON response. If result is nil, the response body is discarded (for
// DELETE/204 responses).
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	return c.do(req, result)
}

func (c *HTTPClient) do(req *http.Request, result any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	// 204 No Content — success with no body.
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if json.Unmarshal(respBody, &errResp) == nil {
			if errResp.Message != "" {
				return &APIError{StatusCode: resp.StatusCode, Message: errResp.Message}
			}
			if errResp.Error != "" {
				return &APIError{StatusCode: resp.StatusCode, Message: errResp.Error}
			}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}
