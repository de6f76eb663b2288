package model

// UserSummary is the denormalized author info the server embeds in posts and
// comments.
type UserSummary struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullName,omitempty"`
}
