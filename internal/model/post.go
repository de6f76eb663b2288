package model

import "time"

// Post is a wall post: text plus optional images and a video, owned by one
// user. Comments are attached lazily when the thread is expanded, so a
// freshly fetched post has a nil Comments slice.
type Post struct {
	ID                 int64       `json:"id"`
	Text               string      `json:"text"`
	User               UserSummary `json:"user"`
	Images             []PostImage `json:"images,omitempty"`
	Video              *PostVideo  `json:"video,omitempty"`
	CreatedAt          time.Time   `json:"createdAt,omitzero"`
	UpdatedAt          time.Time   `json:"updatedAt,omitzero"`
	LikesCount         int64       `json:"likesCount"`
	CommentsCount      int64       `json:"commentsCount"`
	LikedByCurrentUser bool        `json:"likedByCurrentUser"`

	Comments []*Comment `json:"comments,omitempty"`
}

// PostImage is one attached image, served by the file endpoint.
type PostImage struct {
	ID  int64  `json:"id"`
	URL string `json:"url"`
}

// PostVideo is the single attached video, if any.
type PostVideo struct {
	ID       int64  `json:"id"`
	URL      string `json:"url"`
	Duration int    `json:"duration,omitempty"` // seconds
}
