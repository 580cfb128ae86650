package post

import (
	"time"

	"github.com/abduss/blogd/internal/asset"
	"github.com/google/uuid"
)

// Post is a blog entry optionally carrying one image asset.
type Post struct {
	ID        uuid.UUID `json:"id"`
	AuthorID  uuid.UUID `json:"author_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Image     *string   `json:"image,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateInput carries the text fields of a new post.
type CreateInput struct {
	Title string
	Body  string
}

// UpdateInput carries replacement text fields. Nil fields are left unchanged.
type UpdateInput struct {
	Title *string
	Body  *string
}

// WriteResult is returned by create and update. Image is nil when no upload was sent.
type WriteResult struct {
	Post  Post
	Image *asset.CreateOutcome
}

// Warnings lists degraded-variant messages for the response payload.
func (r WriteResult) Warnings() []string {
	if r.Image == nil {
		return nil
	}
	return r.Image.Warnings
}

// DeleteResult is returned when a post is removed. Image is nil when the post had none.
type DeleteResult struct {
	Post  Post
	Image *asset.DeleteOutcome
}
