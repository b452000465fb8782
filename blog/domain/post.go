package domain

import (
	"context"
	"errors"
	"time"
)

// ErrPostNotFound is returned when a post lookup has no matching row.
var ErrPostNotFound = errors.New("post not found")

// Post represents a blog post managed from the backend.
// A post with ID 0 has not been persisted yet.
type Post struct {
	ID          int64
	Title       string
	Content     string
	Author      string
	Published   bool
	PublishedAt time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (p *Post) IsPublished() bool {
	return p.Published
}

// PostStore is the read side used by the backend: it hands out fresh posts,
// finds existing ones and builds paginators over the whole collection.
type PostStore interface {
	NewPost() *Post
	FindPost(ctx context.Context, id int64) (*Post, error)
	Paginator(ctx context.Context, sorter Sorter) (Paginator, error)
}

// PostRepository persists post rows. It knows nothing about timestamps or
// publication rules; PostManipulator owns those.
type PostRepository interface {
	InsertPost(ctx context.Context, p *Post) (int64, error)
	UpdatePost(ctx context.Context, p *Post) error
	DeletePost(ctx context.Context, id int64) error

	Publish(ctx context.Context, postID int64, at time.Time) error
	Unpublish(ctx context.Context, postID int64, at time.Time) error
}

// PostManipulator performs the persistence side effect of each lifecycle action.
type PostManipulator interface {
	Create(ctx context.Context, p *Post) error
	Update(ctx context.Context, p *Post) error
	Delete(ctx context.Context, p *Post) error
	Publish(ctx context.Context, p *Post) error
	Unpublish(ctx context.Context, p *Post) error
}
