package application

import (
	"context"
	"fmt"
	"time"

	"github.com/dfryer1193/goblog-backend/blog/domain"
)

var _ domain.PostManipulator = (*PostManipulator)(nil)

// PostManipulator stamps lifecycle timestamps on a post and hands it to the
// repository. The in-memory post is kept in sync with what was written.
type PostManipulator struct {
	repo domain.PostRepository
	now  func() time.Time
}

func NewPostManipulator(repo domain.PostRepository) *PostManipulator {
	return &PostManipulator{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (m *PostManipulator) Create(ctx context.Context, p *domain.Post) error {
	now := m.now()
	p.CreatedAt = now
	p.UpdatedAt = now
	stampPublication(p, now)

	id, err := m.repo.InsertPost(ctx, p)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}

	p.ID = id
	return nil
}

func (m *PostManipulator) Update(ctx context.Context, p *domain.Post) error {
	now := m.now()
	p.UpdatedAt = now
	stampPublication(p, now)

	if err := m.repo.UpdatePost(ctx, p); err != nil {
		return fmt.Errorf("failed to update post %d: %w", p.ID, err)
	}
	return nil
}

func (m *PostManipulator) Delete(ctx context.Context, p *domain.Post) error {
	if err := m.repo.DeletePost(ctx, p.ID); err != nil {
		return fmt.Errorf("failed to delete post %d: %w", p.ID, err)
	}
	return nil
}

func (m *PostManipulator) Publish(ctx context.Context, p *domain.Post) error {
	now := m.now()
	if err := m.repo.Publish(ctx, p.ID, now); err != nil {
		return fmt.Errorf("failed to publish post %d: %w", p.ID, err)
	}

	p.Published = true
	p.PublishedAt = now
	p.UpdatedAt = now
	return nil
}

func (m *PostManipulator) Unpublish(ctx context.Context, p *domain.Post) error {
	now := m.now()
	if err := m.repo.Unpublish(ctx, p.ID, now); err != nil {
		return fmt.Errorf("failed to unpublish post %d: %w", p.ID, err)
	}

	p.Published = false
	p.PublishedAt = time.Time{}
	p.UpdatedAt = now
	return nil
}

// stampPublication keeps PublishedAt consistent with the published flag a
// form may have toggled.
func stampPublication(p *domain.Post, now time.Time) {
	switch {
	case !p.Published:
		p.PublishedAt = time.Time{}
	case p.PublishedAt.IsZero():
		p.PublishedAt = now
	}
}
