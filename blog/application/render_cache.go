package application

import (
	"context"
	"fmt"

	"github.com/dfryer1193/goblog-backend/blog/domain"
)

// RenderCache stores rendered post HTML keyed by post revision.
type RenderCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, html string) error
	Delete(ctx context.Context, key string) error
}

// RenderCacheKey identifies one revision of a post. Any update moves
// UpdatedAt, so stale entries are never served.
func RenderCacheKey(p *domain.Post) string {
	return fmt.Sprintf("post:%d:%d", p.ID, p.UpdatedAt.UnixNano())
}
