package events

import (
	"context"
	"fmt"

	"github.com/dfryer1193/goblog-backend/blog/application"
	"github.com/dfryer1193/goblog-backend/blog/domain"
	"github.com/dfryer1193/goblog-backend/internal/auth"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

// LogListener writes every event to the global logger.
func LogListener() Listener {
	return ListenerFunc(func(ctx context.Context, evt domain.Event) error {
		user, _ := auth.UserFromContext(ctx)
		log.Info().
			Str("event", evt.Kind.Name()).
			Str("eventID", evt.ID.String()).
			Int64("postID", evt.Post.ID).
			Str("title", evt.Post.Title).
			Str("user", user).
			Msg("Post lifecycle event")
		return nil
	})
}

// MetricsListener counts events by kind.
type MetricsListener struct {
	events *prometheus.CounterVec
}

func NewMetricsListener(reg prometheus.Registerer) *MetricsListener {
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "blog_post_events_total",
		Help: "Total number of post lifecycle events dispatched.",
	}, []string{"kind"})
	reg.MustRegister(events)

	return &MetricsListener{events: events}
}

func (m *MetricsListener) Handle(_ context.Context, evt domain.Event) error {
	m.events.WithLabelValues(string(evt.Kind)).Inc()
	return nil
}

// SignAuthor stamps the authenticated user as the author of new posts.
// Anonymous requests leave the author unchanged.
func SignAuthor() Listener {
	return ListenerFunc(func(ctx context.Context, evt domain.Event) error {
		if evt.Kind != domain.PostCreated {
			return nil
		}
		if user, ok := auth.UserFromContext(ctx); ok {
			evt.Post.Author = user
		}
		return nil
	})
}

// InvalidateRenderCache drops the cached HTML of the revision an event is
// about to replace. Events are dispatched before the change is written, so
// the post still carries its old revision.
func InvalidateRenderCache(cache application.RenderCache) Listener {
	return ListenerFunc(func(ctx context.Context, evt domain.Event) error {
		if evt.Kind == domain.PostCreated {
			return nil
		}

		key := application.RenderCacheKey(evt.Post)
		if err := cache.Delete(ctx, key); err != nil {
			return fmt.Errorf("failed to invalidate rendered post %d: %w", evt.Post.ID, err)
		}
		return nil
	})
}
