package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventKind tags a lifecycle event.
type EventKind string

const (
	PostCreated     EventKind = "created"
	PostUpdated     EventKind = "updated"
	PostDeleted     EventKind = "deleted"
	PostPublished   EventKind = "published"
	PostUnpublished EventKind = "unpublished"
)

// EventKinds lists every lifecycle kind in dispatch-table order.
var EventKinds = []EventKind{PostCreated, PostUpdated, PostDeleted, PostPublished, PostUnpublished}

// Name is the dotted event name, e.g. "blog.post.created".
func (k EventKind) Name() string {
	return "blog.post." + string(k)
}

// Event is dispatched right before the matching manipulator call, so
// listeners observe the post as it is about to be persisted.
type Event struct {
	ID         uuid.UUID
	Kind       EventKind
	Post       *Post
	OccurredAt time.Time
}

func NewEvent(kind EventKind, p *Post) Event {
	return Event{
		ID:         uuid.New(),
		Kind:       kind,
		Post:       p,
		OccurredAt: time.Now().UTC(),
	}
}

// EventDispatcher delivers an event to every registered listener.
// The caller never observes listener results.
type EventDispatcher interface {
	Dispatch(ctx context.Context, evt Event)
}
