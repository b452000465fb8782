// Package events delivers post lifecycle events to in-process listeners.
package events

import (
	"context"
	"sync"

	"github.com/dfryer1193/goblog-backend/blog/domain"
	"github.com/rs/zerolog/log"
)

// Listener reacts to a lifecycle event. Errors are logged, never returned
// to the code that dispatched the event.
type Listener interface {
	Handle(ctx context.Context, evt domain.Event) error
}

// ListenerFunc is an adapter to allow ordinary functions to be used as a Listener.
type ListenerFunc func(ctx context.Context, evt domain.Event) error

func (f ListenerFunc) Handle(ctx context.Context, evt domain.Event) error {
	return f(ctx, evt)
}

var _ domain.EventDispatcher = (*Dispatcher)(nil)

// Dispatcher calls listeners synchronously in subscription order.
type Dispatcher struct {
	mu        sync.RWMutex
	listeners map[domain.EventKind][]Listener
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{listeners: make(map[domain.EventKind][]Listener)}
}

// Subscribe registers l for the given kinds, or for every kind when none
// are given.
func (d *Dispatcher) Subscribe(l Listener, kinds ...domain.EventKind) {
	if len(kinds) == 0 {
		kinds = domain.EventKinds
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	for _, kind := range kinds {
		d.listeners[kind] = append(d.listeners[kind], l)
	}
}

func (d *Dispatcher) Dispatch(ctx context.Context, evt domain.Event) {
	d.mu.RLock()
	listeners := d.listeners[evt.Kind]
	d.mu.RUnlock()

	for _, l := range listeners {
		if err := l.Handle(ctx, evt); err != nil {
			log.Error().
				Err(err).
				Str("event", evt.Kind.Name()).
				Str("eventID", evt.ID.String()).
				Msg("Event listener failed")
		}
	}
}
