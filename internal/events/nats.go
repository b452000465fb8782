package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dfryer1193/goblog-backend/blog/domain"
	natspkg "github.com/nats-io/nats.go"
)

// Publisher is the part of a NATS connection the forwarder needs.
type Publisher interface {
	Publish(subject string, data []byte) error
}

type Client struct {
	nc *natspkg.Conn
}

func NewClient(url string) (*Client, error) {
	nc, err := natspkg.Connect(url, natspkg.Name("goblog-backend"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}
	return &Client{nc: nc}, nil
}

func (c *Client) Publish(subject string, data []byte) error {
	return c.nc.Publish(subject, data)
}

// Drain flushes pending publishes before closing the connection.
func (c *Client) Drain() error {
	return c.nc.Drain()
}

func (c *Client) IsConnected() bool {
	return c.nc != nil && c.nc.Status() == natspkg.CONNECTED
}

// Ping reports an error unless the connection is up.
func (c *Client) Ping(context.Context) error {
	if !c.IsConnected() {
		return fmt.Errorf("nats connection is %s", c.nc.Status())
	}
	return nil
}

type postPayload struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Author      string     `json:"author"`
	Published   bool       `json:"published"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

type eventPayload struct {
	ID         string      `json:"id"`
	Kind       string      `json:"kind"`
	OccurredAt time.Time   `json:"occurred_at"`
	Post       postPayload `json:"post"`
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// Forwarder publishes events as JSON on <prefix>.<kind>.
type Forwarder struct {
	pub    Publisher
	prefix string
}

func NewForwarder(pub Publisher, prefix string) *Forwarder {
	if prefix == "" {
		prefix = "blog.post"
	}
	return &Forwarder{pub: pub, prefix: prefix}
}

func (f *Forwarder) Subject(kind domain.EventKind) string {
	return f.prefix + "." + string(kind)
}

func (f *Forwarder) Handle(_ context.Context, evt domain.Event) error {
	data, err := json.Marshal(eventPayload{
		ID:         evt.ID.String(),
		Kind:       string(evt.Kind),
		OccurredAt: evt.OccurredAt,
		Post: postPayload{
			ID:          evt.Post.ID,
			Title:       evt.Post.Title,
			Author:      evt.Post.Author,
			Published:   evt.Post.Published,
			PublishedAt: optionalTime(evt.Post.PublishedAt),
			CreatedAt:   optionalTime(evt.Post.CreatedAt),
			UpdatedAt:   optionalTime(evt.Post.UpdatedAt),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", evt.Kind, err)
	}

	subject := f.Subject(evt.Kind)
	if err := f.pub.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}
	return nil
}
