// Package events publishes committed activity entries to NATS.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/example/editorial/internal/ports/secondary"
)

// conn is the part of *nats.Conn the publisher uses.
type conn interface {
	Publish(subject string, data []byte) error
	Drain() error
}

// Event is the wire form of an activity entry.
type Event struct {
	ID           string `json:"id"`
	SubmissionID string `json:"submission_id"`
	ActorID      string `json:"actor_id,omitempty"`
	Category     string `json:"category"`
	Message      string `json:"message"`
	CreatedAt    string `json:"created_at"`
}

// NATSPublisher implements secondary.EventPublisher. Entries go to
// "<prefix>.<category>".
type NATSPublisher struct {
	nc     conn
	prefix string
}

// Connect dials url and returns a publisher over the new connection.
func Connect(url, prefix string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("editorial"),
		nats.MaxReconnects(5),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return NewNATSPublisher(nc, prefix), nil
}

// NewNATSPublisher wraps an established connection.
func NewNATSPublisher(nc *nats.Conn, prefix string) *NATSPublisher {
	return newPublisher(nc, prefix)
}

func newPublisher(nc conn, prefix string) *NATSPublisher {
	return &NATSPublisher{nc: nc, prefix: strings.Trim(prefix, ". ")}
}

// Subject returns the subject an entry is published on.
func (p *NATSPublisher) Subject(entry *secondary.ActivityRecord) string {
	category := strings.TrimSpace(entry.Category)
	if category == "" {
		category = "note"
	}
	return p.prefix + "." + category
}

// Publish sends one entry. NATS publish does not take a context, so the
// context is only checked before sending.
func (p *NATSPublisher) Publish(ctx context.Context, entry *secondary.ActivityRecord) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled before publish: %w", err)
	}
	data, err := json.Marshal(Event{
		ID:           entry.ID,
		SubmissionID: entry.SubmissionID,
		ActorID:      entry.ActorID,
		Category:     entry.Category,
		Message:      entry.Message,
		CreatedAt:    entry.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("encode activity %s: %w", entry.ID, err)
	}
	if err := p.nc.Publish(p.Subject(entry), data); err != nil {
		return fmt.Errorf("publish activity %s: %w", entry.ID, err)
	}
	return nil
}

// Close drains pending messages and closes the connection.
func (p *NATSPublisher) Close() error {
	return p.nc.Drain()
}

// Nop discards every entry. It is used when no NATS URL is configured.
type Nop struct{}

// Publish does nothing.
func (Nop) Publish(context.Context, *secondary.ActivityRecord) error { return nil }
