package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// Event is the payload handed to the out-of-process worker.
type Event struct {
	BookmarkID string `json:"bookmarkId"`
	URL        string `json:"url"`
}

// Invoker hands enrichment off to an out-of-process worker. Fire and forget:
// a nil error only means the hand-off was accepted, nothing is awaited
// beyond that.
type Invoker interface {
	Configured() bool
	Invoke(ctx context.Context, bookmarkID, url string) error
}

// NATSInvoker publishes events to a core NATS subject. No JetStream, no
// redelivery: a lost event leaves the bookmark pending, which is the
// accepted degraded state.
type NATSInvoker struct {
	conn    *nats.Conn
	subject string
}

func NewNATSInvoker(conn *nats.Conn, subject string) *NATSInvoker {
	return &NATSInvoker{conn: conn, subject: subject}
}

func (i *NATSInvoker) Configured() bool {
	return i != nil && i.conn != nil
}

func (i *NATSInvoker) Invoke(ctx context.Context, bookmarkID, url string) error {
	data, err := json.Marshal(Event{BookmarkID: bookmarkID, URL: url})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := i.conn.Publish(i.subject, data); err != nil {
		return fmt.Errorf("failed to publish enrichment event: %w", err)
	}

	// Publish only buffers; flush to know the server accepted the hand-off.
	timeout := 2 * time.Second
	if deadline, ok := ctx.Deadline(); ok {
		if until := time.Until(deadline); until < timeout {
			timeout = until
		}
	}
	if err := i.conn.FlushTimeout(timeout); err != nil {
		return fmt.Errorf("failed to flush enrichment event: %w", err)
	}
	return nil
}
