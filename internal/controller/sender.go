package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
)

// Output is the envelope of every server-to-client frame.
type Output struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// writeJSON serializes writes per connection: a join fan-out and a playback
// broadcast from another handler goroutine may target the same conn, and
// gorilla/websocket supports only one concurrent writer.
func (c controller) writeJSON(conn *websocket.Conn, out *Output) error {
	mu, _ := c.connWriteLocks.LoadOrStore(conn, &sync.Mutex{})
	l := mu.(*sync.Mutex)
	l.Lock()
	defer l.Unlock()

	return conn.WriteJSON(out)
}

func (c controller) writeToConn(ctx context.Context, conn *websocket.Conn, out *Output) error {
	if err := c.writeJSON(conn, out); err != nil {
		return fmt.Errorf("failed to write %s: %w", out.Type, err)
	}

	return nil
}

// broadcast delivers the frame to every conn, skipping none on failure so a
// single dead socket cannot block the rest of the room.
func (c controller) broadcast(ctx context.Context, conns []*websocket.Conn, out *Output) error {
	var errs []error
	for _, conn := range conns {
		if err := c.writeJSON(conn, out); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("failed to broadcast %s: %w", out.Type, errors.Join(errs...))
	}

	return nil
}

func (c controller) writeRejected(ctx context.Context, conn *websocket.Conn, reason string) {
	out := &Output{
		Type: "rejected",
		Payload: map[string]any{
			"reason": reason,
		},
	}
	if err := c.writeJSON(conn, out); err != nil {
		c.logger.DebugContext(ctx, "failed to write rejected", "error", err)
	}
}
