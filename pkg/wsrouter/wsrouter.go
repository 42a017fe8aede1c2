package wsrouter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gorilla/websocket"
)

// ErrDecodePayload marks a payload that could not be unmarshalled into the
// handler's input type.
var ErrDecodePayload = errors.New("failed to decode payload")

// ErrUnknownMessageType marks a message whose type has no registered handler.
var ErrUnknownMessageType = errors.New("unknown message type")

type message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type HandlerFunc[T any] func(ctx context.Context, conn *websocket.Conn, payload T) error

type Middleware func(next HandlerFunc[any]) HandlerFunc[any]

// ErrorFunc is invoked for every handler error; the read loop keeps going.
type ErrorFunc func(ctx context.Context, conn *websocket.Conn, err error)

type rawHandler func(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error

type WSRouter struct {
	routes      map[string]rawHandler
	middlewares []Middleware
	onError     ErrorFunc
}

func New() *WSRouter {
	return &WSRouter{
		routes:  make(map[string]rawHandler),
		onError: func(context.Context, *websocket.Conn, error) {},
	}
}

// Use appends middlewares applied to every handler, outermost first.
// Must be called before Handle.
func (r *WSRouter) Use(mw ...Middleware) {
	r.middlewares = append(r.middlewares, mw...)
}

func (r *WSRouter) OnError(f ErrorFunc) {
	r.onError = f
}

// Handle registers a typed handler for a message type. The payload is
// decoded before the middleware chain runs, so middlewares observe the
// decoded value.
func Handle[T any](r *WSRouter, messageType string, handler HandlerFunc[T]) {
	wrapped := HandlerFunc[any](func(ctx context.Context, conn *websocket.Conn, payload any) error {
		return handler(ctx, conn, payload.(T))
	})
	for i := len(r.middlewares) - 1; i >= 0; i-- {
		wrapped = r.middlewares[i](wrapped)
	}

	r.routes[messageType] = func(ctx context.Context, conn *websocket.Conn, raw json.RawMessage) error {
		var payload T
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &payload); err != nil {
				return fmt.Errorf("%w: %s", ErrDecodePayload, err)
			}
		}

		return wrapped(ctx, conn, payload)
	}
}

// ServeConn reads messages until the connection errors out. Handler errors
// are reported to the OnError callback and do not end the loop.
func (r *WSRouter) ServeConn(ctx context.Context, conn *websocket.Conn) error {
	defer conn.Close()

	for {
		var msg message
		if err := conn.ReadJSON(&msg); err != nil {
			return err
		}

		msgCtx := context.WithValue(ctx, messageTypeKey, msg.Type)

		handler, ok := r.routes[msg.Type]
		if !ok {
			r.onError(msgCtx, conn, fmt.Errorf("%w: %q", ErrUnknownMessageType, msg.Type))
			continue
		}

		if err := handler(msgCtx, conn, msg.Payload); err != nil {
			r.onError(msgCtx, conn, err)
		}
	}
}
