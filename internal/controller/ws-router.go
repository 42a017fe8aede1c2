package controller

import (
	"context"
	"errors"

	"github.com/gorilla/websocket"

	"github.com/satvikdua06/server/internal/service/room"
	"github.com/satvikdua06/server/pkg/wsrouter"
)

func (c *controller) getWSRouter() *wsrouter.WSRouter {
	mux := wsrouter.New()
	mux.Use(c.loggerWSMw)
	mux.OnError(c.handleWSError)

	wsrouter.Handle(mux, "media-change", c.handleMediaChange)
	wsrouter.Handle(mux, "play-pause", c.handlePlayPause)
	wsrouter.Handle(mux, "seek", c.handleSeek)
	wsrouter.Handle(mux, "periodic-update", c.handlePeriodicUpdate)
	wsrouter.Handle(mux, "sync-request", c.handleSyncRequest)
	wsrouter.Handle(mux, "chat", c.handleChat)
	wsrouter.Handle(mux, "alive", c.handleAlive)

	return mux
}

// handleWSError sorts handler failures into two buckets. Malformed input is
// answered with a rejected frame so the sender can recover; protocol misuse
// from lagging or hostile clients is dropped without a reply.
func (c controller) handleWSError(ctx context.Context, conn *websocket.Conn, err error) {
	switch {
	case errors.Is(err, room.ErrValidationError),
		errors.Is(err, wsrouter.ErrDecodePayload):
		c.writeRejected(ctx, conn, err.Error())
	case errors.Is(err, room.ErrPermissionDenied):
		c.writeRejected(ctx, conn, "only the host can do that")
	case errors.Is(err, room.ErrNotMember),
		errors.Is(err, room.ErrRoomNotFound),
		errors.Is(err, room.ErrMemberNotFound),
		errors.Is(err, room.ErrNotController),
		errors.Is(err, wsrouter.ErrUnknownMessageType):
		c.logger.DebugContext(ctx, "dropped message", "error", err)
	default:
		c.logger.WarnContext(ctx, "failed to handle message", "error", err)
	}
}
