package controller

import (
	"context"
	"log/slog"

	"github.com/gorilla/websocket"

	"github.com/satvikdua06/server/pkg/ctxlogger"
	"github.com/satvikdua06/server/pkg/wsrouter"
)

func (c controller) loggerWSMw(next wsrouter.HandlerFunc[any]) wsrouter.HandlerFunc[any] {
	return func(ctx context.Context, conn *websocket.Conn, payload any) error {
		messageType := wsrouter.GetMessageTypeFromCtx(ctx)
		ctx = ctxlogger.AppendCtx(ctx, slog.String("message_type", messageType))
		c.logger.DebugContext(ctx, "handling message")

		return next(ctx, conn, payload)
	}
}
