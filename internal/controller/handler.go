package controller

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/satvikdua06/server/internal/service/room"
	"github.com/satvikdua06/server/pkg/ctxlogger"
)

func (c controller) joinRoom(w http.ResponseWriter, r *http.Request) {
	roomId := chi.URLParam(r, "room-id")
	if roomId == "" {
		http.Error(w, "room id is required", http.StatusBadRequest)
		return
	}
	displayName := r.URL.Query().Get("display-name")

	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to upgrade connection", "error", err)
		return
	}

	joinResp, err := c.roomService.JoinRoom(r.Context(), &room.JoinRoomParams{
		RoomId:      roomId,
		DisplayName: displayName,
		Conn:        conn,
	})
	if err != nil {
		if errors.Is(err, room.ErrRoomFull) {
			c.writeRejected(r.Context(), conn, "room is full")
		} else {
			c.logger.WarnContext(r.Context(), "failed to join room", "error", err)
		}
		conn.Close()
		return
	}

	memberId := joinResp.JoinedMember.Id
	ctx := ctxlogger.AppendCtx(r.Context(),
		slog.String("room_id", roomId),
		slog.String("member_id", memberId),
	)
	c.logger.InfoContext(ctx, "member joined")

	defer c.handleDisconnect(ctx, conn, memberId, roomId)

	if err := c.writeToConn(ctx, conn, &Output{
		Type:    "room-state",
		Payload: joinResp.RoomState,
	}); err != nil {
		c.logger.WarnContext(ctx, "failed to send room state", "error", err)
		return
	}

	if err := c.broadcast(ctx, joinResp.Conns, &Output{
		Type: "member-joined",
		Payload: map[string]any{
			"member_id":    joinResp.JoinedMember.Id,
			"display_name": joinResp.JoinedMember.DisplayName,
		},
	}); err != nil {
		c.logger.WarnContext(ctx, "failed to broadcast member joined", "error", err)
	}
	if err := c.broadcast(ctx, joinResp.Conns, &Output{
		Type: "member-list",
		Payload: map[string]any{
			"members": joinResp.MemberList,
		},
	}); err != nil {
		c.logger.WarnContext(ctx, "failed to broadcast member list", "error", err)
	}

	ctx = context.WithValue(ctx, roomIdCtxKey, roomId)
	ctx = context.WithValue(ctx, memberIdCtxKey, memberId)

	if err := c.wsmux.ServeConn(ctx, conn); err != nil {
		c.logger.DebugContext(ctx, "connection closed", "error", err)
	}
}

func (c controller) handleDisconnect(ctx context.Context, conn *websocket.Conn, memberId, roomId string) {
	// the conn is unregistered before the write lock entry is dropped, so
	// no broadcast resolves this conn afterwards
	defer c.connWriteLocks.Delete(conn)

	resp, err := c.roomService.DisconnectMember(ctx, &room.DisconnectMemberParams{
		MemberId: memberId,
		RoomId:   roomId,
	})
	if err != nil {
		c.logger.DebugContext(ctx, "failed to disconnect member", "error", err)
		return
	}

	c.logger.InfoContext(ctx, "member left", "room_deleted", resp.IsRoomDeleted)
	if resp.IsRoomDeleted {
		return
	}

	if err := c.broadcast(ctx, resp.Conns, &Output{
		Type: "member-left",
		Payload: map[string]any{
			"member_id":    resp.LeftMember.Id,
			"display_name": resp.LeftMember.DisplayName,
		},
	}); err != nil {
		c.logger.WarnContext(ctx, "failed to broadcast member left", "error", err)
	}
	if err := c.broadcast(ctx, resp.Conns, &Output{
		Type: "member-list",
		Payload: map[string]any{
			"members": resp.Members,
		},
	}); err != nil {
		c.logger.WarnContext(ctx, "failed to broadcast member list", "error", err)
	}

	if resp.HostChanged {
		if err := c.broadcast(ctx, resp.Conns, &Output{
			Type: "host-change",
			Payload: map[string]any{
				"host_id":      resp.NewHost.Id,
				"display_name": resp.NewHost.DisplayName,
			},
		}); err != nil {
			c.logger.WarnContext(ctx, "failed to broadcast host change", "error", err)
		}
	}
}
