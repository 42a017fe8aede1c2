package controller

import (
	"context"
	"fmt"

	"github.com/gorilla/websocket"

	"github.com/satvikdua06/server/internal/service/room"
)

type MediaChangeInput struct {
	Kind            string  `json:"kind" validate:"required,oneof=youtube audio_track"`
	Title           string  `json:"title" validate:"required"`
	VideoId         string  `json:"video_id"`
	Id              string  `json:"id"`
	Artist          string  `json:"artist"`
	PreviewUrl      string  `json:"preview_url"`
	DurationSeconds float64 `json:"duration_seconds" validate:"gte=0"`
}

func (c controller) handleMediaChange(ctx context.Context, conn *websocket.Conn, input MediaChangeInput) error {
	if validationErrors, ok := c.validate.Validate(input); !ok {
		return fmt.Errorf("%w: %s", room.ErrValidationError, validationErrors[0].Message)
	}

	resp, err := c.roomService.UpdateMedia(ctx, &room.UpdateMediaParams{
		Kind:            input.Kind,
		Title:           input.Title,
		VideoId:         input.VideoId,
		TrackId:         input.Id,
		Artist:          input.Artist,
		PreviewUrl:      input.PreviewUrl,
		DurationSeconds: input.DurationSeconds,
		SenderId:        c.getMemberIdFromCtx(ctx),
		RoomId:          c.getRoomIdFromCtx(ctx),
	})
	if err != nil {
		return fmt.Errorf("failed to update media: %w", err)
	}

	return c.broadcast(ctx, resp.Conns, &Output{
		Type: "media-change",
		Payload: map[string]any{
			"media":      resp.Media,
			"player":     resp.Player,
			"changed_by": resp.ChangedBy,
		},
	})
}

type PlayPauseInput struct {
	IsPlaying bool    `json:"is_playing"`
	Position  float64 `json:"position"`
}

func (c controller) handlePlayPause(ctx context.Context, conn *websocket.Conn, input PlayPauseInput) error {
	resp, err := c.roomService.UpdatePlayback(ctx, &room.UpdatePlaybackParams{
		IsPlaying: input.IsPlaying,
		Position:  input.Position,
		SenderId:  c.getMemberIdFromCtx(ctx),
		RoomId:    c.getRoomIdFromCtx(ctx),
	})
	if err != nil {
		return fmt.Errorf("failed to update playback: %w", err)
	}

	return c.broadcast(ctx, resp.Conns, &Output{
		Type: "play-pause",
		Payload: map[string]any{
			"player":        resp.Player,
			"controlled_by": resp.Controller,
		},
	})
}

type SeekInput struct {
	Position  float64 `json:"position"`
	IsPlaying *bool   `json:"is_playing"`
}

func (c controller) handleSeek(ctx context.Context, conn *websocket.Conn, input SeekInput) error {
	resp, err := c.roomService.Seek(ctx, &room.SeekParams{
		Position:  input.Position,
		IsPlaying: input.IsPlaying,
		SenderId:  c.getMemberIdFromCtx(ctx),
		RoomId:    c.getRoomIdFromCtx(ctx),
	})
	if err != nil {
		return fmt.Errorf("failed to seek: %w", err)
	}

	return c.broadcast(ctx, resp.Conns, &Output{
		Type: "seek",
		Payload: map[string]any{
			"player":        resp.Player,
			"controlled_by": resp.Controller,
		},
	})
}

type PeriodicUpdateInput struct {
	IsPlaying bool    `json:"is_playing"`
	Position  float64 `json:"position"`
}

func (c controller) handlePeriodicUpdate(ctx context.Context, conn *websocket.Conn, input PeriodicUpdateInput) error {
	resp, err := c.roomService.PeriodicUpdate(ctx, &room.PeriodicUpdateParams{
		IsPlaying: input.IsPlaying,
		Position:  input.Position,
		SenderId:  c.getMemberIdFromCtx(ctx),
		RoomId:    c.getRoomIdFromCtx(ctx),
	})
	if err != nil {
		return err
	}

	return c.broadcast(ctx, resp.Conns, &Output{
		Type: "periodic-update",
		Payload: map[string]any{
			"player": resp.Player,
			"from":   resp.From,
		},
	})
}

func (c controller) handleSyncRequest(ctx context.Context, conn *websocket.Conn, _ struct{}) error {
	resp, err := c.roomService.SyncRequest(ctx, &room.SyncRequestParams{
		SenderId: c.getMemberIdFromCtx(ctx),
		RoomId:   c.getRoomIdFromCtx(ctx),
	})
	if err != nil {
		return err
	}

	return c.writeToConn(ctx, conn, &Output{
		Type:    "sync-response",
		Payload: resp,
	})
}

type ChatInput struct {
	Text string `json:"text"`
}

func (c controller) handleChat(ctx context.Context, conn *websocket.Conn, input ChatInput) error {
	resp, err := c.roomService.SendChat(ctx, &room.SendChatParams{
		Text:     input.Text,
		SenderId: c.getMemberIdFromCtx(ctx),
		RoomId:   c.getRoomIdFromCtx(ctx),
	})
	if err != nil {
		return fmt.Errorf("failed to send chat: %w", err)
	}

	return c.broadcast(ctx, resp.Conns, &Output{
		Type:    "chat",
		Payload: resp.Message,
	})
}

func (c controller) handleAlive(ctx context.Context, conn *websocket.Conn, _ struct{}) error {
	return nil
}
