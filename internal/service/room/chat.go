package room

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gorilla/websocket"
)

const maxChatLength = 500

type SendChatParams struct {
	Text     string
	SenderId string
	RoomId   string
}

type SendChatResponse struct {
	Message ChatMessage
	// everyone including the sender, so the room log converges
	Conns []*websocket.Conn
}

func (s service) SendChat(ctx context.Context, params *SendChatParams) (SendChatResponse, error) {
	text := strings.TrimSpace(params.Text)
	if text == "" {
		return SendChatResponse{}, fmt.Errorf("%w: chat text is empty", ErrValidationError)
	}
	// over-long messages are rejected, not truncated
	if utf8.RuneCountInString(text) > maxChatLength {
		return SendChatResponse{}, fmt.Errorf("%w: chat text exceeds %d characters", ErrValidationError, maxChatLength)
	}

	rm, err := s.memberRoom(params.RoomId, params.SenderId)
	if err != nil {
		return SendChatResponse{}, err
	}

	entry, err := rm.AppendChat(params.SenderId, text, s.clock.Now())
	if err != nil {
		return SendChatResponse{}, mapRoomErr(err)
	}

	return SendChatResponse{
		Message: chatMessageFromDomain(entry),
		Conns:   s.getConnsByRoomId(ctx, rm),
	}, nil
}
