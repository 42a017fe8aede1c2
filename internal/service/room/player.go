package room

import (
	"context"
	"fmt"

	"github.com/gorilla/websocket"

	"github.com/satvikdua06/server/internal/room"
)

type UpdateMediaParams struct {
	Kind            string
	Title           string
	VideoId         string
	TrackId         string
	Artist          string
	PreviewUrl      string
	DurationSeconds float64
	SenderId        string
	RoomId          string
}

type UpdateMediaResponse struct {
	Media     *Media
	Player    PlayerState
	ChangedBy Member
	// every member including the sender: a media change must converge
	// identically for everyone
	Conns []*websocket.Conn
}

func (s service) UpdateMedia(ctx context.Context, params *UpdateMediaParams) (UpdateMediaResponse, error) {
	// membership first: a stray event from a torn-down session is dropped
	// silently, never answered with a validation reply
	rm, err := s.memberRoom(params.RoomId, params.SenderId)
	if err != nil {
		return UpdateMediaResponse{}, err
	}

	media := room.Media{
		Kind:            room.MediaKind(params.Kind),
		Title:           params.Title,
		VideoId:         params.VideoId,
		TrackId:         params.TrackId,
		Artist:          params.Artist,
		PreviewUrl:      params.PreviewUrl,
		DurationSeconds: params.DurationSeconds,
	}
	if err := media.Validate(); err != nil {
		return UpdateMediaResponse{}, mapRoomErr(err)
	}

	state, err := rm.SetMedia(media, params.SenderId, s.clock.Now())
	if err != nil {
		return UpdateMediaResponse{}, fmt.Errorf("failed to set media: %w", mapRoomErr(err))
	}

	return UpdateMediaResponse{
		Media:     state.Media,
		Player:    playerStateFromDomain(state),
		ChangedBy: s.senderMember(rm, params.SenderId),
		Conns:     s.getConnsByRoomId(ctx, rm),
	}, nil
}

type UpdatePlaybackParams struct {
	IsPlaying bool
	Position  float64
	SenderId  string
	RoomId    string
}

type UpdatePlaybackResponse struct {
	Player     PlayerState
	Controller Member
	// everyone except the sender, who already has authoritative local state
	Conns []*websocket.Conn
}

func (s service) UpdatePlayback(ctx context.Context, params *UpdatePlaybackParams) (UpdatePlaybackResponse, error) {
	rm, err := s.memberRoom(params.RoomId, params.SenderId)
	if err != nil {
		return UpdatePlaybackResponse{}, err
	}

	state, err := rm.SetPlayback(params.IsPlaying, params.Position, params.SenderId, s.clock.Now())
	if err != nil {
		return UpdatePlaybackResponse{}, fmt.Errorf("failed to update playback: %w", mapRoomErr(err))
	}

	return UpdatePlaybackResponse{
		Player:     playerStateFromDomain(state),
		Controller: s.senderMember(rm, params.SenderId),
		Conns:      s.getConnsExcept(ctx, rm, params.SenderId),
	}, nil
}

type SeekParams struct {
	Position  float64
	IsPlaying *bool
	SenderId  string
	RoomId    string
}

type SeekResponse struct {
	Player     PlayerState
	Controller Member
	Conns      []*websocket.Conn
}

func (s service) Seek(ctx context.Context, params *SeekParams) (SeekResponse, error) {
	rm, err := s.memberRoom(params.RoomId, params.SenderId)
	if err != nil {
		return SeekResponse{}, err
	}

	state, err := rm.Seek(params.Position, params.IsPlaying, params.SenderId, s.clock.Now())
	if err != nil {
		return SeekResponse{}, fmt.Errorf("failed to seek: %w", mapRoomErr(err))
	}

	return SeekResponse{
		Player:     playerStateFromDomain(state),
		Controller: s.senderMember(rm, params.SenderId),
		Conns:      s.getConnsExcept(ctx, rm, params.SenderId),
	}, nil
}

type PeriodicUpdateParams struct {
	IsPlaying bool
	Position  float64
	SenderId  string
	RoomId    string
}

type PeriodicUpdateResponse struct {
	Player PlayerState
	From   Member
	Conns  []*websocket.Conn
}

func (s service) PeriodicUpdate(ctx context.Context, params *PeriodicUpdateParams) (PeriodicUpdateResponse, error) {
	rm, err := s.memberRoom(params.RoomId, params.SenderId)
	if err != nil {
		return PeriodicUpdateResponse{}, err
	}

	state, err := rm.ApplyPeriodicUpdate(params.IsPlaying, params.Position, params.SenderId, s.clock.Now())
	if err != nil {
		return PeriodicUpdateResponse{}, mapRoomErr(err)
	}

	return PeriodicUpdateResponse{
		Player: playerStateFromDomain(state),
		From:   s.senderMember(rm, params.SenderId),
		Conns:  s.getConnsExcept(ctx, rm, params.SenderId),
	}, nil
}

type SyncRequestParams struct {
	SenderId string
	RoomId   string
}

type SyncRequestResponse struct {
	Position     float64 `json:"position"`
	IsPlaying    bool    `json:"is_playing"`
	Media        *Media  `json:"media"`
	ControllerId string  `json:"controller_id,omitempty"`
	ServerTime   int64   `json:"server_time"`
}

// SyncRequest answers only the requester with the projected position and
// the server clock, so the client can track its own drift afterwards.
func (s service) SyncRequest(ctx context.Context, params *SyncRequestParams) (SyncRequestResponse, error) {
	rm, err := s.memberRoom(params.RoomId, params.SenderId)
	if err != nil {
		return SyncRequestResponse{}, err
	}

	now := s.clock.Now()
	state := rm.SyncState(now)

	return SyncRequestResponse{
		Position:     state.Position,
		IsPlaying:    state.IsPlaying,
		Media:        state.Media,
		ControllerId: state.ControllerId,
		ServerTime:   now.UnixMilli(),
	}, nil
}

func (s service) senderMember(rm *room.Room, senderId string) Member {
	for _, m := range rm.Members() {
		if m.Id == senderId {
			return memberFromDomain(m)
		}
	}

	return Member{Id: senderId}
}
