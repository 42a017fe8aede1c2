package room

import (
	"github.com/satvikdua06/server/internal/room"
)

// Media is re-exported so transport code never touches internal room state.
type Media = room.Media

type Member struct {
	Id          string `json:"member_id"`
	DisplayName string `json:"display_name"`
	JoinedAt    int64  `json:"joined_at"`
}

type PlayerState struct {
	IsPlaying bool    `json:"is_playing"`
	Position  float64 `json:"position"`
	UpdatedAt int64   `json:"updated_at"`
}

type ChatMessage struct {
	Kind        string `json:"kind"`
	MemberId    string `json:"member_id,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	Text        string `json:"text"`
	Timestamp   int64  `json:"timestamp"`
}

type RoomState struct {
	RoomId         string        `json:"room_id"`
	Media          *Media        `json:"media"`
	IsPlaying      bool          `json:"is_playing"`
	Position       float64       `json:"position"`
	LastUpdate     int64         `json:"last_update"`
	ControllerId   string        `json:"controller_id,omitempty"`
	HostId         string        `json:"host_id,omitempty"`
	Members        []Member      `json:"members"`
	RecentMessages []ChatMessage `json:"recent_messages"`
}

func memberFromDomain(m room.Member) Member {
	return Member{
		Id:          m.Id,
		DisplayName: m.DisplayName,
		JoinedAt:    m.JoinedAt.UnixMilli(),
	}
}

func membersFromDomain(members []room.Member) []Member {
	out := make([]Member, 0, len(members))
	for _, m := range members {
		out = append(out, memberFromDomain(m))
	}

	return out
}

func playerStateFromDomain(state room.PlaybackState) PlayerState {
	return PlayerState{
		IsPlaying: state.IsPlaying,
		Position:  state.Position,
		UpdatedAt: state.LastUpdate.UnixMilli(),
	}
}

func chatMessageFromDomain(e room.LogEntry) ChatMessage {
	return ChatMessage{
		Kind:        string(e.Kind),
		MemberId:    e.MemberId,
		DisplayName: e.DisplayName,
		Text:        e.Text,
		Timestamp:   e.Timestamp.UnixMilli(),
	}
}

func roomStateFromSnapshot(snapshot room.Snapshot) RoomState {
	messages := make([]ChatMessage, 0, len(snapshot.RecentLog))
	for _, e := range snapshot.RecentLog {
		messages = append(messages, chatMessageFromDomain(e))
	}

	var lastUpdate int64
	if !snapshot.LastUpdate.IsZero() {
		lastUpdate = snapshot.LastUpdate.UnixMilli()
	}

	return RoomState{
		RoomId:         snapshot.RoomId,
		Media:          snapshot.Media,
		IsPlaying:      snapshot.IsPlaying,
		Position:       snapshot.Position,
		LastUpdate:     lastUpdate,
		ControllerId:   snapshot.ControllerId,
		HostId:         snapshot.HostId,
		Members:        membersFromDomain(snapshot.Members),
		RecentMessages: messages,
	}
}
