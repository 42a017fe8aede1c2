package room

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/satvikdua06/server/internal/room"
)

type JoinRoomParams struct {
	RoomId      string
	DisplayName string
	Conn        *websocket.Conn
}

type JoinRoomResponse struct {
	JoinedMember Member
	MemberList   []Member
	RoomState    RoomState
	Conns        []*websocket.Conn
}

// JoinRoom creates the room on demand, adds the member and registers the
// connection. The returned Conns are the other members, for the
// member-joined fan-out; the joiner itself gets RoomState.
func (s service) JoinRoom(ctx context.Context, params *JoinRoomParams) (JoinRoomResponse, error) {
	memberId := uuid.NewString()

	displayName := strings.TrimSpace(params.DisplayName)
	if displayName == "" {
		displayName = "guest-" + memberId[:4]
	}

	rm, joinResult, err := s.registry.Join(params.RoomId, memberId, displayName, s.membersLimit, s.clock.Now())
	if err != nil {
		if errors.Is(err, room.ErrRoomFull) {
			return JoinRoomResponse{}, ErrRoomFull
		}

		return JoinRoomResponse{}, fmt.Errorf("failed to join room: %w", err)
	}

	if err := s.connRepo.Add(params.Conn, memberId, params.RoomId); err != nil {
		s.registry.Leave(params.RoomId, memberId, s.clock.Now())
		return JoinRoomResponse{}, fmt.Errorf("failed to register connection: %w", err)
	}

	snapshot := rm.Snapshot(s.recentLogSize)

	return JoinRoomResponse{
		JoinedMember: memberFromDomain(joinResult.Member),
		MemberList:   membersFromDomain(snapshot.Members),
		RoomState:    roomStateFromSnapshot(snapshot),
		Conns:        s.getConnsExcept(ctx, rm, memberId),
	}, nil
}

type DisconnectMemberParams struct {
	MemberId string
	RoomId   string
}

type DisconnectMemberResponse struct {
	LeftMember    Member
	Members       []Member
	HostChanged   bool
	NewHost       Member
	IsRoomDeleted bool
	Conns         []*websocket.Conn
}

// DisconnectMember runs the leave transition as part of connection
// teardown: membership removal, host succession, empty-room cleanup.
func (s service) DisconnectMember(ctx context.Context, params *DisconnectMemberParams) (DisconnectMemberResponse, error) {
	if _, err := s.connRepo.RemoveByMemberId(params.MemberId); err != nil {
		s.logger.DebugContext(ctx, "failed to remove conn", "error", err)
	}

	rm, leaveResult, err := s.registry.Leave(params.RoomId, params.MemberId, s.clock.Now())
	if err != nil {
		switch {
		case errors.Is(err, room.ErrRoomNotFound):
			return DisconnectMemberResponse{}, ErrRoomNotFound
		case errors.Is(err, room.ErrNotMember):
			// already gone, e.g. a kicked member's own teardown
			return DisconnectMemberResponse{}, ErrMemberNotFound
		}

		return DisconnectMemberResponse{}, fmt.Errorf("failed to leave room: %w", err)
	}

	if leaveResult.Empty {
		return DisconnectMemberResponse{
			LeftMember:    memberFromDomain(leaveResult.Member),
			IsRoomDeleted: true,
		}, nil
	}

	resp := DisconnectMemberResponse{
		LeftMember:  memberFromDomain(leaveResult.Member),
		Members:     membersFromDomain(rm.Members()),
		HostChanged: leaveResult.HostChanged,
		Conns:       s.getConnsByRoomId(ctx, rm),
	}
	if leaveResult.HostChanged {
		resp.NewHost = memberFromDomain(leaveResult.NewHost)
	}

	return resp, nil
}
