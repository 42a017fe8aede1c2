package room

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satvikdua06/server/internal/repository/connection/inmemory"
	"github.com/satvikdua06/server/internal/room"
)

func newTestService(t *testing.T, membersLimit int) (*service, *clockwork.FakeClock) {
	t.Helper()

	registry := room.NewRegistry(room.Config{})
	connRepo := inmemory.NewRepo()
	clock := clockwork.NewFakeClock()

	svc := NewService(registry, connRepo, &Config{MembersLimit: membersLimit}, slog.Default()).WithClock(clock)

	return svc, clock
}

func join(t *testing.T, svc *service, roomId, displayName string) (JoinRoomResponse, *websocket.Conn) {
	t.Helper()

	conn := &websocket.Conn{}
	resp, err := svc.JoinRoom(context.Background(), &JoinRoomParams{
		RoomId:      roomId,
		DisplayName: displayName,
		Conn:        conn,
	})
	require.NoError(t, err)

	return resp, conn
}

func TestJoinRoom(t *testing.T) {
	svc, _ := newTestService(t, 9)

	resp1, conn1 := join(t, svc, "room-1", "alice")
	assert.Equal(t, "alice", resp1.JoinedMember.DisplayName)
	assert.Equal(t, resp1.JoinedMember.Id, resp1.RoomState.HostId)
	assert.Empty(t, resp1.Conns)
	require.Len(t, resp1.MemberList, 1)

	resp2, _ := join(t, svc, "room-1", "bob")
	// the first joiner stays host
	assert.Equal(t, resp1.JoinedMember.Id, resp2.RoomState.HostId)
	require.Len(t, resp2.MemberList, 2)
	assert.Equal(t, "alice", resp2.MemberList[0].DisplayName)
	assert.Equal(t, "bob", resp2.MemberList[1].DisplayName)
	// fan-out goes to everyone already in the room
	require.Len(t, resp2.Conns, 1)
	assert.Same(t, conn1, resp2.Conns[0])

	// the joiner's snapshot carries the join log entries
	require.NotEmpty(t, resp2.RoomState.RecentMessages)
	assert.Equal(t, "bob joined the room", resp2.RoomState.RecentMessages[len(resp2.RoomState.RecentMessages)-1].Text)
}

func TestJoinRoomBlankDisplayName(t *testing.T) {
	svc, _ := newTestService(t, 9)

	resp, _ := join(t, svc, "room-1", "   ")
	assert.True(t, strings.HasPrefix(resp.JoinedMember.DisplayName, "guest-"))
}

func TestJoinRoomFull(t *testing.T) {
	svc, _ := newTestService(t, 2)

	join(t, svc, "room-1", "alice")
	join(t, svc, "room-1", "bob")

	_, err := svc.JoinRoom(context.Background(), &JoinRoomParams{
		RoomId:      "room-1",
		DisplayName: "carol",
		Conn:        &websocket.Conn{},
	})
	assert.ErrorIs(t, err, ErrRoomFull)
}

func TestJoinRejectedRoomLeavesNoEmptyRoom(t *testing.T) {
	svc, _ := newTestService(t, 2)

	join(t, svc, "room-1", "alice")
	join(t, svc, "room-1", "bob")

	_, err := svc.JoinRoom(context.Background(), &JoinRoomParams{
		RoomId:      "room-2",
		DisplayName: "carol",
		Conn:        &websocket.Conn{},
	})
	require.NoError(t, err)

	stats := svc.Stats(context.Background())
	assert.Equal(t, 2, stats.Rooms)
	assert.Equal(t, 3, stats.Members)
}

func TestDisconnectMemberHostChange(t *testing.T) {
	svc, _ := newTestService(t, 9)

	respAlice, _ := join(t, svc, "room-1", "alice")
	respBob, connBob := join(t, svc, "room-1", "bob")

	resp, err := svc.DisconnectMember(context.Background(), &DisconnectMemberParams{
		MemberId: respAlice.JoinedMember.Id,
		RoomId:   "room-1",
	})
	require.NoError(t, err)

	assert.False(t, resp.IsRoomDeleted)
	assert.True(t, resp.HostChanged)
	assert.Equal(t, respBob.JoinedMember.Id, resp.NewHost.Id)
	require.Len(t, resp.Members, 1)
	require.Len(t, resp.Conns, 1)
	assert.Same(t, connBob, resp.Conns[0])
}

func TestDisconnectLastMemberDeletesRoom(t *testing.T) {
	svc, _ := newTestService(t, 9)

	resp, _ := join(t, svc, "room-1", "alice")

	disconnectResp, err := svc.DisconnectMember(context.Background(), &DisconnectMemberParams{
		MemberId: resp.JoinedMember.Id,
		RoomId:   "room-1",
	})
	require.NoError(t, err)
	assert.True(t, disconnectResp.IsRoomDeleted)

	stats := svc.Stats(context.Background())
	assert.Equal(t, 0, stats.Rooms)
	assert.Equal(t, 0, stats.Members)
}

func TestDisconnectUnknownRoom(t *testing.T) {
	svc, _ := newTestService(t, 9)

	_, err := svc.DisconnectMember(context.Background(), &DisconnectMemberParams{
		MemberId: "ghost",
		RoomId:   "room-1",
	})
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestUpdateMedia(t *testing.T) {
	svc, _ := newTestService(t, 9)

	respAlice, connAlice := join(t, svc, "room-1", "alice")
	_, connBob := join(t, svc, "room-1", "bob")

	resp, err := svc.UpdateMedia(context.Background(), &UpdateMediaParams{
		Kind:            "youtube",
		Title:           "some clip",
		VideoId:         "abc123",
		DurationSeconds: 240,
		SenderId:        respAlice.JoinedMember.Id,
		RoomId:          "room-1",
	})
	require.NoError(t, err)

	assert.Equal(t, "some clip", resp.Media.Title)
	assert.False(t, resp.Player.IsPlaying)
	assert.Zero(t, resp.Player.Position)
	assert.Equal(t, "alice", resp.ChangedBy.DisplayName)
	// media changes reach the sender too
	assert.ElementsMatch(t, []*websocket.Conn{connAlice, connBob}, resp.Conns)
}

func TestUpdateMediaFromNonMemberIsDropped(t *testing.T) {
	svc, _ := newTestService(t, 9)

	join(t, svc, "room-1", "alice")

	// malformed media from a stray sender resolves as protocol misuse,
	// not as a validation reply
	_, err := svc.UpdateMedia(context.Background(), &UpdateMediaParams{
		Kind:     "youtube",
		Title:    "no video id",
		SenderId: "ghost",
		RoomId:   "room-1",
	})
	assert.ErrorIs(t, err, ErrNotMember)
	assert.NotErrorIs(t, err, ErrValidationError)

	_, err = svc.UpdateMedia(context.Background(), &UpdateMediaParams{
		Kind:     "youtube",
		SenderId: "ghost",
		RoomId:   "no-such-room",
	})
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestUpdateMediaInvalid(t *testing.T) {
	svc, _ := newTestService(t, 9)

	resp, _ := join(t, svc, "room-1", "alice")

	_, err := svc.UpdateMedia(context.Background(), &UpdateMediaParams{
		Kind:     "youtube",
		Title:    "no video id",
		SenderId: resp.JoinedMember.Id,
		RoomId:   "room-1",
	})
	assert.ErrorIs(t, err, ErrValidationError)
}

func TestUpdatePlaybackExcludesSender(t *testing.T) {
	svc, _ := newTestService(t, 9)

	respAlice, _ := join(t, svc, "room-1", "alice")
	_, connBob := join(t, svc, "room-1", "bob")

	resp, err := svc.UpdatePlayback(context.Background(), &UpdatePlaybackParams{
		IsPlaying: true,
		Position:  42,
		SenderId:  respAlice.JoinedMember.Id,
		RoomId:    "room-1",
	})
	require.NoError(t, err)

	assert.True(t, resp.Player.IsPlaying)
	assert.Equal(t, 42.0, resp.Player.Position)
	require.Len(t, resp.Conns, 1)
	assert.Same(t, connBob, resp.Conns[0])
}

func TestPeriodicUpdateStaleness(t *testing.T) {
	svc, clock := newTestService(t, 9)

	respAlice, _ := join(t, svc, "room-1", "alice")
	respBob, _ := join(t, svc, "room-1", "bob")

	_, err := svc.PeriodicUpdate(context.Background(), &PeriodicUpdateParams{
		IsPlaying: true,
		Position:  10,
		SenderId:  respAlice.JoinedMember.Id,
		RoomId:    "room-1",
	})
	require.NoError(t, err)

	clock.Advance(5 * time.Second)
	_, err = svc.PeriodicUpdate(context.Background(), &PeriodicUpdateParams{
		IsPlaying: true,
		Position:  15,
		SenderId:  respBob.JoinedMember.Id,
		RoomId:    "room-1",
	})
	assert.ErrorIs(t, err, ErrNotController)

	clock.Advance(6 * time.Second)
	resp, err := svc.PeriodicUpdate(context.Background(), &PeriodicUpdateParams{
		IsPlaying: true,
		Position:  21,
		SenderId:  respBob.JoinedMember.Id,
		RoomId:    "room-1",
	})
	require.NoError(t, err)
	assert.Equal(t, 21.0, resp.Player.Position)
}

func TestSyncRequestProjectsPosition(t *testing.T) {
	svc, clock := newTestService(t, 9)

	resp, _ := join(t, svc, "room-1", "alice")
	memberId := resp.JoinedMember.Id

	_, err := svc.UpdateMedia(context.Background(), &UpdateMediaParams{
		Kind:            "youtube",
		Title:           "clip",
		VideoId:         "abc123",
		DurationSeconds: 300,
		SenderId:        memberId,
		RoomId:          "room-1",
	})
	require.NoError(t, err)

	_, err = svc.UpdatePlayback(context.Background(), &UpdatePlaybackParams{
		IsPlaying: true,
		Position:  30,
		SenderId:  memberId,
		RoomId:    "room-1",
	})
	require.NoError(t, err)

	clock.Advance(5 * time.Second)

	syncResp, err := svc.SyncRequest(context.Background(), &SyncRequestParams{
		SenderId: memberId,
		RoomId:   "room-1",
	})
	require.NoError(t, err)

	assert.InDelta(t, 35.0, syncResp.Position, 0.001)
	assert.True(t, syncResp.IsPlaying)
	assert.Equal(t, memberId, syncResp.ControllerId)
	assert.Equal(t, clock.Now().UnixMilli(), syncResp.ServerTime)
}

func TestSyncRequestNotMember(t *testing.T) {
	svc, _ := newTestService(t, 9)

	join(t, svc, "room-1", "alice")

	_, err := svc.SyncRequest(context.Background(), &SyncRequestParams{
		SenderId: "ghost",
		RoomId:   "room-1",
	})
	assert.ErrorIs(t, err, ErrNotMember)

	_, err = svc.SyncRequest(context.Background(), &SyncRequestParams{
		SenderId: "ghost",
		RoomId:   "no-such-room",
	})
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestSendChat(t *testing.T) {
	svc, _ := newTestService(t, 9)

	respAlice, connAlice := join(t, svc, "room-1", "alice")
	_, connBob := join(t, svc, "room-1", "bob")

	resp, err := svc.SendChat(context.Background(), &SendChatParams{
		Text:     "  hello room  ",
		SenderId: respAlice.JoinedMember.Id,
		RoomId:   "room-1",
	})
	require.NoError(t, err)

	assert.Equal(t, "hello room", resp.Message.Text)
	assert.Equal(t, "alice", resp.Message.DisplayName)
	assert.Equal(t, "user", resp.Message.Kind)
	assert.ElementsMatch(t, []*websocket.Conn{connAlice, connBob}, resp.Conns)
}

func TestSendChatRejectsInvalidText(t *testing.T) {
	svc, _ := newTestService(t, 9)

	resp, _ := join(t, svc, "room-1", "alice")
	senderId := resp.JoinedMember.Id

	_, err := svc.SendChat(context.Background(), &SendChatParams{
		Text:     "   ",
		SenderId: senderId,
		RoomId:   "room-1",
	})
	assert.ErrorIs(t, err, ErrValidationError)

	_, err = svc.SendChat(context.Background(), &SendChatParams{
		Text:     strings.Repeat("a", 501),
		SenderId: senderId,
		RoomId:   "room-1",
	})
	assert.ErrorIs(t, err, ErrValidationError)

	// exactly at the limit passes
	_, err = svc.SendChat(context.Background(), &SendChatParams{
		Text:     strings.Repeat("a", 500),
		SenderId: senderId,
		RoomId:   "room-1",
	})
	assert.NoError(t, err)
}
