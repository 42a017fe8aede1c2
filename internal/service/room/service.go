package room

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/satvikdua06/server/internal/room"
)

var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrMemberNotFound   = errors.New("member not found")
	ErrNotMember        = errors.New("not a member of the room")
	ErrRoomFull         = errors.New("room is full")
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotController    = errors.New("sender is not the controller")
	ErrValidationError  = errors.New("validation error")
)

type iRegistry interface {
	Join(roomId, memberId, displayName string, limit int, now time.Time) (*room.Room, room.JoinResult, error)
	Leave(roomId, memberId string, now time.Time) (*room.Room, room.LeaveResult, error)
	Get(roomId string) (*room.Room, bool)
	RoomCount() int
	MemberCount() int
}

type iConnRepo interface {
	Add(conn *websocket.Conn, memberId, roomId string) error
	RemoveByMemberId(memberId string) (*websocket.Conn, error)
	GetConn(memberId string) (*websocket.Conn, error)
	GetMemberId(conn *websocket.Conn) (string, error)
	GetRoomId(memberId string) (string, error)
}

type Config struct {
	MembersLimit  int
	RecentLogSize int
}

type service struct {
	registry      iRegistry
	connRepo      iConnRepo
	membersLimit  int
	recentLogSize int
	clock         clockwork.Clock
	logger        *slog.Logger
}

func NewService(registry iRegistry, connRepo iConnRepo, cfg *Config, logger *slog.Logger) *service {
	recentLogSize := cfg.RecentLogSize
	if recentLogSize <= 0 {
		recentLogSize = 10
	}

	return &service{
		registry:      registry,
		connRepo:      connRepo,
		membersLimit:  cfg.MembersLimit,
		recentLogSize: recentLogSize,
		clock:         clockwork.NewRealClock(),
		logger:        logger,
	}
}

// WithClock replaces the wall clock. Test hook.
func (s *service) WithClock(clock clockwork.Clock) *service {
	s.clock = clock

	return s
}

// memberRoom resolves an inbound event to its room and checks the sender
// is still a member. Late events from a torn-down session resolve to
// ErrRoomNotFound/ErrNotMember and are dropped upstream.
func (s service) memberRoom(roomId, senderId string) (*room.Room, error) {
	rm, ok := s.registry.Get(roomId)
	if !ok {
		return nil, ErrRoomNotFound
	}
	if !rm.IsMember(senderId) {
		return nil, ErrNotMember
	}

	return rm, nil
}

func (s service) getConnsByRoomId(ctx context.Context, rm *room.Room) []*websocket.Conn {
	return s.getConnsExcept(ctx, rm, "")
}

func (s service) getConnsExcept(ctx context.Context, rm *room.Room, exceptId string) []*websocket.Conn {
	members := rm.Members()
	conns := make([]*websocket.Conn, 0, len(members))
	for _, m := range members {
		if m.Id == exceptId {
			continue
		}

		conn, err := s.connRepo.GetConn(m.Id)
		if err != nil {
			s.logger.DebugContext(ctx, "no conn for member", "member_id", m.Id, "error", err)
			continue
		}
		conns = append(conns, conn)
	}

	return conns
}

// mapRoomErr translates core sentinels into service-level ones.
func mapRoomErr(err error) error {
	switch {
	case errors.Is(err, room.ErrNotMember):
		return ErrNotMember
	case errors.Is(err, room.ErrNotHost):
		return ErrPermissionDenied
	case errors.Is(err, room.ErrNotController):
		return ErrNotController
	case errors.Is(err, room.ErrInvalidMedia):
		return errors.Join(ErrValidationError, err)
	default:
		return err
	}
}

type StatsResponse struct {
	Rooms   int `json:"rooms"`
	Members int `json:"members"`
}

func (s service) Stats(ctx context.Context) StatsResponse {
	return StatsResponse{
		Rooms:   s.registry.RoomCount(),
		Members: s.registry.MemberCount(),
	}
}
