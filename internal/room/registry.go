package room

import (
	"errors"
	"sync"
	"time"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomFull     = errors.New("room is full")
)

const (
	DefaultLogCapacity        = 50
	DefaultStalenessThreshold = 10 * time.Second
)

type Config struct {
	LogCapacity        int
	AuthorityPolicy    AuthorityPolicy
	StalenessThreshold time.Duration
}

func (cfg Config) withDefaults() Config {
	if cfg.LogCapacity <= 0 {
		cfg.LogCapacity = DefaultLogCapacity
	}
	if cfg.AuthorityPolicy == "" {
		cfg.AuthorityPolicy = PolicyStaleness
	}
	if cfg.StalenessThreshold <= 0 {
		cfg.StalenessThreshold = DefaultStalenessThreshold
	}

	return cfg
}

// Registry owns the room table. Rooms are created lazily on first join
// and removed synchronously when their last member leaves. Membership
// transitions run under the registry lock, so room existence and member
// count can never disagree: a joiner is never placed in a room a
// concurrent leave has just evicted.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room
	cfg   Config
}

func NewRegistry(cfg Config) *Registry {
	return &Registry{
		rooms: make(map[string]*Room),
		cfg:   cfg.withDefaults(),
	}
}

// Join resolves or creates the room and adds the member as one critical
// section. A positive limit caps the member count; re-joins of a current
// member always pass the limit.
func (g *Registry) Join(roomId, memberId, displayName string, limit int, now time.Time) (*Room, JoinResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	r, ok := g.rooms[roomId]
	if !ok {
		r = newRoom(roomId, g.cfg)
		g.rooms[roomId] = r
	}

	if limit > 0 && !r.IsMember(memberId) && r.MemberCount() >= limit {
		return nil, JoinResult{}, ErrRoomFull
	}

	return r, r.Join(memberId, displayName, now), nil
}

// Leave removes the member and, when that empties the room, deletes the
// registry entry in the same critical section.
func (g *Registry) Leave(roomId, memberId string, now time.Time) (*Room, LeaveResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	r, ok := g.rooms[roomId]
	if !ok {
		return nil, LeaveResult{}, ErrRoomNotFound
	}

	result, ok := r.Leave(memberId, now)
	if !ok {
		return nil, LeaveResult{}, ErrNotMember
	}

	if result.Empty {
		delete(g.rooms, roomId)
	}

	return r, result, nil
}

func (g *Registry) Get(roomId string) (*Room, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	r, ok := g.rooms[roomId]

	return r, ok
}

func (g *Registry) RoomCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return len(g.rooms)
}

func (g *Registry) MemberCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	total := 0
	for _, r := range g.rooms {
		total += r.MemberCount()
	}

	return total
}
