package room

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

var ErrNotMember = errors.New("not a member of the room")

type Member struct {
	Id          string
	DisplayName string
	JoinedAt    time.Time
}

// Room holds the authoritative playback state and membership of one
// synchronization domain. Every mutating method takes the room lock for
// the whole transition, so handler turns on the same room never
// interleave; unrelated rooms are independent.
type Room struct {
	mu  sync.Mutex
	id  string
	cfg Config

	media        *Media
	isPlaying    bool
	position     float64
	lastUpdate   time.Time
	controllerId string

	hostId string
	// join order; the head is the host successor
	members []Member
	log     *activityLog
}

func newRoom(id string, cfg Config) *Room {
	return &Room{
		id:  id,
		cfg: cfg,
		log: newActivityLog(cfg.LogCapacity),
	}
}

func (r *Room) Id() string {
	return r.id
}

type JoinResult struct {
	Member     Member
	BecameHost bool
}

// Join adds the member, or overwrites the entry in place on a re-join for
// the same member id. The first member of an empty room becomes host.
func (r *Room) Join(memberId, displayName string, now time.Time) JoinResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	member := Member{
		Id:          memberId,
		DisplayName: displayName,
		JoinedAt:    now,
	}

	if i := r.memberIndex(memberId); i >= 0 {
		// keep the original slot so host succession order is stable
		member.JoinedAt = r.members[i].JoinedAt
		r.members[i] = member
	} else {
		r.members = append(r.members, member)
	}

	result := JoinResult{Member: member}
	if r.hostId == "" {
		r.hostId = memberId
		result.BecameHost = true
	}

	r.appendSystem(fmt.Sprintf("%s joined the room", displayName), now)

	return result
}

type LeaveResult struct {
	Member      Member
	HostChanged bool
	NewHost     Member
	Empty       bool
}

// Leave removes the member and, when the host leaves, promotes the
// earliest-joined remaining member. Returns false for non-members.
func (r *Room) Leave(memberId string, now time.Time) (LeaveResult, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.memberIndex(memberId)
	if i < 0 {
		return LeaveResult{}, false
	}

	result := LeaveResult{Member: r.members[i]}
	r.members = append(r.members[:i], r.members[i+1:]...)

	if r.hostId == memberId {
		if len(r.members) > 0 {
			result.HostChanged = true
			result.NewHost = r.members[0]
			r.hostId = result.NewHost.Id
		} else {
			r.hostId = ""
		}
	}
	result.Empty = len(r.members) == 0

	r.appendSystem(fmt.Sprintf("%s left the room", result.Member.DisplayName), now)

	return result, true
}

func (r *Room) IsMember(memberId string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.memberIndex(memberId) >= 0
}

func (r *Room) MemberCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.members)
}

func (r *Room) Members() []Member {
	r.mu.Lock()
	defer r.mu.Unlock()

	members := make([]Member, len(r.members))
	copy(members, r.members)

	return members
}

func (r *Room) HostId() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.hostId
}

// Snapshot is a self-contained copy of the room's externally relevant
// fields, safe to hand to the transport layer.
type Snapshot struct {
	RoomId       string
	Media        *Media
	IsPlaying    bool
	Position     float64
	LastUpdate   time.Time
	ControllerId string
	HostId       string
	Members      []Member
	RecentLog    []LogEntry
}

func (r *Room) Snapshot(recentLog int) Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	members := make([]Member, len(r.members))
	copy(members, r.members)

	var media *Media
	if r.media != nil {
		m := *r.media
		media = &m
	}

	return Snapshot{
		RoomId:       r.id,
		Media:        media,
		IsPlaying:    r.isPlaying,
		Position:     r.position,
		LastUpdate:   r.lastUpdate,
		ControllerId: r.controllerId,
		HostId:       r.hostId,
		Members:      members,
		RecentLog:    r.log.tail(recentLog),
	}
}

// AppendChat records a user chat entry. Text validation happens upstream.
func (r *Room) AppendChat(senderId, text string, now time.Time) (LogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.memberIndex(senderId)
	if i < 0 {
		return LogEntry{}, ErrNotMember
	}

	entry := LogEntry{
		Kind:        EntryKindUser,
		MemberId:    senderId,
		DisplayName: r.members[i].DisplayName,
		Text:        text,
		Timestamp:   now,
	}
	r.log.append(entry)

	return entry, nil
}

func (r *Room) LogLen() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.log.len()
}

func (r *Room) RecentLog(n int) []LogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.log.tail(n)
}

// callers must hold r.mu
func (r *Room) memberIndex(memberId string) int {
	for i, m := range r.members {
		if m.Id == memberId {
			return i
		}
	}

	return -1
}

// callers must hold r.mu
func (r *Room) appendSystem(text string, now time.Time) {
	r.log.append(LogEntry{
		Kind:      EntryKindSystem,
		Text:      text,
		Timestamp: now,
	})
}

// callers must hold r.mu
func (r *Room) displayName(memberId string) string {
	if i := r.memberIndex(memberId); i >= 0 {
		return r.members[i].DisplayName
	}

	return ""
}
