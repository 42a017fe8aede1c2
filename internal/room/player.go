package room

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotHost       = errors.New("sender is not the host")
	ErrNotController = errors.New("sender is not the controller")
)

// AuthorityPolicy decides who may drive periodic playback updates.
type AuthorityPolicy string

const (
	// any member may drive updates
	PolicyOpen AuthorityPolicy = "open"
	// only the host may drive updates, including play/pause/seek
	PolicyHostOnly AuthorityPolicy = "host-only"
	// the current controller drives updates; anyone may take over once
	// the recorded state is older than the staleness threshold
	PolicyStaleness AuthorityPolicy = "staleness"
)

// PlaybackState is the playback part of a room snapshot.
type PlaybackState struct {
	Media        *Media
	IsPlaying    bool
	Position     float64
	LastUpdate   time.Time
	ControllerId string
}

// SetMedia switches the room to new media. A media change always resets
// playback: never carry a stale position across media.
func (r *Room) SetMedia(media Media, senderId string, now time.Time) (PlaybackState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.authorizeControl(senderId); err != nil {
		return PlaybackState{}, err
	}

	m := media
	r.media = &m
	r.isPlaying = false
	r.position = 0
	r.controllerId = senderId
	r.touch(now)

	r.appendSystem(fmt.Sprintf("%s changed the media to %s", r.displayName(senderId), media.Title), now)

	return r.playbackState(), nil
}

// SetPlayback applies a play or pause at the given position.
func (r *Room) SetPlayback(isPlaying bool, position float64, senderId string, now time.Time) (PlaybackState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.authorizeControl(senderId); err != nil {
		return PlaybackState{}, err
	}

	r.isPlaying = isPlaying
	r.position = clampPosition(position, r.media)
	r.controllerId = senderId
	r.touch(now)

	return r.playbackState(), nil
}

// Seek jumps to a position; isPlaying is only changed when given.
func (r *Room) Seek(position float64, isPlaying *bool, senderId string, now time.Time) (PlaybackState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.authorizeControl(senderId); err != nil {
		return PlaybackState{}, err
	}

	r.position = clampPosition(position, r.media)
	if isPlaying != nil {
		r.isPlaying = *isPlaying
	}
	r.controllerId = senderId
	r.touch(now)

	return r.playbackState(), nil
}

// ApplyPeriodicUpdate records a recurring state report, subject to the
// authority policy. Under the staleness policy a non-controller is only
// accepted once the recorded state has gone stale, which unfreezes a room
// whose controller vanished without a clean leave.
func (r *Room) ApplyPeriodicUpdate(isPlaying bool, position float64, senderId string, now time.Time) (PlaybackState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.memberIndex(senderId) < 0 {
		return PlaybackState{}, ErrNotMember
	}

	switch r.cfg.AuthorityPolicy {
	case PolicyOpen:
	case PolicyHostOnly:
		if senderId != r.hostId {
			return PlaybackState{}, ErrNotHost
		}
	default:
		if senderId != r.controllerId && r.controllerId != "" &&
			now.Sub(r.lastUpdate) <= r.cfg.StalenessThreshold {
			return PlaybackState{}, ErrNotController
		}
	}

	r.isPlaying = isPlaying
	r.position = clampPosition(position, r.media)
	r.controllerId = senderId
	r.touch(now)

	return r.playbackState(), nil
}

// SyncState projects the stored position forward to now. Read-only.
func (r *Room) SyncState(now time.Time) PlaybackState {
	r.mu.Lock()
	defer r.mu.Unlock()

	state := r.playbackState()
	state.Position = EstimatePosition(r.position, r.isPlaying, r.lastUpdate, now, r.media)

	return state
}

// EstimatePosition reconstructs "position at now" from the last recorded
// state: the recorded position plus wall-clock elapsed time while playing,
// clamped to the media bounds.
func EstimatePosition(position float64, isPlaying bool, lastUpdate, now time.Time, media *Media) float64 {
	if isPlaying {
		if elapsed := now.Sub(lastUpdate).Seconds(); elapsed > 0 {
			position += elapsed
		}
	}

	return clampPosition(position, media)
}

func clampPosition(position float64, media *Media) float64 {
	if position < 0 {
		return 0
	}
	if media != nil && media.DurationSeconds > 0 && position > media.DurationSeconds {
		return media.DurationSeconds
	}

	return position
}

// callers must hold r.mu
func (r *Room) authorizeControl(senderId string) error {
	if r.memberIndex(senderId) < 0 {
		return ErrNotMember
	}
	if r.cfg.AuthorityPolicy == PolicyHostOnly && senderId != r.hostId {
		return ErrNotHost
	}

	return nil
}

// callers must hold r.mu; keeps lastUpdate monotone
func (r *Room) touch(now time.Time) {
	if now.After(r.lastUpdate) {
		r.lastUpdate = now
	}
}

// callers must hold r.mu
func (r *Room) playbackState() PlaybackState {
	var media *Media
	if r.media != nil {
		m := *r.media
		media = &m
	}

	return PlaybackState{
		Media:        media,
		IsPlaying:    r.isPlaying,
		Position:     r.position,
		LastUpdate:   r.lastUpdate,
		ControllerId: r.controllerId,
	}
}
