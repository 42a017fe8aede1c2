package room

import (
	"errors"
	"fmt"
)

var ErrInvalidMedia = errors.New("invalid media")

type MediaKind string

const (
	MediaKindYouTube    MediaKind = "youtube"
	MediaKindAudioTrack MediaKind = "audio_track"
)

// Media is the tagged variant a room plays. Kind decides which of the
// optional fields are meaningful.
type Media struct {
	Kind  MediaKind `json:"kind"`
	Title string    `json:"title"`
	// youtube
	VideoId string `json:"video_id,omitempty"`
	// audio_track
	TrackId    string `json:"id,omitempty"`
	Artist     string `json:"artist,omitempty"`
	PreviewUrl string `json:"preview_url,omitempty"`
	// 0 means unknown
	DurationSeconds float64 `json:"duration_seconds,omitempty"`
}

func (m *Media) Validate() error {
	switch m.Kind {
	case MediaKindYouTube:
		if m.VideoId == "" {
			return fmt.Errorf("%w: video_id is required", ErrInvalidMedia)
		}
	case MediaKindAudioTrack:
		if m.TrackId == "" {
			return fmt.Errorf("%w: id is required", ErrInvalidMedia)
		}
		if m.PreviewUrl == "" {
			return fmt.Errorf("%w: preview_url is required", ErrInvalidMedia)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidMedia, m.Kind)
	}

	if m.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidMedia)
	}
	if m.DurationSeconds < 0 {
		return fmt.Errorf("%w: duration_seconds must not be negative", ErrInvalidMedia)
	}

	return nil
}
