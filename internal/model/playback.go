package model

import "time"

// Playback log event types.
const (
	EventTrackPlaying       = "track_playing"
	EventTrackStarted       = "track_started"
	EventTrackEnded         = "track_ended"
	EventAnnouncementPlayed = "announcement_played"
	EventDeviceOnline       = "device_online"
	EventDeviceOffline      = "device_offline"
)

// PlaybackLog is an append-only record of playback and device events.
// Rows are never mutated or deleted.
type PlaybackLog struct {
	ID             int64     `db:"id" json:"id"`
	StoreID        int       `db:"store_id" json:"store_id"`
	TrackID        *int      `db:"track_id" json:"track_id,omitempty"`
	AnnouncementID *int      `db:"announcement_id" json:"announcement_id,omitempty"`
	EventType      string    `db:"event_type" json:"event_type"`
	Metadata       JSONMap   `db:"metadata" json:"metadata"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
