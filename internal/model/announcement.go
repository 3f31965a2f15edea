package model

import "time"

type Announcement struct {
	ID             int        `db:"id" json:"id"`
	OrganizationID int        `db:"organization_id" json:"organization_id"`
	Name           string     `db:"name" json:"name"`
	Text           *string    `db:"text" json:"text,omitempty"`
	AudioURL       string     `db:"audio_url" json:"audio_url"`
	PlayCount      int        `db:"play_count" json:"play_count"`
	LastPlayedAt   *time.Time `db:"last_played_at" json:"last_played_at,omitempty"`
	IsActive       bool       `db:"is_active" json:"is_active"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// CartwallItem pins an announcement to one of a store's on-demand trigger
// slots. At most one item may occupy a (store, position) pair.
type CartwallItem struct {
	ID             int           `db:"id" json:"id"`
	StoreID        int           `db:"store_id" json:"store_id"`
	AnnouncementID int           `db:"announcement_id" json:"announcement_id"`
	Position       int           `db:"position" json:"position"`
	IsActive       bool          `db:"is_active" json:"is_active"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`
	Announcement   *Announcement `db:"-" json:"announcement,omitempty"`
}
