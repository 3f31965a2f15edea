package model

import "time"

type Playlist struct {
	ID             int       `db:"id" json:"id"`
	OrganizationID int       `db:"organization_id" json:"organization_id"`
	Name           string    `db:"name" json:"name"`
	Description    *string   `db:"description" json:"description,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
	Tracks         []Track   `db:"-" json:"tracks,omitempty"`
}

type Track struct {
	ID         int       `db:"id" json:"id"`
	PlaylistID int       `db:"playlist_id" json:"playlist_id"`
	Title      string    `db:"title" json:"title"`
	Artist     *string   `db:"artist" json:"artist,omitempty"`
	URL        string    `db:"url" json:"url"`
	Duration   *int      `db:"duration" json:"duration,omitempty"`
	Position   int       `db:"position" json:"position"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
