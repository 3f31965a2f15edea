package model

import "time"

// ScheduleRule binds a playlist to a weekly time window of one store.
// StartTime and EndTime are zero-padded "HH:MM" minute-of-day strings with
// half-open [start,end) semantics. Active rules of the same (store, day)
// never overlap; the db layer rejects writes that would violate that.
type ScheduleRule struct {
	ID         int       `db:"id" json:"id"`
	StoreID    int       `db:"store_id" json:"store_id"`
	PlaylistID int       `db:"playlist_id" json:"playlist_id"`
	DayOfWeek  string    `db:"day_of_week" json:"day_of_week"`
	StartTime  string    `db:"start_time" json:"start_time"`
	EndTime    string    `db:"end_time" json:"end_time"`
	Volume     *int      `db:"volume" json:"volume,omitempty"`
	IsActive   bool      `db:"is_active" json:"is_active"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}
