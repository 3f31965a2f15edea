package model

import (
	"time"

	"github.com/tobemax82-stack/DockFm-Retail-sub000/internal/settings"
)

// Store is one physical retail location running an unattended player.
// DeviceID is set if and only if the store has completed activation;
// ActivationCode is rotated on every successful activation and on manual
// regeneration, so a code can never activate two devices.
type Store struct {
	ID               int               `db:"id" json:"id"`
	OrganizationID   int               `db:"organization_id" json:"organization_id"`
	Name             string            `db:"name" json:"name"`
	Location         *string           `db:"location" json:"location,omitempty"`
	Timezone         string            `db:"timezone" json:"timezone"`
	IsActive         bool              `db:"is_active" json:"is_active"`
	IsOnline         bool              `db:"is_online" json:"is_online"`
	LastSeen         *time.Time        `db:"last_seen" json:"last_seen,omitempty"`
	CurrentVolume    int               `db:"current_volume" json:"current_volume"`
	DeviceID         *string           `db:"device_id" json:"device_id,omitempty"`
	ActivationCode   string            `db:"activation_code" json:"-"`
	ActivePlaylistID *int              `db:"active_playlist_id" json:"active_playlist_id,omitempty"`
	Settings         settings.Settings `db:"settings" json:"settings"`
	DeviceInfo       JSONMap           `db:"device_info" json:"device_info"`
	CreatedAt        time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time         `db:"updated_at" json:"updated_at"`
}
