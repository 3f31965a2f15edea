package packets

import "github.com/tobemax82-stack/DockFm-Retail-sub000/internal/settings"

// StoreResponse mirrors model.Store for dashboards, with the activation code
// exposed; the model hides it from player-facing payloads.
type StoreResponse struct {
	ID               int               `json:"id"`
	Name             string            `json:"name"`
	Location         *string           `json:"location,omitempty"`
	Timezone         string            `json:"timezone"`
	IsActive         bool              `json:"is_active"`
	IsOnline         bool              `json:"is_online"`
	LastSeen         *string           `json:"last_seen,omitempty"`
	CurrentVolume    int               `json:"current_volume"`
	Paired           bool              `json:"paired"`
	ActivationCode   string            `json:"activation_code"`
	ActivePlaylistID *int              `json:"active_playlist_id,omitempty"`
	Settings         settings.Settings `json:"settings"`
	CreatedAt        string            `json:"created_at"`
	UpdatedAt        string            `json:"updated_at"`
}

type ActivationCodeResponse struct {
	ActivationCode string `json:"activation_code"`
}

type UploadResponse struct {
	URL string `json:"url"`
}
