package packets

import "github.com/tobemax82-stack/DockFm-Retail-sub000/internal/player"

// ActivateResponse pairs the freshly minted device id with the first full
// state snapshot, so a player is usable right after activation.
type ActivateResponse struct {
	DeviceID string       `json:"deviceId"`
	State    player.State `json:"state"`
}
