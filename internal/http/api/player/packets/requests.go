package packets

type ActivateRequest struct {
	Code string `json:"code" binding:"required"`
}

type DeviceRequest struct {
	DeviceID string `json:"deviceId" binding:"required"`
}

type TrackEventRequest struct {
	DeviceID string `json:"deviceId" binding:"required"`
	TrackID  int    `json:"trackId" binding:"required"`
}

type AnnouncementEventRequest struct {
	DeviceID       string `json:"deviceId" binding:"required"`
	AnnouncementID int    `json:"announcementId" binding:"required"`
}

type SyncRequest struct {
	DeviceID string         `json:"deviceId" binding:"required"`
	State    map[string]any `json:"state"`
}
