package packets

type CreateStoreRequest struct {
	Name     string  `json:"name" binding:"required"`
	Location *string `json:"location"`
	Timezone *string `json:"timezone"`
}

type UpdateStoreRequest struct {
	Name     *string `json:"name"`
	Location *string `json:"location"`
	Timezone *string `json:"timezone"`
}

type SetActivePlaylistRequest struct {
	PlaylistID *int `json:"playlist_id"`
}

type SetVolumeRequest struct {
	Volume *int `json:"volume" binding:"required"`
}

type CreatePlaylistRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
}

type UpdatePlaylistRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type AddTrackRequest struct {
	Title    string  `json:"title" binding:"required"`
	Artist   *string `json:"artist"`
	URL      string  `json:"url"`
	Duration *int    `json:"duration"`
}

type ReorderTracksRequest struct {
	TrackIDs []int `json:"track_ids" binding:"required"`
}

type CreateAnnouncementRequest struct {
	Name     string  `json:"name" binding:"required"`
	Text     *string `json:"text"`
	AudioURL string  `json:"audio_url"`
}

type UpdateAnnouncementRequest struct {
	Name     *string `json:"name"`
	Text     *string `json:"text"`
	AudioURL *string `json:"audio_url"`
	IsActive *bool   `json:"is_active"`
}

type CreateScheduleRuleRequest struct {
	PlaylistID int    `json:"playlist_id" binding:"required"`
	DayOfWeek  string `json:"day_of_week" binding:"required"`
	StartTime  string `json:"start_time" binding:"required"`
	EndTime    string `json:"end_time" binding:"required"`
	Volume     *int   `json:"volume"`
}

type UpdateScheduleRuleRequest struct {
	PlaylistID *int    `json:"playlist_id"`
	DayOfWeek  *string `json:"day_of_week"`
	StartTime  *string `json:"start_time"`
	EndTime    *string `json:"end_time"`
	Volume     *int    `json:"volume"`
	IsActive   *bool   `json:"is_active"`
}

type BulkScheduleRequest struct {
	Rules []CreateScheduleRuleRequest `json:"rules" binding:"required"`
}

type CopyScheduleRequest struct {
	FromStoreID int `json:"from_store_id" binding:"required"`
}

type SetCartwallItemRequest struct {
	AnnouncementID int `json:"announcement_id" binding:"required"`
}
