// exposes a Store interface that is passed to API calls w/ param requirements
package db

import (
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/tobemax82-stack/DockFm-Retail-sub000/internal/model"
	"github.com/tobemax82-stack/DockFm-Retail-sub000/internal/settings"
)

type Store interface {
	// organization functions
	CreateOrganization(name, plan string) (model.Organization, error)
	GetOrganizationByID(id int) (model.Organization, error)
	UpdateOrganizationSettings(id int, s settings.Settings) error

	// user functions
	CreateUser(organizationID int, email, hashedPassword string, name *string, role string) (int, error)
	GetUserByEmail(email string) (*model.User, error)
	GetUserByID(id int) (*model.User, error)
	UpdateUserProfile(id int, email string, name *string) error

	// store functions
	CreateStore(organizationID int, name string, location *string, timezone string, activationCode string) (model.Store, error)
	GetStoreByID(id int) (model.Store, error)
	GetStoreByActivationCode(code string) (model.Store, error)
	ListStores(organizationID int) ([]model.Store, error)
	UpdateStore(id int, name, location, timezone *string) error
	DeleteStore(id int) error
	ActivateStoreDevice(id int, deviceID, rotatedCode, presentedCode string) error
	RegenerateActivationCode(id int, code string) error
	SetStoreOnline(id int, online bool) error
	UpdateStoreHeartbeat(id int, volume *int, deviceInfo model.JSONMap) error
	SetStoreVolume(id int, volume int) error
	SetStoreActivePlaylist(id int, playlistID *int) error
	UpdateStoreSettings(id int, s settings.Settings) error
	MergeStoreLastState(id int, state model.JSONMap) error
	ListStaleOnlineStores(olderThan time.Time) ([]model.Store, error)

	// playlist functions
	CreatePlaylist(organizationID int, name string, description *string) (model.Playlist, error)
	GetPlaylistByID(organizationID, id int) (model.Playlist, error)
	ListPlaylists(organizationID int) ([]model.Playlist, error)
	UpdatePlaylist(organizationID, id int, name, description *string) error
	DeletePlaylist(organizationID, id int) error
	AddTrack(playlistID int, title string, artist *string, url string, duration *int) (model.Track, error)
	RemoveTrack(playlistID, trackID int) error
	ReorderTracks(playlistID int, trackIDs []int) error

	// announcement functions
	CreateAnnouncement(organizationID int, name string, text *string, audioURL string) (model.Announcement, error)
	GetAnnouncementByID(organizationID, id int) (model.Announcement, error)
	ListAnnouncements(organizationID int) ([]model.Announcement, error)
	UpdateAnnouncement(organizationID, id int, name, text, audioURL *string, isActive *bool) error
	DeleteAnnouncement(organizationID, id int) error
	RecordAnnouncementPlay(id int) error

	// cartwall functions
	GetCartwall(storeID int) ([]model.CartwallItem, error)
	SetCartwallItem(storeID, position, announcementID int) (model.CartwallItem, error)
	RemoveCartwallItem(storeID, position int) error

	// schedule functions
	ListScheduleRules(storeID int) ([]model.ScheduleRule, error)
	CreateScheduleRule(storeID, playlistID int, dayOfWeek, startTime, endTime string, volume *int) (model.ScheduleRule, error)
	UpdateScheduleRule(storeID, ruleID int, playlistID *int, dayOfWeek, startTime, endTime *string, volume *int, isActive *bool) (model.ScheduleRule, error)
	DeleteScheduleRule(storeID, ruleID int) error
	BulkCreateScheduleRules(storeID int, rules []model.ScheduleRule) ([]model.ScheduleRule, error)
	CopySchedule(fromStoreID, toStoreID int) ([]model.ScheduleRule, error)

	// playback log functions
	AppendPlaybackLog(entry model.PlaybackLog) error
	ListPlaybackLogs(storeID, limit int) ([]model.PlaybackLog, error)
}

type pgStore struct {
	db *sqlx.DB
}

// compile-time check that pgStore implements Store
// required so linter doesn't complain
var _ Store = (*pgStore)(nil)

func NewStore(database *sqlx.DB) Store {
	if database == nil {
		database = DB
	}
	return &pgStore{db: database}
}
