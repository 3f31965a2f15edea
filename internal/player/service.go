// Package player is the façade a physical in-store device talks to: what it
// should be rendering right now, activation, heartbeats and playback events.
package player

import (
	"context"
	"database/sql"
	"errors"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/tobemax82-stack/DockFm-Retail-sub000/internal/db"
	"github.com/tobemax82-stack/DockFm-Retail-sub000/internal/model"
	"github.com/tobemax82-stack/DockFm-Retail-sub000/internal/redis"
	"github.com/tobemax82-stack/DockFm-Retail-sub000/internal/schedule"
	"github.com/tobemax82-stack/DockFm-Retail-sub000/internal/settings"
)

var (
	// ErrUnauthorized means the (storeID, deviceID) pair does not resolve to
	// a paired store. Knowledge of the pair is the player's credential.
	ErrUnauthorized = errors.New("unknown store/device pairing")

	// ErrNotFound means no active store carries the presented activation code.
	ErrNotFound = errors.New("no store matches activation code")
)

// Playlist sources reported in the composed state.
const (
	SourceSchedule = "schedule"
	SourceManual   = "manual"
	SourceNone     = "none"
)

// Presence mirrors durable offline transitions onto live dashboards. The
// realtime relay implements it.
type Presence interface {
	StoreConnected(storeID int) bool
	NotifyStoreOffline(storeID, orgID int)
}

type Service struct {
	store    db.Store
	presence Presence
	now      func() time.Time
}

func NewService(store db.Store) *Service {
	return &Service{store: store, now: time.Now}
}

// SetPresence wires the relay in after both sides exist; a nil presence only
// skips the dashboard broadcast.
func (s *Service) SetPresence(p Presence) {
	s.presence = p
}

// State is everything a player needs to render: the resolved playlist, the
// cartwall, the full week's rules (so the device can roll over windows
// locally without polling every minute) and the merged settings.
type State struct {
	Store        StoreInfo            `json:"store"`
	Organization OrgInfo              `json:"organization"`
	Playlist     *model.Playlist      `json:"playlist,omitempty"`
	Source       string               `json:"source"`
	Volume       int                  `json:"volume"`
	Cartwall     []model.CartwallItem `json:"cartwall"`
	Schedule     []model.ScheduleRule `json:"schedule"`
	Settings     settings.Settings    `json:"settings"`
	ServerTime   time.Time            `json:"server_time"`
}

type StoreInfo struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Location *string `json:"location,omitempty"`
	Timezone string  `json:"timezone"`
}

type OrgInfo struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Plan string `json:"plan"`
}

// Ack is the minimal response of the event hot path: the player re-fetches
// full state explicitly, never as a side effect of reporting an event.
type Ack struct {
	Status     string    `json:"status"`
	ServerTime time.Time `json:"server_time"`
}

func ack() Ack {
	return Ack{Status: "ok", ServerTime: time.Now().UTC()}
}

// authorize resolves the pair or fails ErrUnauthorized. An exact match is
// required; an unpaired store authorizes nothing.
func (s *Service) authorize(storeID int, deviceID string) (model.Store, error) {
	st, err := s.store.GetStoreByID(storeID)
	if err != nil {
		return model.Store{}, ErrUnauthorized
	}
	if deviceID == "" || st.DeviceID == nil || *st.DeviceID != deviceID {
		return model.Store{}, ErrUnauthorized
	}
	return st, nil
}

// GetState composes the full player state for a paired device.
func (s *Service) GetState(storeID int, deviceID string) (State, error) {
	st, err := s.authorize(storeID, deviceID)
	if err != nil {
		return State{}, err
	}
	return s.composeState(st)
}

func (s *Service) composeState(st model.Store) (State, error) {
	org, err := s.store.GetOrganizationByID(st.OrganizationID)
	if err != nil {
		return State{}, err
	}

	rules, err := s.store.ListScheduleRules(st.ID)
	if err != nil {
		return State{}, err
	}
	active := make([]model.ScheduleRule, 0, len(rules))
	for _, r := range rules {
		if r.IsActive {
			active = append(active, r)
		}
	}

	state := State{
		Store: StoreInfo{
			ID:       st.ID,
			Name:     st.Name,
			Location: st.Location,
			Timezone: st.Timezone,
		},
		Organization: OrgInfo{
			ID:   org.ID,
			Name: org.Name,
			Plan: org.Plan,
		},
		Source:     SourceNone,
		Volume:     st.CurrentVolume,
		Schedule:   active,
		Settings:   settings.Merge(org.Settings, st.Settings),
		ServerTime: s.now().UTC(),
	}

	// what should be playing right now, in the store's own timezone
	playlistID := 0
	if match := schedule.Match(active, s.now(), schedule.Location(st.Timezone)); match != nil {
		playlistID = match.PlaylistID
		state.Source = SourceSchedule
		if match.Volume != nil {
			state.Volume = *match.Volume
		}
	} else if st.ActivePlaylistID != nil {
		playlistID = *st.ActivePlaylistID
		state.Source = SourceManual
	}
	if playlistID != 0 {
		pl, err := s.store.GetPlaylistByID(st.OrganizationID, playlistID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return State{}, err
		}
		if err == nil {
			state.Playlist = &pl
		}
	}

	cartwall, err := s.store.GetCartwall(st.ID)
	if err != nil {
		return State{}, err
	}
	state.Cartwall = cartwall

	return state, nil
}

// GenerateActivationCode returns a random 6-digit code.
func GenerateActivationCode() string {
	const digits = "0123456789"
	b := make([]byte, 6)
	for i := range b {
		b[i] = digits[rand.Intn(len(digits))]
	}
	return string(b)
}

// Activate exchanges a one-shot activation code for a long-lived device
// credential. The code rotates on success, so the same code can never
// activate two devices.
func (s *Service) Activate(ctx context.Context, code string) (State, string, error) {
	st, err := s.lookupByCode(ctx, code)
	if err != nil {
		return State{}, "", err
	}

	deviceID := uuid.NewString()
	rotated := GenerateActivationCode()
	if err := s.store.ActivateStoreDevice(st.ID, deviceID, rotated, code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// lost the race: another device burned this code first
			return State{}, "", ErrNotFound
		}
		return State{}, "", err
	}
	redis.DropActivationCode(ctx, code)
	redis.PutActivationCode(ctx, rotated, st.ID)

	_ = s.store.AppendPlaybackLog(model.PlaybackLog{
		StoreID:   st.ID,
		EventType: model.EventDeviceOnline,
		Metadata:  model.JSONMap{"reason": "activation"},
	})

	st.DeviceID = &deviceID
	state, err := s.composeState(st)
	if err != nil {
		return State{}, "", err
	}
	return state, deviceID, nil
}

func (s *Service) lookupByCode(ctx context.Context, code string) (model.Store, error) {
	// the redis mirror is a fast path; postgres stays the source of truth,
	// so a hit is still verified against the row
	if id := redis.LookupActivationCode(ctx, code); id != 0 {
		st, err := s.store.GetStoreByID(id)
		if err == nil && st.IsActive && st.ActivationCode == code {
			return st, nil
		}
	}
	st, err := s.store.GetStoreByActivationCode(code)
	if err != nil {
		return model.Store{}, ErrNotFound
	}
	return st, nil
}

// RegenerateCode invalidates the store's current activation code.
func (s *Service) RegenerateCode(ctx context.Context, storeID int) (string, error) {
	st, err := s.store.GetStoreByID(storeID)
	if err != nil {
		return "", err
	}
	code := GenerateActivationCode()
	if err := s.store.RegenerateActivationCode(storeID, code); err != nil {
		return "", err
	}
	redis.DropActivationCode(ctx, st.ActivationCode)
	redis.PutActivationCode(ctx, code, storeID)
	return code, nil
}

// HeartbeatRequest mirrors the REST heartbeat body.
type HeartbeatRequest struct {
	StoreID        int            `json:"storeId" binding:"required"`
	DeviceID       string         `json:"deviceId" binding:"required"`
	Volume         *int           `json:"volume,omitempty"`
	CurrentTrackID *int           `json:"currentTrackId,omitempty"`
	TrackPosition  *int           `json:"trackPosition,omitempty"`
	IsPlaying      *bool          `json:"isPlaying,omitempty"`
	DeviceInfo     map[string]any `json:"deviceInfo,omitempty"`
}

// Heartbeat refreshes the durable presence flags and, when a track is
// reported playing, appends a progress ping to the playback log. A progress
// ping is not a completion event.
func (s *Service) Heartbeat(req HeartbeatRequest) (Ack, error) {
	if _, err := s.authorize(req.StoreID, req.DeviceID); err != nil {
		return Ack{}, err
	}
	if req.Volume != nil && (*req.Volume < 0 || *req.Volume > 100) {
		return Ack{}, errors.New("volume out of range 0-100")
	}
	if err := s.store.UpdateStoreHeartbeat(req.StoreID, req.Volume, model.JSONMap(req.DeviceInfo)); err != nil {
		return Ack{}, err
	}
	if req.CurrentTrackID != nil && req.IsPlaying != nil && *req.IsPlaying {
		meta := model.JSONMap{}
		if req.TrackPosition != nil {
			meta["position"] = *req.TrackPosition
		}
		_ = s.store.AppendPlaybackLog(model.PlaybackLog{
			StoreID:   req.StoreID,
			TrackID:   req.CurrentTrackID,
			EventType: model.EventTrackPlaying,
			Metadata:  meta,
		})
	}
	return ack(), nil
}

// GoOffline is the clean-shutdown path: same durable transition as a socket
// teardown, reached over REST.
func (s *Service) GoOffline(storeID int, deviceID string) (Ack, error) {
	st, err := s.authorize(storeID, deviceID)
	if err != nil {
		return Ack{}, err
	}
	if err := s.store.SetStoreOnline(storeID, false); err != nil {
		return Ack{}, err
	}
	_ = s.store.AppendPlaybackLog(model.PlaybackLog{
		StoreID:   storeID,
		EventType: model.EventDeviceOffline,
		Metadata:  model.JSONMap{"reason": "clean_shutdown"},
	})
	// dashboards hear about this the same way a socket teardown announces
	// it, unless another socket for the store is still up
	if s.presence != nil && !s.presence.StoreConnected(storeID) {
		s.presence.NotifyStoreOffline(storeID, st.OrganizationID)
	}
	return ack(), nil
}

// TrackStarted records the beginning of a track.
func (s *Service) TrackStarted(storeID int, deviceID string, trackID int) (Ack, error) {
	if _, err := s.authorize(storeID, deviceID); err != nil {
		return Ack{}, err
	}
	if err := s.store.AppendPlaybackLog(model.PlaybackLog{
		StoreID:   storeID,
		TrackID:   &trackID,
		EventType: model.EventTrackStarted,
	}); err != nil {
		return Ack{}, err
	}
	return ack(), nil
}

// TrackEnded records the completion of a track.
func (s *Service) TrackEnded(storeID int, deviceID string, trackID int) (Ack, error) {
	if _, err := s.authorize(storeID, deviceID); err != nil {
		return Ack{}, err
	}
	if err := s.store.AppendPlaybackLog(model.PlaybackLog{
		StoreID:   storeID,
		TrackID:   &trackID,
		EventType: model.EventTrackEnded,
	}); err != nil {
		return Ack{}, err
	}
	return ack(), nil
}

// AnnouncementPlayed records an announcement play and bumps its counter.
func (s *Service) AnnouncementPlayed(storeID int, deviceID string, announcementID int) (Ack, error) {
	if _, err := s.authorize(storeID, deviceID); err != nil {
		return Ack{}, err
	}
	if err := s.store.RecordAnnouncementPlay(announcementID); err != nil {
		return Ack{}, err
	}
	if err := s.store.AppendPlaybackLog(model.PlaybackLog{
		StoreID:        storeID,
		AnnouncementID: &announcementID,
		EventType:      model.EventAnnouncementPlayed,
	}); err != nil {
		return Ack{}, err
	}
	return ack(), nil
}

// SyncState stores the player's self-reported state blob for diagnostics.
func (s *Service) SyncState(storeID int, deviceID string, state map[string]any) (Ack, error) {
	if _, err := s.authorize(storeID, deviceID); err != nil {
		return Ack{}, err
	}
	if err := s.store.MergeStoreLastState(storeID, model.JSONMap(state)); err != nil {
		return Ack{}, err
	}
	return ack(), nil
}
