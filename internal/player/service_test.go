package player

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tobemax82-stack/DockFm-Retail-sub000/internal/db/dbfake"
	"github.com/tobemax82-stack/DockFm-Retail-sub000/internal/model"
	"github.com/tobemax82-stack/DockFm-Retail-sub000/internal/settings"
)

type fixture struct {
	fake  *dbfake.Store
	svc   *Service
	org   model.Organization
	store model.Store
}

// monday 10:00 UTC
var testClock = time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fake := dbfake.New()
	org, err := fake.CreateOrganization("Acme Retail", "pro")
	require.NoError(t, err)
	st, err := fake.CreateStore(org.ID, "Downtown", nil, "UTC", "123456")
	require.NoError(t, err)

	svc := NewService(fake)
	svc.now = func() time.Time { return testClock }
	return &fixture{fake: fake, svc: svc, org: org, store: st}
}

func (fx *fixture) pair(t *testing.T) string {
	t.Helper()
	deviceID := "device-1"
	require.NoError(t, fx.fake.ActivateStoreDevice(fx.store.ID, deviceID, "654321", "123456"))
	return deviceID
}

func (fx *fixture) playlistWithTracks(t *testing.T, name string, urls ...string) model.Playlist {
	t.Helper()
	pl, err := fx.fake.CreatePlaylist(fx.org.ID, name, nil)
	require.NoError(t, err)
	for _, u := range urls {
		_, err := fx.fake.AddTrack(pl.ID, u, nil, u, nil)
		require.NoError(t, err)
	}
	out, err := fx.fake.GetPlaylistByID(fx.org.ID, pl.ID)
	require.NoError(t, err)
	return out
}

func TestGetState_RequiresExactPairing(t *testing.T) {
	fx := newFixture(t)

	// unpaired store authorizes nothing
	_, err := fx.svc.GetState(fx.store.ID, "device-1")
	assert.ErrorIs(t, err, ErrUnauthorized)

	deviceID := fx.pair(t)

	_, err = fx.svc.GetState(fx.store.ID, "some-other-device")
	assert.ErrorIs(t, err, ErrUnauthorized)

	state, err := fx.svc.GetState(fx.store.ID, deviceID)
	require.NoError(t, err)
	assert.Equal(t, fx.store.ID, state.Store.ID)
	assert.Equal(t, fx.org.ID, state.Organization.ID)
}

func TestGetState_ScheduledPlaylistWins(t *testing.T) {
	fx := newFixture(t)
	deviceID := fx.pair(t)

	manual := fx.playlistWithTracks(t, "Manual", "https://cdn/m1.mp3")
	scheduled := fx.playlistWithTracks(t, "Morning", "https://cdn/s1.mp3", "https://cdn/s2.mp3")
	require.NoError(t, fx.fake.SetStoreActivePlaylist(fx.store.ID, &manual.ID))

	vol := 30
	_, err := fx.fake.CreateScheduleRule(fx.store.ID, scheduled.ID, "monday", "09:00", "12:00", &vol)
	require.NoError(t, err)

	state, err := fx.svc.GetState(fx.store.ID, deviceID)
	require.NoError(t, err)
	require.NotNil(t, state.Playlist)
	assert.Equal(t, scheduled.ID, state.Playlist.ID)
	assert.Equal(t, SourceSchedule, state.Source)
	assert.Equal(t, 30, state.Volume) // rule override beats store volume
	assert.Len(t, state.Playlist.Tracks, 2)
}

func TestGetState_FallsBackToManualThenNone(t *testing.T) {
	fx := newFixture(t)
	deviceID := fx.pair(t)

	state, err := fx.svc.GetState(fx.store.ID, deviceID)
	require.NoError(t, err)
	assert.Nil(t, state.Playlist)
	assert.Equal(t, SourceNone, state.Source)

	manual := fx.playlistWithTracks(t, "Manual", "https://cdn/m1.mp3")
	require.NoError(t, fx.fake.SetStoreActivePlaylist(fx.store.ID, &manual.ID))

	state, err = fx.svc.GetState(fx.store.ID, deviceID)
	require.NoError(t, err)
	require.NotNil(t, state.Playlist)
	assert.Equal(t, manual.ID, state.Playlist.ID)
	assert.Equal(t, SourceManual, state.Source)
	assert.Equal(t, 50, state.Volume) // store volume, no rule override
}

func TestGetState_MergedSettingsStoreWins(t *testing.T) {
	fx := newFixture(t)
	deviceID := fx.pair(t)

	shuffle := true
	crossfadeOrg, crossfadeStore := 2, 7
	require.NoError(t, fx.fake.UpdateOrganizationSettings(fx.org.ID, settings.Settings{
		Shuffle:          &shuffle,
		CrossfadeSeconds: &crossfadeOrg,
	}))
	require.NoError(t, fx.fake.UpdateStoreSettings(fx.store.ID, settings.Settings{
		CrossfadeSeconds: &crossfadeStore,
	}))

	state, err := fx.svc.GetState(fx.store.ID, deviceID)
	require.NoError(t, err)
	assert.Equal(t, true, *state.Settings.Shuffle)
	assert.Equal(t, 7, *state.Settings.CrossfadeSeconds)
}

func TestGetState_CartwallActiveOrderedByPosition(t *testing.T) {
	fx := newFixture(t)
	deviceID := fx.pair(t)

	a1, _ := fx.fake.CreateAnnouncement(fx.org.ID, "Closing", nil, "https://cdn/a1.mp3")
	a2, _ := fx.fake.CreateAnnouncement(fx.org.ID, "Sale", nil, "https://cdn/a2.mp3")
	_, err := fx.fake.SetCartwallItem(fx.store.ID, 2, a1.ID)
	require.NoError(t, err)
	_, err = fx.fake.SetCartwallItem(fx.store.ID, 0, a2.ID)
	require.NoError(t, err)

	state, err := fx.svc.GetState(fx.store.ID, deviceID)
	require.NoError(t, err)
	require.Len(t, state.Cartwall, 2)
	assert.Equal(t, 0, state.Cartwall[0].Position)
	assert.Equal(t, a2.ID, state.Cartwall[0].AnnouncementID)
	require.NotNil(t, state.Cartwall[0].Announcement)
	assert.Equal(t, "Sale", state.Cartwall[0].Announcement.Name)
	assert.Equal(t, 2, state.Cartwall[1].Position)
}

func TestActivate_OneShotCode(t *testing.T) {
	fx := newFixture(t)

	state, deviceID, err := fx.svc.Activate(context.Background(), "123456")
	require.NoError(t, err)
	assert.NotEmpty(t, deviceID)
	assert.Equal(t, fx.store.ID, state.Store.ID)

	st, err := fx.fake.GetStoreByID(fx.store.ID)
	require.NoError(t, err)
	assert.True(t, st.IsOnline)
	require.NotNil(t, st.DeviceID)
	assert.Equal(t, deviceID, *st.DeviceID)
	assert.NotEqual(t, "123456", st.ActivationCode) // rotated

	// the burned code activates nothing
	_, _, err = fx.svc.Activate(context.Background(), "123456")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestActivate_StaleCodeLosesRace(t *testing.T) {
	fx := newFixture(t)

	// a rival device rotates the code between our lookup and our pairing
	require.NoError(t, fx.fake.ActivateStoreDevice(fx.store.ID, "rival-device", "777777", "123456"))

	err := fx.fake.ActivateStoreDevice(fx.store.ID, "late-device", "888888", "123456")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	st, err := fx.fake.GetStoreByID(fx.store.ID)
	require.NoError(t, err)
	require.NotNil(t, st.DeviceID)
	assert.Equal(t, "rival-device", *st.DeviceID) // first winner keeps the pairing
}

func TestActivate_UnknownCode(t *testing.T) {
	fx := newFixture(t)
	_, _, err := fx.svc.Activate(context.Background(), "000000")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHeartbeat_UpdatesPresenceAndLogsProgress(t *testing.T) {
	fx := newFixture(t)
	deviceID := fx.pair(t)

	vol := 70
	trackID := 42
	playing := true
	ackResp, err := fx.svc.Heartbeat(HeartbeatRequest{
		StoreID:        fx.store.ID,
		DeviceID:       deviceID,
		Volume:         &vol,
		CurrentTrackID: &trackID,
		IsPlaying:      &playing,
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", ackResp.Status)

	st, _ := fx.fake.GetStoreByID(fx.store.ID)
	assert.True(t, st.IsOnline)
	assert.Equal(t, 70, st.CurrentVolume)
	require.NotNil(t, st.LastSeen)

	logs, _ := fx.fake.ListPlaybackLogs(fx.store.ID, 10)
	require.Len(t, logs, 1)
	assert.Equal(t, model.EventTrackPlaying, logs[0].EventType)
	assert.Equal(t, trackID, *logs[0].TrackID)
}

func TestHeartbeat_RejectsBadPairAndBadVolume(t *testing.T) {
	fx := newFixture(t)
	deviceID := fx.pair(t)

	_, err := fx.svc.Heartbeat(HeartbeatRequest{StoreID: fx.store.ID, DeviceID: "nope"})
	assert.ErrorIs(t, err, ErrUnauthorized)

	bad := 120
	_, err = fx.svc.Heartbeat(HeartbeatRequest{StoreID: fx.store.ID, DeviceID: deviceID, Volume: &bad})
	assert.Error(t, err)
}

func TestAnnouncementPlayed_BumpsCounter(t *testing.T) {
	fx := newFixture(t)
	deviceID := fx.pair(t)
	a, _ := fx.fake.CreateAnnouncement(fx.org.ID, "Sale", nil, "https://cdn/a.mp3")

	_, err := fx.svc.AnnouncementPlayed(fx.store.ID, deviceID, a.ID)
	require.NoError(t, err)

	got, _ := fx.fake.GetAnnouncementByID(fx.org.ID, a.ID)
	assert.Equal(t, 1, got.PlayCount)
	assert.NotNil(t, got.LastPlayedAt)

	logs, _ := fx.fake.ListPlaybackLogs(fx.store.ID, 10)
	require.Len(t, logs, 1)
	assert.Equal(t, model.EventAnnouncementPlayed, logs[0].EventType)
}

func TestGoOffline_CleanShutdown(t *testing.T) {
	fx := newFixture(t)
	deviceID := fx.pair(t)

	_, err := fx.svc.GoOffline(fx.store.ID, deviceID)
	require.NoError(t, err)

	st, _ := fx.fake.GetStoreByID(fx.store.ID)
	assert.False(t, st.IsOnline)
	require.NotNil(t, st.LastSeen)
}

func TestSyncState_StoresLastState(t *testing.T) {
	fx := newFixture(t)
	deviceID := fx.pair(t)

	_, err := fx.svc.SyncState(fx.store.ID, deviceID, map[string]any{"screen": "idle"})
	require.NoError(t, err)

	st, _ := fx.fake.GetStoreByID(fx.store.ID)
	last, ok := st.DeviceInfo["lastState"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "idle", last["screen"])
}

func TestGenerateActivationCode_SixDigits(t *testing.T) {
	for i := 0; i < 50; i++ {
		code := GenerateActivationCode()
		require.Len(t, code, 6)
		for _, c := range code {
			assert.True(t, c >= '0' && c <= '9')
		}
	}
}
