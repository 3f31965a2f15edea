package player

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOfflineContent_RequiresPairing(t *testing.T) {
	fx := newFixture(t)
	_, err := fx.svc.GetOfflineContent(fx.store.ID, "stranger")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestGetOfflineContent_DeduplicatesSharedTracks(t *testing.T) {
	fx := newFixture(t)
	deviceID := fx.pair(t)

	shared := fx.playlistWithTracks(t, "Evergreens", "https://cdn/t1.mp3", "https://cdn/t2.mp3")
	morning := fx.playlistWithTracks(t, "Morning", "https://cdn/t3.mp3")

	// manual playlist and two rules referencing the same playlist
	require.NoError(t, fx.fake.SetStoreActivePlaylist(fx.store.ID, &shared.ID))
	_, err := fx.fake.CreateScheduleRule(fx.store.ID, shared.ID, "monday", "09:00", "12:00", nil)
	require.NoError(t, err)
	_, err = fx.fake.CreateScheduleRule(fx.store.ID, shared.ID, "tuesday", "09:00", "12:00", nil)
	require.NoError(t, err)
	_, err = fx.fake.CreateScheduleRule(fx.store.ID, morning.ID, "monday", "12:00", "14:00", nil)
	require.NoError(t, err)

	snap, err := fx.svc.GetOfflineContent(fx.store.ID, deviceID)
	require.NoError(t, err)

	var trackURLs []string
	for _, f := range snap.Files {
		if f.Type == MediaTrack {
			trackURLs = append(trackURLs, f.URL)
		}
	}
	// t1 and t2 appear once despite three references to the playlist
	assert.ElementsMatch(t, []string{"https://cdn/t1.mp3", "https://cdn/t2.mp3", "https://cdn/t3.mp3"}, trackURLs)
	assert.Len(t, snap.Playlists, 2)
	assert.Len(t, snap.Schedule, 3)
	assert.False(t, snap.GeneratedAt.IsZero())
}

func TestGetOfflineContent_SkipsEmptyAnnouncementAudio(t *testing.T) {
	fx := newFixture(t)
	deviceID := fx.pair(t)

	withAudio, _ := fx.fake.CreateAnnouncement(fx.org.ID, "Sale", nil, "https://cdn/sale.mp3")
	pending, _ := fx.fake.CreateAnnouncement(fx.org.ID, "Generating", nil, "")
	_, err := fx.fake.SetCartwallItem(fx.store.ID, 0, withAudio.ID)
	require.NoError(t, err)
	_, err = fx.fake.SetCartwallItem(fx.store.ID, 1, pending.ID)
	require.NoError(t, err)

	snap, err := fx.svc.GetOfflineContent(fx.store.ID, deviceID)
	require.NoError(t, err)

	var annURLs []string
	for _, f := range snap.Files {
		if f.Type == MediaAnnouncement {
			annURLs = append(annURLs, f.URL)
		}
	}
	assert.Equal(t, []string{"https://cdn/sale.mp3"}, annURLs)
	// both announcements still ride along as raw payloads
	assert.Len(t, snap.Announcements, 2)
}
