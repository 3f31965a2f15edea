package player

import (
	"database/sql"
	"errors"
	"time"

	"github.com/tobemax82-stack/DockFm-Retail-sub000/internal/model"
)

// Media file kinds in the snapshot manifest.
const (
	MediaTrack        = "track"
	MediaAnnouncement = "announcement"
)

type MediaFile struct {
	Type string `json:"type"`
	ID   int    `json:"id"`
	URL  string `json:"url"`
}

// Snapshot is the self-contained bundle a player caches to keep playing
// through a connectivity outage. It is a full replace, not a delta: it is
// pulled rarely (activation, explicit resync), never on the heartbeat path.
type Snapshot struct {
	GeneratedAt   time.Time            `json:"generated_at"`
	Files         []MediaFile          `json:"files"`
	Playlists     []model.Playlist     `json:"playlists"`
	Announcements []model.Announcement `json:"announcements"`
	Schedule      []model.ScheduleRule `json:"schedule"`
}

// GetOfflineContent assembles the snapshot for a paired device. Every track
// referenced by the manual playlist or any scheduled playlist appears
// exactly once in the manifest, however many rules reference it.
func (s *Service) GetOfflineContent(storeID int, deviceID string) (Snapshot, error) {
	st, err := s.authorize(storeID, deviceID)
	if err != nil {
		return Snapshot{}, err
	}

	rules, err := s.store.ListScheduleRules(st.ID)
	if err != nil {
		return Snapshot{}, err
	}
	activeRules := make([]model.ScheduleRule, 0, len(rules))
	for _, r := range rules {
		if r.IsActive {
			activeRules = append(activeRules, r)
		}
	}

	// manual playlist first, then each scheduled playlist once
	playlistIDs := make([]int, 0, len(activeRules)+1)
	seenPlaylist := map[int]bool{}
	if st.ActivePlaylistID != nil {
		playlistIDs = append(playlistIDs, *st.ActivePlaylistID)
		seenPlaylist[*st.ActivePlaylistID] = true
	}
	for _, r := range activeRules {
		if !seenPlaylist[r.PlaylistID] {
			playlistIDs = append(playlistIDs, r.PlaylistID)
			seenPlaylist[r.PlaylistID] = true
		}
	}

	snap := Snapshot{
		GeneratedAt: time.Now().UTC(),
		Files:       []MediaFile{},
		Schedule:    activeRules,
	}

	seenTrack := map[int]bool{}
	for _, pid := range playlistIDs {
		pl, err := s.store.GetPlaylistByID(st.OrganizationID, pid)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				continue
			}
			return Snapshot{}, err
		}
		snap.Playlists = append(snap.Playlists, pl)
		for _, t := range pl.Tracks {
			if seenTrack[t.ID] {
				continue
			}
			seenTrack[t.ID] = true
			snap.Files = append(snap.Files, MediaFile{Type: MediaTrack, ID: t.ID, URL: t.URL})
		}
	}

	cartwall, err := s.store.GetCartwall(st.ID)
	if err != nil {
		return Snapshot{}, err
	}
	seenAnnouncement := map[int]bool{}
	for _, item := range cartwall {
		a := item.Announcement
		if a == nil || seenAnnouncement[a.ID] {
			continue
		}
		seenAnnouncement[a.ID] = true
		snap.Announcements = append(snap.Announcements, *a)
		if a.AudioURL != "" {
			snap.Files = append(snap.Files, MediaFile{Type: MediaAnnouncement, ID: a.ID, URL: a.AudioURL})
		}
	}

	return snap, nil
}
