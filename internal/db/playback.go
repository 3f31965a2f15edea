package db

import (
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/tobemax82-stack/DockFm-Retail-sub000/internal/model"
)

// AppendPlaybackLog inserts one analytics row. The table is append-only;
// nothing in the codebase updates or deletes from it.
func (s *pgStore) AppendPlaybackLog(entry model.PlaybackLog) error {
	_, err := s.db.Exec(`
		INSERT INTO playback_logs (store_id, track_id, announcement_id, event_type, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, now());`,
		entry.StoreID, entry.TrackID, entry.AnnouncementID, entry.EventType, entry.Metadata)
	if err != nil {
		log.Error().Err(err).Int("store_id", entry.StoreID).Str("event", entry.EventType).Msg("failed to append playback log")
	}
	return err
}

func (s *pgStore) ListPlaybackLogs(storeID, limit int) ([]model.PlaybackLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var out []model.PlaybackLog
	err := s.db.Select(&out, `
		SELECT id, store_id, track_id, announcement_id, event_type, metadata, created_at
		FROM playback_logs
		WHERE store_id = $1
		ORDER BY id DESC
		LIMIT $2;`, storeID, limit)
	if err != nil {
		log.Error().Err(err).Int("store_id", storeID).Msg("failed to list playback logs")
	}
	return out, err
}
