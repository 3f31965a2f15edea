package db

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/tobemax82-stack/DockFm-Retail-sub000/internal/model"
)

func (s *pgStore) CreatePlaylist(organizationID int, name string, description *string) (model.Playlist, error) {
	var p model.Playlist
	const q = `
	INSERT INTO playlists (organization_id, name, description, created_at, updated_at)
	VALUES ($1, $2, $3, now(), now())
	RETURNING id, organization_id, name, description, created_at, updated_at;`
	if err := s.db.Get(&p, q, organizationID, name, description); err != nil {
		log.Error().Err(err).Msg("failed to create playlist")
		return model.Playlist{}, err
	}
	return p, nil
}

// GetPlaylistByID loads a playlist with its tracks in stable position order.
// Queries are scoped by organization: a foreign playlist reads as not found.
func (s *pgStore) GetPlaylistByID(organizationID, id int) (model.Playlist, error) {
	var p model.Playlist
	err := s.db.Get(&p, `
		SELECT id, organization_id, name, description, created_at, updated_at
		FROM playlists
		WHERE id = $1 AND organization_id = $2;`, id, organizationID)
	if err != nil {
		return model.Playlist{}, err
	}
	if err := s.db.Select(&p.Tracks, `
		SELECT id, playlist_id, title, artist, url, duration, position, created_at
		FROM tracks
		WHERE playlist_id = $1
		ORDER BY position, id;`, id); err != nil {
		log.Error().Err(err).Int("playlist_id", id).Msg("failed to load tracks")
		return model.Playlist{}, err
	}
	return p, nil
}

func (s *pgStore) ListPlaylists(organizationID int) ([]model.Playlist, error) {
	var out []model.Playlist
	err := s.db.Select(&out, `
		SELECT id, organization_id, name, description, created_at, updated_at
		FROM playlists
		WHERE organization_id = $1
		ORDER BY id;`, organizationID)
	if err != nil {
		log.Error().Err(err).Msg("failed to list playlists")
	}
	return out, err
}

func (s *pgStore) UpdatePlaylist(organizationID, id int, name, description *string) error {
	res, err := s.db.Exec(`
		UPDATE playlists
		SET name = COALESCE($3, name),
		description = COALESCE($4, description),
		updated_at = now()
		WHERE id = $1 AND organization_id = $2;`, id, organizationID, name, description)
	if err != nil {
		log.Error().Err(err).Int("playlist_id", id).Msg("failed to update playlist")
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *pgStore) DeletePlaylist(organizationID, id int) error {
	res, err := s.db.Exec(`
		DELETE FROM playlists WHERE id = $1 AND organization_id = $2;`, id, organizationID)
	if err != nil {
		log.Error().Err(err).Int("playlist_id", id).Msg("failed to delete playlist")
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// AddTrack appends at the end of the playlist.
func (s *pgStore) AddTrack(playlistID int, title string, artist *string, url string, duration *int) (model.Track, error) {
	var t model.Track
	const q = `
	INSERT INTO tracks (playlist_id, title, artist, url, duration, position, created_at)
	VALUES ($1, $2, $3, $4, $5,
	  COALESCE((SELECT MAX(position) + 1 FROM tracks WHERE playlist_id = $1), 0),
	  now())
	RETURNING id, playlist_id, title, artist, url, duration, position, created_at;`
	if err := s.db.Get(&t, q, playlistID, title, artist, url, duration); err != nil {
		log.Error().Err(err).Int("playlist_id", playlistID).Msg("failed to add track")
		return model.Track{}, err
	}
	return t, nil
}

func (s *pgStore) RemoveTrack(playlistID, trackID int) error {
	res, err := s.db.Exec(`
		DELETE FROM tracks WHERE id = $1 AND playlist_id = $2;`, trackID, playlistID)
	if err != nil {
		log.Error().Err(err).Int("track_id", trackID).Msg("failed to remove track")
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ReorderTracks rewrites positions to match the given id order. All ids must
// belong to the playlist; the whole reorder is one transaction.
func (s *pgStore) ReorderTracks(playlistID int, trackIDs []int) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for pos, trackID := range trackIDs {
		res, err := tx.Exec(`
			UPDATE tracks SET position = $3 WHERE id = $1 AND playlist_id = $2;`,
			trackID, playlistID, pos)
		if err != nil {
			log.Error().Err(err).Int("track_id", trackID).Msg("failed to reorder track")
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("track %d not in playlist %d: %w", trackID, playlistID, sql.ErrNoRows)
		}
	}
	return tx.Commit()
}
