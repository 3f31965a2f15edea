package db

import (
	"database/sql"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/tobemax82-stack/DockFm-Retail-sub000/internal/model"
)

func (s *pgStore) CreateAnnouncement(organizationID int, name string, text *string, audioURL string) (model.Announcement, error) {
	var a model.Announcement
	const q = `
	INSERT INTO announcements
	  (organization_id, name, text, audio_url, play_count, is_active, created_at, updated_at)
	VALUES ($1, $2, $3, $4, 0, true, now(), now())
	RETURNING id, organization_id, name, text, audio_url, play_count, last_played_at,
	          is_active, created_at, updated_at;`
	if err := s.db.Get(&a, q, organizationID, name, text, audioURL); err != nil {
		log.Error().Err(err).Msg("failed to create announcement")
		return model.Announcement{}, err
	}
	return a, nil
}

func (s *pgStore) GetAnnouncementByID(organizationID, id int) (model.Announcement, error) {
	var a model.Announcement
	err := s.db.Get(&a, `
		SELECT id, organization_id, name, text, audio_url, play_count, last_played_at,
		       is_active, created_at, updated_at
		FROM announcements
		WHERE id = $1 AND organization_id = $2;`, id, organizationID)
	return a, err
}

func (s *pgStore) ListAnnouncements(organizationID int) ([]model.Announcement, error) {
	var out []model.Announcement
	err := s.db.Select(&out, `
		SELECT id, organization_id, name, text, audio_url, play_count, last_played_at,
		       is_active, created_at, updated_at
		FROM announcements
		WHERE organization_id = $1
		ORDER BY id;`, organizationID)
	if err != nil {
		log.Error().Err(err).Msg("failed to list announcements")
	}
	return out, err
}

func (s *pgStore) UpdateAnnouncement(organizationID, id int, name, text, audioURL *string, isActive *bool) error {
	res, err := s.db.Exec(`
		UPDATE announcements
		SET name = COALESCE($3, name),
		text = COALESCE($4, text),
		audio_url = COALESCE($5, audio_url),
		is_active = COALESCE($6, is_active),
		updated_at = now()
		WHERE id = $1 AND organization_id = $2;`, id, organizationID, name, text, audioURL, isActive)
	if err != nil {
		log.Error().Err(err).Int("announcement_id", id).Msg("failed to update announcement")
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *pgStore) DeleteAnnouncement(organizationID, id int) error {
	res, err := s.db.Exec(`
		DELETE FROM announcements WHERE id = $1 AND organization_id = $2;`, id, organizationID)
	if err != nil {
		log.Error().Err(err).Int("announcement_id", id).Msg("failed to delete announcement")
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// RecordAnnouncementPlay bumps the play counter and last-played timestamp.
func (s *pgStore) RecordAnnouncementPlay(id int) error {
	_, err := s.db.Exec(`
		UPDATE announcements
		SET play_count = play_count + 1,
		last_played_at = now(),
		updated_at = now()
		WHERE id = $1;`, id)
	if err != nil {
		log.Error().Err(err).Int("announcement_id", id).Msg("failed to record announcement play")
	}
	return err
}

// GetCartwall returns the store's active trigger slots in position order,
// each wrapping the full announcement payload.
func (s *pgStore) GetCartwall(storeID int) ([]model.CartwallItem, error) {
	type row struct {
		model.CartwallItem
		AName       string       `db:"a_name"`
		AText       *string      `db:"a_text"`
		AAudioURL   string       `db:"a_audio_url"`
		APlayCount  int          `db:"a_play_count"`
		ALastPlayed sql.NullTime `db:"a_last_played_at"`
		AOrgID      int          `db:"a_organization_id"`
		AIsActive   bool         `db:"a_is_active"`
	}
	var rows []row
	const q = `
	SELECT ci.id, ci.store_id, ci.announcement_id, ci.position, ci.is_active, ci.created_at,
	       a.name AS a_name, a.text AS a_text, a.audio_url AS a_audio_url,
	       a.play_count AS a_play_count, a.last_played_at AS a_last_played_at,
	       a.organization_id AS a_organization_id, a.is_active AS a_is_active
	FROM cartwall_items ci
	JOIN announcements a ON a.id = ci.announcement_id
	WHERE ci.store_id = $1 AND ci.is_active = true AND a.is_active = true
	ORDER BY ci.position;`
	if err := s.db.Select(&rows, q, storeID); err != nil {
		log.Error().Err(err).Int("store_id", storeID).Msg("failed to load cartwall")
		return nil, err
	}

	out := make([]model.CartwallItem, 0, len(rows))
	for _, r := range rows {
		item := r.CartwallItem
		ann := &model.Announcement{
			ID:             item.AnnouncementID,
			OrganizationID: r.AOrgID,
			Name:           r.AName,
			Text:           r.AText,
			AudioURL:       r.AAudioURL,
			PlayCount:      r.APlayCount,
			IsActive:       r.AIsActive,
		}
		if r.ALastPlayed.Valid {
			t := r.ALastPlayed.Time
			ann.LastPlayedAt = &t
		}
		item.Announcement = ann
		out = append(out, item)
	}
	return out, nil
}

// SetCartwallItem assigns an announcement to a position, replacing whatever
// occupied the slot. The unique (store_id, position) index makes concurrent
// assignments serialize on the upsert.
func (s *pgStore) SetCartwallItem(storeID, position, announcementID int) (model.CartwallItem, error) {
	var item model.CartwallItem
	const q = `
	INSERT INTO cartwall_items (store_id, announcement_id, position, is_active, created_at)
	VALUES ($1, $2, $3, true, now())
	ON CONFLICT (store_id, position)
	DO UPDATE SET announcement_id = EXCLUDED.announcement_id, is_active = true
	RETURNING id, store_id, announcement_id, position, is_active, created_at;`
	if err := s.db.Get(&item, q, storeID, announcementID, position); err != nil {
		log.Error().Err(err).Int("store_id", storeID).Int("position", position).Msg("failed to set cartwall item")
		return model.CartwallItem{}, err
	}
	return item, nil
}

func (s *pgStore) RemoveCartwallItem(storeID, position int) error {
	res, err := s.db.Exec(`
		DELETE FROM cartwall_items WHERE store_id = $1 AND position = $2;`, storeID, position)
	if err != nil {
		log.Error().Err(err).Int("store_id", storeID).Int("position", position).Msg("failed to remove cartwall item")
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
