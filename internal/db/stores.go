package db

import (
	"database/sql"
	"encoding/json"
	"time"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/tobemax82-stack/DockFm-Retail-sub000/internal/model"
	"github.com/tobemax82-stack/DockFm-Retail-sub000/internal/settings"
)

const storeColumns = `
	id, organization_id, name, location, timezone, is_active, is_online,
	last_seen, current_volume, device_id, activation_code, active_playlist_id,
	settings, device_info, created_at, updated_at`

func (s *pgStore) CreateStore(organizationID int, name string, location *string, timezone string, activationCode string) (model.Store, error) {
	var st model.Store
	q := `
	INSERT INTO stores
	  (organization_id, name, location, timezone, is_active, is_online,
	   current_volume, activation_code, settings, device_info, created_at, updated_at)
	VALUES ($1, $2, $3, $4, true, false, 50, $5, '{}', '{}', now(), now())
	RETURNING ` + storeColumns + `;`
	if err := s.db.Get(&st, q, organizationID, name, location, timezone, activationCode); err != nil {
		log.Error().Err(err).Msg("failed to create store")
		return model.Store{}, err
	}
	return st, nil
}

func (s *pgStore) GetStoreByID(id int) (model.Store, error) {
	var st model.Store
	err := s.db.Get(&st, `SELECT `+storeColumns+` FROM stores WHERE id = $1;`, id)
	return st, err
}

// only active stores can be activated; a code on a deactivated store is dead.
func (s *pgStore) GetStoreByActivationCode(code string) (model.Store, error) {
	var st model.Store
	err := s.db.Get(&st, `
		SELECT `+storeColumns+`
		FROM stores
		WHERE activation_code = $1 AND is_active = true;`, code)
	return st, err
}

func (s *pgStore) ListStores(organizationID int) ([]model.Store, error) {
	var out []model.Store
	err := s.db.Select(&out, `
		SELECT `+storeColumns+`
		FROM stores
		WHERE organization_id = $1
		ORDER BY id;`, organizationID)
	if err != nil {
		log.Error().Err(err).Int("organization_id", organizationID).Msg("failed to list stores")
	}
	return out, err
}

func (s *pgStore) UpdateStore(id int, name, location, timezone *string) error {
	_, err := s.db.Exec(`
		UPDATE stores
		SET name = COALESCE($2, name),
		location = COALESCE($3, location),
		timezone = COALESCE($4, timezone),
		updated_at = now()
		WHERE id = $1;`, id, name, location, timezone)
	if err != nil {
		log.Error().Err(err).Int("store_id", id).Msg("failed to update store")
	}
	return err
}

func (s *pgStore) DeleteStore(id int) error {
	_, err := s.db.Exec(`DELETE FROM stores WHERE id = $1;`, id)
	if err != nil {
		log.Error().Err(err).Int("store_id", id).Msg("failed to delete store")
	}
	return err
}

// ActivateStoreDevice pairs a freshly generated device id with the store and
// burns the used activation code by rotating it in the same statement. The
// presented code guards the update, so two concurrent exchanges of the same
// code cannot both win.
func (s *pgStore) ActivateStoreDevice(id int, deviceID, rotatedCode, presentedCode string) error {
	res, err := s.db.Exec(`
		UPDATE stores
		SET device_id = $2,
		activation_code = $3,
		is_online = true,
		last_seen = now(),
		updated_at = now()
		WHERE id = $1 AND activation_code = $4;`, id, deviceID, rotatedCode, presentedCode)
	if err != nil {
		log.Error().Err(err).Int("store_id", id).Msg("failed to activate store device")
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *pgStore) RegenerateActivationCode(id int, code string) error {
	_, err := s.db.Exec(`
		UPDATE stores
		SET activation_code = $2,
		updated_at = now()
		WHERE id = $1;`, id, code)
	if err != nil {
		log.Error().Err(err).Int("store_id", id).Msg("failed to regenerate activation code")
	}
	return err
}

func (s *pgStore) SetStoreOnline(id int, online bool) error {
	_, err := s.db.Exec(`
		UPDATE stores
		SET is_online = $2,
		last_seen = now(),
		updated_at = now()
		WHERE id = $1;`, id, online)
	if err != nil {
		log.Error().Err(err).Int("store_id", id).Bool("online", online).Msg("failed to set store online flag")
	}
	return err
}

func (s *pgStore) UpdateStoreHeartbeat(id int, volume *int, deviceInfo model.JSONMap) error {
	var info any
	if deviceInfo != nil {
		info = deviceInfo
	}
	_, err := s.db.Exec(`
		UPDATE stores
		SET is_online = true,
		last_seen = now(),
		current_volume = COALESCE($2, current_volume),
		device_info = COALESCE(device_info, '{}') || COALESCE($3, '{}'),
		updated_at = now()
		WHERE id = $1;`, id, volume, info)
	if err != nil {
		log.Error().Err(err).Int("store_id", id).Msg("failed to record heartbeat")
	}
	return err
}

func (s *pgStore) SetStoreVolume(id int, volume int) error {
	_, err := s.db.Exec(`
		UPDATE stores
		SET current_volume = $2,
		updated_at = now()
		WHERE id = $1;`, id, volume)
	if err != nil {
		log.Error().Err(err).Int("store_id", id).Msg("failed to set store volume")
	}
	return err
}

func (s *pgStore) SetStoreActivePlaylist(id int, playlistID *int) error {
	_, err := s.db.Exec(`
		UPDATE stores
		SET active_playlist_id = $2,
		updated_at = now()
		WHERE id = $1;`, id, playlistID)
	if err != nil {
		log.Error().Err(err).Int("store_id", id).Msg("failed to set active playlist")
	}
	return err
}

func (s *pgStore) UpdateStoreSettings(id int, set settings.Settings) error {
	_, err := s.db.Exec(`
		UPDATE stores
		SET settings = $2,
		updated_at = now()
		WHERE id = $1;`, id, set)
	if err != nil {
		log.Error().Err(err).Int("store_id", id).Msg("failed to update store settings")
	}
	return err
}

// MergeStoreLastState stores the player's self-reported state under
// device_info.lastState, replacing the previous snapshot wholesale.
func (s *pgStore) MergeStoreLastState(id int, state model.JSONMap) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`
		UPDATE stores
		SET device_info = jsonb_set(COALESCE(device_info, '{}'), '{lastState}', $2::jsonb),
		updated_at = now()
		WHERE id = $1;`, id, raw)
	if err != nil {
		log.Error().Err(err).Int("store_id", id).Msg("failed to merge last state")
	}
	return err
}

// ListStaleOnlineStores returns stores still flagged online whose last_seen
// predates olderThan. Used by the liveness sweep.
func (s *pgStore) ListStaleOnlineStores(olderThan time.Time) ([]model.Store, error) {
	var out []model.Store
	err := s.db.Select(&out, `
		SELECT `+storeColumns+`
		FROM stores
		WHERE is_online = true AND last_seen IS NOT NULL AND last_seen < $1;`, olderThan)
	if err != nil {
		log.Error().Err(err).Msg("failed to list stale online stores")
	}
	return out, err
}
