package db

import (
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/tobemax82-stack/DockFm-Retail-sub000/internal/model"
	"github.com/tobemax82-stack/DockFm-Retail-sub000/internal/schedule"
)

const ruleColumns = `
	id, store_id, playlist_id, day_of_week, start_time, end_time, volume,
	is_active, created_at, updated_at`

func (s *pgStore) ListScheduleRules(storeID int) ([]model.ScheduleRule, error) {
	var out []model.ScheduleRule
	err := s.db.Select(&out, `
		SELECT `+ruleColumns+`
		FROM schedule_rules
		WHERE store_id = $1
		ORDER BY day_of_week, start_time;`, storeID)
	if err != nil {
		log.Error().Err(err).Int("store_id", storeID).Msg("failed to list schedule rules")
	}
	return out, err
}

// lockStore takes the store's parent row lock inside tx. Every schedule
// write funnels through this lock, so a concurrent overlap check cannot race
// past an insert it has not seen yet. Locking the rule rows alone would not
// do it: a store with zero rules locks nothing, and READ COMMITTED lets a
// phantom insert slip between the check and the commit.
func lockStore(tx *sqlx.Tx, storeID int) error {
	var id int
	return tx.Get(&id, `SELECT id FROM stores WHERE id = $1 FOR UPDATE;`, storeID)
}

// lockRules serializes writers on the store row, then reads the store's
// rules inside the same tx so the overlap check and the subsequent insert
// act as one atomic unit.
func lockRules(tx *sqlx.Tx, storeID int) ([]model.ScheduleRule, error) {
	if err := lockStore(tx, storeID); err != nil {
		return nil, err
	}
	var rules []model.ScheduleRule
	err := tx.Select(&rules, `
		SELECT `+ruleColumns+`
		FROM schedule_rules
		WHERE store_id = $1;`, storeID)
	return rules, err
}

func insertRule(tx *sqlx.Tx, storeID, playlistID int, dayOfWeek, startTime, endTime string, volume *int, isActive bool) (model.ScheduleRule, error) {
	var r model.ScheduleRule
	const q = `
	INSERT INTO schedule_rules
	  (store_id, playlist_id, day_of_week, start_time, end_time, volume, is_active, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
	RETURNING ` + ruleColumns + `;`
	err := tx.Get(&r, q, storeID, playlistID, dayOfWeek, startTime, endTime, volume, isActive)
	return r, err
}

func (s *pgStore) CreateScheduleRule(storeID, playlistID int, dayOfWeek, startTime, endTime string, volume *int) (model.ScheduleRule, error) {
	dayOfWeek = strings.ToLower(dayOfWeek)

	tx, err := s.db.Beginx()
	if err != nil {
		return model.ScheduleRule{}, err
	}
	defer tx.Rollback()

	existing, err := lockRules(tx, storeID)
	if err != nil {
		return model.ScheduleRule{}, err
	}
	if err := schedule.CheckConflict(existing, dayOfWeek, startTime, endTime, 0); err != nil {
		return model.ScheduleRule{}, err
	}

	r, err := insertRule(tx, storeID, playlistID, dayOfWeek, startTime, endTime, volume, true)
	if err != nil {
		log.Error().Err(err).Int("store_id", storeID).Msg("failed to create schedule rule")
		return model.ScheduleRule{}, err
	}
	return r, tx.Commit()
}

func (s *pgStore) UpdateScheduleRule(storeID, ruleID int, playlistID *int, dayOfWeek, startTime, endTime *string, volume *int, isActive *bool) (model.ScheduleRule, error) {
	tx, err := s.db.Beginx()
	if err != nil {
		return model.ScheduleRule{}, err
	}
	defer tx.Rollback()

	existing, err := lockRules(tx, storeID)
	if err != nil {
		return model.ScheduleRule{}, err
	}

	var current *model.ScheduleRule
	for i := range existing {
		if existing[i].ID == ruleID {
			current = &existing[i]
			break
		}
	}
	if current == nil {
		return model.ScheduleRule{}, sql.ErrNoRows
	}

	// the effective window after the update is what has to be conflict-free
	day := current.DayOfWeek
	start := current.StartTime
	end := current.EndTime
	active := current.IsActive
	if dayOfWeek != nil {
		day = strings.ToLower(*dayOfWeek)
	}
	if startTime != nil {
		start = *startTime
	}
	if endTime != nil {
		end = *endTime
	}
	if isActive != nil {
		active = *isActive
	}
	// a partial update can invert the window; the effective one must still
	// hold start < end
	if err := schedule.ValidateRule(day, start, end); err != nil {
		return model.ScheduleRule{}, err
	}
	if active {
		if err := schedule.CheckConflict(existing, day, start, end, ruleID); err != nil {
			return model.ScheduleRule{}, err
		}
	}

	var r model.ScheduleRule
	const q = `
	UPDATE schedule_rules
	SET playlist_id = COALESCE($3, playlist_id),
	day_of_week = $4,
	start_time = $5,
	end_time = $6,
	volume = COALESCE($7, volume),
	is_active = $8,
	updated_at = now()
	WHERE id = $1 AND store_id = $2
	RETURNING ` + ruleColumns + `;`
	if err := tx.Get(&r, q, ruleID, storeID, playlistID, day, start, end, volume, active); err != nil {
		log.Error().Err(err).Int("rule_id", ruleID).Msg("failed to update schedule rule")
		return model.ScheduleRule{}, err
	}
	return r, tx.Commit()
}

func (s *pgStore) DeleteScheduleRule(storeID, ruleID int) error {
	res, err := s.db.Exec(`
		DELETE FROM schedule_rules WHERE id = $1 AND store_id = $2;`, ruleID, storeID)
	if err != nil {
		log.Error().Err(err).Int("rule_id", ruleID).Msg("failed to delete schedule rule")
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// BulkCreateScheduleRules installs all rules or none. Each candidate is
// checked against both the stored rules and the ones accepted earlier in the
// same batch.
func (s *pgStore) BulkCreateScheduleRules(storeID int, rules []model.ScheduleRule) ([]model.ScheduleRule, error) {
	tx, err := s.db.Beginx()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	existing, err := lockRules(tx, storeID)
	if err != nil {
		return nil, err
	}

	out := make([]model.ScheduleRule, 0, len(rules))
	for _, c := range rules {
		day := strings.ToLower(c.DayOfWeek)
		if err := schedule.CheckConflict(existing, day, c.StartTime, c.EndTime, 0); err != nil {
			return nil, err
		}
		r, err := insertRule(tx, storeID, c.PlaylistID, day, c.StartTime, c.EndTime, c.Volume, true)
		if err != nil {
			log.Error().Err(err).Int("store_id", storeID).Msg("failed to bulk create schedule rule")
			return nil, err
		}
		existing = append(existing, r)
		out = append(out, r)
	}
	return out, tx.Commit()
}

// CopySchedule replaces the target store's rules with the source's, verbatim.
// Inactive rules come along too, still inactive.
func (s *pgStore) CopySchedule(fromStoreID, toStoreID int) ([]model.ScheduleRule, error) {
	tx, err := s.db.Beginx()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := lockStore(tx, toStoreID); err != nil {
		return nil, err
	}

	var source []model.ScheduleRule
	if err := tx.Select(&source, `
		SELECT `+ruleColumns+`
		FROM schedule_rules
		WHERE store_id = $1
		ORDER BY day_of_week, start_time;`, fromStoreID); err != nil {
		return nil, err
	}

	if _, err := tx.Exec(`DELETE FROM schedule_rules WHERE store_id = $1;`, toStoreID); err != nil {
		log.Error().Err(err).Int("store_id", toStoreID).Msg("failed to clear target schedule")
		return nil, err
	}

	out := make([]model.ScheduleRule, 0, len(source))
	for _, c := range source {
		r, err := insertRule(tx, toStoreID, c.PlaylistID, c.DayOfWeek, c.StartTime, c.EndTime, c.Volume, c.IsActive)
		if err != nil {
			log.Error().Err(err).Int("store_id", toStoreID).Msg("failed to copy schedule rule")
			return nil, err
		}
		out = append(out, r)
	}
	return out, tx.Commit()
}
