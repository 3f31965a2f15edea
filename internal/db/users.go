package db

import (
	"database/sql"
	"errors"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/tobemax82-stack/DockFm-Retail-sub000/internal/model"
	"github.com/tobemax82-stack/DockFm-Retail-sub000/internal/settings"
)

func (s *pgStore) CreateOrganization(name, plan string) (model.Organization, error) {
	var org model.Organization
	const q = `
	INSERT INTO organizations (name, plan, settings, created_at, updated_at)
	VALUES ($1, $2, '{}', now(), now())
	RETURNING id, name, plan, settings, created_at, updated_at;`
	if err := s.db.Get(&org, q, name, plan); err != nil {
		log.Error().Err(err).Msg("failed to create organization")
		return model.Organization{}, err
	}
	return org, nil
}

func (s *pgStore) GetOrganizationByID(id int) (model.Organization, error) {
	var org model.Organization
	err := s.db.Get(&org, `
		SELECT id, name, plan, settings, created_at, updated_at
		FROM organizations
		WHERE id = $1;`, id)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		log.Error().Err(err).Int("organization_id", id).Msg("failed to get organization")
	}
	return org, err
}

func (s *pgStore) UpdateOrganizationSettings(id int, set settings.Settings) error {
	_, err := s.db.Exec(`
		UPDATE organizations
		SET settings = $2,
		updated_at = now()
		WHERE id = $1;`, id, set)
	if err != nil {
		log.Error().Err(err).Int("organization_id", id).Msg("failed to update organization settings")
	}
	return err
}

// inserts new user into table, returns new user ID.
func (s *pgStore) CreateUser(organizationID int, email, hashedPassword string, name *string, role string) (int, error) {
	const q = `
	INSERT INTO users (organization_id, email, hashed_password, name, role, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, now(), now())
	RETURNING id;`
	var newID int
	if err := s.db.QueryRow(q, organizationID, email, hashedPassword, name, role).Scan(&newID); err != nil {
		log.Error().Err(err).Msg("failed to create user")
		return 0, err
	}
	return newID, nil
}

// fetches user by email. returns nil, sql.ErrNoRows if not found.
func (s *pgStore) GetUserByEmail(email string) (*model.User, error) {
	var u model.User
	err := s.db.Get(&u, `
		SELECT id, organization_id, email, hashed_password, name, role, created_at, updated_at
		FROM users
		WHERE email = $1;`, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		log.Error().Err(err).Msg("failed to get user by email")
		return nil, err
	}
	return &u, nil
}

// fetches a user by ID. Returns nil, sql.ErrNoRows if not found.
func (s *pgStore) GetUserByID(id int) (*model.User, error) {
	var u model.User
	err := s.db.Get(&u, `
		SELECT id, organization_id, email, hashed_password, name, role, created_at, updated_at
		FROM users
		WHERE id = $1;`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		log.Error().Err(err).Msg("failed to get user by id")
		return nil, err
	}
	return &u, nil
}

// updates a user's email and name, and bumps updated_at.
// returns an error if no rows were affected (e.g. user ID doesn’t exist).
func (s *pgStore) UpdateUserProfile(id int, email string, name *string) error {
	res, err := s.db.Exec(`
		UPDATE users
		SET email = $2,
		name = $3,
		updated_at = now()
		WHERE id = $1;`, id, email, name)
	if err != nil {
		log.Error().Err(err).Msg("failed to update user profile - exec")
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		log.Error().Err(err).Msg("failed to update user profile - rows affected")
		return err
	}
	if rows == 0 {
		return errors.New("no such user")
	}
	return nil
}
