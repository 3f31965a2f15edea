package model

import (
	"time"

	"github.com/tobemax82-stack/DockFm-Retail-sub000/internal/settings"
)

type Organization struct {
	ID        int               `db:"id" json:"id"`
	Name      string            `db:"name" json:"name"`
	Plan      string            `db:"plan" json:"plan"`
	Settings  settings.Settings `db:"settings" json:"settings"`
	CreatedAt time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt time.Time         `db:"updated_at" json:"updated_at"`
}
