package postgres

import (
	"time"
)

type canonicalTeamTableModel struct {
	ID          string    `db:"id"`
	DisplayName string    `db:"display_name"`
	LogoURL     string    `db:"logo_url"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type canonicalTeamInsertModel struct {
	ID          string    `db:"id"`
	DisplayName string    `db:"display_name"`
	LogoURL     string    `db:"logo_url"`
	UpdatedAt   time.Time `db:"updated_at"`
}
