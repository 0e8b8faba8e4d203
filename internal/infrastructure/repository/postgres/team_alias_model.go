package postgres

import (
	"database/sql"
	"time"
)

type teamAliasTableModel struct {
	RawName             string         `db:"raw_name"`
	CanonicalTeamID     string         `db:"canonical_team_id"`
	MappedCanonicalName sql.NullString `db:"mapped_canonical_name"`
	Confidence          float64        `db:"confidence"`
	Source              string         `db:"source"`
	CreatedAt           time.Time      `db:"created_at"`
	UpdatedAt           time.Time      `db:"updated_at"`
}

type teamAliasInsertModel struct {
	RawName             string         `db:"raw_name"`
	CanonicalTeamID     string         `db:"canonical_team_id"`
	MappedCanonicalName sql.NullString `db:"mapped_canonical_name"`
	Confidence          float64        `db:"confidence"`
	Source              string         `db:"source"`
	UpdatedAt           time.Time      `db:"updated_at"`
}
