package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/prediction-settlement/internal/domain/teamalias"
	qb "github.com/riskibarqy/prediction-settlement/internal/platform/querybuilder"
)

// The latest successful resolution wins, so every column is overwritten.
const teamAliasUpsertSuffix = `ON CONFLICT (raw_name)
DO UPDATE SET
    canonical_team_id = EXCLUDED.canonical_team_id,
    mapped_canonical_name = EXCLUDED.mapped_canonical_name,
    confidence = EXCLUDED.confidence,
    source = EXCLUDED.source,
    updated_at = EXCLUDED.updated_at`

type TeamAliasRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewTeamAliasRepository(db *sqlx.DB) *TeamAliasRepository {
	return &TeamAliasRepository{db: db, now: time.Now}
}

func (r *TeamAliasRepository) GetByRawName(ctx context.Context, rawName string) (teamalias.Alias, bool, error) {
	key := teamalias.NormalizeRawName(rawName)
	if key == "" {
		return teamalias.Alias{}, false, nil
	}

	query, args, err := qb.Select("*").From("team_aliases").
		Where(qb.Eq("raw_name", key)).
		Limit(1).
		ToSQL()
	if err != nil {
		return teamalias.Alias{}, false, fmt.Errorf("build select team alias query: %w", err)
	}

	var row teamAliasTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return teamalias.Alias{}, false, nil
		}
		return teamalias.Alias{}, false, fmt.Errorf("get team alias raw_name=%s: %w", key, err)
	}

	return teamAliasFromRow(row), true, nil
}

func (r *TeamAliasRepository) Upsert(ctx context.Context, alias teamalias.Alias) error {
	if err := alias.Validate(); err != nil {
		return err
	}

	query, args, err := upsertTeamAliasQuery(alias, r.now())
	if err != nil {
		return fmt.Errorf("build upsert team alias query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert team alias raw_name=%s: %w", alias.RawName, err)
	}
	return nil
}

func upsertTeamAliasQuery(alias teamalias.Alias, now time.Time) (string, []any, error) {
	updatedAt := alias.UpdatedAt.UTC()
	if alias.UpdatedAt.IsZero() {
		updatedAt = now.UTC()
	}
	source := alias.Source
	if source == "" {
		source = teamalias.SourceManual
	}

	mapped := alias.MappedCanonicalName
	return qb.InsertModel("team_aliases", teamAliasInsertModel{
		RawName:             teamalias.NormalizeRawName(alias.RawName),
		CanonicalTeamID:     alias.CanonicalTeamID,
		MappedCanonicalName: optionalString(&mapped),
		Confidence:          alias.Confidence,
		Source:              source,
		UpdatedAt:           updatedAt,
	}, teamAliasUpsertSuffix)
}

func teamAliasFromRow(row teamAliasTableModel) teamalias.Alias {
	return teamalias.Alias{
		RawName:             row.RawName,
		CanonicalTeamID:     row.CanonicalTeamID,
		MappedCanonicalName: row.MappedCanonicalName.String,
		Confidence:          row.Confidence,
		Source:              row.Source,
		UpdatedAt:           row.UpdatedAt,
	}
}
