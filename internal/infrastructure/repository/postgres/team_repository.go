package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/riskibarqy/prediction-settlement/internal/domain/team"
	qb "github.com/riskibarqy/prediction-settlement/internal/platform/querybuilder"
)

const canonicalTeamUpsertSuffix = `ON CONFLICT (id)
DO UPDATE SET
    display_name = EXCLUDED.display_name,
    logo_url = COALESCE(NULLIF(EXCLUDED.logo_url, ''), canonical_teams.logo_url),
    updated_at = EXCLUDED.updated_at`

type TeamRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db, now: time.Now}
}

func (r *TeamRepository) GetByID(ctx context.Context, teamID string) (team.Team, bool, error) {
	query, args, err := qb.Select("*").From("canonical_teams").
		Where(qb.Eq("id", teamID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return team.Team{}, false, fmt.Errorf("build select team by id query: %w", err)
	}

	var row canonicalTeamTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return team.Team{}, false, nil
		}
		return team.Team{}, false, fmt.Errorf("get team by id: %w", err)
	}

	return teamFromRow(row), true, nil
}

func (r *TeamRepository) ListByIDs(ctx context.Context, teamIDs []string) ([]team.Team, error) {
	ids := make([]string, 0, len(teamIDs))
	for _, id := range teamIDs {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return []team.Team{}, nil
	}

	query, args, err := selectTeamsByIDsQuery(ids)
	if err != nil {
		return nil, fmt.Errorf("build select teams by ids query: %w", err)
	}

	var rows []canonicalTeamTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select teams by ids: %w", err)
	}

	out := make([]team.Team, 0, len(rows))
	for _, row := range rows {
		out = append(out, teamFromRow(row))
	}
	return out, nil
}

func (r *TeamRepository) Upsert(ctx context.Context, item team.Team) error {
	if err := item.Validate(); err != nil {
		return err
	}

	query, args, err := qb.InsertModel("canonical_teams", canonicalTeamInsertModel{
		ID:          item.ID,
		DisplayName: item.DisplayName,
		LogoURL:     item.LogoURL,
		UpdatedAt:   r.now().UTC(),
	}, canonicalTeamUpsertSuffix)
	if err != nil {
		return fmt.Errorf("build upsert team query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert team id=%s: %w", item.ID, err)
	}
	return nil
}

func selectTeamsByIDsQuery(ids []string) (string, []any, error) {
	return qb.Select("*").From("canonical_teams").
		Where(qb.Expr("id = ANY(?)", pq.Array(ids))).
		OrderBy("id").
		ToSQL()
}

func teamFromRow(row canonicalTeamTableModel) team.Team {
	return team.Team{
		ID:          row.ID,
		DisplayName: row.DisplayName,
		LogoURL:     row.LogoURL,
	}
}
