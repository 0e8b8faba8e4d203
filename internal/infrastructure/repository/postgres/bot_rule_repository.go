package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/prediction-settlement/internal/domain/botrule"
	qb "github.com/riskibarqy/prediction-settlement/internal/platform/querybuilder"
)

type BotRuleRepository struct {
	db *sqlx.DB
}

func NewBotRuleRepository(db *sqlx.DB) *BotRuleRepository {
	return &BotRuleRepository{db: db}
}

func (r *BotRuleRepository) ListActiveRules(ctx context.Context) ([]botrule.Rule, error) {
	query, args, err := qb.Select("id", "match_type", "match_value", "bot_group_id", "is_active").
		From("bot_rules").
		Where(qb.Eq("is_active", true)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select active bot rules query: %w", err)
	}

	var rows []botRuleTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select active bot rules: %w", err)
	}

	out := make([]botrule.Rule, 0, len(rows))
	for _, row := range rows {
		out = append(out, botrule.Rule{
			ID:         row.ID,
			MatchType:  botrule.MatchType(row.MatchType),
			MatchValue: row.MatchValue,
			BotGroupID: row.BotGroupID,
			IsActive:   row.IsActive,
		})
	}
	return out, nil
}

func (r *BotRuleRepository) ListGroups(ctx context.Context) ([]botrule.Group, error) {
	query, args, err := qb.Select("id", "name", "display_name", "is_public", "is_active").
		From("bot_groups").
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select bot groups query: %w", err)
	}

	var rows []botGroupTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select bot groups: %w", err)
	}

	out := make([]botrule.Group, 0, len(rows))
	for _, row := range rows {
		out = append(out, botrule.Group{
			ID:          row.ID,
			Name:        row.Name,
			DisplayName: row.DisplayName,
			IsPublic:    row.IsPublic,
			IsActive:    row.IsActive,
		})
	}
	return out, nil
}
