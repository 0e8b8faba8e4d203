package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/riskibarqy/prediction-settlement/internal/domain/prediction"
	qb "github.com/riskibarqy/prediction-settlement/internal/platform/querybuilder"
)

type PredictionRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewPredictionRepository(db *sqlx.DB) *PredictionRepository {
	return &PredictionRepository{db: db, now: time.Now}
}

func (r *PredictionRepository) Insert(ctx context.Context, record prediction.Record) error {
	if err := record.Validate(); err != nil {
		return err
	}

	model, err := predictionInsertModelFromRecord(record, r.now())
	if err != nil {
		return err
	}

	query, args, err := qb.InsertModel("prediction_records", model, "")
	if err != nil {
		return fmt.Errorf("build insert prediction query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert prediction id=%s: %w", record.ID, err)
	}
	return nil
}

func (r *PredictionRepository) GetByID(ctx context.Context, predictionID string) (prediction.Record, bool, error) {
	query, args, err := qb.Select("*").From("prediction_records").
		Where(qb.Eq("id", predictionID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return prediction.Record{}, false, fmt.Errorf("build select prediction by id query: %w", err)
	}

	var row predictionTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return prediction.Record{}, false, nil
		}
		return prediction.Record{}, false, fmt.Errorf("get prediction by id: %w", err)
	}

	record, err := predictionFromRow(row)
	if err != nil {
		return prediction.Record{}, false, err
	}
	return record, true, nil
}

func (r *PredictionRepository) ListPending(ctx context.Context, after prediction.PendingCursor, limit int) ([]prediction.Record, error) {
	query, args, err := selectPendingPredictionsQuery(after, limit)
	if err != nil {
		return nil, fmt.Errorf("build select pending predictions query: %w", err)
	}

	var rows []predictionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select pending predictions: %w", err)
	}

	out := make([]prediction.Record, 0, len(rows))
	for _, row := range rows {
		record, err := predictionFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, nil
}

func (r *PredictionRepository) UpdateResolution(ctx context.Context, predictionID string, resolution prediction.Resolution) error {
	query, args, err := updateResolutionQuery(predictionID, resolution, r.now())
	if err != nil {
		return fmt.Errorf("build update prediction resolution query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update prediction resolution id=%s: %w", predictionID, err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("update prediction resolution id=%s: %w", predictionID, sql.ErrNoRows)
	}
	return nil
}

func (r *PredictionRepository) SettleIfPending(ctx context.Context, settlement prediction.Settlement) (bool, error) {
	query, args, err := settleIfPendingQuery(settlement)
	if err != nil {
		return false, fmt.Errorf("build settle prediction query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("settle prediction id=%s: %w", settlement.PredictionID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("settle prediction id=%s rows affected: %w", settlement.PredictionID, err)
	}
	return affected == 1, nil
}

func selectPendingPredictionsQuery(after prediction.PendingCursor, limit int) (string, []any, error) {
	conds := []qb.Condition{qb.Eq("result", string(prediction.ResultPending))}
	if !after.IsZero() {
		conds = append(conds, qb.Expr("(created_at, id) > (?, ?)", after.CreatedAt.UTC(), after.ID))
	}
	return qb.Select("*").From("prediction_records").
		Where(conds...).
		OrderBy("created_at", "id").
		Limit(limit).
		ToSQL()
}

func updateResolutionQuery(predictionID string, resolution prediction.Resolution, now time.Time) (string, []any, error) {
	logJSON, err := encodeLogEntries(resolution.LogEntries)
	if err != nil {
		return "", nil, fmt.Errorf("encode processing log: %w", err)
	}

	return qb.Update("prediction_records").
		Set("home_team_id", optionalString(resolution.HomeTeamID)).
		Set("away_team_id", optionalString(resolution.AwayTeamID)).
		Set("fixture_id", optionalString(resolution.FixtureID)).
		Set("resolution_source", resolution.ResolutionSource).
		Set("confidence", resolution.Confidence).
		Set("updated_at", now.UTC()).
		SetExpr("processing_log", "processing_log || ?::jsonb", logJSON).
		Where(qb.Eq("id", predictionID)).
		ToSQL()
}

// settleIfPendingQuery only matches pending rows so a terminal result is
// never overwritten.
func settleIfPendingQuery(settlement prediction.Settlement) (string, []any, error) {
	if !settlement.Result.IsTerminal() {
		return "", nil, fmt.Errorf("settlement result %q is not terminal", settlement.Result)
	}
	logJSON, err := encodeLogEntries(settlement.LogEntries)
	if err != nil {
		return "", nil, fmt.Errorf("encode processing log: %w", err)
	}

	settledAt := settlement.SettledAt.UTC()
	finalScore := settlement.FinalScore
	return qb.Update("prediction_records").
		Set("result", string(settlement.Result)).
		Set("final_score", optionalString(&finalScore)).
		Set("settled_at", settledAt).
		Set("updated_at", settledAt).
		SetExpr("processing_log", "processing_log || ?::jsonb", logJSON).
		Where(
			qb.Eq("id", settlement.PredictionID),
			qb.Eq("result", string(prediction.ResultPending)),
		).
		ToSQL()
}

func predictionInsertModelFromRecord(record prediction.Record, now time.Time) (predictionInsertModel, error) {
	logJSON, err := encodeLogEntries(record.ProcessingLog)
	if err != nil {
		return predictionInsertModel{}, fmt.Errorf("encode processing log: %w", err)
	}

	createdAt := record.CreatedAt.UTC()
	if record.CreatedAt.IsZero() {
		createdAt = now.UTC()
	}
	updatedAt := record.UpdatedAt.UTC()
	if record.UpdatedAt.IsZero() {
		updatedAt = createdAt
	}

	model := predictionInsertModel{
		ID:               record.ID,
		SourceID:         record.SourceID,
		AlertText:        record.AlertText,
		HomeTeamRaw:      record.HomeTeamRaw,
		AwayTeamRaw:      record.AwayTeamRaw,
		LeagueRaw:        record.LeagueRaw,
		AlertMinute:      record.AlertMinute,
		AlertHomeScore:   record.AlertHomeScore,
		AlertAwayScore:   record.AlertAwayScore,
		LastGoalMinute:   optionalInt(record.LastGoalMinute),
		BotMarker:        record.BotMarker,
		HomeTeamID:       optionalString(record.HomeTeamID),
		AwayTeamID:       optionalString(record.AwayTeamID),
		BotGroupID:       optionalString(record.BotGroupID),
		FixtureID:        optionalString(record.FixtureID),
		ResolutionSource: record.ResolutionSource,
		Confidence:       record.Confidence,
		PredictionType:   record.Type.String(),
		Result:           string(record.Result),
		SettledAt:        record.SettledAt,
		FinalScore:       optionalString(record.FinalScore),
		ProcessingLog:    logJSON,
		CreatedAt:        createdAt,
		UpdatedAt:        updatedAt,
	}
	if record.Type.IsStructured() {
		model.Period = sql.NullString{String: string(record.Type.Period), Valid: true}
		model.Threshold = decimal.NullDecimal{Decimal: record.Type.Threshold, Valid: true}
		model.Direction = sql.NullString{String: string(record.Type.Direction), Valid: true}
	}
	return model, nil
}

func predictionFromRow(row predictionTableModel) (prediction.Record, error) {
	predictionType, err := prediction.ParseType(row.PredictionType)
	if err != nil {
		return prediction.Record{}, fmt.Errorf("decode prediction type id=%s: %w", row.ID, err)
	}
	if row.Period.Valid && row.Threshold.Valid && row.Direction.Valid {
		predictionType = prediction.NewGoalLine(
			prediction.Period(row.Period.String),
			row.Threshold.Decimal,
			prediction.Direction(row.Direction.String),
		)
	}

	return prediction.Record{
		ID:               row.ID,
		SourceID:         row.SourceID,
		AlertText:        row.AlertText,
		HomeTeamRaw:      row.HomeTeamRaw,
		AwayTeamRaw:      row.AwayTeamRaw,
		LeagueRaw:        row.LeagueRaw,
		AlertMinute:      row.AlertMinute,
		AlertHomeScore:   row.AlertHomeScore,
		AlertAwayScore:   row.AlertAwayScore,
		LastGoalMinute:   nullInt64ToIntPtr(row.LastGoalMinute),
		BotMarker:        row.BotMarker,
		HomeTeamID:       nullStringToPtr(row.HomeTeamID),
		AwayTeamID:       nullStringToPtr(row.AwayTeamID),
		BotGroupID:       nullStringToPtr(row.BotGroupID),
		FixtureID:        nullStringToPtr(row.FixtureID),
		ResolutionSource: row.ResolutionSource,
		Confidence:       row.Confidence,
		Type:             predictionType,
		Result:           prediction.Result(row.Result),
		SettledAt:        row.SettledAt,
		FinalScore:       nullStringToPtr(row.FinalScore),
		ProcessingLog:    decodeLogEntries(row.ProcessingLog),
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}, nil
}
