package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/prediction-settlement/internal/domain/prediction"
)

type PredictionRepository struct {
	mu      sync.RWMutex
	records map[string]prediction.Record
	now     func() time.Time
}

func NewPredictionRepository() *PredictionRepository {
	return &PredictionRepository{
		records: make(map[string]prediction.Record),
		now:     time.Now,
	}
}

func (r *PredictionRepository) Insert(_ context.Context, record prediction.Record) error {
	if err := record.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.records[record.ID]; exists {
		return fmt.Errorf("prediction id=%s already exists", record.ID)
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = r.now().UTC()
	}
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = record.CreatedAt
	}
	r.records[record.ID] = cloneRecord(record)
	return nil
}

func (r *PredictionRepository) GetByID(_ context.Context, predictionID string) (prediction.Record, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[predictionID]
	if !ok {
		return prediction.Record{}, false, nil
	}
	return cloneRecord(record), true, nil
}

func (r *PredictionRepository) ListPending(_ context.Context, after prediction.PendingCursor, limit int) ([]prediction.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]prediction.Record, 0)
	for _, record := range r.records {
		if record.Result == prediction.ResultPending && isAfterCursor(record, after) {
			out = append(out, cloneRecord(record))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *PredictionRepository) UpdateResolution(_ context.Context, predictionID string, resolution prediction.Resolution) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.records[predictionID]
	if !ok {
		return fmt.Errorf("prediction id=%s not found", predictionID)
	}
	record.HomeTeamID = resolution.HomeTeamID
	record.AwayTeamID = resolution.AwayTeamID
	record.FixtureID = resolution.FixtureID
	record.ResolutionSource = resolution.ResolutionSource
	record.Confidence = resolution.Confidence
	record.ProcessingLog = append(record.ProcessingLog, resolution.LogEntries...)
	record.UpdatedAt = r.now().UTC()
	r.records[predictionID] = record
	return nil
}

func (r *PredictionRepository) SettleIfPending(_ context.Context, settlement prediction.Settlement) (bool, error) {
	if !settlement.Result.IsTerminal() {
		return false, fmt.Errorf("settlement result %q is not terminal", settlement.Result)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.records[settlement.PredictionID]
	if !ok || record.Result != prediction.ResultPending {
		return false, nil
	}

	settledAt := settlement.SettledAt.UTC()
	finalScore := settlement.FinalScore
	record.Result = settlement.Result
	record.SettledAt = &settledAt
	record.FinalScore = &finalScore
	record.ProcessingLog = append(record.ProcessingLog, settlement.LogEntries...)
	record.UpdatedAt = settledAt
	r.records[record.ID] = record
	return true, nil
}

func isAfterCursor(record prediction.Record, after prediction.PendingCursor) bool {
	if after.IsZero() {
		return true
	}
	if !record.CreatedAt.Equal(after.CreatedAt) {
		return record.CreatedAt.After(after.CreatedAt)
	}
	return record.ID > after.ID
}

func cloneRecord(record prediction.Record) prediction.Record {
	record.ProcessingLog = append([]string(nil), record.ProcessingLog...)
	return record
}
