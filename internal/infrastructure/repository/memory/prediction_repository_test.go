package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/prediction-settlement/internal/domain/prediction"
	"github.com/riskibarqy/prediction-settlement/internal/domain/teamalias"
)

func newPendingRecord(id string, createdAt time.Time) prediction.Record {
	typ, _ := prediction.ParseType("full match 2.5 over")
	return prediction.Record{
		ID:          id,
		AlertText:   "alert",
		HomeTeamRaw: "Ajax",
		AwayTeamRaw: "PSV",
		Type:        typ,
		Result:      prediction.ResultPending,
		CreatedAt:   createdAt,
	}
}

func TestPredictionRepository_SettleIfPendingIsIdempotent(t *testing.T) {
	t.Parallel()

	repo := NewPredictionRepository()
	ctx := context.Background()
	if err := repo.Insert(ctx, newPendingRecord("p1", time.Now())); err != nil {
		t.Fatalf("insert: %v", err)
	}

	settlement := prediction.Settlement{
		PredictionID: "p1",
		Result:       prediction.ResultWon,
		FinalScore:   "2-1",
		SettledAt:    time.Date(2026, 3, 1, 21, 50, 0, 0, time.UTC),
		LogEntries:   []string{"settled"},
	}

	var applied atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.SettleIfPending(ctx, settlement)
			if err != nil {
				t.Errorf("settle: %v", err)
			}
			if ok {
				applied.Add(1)
			}
		}()
	}
	wg.Wait()

	if got := applied.Load(); got != 1 {
		t.Fatalf("unexpected applied count: got=%d want=1", got)
	}

	lost := settlement
	lost.Result = prediction.ResultLost
	if ok, _ := repo.SettleIfPending(ctx, lost); ok {
		t.Fatalf("terminal result must not be overwritten")
	}

	record, found, _ := repo.GetByID(ctx, "p1")
	if !found || record.Result != prediction.ResultWon || record.FinalScore == nil || *record.FinalScore != "2-1" {
		t.Fatalf("unexpected record after settle: %+v", record)
	}
	if len(record.ProcessingLog) != 1 {
		t.Fatalf("unexpected processing log: %+v", record.ProcessingLog)
	}
}

func TestPredictionRepository_ListPendingOrdersAndLimits(t *testing.T) {
	t.Parallel()

	repo := NewPredictionRepository()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	for i, id := range []string{"c", "a", "b"} {
		if err := repo.Insert(ctx, newPendingRecord(id, base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("insert %s: %v", id, err)
		}
	}
	if _, err := repo.SettleIfPending(ctx, prediction.Settlement{PredictionID: "a", Result: prediction.ResultVoid}); err != nil {
		t.Fatalf("settle: %v", err)
	}

	got, err := repo.ListPending(ctx, prediction.PendingCursor{}, 1)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(got) != 1 || got[0].ID != "c" {
		t.Fatalf("unexpected pending list: %+v", got)
	}

	next, err := repo.ListPending(ctx, prediction.CursorAfter(got[0]), 5)
	if err != nil {
		t.Fatalf("list next page: %v", err)
	}
	if len(next) != 1 || next[0].ID != "b" {
		t.Fatalf("unexpected next page: got=%+v want=[b]", next)
	}
}

func TestPredictionRepository_ListPendingCursorBreaksTiesByID(t *testing.T) {
	t.Parallel()

	repo := NewPredictionRepository()
	ctx := context.Background()
	createdAt := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	for _, id := range []string{"p3", "p1", "p2"} {
		if err := repo.Insert(ctx, newPendingRecord(id, createdAt)); err != nil {
			t.Fatalf("insert %s: %v", id, err)
		}
	}

	got, err := repo.ListPending(ctx, prediction.PendingCursor{CreatedAt: createdAt, ID: "p1"}, 10)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(got) != 2 || got[0].ID != "p2" || got[1].ID != "p3" {
		t.Fatalf("unexpected page: got=%+v want=[p2 p3]", got)
	}
}

func TestPredictionRepository_UpdateResolutionAppendsLog(t *testing.T) {
	t.Parallel()

	repo := NewPredictionRepository()
	ctx := context.Background()
	record := newPendingRecord("p1", time.Now())
	record.ProcessingLog = []string{"parse"}
	_ = repo.Insert(ctx, record)

	fixtureID := "sportmonks:1"
	if err := repo.UpdateResolution(ctx, "p1", prediction.Resolution{
		FixtureID:        &fixtureID,
		ResolutionSource: prediction.ResolutionSourceCorrelator,
		Confidence:       0.9,
		LogEntries:       []string{"resolve"},
	}); err != nil {
		t.Fatalf("update resolution: %v", err)
	}

	got, _, _ := repo.GetByID(ctx, "p1")
	if !got.IsResolved() || len(got.ProcessingLog) != 2 {
		t.Fatalf("unexpected record: %+v", got)
	}
	if err := repo.UpdateResolution(ctx, "missing", prediction.Resolution{}); err == nil {
		t.Fatalf("expected error for unknown prediction")
	}
}

func TestTeamAliasRepository_UpsertIsIdempotentByRawName(t *testing.T) {
	t.Parallel()

	repo := NewTeamAliasRepository(nil)
	ctx := context.Background()

	first := teamalias.Alias{RawName: "Bayern Münih", CanonicalTeamID: "sportmonks:503", Confidence: 0.8}
	second := teamalias.Alias{RawName: " bayern  münih", CanonicalTeamID: "sportmonks:503", Confidence: 0.95, Source: teamalias.SourceLiveContext}
	for _, alias := range []teamalias.Alias{first, second, second} {
		if err := repo.Upsert(ctx, alias); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}

	got, ok, _ := repo.GetByRawName(ctx, "BAYERN MÜNIH")
	if !ok {
		t.Fatalf("expected alias to be found")
	}
	if got.Confidence != 0.95 || got.Source != teamalias.SourceLiveContext {
		t.Fatalf("expected latest mapping to win: %+v", got)
	}
	if len(repo.aliases) != 1 {
		t.Fatalf("unexpected alias count: got=%d want=1", len(repo.aliases))
	}
}
