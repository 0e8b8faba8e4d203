package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/riskibarqy/prediction-settlement/internal/domain/prediction"
	"github.com/riskibarqy/prediction-settlement/internal/domain/team"
	predictionmock "github.com/riskibarqy/prediction-settlement/internal/mocks/domain/prediction"
	teammock "github.com/riskibarqy/prediction-settlement/internal/mocks/domain/team"
)

func TestPredictionService_GetByIDAttachesTeams(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	home := "sportmonks:503"
	away := "sportmonks:504"
	record := prediction.Record{ID: "pred-1", HomeTeamID: &home, AwayTeamID: &away, Result: prediction.ResultPending}

	predictions := predictionmock.NewRepository(t)
	predictions.On("GetByID", ctx, "pred-1").Return(record, true, nil).Once()
	teams := teammock.NewRepository(t)
	teams.On("ListByIDs", ctx, []string{home, away}).Return([]team.Team{
		{ID: away, DisplayName: "Fenerbahce"},
		{ID: home, DisplayName: "Galatasaray"},
	}, nil).Once()

	got, err := NewPredictionService(predictions, teams).GetByID(ctx, " pred-1 ")
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if got.HomeTeam == nil || got.HomeTeam.DisplayName != "Galatasaray" {
		t.Fatalf("unexpected home team: %+v", got.HomeTeam)
	}
	if got.AwayTeam == nil || got.AwayTeam.DisplayName != "Fenerbahce" {
		t.Fatalf("unexpected away team: %+v", got.AwayTeam)
	}
}

func TestPredictionService_GetByIDUnresolvedSkipsTeamLookup(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	predictions := predictionmock.NewRepository(t)
	predictions.On("GetByID", ctx, "pred-2").Return(prediction.Record{ID: "pred-2"}, true, nil).Once()
	teams := teammock.NewRepository(t)

	got, err := NewPredictionService(predictions, teams).GetByID(ctx, "pred-2")
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if got.HomeTeam != nil || got.AwayTeam != nil {
		t.Fatalf("expected no teams for unresolved record: %+v", got)
	}
}

func TestPredictionService_GetByIDErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	predictions := predictionmock.NewRepository(t)
	predictions.On("GetByID", ctx, "missing").Return(prediction.Record{}, false, nil).Once()
	predictions.On("GetByID", ctx, "broken").Return(prediction.Record{}, false, errors.New("connection reset")).Once()
	svc := NewPredictionService(predictions, nil)

	if _, err := svc.GetByID(ctx, "  "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank id, got=%v", err)
	}
	if _, err := svc.GetByID(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got=%v", err)
	}
	if _, err := svc.GetByID(ctx, "broken"); err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("expected storage error, got=%v", err)
	}
}
