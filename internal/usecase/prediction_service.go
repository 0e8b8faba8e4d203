package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/prediction-settlement/internal/domain/prediction"
	"github.com/riskibarqy/prediction-settlement/internal/domain/team"
)

// PredictionDetails is a stored record with its canonical teams attached.
type PredictionDetails struct {
	Record   prediction.Record
	HomeTeam *team.Team
	AwayTeam *team.Team
}

type PredictionService struct {
	predictions prediction.Repository
	teams       team.Repository
}

func NewPredictionService(predictions prediction.Repository, teams team.Repository) *PredictionService {
	return &PredictionService{
		predictions: predictions,
		teams:       teams,
	}
}

func (s *PredictionService) GetByID(ctx context.Context, predictionID string) (PredictionDetails, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.GetByID")
	defer span.End()

	predictionID = strings.TrimSpace(predictionID)
	if predictionID == "" {
		return PredictionDetails{}, fmt.Errorf("%w: prediction id is required", ErrInvalidInput)
	}

	record, exists, err := s.predictions.GetByID(ctx, predictionID)
	if err != nil {
		return PredictionDetails{}, fmt.Errorf("get prediction %s: %w", predictionID, err)
	}
	if !exists {
		return PredictionDetails{}, fmt.Errorf("%w: prediction=%s", ErrNotFound, predictionID)
	}

	details := PredictionDetails{Record: record}
	teamIDs := make([]string, 0, 2)
	for _, teamID := range []*string{record.HomeTeamID, record.AwayTeamID} {
		if teamID != nil && *teamID != "" {
			teamIDs = append(teamIDs, *teamID)
		}
	}
	if len(teamIDs) == 0 || s.teams == nil {
		return details, nil
	}

	teams, err := s.teams.ListByIDs(ctx, teamIDs)
	if err != nil {
		return PredictionDetails{}, fmt.Errorf("list teams for prediction %s: %w", predictionID, err)
	}
	byID := make(map[string]team.Team, len(teams))
	for _, item := range teams {
		byID[item.ID] = item
	}
	details.HomeTeam = lookupTeam(byID, record.HomeTeamID)
	details.AwayTeam = lookupTeam(byID, record.AwayTeamID)

	return details, nil
}

func lookupTeam(byID map[string]team.Team, teamID *string) *team.Team {
	if teamID == nil {
		return nil
	}
	item, ok := byID[*teamID]
	if !ok {
		return nil
	}
	return &item
}
