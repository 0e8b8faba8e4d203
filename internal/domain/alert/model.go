package alert

import (
	"time"

	"github.com/riskibarqy/prediction-settlement/internal/domain/prediction"
)

// RawAlert is an alert message exactly as received from a bot channel.
type RawAlert struct {
	Text       string
	ReceivedAt time.Time
	SourceID   string
}

type Score struct {
	Home int
	Away int
}

func (s Score) Total() int {
	return s.Home + s.Away
}

// ParsedPrediction is the structured content recovered from one alert.
type ParsedPrediction struct {
	HomeTeamRaw    string
	AwayTeamRaw    string
	LeagueRaw      string
	Minute         int
	Score          Score
	LastGoalMinute *int
	// BotMarker is the leading numeric alert code; empty when absent.
	BotMarker      string
	PredictionType prediction.Type
}
