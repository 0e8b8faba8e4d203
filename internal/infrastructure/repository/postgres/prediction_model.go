package postgres

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

type predictionTableModel struct {
	ID               string              `db:"id"`
	SourceID         string              `db:"source_id"`
	AlertText        string              `db:"alert_text"`
	HomeTeamRaw      string              `db:"home_team_raw"`
	AwayTeamRaw      string              `db:"away_team_raw"`
	LeagueRaw        string              `db:"league_raw"`
	AlertMinute      int                 `db:"alert_minute"`
	AlertHomeScore   int                 `db:"alert_home_score"`
	AlertAwayScore   int                 `db:"alert_away_score"`
	LastGoalMinute   sql.NullInt64       `db:"last_goal_minute"`
	BotMarker        string              `db:"bot_marker"`
	HomeTeamID       sql.NullString      `db:"home_team_id"`
	AwayTeamID       sql.NullString      `db:"away_team_id"`
	BotGroupID       sql.NullString      `db:"bot_group_id"`
	FixtureID        sql.NullString      `db:"fixture_id"`
	ResolutionSource string              `db:"resolution_source"`
	Confidence       float64             `db:"confidence"`
	PredictionType   string              `db:"prediction_type"`
	Period           sql.NullString      `db:"period"`
	Threshold        decimal.NullDecimal `db:"threshold"`
	Direction        sql.NullString      `db:"direction"`
	Result           string              `db:"result"`
	SettledAt        *time.Time          `db:"settled_at"`
	FinalScore       sql.NullString      `db:"final_score"`
	ProcessingLog    []byte              `db:"processing_log"`
	CreatedAt        time.Time           `db:"created_at"`
	UpdatedAt        time.Time           `db:"updated_at"`
}

type predictionInsertModel struct {
	ID               string              `db:"id"`
	SourceID         string              `db:"source_id"`
	AlertText        string              `db:"alert_text"`
	HomeTeamRaw      string              `db:"home_team_raw"`
	AwayTeamRaw      string              `db:"away_team_raw"`
	LeagueRaw        string              `db:"league_raw"`
	AlertMinute      int                 `db:"alert_minute"`
	AlertHomeScore   int                 `db:"alert_home_score"`
	AlertAwayScore   int                 `db:"alert_away_score"`
	LastGoalMinute   sql.NullInt64       `db:"last_goal_minute"`
	BotMarker        string              `db:"bot_marker"`
	HomeTeamID       sql.NullString      `db:"home_team_id"`
	AwayTeamID       sql.NullString      `db:"away_team_id"`
	BotGroupID       sql.NullString      `db:"bot_group_id"`
	FixtureID        sql.NullString      `db:"fixture_id"`
	ResolutionSource string              `db:"resolution_source"`
	Confidence       float64             `db:"confidence"`
	PredictionType   string              `db:"prediction_type"`
	Period           sql.NullString      `db:"period"`
	Threshold        decimal.NullDecimal `db:"threshold"`
	Direction        sql.NullString      `db:"direction"`
	Result           string              `db:"result"`
	SettledAt        *time.Time          `db:"settled_at"`
	FinalScore       sql.NullString      `db:"final_score"`
	ProcessingLog    string              `db:"processing_log"`
	CreatedAt        time.Time           `db:"created_at"`
	UpdatedAt        time.Time           `db:"updated_at"`
}
