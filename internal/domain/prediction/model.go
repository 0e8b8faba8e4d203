package prediction

import (
	"fmt"
	"time"
)

type Result string

const (
	ResultPending Result = "pending"
	ResultWon     Result = "won"
	ResultLost    Result = "lost"
	ResultVoid    Result = "void"
)

func (r Result) IsTerminal() bool {
	return r == ResultWon || r == ResultLost || r == ResultVoid
}

const (
	ResolutionSourceMemory      = "memory"
	ResolutionSourceLiveContext = "live_context"
	ResolutionSourceCorrelator  = "correlator"
	ResolutionSourceNone        = "none"
)

// Record is one stored prediction and its lifecycle state.
type Record struct {
	ID               string
	SourceID         string
	AlertText        string
	HomeTeamRaw      string
	AwayTeamRaw      string
	LeagueRaw        string
	AlertMinute      int
	AlertHomeScore   int
	AlertAwayScore   int
	LastGoalMinute   *int
	BotMarker        string
	HomeTeamID       *string
	AwayTeamID       *string
	BotGroupID       *string
	FixtureID        *string
	ResolutionSource string
	Confidence       float64
	Type             Type
	Result           Result
	SettledAt        *time.Time
	FinalScore       *string
	ProcessingLog    []string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (r Record) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("prediction id is required")
	}
	if r.AlertText == "" {
		return fmt.Errorf("prediction alert text is required")
	}
	if r.HomeTeamRaw == "" || r.AwayTeamRaw == "" {
		return fmt.Errorf("prediction team names are required")
	}
	if r.Type.String() == "" {
		return fmt.Errorf("prediction type is required")
	}
	switch r.Result {
	case ResultPending, ResultWon, ResultLost, ResultVoid:
	default:
		return fmt.Errorf("invalid prediction result %q", r.Result)
	}

	return nil
}

// PendingCursor is a keyset position over pending records. The zero value
// starts at the oldest record.
type PendingCursor struct {
	CreatedAt time.Time
	ID        string
}

func (c PendingCursor) IsZero() bool {
	return c.CreatedAt.IsZero() && c.ID == ""
}

// CursorAfter returns the cursor that continues a listing after r.
func CursorAfter(r Record) PendingCursor {
	return PendingCursor{CreatedAt: r.CreatedAt, ID: r.ID}
}

// IsResolved reports whether the record is linked to a live fixture.
func (r Record) IsResolved() bool {
	return r.FixtureID != nil && *r.FixtureID != ""
}

// Resolution carries identity fields discovered after insert.
type Resolution struct {
	HomeTeamID       *string
	AwayTeamID       *string
	FixtureID        *string
	ResolutionSource string
	Confidence       float64
	LogEntries       []string
}

// Settlement moves a pending record into a terminal result.
type Settlement struct {
	PredictionID string
	Result       Result
	FinalScore   string
	SettledAt    time.Time
	LogEntries   []string
}
