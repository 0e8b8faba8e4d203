package teamalias

import (
	"fmt"
	"strings"
	"time"
)

const (
	SourceLiveContext = "live_context"
	SourceManual      = "manual"
)

// Alias maps a raw team spelling seen in alerts to a canonical team.
type Alias struct {
	RawName             string
	CanonicalTeamID     string
	MappedCanonicalName string
	Confidence          float64
	Source              string
	UpdatedAt           time.Time
}

// NormalizeRawName is the lookup key: lowercased with collapsed whitespace.
func NormalizeRawName(raw string) string {
	return strings.Join(strings.Fields(strings.ToLower(raw)), " ")
}

func (a Alias) Validate() error {
	if NormalizeRawName(a.RawName) == "" {
		return fmt.Errorf("alias raw name is required")
	}
	if a.CanonicalTeamID == "" {
		return fmt.Errorf("alias canonical team id is required")
	}
	if a.Confidence < 0 || a.Confidence > 1 {
		return fmt.Errorf("alias confidence must be within [0,1]")
	}
	return nil
}
