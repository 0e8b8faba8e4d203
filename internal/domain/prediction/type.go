package prediction

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

type Period string

const (
	PeriodFirstHalf  Period = "first half"
	PeriodSecondHalf Period = "second half"
	PeriodFullMatch  Period = "full match"
)

type Direction string

const (
	DirectionOver  Direction = "over"
	DirectionUnder Direction = "under"
)

// Legacy kinds decided only once the match is finished.
const (
	LegacyBothTeamsScore = "both teams score"
	LegacyHomeWin        = "home win"
	LegacyAwayWin        = "away win"
	LegacyDraw           = "draw"
)

// Type is either a structured goal-line prediction or a free-text legacy kind.
type Type struct {
	Period    Period
	Threshold decimal.Decimal
	Direction Direction
	Legacy    string
}

var structuredTypePattern = regexp.MustCompile(`^(first half|second half|full match)\s+(\d+(?:\.\d+)?)\s+(over|under)$`)

func NewGoalLine(period Period, threshold decimal.Decimal, direction Direction) Type {
	return Type{Period: period, Threshold: threshold, Direction: direction}
}

func (t Type) IsStructured() bool {
	return t.Legacy == "" && t.Period != ""
}

func (t Type) String() string {
	if !t.IsStructured() {
		return t.Legacy
	}
	return fmt.Sprintf("%s %s %s", t.Period, t.Threshold.String(), t.Direction)
}

// ParseType accepts "<period> <threshold> <direction>" or any legacy text.
func ParseType(raw string) (Type, error) {
	normalized := strings.Join(strings.Fields(strings.ToLower(raw)), " ")
	if normalized == "" {
		return Type{}, fmt.Errorf("prediction type is required")
	}

	match := structuredTypePattern.FindStringSubmatch(normalized)
	if match == nil {
		return Type{Legacy: normalized}, nil
	}

	threshold, err := decimal.NewFromString(match[2])
	if err != nil {
		return Type{}, fmt.Errorf("parse threshold %q: %w", match[2], err)
	}
	return NewGoalLine(Period(match[1]), threshold, Direction(match[3])), nil
}
