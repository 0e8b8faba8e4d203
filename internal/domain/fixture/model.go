package fixture

import (
	"strconv"
	"strings"
	"time"
)

// Status is the normalized match state shared by every live feed.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusFirstHalf  Status = "first_half"
	StatusHalfTime   Status = "half_time"
	StatusSecondHalf Status = "second_half"
	StatusExtraTime  Status = "extra_time"
	StatusFinished   Status = "finished"
	StatusAbandoned  Status = "abandoned"
	StatusUnknown    Status = "unknown"
)

func ParseStatus(value string) Status {
	switch Status(strings.ToLower(strings.TrimSpace(value))) {
	case StatusNotStarted:
		return StatusNotStarted
	case StatusFirstHalf:
		return StatusFirstHalf
	case StatusHalfTime:
		return StatusHalfTime
	case StatusSecondHalf:
		return StatusSecondHalf
	case StatusExtraTime:
		return StatusExtraTime
	case StatusFinished:
		return StatusFinished
	case StatusAbandoned:
		return StatusAbandoned
	default:
		return StatusUnknown
	}
}

// IsHalfTimeOrLater reports whether the first half is over.
func (s Status) IsHalfTimeOrLater() bool {
	switch s {
	case StatusHalfTime, StatusSecondHalf, StatusExtraTime, StatusFinished:
		return true
	default:
		return false
	}
}

func (s Status) IsFinished() bool {
	return s == StatusFinished
}

func (s Status) IsAbandoned() bool {
	return s == StatusAbandoned
}

func (s Status) IsLive() bool {
	switch s {
	case StatusFirstHalf, StatusHalfTime, StatusSecondHalf, StatusExtraTime:
		return true
	default:
		return false
	}
}

type Score struct {
	Home int
	Away int
}

func (s Score) Total() int {
	return s.Home + s.Away
}

func (s Score) String() string {
	return strconv.Itoa(s.Home) + "-" + strconv.Itoa(s.Away)
}

// Side is one participant as reported by the feed. ID is the canonical team id.
type Side struct {
	ID   string
	Name string
}

// LiveFixture is a transient view of one in-progress match, never persisted.
type LiveFixture struct {
	ExternalID    string
	Source        string
	Home          Side
	Away          Side
	LeagueName    string
	Country       string
	Status        Status
	ElapsedMinute int
	CurrentScore  Score
	HalfTimeScore *Score
	KickoffAt     time.Time
	UpdatedAt     time.Time
}

// Key identifies the fixture across refreshes of the same source.
func (f LiveFixture) Key() string {
	return f.Source + ":" + f.ExternalID
}
