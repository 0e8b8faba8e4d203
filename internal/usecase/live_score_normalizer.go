package usecase

import (
	"time"

	"github.com/riskibarqy/prediction-settlement/internal/domain/fixture"
)

// Goals sit at this position in each side's push stats array.
const liveStatsGoalsIndex = 4

// LiveDelta is a compact push-feed update before normalization. Every field
// except FixtureID may be absent.
type LiveDelta struct {
	FixtureID   string
	StatusCode  *int
	HomeStats   []int
	AwayStats   []int
	PeriodStart *int64
	HomeTeamID  string
	AwayTeamID  string
	HomeName    string
	AwayName    string
	LeagueName  string
	Country     string
}

// LiveUpdate is a normalized push update ready for the snapshot store.
type LiveUpdate struct {
	FixtureID  string
	Status     fixture.Status
	Minute     *int
	HomeScore  int
	AwayScore  int
	HasScore   bool
	HomeTeamID string
	AwayTeamID string
	HomeName   string
	AwayName   string
	LeagueName string
	Country    string
}

// NormalizeLiveDelta maps push status codes and stats into a LiveUpdate.
func NormalizeLiveDelta(delta LiveDelta, now time.Time) LiveUpdate {
	status := fixture.StatusUnknown
	if delta.StatusCode != nil {
		status = mapPushStatusCode(*delta.StatusCode)
	}

	homeGoals, homeOK := statAt(delta.HomeStats, liveStatsGoalsIndex)
	awayGoals, awayOK := statAt(delta.AwayStats, liveStatsGoalsIndex)

	return LiveUpdate{
		FixtureID:  delta.FixtureID,
		Status:     status,
		Minute:     elapsedMinute(delta.PeriodStart, status, now),
		HomeScore:  homeGoals,
		AwayScore:  awayGoals,
		HasScore:   homeOK && awayOK,
		HomeTeamID: delta.HomeTeamID,
		AwayTeamID: delta.AwayTeamID,
		HomeName:   delta.HomeName,
		AwayName:   delta.AwayName,
		LeagueName: delta.LeagueName,
		Country:    delta.Country,
	}
}

func mapPushStatusCode(code int) fixture.Status {
	switch code {
	case 0:
		return fixture.StatusNotStarted
	case 1:
		return fixture.StatusFirstHalf
	case 2:
		return fixture.StatusHalfTime
	case 3:
		return fixture.StatusSecondHalf
	case 4, 5, 6, 7:
		return fixture.StatusExtraTime
	case 60, 70:
		return fixture.StatusAbandoned
	case 100, 255:
		return fixture.StatusFinished
	default:
		return fixture.StatusUnknown
	}
}

func statAt(stats []int, idx int) (int, bool) {
	if idx < 0 || idx >= len(stats) {
		return 0, false
	}
	if stats[idx] < 0 {
		return 0, true
	}
	return stats[idx], true
}

func elapsedMinute(periodStart *int64, status fixture.Status, now time.Time) *int {
	if periodStart == nil || *periodStart <= 0 {
		return nil
	}

	elapsed := int((now.Unix() - *periodStart) / 60)
	if elapsed < 0 {
		elapsed = 0
	}
	switch status {
	case fixture.StatusSecondHalf:
		elapsed += 45
	case fixture.StatusExtraTime:
		elapsed += 90
	}
	return &elapsed
}
