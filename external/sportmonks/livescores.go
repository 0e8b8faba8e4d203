package sportmonks

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/prediction-settlement/internal/domain/fixture"
)

const (
	SourceName         = "sportmonks"
	livescoresPath     = "/livescores/inplay"
	livescoresInclude  = "participants;scores;state;league.country;periods"
	maxLivescoresPages = 5
	scoreCurrent       = "CURRENT"
	scoreFirstHalf     = "1ST_HALF"
)

// Name identifies the feed in snapshot logs.
func (c *Client) Name() string {
	return SourceName
}

// ListLive returns every in-play fixture, following pagination up to a
// fixed page limit.
func (c *Client) ListLive(ctx context.Context) ([]fixture.LiveFixture, error) {
	now := time.Now().UTC()
	out := make([]fixture.LiveFixture, 0, 64)
	for page := 1; page <= maxLivescoresPages; page++ {
		query := map[string]string{"include": livescoresInclude}
		if page > 1 {
			query["page"] = strconv.Itoa(page)
		}

		var envelope livescoresEnvelope
		if _, err := c.doJSON(ctx, livescoresPath, query, &envelope); err != nil {
			return nil, fmt.Errorf("fetch livescores page=%d: %w", page, err)
		}
		for _, item := range envelope.Data {
			if mapped, ok := mapLiveFixture(item, now); ok {
				out = append(out, mapped)
			}
		}
		if envelope.Pagination == nil || !envelope.Pagination.HasMore {
			break
		}
	}
	return out, nil
}

func mapLiveFixture(item liveFixtureItem, now time.Time) (fixture.LiveFixture, bool) {
	if item.ID <= 0 {
		return fixture.LiveFixture{}, false
	}
	home, away := resolveSides(item.Participants)
	if home.Name == "" || away.Name == "" {
		return fixture.LiveFixture{}, false
	}

	stateID := item.StateID
	developerName := ""
	if item.State.Set {
		if stateID == 0 {
			stateID = item.State.Data.ID
		}
		developerName = item.State.Data.DeveloperName
	}

	out := fixture.LiveFixture{
		ExternalID:    strconv.FormatInt(item.ID, 10),
		Source:        SourceName,
		Home:          home,
		Away:          away,
		Status:        mapState(stateID, developerName),
		ElapsedMinute: elapsedMinute(item.Periods),
		KickoffAt:     parseKickoff(item),
		UpdatedAt:     now,
	}
	if item.League.Set {
		out.LeagueName = strings.TrimSpace(item.League.Data.Name)
		if item.League.Data.Country.Set {
			out.Country = strings.TrimSpace(item.League.Data.Country.Data.Name)
		}
	}

	current, halfTime := resolveScores(item.Scores, item.Participants)
	out.CurrentScore = current
	out.HalfTimeScore = halfTime
	return out, true
}

func resolveSides(participants []fixtureParticipant) (fixture.Side, fixture.Side) {
	var home, away fixture.Side
	for _, item := range participants {
		side := fixture.Side{
			ID:   SourceName + ":" + strconv.FormatInt(item.ID, 10),
			Name: strings.TrimSpace(item.Name),
		}
		switch strings.ToLower(strings.TrimSpace(item.Meta.Location)) {
		case "home":
			home = side
		case "away":
			away = side
		}
	}
	return home, away
}

// resolveScores reads the CURRENT score and, once known, the 1ST_HALF score.
func resolveScores(scores []fixtureScoreItem, participants []fixtureParticipant) (fixture.Score, *fixture.Score) {
	var homeID, awayID int64
	for _, item := range participants {
		switch strings.ToLower(strings.TrimSpace(item.Meta.Location)) {
		case "home":
			homeID = item.ID
		case "away":
			awayID = item.ID
		}
	}

	var current fixture.Score
	var halfTime fixture.Score
	halfTimeSeen := false
	for _, score := range scores {
		goals, ok := score.goals()
		if !ok {
			continue
		}

		isHome := score.side() == "home" || (score.side() == "" && score.ParticipantID == homeID && homeID > 0)
		isAway := score.side() == "away" || (score.side() == "" && score.ParticipantID == awayID && awayID > 0)
		if !isHome && !isAway {
			continue
		}

		switch strings.ToUpper(strings.TrimSpace(score.Description)) {
		case scoreCurrent:
			if isHome {
				current.Home = goals
			} else {
				current.Away = goals
			}
		case scoreFirstHalf:
			halfTimeSeen = true
			if isHome {
				halfTime.Home = goals
			} else {
				halfTime.Away = goals
			}
		}
	}

	if !halfTimeSeen {
		return current, nil
	}
	return current, &halfTime
}

// mapState maps SportMonks state ids, falling back to the developer name.
func mapState(stateID int64, developerName string) fixture.Status {
	switch stateID {
	case 1, 13, 16:
		return fixture.StatusNotStarted
	case 2:
		return fixture.StatusFirstHalf
	case 3:
		return fixture.StatusHalfTime
	case 22:
		return fixture.StatusSecondHalf
	case 4, 6, 9, 21, 25:
		return fixture.StatusExtraTime
	case 5, 7, 8, 14, 17:
		return fixture.StatusFinished
	case 10, 12, 15:
		return fixture.StatusAbandoned
	}

	switch strings.ToUpper(strings.TrimSpace(developerName)) {
	case "NS", "TBA", "DELAYED":
		return fixture.StatusNotStarted
	case "INPLAY_1ST_HALF":
		return fixture.StatusFirstHalf
	case "HT":
		return fixture.StatusHalfTime
	case "INPLAY_2ND_HALF":
		return fixture.StatusSecondHalf
	case "BREAK", "INPLAY_ET", "INPLAY_PENALTIES", "EXTRA_TIME_BREAK", "PEN_BREAK":
		return fixture.StatusExtraTime
	case "FT", "AET", "FT_PEN", "WO", "AWARDED":
		return fixture.StatusFinished
	case "POSTPONED", "CANCELLED", "ABANDONED":
		return fixture.StatusAbandoned
	default:
		return fixture.StatusUnknown
	}
}

// elapsedMinute reads the ticking period; a stopped clock keeps the last
// period's minutes.
func elapsedMinute(periods []periodItem) int {
	minute := 0
	for _, period := range periods {
		if period.Minutes == nil {
			continue
		}
		if period.Ticking {
			return max(*period.Minutes, 0)
		}
		if *period.Minutes > minute {
			minute = *period.Minutes
		}
	}
	return minute
}

func parseKickoff(item liveFixtureItem) time.Time {
	if item.StartingTS > 0 {
		return time.Unix(item.StartingTS, 0).UTC()
	}
	value := strings.TrimSpace(item.StartingAt)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC()
		}
	}
	return time.Time{}
}
