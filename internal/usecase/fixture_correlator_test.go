package usecase

import (
	"testing"
	"time"

	"github.com/riskibarqy/prediction-settlement/internal/domain/fixture"
)

func liveFixture(id, home, away, league, country string, minute int) fixture.LiveFixture {
	return fixture.LiveFixture{
		ExternalID:    id,
		Source:        "sportmonks",
		Home:          fixture.Side{ID: "sportmonks:" + home, Name: home},
		Away:          fixture.Side{ID: "sportmonks:" + away, Name: away},
		LeagueName:    league,
		Country:       country,
		Status:        fixture.StatusFirstHalf,
		ElapsedMinute: minute,
		UpdatedAt:     time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC),
	}
}

func TestNormalizeTeamName(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Bayern Münih":      "bayern munich",
		"FC Bayern München": "bayern munich",
		"Galatasaray SK":    "galatasaray",
		"Manchester United": "manchester",
		"Fenerbahçe":        "fenerbahce",
		"Beşiktaş JK":       "besiktas",
		"Brøndby IF":        "brondby",
		"Kasımpaşa":         "kasimpasa",
		"Borussia Dortmund": "borussia dortmund",
		"FC":                "fc",
	}
	for raw, want := range cases {
		if got := NormalizeTeamName(raw); got != want {
			t.Fatalf("NormalizeTeamName(%q): got=%q want=%q", raw, got, want)
		}
	}
}

func TestFixtureCorrelator_SingleMatch(t *testing.T) {
	t.Parallel()

	snapshot := NewFixtureSnapshot([]fixture.LiveFixture{
		liveFixture("1", "Bayern Munich", "Borussia Dortmund", "Bundesliga", "Germany", 20),
		liveFixture("2", "Galatasaray", "Fenerbahce", "Super Lig", "Turkey", 60),
	}, time.Now())

	c := NewFixtureCorrelator(DefaultCorrelationPolicy())
	got, outcome := c.Correlate(CorrelationInput{HomeRaw: "FC Bayern München", AwayRaw: "Dortmund", LeagueRaw: "Germany Bundesliga"}, snapshot)
	if outcome != CorrelationMatched || got == nil {
		t.Fatalf("expected a match, got outcome=%s", outcome)
	}
	if got.ExternalID != "1" {
		t.Fatalf("unexpected fixture: got=%s want=1", got.ExternalID)
	}
}

func TestFixtureCorrelator_AmbiguousYoungBoys(t *testing.T) {
	t.Parallel()

	snapshot := NewFixtureSnapshot([]fixture.LiveFixture{
		liveFixture("10", "BSC Young Boys", "FC Basel", "Super League", "Switzerland", 30),
		liveFixture("11", "Young Boys II", "Basel II", "Super League", "Switzerland", 31),
	}, time.Now())

	c := NewFixtureCorrelator(DefaultCorrelationPolicy())
	got, outcome := c.Correlate(CorrelationInput{HomeRaw: "Young Boys", AwayRaw: "Basel"}, snapshot)
	if got != nil || outcome != CorrelationAmbiguous {
		t.Fatalf("expected ambiguous, got fixture=%v outcome=%s", got, outcome)
	}
}

func TestFixtureCorrelator_Guards(t *testing.T) {
	t.Parallel()

	c := NewFixtureCorrelator(DefaultCorrelationPolicy())

	t.Run("women suffix must agree", func(t *testing.T) {
		snapshot := NewFixtureSnapshot([]fixture.LiveFixture{
			liveFixture("20", "Arsenal Women", "Chelsea Women", "WSL", "England", 10),
		}, time.Now())
		if _, outcome := c.Correlate(CorrelationInput{HomeRaw: "Arsenal", AwayRaw: "Chelsea"}, snapshot); outcome != CorrelationUnresolved {
			t.Fatalf("expected unresolved, got=%s", outcome)
		}
	})

	t.Run("youth league must agree", func(t *testing.T) {
		snapshot := NewFixtureSnapshot([]fixture.LiveFixture{
			liveFixture("21", "Arsenal U21", "Chelsea U21", "Premier League 2 U21", "England", 10),
			liveFixture("22", "Arsenal", "Chelsea", "Premier League", "England", 10),
		}, time.Now())
		got, outcome := c.Correlate(CorrelationInput{HomeRaw: "Arsenal", AwayRaw: "Chelsea", LeagueRaw: "England Premier League"}, snapshot)
		if outcome != CorrelationMatched || got == nil || got.ExternalID != "22" {
			t.Fatalf("expected senior fixture, got=%v outcome=%s", got, outcome)
		}
	})

	t.Run("country must agree", func(t *testing.T) {
		snapshot := NewFixtureSnapshot([]fixture.LiveFixture{
			liveFixture("30", "Nacional Montevideo", "Benfica B", "Primera Division", "Uruguay", 50),
			liveFixture("31", "Nacional", "Benfica B", "Liga Portugal 2", "Portugal", 50),
		}, time.Now())
		got, outcome := c.Correlate(CorrelationInput{HomeRaw: "Nacional", AwayRaw: "Benfica B", LeagueRaw: "Portugal Liga 2"}, snapshot)
		if outcome != CorrelationMatched || got == nil || got.ExternalID != "31" {
			t.Fatalf("expected portuguese fixture, got=%v outcome=%s", got, outcome)
		}
	})

	t.Run("no candidates", func(t *testing.T) {
		if _, outcome := c.Correlate(CorrelationInput{HomeRaw: "Ajax", AwayRaw: "PSV"}, nil); outcome != CorrelationUnresolved {
			t.Fatalf("expected unresolved on empty snapshot, got=%s", outcome)
		}
	})
}
