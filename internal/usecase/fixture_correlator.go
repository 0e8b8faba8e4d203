package usecase

import (
	"strings"
	"unicode/utf8"

	"github.com/riskibarqy/prediction-settlement/internal/domain/fixture"
)

type CorrelationOutcome string

const (
	CorrelationMatched    CorrelationOutcome = "matched"
	CorrelationUnresolved CorrelationOutcome = "unresolved"
	CorrelationAmbiguous  CorrelationOutcome = "ambiguous"
)

const correlationMinSharedWord = 4

type CorrelationInput struct {
	HomeRaw   string
	AwayRaw   string
	LeagueRaw string
}

// FixtureCorrelator links a prediction to exactly one live fixture by fuzzy
// team-name matching and league guards.
type FixtureCorrelator struct {
	policy CorrelationPolicy
}

func NewFixtureCorrelator(policy CorrelationPolicy) *FixtureCorrelator {
	if policy.Categories == nil && policy.Countries == nil && policy.ExclusionSuffixes == nil {
		policy = DefaultCorrelationPolicy()
	}
	return &FixtureCorrelator{policy: policy}
}

// Correlate returns the single matching fixture. Zero candidates yield
// CorrelationUnresolved and several yield CorrelationAmbiguous.
func (c *FixtureCorrelator) Correlate(in CorrelationInput, snapshot *FixtureSnapshot) (*fixture.LiveFixture, CorrelationOutcome) {
	home := NormalizeTeamName(in.HomeRaw)
	away := NormalizeTeamName(in.AwayRaw)
	if home == "" || away == "" {
		return nil, CorrelationUnresolved
	}
	homeSuffix := c.policy.exclusionSuffix(in.HomeRaw)
	awaySuffix := c.policy.exclusionSuffix(in.AwayRaw)

	var candidates []fixture.LiveFixture
	for _, item := range snapshot.Fixtures() {
		if !sideOverlaps(home, NormalizeTeamName(item.Home.Name)) || !sideOverlaps(away, NormalizeTeamName(item.Away.Name)) {
			continue
		}
		if c.policy.exclusionSuffix(item.Home.Name) != homeSuffix || c.policy.exclusionSuffix(item.Away.Name) != awaySuffix {
			continue
		}
		if !c.policy.LeagueCompatible(in.LeagueRaw, item.LeagueName, item.Country) {
			continue
		}
		candidates = append(candidates, item)
	}

	switch len(candidates) {
	case 0:
		return nil, CorrelationUnresolved
	case 1:
		match := candidates[0]
		return &match, CorrelationMatched
	default:
		return nil, CorrelationAmbiguous
	}
}

// sideOverlaps is true on containment or a shared word of at least
// correlationMinSharedWord runes.
func sideOverlaps(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return true
	}

	words := make(map[string]struct{})
	for _, w := range strings.Fields(a) {
		if utf8.RuneCountInString(w) >= correlationMinSharedWord {
			words[w] = struct{}{}
		}
	}
	for _, w := range strings.Fields(b) {
		if _, ok := words[w]; ok {
			return true
		}
	}
	return false
}
