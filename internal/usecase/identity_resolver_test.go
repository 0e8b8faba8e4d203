package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/riskibarqy/prediction-settlement/internal/domain/fixture"
	"github.com/riskibarqy/prediction-settlement/internal/domain/prediction"
	"github.com/riskibarqy/prediction-settlement/internal/domain/team"
	"github.com/riskibarqy/prediction-settlement/internal/domain/teamalias"
	teamaliasmock "github.com/riskibarqy/prediction-settlement/internal/mocks/domain/teamalias"
	teammock "github.com/riskibarqy/prediction-settlement/internal/mocks/domain/team"
)

func bundesligaSnapshot() *FixtureSnapshot {
	return NewFixtureSnapshot([]fixture.LiveFixture{
		{
			ExternalID:    "19134",
			Source:        "sportmonks",
			Home:          fixture.Side{ID: "sportmonks:503", Name: "Bayern Munich"},
			Away:          fixture.Side{ID: "sportmonks:68", Name: "Borussia Dortmund"},
			LeagueName:    "Bundesliga",
			Country:       "Germany",
			Status:        fixture.StatusFirstHalf,
			ElapsedMinute: 24,
		},
		{
			ExternalID:    "19135",
			Source:        "sportmonks",
			Home:          fixture.Side{ID: "sportmonks:3321", Name: "Galatasaray"},
			Away:          fixture.Side{ID: "sportmonks:3322", Name: "Fenerbahce"},
			LeagueName:    "Super Lig",
			Country:       "Turkey",
			Status:        fixture.StatusSecondHalf,
			ElapsedMinute: 70,
		},
	}, time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC))
}

func TestIdentityResolver_LiveContextLearnsAliases(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	aliasRepo := teamaliasmock.NewRepository(t)
	teamRepo := teammock.NewRepository(t)

	aliasRepo.On("GetByRawName", ctx, "bayern münih").Return(teamalias.Alias{}, false, nil).Once()
	teamRepo.On("Upsert", ctx, team.Team{ID: "sportmonks:503", DisplayName: "Bayern Munich"}).Return(nil).Once()
	teamRepo.On("Upsert", ctx, team.Team{ID: "sportmonks:68", DisplayName: "Borussia Dortmund"}).Return(nil).Once()
	aliasRepo.
		On("Upsert", ctx, mock.MatchedBy(func(a teamalias.Alias) bool {
			return a.RawName == "bayern münih" && a.CanonicalTeamID == "sportmonks:503" && a.Confidence == 0.95 && a.Source == teamalias.SourceLiveContext
		})).
		Return(nil).
		Once()
	aliasRepo.
		On("Upsert", ctx, mock.MatchedBy(func(a teamalias.Alias) bool {
			return a.RawName == "dortmund" && a.CanonicalTeamID == "sportmonks:68" && a.MappedCanonicalName == "Borussia Dortmund"
		})).
		Return(nil).
		Once()

	resolver := NewIdentityResolver(aliasRepo, teamRepo, IdentityResolverConfig{}, nil)
	got := resolver.Resolve(ctx, "Bayern Münih", "Dortmund", 20, bundesligaSnapshot())

	if got.Source != prediction.ResolutionSourceLiveContext {
		t.Fatalf("unexpected source: got=%s want=%s", got.Source, prediction.ResolutionSourceLiveContext)
	}
	if got.Confidence != 0.95 {
		t.Fatalf("unexpected confidence: got=%v want=0.95", got.Confidence)
	}
	if got.FixtureID == nil || *got.FixtureID != "sportmonks:19134" {
		t.Fatalf("unexpected fixture id: %v", got.FixtureID)
	}
	if got.HomeTeamID == nil || *got.HomeTeamID != "sportmonks:503" {
		t.Fatalf("unexpected home team id: %v", got.HomeTeamID)
	}
}

func TestIdentityResolver_MemoryHit(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	aliasRepo := teamaliasmock.NewRepository(t)
	aliasRepo.On("GetByRawName", ctx, "gala").Return(teamalias.Alias{RawName: "gala", CanonicalTeamID: "sportmonks:3321"}, true, nil).Once()
	aliasRepo.On("GetByRawName", ctx, "fener").Return(teamalias.Alias{RawName: "fener", CanonicalTeamID: "sportmonks:3322"}, true, nil).Once()

	resolver := NewIdentityResolver(aliasRepo, nil, IdentityResolverConfig{}, nil)
	got := resolver.Resolve(ctx, "Gala", "Fener", 5, bundesligaSnapshot())

	if got.Source != prediction.ResolutionSourceMemory || got.Confidence != 1.0 {
		t.Fatalf("unexpected resolution: source=%s confidence=%v", got.Source, got.Confidence)
	}
	if got.FixtureID == nil || *got.FixtureID != "sportmonks:19135" {
		t.Fatalf("expected fixture located by team ids, got=%v", got.FixtureID)
	}
}

func TestIdentityResolver_MemoryHitOnMergedFixture(t *testing.T) {
	t.Parallel()

	polled := fixture.LiveFixture{
		ExternalID:    "19135",
		Source:        "sportmonks",
		Home:          fixture.Side{ID: "sportmonks:3321", Name: "Galatasaray"},
		Away:          fixture.Side{ID: "sportmonks:3322", Name: "Fenerbahce"},
		LeagueName:    "Super Lig",
		Country:       "Turkey",
		Status:        fixture.StatusSecondHalf,
		ElapsedMinute: 70,
		UpdatedAt:     time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC),
	}
	pushed := polled
	pushed.ExternalID = "777"
	pushed.Source = PushFeedSource
	pushed.Home.ID = "pushfeed:galatasaray"
	pushed.Away.ID = "pushfeed:fenerbahce"
	pushed.LeagueName = ""
	pushed.Country = ""
	pushed.ElapsedMinute = 71
	pushed.UpdatedAt = polled.UpdatedAt.Add(30 * time.Second)
	snapshot := NewFixtureSnapshot([]fixture.LiveFixture{polled, pushed}, pushed.UpdatedAt)

	ctx := context.Background()
	aliasRepo := teamaliasmock.NewRepository(t)
	aliasRepo.On("GetByRawName", ctx, "gala").Return(teamalias.Alias{RawName: "gala", CanonicalTeamID: "sportmonks:3321"}, true, nil).Once()
	aliasRepo.On("GetByRawName", ctx, "fener").Return(teamalias.Alias{RawName: "fener", CanonicalTeamID: "sportmonks:3322"}, true, nil).Once()

	resolver := NewIdentityResolver(aliasRepo, nil, IdentityResolverConfig{}, nil)
	got := resolver.Resolve(ctx, "Gala", "Fener", 70, snapshot)

	if got.Source != prediction.ResolutionSourceMemory {
		t.Fatalf("unexpected source: got=%s want=%s", got.Source, prediction.ResolutionSourceMemory)
	}
	if got.FixtureID == nil || *got.FixtureID != pushed.Key() {
		t.Fatalf("expected merged fixture through polled team ids, got=%v", got.FixtureID)
	}
}

func TestIdentityResolver_MemoryHitWithoutFixture(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	aliasRepo := teamaliasmock.NewRepository(t)
	aliasRepo.On("GetByRawName", ctx, "ajax").Return(teamalias.Alias{CanonicalTeamID: "sportmonks:1"}, true, nil).Once()
	aliasRepo.On("GetByRawName", ctx, "psv").Return(teamalias.Alias{CanonicalTeamID: "sportmonks:2"}, true, nil).Once()

	resolver := NewIdentityResolver(aliasRepo, nil, IdentityResolverConfig{}, nil)
	got := resolver.Resolve(ctx, "Ajax", "PSV", 30, bundesligaSnapshot())

	if got.Source != prediction.ResolutionSourceMemory {
		t.Fatalf("unexpected source: got=%s", got.Source)
	}
	if got.FixtureID != nil {
		t.Fatalf("expected nil fixture, got=%s", *got.FixtureID)
	}
}

func TestIdentityResolver_StorageErrorDegrades(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	aliasRepo := teamaliasmock.NewRepository(t)
	aliasRepo.On("GetByRawName", ctx, "galatasaray").Return(teamalias.Alias{}, false, errors.New("connection refused")).Once()
	aliasRepo.On("Upsert", ctx, mock.Anything).Return(errors.New("connection refused")).Twice()

	resolver := NewIdentityResolver(aliasRepo, nil, IdentityResolverConfig{}, nil)
	got := resolver.Resolve(ctx, "Galatasaray", "Fenerbahçe", 72, bundesligaSnapshot())

	if got.Source != prediction.ResolutionSourceLiveContext {
		t.Fatalf("expected live context despite storage errors, got=%s", got.Source)
	}
}

func TestIdentityResolver_OutsideToleranceIsUnresolved(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	aliasRepo := teamaliasmock.NewRepository(t)
	aliasRepo.On("GetByRawName", ctx, mock.Anything).Return(teamalias.Alias{}, false, nil)

	resolver := NewIdentityResolver(aliasRepo, nil, IdentityResolverConfig{MinuteTolerance: 5}, nil)
	got := resolver.Resolve(ctx, "Bayern", "Dortmund", 40, bundesligaSnapshot())

	if got.Source != prediction.ResolutionSourceNone || got.FixtureID != nil || got.Confidence != 0 {
		t.Fatalf("expected no resolution, got=%+v", got)
	}
}

func TestIdentityResolver_AmbiguousLiveContext(t *testing.T) {
	t.Parallel()

	snapshot := NewFixtureSnapshot([]fixture.LiveFixture{
		{ExternalID: "1", Source: "sportmonks", Home: fixture.Side{ID: "a", Name: "Young Boys"}, Away: fixture.Side{ID: "b", Name: "Basel"}, ElapsedMinute: 30},
		{ExternalID: "2", Source: "sportmonks", Home: fixture.Side{ID: "c", Name: "Young Boys II"}, Away: fixture.Side{ID: "d", Name: "Basel II"}, ElapsedMinute: 31},
	}, time.Now())

	resolver := NewIdentityResolver(nil, nil, IdentityResolverConfig{}, nil)
	got := resolver.Resolve(context.Background(), "Young Boys", "Basel", 30, snapshot)
	if got.Resolved() {
		t.Fatalf("expected ambiguous live context to be unresolved, got=%+v", got)
	}
}

func TestNamesMatch(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw, candidate string
		want           bool
	}{
		{"Bayern Münih", "Bayern Munich", true},
		{"Dortmund", "Borussia Dortmund", true},
		{"Man City", "Manchester City", true},
		{"Real Madrid", "Atletico Madrid", false},
		{"", "Ajax", false},
	}
	for _, tc := range cases {
		if got := namesMatch(tc.raw, tc.candidate, 4); got != tc.want {
			t.Fatalf("namesMatch(%q, %q): got=%v want=%v", tc.raw, tc.candidate, got, tc.want)
		}
	}
}
