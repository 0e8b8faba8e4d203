package usecase

import (
	"context"
	"time"

	"github.com/riskibarqy/prediction-settlement/internal/domain/fixture"
	"github.com/riskibarqy/prediction-settlement/internal/domain/prediction"
	"github.com/riskibarqy/prediction-settlement/internal/domain/team"
	"github.com/riskibarqy/prediction-settlement/internal/domain/teamalias"
	"github.com/riskibarqy/prediction-settlement/internal/platform/logging"
)

const (
	defaultResolverMinuteTolerance  = 10
	defaultResolverNamePrefixLength = 4

	memoryConfidence      = 1.0
	liveContextConfidence = 0.95
)

type IdentityResolverConfig struct {
	MinuteTolerance  int
	NamePrefixLength int
}

type IdentityResolution struct {
	HomeTeamID *string
	AwayTeamID *string
	FixtureID  *string
	Confidence float64
	Source     string
}

func (r IdentityResolution) Resolved() bool {
	return r.Source != prediction.ResolutionSourceNone
}

// IdentityResolver maps raw team names to canonical teams and a fixture. It
// tries learned aliases first, then matches against live fixtures and
// learns from a unique hit.
type IdentityResolver struct {
	aliases teamalias.Repository
	teams   team.Repository
	cfg     IdentityResolverConfig
	logger  *logging.Logger
	now     func() time.Time
}

func NewIdentityResolver(aliases teamalias.Repository, teams team.Repository, cfg IdentityResolverConfig, logger *logging.Logger) *IdentityResolver {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.MinuteTolerance <= 0 {
		cfg.MinuteTolerance = defaultResolverMinuteTolerance
	}
	if cfg.NamePrefixLength <= 0 {
		cfg.NamePrefixLength = defaultResolverNamePrefixLength
	}

	return &IdentityResolver{
		aliases: aliases,
		teams:   teams,
		cfg:     cfg,
		logger:  logger.Named("identity_resolver"),
		now:     time.Now,
	}
}

// Resolve never fails: storage errors are logged and the next tier is tried.
func (r *IdentityResolver) Resolve(ctx context.Context, rawHome, rawAway string, minute int, snapshot *FixtureSnapshot) IdentityResolution {
	ctx, span := startUsecaseSpan(ctx, "usecase.IdentityResolver.Resolve")
	defer span.End()

	if res, ok := r.resolveFromMemory(ctx, rawHome, rawAway, snapshot); ok {
		return res
	}
	if res, ok := r.resolveFromLiveContext(ctx, rawHome, rawAway, minute, snapshot); ok {
		return res
	}

	return IdentityResolution{Source: prediction.ResolutionSourceNone}
}

func (r *IdentityResolver) resolveFromMemory(ctx context.Context, rawHome, rawAway string, snapshot *FixtureSnapshot) (IdentityResolution, bool) {
	if r.aliases == nil {
		return IdentityResolution{}, false
	}

	home, ok := r.lookupAlias(ctx, rawHome)
	if !ok {
		return IdentityResolution{}, false
	}
	away, ok := r.lookupAlias(ctx, rawAway)
	if !ok {
		return IdentityResolution{}, false
	}

	res := IdentityResolution{
		HomeTeamID: stringPtr(home.CanonicalTeamID),
		AwayTeamID: stringPtr(away.CanonicalTeamID),
		Confidence: memoryConfidence,
		Source:     prediction.ResolutionSourceMemory,
	}
	if item, found := snapshot.FindByTeams(home.CanonicalTeamID, away.CanonicalTeamID); found {
		res.FixtureID = stringPtr(item.Key())
	}
	return res, true
}

func (r *IdentityResolver) lookupAlias(ctx context.Context, raw string) (teamalias.Alias, bool) {
	key := teamalias.NormalizeRawName(raw)
	if key == "" {
		return teamalias.Alias{}, false
	}

	alias, ok, err := r.aliases.GetByRawName(ctx, key)
	if err != nil {
		r.logger.WarnContext(ctx, "alias lookup failed, falling back", "raw_name", key, "error", err)
		return teamalias.Alias{}, false
	}
	return alias, ok
}

func (r *IdentityResolver) resolveFromLiveContext(ctx context.Context, rawHome, rawAway string, minute int, snapshot *FixtureSnapshot) (IdentityResolution, bool) {
	var matches []fixture.LiveFixture
	for _, item := range snapshot.Fixtures() {
		if absInt(item.ElapsedMinute-minute) > r.cfg.MinuteTolerance {
			continue
		}
		if !namesMatch(rawHome, item.Home.Name, r.cfg.NamePrefixLength) || !namesMatch(rawAway, item.Away.Name, r.cfg.NamePrefixLength) {
			continue
		}
		matches = append(matches, item)
	}

	if len(matches) != 1 {
		if len(matches) > 1 {
			r.logger.DebugContext(ctx, "live context match is ambiguous", "home", rawHome, "away", rawAway, "candidates", len(matches))
		}
		return IdentityResolution{}, false
	}

	match := matches[0]
	r.learn(ctx, rawHome, match.Home)
	r.learn(ctx, rawAway, match.Away)

	return IdentityResolution{
		HomeTeamID: stringPtr(match.Home.ID),
		AwayTeamID: stringPtr(match.Away.ID),
		FixtureID:  stringPtr(match.Key()),
		Confidence: liveContextConfidence,
		Source:     prediction.ResolutionSourceLiveContext,
	}, true
}

// learn persists the canonical team and the alias. Failures only cost a
// future memory hit, so they are logged and swallowed.
func (r *IdentityResolver) learn(ctx context.Context, raw string, side fixture.Side) {
	if side.ID == "" {
		return
	}

	if r.teams != nil {
		if err := r.teams.Upsert(ctx, team.Team{ID: side.ID, DisplayName: side.Name}); err != nil {
			r.logger.WarnContext(ctx, "canonical team upsert failed", "team_id", side.ID, "error", err)
			return
		}
	}
	if r.aliases == nil {
		return
	}

	alias := teamalias.Alias{
		RawName:             teamalias.NormalizeRawName(raw),
		CanonicalTeamID:     side.ID,
		MappedCanonicalName: side.Name,
		Confidence:          liveContextConfidence,
		Source:              teamalias.SourceLiveContext,
		UpdatedAt:           r.now(),
	}
	if err := r.aliases.Upsert(ctx, alias); err != nil {
		r.logger.WarnContext(ctx, "alias upsert failed", "raw_name", alias.RawName, "team_id", side.ID, "error", err)
	}
}

func stringPtr(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
