package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/riskibarqy/prediction-settlement/internal/domain/fixture"
	"github.com/riskibarqy/prediction-settlement/internal/platform/logging"
)

const (
	PushFeedSource                  = "pushfeed"
	defaultFeedRefreshTimeout       = 10 * time.Second
	defaultFixtureStaleAfter        = 3 * time.Hour
	defaultFinishedFixtureRetention = 30 * time.Minute

	mergeKickoffWindow   = 15 * time.Minute
	mergeMinuteTolerance = 10
)

// FixtureSnapshot is an immutable merged view of every live fixture known at
// one instant. A nil snapshot behaves as empty.
type FixtureSnapshot struct {
	fixtures []fixture.LiveFixture
	byKey    map[string]int
	byTeams  map[string][]int
	takenAt  time.Time
}

type mergedFixture struct {
	item    fixture.LiveFixture
	sources map[string]struct{}
	aliases []string
	teams   []string
}

// accepts reports whether item is another copy of the merged fixture. Each
// source contributes at most one copy, so two fixtures from the same feed
// never collapse.
func (m *mergedFixture) accepts(item fixture.LiveFixture) bool {
	key := item.Key()
	for _, alias := range m.aliases {
		if alias == key {
			return true
		}
	}
	if _, taken := m.sources[item.Source]; taken {
		return false
	}
	return sameFixtureContext(m.item, item)
}

func (m *mergedFixture) add(item fixture.LiveFixture) {
	m.sources[item.Source] = struct{}{}
	m.aliases = appendUnique(m.aliases, item.Key())
	m.teams = appendUnique(m.teams, teamPairKey(item.Home.ID, item.Away.ID))

	winner, loser := m.item, item
	if item.UpdatedAt.After(m.item.UpdatedAt) || m.item.Key() == item.Key() {
		winner, loser = item, m.item
	}
	if winner.HalfTimeScore == nil && loser.HalfTimeScore != nil {
		ht := *loser.HalfTimeScore
		winner.HalfTimeScore = &ht
	}
	m.item = winner
}

// NewFixtureSnapshot merges copies of one fixture reported by different
// sources. Copies merge only when the team pairing, league, country and
// kickoff (or elapsed minute) agree. The most recently updated copy wins and
// inherits a known half-time score.
func NewFixtureSnapshot(items []fixture.LiveFixture, takenAt time.Time) *FixtureSnapshot {
	byPair := make(map[string][]*mergedFixture, len(items))
	order := make([]*mergedFixture, 0, len(items))
	for _, item := range items {
		pair := fixturePairKey(item)

		var target *mergedFixture
		for _, candidate := range byPair[pair] {
			if candidate.accepts(item) {
				target = candidate
				break
			}
		}
		if target == nil {
			target = &mergedFixture{
				item:    item,
				sources: make(map[string]struct{}, 2),
			}
			byPair[pair] = append(byPair[pair], target)
			order = append(order, target)
		}
		target.add(item)
	}

	snapshot := &FixtureSnapshot{
		fixtures: make([]fixture.LiveFixture, 0, len(order)),
		byKey:    make(map[string]int, len(items)),
		byTeams:  make(map[string][]int, len(items)),
		takenAt:  takenAt,
	}
	for idx, m := range order {
		snapshot.fixtures = append(snapshot.fixtures, m.item)
		for _, key := range m.aliases {
			snapshot.byKey[key] = idx
		}
		for _, teams := range m.teams {
			snapshot.byTeams[teams] = append(snapshot.byTeams[teams], idx)
		}
	}
	return snapshot
}

func fixturePairKey(item fixture.LiveFixture) string {
	return NormalizeTeamName(item.Home.Name) + "|" + NormalizeTeamName(item.Away.Name)
}

func teamPairKey(homeTeamID, awayTeamID string) string {
	return homeTeamID + "|" + awayTeamID
}

// sameFixtureContext compares what two feeds report besides the team names.
// Unknown values on either side do not block a merge.
func sameFixtureContext(a, b fixture.LiveFixture) bool {
	leagueA := strings.TrimSpace(FoldDiacritics(a.LeagueName))
	leagueB := strings.TrimSpace(FoldDiacritics(b.LeagueName))
	if leagueA != "" && leagueB != "" && !strings.Contains(leagueA, leagueB) && !strings.Contains(leagueB, leagueA) {
		return false
	}

	countryA := strings.TrimSpace(FoldDiacritics(a.Country))
	countryB := strings.TrimSpace(FoldDiacritics(b.Country))
	if countryA != "" && countryB != "" && countryA != countryB {
		return false
	}

	if !a.KickoffAt.IsZero() && !b.KickoffAt.IsZero() {
		diff := a.KickoffAt.Sub(b.KickoffAt)
		return diff <= mergeKickoffWindow && diff >= -mergeKickoffWindow
	}
	if a.Status.IsLive() && b.Status.IsLive() {
		return absInt(a.ElapsedMinute-b.ElapsedMinute) <= mergeMinuteTolerance
	}
	return true
}

func appendUnique(values []string, value string) []string {
	for _, v := range values {
		if v == value {
			return values
		}
	}
	return append(values, value)
}

func (s *FixtureSnapshot) Fixtures() []fixture.LiveFixture {
	if s == nil {
		return nil
	}
	out := make([]fixture.LiveFixture, len(s.fixtures))
	copy(out, s.fixtures)
	return out
}

func (s *FixtureSnapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.fixtures)
}

func (s *FixtureSnapshot) TakenAt() time.Time {
	if s == nil {
		return time.Time{}
	}
	return s.takenAt
}

// FindByKey resolves a fixture key, including keys of duplicates merged away.
func (s *FixtureSnapshot) FindByKey(key string) (fixture.LiveFixture, bool) {
	if s == nil || key == "" {
		return fixture.LiveFixture{}, false
	}
	idx, ok := s.byKey[key]
	if !ok {
		return fixture.LiveFixture{}, false
	}
	return s.fixtures[idx], true
}

// FindByTeams returns the only fixture pairing two canonical team ids. The
// ids of every merged copy are matched, not just the winning copy's.
func (s *FixtureSnapshot) FindByTeams(homeTeamID, awayTeamID string) (fixture.LiveFixture, bool) {
	if s == nil || homeTeamID == "" || awayTeamID == "" {
		return fixture.LiveFixture{}, false
	}
	idxs := s.byTeams[teamPairKey(homeTeamID, awayTeamID)]
	if len(idxs) != 1 {
		return fixture.LiveFixture{}, false
	}
	return s.fixtures[idxs[0]], true
}

type FixtureSnapshotConfig struct {
	FeedTimeout time.Duration
	// StaleAfter drops push fixtures and kept feed lists that have not been
	// updated for this long.
	StaleAfter time.Duration
	// FinishedRetention drops finished or abandoned push fixtures once they
	// have not changed for this long.
	FinishedRetention time.Duration
}

// FixtureSnapshotStore owns the per-source fixture lists and the push
// overlay and publishes merged snapshots.
type FixtureSnapshotStore struct {
	feeds             []fixture.Feed
	feedTimeout       time.Duration
	staleAfter        time.Duration
	finishedRetention time.Duration
	logger            *logging.Logger
	now               func() time.Time

	mu        sync.Mutex
	bySource  map[string][]fixture.LiveFixture
	fetchedAt map[string]time.Time
	push      map[string]fixture.LiveFixture
	current   atomic.Pointer[FixtureSnapshot]
}

func NewFixtureSnapshotStore(feeds []fixture.Feed, cfg FixtureSnapshotConfig, logger *logging.Logger) *FixtureSnapshotStore {
	if logger == nil {
		logger = logging.Default()
	}
	timeout := cfg.FeedTimeout
	if timeout <= 0 {
		timeout = defaultFeedRefreshTimeout
	}

	staleAfter := cfg.StaleAfter
	if staleAfter <= 0 {
		staleAfter = defaultFixtureStaleAfter
	}
	retention := cfg.FinishedRetention
	if retention <= 0 {
		retention = defaultFinishedFixtureRetention
	}

	s := &FixtureSnapshotStore{
		feeds:             feeds,
		feedTimeout:       timeout,
		staleAfter:        staleAfter,
		finishedRetention: retention,
		logger:            logger.Named("fixture_snapshot"),
		now:               time.Now,
		bySource:          make(map[string][]fixture.LiveFixture, len(feeds)),
		fetchedAt:         make(map[string]time.Time, len(feeds)),
		push:              make(map[string]fixture.LiveFixture),
	}
	s.current.Store(NewFixtureSnapshot(nil, s.now()))
	return s
}

type feedRefreshResult struct {
	source   string
	fixtures []fixture.LiveFixture
	err      error
	duration time.Duration
}

// Refresh polls every feed concurrently. A failing feed keeps its previous
// list; an error is returned only when every feed failed.
func (s *FixtureSnapshotStore) Refresh(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.FixtureSnapshotStore.Refresh")
	defer span.End()

	if len(s.feeds) == 0 {
		s.publish()
		return nil
	}

	p := pool.NewWithResults[feedRefreshResult]().WithMaxGoroutines(len(s.feeds))
	for _, feed := range s.feeds {
		feed := feed
		p.Go(func() feedRefreshResult {
			started := time.Now()
			feedCtx, cancel := context.WithTimeout(ctx, s.feedTimeout)
			defer cancel()

			items, err := feed.ListLive(feedCtx)
			return feedRefreshResult{source: feed.Name(), fixtures: items, err: err, duration: time.Since(started)}
		})
	}
	results := p.Wait()

	failed := make([]string, 0, len(results))
	s.mu.Lock()
	for _, res := range results {
		if res.err != nil {
			failed = append(failed, res.source)
			s.logger.WarnContext(ctx, "fixture feed refresh failed, keeping previous list",
				"source", res.source,
				"kept", len(s.bySource[res.source]),
				"duration_ms", res.duration.Milliseconds(),
				"error", res.err,
			)
			continue
		}
		s.bySource[res.source] = res.fixtures
		s.fetchedAt[res.source] = s.now()
		s.logger.DebugContext(ctx, "fixture feed refreshed",
			"source", res.source,
			"fixtures", len(res.fixtures),
			"duration_ms", res.duration.Milliseconds(),
		)
	}
	s.mu.Unlock()
	s.publish()

	if len(failed) == len(s.feeds) {
		sort.Strings(failed)
		return failSpan(span, fmt.Errorf("%w: all fixture feeds failed: %s", ErrDependencyUnavailable, strings.Join(failed, ",")))
	}
	return nil
}

func (s *FixtureSnapshotStore) Snapshot() *FixtureSnapshot {
	return s.current.Load()
}

// ApplyLiveDelta normalizes a raw push delta and applies it.
func (s *FixtureSnapshotStore) ApplyLiveDelta(delta LiveDelta) bool {
	return s.ApplyLiveUpdate(NormalizeLiveDelta(delta, s.now()))
}

// ApplyLiveUpdate overlays a push update. Updates without a score are
// ignored so partial deltas never overwrite known state.
func (s *FixtureSnapshotStore) ApplyLiveUpdate(update LiveUpdate) bool {
	if update.FixtureID == "" || !update.HasScore {
		return false
	}

	s.mu.Lock()
	item, exists := s.push[update.FixtureID]
	previous := item
	if !exists {
		if strings.TrimSpace(update.HomeName) == "" || strings.TrimSpace(update.AwayName) == "" {
			s.mu.Unlock()
			return false
		}
		item = fixture.LiveFixture{
			ExternalID: update.FixtureID,
			Source:     PushFeedSource,
			Home:       fixture.Side{ID: pushSideID(update.HomeTeamID, update.HomeName)},
			Away:       fixture.Side{ID: pushSideID(update.AwayTeamID, update.AwayName)},
		}
	}

	if update.HomeName != "" {
		item.Home.Name = update.HomeName
	}
	if update.AwayName != "" {
		item.Away.Name = update.AwayName
	}
	if update.LeagueName != "" {
		item.LeagueName = update.LeagueName
	}
	if update.Country != "" {
		item.Country = update.Country
	}
	if update.Status != fixture.StatusUnknown {
		item.Status = update.Status
	}
	if update.Minute != nil {
		item.ElapsedMinute = *update.Minute
	}
	item.CurrentScore = fixture.Score{Home: update.HomeScore, Away: update.AwayScore}
	switch {
	case update.Status == fixture.StatusHalfTime:
		ht := item.CurrentScore
		item.HalfTimeScore = &ht
	case item.HalfTimeScore == nil && exists && previous.Status == fixture.StatusFirstHalf &&
		update.Status.IsHalfTimeOrLater() && previous.CurrentScore == item.CurrentScore:
		// The half-time delta was missed, but no goal fell since the last
		// first-half score, so that score was the half-time score.
		ht := previous.CurrentScore
		item.HalfTimeScore = &ht
	}
	item.UpdatedAt = s.now()
	s.push[update.FixtureID] = item
	s.mu.Unlock()

	s.publish()
	return true
}

func (s *FixtureSnapshotStore) publish() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictExpired(s.now())

	sources := make([]string, 0, len(s.bySource))
	for source := range s.bySource {
		sources = append(sources, source)
	}
	sort.Strings(sources)

	items := make([]fixture.LiveFixture, 0, len(s.push)+len(sources)*8)
	for _, source := range sources {
		items = append(items, s.bySource[source]...)
	}
	pushIDs := make([]string, 0, len(s.push))
	for id := range s.push {
		pushIDs = append(pushIDs, id)
	}
	sort.Strings(pushIDs)
	for _, id := range pushIDs {
		items = append(items, s.push[id])
	}

	s.current.Store(NewFixtureSnapshot(items, s.now()))
}

// evictExpired drops push fixtures that went quiet or finished long ago and
// feed lists kept past the staleness bound. Callers hold s.mu.
func (s *FixtureSnapshotStore) evictExpired(now time.Time) {
	evicted := 0
	for id, item := range s.push {
		age := now.Sub(item.UpdatedAt)
		ended := item.Status.IsFinished() || item.Status.IsAbandoned()
		if age > s.staleAfter || (ended && age > s.finishedRetention) {
			delete(s.push, id)
			evicted++
		}
	}
	for source, fetched := range s.fetchedAt {
		if now.Sub(fetched) > s.staleAfter {
			delete(s.bySource, source)
			delete(s.fetchedAt, source)
			s.logger.Warn("dropping stale fixture feed list", "source", source, "fetched_at", fetched)
		}
	}
	if evicted > 0 {
		s.logger.Debug("evicted expired push fixtures", "evicted", evicted, "remaining", len(s.push))
	}
}

func pushSideID(teamID, name string) string {
	if teamID != "" {
		return PushFeedSource + ":" + teamID
	}
	return PushFeedSource + ":" + strings.ReplaceAll(NormalizeTeamName(name), " ", "-")
}
