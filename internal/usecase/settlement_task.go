package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/riskibarqy/prediction-settlement/internal/domain/fixture"
	"github.com/riskibarqy/prediction-settlement/internal/domain/prediction"
	"github.com/riskibarqy/prediction-settlement/internal/platform/logging"
)

const (
	settlementStatusWon        = "won"
	settlementStatusLost       = "lost"
	settlementStatusVoid       = "void"
	settlementStatusPending    = "pending"
	settlementStatusUnresolved = "unresolved"
	settlementStatusSkipped    = "skipped"
	settlementStatusConflict   = "conflict"
	settlementStatusFailed     = "failed"

	defaultSettlementBatchSize  = 500
	defaultSettlementMaxWorkers = 8
	maxSettlementWorkers        = 64
)

type SettlementRunInput struct {
	BatchSize  int
	MaxWorkers int
	// SkipRefresh settles against the current snapshot without polling feeds.
	SkipRefresh bool
}

type SettlementRunResult struct {
	Scanned         int                    `json:"scanned"`
	WonCount        int                    `json:"won_count"`
	LostCount       int                    `json:"lost_count"`
	VoidCount       int                    `json:"void_count"`
	PendingCount    int                    `json:"pending_count"`
	UnresolvedCount int                    `json:"unresolved_count"`
	SkippedCount    int                    `json:"skipped_count"`
	ConflictCount   int                    `json:"conflict_count"`
	FailedCount     int                    `json:"failed_count"`
	WorkerCount     int                    `json:"worker_count"`
	SnapshotSize    int                    `json:"snapshot_size"`
	RefreshError    string                 `json:"refresh_error,omitempty"`
	Items           []SettlementItemResult `json:"items"`
}

type SettlementItemResult struct {
	PredictionID string `json:"prediction_id"`
	Status       string `json:"status"`
	Message      string `json:"message,omitempty"`
	DurationMs   int64  `json:"duration_ms"`
}

type fixtureSnapshotRefresher interface {
	fixtureSnapshotSource
	Refresh(ctx context.Context) error
}

type SettlementTaskConfig struct {
	// BatchSize is the page size used to walk every pending prediction.
	BatchSize  int
	MaxWorkers int
	// MaxPendingAge voids predictions still undecided this long after they
	// were received. Zero disables expiry.
	MaxPendingAge time.Duration
}

// SettlementTask runs one settlement cycle over pending predictions.
type SettlementTask struct {
	predictions prediction.Repository
	snapshots   fixtureSnapshotRefresher
	resolver    *IdentityResolver
	correlator  *FixtureCorrelator
	cfg         SettlementTaskConfig
	logger      *logging.Logger
	now         func() time.Time
}

func NewSettlementTask(
	predictions prediction.Repository,
	snapshots fixtureSnapshotRefresher,
	resolver *IdentityResolver,
	correlator *FixtureCorrelator,
	cfg SettlementTaskConfig,
	logger *logging.Logger,
) *SettlementTask {
	if logger == nil {
		logger = logging.Default()
	}
	if correlator == nil {
		correlator = NewFixtureCorrelator(DefaultCorrelationPolicy())
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultSettlementBatchSize
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = defaultSettlementMaxWorkers
	}

	return &SettlementTask{
		predictions: predictions,
		snapshots:   snapshots,
		resolver:    resolver,
		correlator:  correlator,
		cfg:         cfg,
		logger:      logger.Named("settlement"),
		now:         time.Now,
	}
}

// Run evaluates every pending prediction, walking them in keyset pages of
// BatchSize so a backlog of undecided rows never hides newer ones.
func (s *SettlementTask) Run(ctx context.Context, input SettlementRunInput) (SettlementRunResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SettlementTask.Run")
	defer span.End()

	var result SettlementRunResult
	if !input.SkipRefresh {
		if err := s.snapshots.Refresh(ctx); err != nil {
			result.RefreshError = err.Error()
			s.logger.WarnContext(ctx, "snapshot refresh failed, settling against previous data", "error", err)
		}
	}
	snapshot := s.snapshots.Snapshot()
	result.SnapshotSize = snapshot.Len()

	batchSize := input.BatchSize
	if batchSize <= 0 {
		batchSize = s.cfg.BatchSize
	}
	page, err := s.predictions.ListPending(ctx, prediction.PendingCursor{}, batchSize)
	if err != nil {
		return SettlementRunResult{}, failSpan(span, fmt.Errorf("%w: list pending predictions: %v", ErrDependencyUnavailable, err))
	}
	result.Items = make([]SettlementItemResult, 0, len(page))
	if len(page) == 0 {
		return result, nil
	}

	workerCount := normalizeSettlementWorkerCount(input.MaxWorkers, s.cfg.MaxWorkers, len(page))
	result.WorkerCount = workerCount

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return SettlementRunResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	counters := make(map[string]*atomic.Int32, 8)
	for _, status := range []string{
		settlementStatusWon, settlementStatusLost, settlementStatusVoid, settlementStatusPending,
		settlementStatusUnresolved, settlementStatusSkipped, settlementStatusConflict, settlementStatusFailed,
	} {
		counters[status] = &atomic.Int32{}
	}

	var (
		workers sync.WaitGroup
		itemsMu sync.Mutex
		pages   int
	)
	for len(page) > 0 {
		pages++
		for _, record := range page {
			record := record
			workers.Add(1)
			if err := pool.Submit(func() {
				defer workers.Done()

				start := time.Now()
				status, message := s.settleOne(ctx, record, snapshot)
				counters[status].Add(1)
				itemsMu.Lock()
				result.Items = append(result.Items, SettlementItemResult{
					PredictionID: record.ID,
					Status:       status,
					Message:      message,
					DurationMs:   time.Since(start).Milliseconds(),
				})
				itemsMu.Unlock()
			}); err != nil {
				workers.Done()
				workers.Wait()
				return SettlementRunResult{}, fmt.Errorf("submit settlement to worker pool: %w", err)
			}
		}
		result.Scanned += len(page)
		if len(page) < batchSize {
			break
		}

		page, err = s.predictions.ListPending(ctx, prediction.CursorAfter(page[len(page)-1]), batchSize)
		if err != nil {
			workers.Wait()
			return SettlementRunResult{}, failSpan(span, fmt.Errorf("%w: list pending predictions page %d: %v", ErrDependencyUnavailable, pages+1, err))
		}
	}

	workers.Wait()
	sort.SliceStable(result.Items, func(i, j int) bool {
		return result.Items[i].PredictionID < result.Items[j].PredictionID
	})

	result.WonCount = int(counters[settlementStatusWon].Load())
	result.LostCount = int(counters[settlementStatusLost].Load())
	result.VoidCount = int(counters[settlementStatusVoid].Load())
	result.PendingCount = int(counters[settlementStatusPending].Load())
	result.UnresolvedCount = int(counters[settlementStatusUnresolved].Load())
	result.SkippedCount = int(counters[settlementStatusSkipped].Load())
	result.ConflictCount = int(counters[settlementStatusConflict].Load())
	result.FailedCount = int(counters[settlementStatusFailed].Load())

	s.logger.InfoContext(ctx, "settlement cycle finished",
		"scanned", result.Scanned,
		"pages", pages,
		"won", result.WonCount,
		"lost", result.LostCount,
		"void", result.VoidCount,
		"conflict", result.ConflictCount,
		"failed", result.FailedCount,
	)
	return result, nil
}

func (s *SettlementTask) settleOne(ctx context.Context, record prediction.Record, snapshot *FixtureSnapshot) (string, string) {
	if record.Result.IsTerminal() {
		return settlementStatusSkipped, "already " + string(record.Result)
	}

	if !record.IsResolved() {
		resolved, ok, err := s.reresolve(ctx, record, snapshot)
		if err != nil {
			return settlementStatusFailed, err.Error()
		}
		if !ok {
			if s.expired(record) {
				return s.expire(ctx, record, "")
			}
			return settlementStatusUnresolved, "no unique live fixture"
		}
		record = resolved
	}

	item, ok := snapshot.FindByKey(*record.FixtureID)
	if !ok {
		if s.expired(record) {
			return s.expire(ctx, record, "")
		}
		return settlementStatusPending, "fixture not in live snapshot"
	}

	decision := decideForFixture(record.Type, item)
	if !decision.IsTerminal() {
		if s.expired(record) {
			return s.expire(ctx, record, item.CurrentScore.String())
		}
		return settlementStatusPending, decision.Explanation
	}
	return s.apply(ctx, record, decision, item.CurrentScore.String())
}

func (s *SettlementTask) expired(record prediction.Record) bool {
	if s.cfg.MaxPendingAge <= 0 || record.CreatedAt.IsZero() {
		return false
	}
	return s.now().Sub(record.CreatedAt) > s.cfg.MaxPendingAge
}

func (s *SettlementTask) expire(ctx context.Context, record prediction.Record, finalScore string) (string, string) {
	return s.apply(ctx, record, SettlementDecision{
		Result:      prediction.ResultVoid,
		Explanation: fmt.Sprintf("still undecided after %s", s.cfg.MaxPendingAge),
	}, finalScore)
}

func (s *SettlementTask) apply(ctx context.Context, record prediction.Record, decision SettlementDecision, finalScore string) (string, string) {
	settledAt := s.now()
	applied, err := s.predictions.SettleIfPending(ctx, prediction.Settlement{
		PredictionID: record.ID,
		Result:       decision.Result,
		FinalScore:   finalScore,
		SettledAt:    settledAt,
		LogEntries: []string{
			formatProcessingLogEntry(settledAt, stageSettle, string(decision.Result)+": "+decision.Explanation),
		},
	})
	if err != nil {
		s.logger.WarnContext(ctx, "settle prediction failed", "prediction_id", record.ID, "error", err)
		return settlementStatusFailed, err.Error()
	}
	if !applied {
		return settlementStatusConflict, "prediction already settled"
	}
	return string(decision.Result), decision.Explanation
}

// reresolve retries identity resolution with the alert minute advanced by
// the time elapsed since the alert was received.
func (s *SettlementTask) reresolve(ctx context.Context, record prediction.Record, snapshot *FixtureSnapshot) (prediction.Record, bool, error) {
	minute := record.AlertMinute
	if !record.CreatedAt.IsZero() {
		if elapsed := int(s.now().Sub(record.CreatedAt).Minutes()); elapsed > 0 {
			minute += elapsed
		}
	}

	resolution := IdentityResolution{Source: prediction.ResolutionSourceNone}
	if s.resolver != nil {
		resolution = s.resolver.Resolve(ctx, record.HomeTeamRaw, record.AwayTeamRaw, minute, snapshot)
	}
	outcome := CorrelationMatched
	if resolution.FixtureID == nil {
		var match *fixture.LiveFixture
		match, outcome = s.correlator.Correlate(CorrelationInput{
			HomeRaw:   record.HomeTeamRaw,
			AwayRaw:   record.AwayTeamRaw,
			LeagueRaw: record.LeagueRaw,
		}, snapshot)
		if match != nil {
			resolution = applyCorrelation(resolution, *match)
		}
	}
	if resolution.FixtureID == nil {
		return record, false, nil
	}

	entry := formatProcessingLogEntry(s.now(), stageResolve, fmt.Sprintf("late resolution source=%s outcome=%s", resolution.Source, outcome))
	if err := s.predictions.UpdateResolution(ctx, record.ID, prediction.Resolution{
		HomeTeamID:       resolution.HomeTeamID,
		AwayTeamID:       resolution.AwayTeamID,
		FixtureID:        resolution.FixtureID,
		ResolutionSource: resolution.Source,
		Confidence:       resolution.Confidence,
		LogEntries:       []string{entry},
	}); err != nil {
		return record, false, fmt.Errorf("update resolution: %w", err)
	}

	record.HomeTeamID = resolution.HomeTeamID
	record.AwayTeamID = resolution.AwayTeamID
	record.FixtureID = resolution.FixtureID
	record.ResolutionSource = resolution.Source
	record.Confidence = resolution.Confidence
	return record, true, nil
}

func normalizeSettlementWorkerCount(requested, configured, items int) int {
	count := requested
	if count <= 0 {
		count = configured
	}
	if count <= 0 {
		count = defaultSettlementMaxWorkers
	}
	if count > maxSettlementWorkers {
		count = maxSettlementWorkers
	}
	if items > 0 && count > items {
		count = items
	}
	return count
}
