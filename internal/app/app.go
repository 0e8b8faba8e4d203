package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sourcegraph/conc"

	"github.com/riskibarqy/prediction-settlement/external/pushfeed"
	"github.com/riskibarqy/prediction-settlement/external/sportmonks"
	"github.com/riskibarqy/prediction-settlement/internal/config"
	"github.com/riskibarqy/prediction-settlement/internal/domain/fixture"
	"github.com/riskibarqy/prediction-settlement/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/prediction-settlement/internal/interfaces/httpapi"
	idgen "github.com/riskibarqy/prediction-settlement/internal/platform/id"
	"github.com/riskibarqy/prediction-settlement/internal/platform/logging"
	"github.com/riskibarqy/prediction-settlement/internal/platform/resilience"
	"github.com/riskibarqy/prediction-settlement/internal/usecase"
)

// App holds the HTTP server and the background workers that keep the fixture
// snapshot fresh and settle pending predictions.
type App struct {
	Server    *http.Server
	Snapshots *usecase.FixtureSnapshotStore
	Scheduler *usecase.SettlementScheduler
	PushFeed  *pushfeed.Client

	repos  *repositories
	logger *logging.Logger
	wg     conc.WaitGroup
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	repos, err := buildRepositories(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	snapshots := usecase.NewFixtureSnapshotStore(buildFeeds(cfg, logger), usecase.FixtureSnapshotConfig{
		FeedTimeout:       cfg.FeedTimeout,
		StaleAfter:        cfg.FixtureStaleAfter,
		FinishedRetention: cfg.FinishedFixtureRetention,
	}, logger)
	resolver := usecase.NewIdentityResolver(repos.aliases, repos.teams, usecase.IdentityResolverConfig{
		MinuteTolerance:  cfg.ResolverMinuteTolerance,
		NamePrefixLength: cfg.ResolverNamePrefixLength,
	}, logger)
	botRules := usecase.NewBotRuleCache(repos.botRules, cfg.BotRuleCacheTTL)
	attributor := usecase.NewBotAttributor(botRules, usecase.BotAttributorConfig{
		OverrideGroup: cfg.BotOverrideGroup,
	}, logger)
	correlator := usecase.NewFixtureCorrelator(usecase.DefaultCorrelationPolicy())

	ingestion := usecase.NewIngestionService(
		repos.predictions,
		resolver,
		attributor,
		correlator,
		snapshots,
		idgen.NewUUIDGenerator(),
		logger,
	)
	settlement := usecase.NewSettlementTask(
		repos.predictions,
		snapshots,
		resolver,
		correlator,
		usecase.SettlementTaskConfig{
			BatchSize:     cfg.SettlementBatchSize,
			MaxWorkers:    cfg.SettlementMaxWorkers,
			MaxPendingAge: cfg.SettlementMaxPendingAge,
		},
		logger,
	)
	scheduler := usecase.NewSettlementScheduler(settlement, cfg.SettlementInterval, logger)
	predictions := usecase.NewPredictionService(repos.predictions, repos.teams)

	handler := httpapi.NewHandler(ingestion, predictions, botRules, scheduler, snapshots, logger)
	router := httpapi.NewRouter(handler, logger, cfg.InternalJobToken)

	a := &App{
		Server: &http.Server{
			Addr:         cfg.HTTPAddr,
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		Snapshots: snapshots,
		Scheduler: scheduler,
		repos:     repos,
		logger:    logger,
	}
	if cfg.PushFeedEnabled {
		a.PushFeed = pushfeed.NewClient(pushfeed.ClientConfig{
			URL:    cfg.PushFeedURL,
			Token:  cfg.PushFeedToken,
			Logger: logger,
		}, snapshots)
	}

	return a, nil
}

func buildFeeds(cfg config.Config, logger *logging.Logger) []fixture.Feed {
	if !cfg.SportMonksEnabled {
		logger.Warn("no live fixture feed enabled, using in-memory feed")
		return []fixture.Feed{memory.NewFixtureFeed(nil)}
	}

	return []fixture.Feed{
		sportmonks.NewClient(sportmonks.ClientConfig{
			BaseURL:       cfg.SportMonksBaseURL,
			Token:         cfg.SportMonksToken,
			Timeout:       cfg.SportMonksTimeout,
			MaxRetries:    cfg.SportMonksMaxRetries,
			RatePerSecond: cfg.SportMonksRatePerSecond,
			Logger:        logger,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.SportMonksCircuitEnabled,
				FailureThreshold: cfg.SportMonksCircuitFailureCount,
				OpenTimeout:      cfg.SportMonksCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.SportMonksCircuitHalfOpenMaxReq,
			},
		}),
	}
}

// Start primes the fixture snapshot and launches the background workers.
// They stop when ctx is cancelled; Wait blocks until they have returned.
func (a *App) Start(ctx context.Context) {
	if err := a.Snapshots.Refresh(ctx); err != nil {
		a.logger.WarnContext(ctx, "initial fixture snapshot refresh failed", "error", err)
	}

	a.wg.Go(func() { a.Scheduler.Run(ctx) })
	if a.PushFeed != nil {
		a.wg.Go(func() { a.PushFeed.ConnectWithRetry(ctx) })
	}
}

func (a *App) Wait() {
	a.wg.Wait()
}

// Close releases storage connections. Call it after Wait.
func (a *App) Close() {
	a.repos.close(a.logger)
}
