package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/riskibarqy/prediction-settlement/internal/config"
	"github.com/riskibarqy/prediction-settlement/internal/domain/botrule"
	"github.com/riskibarqy/prediction-settlement/internal/domain/prediction"
	"github.com/riskibarqy/prediction-settlement/internal/domain/team"
	"github.com/riskibarqy/prediction-settlement/internal/domain/teamalias"
	cacherepo "github.com/riskibarqy/prediction-settlement/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/prediction-settlement/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/prediction-settlement/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/prediction-settlement/internal/infrastructure/repository/rediscache"
	basecache "github.com/riskibarqy/prediction-settlement/internal/platform/cache"
	"github.com/riskibarqy/prediction-settlement/internal/platform/logging"
)

type repositories struct {
	predictions prediction.Repository
	teams       team.Repository
	aliases     teamalias.Repository
	botRules    botrule.Repository
	closers     []func() error
}

func openDB(cfg config.Config) (*sqlx.DB, error) {
	db, err := otelsqlx.Open("postgres", DatabaseURL(cfg),
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(databaseName(cfg.DBURL)),
		otelsql.WithQueryFormatter(traceQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return db, nil
}

func buildRepositories(ctx context.Context, cfg config.Config, logger *logging.Logger) (*repositories, error) {
	repos := &repositories{}

	if cfg.UsePostgres() {
		db, err := openDB(cfg)
		if err != nil {
			return nil, err
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		repos.closers = append(repos.closers, db.Close)

		repos.predictions = postgres.NewPredictionRepository(db)
		repos.teams = postgres.NewTeamRepository(db)
		repos.aliases = postgres.NewTeamAliasRepository(db)
		repos.botRules = postgres.NewBotRuleRepository(db)
		logger.InfoContext(ctx, "storage backend selected", "backend", "postgres", "db", databaseName(cfg.DBURL))
	} else {
		repos.predictions = memory.NewPredictionRepository()
		repos.teams = memory.NewTeamRepository(nil)
		repos.aliases = memory.NewTeamAliasRepository(nil)
		repos.botRules = memory.NewBotRuleRepository(memory.SeedBotGroups(), memory.SeedBotRules())
		logger.WarnContext(ctx, "DB_URL is empty, using in-memory storage")
	}

	if cfg.RedisURL != "" {
		client, err := rediscache.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			repos.close(logger)
			return nil, err
		}
		repos.closers = append(repos.closers, client.Close)
		repos.aliases = rediscache.NewTeamAliasRepository(repos.aliases, client, cfg.RedisTTL, logger)
	}

	if cfg.CacheEnabled {
		store := basecache.NewStore(cfg.CacheTTL)
		repos.aliases = cacherepo.NewTeamAliasRepository(repos.aliases, store)
		repos.teams = cacherepo.NewTeamRepository(repos.teams, store)
	}

	return repos, nil
}

func (r *repositories) close(logger *logging.Logger) {
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			logger.Warn("close storage resource failed", "error", err)
		}
	}
	r.closers = nil
}
