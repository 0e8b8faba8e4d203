package rediscache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"

	"github.com/riskibarqy/prediction-settlement/internal/domain/teamalias"
	"github.com/riskibarqy/prediction-settlement/internal/platform/logging"
)

const (
	teamAliasKeyPrefix  = "prediction-settlement:team_alias:"
	defaultTeamAliasTTL = 24 * time.Hour
)

// NewClient opens a client from a redis:// or rediss:// URL and pings it.
func NewClient(ctx context.Context, rawURL string) (*redis.Client, error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, fmt.Errorf("redis url is required")
	}
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// TeamAliasRepository is a shared L2 cache for alias lookups. Redis failures
// degrade to the next repository instead of failing the lookup.
type TeamAliasRepository struct {
	next   teamalias.Repository
	client redis.Cmdable
	ttl    time.Duration
	logger *logging.Logger
}

func NewTeamAliasRepository(next teamalias.Repository, client redis.Cmdable, ttl time.Duration, logger *logging.Logger) *TeamAliasRepository {
	if logger == nil {
		logger = logging.Default()
	}
	if ttl <= 0 {
		ttl = defaultTeamAliasTTL
	}
	return &TeamAliasRepository{
		next:   next,
		client: client,
		ttl:    ttl,
		logger: logger.Named("rediscache"),
	}
}

func (r *TeamAliasRepository) GetByRawName(ctx context.Context, rawName string) (teamalias.Alias, bool, error) {
	key := teamAliasKey(rawName)

	raw, err := r.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		alias, decodeErr := decodeAlias(raw)
		if decodeErr == nil {
			return alias, true, nil
		}
		r.logger.WarnContext(ctx, "drop undecodable team alias cache entry", "key", key, "error", decodeErr)
		_ = r.client.Del(ctx, key).Err()
	case errors.Is(err, redis.Nil):
	default:
		r.logger.WarnContext(ctx, "redis team alias lookup failed", "key", key, "error", err)
	}

	alias, exists, err := r.next.GetByRawName(ctx, rawName)
	if err != nil || !exists {
		return alias, exists, err
	}
	r.store(ctx, alias)
	return alias, true, nil
}

func (r *TeamAliasRepository) Upsert(ctx context.Context, alias teamalias.Alias) error {
	if err := r.next.Upsert(ctx, alias); err != nil {
		if delErr := r.client.Del(ctx, teamAliasKey(alias.RawName)).Err(); delErr != nil {
			r.logger.WarnContext(ctx, "redis team alias evict failed", "raw_name", alias.RawName, "error", delErr)
		}
		return err
	}

	alias.RawName = teamalias.NormalizeRawName(alias.RawName)
	r.store(ctx, alias)
	return nil
}

func (r *TeamAliasRepository) store(ctx context.Context, alias teamalias.Alias) {
	raw, err := encodeAlias(alias)
	if err != nil {
		r.logger.WarnContext(ctx, "encode team alias cache entry failed", "raw_name", alias.RawName, "error", err)
		return
	}
	if err := r.client.Set(ctx, teamAliasKey(alias.RawName), raw, r.ttl).Err(); err != nil {
		r.logger.WarnContext(ctx, "redis team alias write failed", "raw_name", alias.RawName, "error", err)
	}
}

type aliasPayload struct {
	RawName             string    `json:"raw_name"`
	CanonicalTeamID     string    `json:"canonical_team_id"`
	MappedCanonicalName string    `json:"mapped_canonical_name,omitempty"`
	Confidence          float64   `json:"confidence"`
	Source              string    `json:"source"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func encodeAlias(alias teamalias.Alias) ([]byte, error) {
	return sonic.Marshal(aliasPayload{
		RawName:             alias.RawName,
		CanonicalTeamID:     alias.CanonicalTeamID,
		MappedCanonicalName: alias.MappedCanonicalName,
		Confidence:          alias.Confidence,
		Source:              alias.Source,
		UpdatedAt:           alias.UpdatedAt.UTC(),
	})
}

func decodeAlias(raw []byte) (teamalias.Alias, error) {
	var payload aliasPayload
	if err := sonic.Unmarshal(raw, &payload); err != nil {
		return teamalias.Alias{}, err
	}
	if payload.CanonicalTeamID == "" {
		return teamalias.Alias{}, fmt.Errorf("cached alias has no canonical team id")
	}
	return teamalias.Alias{
		RawName:             payload.RawName,
		CanonicalTeamID:     payload.CanonicalTeamID,
		MappedCanonicalName: payload.MappedCanonicalName,
		Confidence:          payload.Confidence,
		Source:              payload.Source,
		UpdatedAt:           payload.UpdatedAt,
	}, nil
}

func teamAliasKey(rawName string) string {
	return teamAliasKeyPrefix + teamalias.NormalizeRawName(rawName)
}
