package cache

import (
	"context"
	"sort"
	"strings"

	"github.com/riskibarqy/prediction-settlement/internal/domain/team"
	"github.com/riskibarqy/prediction-settlement/internal/domain/teamalias"
	basecache "github.com/riskibarqy/prediction-settlement/internal/platform/cache"
)

const (
	teamAliasKeyPrefix = "team_alias:raw:"
	teamKeyPrefix      = "team:id:"
)

// TeamAliasRepository caches alias lookups, misses included. Upsert writes
// through and replaces the cached entry.
type TeamAliasRepository struct {
	next  teamalias.Repository
	cache *basecache.Store
}

func NewTeamAliasRepository(next teamalias.Repository, cache *basecache.Store) *TeamAliasRepository {
	return &TeamAliasRepository{next: next, cache: cache}
}

func (r *TeamAliasRepository) GetByRawName(ctx context.Context, rawName string) (teamalias.Alias, bool, error) {
	key := teamAliasKey(rawName)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByRawName(ctx, rawName)
		if err != nil {
			return nil, err
		}
		return cachedTeamAlias{value: item, exists: exists}, nil
	})
	if err != nil {
		return teamalias.Alias{}, false, err
	}

	cached, _ := v.(cachedTeamAlias)
	return cached.value, cached.exists, nil
}

func (r *TeamAliasRepository) Upsert(ctx context.Context, alias teamalias.Alias) error {
	if err := r.next.Upsert(ctx, alias); err != nil {
		r.cache.Delete(ctx, teamAliasKey(alias.RawName))
		return err
	}

	alias.RawName = teamalias.NormalizeRawName(alias.RawName)
	r.cache.Set(ctx, teamAliasKey(alias.RawName), cachedTeamAlias{value: alias, exists: true})
	return nil
}

type cachedTeamAlias struct {
	value  teamalias.Alias
	exists bool
}

func teamAliasKey(rawName string) string {
	return teamAliasKeyPrefix + teamalias.NormalizeRawName(rawName)
}

type TeamRepository struct {
	next  team.Repository
	cache *basecache.Store
}

func NewTeamRepository(next team.Repository, cache *basecache.Store) *TeamRepository {
	return &TeamRepository{next: next, cache: cache}
}

func (r *TeamRepository) GetByID(ctx context.Context, teamID string) (team.Team, bool, error) {
	v, err := r.cache.GetOrLoad(ctx, teamKeyPrefix+teamID, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, teamID)
		if err != nil {
			return nil, err
		}
		return cachedTeamByID{value: item, exists: exists}, nil
	})
	if err != nil {
		return team.Team{}, false, err
	}

	cached, _ := v.(cachedTeamByID)
	return cached.value, cached.exists, nil
}

// ListByIDs serves cached teams and loads the remainder in one call.
func (r *TeamRepository) ListByIDs(ctx context.Context, teamIDs []string) ([]team.Team, error) {
	out := make([]team.Team, 0, len(teamIDs))
	missing := make([]string, 0, len(teamIDs))
	seen := make(map[string]struct{}, len(teamIDs))
	for _, id := range teamIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		if v, ok := r.cache.Get(ctx, teamKeyPrefix+id); ok {
			if cached, _ := v.(cachedTeamByID); cached.exists {
				out = append(out, cached.value)
			}
			continue
		}
		missing = append(missing, id)
	}

	if len(missing) > 0 {
		loaded, err := r.next.ListByIDs(ctx, missing)
		if err != nil {
			return nil, err
		}
		for _, item := range loaded {
			r.cache.Set(ctx, teamKeyPrefix+item.ID, cachedTeamByID{value: item, exists: true})
			out = append(out, item)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *TeamRepository) Upsert(ctx context.Context, item team.Team) error {
	if err := r.next.Upsert(ctx, item); err != nil {
		return err
	}
	r.cache.Delete(ctx, teamKeyPrefix+item.ID)
	return nil
}

type cachedTeamByID struct {
	value  team.Team
	exists bool
}
