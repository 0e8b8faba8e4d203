package memory

import (
	"context"
	"sync"
	"time"

	"github.com/riskibarqy/prediction-settlement/internal/domain/teamalias"
)

type TeamAliasRepository struct {
	mu      sync.RWMutex
	aliases map[string]teamalias.Alias
	now     func() time.Time
}

func NewTeamAliasRepository(aliases []teamalias.Alias) *TeamAliasRepository {
	byRaw := make(map[string]teamalias.Alias, len(aliases))
	for _, item := range aliases {
		item.RawName = teamalias.NormalizeRawName(item.RawName)
		byRaw[item.RawName] = item
	}
	return &TeamAliasRepository{aliases: byRaw, now: time.Now}
}

func (r *TeamAliasRepository) GetByRawName(_ context.Context, rawName string) (teamalias.Alias, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.aliases[teamalias.NormalizeRawName(rawName)]
	return item, ok, nil
}

func (r *TeamAliasRepository) Upsert(_ context.Context, alias teamalias.Alias) error {
	if err := alias.Validate(); err != nil {
		return err
	}
	alias.RawName = teamalias.NormalizeRawName(alias.RawName)
	if alias.UpdatedAt.IsZero() {
		alias.UpdatedAt = r.now().UTC()
	}
	if alias.Source == "" {
		alias.Source = teamalias.SourceManual
	}

	r.mu.Lock()
	r.aliases[alias.RawName] = alias
	r.mu.Unlock()
	return nil
}
