package teamalias

import "context"

// Repository stores learned aliases keyed by normalized raw name.
type Repository interface {
	GetByRawName(ctx context.Context, rawName string) (Alias, bool, error)
	// Upsert is idempotent by raw name; the latest mapping wins.
	Upsert(ctx context.Context, alias Alias) error
}
