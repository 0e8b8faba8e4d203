package fixture

import "context"

// Feed is a polling source of in-progress fixtures.
type Feed interface {
	Name() string
	ListLive(ctx context.Context) ([]LiveFixture, error)
}
