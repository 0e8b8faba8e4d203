package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/prediction-settlement/internal/domain/fixture"
)

const FixtureFeedName = "memory"

// FixtureFeed serves a fixed, replaceable list of live fixtures. It backs
// local runs without a live-score provider.
type FixtureFeed struct {
	mu       sync.RWMutex
	fixtures []fixture.LiveFixture
}

func NewFixtureFeed(fixtures []fixture.LiveFixture) *FixtureFeed {
	f := &FixtureFeed{}
	f.Replace(fixtures)
	return f
}

func (f *FixtureFeed) Name() string {
	return FixtureFeedName
}

func (f *FixtureFeed) ListLive(_ context.Context) ([]fixture.LiveFixture, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]fixture.LiveFixture, 0, len(f.fixtures))
	out = append(out, f.fixtures...)
	return out, nil
}

func (f *FixtureFeed) Replace(fixtures []fixture.LiveFixture) {
	items := make([]fixture.LiveFixture, 0, len(fixtures))
	for _, item := range fixtures {
		if item.Source == "" {
			item.Source = FixtureFeedName
		}
		items = append(items, item)
	}

	f.mu.Lock()
	f.fixtures = items
	f.mu.Unlock()
}
