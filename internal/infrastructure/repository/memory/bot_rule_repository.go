package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/prediction-settlement/internal/domain/botrule"
)

type BotRuleRepository struct {
	mu     sync.RWMutex
	groups []botrule.Group
	rules  []botrule.Rule
}

func NewBotRuleRepository(groups []botrule.Group, rules []botrule.Rule) *BotRuleRepository {
	return &BotRuleRepository{
		groups: append([]botrule.Group(nil), groups...),
		rules:  append([]botrule.Rule(nil), rules...),
	}
}

func (r *BotRuleRepository) ListActiveRules(_ context.Context) ([]botrule.Rule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]botrule.Rule, 0, len(r.rules))
	for _, rule := range r.rules {
		if rule.IsActive {
			out = append(out, rule)
		}
	}
	return out, nil
}

func (r *BotRuleRepository) ListGroups(_ context.Context) ([]botrule.Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]botrule.Group(nil), r.groups...), nil
}

// ReplaceRules swaps the rule set, standing in for an admin edit.
func (r *BotRuleRepository) ReplaceRules(rules []botrule.Rule) {
	r.mu.Lock()
	r.rules = append([]botrule.Rule(nil), rules...)
	r.mu.Unlock()
}
