package usecase

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/prediction-settlement/internal/domain/botrule"
	"github.com/riskibarqy/prediction-settlement/internal/platform/cache"
	"github.com/riskibarqy/prediction-settlement/internal/platform/logging"
)

const (
	defaultBotRuleCacheTTL = 5 * time.Minute
	DefaultOverrideGroup   = "first-half-goal"
)

var firstHalfGoalMarkers = []string{"İY GOL", "IY GOL", "1Y GOL", "FIRST HALF GOAL"}

// Fallback patterns keyed by group name, consulted after pattern rules.
var legacyGroupPatterns = map[string][]string{
	"late-goal":  {"late goal", "son dakika gol", "85+"},
	"corner":     {"corner", "korner"},
	"next-goal":  {"next goal", "siradaki gol", "sıradaki gol"},
	"over-goals": {"over goal", "üst gol", "ust gol"},
	"home-press": {"home pressure", "ev sahibi baski", "ev sahibi baskı"},
	"away-press": {"away pressure", "deplasman baski", "deplasman baskı"},
}

// BotRuleSet is an indexed, read-only view of active rules and groups.
type BotRuleSet struct {
	groupsByID   map[string]botrule.Group
	groupsByName map[string]botrule.Group
	minuteRules  map[int][]botrule.Rule
	codeRules    map[string][]botrule.Rule
	patternRules []botrule.Rule
}

func NewBotRuleSet(groups []botrule.Group, rules []botrule.Rule) *BotRuleSet {
	set := &BotRuleSet{
		groupsByID:   make(map[string]botrule.Group, len(groups)),
		groupsByName: make(map[string]botrule.Group, len(groups)),
		minuteRules:  make(map[int][]botrule.Rule),
		codeRules:    make(map[string][]botrule.Rule),
	}
	for _, g := range groups {
		set.groupsByID[g.ID] = g
		set.groupsByName[strings.ToLower(g.Name)] = g
	}

	sorted := append([]botrule.Rule(nil), rules...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	for _, rule := range sorted {
		if !rule.IsActive {
			continue
		}
		value := strings.TrimSpace(rule.MatchValue)
		switch rule.MatchType {
		case botrule.MatchTypeMinute:
			minute, err := strconv.Atoi(value)
			if err != nil {
				continue
			}
			set.minuteRules[minute] = append(set.minuteRules[minute], rule)
		case botrule.MatchTypeAlertCode:
			set.codeRules[value] = append(set.codeRules[value], rule)
		case botrule.MatchTypePattern:
			rule.MatchValue = strings.ToLower(value)
			if rule.MatchValue != "" {
				set.patternRules = append(set.patternRules, rule)
			}
		}
	}
	return set
}

func (s *BotRuleSet) GroupByName(name string) (botrule.Group, bool) {
	if s == nil {
		return botrule.Group{}, false
	}
	g, ok := s.groupsByName[strings.ToLower(name)]
	return g, ok
}

func (s *BotRuleSet) RuleCount() int {
	if s == nil {
		return 0
	}
	n := len(s.patternRules)
	for _, rules := range s.minuteRules {
		n += len(rules)
	}
	for _, rules := range s.codeRules {
		n += len(rules)
	}
	return n
}

func (s *BotRuleSet) activeGroup(rule botrule.Rule, publicOnly bool) (botrule.Group, bool) {
	g, ok := s.groupsByID[rule.BotGroupID]
	if !ok || !g.IsActive {
		return botrule.Group{}, false
	}
	if publicOnly && !g.IsPublic {
		return botrule.Group{}, false
	}
	return g, true
}

// BotRuleCache keeps the rule set in memory for a TTL. Admin edits call
// Invalidate so the next read reloads from storage.
type BotRuleCache struct {
	value *cache.Value[*BotRuleSet]
}

func NewBotRuleCache(repo botrule.Repository, ttl time.Duration) *BotRuleCache {
	if ttl <= 0 {
		ttl = defaultBotRuleCacheTTL
	}
	return &BotRuleCache{
		value: cache.NewValue(ttl, func(ctx context.Context) (*BotRuleSet, error) {
			groups, err := repo.ListGroups(ctx)
			if err != nil {
				return nil, fmt.Errorf("list bot groups: %w", err)
			}
			rules, err := repo.ListActiveRules(ctx)
			if err != nil {
				return nil, fmt.Errorf("list bot rules: %w", err)
			}
			return NewBotRuleSet(groups, rules), nil
		}),
	}
}

func (c *BotRuleCache) Get(ctx context.Context) (*BotRuleSet, error) {
	return c.value.Get(ctx)
}

func (c *BotRuleCache) Refresh(ctx context.Context) (*BotRuleSet, error) {
	return c.value.Refresh(ctx)
}

func (c *BotRuleCache) Invalidate() {
	c.value.Invalidate()
}

func (c *BotRuleCache) LoadedAt() time.Time {
	return c.value.LoadedAt()
}

type BotAttributionInput struct {
	Minute    int
	AlertCode string
	FullText  string
}

type BotAttributorConfig struct {
	OverrideGroup string
}

// BotAttributor picks the bot group that produced an alert. The first
// matching tier wins: override markers, minute, alert code, text pattern.
type BotAttributor struct {
	rules         *BotRuleCache
	overrideGroup string
	logger        *logging.Logger
}

func NewBotAttributor(rules *BotRuleCache, cfg BotAttributorConfig, logger *logging.Logger) *BotAttributor {
	if logger == nil {
		logger = logging.Default()
	}
	override := strings.TrimSpace(cfg.OverrideGroup)
	if override == "" {
		override = DefaultOverrideGroup
	}
	return &BotAttributor{
		rules:         rules,
		overrideGroup: override,
		logger:        logger.Named("bot_attributor"),
	}
}

// Attribute returns nil when no tier matches. A rule load failure is
// returned so the caller can store the alert unattributed.
func (a *BotAttributor) Attribute(ctx context.Context, in BotAttributionInput) (*botrule.Group, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BotAttributor.Attribute")
	defer span.End()

	if hasOverrideMarker(in.FullText) {
		return a.overrideTarget(ctx), nil
	}

	set, err := a.rules.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: load bot rules: %v", ErrDependencyUnavailable, err)
	}

	for _, rule := range set.minuteRules[in.Minute] {
		if g, ok := set.activeGroup(rule, true); ok {
			return &g, nil
		}
	}

	if code := strings.TrimSpace(in.AlertCode); code != "" {
		for _, rule := range set.codeRules[code] {
			if g, ok := set.activeGroup(rule, false); ok {
				return &g, nil
			}
		}
	}

	text := strings.ToLower(in.FullText)
	for _, rule := range set.patternRules {
		if !strings.Contains(text, rule.MatchValue) {
			continue
		}
		if g, ok := set.activeGroup(rule, false); ok {
			return &g, nil
		}
	}

	names := make([]string, 0, len(legacyGroupPatterns))
	for name := range legacyGroupPatterns {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, pattern := range legacyGroupPatterns[name] {
			if !strings.Contains(text, pattern) {
				continue
			}
			if g, ok := set.GroupByName(name); ok && g.IsActive {
				return &g, nil
			}
		}
	}

	return nil, nil
}

func (a *BotAttributor) overrideTarget(ctx context.Context) *botrule.Group {
	set, err := a.rules.Get(ctx)
	if err != nil {
		a.logger.WarnContext(ctx, "bot rules unavailable for override group lookup", "group", a.overrideGroup, "error", err)
	}
	if g, ok := set.GroupByName(a.overrideGroup); ok {
		return &g
	}
	return &botrule.Group{
		ID:          a.overrideGroup,
		Name:        a.overrideGroup,
		DisplayName: a.overrideGroup,
		IsPublic:    true,
		IsActive:    true,
	}
}

func hasOverrideMarker(text string) bool {
	upper := strings.ToUpper(text)
	for _, marker := range firstHalfGoalMarkers {
		if strings.Contains(upper, marker) {
			return true
		}
	}
	return false
}
