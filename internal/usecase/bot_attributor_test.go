package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/riskibarqy/prediction-settlement/internal/domain/botrule"
	botrulemock "github.com/riskibarqy/prediction-settlement/internal/mocks/domain/botrule"
)

func sampleBotGroups() []botrule.Group {
	return []botrule.Group{
		{ID: "g-fhg", Name: "first-half-goal", DisplayName: "First Half Goal", IsPublic: true, IsActive: true},
		{ID: "g-early", Name: "early-press", DisplayName: "Early Press", IsPublic: true, IsActive: true},
		{ID: "g-private", Name: "vip-minute", DisplayName: "VIP", IsPublic: false, IsActive: true},
		{ID: "g-code", Name: "code-bot", DisplayName: "Code Bot", IsPublic: false, IsActive: true},
		{ID: "g-pattern", Name: "dangerous-attack", DisplayName: "Dangerous Attack", IsPublic: true, IsActive: true},
		{ID: "g-corner", Name: "corner", DisplayName: "Corner", IsPublic: true, IsActive: true},
		{ID: "g-off", Name: "retired", DisplayName: "Retired", IsPublic: true, IsActive: false},
	}
}

func sampleBotRules() []botrule.Rule {
	return []botrule.Rule{
		{ID: "r1", MatchType: botrule.MatchTypeMinute, MatchValue: "20", BotGroupID: "g-private", IsActive: true},
		{ID: "r2", MatchType: botrule.MatchTypeMinute, MatchValue: "20", BotGroupID: "g-early", IsActive: true},
		{ID: "r3", MatchType: botrule.MatchTypeAlertCode, MatchValue: "77", BotGroupID: "g-code", IsActive: true},
		{ID: "r4", MatchType: botrule.MatchTypePattern, MatchValue: "Dangerous Attack", BotGroupID: "g-pattern", IsActive: true},
		{ID: "r5", MatchType: botrule.MatchTypePattern, MatchValue: "pressure", BotGroupID: "g-off", IsActive: true},
		{ID: "r6", MatchType: botrule.MatchTypeMinute, MatchValue: "33", BotGroupID: "g-early", IsActive: false},
	}
}

func newTestAttributor(t *testing.T) (*BotAttributor, *botrulemock.Repository) {
	t.Helper()
	repo := botrulemock.NewRepository(t)
	repo.On("ListGroups", mock.Anything).Return(sampleBotGroups(), nil).Maybe()
	repo.On("ListActiveRules", mock.Anything).Return(sampleBotRules(), nil).Maybe()
	return NewBotAttributor(NewBotRuleCache(repo, time.Minute), BotAttributorConfig{}, nil), repo
}

func TestBotAttributor_Priority(t *testing.T) {
	t.Parallel()

	attributor, _ := newTestAttributor(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		in    BotAttributionInput
		group string
	}{
		{"override marker wins over minute", BotAttributionInput{Minute: 20, AlertCode: "77", FullText: "77 İY GOL *A - B (0-0)"}, "g-fhg"},
		{"override is case insensitive", BotAttributionInput{Minute: 50, FullText: "first half goal alert"}, "g-fhg"},
		{"minute rule skips private group", BotAttributionInput{Minute: 20, AlertCode: "77"}, "g-early"},
		{"alert code when no minute rule", BotAttributionInput{Minute: 21, AlertCode: "77", FullText: "dangerous attack"}, "g-code"},
		{"inactive minute rule ignored", BotAttributionInput{Minute: 33, FullText: "DANGEROUS ATTACK by home"}, "g-pattern"},
		{"legacy table fallback", BotAttributionInput{Minute: 60, FullText: "Corner incoming"}, "g-corner"},
	}

	for _, tc := range cases {
		got, err := attributor.Attribute(ctx, tc.in)
		if err != nil {
			t.Fatalf("%s: attribute: %v", tc.name, err)
		}
		if got == nil || got.ID != tc.group {
			t.Fatalf("%s: unexpected group: got=%v want=%s", tc.name, got, tc.group)
		}
	}
}

func TestBotAttributor_NoMatch(t *testing.T) {
	t.Parallel()

	attributor, _ := newTestAttributor(t)
	got, err := attributor.Attribute(context.Background(), BotAttributionInput{Minute: 88, FullText: "home pressure building"})
	if err != nil {
		t.Fatalf("attribute: %v", err)
	}
	if got != nil {
		t.Fatalf("expected no attribution (inactive group), got=%+v", got)
	}
}

func TestBotAttributor_StorageErrorIsReturned(t *testing.T) {
	t.Parallel()

	repo := botrulemock.NewRepository(t)
	repo.On("ListGroups", mock.Anything).Return(nil, errors.New("db down")).Once()

	attributor := NewBotAttributor(NewBotRuleCache(repo, time.Minute), BotAttributorConfig{}, nil)
	got, err := attributor.Attribute(context.Background(), BotAttributionInput{Minute: 10, FullText: "x"})
	if !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got=%v", err)
	}
	if got != nil {
		t.Fatalf("expected nil group on error, got=%+v", got)
	}
}

func TestBotAttributor_OverrideSurvivesStorageError(t *testing.T) {
	t.Parallel()

	repo := botrulemock.NewRepository(t)
	repo.On("ListGroups", mock.Anything).Return(nil, errors.New("db down")).Once()

	attributor := NewBotAttributor(NewBotRuleCache(repo, time.Minute), BotAttributorConfig{OverrideGroup: "first-half-goal"}, nil)
	got, err := attributor.Attribute(context.Background(), BotAttributionInput{FullText: "IY GOL"})
	if err != nil {
		t.Fatalf("attribute: %v", err)
	}
	if got == nil || got.ID != "first-half-goal" {
		t.Fatalf("expected synthetic override group, got=%+v", got)
	}
}

func TestBotRuleCache_InvalidateReloads(t *testing.T) {
	t.Parallel()

	repo := botrulemock.NewRepository(t)
	repo.On("ListGroups", mock.Anything).Return(sampleBotGroups(), nil).Twice()
	repo.On("ListActiveRules", mock.Anything).Return(sampleBotRules(), nil).Twice()

	cache := NewBotRuleCache(repo, time.Hour)
	ctx := context.Background()

	first, err := cache.Get(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if _, err := cache.Get(ctx); err != nil {
		t.Fatalf("cached get: %v", err)
	}

	cache.Invalidate()
	second, err := cache.Get(ctx)
	if err != nil {
		t.Fatalf("get after invalidate: %v", err)
	}
	if first == second {
		t.Fatalf("expected a fresh rule set after invalidate")
	}
	if second.RuleCount() != 5 {
		t.Fatalf("unexpected active rule count: got=%d want=5", second.RuleCount())
	}
}
