package memory

import (
	"github.com/riskibarqy/prediction-settlement/internal/domain/botrule"
)

// SeedBotGroups mirrors the groups inserted by the initial migration.
func SeedBotGroups() []botrule.Group {
	return []botrule.Group{
		{ID: "first-half-goal", Name: "first-half-goal", DisplayName: "First Half Goal", IsPublic: true, IsActive: true},
		{ID: "late-goal", Name: "late-goal", DisplayName: "Late Goal", IsPublic: true, IsActive: true},
		{ID: "corner", Name: "corner", DisplayName: "Corner", IsPublic: true, IsActive: true},
		{ID: "next-goal", Name: "next-goal", DisplayName: "Next Goal", IsPublic: true, IsActive: true},
		{ID: "over-goals", Name: "over-goals", DisplayName: "Over Goals", IsPublic: true, IsActive: true},
		{ID: "home-press", Name: "home-press", DisplayName: "Home Pressure", IsPublic: false, IsActive: true},
		{ID: "away-press", Name: "away-press", DisplayName: "Away Pressure", IsPublic: false, IsActive: true},
	}
}

func SeedBotRules() []botrule.Rule {
	return []botrule.Rule{
		{ID: "rule-late-goal-minute", MatchType: botrule.MatchTypeMinute, MatchValue: "80", BotGroupID: "late-goal", IsActive: true},
		{ID: "rule-corner-pattern", MatchType: botrule.MatchTypePattern, MatchValue: "corner", BotGroupID: "corner", IsActive: true},
		{ID: "rule-next-goal-code", MatchType: botrule.MatchTypeAlertCode, MatchValue: "12", BotGroupID: "next-goal", IsActive: true},
	}
}
