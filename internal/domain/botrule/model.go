package botrule

import "fmt"

type MatchType string

const (
	MatchTypeMinute    MatchType = "minute"
	MatchTypeAlertCode MatchType = "alert_code"
	MatchTypePattern   MatchType = "pattern"
)

// Rule attributes an alert to a bot group.
type Rule struct {
	ID         string
	MatchType  MatchType
	MatchValue string
	BotGroupID string
	IsActive   bool
}

func (r Rule) Validate() error {
	switch r.MatchType {
	case MatchTypeMinute, MatchTypeAlertCode, MatchTypePattern:
	default:
		return fmt.Errorf("invalid bot rule match type %q", r.MatchType)
	}
	if r.MatchValue == "" {
		return fmt.Errorf("bot rule match value is required")
	}
	if r.BotGroupID == "" {
		return fmt.Errorf("bot rule group id is required")
	}
	return nil
}

// Group is a named family of prediction bots.
type Group struct {
	ID          string
	Name        string
	DisplayName string
	IsPublic    bool
	IsActive    bool
}
