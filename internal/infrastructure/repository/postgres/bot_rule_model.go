package postgres

type botRuleTableModel struct {
	ID         string `db:"id"`
	MatchType  string `db:"match_type"`
	MatchValue string `db:"match_value"`
	BotGroupID string `db:"bot_group_id"`
	IsActive   bool   `db:"is_active"`
}

type botGroupTableModel struct {
	ID          string `db:"id"`
	Name        string `db:"name"`
	DisplayName string `db:"display_name"`
	IsPublic    bool   `db:"is_public"`
	IsActive    bool   `db:"is_active"`
}
