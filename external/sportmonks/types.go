package sportmonks

import (
	"bytes"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
)

type Pagination struct {
	Count       int     `json:"count"`
	PerPage     int     `json:"per_page"`
	CurrentPage int     `json:"current_page"`
	NextPage    *string `json:"next_page"`
	HasMore     bool    `json:"has_more"`
}

type livescoresEnvelope struct {
	Data       []liveFixtureItem `json:"data"`
	Pagination *Pagination       `json:"pagination"`
}

type liveFixtureItem struct {
	ID           int64                `json:"id"`
	StateID      int64                `json:"state_id"`
	StartingAt   string               `json:"starting_at"`
	StartingTS   int64                `json:"starting_at_timestamp"`
	ResultInfo   string               `json:"result_info"`
	Participants []fixtureParticipant `json:"participants"`
	Scores       []fixtureScoreItem   `json:"scores"`
	State        relation[stateRef]   `json:"state"`
	League       relation[leagueRef]  `json:"league"`
	Periods      []periodItem         `json:"periods"`
}

type fixtureParticipant struct {
	ID   int64                  `json:"id"`
	Name string                 `json:"name"`
	Meta fixtureParticipantMeta `json:"meta"`
}

type fixtureParticipantMeta struct {
	Location string `json:"location"`
}

type fixtureScoreItem struct {
	ParticipantID int64          `json:"participant_id"`
	Description   string         `json:"description"`
	Score         map[string]any `json:"score"`
}

// goals reads score.goals, which the API sends as a number or a numeric string.
func (f fixtureScoreItem) goals() (int, bool) {
	raw, ok := f.Score["goals"]
	if !ok || raw == nil {
		return 0, false
	}
	switch typed := raw.(type) {
	case float64:
		return int(typed), typed >= 0
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(typed))
		if err != nil || parsed < 0 {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

func (f fixtureScoreItem) side() string {
	if raw, ok := f.Score["participant"].(string); ok {
		return strings.ToLower(strings.TrimSpace(raw))
	}
	return ""
}

type stateRef struct {
	ID            int64  `json:"id"`
	State         string `json:"state"`
	DeveloperName string `json:"developer_name"`
}

type leagueRef struct {
	ID      int64                `json:"id"`
	Name    string               `json:"name"`
	Country relation[countryRef] `json:"country"`
}

type countryRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type periodItem struct {
	TypeID      int64  `json:"type_id"`
	Description string `json:"description"`
	Ticking     bool   `json:"ticking"`
	Minutes     *int   `json:"minutes"`
	Seconds     *int   `json:"seconds"`
	TimeAdded   *int   `json:"time_added"`
	Started     *int64 `json:"started"`
}

// relation decodes includes that arrive either bare or wrapped in {"data": ...}.
type relation[T any] struct {
	Data T
	Set  bool
}

func (r *relation[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		r.Set = false
		return nil
	}

	var wrapped struct {
		Data *T `json:"data"`
	}
	if err := sonic.Unmarshal(trimmed, &wrapped); err == nil && wrapped.Data != nil {
		r.Data = *wrapped.Data
		r.Set = true
		return nil
	}

	var direct T
	if err := sonic.Unmarshal(trimmed, &direct); err != nil {
		return err
	}
	r.Data = direct
	r.Set = true
	return nil
}
