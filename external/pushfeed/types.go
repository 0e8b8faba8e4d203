package pushfeed

import (
	"strings"

	"github.com/riskibarqy/prediction-settlement/internal/usecase"
)

const (
	messageTypeAck   = "ack"
	messageTypeError = "error"
	messageTypeDelta = "delta"
	messageTypeBatch = "batch"
)

type subscribeRequest struct {
	Op    string `json:"op"`
	Token string `json:"token,omitempty"`
	Topic string `json:"topic"`
}

type envelope struct {
	Type    string         `json:"mt"`
	Message string         `json:"msg,omitempty"`
	Items   []deltaMessage `json:"items,omitempty"`
	deltaMessage
}

// deltaMessage is one compact per-match update. Every field except ID may be
// missing.
type deltaMessage struct {
	ID         string `json:"id"`
	StatusCode *int   `json:"st,omitempty"`
	HomeStats  []int  `json:"hs,omitempty"`
	AwayStats  []int  `json:"as,omitempty"`
	PeriodAt   *int64 `json:"ps,omitempty"`
	HomeTeamID string `json:"ht,omitempty"`
	AwayTeamID string `json:"at,omitempty"`
	HomeName   string `json:"hn,omitempty"`
	AwayName   string `json:"an,omitempty"`
	League     string `json:"lg,omitempty"`
	Country    string `json:"cc,omitempty"`
}

func (m deltaMessage) toLiveDelta() (usecase.LiveDelta, bool) {
	id := strings.TrimSpace(m.ID)
	if id == "" {
		return usecase.LiveDelta{}, false
	}
	return usecase.LiveDelta{
		FixtureID:   id,
		StatusCode:  m.StatusCode,
		HomeStats:   m.HomeStats,
		AwayStats:   m.AwayStats,
		PeriodStart: m.PeriodAt,
		HomeTeamID:  strings.TrimSpace(m.HomeTeamID),
		AwayTeamID:  strings.TrimSpace(m.AwayTeamID),
		HomeName:    strings.TrimSpace(m.HomeName),
		AwayName:    strings.TrimSpace(m.AwayName),
		LeagueName:  strings.TrimSpace(m.League),
		Country:     strings.TrimSpace(m.Country),
	}, true
}
