package httpapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"github.com/riskibarqy/prediction-settlement/internal/domain/alert"
	"github.com/riskibarqy/prediction-settlement/internal/domain/team"
	"github.com/riskibarqy/prediction-settlement/internal/platform/logging"
	"github.com/riskibarqy/prediction-settlement/internal/usecase"
)

const maxRequestBodyBytes = 64 << 10

type alertIngestor interface {
	Ingest(ctx context.Context, raw alert.RawAlert) (usecase.IngestResult, error)
}

type predictionReader interface {
	GetByID(ctx context.Context, predictionID string) (usecase.PredictionDetails, error)
}

type botRuleReloader interface {
	Invalidate()
	Refresh(ctx context.Context) (*usecase.BotRuleSet, error)
}

type settlementTrigger interface {
	TriggerOnce(ctx context.Context, input usecase.SettlementRunInput) (usecase.SettlementRunResult, error)
}

type snapshotSource interface {
	Snapshot() *usecase.FixtureSnapshot
}

type Handler struct {
	ingestion   alertIngestor
	predictions predictionReader
	botRules    botRuleReloader
	settlement  settlementTrigger
	snapshots   snapshotSource
	logger      *logging.Logger
	validator   *validator.Validate
	now         func() time.Time
}

func NewHandler(
	ingestion alertIngestor,
	predictions predictionReader,
	botRules botRuleReloader,
	settlement settlementTrigger,
	snapshots snapshotSource,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		ingestion:   ingestion,
		predictions: predictions,
		botRules:    botRules,
		settlement:  settlement,
		snapshots:   snapshots,
		logger:      logger,
		validator:   validator.New(),
		now:         time.Now,
	}
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

// decodeJSONBody decodes a strict JSON body. An empty body leaves dst untouched
// when allowEmpty is set.
func decodeJSONBody(r *http.Request, dst any, allowEmpty bool) error {
	if r.Body == nil {
		if allowEmpty {
			return nil
		}
		return fmt.Errorf("%w: request body is required", usecase.ErrInvalidInput)
	}

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: read request body: %v", usecase.ErrInvalidInput, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		if allowEmpty {
			return nil
		}
		return fmt.Errorf("%w: request body is required", usecase.ErrInvalidInput)
	}

	decoder := sonic.ConfigDefault.NewDecoder(bytes.NewReader(raw))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

type ingestAlertRequest struct {
	Text       string     `json:"text" validate:"required,max=4000"`
	SourceID   string     `json:"source_id" validate:"omitempty,max=128"`
	ReceivedAt *time.Time `json:"received_at"`
}

type runSettlementRequest struct {
	BatchSize   int  `json:"batch_size" validate:"gte=0,lte=5000"`
	MaxWorkers  int  `json:"max_workers" validate:"gte=0,lte=64"`
	SkipRefresh bool `json:"skip_refresh"`
}

type teamDTO struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	LogoURL     string `json:"logo_url,omitempty"`
}

type predictionDTO struct {
	ID               string   `json:"id"`
	SourceID         string   `json:"source_id,omitempty"`
	AlertText        string   `json:"alert_text"`
	HomeTeamRaw      string   `json:"home_team_raw"`
	AwayTeamRaw      string   `json:"away_team_raw"`
	LeagueRaw        string   `json:"league_raw,omitempty"`
	AlertMinute      int      `json:"alert_minute"`
	AlertScore       string   `json:"alert_score"`
	LastGoalMinute   *int     `json:"last_goal_minute,omitempty"`
	BotMarker        string   `json:"bot_marker,omitempty"`
	BotGroupID       *string  `json:"bot_group_id,omitempty"`
	FixtureID        *string  `json:"fixture_id,omitempty"`
	HomeTeam         *teamDTO `json:"home_team,omitempty"`
	AwayTeam         *teamDTO `json:"away_team,omitempty"`
	ResolutionSource string   `json:"resolution_source"`
	Confidence       float64  `json:"confidence"`
	PredictionType   string   `json:"prediction_type"`
	Result           string   `json:"result"`
	FinalScore       *string  `json:"final_score,omitempty"`
	SettledAt        string   `json:"settled_at,omitempty"`
	ProcessingLog    []string `json:"processing_log"`
	CreatedAt        string   `json:"created_at"`
	UpdatedAt        string   `json:"updated_at"`
}

type botRulesReloadDTO struct {
	RuleCount int    `json:"rule_count"`
	LoadedAt  string `json:"loaded_at"`
}

type healthDTO struct {
	Status           string `json:"status"`
	SnapshotFixtures int    `json:"snapshot_fixtures"`
	SnapshotTakenAt  string `json:"snapshot_taken_at,omitempty"`
}

func predictionToDTO(ctx context.Context, v usecase.PredictionDetails) predictionDTO {
	_, span := startSpan(ctx, "httpapi.predictionToDTO")
	defer span.End()

	record := v.Record
	logEntries := record.ProcessingLog
	if logEntries == nil {
		logEntries = []string{}
	}

	return predictionDTO{
		ID:               record.ID,
		SourceID:         record.SourceID,
		AlertText:        record.AlertText,
		HomeTeamRaw:      record.HomeTeamRaw,
		AwayTeamRaw:      record.AwayTeamRaw,
		LeagueRaw:        record.LeagueRaw,
		AlertMinute:      record.AlertMinute,
		AlertScore:       fmt.Sprintf("%d-%d", record.AlertHomeScore, record.AlertAwayScore),
		LastGoalMinute:   record.LastGoalMinute,
		BotMarker:        record.BotMarker,
		BotGroupID:       record.BotGroupID,
		FixtureID:        record.FixtureID,
		HomeTeam:         teamToDTO(v.HomeTeam),
		AwayTeam:         teamToDTO(v.AwayTeam),
		ResolutionSource: record.ResolutionSource,
		Confidence:       record.Confidence,
		PredictionType:   record.Type.String(),
		Result:           string(record.Result),
		FinalScore:       record.FinalScore,
		SettledAt:        formatOptionalTime(record.SettledAt),
		ProcessingLog:    logEntries,
		CreatedAt:        formatTime(record.CreatedAt),
		UpdatedAt:        formatTime(record.UpdatedAt),
	}
}

func teamToDTO(v *team.Team) *teamDTO {
	if v == nil {
		return nil
	}
	return &teamDTO{
		ID:          v.ID,
		DisplayName: v.DisplayName,
		LogoURL:     v.LogoURL,
	}
}

func formatOptionalTime(v *time.Time) string {
	if v == nil {
		return ""
	}
	return formatTime(*v)
}

func formatTime(v time.Time) string {
	if v.IsZero() {
		return ""
	}
	return v.UTC().Format(time.RFC3339)
}
