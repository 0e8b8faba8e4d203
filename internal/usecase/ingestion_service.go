package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/riskibarqy/prediction-settlement/internal/domain/alert"
	"github.com/riskibarqy/prediction-settlement/internal/domain/botrule"
	"github.com/riskibarqy/prediction-settlement/internal/domain/fixture"
	"github.com/riskibarqy/prediction-settlement/internal/domain/prediction"
	"github.com/riskibarqy/prediction-settlement/internal/platform/id"
	"github.com/riskibarqy/prediction-settlement/internal/platform/logging"
)

const correlatorConfidence = 0.9

type fixtureSnapshotSource interface {
	Snapshot() *FixtureSnapshot
}

type IngestResult struct {
	PredictionID     string            `json:"prediction_id"`
	Result           prediction.Result `json:"result"`
	Explanation      string            `json:"explanation,omitempty"`
	ResolutionSource string            `json:"resolution_source"`
	FixtureID        *string           `json:"fixture_id,omitempty"`
	BotGroupID       *string           `json:"bot_group_id,omitempty"`
}

// IngestionService turns raw alerts into stored prediction records.
type IngestionService struct {
	predictions prediction.Repository
	resolver    *IdentityResolver
	attributor  *BotAttributor
	correlator  *FixtureCorrelator
	snapshots   fixtureSnapshotSource
	ids         id.Generator
	logger      *logging.Logger
	now         func() time.Time
}

func NewIngestionService(
	predictions prediction.Repository,
	resolver *IdentityResolver,
	attributor *BotAttributor,
	correlator *FixtureCorrelator,
	snapshots fixtureSnapshotSource,
	ids id.Generator,
	logger *logging.Logger,
) *IngestionService {
	if logger == nil {
		logger = logging.Default()
	}
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	if correlator == nil {
		correlator = NewFixtureCorrelator(DefaultCorrelationPolicy())
	}

	return &IngestionService{
		predictions: predictions,
		resolver:    resolver,
		attributor:  attributor,
		correlator:  correlator,
		snapshots:   snapshots,
		ids:         ids,
		logger:      logger.Named("ingestion"),
		now:         time.Now,
	}
}

// Ingest parses, resolves and stores one alert. Parse failures return
// ErrInvalidInput; only a failed insert returns ErrDependencyUnavailable.
func (s *IngestionService) Ingest(ctx context.Context, raw alert.RawAlert) (IngestResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionService.Ingest")
	defer span.End()

	text := strings.TrimSpace(raw.Text)
	if text == "" {
		return IngestResult{}, fmt.Errorf("%w: alert text is required", ErrInvalidInput)
	}

	parsed, err := ParseAlert(text)
	if err != nil {
		s.logger.InfoContext(ctx, "alert dropped", "source_id", raw.SourceID, "error", err)
		return IngestResult{}, err
	}

	receivedAt := raw.ReceivedAt
	if receivedAt.IsZero() {
		receivedAt = s.now()
	}
	audit := newProcessingLog(s.now)
	audit.add(stageParse, fmt.Sprintf("%s vs %s at %d' score %d-%d type %q",
		parsed.HomeTeamRaw, parsed.AwayTeamRaw, parsed.Minute, parsed.Score.Home, parsed.Score.Away, parsed.PredictionType.String()))

	var snapshot *FixtureSnapshot
	if s.snapshots != nil {
		snapshot = s.snapshots.Snapshot()
	}

	var (
		resolution IdentityResolution
		group      *botrule.Group
		attrErr    error
		wg         conc.WaitGroup
	)
	wg.Go(func() {
		resolution = s.resolve(ctx, parsed, snapshot)
	})
	wg.Go(func() {
		if s.attributor == nil {
			return
		}
		group, attrErr = s.attributor.Attribute(ctx, BotAttributionInput{
			Minute:    parsed.Minute,
			AlertCode: parsed.BotMarker,
			FullText:  text,
		})
	})
	wg.Wait()

	audit.add(stageResolve, fmt.Sprintf("source=%s confidence=%.2f", resolution.Source, resolution.Confidence))
	if attrErr != nil {
		s.logger.WarnContext(ctx, "bot attribution failed, storing unattributed", "error", attrErr)
		audit.add(stageAttribute, "rules unavailable")
	} else if group != nil {
		audit.add(stageAttribute, "group="+group.Name)
	} else {
		audit.add(stageAttribute, "no matching group")
	}

	if resolution.FixtureID == nil {
		resolution = s.correlate(parsed, snapshot, resolution, audit)
	}

	record := prediction.Record{
		SourceID:         raw.SourceID,
		AlertText:        text,
		HomeTeamRaw:      parsed.HomeTeamRaw,
		AwayTeamRaw:      parsed.AwayTeamRaw,
		LeagueRaw:        parsed.LeagueRaw,
		AlertMinute:      parsed.Minute,
		AlertHomeScore:   parsed.Score.Home,
		AlertAwayScore:   parsed.Score.Away,
		LastGoalMinute:   parsed.LastGoalMinute,
		BotMarker:        parsed.BotMarker,
		HomeTeamID:       resolution.HomeTeamID,
		AwayTeamID:       resolution.AwayTeamID,
		FixtureID:        resolution.FixtureID,
		ResolutionSource: resolution.Source,
		Confidence:       resolution.Confidence,
		Type:             parsed.PredictionType,
		Result:           prediction.ResultPending,
		CreatedAt:        receivedAt,
		UpdatedAt:        receivedAt,
	}
	if group != nil {
		record.BotGroupID = stringPtr(group.ID)
	}

	decision := SettlementDecision{Result: prediction.ResultPending, Explanation: "fixture not resolved"}
	if record.FixtureID != nil {
		if item, ok := snapshot.FindByKey(*record.FixtureID); ok {
			decision = decideForFixture(record.Type, item)
			if decision.IsTerminal() {
				settledAt := s.now()
				final := item.CurrentScore.String()
				record.SettledAt = &settledAt
				record.FinalScore = &final
			}
		}
	}
	record.Result = decision.Result
	audit.add(stageEvaluate, string(decision.Result)+": "+decision.Explanation)

	predictionID, err := s.ids.NewID()
	if err != nil {
		return IngestResult{}, fmt.Errorf("generate prediction id: %w", err)
	}
	record.ID = predictionID
	record.ProcessingLog = audit.Entries()

	if err := s.predictions.Insert(ctx, record); err != nil {
		s.logger.ErrorContext(ctx, "prediction insert failed", "prediction_id", record.ID, "error", err)
		return IngestResult{}, fmt.Errorf("%w: insert prediction: %v", ErrDependencyUnavailable, err)
	}

	s.logger.InfoContext(ctx, "prediction ingested",
		"prediction_id", record.ID,
		"result", string(record.Result),
		"resolution_source", record.ResolutionSource,
		"prediction_type", record.Type.String(),
	)

	return IngestResult{
		PredictionID:     record.ID,
		Result:           record.Result,
		Explanation:      decision.Explanation,
		ResolutionSource: record.ResolutionSource,
		FixtureID:        record.FixtureID,
		BotGroupID:       record.BotGroupID,
	}, nil
}

func (s *IngestionService) resolve(ctx context.Context, parsed alert.ParsedPrediction, snapshot *FixtureSnapshot) IdentityResolution {
	if s.resolver == nil {
		return IdentityResolution{Source: prediction.ResolutionSourceNone}
	}
	return s.resolver.Resolve(ctx, parsed.HomeTeamRaw, parsed.AwayTeamRaw, parsed.Minute, snapshot)
}

func (s *IngestionService) correlate(parsed alert.ParsedPrediction, snapshot *FixtureSnapshot, resolution IdentityResolution, audit *processingLog) IdentityResolution {
	match, outcome := s.correlator.Correlate(CorrelationInput{
		HomeRaw:   parsed.HomeTeamRaw,
		AwayRaw:   parsed.AwayTeamRaw,
		LeagueRaw: parsed.LeagueRaw,
	}, snapshot)
	audit.add(stageCorrelate, string(outcome))
	if match == nil {
		return resolution
	}

	return applyCorrelation(resolution, *match)
}

func applyCorrelation(resolution IdentityResolution, match fixture.LiveFixture) IdentityResolution {
	resolution.FixtureID = stringPtr(match.Key())
	if resolution.HomeTeamID == nil {
		resolution.HomeTeamID = stringPtr(match.Home.ID)
	}
	if resolution.AwayTeamID == nil {
		resolution.AwayTeamID = stringPtr(match.Away.ID)
	}
	if resolution.Source == "" || resolution.Source == prediction.ResolutionSourceNone {
		resolution.Source = prediction.ResolutionSourceCorrelator
		resolution.Confidence = correlatorConfidence
	}
	return resolution
}

// decideForFixture voids predictions on abandoned fixtures and first-half
// predictions that full time left undecidable, and otherwise defers to
// EvaluateSettlement.
func decideForFixture(t prediction.Type, item fixture.LiveFixture) SettlementDecision {
	if item.Status.IsAbandoned() {
		return SettlementDecision{Result: prediction.ResultVoid, Explanation: "fixture abandoned"}
	}
	decision := EvaluateSettlement(t, item.CurrentScore, item.HalfTimeScore, item.Status)
	if !decision.IsTerminal() && item.Status.IsFinished() && item.HalfTimeScore == nil &&
		t.IsStructured() && t.Period == prediction.PeriodFirstHalf {
		return SettlementDecision{Result: prediction.ResultVoid, Explanation: "fixture finished but half-time score is unknown"}
	}
	return decision
}
