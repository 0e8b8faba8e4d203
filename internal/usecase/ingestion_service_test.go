package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/riskibarqy/prediction-settlement/internal/domain/alert"
	"github.com/riskibarqy/prediction-settlement/internal/domain/fixture"
	"github.com/riskibarqy/prediction-settlement/internal/domain/prediction"
	"github.com/riskibarqy/prediction-settlement/internal/domain/teamalias"
	botrulemock "github.com/riskibarqy/prediction-settlement/internal/mocks/domain/botrule"
	predictionmock "github.com/riskibarqy/prediction-settlement/internal/mocks/domain/prediction"
	teamaliasmock "github.com/riskibarqy/prediction-settlement/internal/mocks/domain/teamalias"
)

type staticSnapshots struct {
	snapshot *FixtureSnapshot
}

func (s staticSnapshots) Snapshot() *FixtureSnapshot { return s.snapshot }

type sequenceIDs struct{ next string }

func (g sequenceIDs) NewID() (string, error) { return g.next, nil }

func newIngestionFixture(t *testing.T, snapshot *FixtureSnapshot) (*IngestionService, *predictionmock.Repository) {
	t.Helper()

	aliasRepo := teamaliasmock.NewRepository(t)
	aliasRepo.On("GetByRawName", mock.Anything, mock.Anything).Return(teamalias.Alias{}, false, nil).Maybe()
	aliasRepo.On("Upsert", mock.Anything, mock.Anything).Return(nil).Maybe()

	ruleRepo := botrulemock.NewRepository(t)
	ruleRepo.On("ListGroups", mock.Anything).Return(sampleBotGroups(), nil).Maybe()
	ruleRepo.On("ListActiveRules", mock.Anything).Return(sampleBotRules(), nil).Maybe()

	predictionRepo := predictionmock.NewRepository(t)
	service := NewIngestionService(
		predictionRepo,
		NewIdentityResolver(aliasRepo, nil, IdentityResolverConfig{}, nil),
		NewBotAttributor(NewBotRuleCache(ruleRepo, time.Minute), BotAttributorConfig{}, nil),
		NewFixtureCorrelator(DefaultCorrelationPolicy()),
		staticSnapshots{snapshot: snapshot},
		sequenceIDs{next: "0195f3c2-0000-7000-8000-000000000001"},
		nil,
	)
	return service, predictionRepo
}

func TestIngestionService_IngestSettlesEarlyWin(t *testing.T) {
	t.Parallel()

	live := liveFixture("19134", "Bayern Munich", "Borussia Dortmund", "Bundesliga", "Germany", 21)
	live.CurrentScore = fixture.Score{Home: 2, Away: 0}
	service, repo := newIngestionFixture(t, NewFixtureSnapshot([]fixture.LiveFixture{live}, time.Now()))

	var inserted prediction.Record
	repo.
		On("Insert", mock.Anything, mock.AnythingOfType("prediction.Record")).
		Run(func(args mock.Arguments) { inserted = args.Get(1).(prediction.Record) }).
		Return(nil).
		Once()

	got, err := service.Ingest(context.Background(), alert.RawAlert{
		Text:     "12\nGermany Bundesliga\n*Bayern Münih - Dortmund (1 - 0)\n⏰ 20",
		SourceID: "tg-channel-1",
	})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}

	if got.PredictionID != "0195f3c2-0000-7000-8000-000000000001" {
		t.Fatalf("unexpected prediction id: %s", got.PredictionID)
	}
	if got.Result != prediction.ResultWon {
		t.Fatalf("expected early win (2 goals > 1.5), got=%s (%s)", got.Result, got.Explanation)
	}
	if got.ResolutionSource != prediction.ResolutionSourceLiveContext {
		t.Fatalf("unexpected resolution source: %s", got.ResolutionSource)
	}
	if got.BotGroupID == nil || *got.BotGroupID != "g-early" {
		t.Fatalf("expected minute rule attribution, got=%v", got.BotGroupID)
	}
	if inserted.FinalScore == nil || *inserted.FinalScore != "2-0" || inserted.SettledAt == nil {
		t.Fatalf("expected settled record, got final=%v settled=%v", inserted.FinalScore, inserted.SettledAt)
	}
	if inserted.Type.String() != "first half 1.5 over" {
		t.Fatalf("unexpected stored type: %q", inserted.Type.String())
	}
	if len(inserted.ProcessingLog) < 4 || !strings.Contains(inserted.ProcessingLog[0], "[parse]") {
		t.Fatalf("unexpected processing log: %v", inserted.ProcessingLog)
	}
}

func TestIngestionService_UnresolvedStaysPending(t *testing.T) {
	t.Parallel()

	service, repo := newIngestionFixture(t, nil)
	repo.
		On("Insert", mock.Anything, mock.MatchedBy(func(r prediction.Record) bool {
			return r.Result == prediction.ResultPending && r.FixtureID == nil && r.ResolutionSource == prediction.ResolutionSourceNone
		})).
		Return(nil).
		Once()

	got, err := service.Ingest(context.Background(), alert.RawAlert{Text: "*Ajax - PSV (0 - 0) Eredivisie Minute: 12"})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if got.Result != prediction.ResultPending {
		t.Fatalf("unexpected result: %s", got.Result)
	}
}

func TestIngestionService_ParseFailureIsInvalidInput(t *testing.T) {
	t.Parallel()

	service, _ := newIngestionFixture(t, nil)
	_, err := service.Ingest(context.Background(), alert.RawAlert{Text: "no structure here"})
	if !errors.Is(err, ErrInvalidInput) || !errors.Is(err, ErrParseFailure) {
		t.Fatalf("expected parse failure, got=%v", err)
	}
}

func TestIngestionService_InsertFailureIsDependencyError(t *testing.T) {
	t.Parallel()

	service, repo := newIngestionFixture(t, nil)
	repo.On("Insert", mock.Anything, mock.Anything).Return(errors.New("pq: connection reset")).Once()

	_, err := service.Ingest(context.Background(), alert.RawAlert{Text: "*Ajax - PSV (0 - 0) Eredivisie Minute: 12"})
	if !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got=%v", err)
	}
}
