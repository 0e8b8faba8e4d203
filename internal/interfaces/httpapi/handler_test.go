package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/riskibarqy/prediction-settlement/internal/domain/alert"
	"github.com/riskibarqy/prediction-settlement/internal/domain/prediction"
	"github.com/riskibarqy/prediction-settlement/internal/domain/team"
	"github.com/riskibarqy/prediction-settlement/internal/platform/logging"
	"github.com/riskibarqy/prediction-settlement/internal/usecase"
)

type fakeIngestor struct {
	got    alert.RawAlert
	result usecase.IngestResult
	err    error
}

func (f *fakeIngestor) Ingest(_ context.Context, raw alert.RawAlert) (usecase.IngestResult, error) {
	f.got = raw
	return f.result, f.err
}

type fakePredictionReader struct {
	details map[string]usecase.PredictionDetails
}

func (f *fakePredictionReader) GetByID(_ context.Context, predictionID string) (usecase.PredictionDetails, error) {
	item, ok := f.details[predictionID]
	if !ok {
		return usecase.PredictionDetails{}, fmt.Errorf("%w: prediction=%s", usecase.ErrNotFound, predictionID)
	}
	return item, nil
}

type fakeBotRules struct {
	invalidated int
	err         error
}

func (f *fakeBotRules) Invalidate() { f.invalidated++ }

func (f *fakeBotRules) Refresh(context.Context) (*usecase.BotRuleSet, error) {
	if f.err != nil {
		return nil, f.err
	}
	return usecase.NewBotRuleSet(nil, nil), nil
}

type fakeSettlement struct {
	got usecase.SettlementRunInput
	err error
}

func (f *fakeSettlement) TriggerOnce(_ context.Context, input usecase.SettlementRunInput) (usecase.SettlementRunResult, error) {
	f.got = input
	if f.err != nil {
		return usecase.SettlementRunResult{}, f.err
	}
	return usecase.SettlementRunResult{Scanned: 3, WonCount: 1}, nil
}

type routerDeps struct {
	ingestor    *fakeIngestor
	predictions *fakePredictionReader
	botRules    *fakeBotRules
	settlement  *fakeSettlement
}

func newTestRouter(t *testing.T, deps routerDeps) http.Handler {
	t.Helper()
	handler := NewHandler(deps.ingestor, deps.predictions, deps.botRules, deps.settlement, nil, logging.NewNop())
	handler.now = func() time.Time { return time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC) }
	return NewRouter(handler, logging.NewNop(), "job-secret")
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v body=%s", err, rec.Body.String())
	}
	return body
}

func TestIngestAlert_CreatesPrediction(t *testing.T) {
	t.Parallel()

	ingestor := &fakeIngestor{result: usecase.IngestResult{PredictionID: "pred-1", Result: prediction.ResultPending, ResolutionSource: prediction.ResolutionSourceMemory}}
	router := newTestRouter(t, routerDeps{ingestor: ingestor})

	body := `{"text":"  Galatasaray - Fenerbahce 1-0 45' Over 1.5  ","source_id":"tg-42"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/alerts", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("unexpected status: got=%d want=%d body=%s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	if ingestor.got.Text != "Galatasaray - Fenerbahce 1-0 45' Over 1.5" || ingestor.got.SourceID != "tg-42" {
		t.Fatalf("unexpected raw alert: %+v", ingestor.got)
	}
	if !ingestor.got.ReceivedAt.Equal(time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected received_at to default to now, got=%s", ingestor.got.ReceivedAt)
	}
	data, _ := decodeEnvelope(t, rec)["data"].(map[string]any)
	if got, _ := data["prediction_id"].(string); got != "pred-1" {
		t.Fatalf("unexpected prediction_id: got=%v want=pred-1", data["prediction_id"])
	}
}

func TestIngestAlert_RejectsInvalidPayloads(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{name: "empty text", body: `{"text":"   "}`},
		{name: "unknown field", body: `{"text":"a - b 1-0 10'","extra":true}`},
		{name: "malformed json", body: `{"text":`},
		{name: "empty body", body: ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(t, routerDeps{ingestor: &fakeIngestor{}})
			req := httptest.NewRequest(http.MethodPost, "/v1/alerts", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("unexpected status: got=%d want=%d", rec.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestIngestAlert_MapsUsecaseErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "parse failure", err: fmt.Errorf("%w: minute not found", usecase.ErrParseFailure), want: http.StatusBadRequest},
		{name: "storage down", err: fmt.Errorf("%w: insert prediction", usecase.ErrDependencyUnavailable), want: http.StatusServiceUnavailable},
		{name: "unexpected", err: errors.New("boom"), want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(t, routerDeps{ingestor: &fakeIngestor{err: tt.err}})
			req := httptest.NewRequest(http.MethodPost, "/v1/alerts", strings.NewReader(`{"text":"x"}`))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Fatalf("unexpected status: got=%d want=%d", rec.Code, tt.want)
			}
		})
	}
}

func TestGetPrediction(t *testing.T) {
	t.Parallel()

	home := "sportmonks:503"
	final := "3-1"
	settledAt := time.Date(2026, 3, 1, 19, 50, 0, 0, time.UTC)
	predictions := &fakePredictionReader{details: map[string]usecase.PredictionDetails{
		"pred-1": {
			Record: prediction.Record{
				ID:             "pred-1",
				AlertText:      "Galatasaray - Fenerbahce 1-0 45'",
				HomeTeamRaw:    "Galatasaray",
				AwayTeamRaw:    "Fenerbahce",
				AlertMinute:    45,
				AlertHomeScore: 1,
				HomeTeamID:     &home,
				Result:         prediction.ResultWon,
				FinalScore:     &final,
				SettledAt:      &settledAt,
			},
			HomeTeam: &team.Team{ID: home, DisplayName: "Galatasaray"},
		},
	}}
	router := newTestRouter(t, routerDeps{predictions: predictions})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/predictions/pred-1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got=%d want=200 body=%s", rec.Code, rec.Body.String())
	}
	data, _ := decodeEnvelope(t, rec)["data"].(map[string]any)
	if got, _ := data["result"].(string); got != "won" {
		t.Fatalf("unexpected result: got=%v want=won", data["result"])
	}
	if got, _ := data["alert_score"].(string); got != "1-0" {
		t.Fatalf("unexpected alert_score: got=%v want=1-0", data["alert_score"])
	}
	if got, _ := data["settled_at"].(string); got != "2026-03-01T19:50:00Z" {
		t.Fatalf("unexpected settled_at: got=%v", data["settled_at"])
	}
	homeTeam, _ := data["home_team"].(map[string]any)
	if got, _ := homeTeam["display_name"].(string); got != "Galatasaray" {
		t.Fatalf("unexpected home team: %v", data["home_team"])
	}
	if _, ok := data["away_team"]; ok {
		t.Fatalf("did not expect away_team for unresolved side")
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/predictions/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unexpected status for missing prediction: got=%d want=404", rec.Code)
	}
}

func TestInternalJobs_RequireToken(t *testing.T) {
	t.Parallel()

	settlement := &fakeSettlement{}
	router := newTestRouter(t, routerDeps{settlement: settlement, botRules: &fakeBotRules{}})

	for _, path := range []string{"/v1/internal/jobs/settle", "/v1/internal/bot-rules/invalidate"} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.Header.Set("X-Internal-Job-Token", "wrong")
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: unexpected status: got=%d want=401", path, rec.Code)
		}
	}
}

func TestRunSettlementJob(t *testing.T) {
	t.Parallel()

	settlement := &fakeSettlement{}
	router := newTestRouter(t, routerDeps{settlement: settlement})

	req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/settle", strings.NewReader(`{"batch_size":50,"skip_refresh":true}`))
	req.Header.Set("X-Internal-Job-Token", "job-secret")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got=%d want=200 body=%s", rec.Code, rec.Body.String())
	}
	if settlement.got.BatchSize != 50 || !settlement.got.SkipRefresh {
		t.Fatalf("unexpected run input: %+v", settlement.got)
	}

	// An empty body runs with defaults.
	req = httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/settle", nil)
	req.Header.Set("X-Internal-Job-Token", "job-secret")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status for empty body: got=%d want=200", rec.Code)
	}
}

func TestRunSettlementJob_InProgressIsConflict(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, routerDeps{settlement: &fakeSettlement{err: usecase.ErrSettlementInProgress}})
	req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/settle", nil)
	req.Header.Set("X-Internal-Job-Token", "job-secret")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("unexpected status: got=%d want=409", rec.Code)
	}
}

func TestInvalidateBotRules(t *testing.T) {
	t.Parallel()

	botRules := &fakeBotRules{}
	router := newTestRouter(t, routerDeps{botRules: botRules})
	req := httptest.NewRequest(http.MethodPost, "/v1/internal/bot-rules/invalidate", nil)
	req.Header.Set("X-Internal-Job-Token", "job-secret")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got=%d want=200 body=%s", rec.Code, rec.Body.String())
	}
	if botRules.invalidated != 1 {
		t.Fatalf("unexpected invalidations: got=%d want=1", botRules.invalidated)
	}

	failing := newTestRouter(t, routerDeps{botRules: &fakeBotRules{err: errors.New("db down")}})
	req = httptest.NewRequest(http.MethodPost, "/v1/internal/bot-rules/invalidate", nil)
	req.Header.Set("X-Internal-Job-Token", "job-secret")
	rec = httptest.NewRecorder()
	failing.ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("unexpected status on reload failure: got=%d want=503", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, routerDeps{})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got=%d want=200", rec.Code)
	}
}

func TestRecoverPanic(t *testing.T) {
	t.Parallel()

	handler := recoverPanic(logging.NewNop(), http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/alerts", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("unexpected status: got=%d want=500", rec.Code)
	}
}
