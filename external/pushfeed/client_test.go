package pushfeed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"

	"github.com/riskibarqy/prediction-settlement/internal/platform/logging"
	"github.com/riskibarqy/prediction-settlement/internal/usecase"
)

type recordingApplier struct {
	mu     sync.Mutex
	deltas []usecase.LiveDelta
	got    chan struct{}
}

func newRecordingApplier() *recordingApplier {
	return &recordingApplier{got: make(chan struct{}, 16)}
}

func (a *recordingApplier) ApplyLiveDelta(delta usecase.LiveDelta) bool {
	a.mu.Lock()
	a.deltas = append(a.deltas, delta)
	a.mu.Unlock()
	select {
	case a.got <- struct{}{}:
	default:
	}
	return delta.HomeStats != nil
}

func (a *recordingApplier) snapshot() []usecase.LiveDelta {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]usecase.LiveDelta, len(a.deltas))
	copy(out, a.deltas)
	return out
}

func newFeedServer(t *testing.T, frames []string, subscribed chan<- subscribeRequest) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var req subscribeRequest
		if err := sonic.Unmarshal(raw, &req); err == nil && subscribed != nil {
			select {
			case subscribed <- req:
			default:
			}
		}

		for _, frame := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
				return
			}
		}
		// Hold the connection open until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func waitFor(t *testing.T, applier *recordingApplier, n int) []usecase.LiveDelta {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		if got := applier.snapshot(); len(got) >= n {
			return got
		}
		select {
		case <-applier.got:
		case <-deadline:
			t.Fatalf("timed out waiting for %d deltas, got=%d", n, len(applier.snapshot()))
		}
	}
}

func TestClient_ForwardsDeltasAfterSubscribe(t *testing.T) {
	t.Parallel()

	frames := []string{
		`{"mt":"ack"}`,
		`not-json`,
		`{"mt":"delta","id":"9001","st":3,"hs":[0,0,0,0,2],"as":[0,0,0,0,1],"ps":1772384400,"hn":"Galatasaray","an":"Fenerbahce","lg":"Super Lig","cc":"Turkey"}`,
		`{"mt":"batch","items":[{"id":"9002","st":1},{"id":""},{"id":"9003","hs":[1,0,0,0,0],"as":[0,0,0,0,0]}]}`,
	}
	subscribed := make(chan subscribeRequest, 1)
	server := newFeedServer(t, frames, subscribed)
	defer server.Close()

	applier := newRecordingApplier()
	client := NewClient(ClientConfig{URL: wsURL(server), Token: "secret", Logger: logging.NewNop()}, applier)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		client.ConnectWithRetry(ctx)
		close(done)
	}()

	got := waitFor(t, applier, 3)
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("ConnectWithRetry did not stop after cancel")
	}

	select {
	case req := <-subscribed:
		if req.Op != "subscribe" || req.Token != "secret" || req.Topic != defaultTopic {
			t.Fatalf("unexpected subscribe request: %+v", req)
		}
	default:
		t.Fatalf("server never saw a subscribe request")
	}

	first := got[0]
	if first.FixtureID != "9001" || first.StatusCode == nil || *first.StatusCode != 3 {
		t.Fatalf("unexpected first delta: %+v", first)
	}
	if first.PeriodStart == nil || *first.PeriodStart != 1772384400 {
		t.Fatalf("unexpected period start: %+v", first.PeriodStart)
	}
	if first.HomeName != "Galatasaray" || first.Country != "Turkey" || len(first.HomeStats) != 5 {
		t.Fatalf("unexpected first delta fields: %+v", first)
	}
	if got[1].FixtureID != "9002" || got[1].HomeStats != nil {
		t.Fatalf("expected partial delta without stats: %+v", got[1])
	}
	if got[2].FixtureID != "9003" {
		t.Fatalf("unexpected third delta: got=%s want=9003", got[2].FixtureID)
	}
	if client.Received() != 3 {
		t.Fatalf("unexpected received count: got=%d want=3", client.Received())
	}
	if client.Applied() != 2 {
		t.Fatalf("unexpected applied count: got=%d want=2", client.Applied())
	}
}

func TestClient_ConnectFailsOnServerError(t *testing.T) {
	t.Parallel()

	server := newFeedServer(t, []string{`{"mt":"error","msg":"invalid token"}`}, nil)
	defer server.Close()

	client := NewClient(ClientConfig{URL: wsURL(server), Logger: logging.NewNop()}, newRecordingApplier())
	err := client.connect(context.Background())
	if err == nil || !strings.Contains(err.Error(), "invalid token") {
		t.Fatalf("expected server error to end connection, got=%v", err)
	}
}

func TestClient_ConnectWithRetryStopsWhileBackingOff(t *testing.T) {
	t.Parallel()

	client := NewClient(ClientConfig{
		URL:        "ws://127.0.0.1:1/feed",
		MinBackoff: time.Hour,
		Logger:     logging.NewNop(),
	}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		client.ConnectWithRetry(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("ConnectWithRetry did not return after context deadline")
	}
}

func TestClient_BackoffDoublesUpToMax(t *testing.T) {
	t.Parallel()

	client := NewClient(ClientConfig{URL: "ws://example.invalid"}, nil)
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{attempt: 1, want: time.Second},
		{attempt: 2, want: 2 * time.Second},
		{attempt: 4, want: 8 * time.Second},
		{attempt: 5, want: 16 * time.Second},
		{attempt: 6, want: 30 * time.Second},
		{attempt: 20, want: 30 * time.Second},
	}
	for _, tc := range tests {
		if got := client.backoff(tc.attempt); got != tc.want {
			t.Fatalf("backoff(%d): got=%s want=%s", tc.attempt, got, tc.want)
		}
	}
}
