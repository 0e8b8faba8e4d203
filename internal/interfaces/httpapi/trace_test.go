package httpapi

import (
	"context"
	"testing"
)

func TestIsHandlerSpan(t *testing.T) {
	t.Parallel()

	tests := map[string]bool{
		"httpapi.Handler.IngestAlert":      true,
		"httpapi.Handler.RunSettlementJob": true,
		"httpapi.RequestLogging":           false,
		"httpapi.writeJSON":                false,
	}
	for name, want := range tests {
		if got := isHandlerSpan(name); got != want {
			t.Fatalf("isHandlerSpan(%q): got=%v want=%v", name, got, want)
		}
	}
}

func TestShouldTraceRequest(t *testing.T) {
	t.Parallel()

	for _, path := range []string{"/healthz", "/health", "/livez", "/readyz", " /HEALTHZ "} {
		if shouldTraceRequest(path) {
			t.Fatalf("expected no tracing for path %q", path)
		}
	}
	for _, path := range []string{"/v1/alerts", "/v1/predictions/p-1", "/", "/v1/internal/jobs/settle"} {
		if !shouldTraceRequest(path) {
			t.Fatalf("expected tracing for path %q", path)
		}
	}
}

func TestStartSpan_NoParentIsNoop(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	got, span := startSpan(ctx, "httpapi.Handler.GetPrediction")
	defer span.End()
	if got != ctx || span != noopSpan {
		t.Fatalf("expected the caller context and a no-op span without a parent")
	}
}
