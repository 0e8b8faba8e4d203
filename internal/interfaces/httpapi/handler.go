package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/riskibarqy/prediction-settlement/internal/domain/alert"
	"github.com/riskibarqy/prediction-settlement/internal/usecase"
)

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	out := healthDTO{Status: "ok"}
	if h.snapshots != nil {
		snapshot := h.snapshots.Snapshot()
		out.SnapshotFixtures = snapshot.Len()
		out.SnapshotTakenAt = formatTime(snapshot.TakenAt())
	}

	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) IngestAlert(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.IngestAlert")
	defer span.End()

	if h.ingestion == nil {
		writeError(ctx, w, fmt.Errorf("%w: ingestion service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var req ingestAlertRequest
	if err := decodeJSONBody(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	req.Text = strings.TrimSpace(req.Text)
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	receivedAt := h.now().UTC()
	if req.ReceivedAt != nil && !req.ReceivedAt.IsZero() {
		receivedAt = req.ReceivedAt.UTC()
	}

	result, err := h.ingestion.Ingest(ctx, alert.RawAlert{
		Text:       req.Text,
		SourceID:   strings.TrimSpace(req.SourceID),
		ReceivedAt: receivedAt,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "ingest alert failed", "source_id", req.SourceID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, result)
}

func (h *Handler) GetPrediction(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPrediction")
	defer span.End()

	if h.predictions == nil {
		writeError(ctx, w, fmt.Errorf("%w: prediction service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	predictionID := r.PathValue("predictionID")
	details, err := h.predictions.GetByID(ctx, predictionID)
	if err != nil {
		h.logger.WarnContext(ctx, "get prediction failed", "prediction_id", predictionID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, predictionToDTO(ctx, details))
}
