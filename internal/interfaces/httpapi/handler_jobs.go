package httpapi

import (
	"fmt"
	"net/http"

	"github.com/riskibarqy/prediction-settlement/internal/usecase"
)

func (h *Handler) RunSettlementJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSettlementJob")
	defer span.End()

	if h.settlement == nil {
		writeError(ctx, w, fmt.Errorf("%w: settlement scheduler is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var req runSettlementRequest
	if err := decodeJSONBody(r, &req, true); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.settlement.TriggerOnce(ctx, usecase.SettlementRunInput{
		BatchSize:   req.BatchSize,
		MaxWorkers:  req.MaxWorkers,
		SkipRefresh: req.SkipRefresh,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "run settlement job failed", "batch_size", req.BatchSize, "error", err)
		writeError(ctx, w, err)
		return
	}

	h.logger.InfoContext(ctx, "settlement job completed",
		"scanned", result.Scanned,
		"won", result.WonCount,
		"lost", result.LostCount,
		"void", result.VoidCount,
		"failed", result.FailedCount,
	)
	writeSuccess(ctx, w, http.StatusOK, result)
}

// InvalidateBotRules drops the cached rule set and reloads it so an admin
// edit takes effect before the TTL expires.
func (h *Handler) InvalidateBotRules(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.InvalidateBotRules")
	defer span.End()

	if h.botRules == nil {
		writeError(ctx, w, fmt.Errorf("%w: bot rule cache is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	h.botRules.Invalidate()
	rules, err := h.botRules.Refresh(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "reload bot rules failed", "error", err)
		writeError(ctx, w, fmt.Errorf("%w: reload bot rules: %v", usecase.ErrDependencyUnavailable, err))
		return
	}

	writeSuccess(ctx, w, http.StatusOK, botRulesReloadDTO{
		RuleCount: rules.RuleCount(),
		LoadedAt:  formatTime(h.now()),
	})
}
