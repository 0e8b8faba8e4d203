package httpapi

import (
	"context"
	"errors"
	"net/http"

	sonic "github.com/bytedance/sonic"

	"github.com/riskibarqy/prediction-settlement/internal/usecase"
)

const (
	apiVersion          = "2.0"
	errorDomain         = "prediction-settlement"
	internalErrorMsg    = "internal server error"
	internalErrorReason = "internalError"
)

type responseEnvelope struct {
	APIVersion string     `json:"apiVersion"`
	Data       any        `json:"data,omitempty"`
	Error      *errorBody `json:"error,omitempty"`
}

type errorBody struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Status  string      `json:"status"`
	Errors  []errorItem `json:"errors,omitempty"`
}

type errorItem struct {
	Domain  string `json:"domain"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type errorRule struct {
	target     error
	httpStatus int
	reason     string
	status     string
}

// errorRules is checked in order; the first sentinel matched by errors.Is wins.
var errorRules = []errorRule{
	{usecase.ErrInvalidInput, http.StatusBadRequest, "invalidInput", "INVALID_ARGUMENT"},
	{usecase.ErrNotFound, http.StatusNotFound, "notFound", "NOT_FOUND"},
	{usecase.ErrUnauthorized, http.StatusUnauthorized, "unauthorized", "UNAUTHENTICATED"},
	{usecase.ErrSettlementInProgress, http.StatusConflict, "settlementInProgress", "ABORTED"},
	{usecase.ErrDependencyUnavailable, http.StatusServiceUnavailable, "dependencyUnavailable", "UNAVAILABLE"},
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	_, span := startSpan(ctx, "httpapi.writeJSON")
	defer span.End()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(payload)
}

func writeSuccess(ctx context.Context, w http.ResponseWriter, status int, data any) {
	writeJSON(ctx, w, status, responseEnvelope{APIVersion: apiVersion, Data: data})
}

// writeError maps err onto a known rule. Unmapped errors are reported as a
// generic 500 without their message.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	rule, ok := matchErrorRule(err)
	if !ok {
		writeInternalError(ctx, w)
		return
	}
	writeErrorBody(ctx, w, rule.httpStatus, rule.status, rule.reason, err.Error())
}

func writeInternalError(ctx context.Context, w http.ResponseWriter) {
	writeErrorBody(ctx, w, http.StatusInternalServerError, "INTERNAL", internalErrorReason, internalErrorMsg)
}

func writeErrorBody(ctx context.Context, w http.ResponseWriter, httpStatus int, status, reason, message string) {
	writeJSON(ctx, w, httpStatus, responseEnvelope{
		APIVersion: apiVersion,
		Error: &errorBody{
			Code:    httpStatus,
			Message: message,
			Status:  status,
			Errors:  []errorItem{{Domain: errorDomain, Reason: reason, Message: message}},
		},
	})
}

func matchErrorRule(err error) (errorRule, bool) {
	for _, rule := range errorRules {
		if errors.Is(err, rule.target) {
			return rule, true
		}
	}
	return errorRule{}, false
}
