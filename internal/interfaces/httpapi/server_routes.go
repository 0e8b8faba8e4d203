package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPredictionRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/alerts", handler.IngestAlert)
	mux.HandleFunc("GET /v1/predictions/{predictionID}", handler.GetPrediction)
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/settle", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunSettlementJob)))
	// Admin hook for rule edits made directly in storage.
	mux.Handle("POST /v1/internal/bot-rules/invalidate", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.InvalidateBotRules)))
}
