package httpserver

import (
	"net/http"

	"go.uber.org/zap"

	"survey-studio/api/internal/handle"
)

// NewMux wires the API routes.
func NewMux(h *handle.Handle) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("POST /v1/plan/generate", h.GeneratePlan)
	mux.HandleFunc("POST /v1/plan/section", h.GenerateSection)
	mux.HandleFunc("POST /v1/prompt/validate", h.ValidatePrompt)
	mux.HandleFunc("POST /v1/rules/generate", h.GenerateRules)

	mux.HandleFunc("POST /v1/surveys", h.CreateSurvey)
	mux.HandleFunc("GET /v1/surveys", h.ListSurveys)
	mux.HandleFunc("GET /v1/surveys/{id}", h.GetSurvey)
	mux.HandleFunc("PUT /v1/surveys/{id}/plan", h.UpdateSurveyPlan)
	mux.HandleFunc("DELETE /v1/surveys/{id}", h.DeleteSurvey)

	return mux
}

// Start blocks serving the API.
func Start(addr string, mux *http.ServeMux, log *zap.Logger) error {
	log.Info("listening", zap.String("addr", addr))
	return http.ListenAndServe(addr, mux)
}
