// Package handle exposes the survey-authoring HTTP API.
package handle

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"survey-studio/api/internal/planner"
	"survey-studio/api/internal/store"
)

type Handle struct {
	engs    *planner.Engines
	surveys *store.SurveyRepo
	log     *zap.Logger
}

func New(engs *planner.Engines, surveys *store.SurveyRepo, log *zap.Logger) *Handle {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handle{
		engs:    engs,
		surveys: surveys,
		log:     log,
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writePlannerError maps planner failures onto the API surface. A structured
// prompt-validation rejection is not a fault: it goes out as a 422 the UI
// turns into a retry suggestion, pre-filling the suggested prompt when one
// came back.
func (h *Handle) writePlannerError(w http.ResponseWriter, err error) {
	if ve, ok := planner.AsValidationError(err); ok {
		writeJSON(w, http.StatusUnprocessableEntity, ve.Detail)
		return
	}
	h.log.Warn("planner call failed", zap.Error(err))
	http.Error(w, "planner error: "+err.Error(), http.StatusBadGateway)
}
