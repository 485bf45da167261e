package handle

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"survey-studio/api/internal/planner"
)

// --- GENERATE RULES ----------------------------------------------------------

type generateRulesReq struct {
	SurveyID string `json:"survey_id,omitempty"`
	Engine   string `json:"engine,omitempty"`
	planner.RulesRequest
}

func (h *Handle) GenerateRules(w http.ResponseWriter, r *http.Request) {
	var req generateRulesReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
		return
	}

	// The plan can ride along in the request or come from a stored survey.
	if req.Plan == nil && req.SurveyID != "" {
		id, err := uuid.Parse(req.SurveyID)
		if err != nil {
			http.Error(w, "bad survey_id", http.StatusBadRequest)
			return
		}
		s, err := h.surveys.Get(r.Context(), id)
		if err != nil {
			http.Error(w, "survey not found", http.StatusNotFound)
			return
		}
		var plan map[string]any
		if err := json.Unmarshal(s.Plan, &plan); err != nil || plan == nil {
			http.Error(w, "survey has no generated plan yet", http.StatusConflict)
			return
		}
		req.Plan = plan
	}
	if req.Plan == nil {
		http.Error(w, "plan or survey_id is required", http.StatusBadRequest)
		return
	}

	engine, err := h.engs.GetEngine(req.Engine)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 120*time.Second)
	defer cancel()

	rules, err := engine.GenerateRules(ctx, req.RulesRequest)
	if err != nil {
		h.writePlannerError(w, err)
		return
	}

	if id, perr := uuid.Parse(req.SurveyID); perr == nil {
		if err := h.surveys.SaveRules(r.Context(), id, rules); err != nil {
			h.log.Warn("rules generated but not stored", zap.Error(err), zap.String("survey_id", req.SurveyID))
		}
	}

	writeJSON(w, http.StatusOK, rules)
}
