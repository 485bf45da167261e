package handle

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"survey-studio/api/internal/canon"
	"survey-studio/api/internal/planner"
)

// --- GENERATE PLAN -----------------------------------------------------------

type generatePlanReq struct {
	SurveyID string `json:"survey_id,omitempty"`
	Engine   string `json:"engine,omitempty"`
	planner.GenerateRequest
}

func (h *Handle) GeneratePlan(w http.ResponseWriter, r *http.Request) {
	var req generatePlanReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		http.Error(w, "prompt is required", http.StatusBadRequest)
		return
	}

	engine, err := h.engs.GetEngine(req.Engine)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 120*time.Second)
	defer cancel()

	plan, err := engine.GeneratePlan(ctx, req.GenerateRequest)
	if err != nil {
		h.writePlannerError(w, err)
		return
	}

	if id, perr := uuid.Parse(req.SurveyID); perr == nil {
		if err := h.surveys.SavePlan(r.Context(), id, plan); err != nil {
			h.log.Warn("plan generated but not stored", zap.Error(err), zap.String("survey_id", req.SurveyID))
		} else {
			// Re-check the stored blob off the request path; a mismatch here
			// means a converter regression worth knowing about.
			go h.revalidateStoredPlan(id)
		}
	}

	writeJSON(w, http.StatusOK, plan)
}

// --- GENERATE SECTION --------------------------------------------------------

type generateSectionReq struct {
	Engine string `json:"engine,omitempty"`
	planner.SectionRequest
}

func (h *Handle) GenerateSection(w http.ResponseWriter, r *http.Request) {
	var req generateSectionReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Prompt) == "" && req.SectionBrief == nil {
		http.Error(w, "prompt or section_brief is required", http.StatusBadRequest)
		return
	}

	engine, err := h.engs.GetEngine(req.Engine)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 120*time.Second)
	defer cancel()

	section, err := engine.GenerateSection(ctx, req.SectionRequest)
	if err != nil {
		h.writePlannerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, section)
}

// --- VALIDATE PROMPT ---------------------------------------------------------

type validatePromptReq struct {
	Engine string `json:"engine,omitempty"`
	Prompt string `json:"prompt"`
}

func (h *Handle) ValidatePrompt(w http.ResponseWriter, r *http.Request) {
	var req validatePromptReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
		return
	}
	engine, err := h.engs.GetEngine(req.Engine)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	if err := engine.ValidatePrompt(ctx, req.Prompt); err != nil {
		h.writePlannerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// revalidateStoredPlan re-runs the strict plan check against what actually
// landed in the store.
func (h *Handle) revalidateStoredPlan(id uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s, err := h.surveys.Get(ctx, id)
	if err != nil {
		h.log.Warn("stored plan revalidation: load failed", zap.Error(err), zap.String("survey_id", id.String()))
		return
	}
	var v any
	if err := json.Unmarshal(s.Plan, &v); err != nil {
		h.log.Error("stored plan is not valid JSON", zap.Error(err), zap.String("survey_id", id.String()))
		return
	}
	if _, err := canon.ValidatePlan(v); err != nil {
		h.log.Error("stored plan failed canonical validation", zap.Error(err), zap.String("survey_id", id.String()))
	}
}
