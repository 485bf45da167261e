package handle

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"survey-studio/api/internal/canon"
	"survey-studio/api/internal/store"
)

// --- SURVEYS CRUD ------------------------------------------------------------

type createSurveyReq struct {
	Title    string `json:"title"`
	Language string `json:"language,omitempty"`
	Prompt   string `json:"prompt,omitempty"`
}

func (h *Handle) CreateSurvey(w http.ResponseWriter, r *http.Request) {
	var req createSurveyReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		http.Error(w, "title is required", http.StatusBadRequest)
		return
	}
	s := &store.Survey{Title: req.Title, Language: req.Language, Prompt: req.Prompt}
	if err := h.surveys.Create(r.Context(), s); err != nil {
		http.Error(w, "create: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, s)
}

func (h *Handle) GetSurvey(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s, err := h.surveys.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "survey not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "get: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *Handle) ListSurveys(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	list, err := h.surveys.List(r.Context(), limit)
	if err != nil {
		http.Error(w, "list: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"surveys": list})
}

// UpdateSurveyPlan stores an author-edited plan. Edits go through the same
// normalization and boundary validation as planner output, so hand-tweaked
// legacy shapes land canonical too.
func (h *Handle) UpdateSurveyPlan(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var raw any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
		return
	}
	plan := canon.ToPlan(raw)
	if _, err := canon.ValidatePlan(plan); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.surveys.SavePlan(r.Context(), id, plan); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "survey not found", http.StatusNotFound)
			return
		}
		http.Error(w, "save: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (h *Handle) DeleteSurvey(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.surveys.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "survey not found", http.StatusNotFound)
			return
		}
		http.Error(w, "delete: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "bad survey id", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}
