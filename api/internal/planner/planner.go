// Package planner talks to the upstream AI survey-planning service. The
// service is a black box that answers JSON whose envelope has drifted across
// deployments, so every response body is pushed through the canon converters
// and validated at this boundary before anything downstream sees it.
package planner

import (
	"context"
	"errors"
	"fmt"

	"survey-studio/api/internal/canon"
)

// GenerateRequest asks the planner for a full survey structure.
type GenerateRequest struct {
	Prompt      string `json:"prompt"`
	Language    string `json:"language,omitempty"`
	MaxSections int    `json:"max_sections,omitempty"`
}

// SectionRequest asks the planner to (re)generate one section of an existing
// plan.
type SectionRequest struct {
	Prompt       string         `json:"prompt"`
	SectionBrief map[string]any `json:"section_brief,omitempty"`
	Language     string         `json:"language,omitempty"`
}

// RulesRequest asks the planner for conditional rules over a plan.
type RulesRequest struct {
	ThreadID string         `json:"thread_id,omitempty"`
	Plan     map[string]any `json:"plan"`
	Prompt   string         `json:"prompt,omitempty"`
}

// Engine is one way of reaching the planning service.
type Engine interface {
	Name() string
	GeneratePlan(ctx context.Context, in GenerateRequest) (map[string]any, error)
	GenerateSection(ctx context.Context, in SectionRequest) (map[string]any, error)
	GenerateRules(ctx context.Context, in RulesRequest) (map[string]any, error)
	ValidatePrompt(ctx context.Context, prompt string) error
}

// Engines is the registry handlers resolve an engine from.
type Engines struct {
	Planner Engine
}

// GetEngine resolves an engine by name; an empty name takes the default.
func (e *Engines) GetEngine(name string) (Engine, error) {
	switch name {
	case "", "planner", "default":
		if e.Planner == nil {
			return nil, errors.New("planner engine is not configured")
		}
		return e.Planner, nil
	default:
		return nil, fmt.Errorf("unknown engine %q; use 'planner'", name)
	}
}

// HTTPError is a non-2xx upstream answer that is not a structured validation
// failure. Body keeps a bounded prefix of what came back so callers can log
// enough to debug the mismatch.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("planner %d: %s", e.Status, e.Body)
}

// ValidationError is a structured prompt-validation failure (422 with a
// recognized reason code). It is an expected, recoverable outcome, not a
// system fault: the UI turns it into a retry suggestion.
type ValidationError struct {
	Detail canon.Classification
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("prompt validation failed (%s): %s", e.Detail.ReasonCode, e.Detail.Message)
}

// AsValidationError unwraps err into a *ValidationError when it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
