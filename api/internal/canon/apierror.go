package canon

import (
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// Classification kinds.
const (
	KindPromptValidation = "prompt_validation"
	KindGeneric          = "generic"
)

// reasonCodes the planner emits for structured prompt-validation failures.
var reasonCodes = map[string]bool{
	"too_short":           true,
	"gibberish":           true,
	"keyboard_walk":       true,
	"repetitive":          true,
	"unsupported":         true,
	"needs_clarification": true,
}

// Classification distinguishes a structured prompt-validation failure, which
// the UI turns into a retry suggestion, from a generic upstream error.
type Classification struct {
	Kind            string `json:"kind"`
	ReasonCode      string `json:"reason_code,omitempty"`
	Message         string `json:"message,omitempty"`
	SuggestedPrompt string `json:"suggested_prompt,omitempty"`
}

// Classify inspects an upstream error response. Only a 422 whose body parses
// as JSON with a recognized detail.reason_code, a non-empty detail.message
// and an optional string-or-null detail.suggested_prompt classifies as a
// prompt-validation failure; everything else is generic. Classification
// itself never fails; whether a generic result is a hard error is the
// caller's call.
func Classify(status int, body []byte) Classification {
	generic := Classification{Kind: KindGeneric}
	if status != http.StatusUnprocessableEntity {
		return generic
	}
	if !gjson.ValidBytes(body) {
		return generic
	}
	detail := gjson.GetBytes(body, "detail")
	if !detail.IsObject() {
		return generic
	}
	reason := detail.Get("reason_code")
	if reason.Type != gjson.String || !reasonCodes[reason.String()] {
		return generic
	}
	message := detail.Get("message")
	if message.Type != gjson.String || strings.TrimSpace(message.String()) == "" {
		return generic
	}
	suggested := detail.Get("suggested_prompt")
	switch suggested.Type {
	case gjson.Null, gjson.String:
		// string | null, or absent (gjson reports absent as Null)
	default:
		return generic
	}
	return Classification{
		Kind:            KindPromptValidation,
		ReasonCode:      reason.String(),
		Message:         message.String(),
		SuggestedPrompt: suggested.String(),
	}
}
