// Package canon reconciles the loosely-shaped JSON returned by the upstream
// survey planner into one canonical internal representation. The planner has
// shipped several envelope layouts over time; everything downstream (storage,
// rendering) only ever sees the canonical sections[].questions[] form this
// package converges to.
package canon

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Question types whose canonical form always carries an options list,
// possibly empty.
var choiceTypes = map[string]bool{
	"radio":         true,
	"checkbox_list": true,
	"dropdown_list": true,
	// legacy spellings still seen in stored plans
	"choice": true,
	"select": true,
}

// IsChoiceType reports whether a question type renders as a list of options.
func IsChoiceType(t string) bool {
	return choiceTypes[strings.ToLower(strings.TrimSpace(t))]
}

// Text is a bilingual field in typed form. It unmarshals from a plain
// string, a combined "English / Arabic" string, or an {en, ar} object, and
// marshals back to a plain string when monolingual.
type Text struct {
	EN   string
	AR   string
	mono bool
}

// NewText builds a bilingual Text from both variants.
func NewText(en, ar string) Text {
	return Text{EN: en, AR: ar, mono: en == ar}
}

// Mono builds a monolingual Text.
func Mono(s string) Text { return Text{EN: s, AR: s, mono: true} }

// In returns the variant for the given language, falling back to English.
func (t Text) In(lang string) string {
	if strings.EqualFold(strings.TrimSpace(lang), "ar") {
		return t.AR
	}
	return t.EN
}

// IsZero reports whether the field carries no content in either language.
func (t Text) IsZero() bool {
	return strings.TrimSpace(t.EN) == "" && strings.TrimSpace(t.AR) == ""
}

func (t Text) MarshalJSON() ([]byte, error) {
	if t.mono || t.EN == t.AR {
		return json.Marshal(t.EN)
	}
	return json.Marshal(LangPair{EN: t.EN, AR: t.AR})
}

func (t *Text) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	p := ResolveBoth(v)
	t.EN, t.AR = p.EN, p.AR
	_, isStr := v.(string)
	t.mono = isStr && p.EN == p.AR
	return nil
}

// ScaleLabels are the optional bound labels of a rating scale.
type ScaleLabels struct {
	Min *Text `json:"min,omitempty"`
	Max *Text `json:"max,omitempty"`
}

// ScaleSpec describes a rating-scale question.
type ScaleSpec struct {
	Min    float64      `json:"min"`
	Max    float64      `json:"max"`
	Labels *ScaleLabels `json:"labels,omitempty"`
}

// Question is one canonical survey question.
type Question struct {
	Text       Text           `json:"text"`
	Type       string         `json:"type"`
	Options    []Text         `json:"options,omitempty"`
	Required   *bool          `json:"required,omitempty"`
	SpecID     string         `json:"spec_id,omitempty"`
	Scale      *ScaleSpec     `json:"scale,omitempty"`
	Validation map[string]any `json:"validation,omitempty"`
	SkipLogic  map[string]any `json:"skip_logic,omitempty"`
}

// Section groups questions under a bilingual title.
type Section struct {
	Title     Text       `json:"title"`
	Questions []Question `json:"questions"`
}

// Plan is the single survey-structure representation every upstream shape
// converges to.
type Plan struct {
	Sections      []Section `json:"sections"`
	SuggestedName string    `json:"suggestedName,omitempty"`
}

// --- rules -------------------------------------------------------------------

// MetaRule carries the identity and bilingual description of one rule.
type MetaRule struct {
	RuleID        string `json:"rule_id"`
	RuleType      string `json:"rule_type"`
	DescriptionEN string `json:"description_en"`
	DescriptionAR string `json:"description_ar"`
}

// Condition is one flat rule condition.
type Condition struct {
	QuestionID string `json:"question_id"`
	Operator   string `json:"operator"`
	Value      any    `json:"value"`
}

// Action is one flat rule action.
type Action struct {
	ActionType    string `json:"action_type,omitempty"`
	ActionElement string `json:"action_element"`
	MessageEN     string `json:"message_en,omitempty"`
	MessageAR     string `json:"message_ar,omitempty"`
}

// Rule is one canonical conditional rule.
type Rule struct {
	MetaRule   MetaRule    `json:"meta_rule"`
	Conditions []Condition `json:"conditions"`
	Actions    []Action    `json:"actions"`
}

// RuleSet is the canonical conditional-rules representation.
type RuleSet struct {
	SurveyRules []Rule `json:"survey_rules"`
}

// --- strict boundary validation ----------------------------------------------

// dumpLimit bounds how much of an unrecognized payload is echoed back in
// validation errors.
const dumpLimit = 600

// truncateJSON serializes v and bounds the result so mismatch errors stay
// loggable while keeping enough of the payload to debug the mismatch.
func truncateJSON(v any, n int) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}

// ValidatePlan is the strict boundary check applied after conversion. The
// converter itself never fails; anything it could not recognize arrives here
// untouched and is rejected with a bounded dump of what was received.
func ValidatePlan(v any) (*Plan, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("planner response does not match expected plan format: top-level value is not an object (got: %s)", truncateJSON(v, dumpLimit))
	}
	rawSections, ok := m["sections"].([]any)
	if !ok {
		return nil, fmt.Errorf("planner response does not match expected plan format: missing sections array (got: %s)", truncateJSON(v, dumpLimit))
	}
	for i, rs := range rawSections {
		sec := mapFromAny(rs)
		if sec == nil {
			return nil, fmt.Errorf("planner response does not match expected plan format: sections[%d] is not an object (got: %s)", i, truncateJSON(v, dumpLimit))
		}
		for j, rq := range sliceFromAny(sec["questions"]) {
			q := mapFromAny(rq)
			if q == nil {
				return nil, fmt.Errorf("planner response does not match expected plan format: sections[%d].questions[%d] is not an object (got: %s)", i, j, truncateJSON(v, dumpLimit))
			}
			if _, has := q["text"]; !has {
				return nil, fmt.Errorf("planner response does not match expected plan format: sections[%d].questions[%d] has no text (got: %s)", i, j, truncateJSON(v, dumpLimit))
			}
			if strings.TrimSpace(stringFromAny(q["type"])) == "" {
				return nil, fmt.Errorf("planner response does not match expected plan format: sections[%d].questions[%d] has no type (got: %s)", i, j, truncateJSON(v, dumpLimit))
			}
		}
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("plan encode: %w", err)
	}
	var p Plan
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("planner response does not match expected plan format: %v (got: %s)", err, truncateJSON(v, dumpLimit))
	}
	return &p, nil
}

// ValidateRuleSet is the strict boundary check for converted rule sets.
func ValidateRuleSet(v any) (*RuleSet, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("planner response does not match expected rules format: top-level value is not an object (got: %s)", truncateJSON(v, dumpLimit))
	}
	if _, ok := m["survey_rules"].([]any); !ok {
		return nil, fmt.Errorf("planner response does not match expected rules format: missing survey_rules array (got: %s)", truncateJSON(v, dumpLimit))
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("rules encode: %w", err)
	}
	var rs RuleSet
	if err := json.Unmarshal(b, &rs); err != nil {
		return nil, fmt.Errorf("planner response does not match expected rules format: %v (got: %s)", err, truncateJSON(v, dumpLimit))
	}
	return &rs, nil
}
