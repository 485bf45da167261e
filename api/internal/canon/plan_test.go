package canon

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, s string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func firstQuestion(t *testing.T, v any) map[string]any {
	t.Helper()
	m, ok := v.(map[string]any)
	require.True(t, ok, "converted value is not an object: %#v", v)
	sections := sliceFromAny(m["sections"])
	require.NotEmpty(t, sections)
	questions := sliceFromAny(mapFromAny(sections[0])["questions"])
	require.NotEmpty(t, questions)
	return mapFromAny(questions[0])
}

func TestToPlanIdempotentOnCanonicalInput(t *testing.T) {
	plan := mustParse(t, `{
		"sections": [
			{"title": "Demographics", "questions": [{"text": "Age?", "type": "number"}]}
		],
		"suggestedName": "Customer Survey"
	}`)
	out := ToPlan(plan)
	assert.Equal(t, plan, out)
	// Pass-through, not a copy: the same value goes back out.
	assert.True(t, out.(map[string]any)["sections"] != nil)
}

func TestToPlanSurveyPages(t *testing.T) {
	raw := mustParse(t, `{
		"survey": {
			"title": "Staff Pulse",
			"pages": [{
				"title": "General",
				"controls": [
					{
						"label": "Pick one / اختر واحدا",
						"type": "select",
						"required": true,
						"id": "q-1",
						"settings": {"props": {"options": ["X / اكس"]}},
						"props": {"options": ["Y"]}
					},
					{"label": "Your comments", "type": "textarea"}
				]
			}]
		}
	}`)
	out := ToPlan(raw).(map[string]any)
	assert.Equal(t, "Staff Pulse", out["suggestedName"])

	q := firstQuestion(t, out)
	assert.Equal(t, "dropdown_list", q["type"], "select remaps to dropdown_list")
	assert.Equal(t, map[string]any{"en": "Pick one", "ar": "اختر واحدا"}, q["text"])
	assert.Equal(t, true, q["required"])
	assert.Equal(t, "q-1", q["spec_id"])
	assert.Equal(t, []any{map[string]any{"en": "X", "ar": "اكس"}}, q["options"],
		"settings.props.options wins over props.options")

	questions := sliceFromAny(mapFromAny(sliceFromAny(out["sections"])[0])["questions"])
	free := mapFromAny(questions[1])
	_, hasOptions := free["options"]
	assert.False(t, hasOptions, "free-text questions carry no options field")
}

func TestToPlanRenderedPages(t *testing.T) {
	raw := mustParse(t, `{
		"rendered_pages": [{
			"name": "Page 1",
			"questions": [{
				"question_text": "Age?",
				"question_type": "number",
				"required": true,
				"scale": null,
				"validation": null,
				"skip_logic": null
			}]
		}]
	}`)
	out := ToPlan(raw)

	want := map[string]any{
		"sections": []any{map[string]any{
			"title": "Page 1",
			"questions": []any{map[string]any{
				"text":     "Age?",
				"type":     "number",
				"required": true,
			}},
		}},
	}
	assert.Equal(t, want, out)

	q := firstQuestion(t, out)
	for _, k := range []string{"scale", "validation", "skip_logic", "options"} {
		_, has := q[k]
		assert.False(t, has, "null %s must normalize to absence", k)
	}
}

func TestToPlanRenderedPagesKeepsNonNullExtras(t *testing.T) {
	raw := mustParse(t, `{
		"rendered_pages": [{
			"title": "Ratings",
			"questions": [{
				"question_text": "Satisfaction",
				"question_type": "rating",
				"scale": {"min": 1, "max": 5},
				"validation": {"required_if": "q1"}
			}]
		}]
	}`)
	q := firstQuestion(t, ToPlan(raw))
	assert.Equal(t, map[string]any{"min": float64(1), "max": float64(5)}, q["scale"])
	assert.Equal(t, map[string]any{"required_if": "q1"}, q["validation"])
}

func TestToPlanGeneratedQuestions(t *testing.T) {
	t.Run("rendered_pages inside", func(t *testing.T) {
		raw := mustParse(t, `{
			"generated_questions": {
				"rendered_pages": [{
					"name": "P1",
					"questions": [{"question_text": "Q", "question_type": "text"}]
				}]
			}
		}`)
		q := firstQuestion(t, ToPlan(raw))
		assert.Equal(t, "Q", q["text"])
		assert.Equal(t, "text", q["type"])
	})

	t.Run("legacy map keyed by page id", func(t *testing.T) {
		raw := mustParse(t, `{
			"generated_questions": {
				"page_2": {"name": "Second", "questions": [{"question_text": "B", "question_type": "text"}]},
				"page_1": {"name": "First", "questions": [{"question_text": "A", "question_type": "text"}]}
			}
		}`)
		out := ToPlan(raw).(map[string]any)
		sections := sliceFromAny(out["sections"])
		require.Len(t, sections, 2)
		assert.Equal(t, "First", mapFromAny(sections[0])["title"], "page keys sort for deterministic order")
		assert.Equal(t, "Second", mapFromAny(sections[1])["title"])
	})
}

func TestToPlanPlanPages(t *testing.T) {
	t.Run("section_brief expands to placeholders", func(t *testing.T) {
		raw := mustParse(t, `{
			"plan": {
				"pages": [{
					"title": "Demographics",
					"section_brief": {"question_count": 2, "topic": "who the respondent is"}
				}]
			}
		}`)
		out := ToPlan(raw).(map[string]any)
		questions := sliceFromAny(mapFromAny(sliceFromAny(out["sections"])[0])["questions"])
		require.Len(t, questions, 2)

		q1 := mapFromAny(questions[0])
		assert.Equal(t, "Question 1 (to be generated)", q1["text"])
		assert.Equal(t, "placeholder", q1["type"])
		assert.Equal(t,
			map[string]any{"question_count": float64(2), "topic": "who the respondent is"},
			q1["section_brief"], "the brief rides along as metadata")
		assert.Equal(t, "Question 2 (to be generated)", mapFromAny(questions[1])["text"])
	})

	t.Run("question_specs map to questions", func(t *testing.T) {
		raw := mustParse(t, `{
			"plan": {
				"pages": [{
					"name": "Usage",
					"question_specs": [{
						"intent": "How often do you use the product?",
						"question_type": "radio",
						"options_hint": ["Daily", "Weekly", "Rarely"]
					}]
				}]
			}
		}`)
		q := firstQuestion(t, ToPlan(raw))
		assert.Equal(t, "How often do you use the product?", q["text"])
		assert.Equal(t, "radio", q["type"])
		assert.Equal(t, []any{"Daily", "Weekly", "Rarely"}, q["options"])
	})

	t.Run("untitled page gets a numbered title", func(t *testing.T) {
		raw := mustParse(t, `{"plan": {"pages": [{"question_specs": []}]}}`)
		out := ToPlan(raw).(map[string]any)
		assert.Equal(t, "Section 1", mapFromAny(sliceFromAny(out["sections"])[0])["title"])
	})
}

func TestToPlanBareQuestions(t *testing.T) {
	raw := mustParse(t, `{"questions": [{"text": "Q1", "type": "text"}]}`)
	out := ToPlan(raw).(map[string]any)
	sections := sliceFromAny(out["sections"])
	require.Len(t, sections, 1)
	assert.Equal(t, "Survey Questions", mapFromAny(sections[0])["title"])
	assert.Equal(t, "Q1", firstQuestion(t, out)["text"])
}

func TestToPlanWrapperUnwrapping(t *testing.T) {
	for _, key := range []string{"data", "result", "survey_plan", "surveyPlan"} {
		t.Run(key, func(t *testing.T) {
			raw := map[string]any{
				key: mustParse(t, `{
					"rendered_pages": [{
						"name": "P",
						"questions": [{"question_text": "Q", "question_type": "text"}]
					}]
				}`),
			}
			q := firstQuestion(t, ToPlan(raw))
			assert.Equal(t, "Q", q["text"])
		})
	}
}

func TestToPlanUnrecognizedInputPassesThrough(t *testing.T) {
	t.Run("non-object", func(t *testing.T) {
		assert.Equal(t, "not a plan", ToPlan("not a plan"))
		assert.Equal(t, float64(7), ToPlan(float64(7)))
		assert.Nil(t, ToPlan(nil))
	})

	t.Run("object with no known shape", func(t *testing.T) {
		raw := mustParse(t, `{"surprise": true}`)
		assert.Equal(t, raw, ToPlan(raw))
	})
}

// Every known upstream shape must come out with a defined text and type on
// every question.
func TestToPlanAllShapesProduceDefinedQuestions(t *testing.T) {
	shapes := map[string]string{
		"survey.pages":    `{"survey": {"pages": [{"controls": [{"label": "L", "type": "radio"}]}]}}`,
		"rendered_pages":  `{"rendered_pages": [{"questions": [{"question_text": "T", "question_type": "text"}]}]}`,
		"generated_pages": `{"generated_questions": {"rendered_pages": [{"questions": [{"question_text": "T", "question_type": "text"}]}]}}`,
		"plan_specs":      `{"plan": {"pages": [{"question_specs": [{"intent": "T", "question_type": "text"}]}]}}`,
		"plan_brief":      `{"plan": {"pages": [{"section_brief": {"question_count": 1}}]}}`,
		"bare_questions":  `{"questions": [{"text": "T", "type": "text"}]}`,
	}
	for name, payload := range shapes {
		t.Run(name, func(t *testing.T) {
			out := ToPlan(mustParse(t, payload))
			plan, err := ValidatePlan(out)
			require.NoError(t, err)
			for _, sec := range plan.Sections {
				for _, q := range sec.Questions {
					assert.NotEmpty(t, q.Type)
					assert.False(t, q.Text.IsZero())
				}
			}
		})
	}
}

// Detection order is part of the contract: a payload carrying several
// recognizable shapes resolves to the highest-priority one.
func TestToPlanDetectionOrder(t *testing.T) {
	raw := mustParse(t, `{
		"sections": [{"title": "Canonical", "questions": []}],
		"survey": {"pages": [{"controls": [{"label": "ignored", "type": "text"}]}]},
		"questions": [{"text": "ignored", "type": "text"}]
	}`)
	out := ToPlan(raw).(map[string]any)
	assert.Equal(t, "Canonical", mapFromAny(sliceFromAny(out["sections"])[0])["title"])
}
