package canon

import (
	"fmt"
	"sort"
)

// The planner has returned logically equivalent plans under several envelope
// layouts across API revisions. Each layout gets a (match, convert) pair and
// the pairs are evaluated in priority order: payloads can nest several
// recognizable shapes at once, so the order below is itself part of the
// contract and is exercised directly by tests.
type shapeRule struct {
	name    string
	match   func(m map[string]any) bool
	convert func(m map[string]any) map[string]any
}

var planShapes = []shapeRule{
	{
		// Already canonical; pass through untouched so conversion is
		// idempotent.
		name:    "sections",
		match:   func(m map[string]any) bool { return sliceFromAny(m["sections"]) != nil },
		convert: func(m map[string]any) map[string]any { return m },
	},
	{
		name: "survey.pages",
		match: func(m map[string]any) bool {
			return sliceFromAny(mapFromAny(m["survey"])["pages"]) != nil
		},
		convert: convertSurveyPages,
	},
	{
		name:    "rendered_pages",
		match:   func(m map[string]any) bool { return sliceFromAny(m["rendered_pages"]) != nil },
		convert: func(m map[string]any) map[string]any { return convertRenderedPages(sliceFromAny(m["rendered_pages"]), m) },
	},
	{
		name: "generated_questions",
		match: func(m map[string]any) bool {
			return mapFromAny(m["generated_questions"]) != nil || sliceFromAny(m["generated_questions"]) != nil
		},
		convert: convertGeneratedQuestions,
	},
	{
		name: "plan.pages",
		match: func(m map[string]any) bool {
			return sliceFromAny(mapFromAny(m["plan"])["pages"]) != nil
		},
		convert: convertPlanPages,
	},
	{
		name:    "bare_questions",
		match:   func(m map[string]any) bool { return sliceFromAny(m["questions"]) != nil },
		convert: convertBareQuestions,
	},
}

// wrapperKeys are envelope keys some planner revisions wrap the real payload
// in. One level of unwrapping is attempted before shape detection.
var wrapperKeys = []string{"data", "result", "survey_plan", "surveyPlan"}

func matchShape(m map[string]any) *shapeRule {
	for i := range planShapes {
		if planShapes[i].match(m) {
			return &planShapes[i]
		}
	}
	return nil
}

// ToPlan converts any known upstream plan layout to the canonical
// sections[].questions[] form. It never fails: unrecognized objects and
// non-object values are returned unchanged so the strict boundary validator
// can reject them with the original payload attached, instead of this
// converter guessing further.
func ToPlan(raw any) any {
	m, ok := raw.(map[string]any)
	if !ok {
		return raw
	}
	for _, k := range wrapperKeys {
		if inner := mapFromAny(m[k]); inner != nil {
			if r := matchShape(inner); r != nil {
				return r.convert(inner)
			}
		}
	}
	if r := matchShape(m); r != nil {
		return r.convert(m)
	}
	return raw
}

// --- per-shape converters ----------------------------------------------------

// convertSurveyPages handles the builder-export layout: survey.pages[] with
// controls[] instead of questions.
func convertSurveyPages(m map[string]any) map[string]any {
	survey := mapFromAny(m["survey"])
	sections := []any{}
	for _, rp := range sliceFromAny(survey["pages"]) {
		page := mapFromAny(rp)
		if page == nil {
			continue
		}
		questions := []any{}
		for _, rc := range sliceFromAny(page["controls"]) {
			control := mapFromAny(rc)
			if control == nil {
				continue
			}
			q := map[string]any{
				"text": normalizeTextValue(control["label"]),
				"type": remapQuestionType(stringFromAny(control["type"])),
			}
			applyControlExtras(q, control)
			questions = append(questions, q)
		}
		sections = append(sections, map[string]any{
			"title":     pageTitle(page),
			"questions": questions,
		})
	}
	out := map[string]any{"sections": sections}
	if name := stringFromAny(survey["title"]); name != "" {
		out["suggestedName"] = name
	}
	carrySuggestedName(out, m)
	return out
}

// applyControlExtras fills the option/scale/required/spec_id fields of a
// question converted from a builder control.
func applyControlExtras(q map[string]any, control map[string]any) {
	if IsChoiceType(stringFromAny(q["type"])) {
		q["options"] = ExtractOptions(control)
	}
	if scale := ExtractScale(control); scale != nil {
		q["scale"] = scale
	}
	if req, ok := control["required"].(bool); ok {
		q["required"] = req
	}
	if id := stringFromAny(firstNonNil(control["spec_id"], control["id"])); id != "" {
		q["spec_id"] = id
	}
}

// convertRenderedPages handles the rendered-page layout: pages carry
// questions[] with question_text/question_type field names.
func convertRenderedPages(pages []any, src map[string]any) map[string]any {
	sections := []any{}
	for _, rp := range pages {
		page := mapFromAny(rp)
		if page == nil {
			continue
		}
		questions := []any{}
		for _, rq := range sliceFromAny(page["questions"]) {
			q := mapFromAny(rq)
			if q == nil {
				continue
			}
			questions = append(questions, convertRenderedQuestion(q))
		}
		sections = append(sections, map[string]any{
			"title":     pageTitle(page),
			"questions": questions,
		})
	}
	out := map[string]any{"sections": sections}
	carrySuggestedName(out, src)
	return out
}

// convertRenderedQuestion renames the rendered-page question fields into the
// canonical ones and collapses null into absence: the canonical schema has
// exactly one representation for a missing field.
func convertRenderedQuestion(q map[string]any) map[string]any {
	out := map[string]any{
		"text": normalizeTextValue(firstNonNil(q["question_text"], q["text"])),
		"type": remapQuestionType(stringFromAny(firstNonNil(q["question_type"], q["type"]))),
	}
	if IsChoiceType(stringFromAny(out["type"])) {
		opts := []any{}
		for _, opt := range sliceFromAny(q["options"]) {
			if textIsEmpty(opt) {
				continue
			}
			opts = append(opts, normalizeTextValue(opt))
		}
		out["options"] = opts
	}
	if req, ok := q["required"].(bool); ok {
		out["required"] = req
	}
	if id := stringFromAny(firstNonNil(q["spec_id"], q["id"])); id != "" {
		out["spec_id"] = id
	}
	for _, k := range []string{"scale", "validation", "skip_logic"} {
		if v, ok := q[k]; ok && v != nil {
			out[k] = v
		}
	}
	return out
}

// convertGeneratedQuestions unwraps the generated_questions envelope. Newer
// revisions put rendered_pages inside it; the legacy revision keyed page-like
// objects directly by page id.
func convertGeneratedQuestions(m map[string]any) map[string]any {
	if pages := sliceFromAny(m["generated_questions"]); pages != nil {
		return convertRenderedPages(pages, m)
	}
	gq := mapFromAny(m["generated_questions"])
	if pages := sliceFromAny(gq["rendered_pages"]); pages != nil {
		return convertRenderedPages(pages, m)
	}
	// Legacy map-keyed-by-page-id form. Key order is meaningless upstream,
	// so sort for deterministic output.
	keys := make([]string, 0, len(gq))
	for k := range gq {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pages := make([]any, 0, len(keys))
	for _, k := range keys {
		if page := mapFromAny(gq[k]); page != nil {
			pages = append(pages, page)
		}
	}
	return convertRenderedPages(pages, m)
}

// convertPlanPages handles the planning layout: plan.pages[] carrying either
// a section_brief (no concrete questions yet) or detailed question_specs.
func convertPlanPages(m map[string]any) map[string]any {
	pl := mapFromAny(m["plan"])
	sections := []any{}
	for i, rp := range sliceFromAny(pl["pages"]) {
		page := mapFromAny(rp)
		if page == nil {
			continue
		}
		title := pageTitle(page)
		if textIsEmpty(title) {
			title = fmt.Sprintf("Section %d", i+1)
		}
		var questions []any
		if brief := mapFromAny(page["section_brief"]); brief != nil {
			questions = placeholderQuestions(brief)
		} else {
			questions = specQuestions(sliceFromAny(page["question_specs"]))
		}
		sections = append(sections, map[string]any{
			"title":     title,
			"questions": questions,
		})
	}
	out := map[string]any{"sections": sections}
	carrySuggestedName(out, m)
	if name := stringFromAny(firstNonNil(pl["suggested_name"], pl["suggestedName"])); name != "" {
		out["suggestedName"] = name
	}
	return out
}

// placeholderQuestions expands a section brief into numbered placeholders so
// the author sees how many questions the page will hold before generation.
func placeholderQuestions(brief map[string]any) []any {
	n := intFromAny(brief["question_count"], 0)
	if n < 1 {
		n = 3
	}
	out := make([]any, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, map[string]any{
			"text":          fmt.Sprintf("Question %d (to be generated)", i),
			"type":          "placeholder",
			"section_brief": brief,
		})
	}
	return out
}

// specQuestions converts detailed question specs (intent/question_type/
// options_hint) into canonical questions.
func specQuestions(specs []any) []any {
	out := []any{}
	for _, rs := range specs {
		spec := mapFromAny(rs)
		if spec == nil {
			continue
		}
		q := map[string]any{
			"text": normalizeTextValue(firstNonNil(spec["intent"], spec["text"])),
			"type": remapQuestionType(stringFromAny(firstNonNil(spec["question_type"], spec["type"]))),
		}
		if IsChoiceType(stringFromAny(q["type"])) {
			opts := []any{}
			for _, opt := range sliceFromAny(firstNonNil(spec["options_hint"], spec["options"])) {
				if textIsEmpty(opt) {
					continue
				}
				opts = append(opts, normalizeTextValue(opt))
			}
			q["options"] = opts
		}
		if req, ok := spec["required"].(bool); ok {
			q["required"] = req
		}
		if id := stringFromAny(firstNonNil(spec["spec_id"], spec["id"])); id != "" {
			q["spec_id"] = id
		}
		out = append(out, q)
	}
	return out
}

// convertBareQuestions wraps a loose questions[] list into a single section.
func convertBareQuestions(m map[string]any) map[string]any {
	questions := []any{}
	for _, rq := range sliceFromAny(m["questions"]) {
		q := mapFromAny(rq)
		if q == nil {
			continue
		}
		questions = append(questions, convertRenderedQuestion(q))
	}
	out := map[string]any{
		"sections": []any{map[string]any{
			"title":     "Survey Questions",
			"questions": questions,
		}},
	}
	carrySuggestedName(out, m)
	return out
}

// --- shared bits -------------------------------------------------------------

// remapQuestionType folds legacy type spellings into the current ones.
func remapQuestionType(t string) string {
	if t == "select" {
		return "dropdown_list"
	}
	return t
}

func pageTitle(page map[string]any) any {
	return normalizeTextValue(firstNonNil(page["title"], page["name"]))
}

func carrySuggestedName(out, src map[string]any) {
	if _, has := out["suggestedName"]; has {
		return
	}
	if name := stringFromAny(firstNonNil(src["suggested_name"], src["suggestedName"])); name != "" {
		out["suggestedName"] = name
	}
}

func firstNonNil(vals ...any) any {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}
