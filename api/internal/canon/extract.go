package canon

import "strconv"

// --- loose JSON digging helpers ---------------------------------------------

func mapFromAny(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func sliceFromAny(v any) []any {
	s, _ := v.([]any)
	return s
}

func stringFromAny(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return ""
	}
}

func floatFromAny(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func intFromAny(v any, def int) int {
	if f, ok := floatFromAny(v); ok {
		return int(f)
	}
	return def
}

// propsOf returns the nested property bag of an upstream control, preferring
// the current settings.props location over the legacy top-level props.
func propsOf(control map[string]any, key string) any {
	if settings := mapFromAny(control["settings"]); settings != nil {
		if props := mapFromAny(settings["props"]); props != nil {
			if v, ok := props[key]; ok && v != nil {
				return v
			}
		}
	}
	if props := mapFromAny(control["props"]); props != nil {
		if v, ok := props[key]; ok && v != nil {
			return v
		}
	}
	return nil
}

// ExtractOptions pulls the choice list out of an upstream control.
// settings.props.options wins over props.options; the first non-empty array
// is used. The result is never nil: a choice question with no options is an
// empty list the author still has to fill in, which is distinct from a
// non-choice question having no options field at all.
//
// Option labels resolve like question text; labels that are empty after
// trimming are dropped so they never surface as blank rows.
func ExtractOptions(control map[string]any) []any {
	out := []any{}
	var raw []any
	if settings := mapFromAny(control["settings"]); settings != nil {
		if props := mapFromAny(settings["props"]); props != nil {
			raw = sliceFromAny(props["options"])
		}
	}
	if len(raw) == 0 {
		if props := mapFromAny(control["props"]); props != nil {
			raw = sliceFromAny(props["options"])
		}
	}
	for _, opt := range raw {
		if textIsEmpty(opt) {
			continue
		}
		out = append(out, normalizeTextValue(opt))
	}
	return out
}

// ExtractScale pulls a rating-scale spec out of an upstream control,
// mirroring the options path precedence. Returns nil when the control
// carries no usable scale.
func ExtractScale(control map[string]any) map[string]any {
	scale := mapFromAny(propsOf(control, "scale"))
	if scale == nil {
		return nil
	}
	min, okMin := floatFromAny(scale["min"])
	max, okMax := floatFromAny(scale["max"])
	if !okMin && !okMax {
		return nil
	}
	out := map[string]any{"min": min, "max": max}
	if labels := mapFromAny(scale["labels"]); labels != nil {
		norm := map[string]any{}
		for _, bound := range []string{"min", "max"} {
			v, ok := labels[bound]
			if !ok || v == nil {
				continue
			}
			// Scalar labels pass through; objects resolve bilingually.
			if s, isStr := v.(string); isStr {
				norm[bound] = s
				continue
			}
			norm[bound] = normalizeTextValue(v)
		}
		if len(norm) > 0 {
			out["labels"] = norm
		}
	}
	return out
}
