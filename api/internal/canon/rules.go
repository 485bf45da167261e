package canon

import "strings"

// ToRuleSet converts either known upstream rules layout into the canonical
// {survey_rules: [...]} form. Like ToPlan it never fails; unrecognized input
// passes through for the boundary validator to reject.
//
// Two layouts exist upstream: the nested survey.rules[] form where each rule
// carries if.when[] conditions and if.then[] actions, and the flat
// conditions/actions form that already matches the canonical shape.
func ToRuleSet(raw any) any {
	m, ok := raw.(map[string]any)
	if !ok {
		return raw
	}
	// Flat form, possibly wrapped in a thread envelope.
	if sliceFromAny(m["survey_rules"]) != nil {
		return m
	}
	if rules := mapFromAny(m["rules"]); sliceFromAny(rules["survey_rules"]) != nil {
		return rules
	}
	// Nested form.
	if nested := sliceFromAny(mapFromAny(m["survey"])["rules"]); nested != nil {
		return convertNestedRules(nested)
	}
	return raw
}

func convertNestedRules(nested []any) map[string]any {
	rules := []any{}
	for _, rr := range nested {
		r := mapFromAny(rr)
		if r == nil {
			continue
		}
		branch := mapFromAny(r["if"])
		conditions := []any{}
		for _, rc := range sliceFromAny(branch["when"]) {
			c := mapFromAny(rc)
			if c == nil {
				continue
			}
			conditions = append(conditions, map[string]any{
				"question_id": stringFromAny(mapFromAny(c["leftOperand"])["value"]),
				"operator":    stringFromAny(c["operator"]),
				"value":       mapFromAny(c["rightOperand"])["value"],
			})
		}
		actions := []any{}
		for _, ra := range sliceFromAny(branch["then"]) {
			a := mapFromAny(ra)
			if a == nil {
				continue
			}
			actions = append(actions, convertNestedAction(a))
		}
		desc := ResolveBoth(r["description"])
		rules = append(rules, map[string]any{
			"meta_rule": map[string]any{
				"rule_id":        stringFromAny(firstNonNil(r["rule_id"], r["id"])),
				"rule_type":      nestedRuleType(branch),
				"description_en": desc.EN,
				"description_ar": desc.AR,
			},
			"conditions": conditions,
			"actions":    actions,
		})
	}
	return map[string]any{"survey_rules": rules}
}

// nestedRuleType derives the rule type from the first action; rules whose
// actions carry no type stay "unknown".
func nestedRuleType(branch map[string]any) string {
	then := sliceFromAny(branch["then"])
	if len(then) > 0 {
		if t := strings.TrimSpace(stringFromAny(mapFromAny(then[0])["type"])); t != "" {
			return t
		}
	}
	return "unknown"
}

// convertNestedAction flattens one if.then[] action. The acted-on element
// comes from target.ids (joined when plural), a scalar target value, or the
// target type as a last resort.
func convertNestedAction(a map[string]any) map[string]any {
	target := mapFromAny(a["target"])
	element := ""
	if ids := sliceFromAny(target["ids"]); len(ids) > 0 {
		parts := make([]string, 0, len(ids))
		for _, id := range ids {
			parts = append(parts, stringFromAny(id))
		}
		element = strings.Join(parts, ", ")
	} else if v := stringFromAny(target["ids"]); v != "" {
		element = v
	} else if v := stringFromAny(target["value"]); v != "" {
		element = v
	} else {
		element = stringFromAny(target["type"])
	}
	out := map[string]any{"action_element": element}
	if t := stringFromAny(a["type"]); t != "" {
		out["action_type"] = t
	}
	msg := mapFromAny(a["message"])
	if msg != nil {
		out["message_en"] = stringFromAny(msg["en"])
		out["message_ar"] = stringFromAny(msg["ar"])
	} else if s := stringFromAny(a["message"]); s != "" {
		p := ResolveBoth(s)
		out["message_en"] = p.EN
		out["message_ar"] = p.AR
	}
	return out
}
