package canon

import "strings"

// combinedSep joins the two language halves of legacy bilingual strings
// ("Question text / نص السؤال").
const combinedSep = " / "

// LangPair holds both language variants of a bilingual field.
type LangPair struct {
	EN string `json:"en"`
	AR string `json:"ar"`
}

// splitCombined decomposes a legacy combined string. Both halves must be
// non-empty and distinct after trimming, otherwise the string is treated
// as monolingual.
func splitCombined(s string) (LangPair, bool) {
	parts := strings.Split(s, combinedSep)
	if len(parts) != 2 {
		return LangPair{}, false
	}
	en := strings.TrimSpace(parts[0])
	ar := strings.TrimSpace(parts[1])
	if en == "" || ar == "" || en == ar {
		return LangPair{}, false
	}
	return LangPair{EN: en, AR: ar}, true
}

// ResolveBoth extracts both language variants from a bilingual field.
// The field may be a plain string, an {en, ar} object, or a combined
// "English / Arabic" string. Anything unresolvable degrades to empty
// strings; monolingual strings fill both sides.
func ResolveBoth(field any) LangPair {
	switch v := field.(type) {
	case nil:
		return LangPair{}
	case string:
		if p, ok := splitCombined(v); ok {
			return p
		}
		return LangPair{EN: v, AR: v}
	case map[string]any:
		_, hasEN := v["en"]
		_, hasAR := v["ar"]
		if hasEN || hasAR {
			return LangPair{EN: stringFromAny(v["en"]), AR: stringFromAny(v["ar"])}
		}
		// Some payloads nest the label one level down.
		for _, k := range []string{"label", "text", "title"} {
			if inner, ok := v[k]; ok {
				return ResolveBoth(inner)
			}
		}
		return LangPair{}
	default:
		if s := stringFromAny(v); s != "" {
			return LangPair{EN: s, AR: s}
		}
		return LangPair{}
	}
}

// Resolve returns the variant for the preferred language ("ar" or "en").
// Unknown languages fall back to English.
func Resolve(field any, lang string) string {
	p := ResolveBoth(field)
	if strings.EqualFold(strings.TrimSpace(lang), "ar") {
		return p.AR
	}
	return p.EN
}

// ResolveArray resolves each element for the preferred language, preserving
// order. It never reorders or deduplicates.
func ResolveArray(fields []any, lang string) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, Resolve(f, lang))
	}
	return out
}

// normalizeTextValue brings a bilingual field into one of the two canonical
// forms: a plain string for monolingual values, or an {en, ar} object when
// both variants are known. Combined legacy strings are decomposed.
func normalizeTextValue(field any) any {
	switch v := field.(type) {
	case nil:
		return ""
	case string:
		if p, ok := splitCombined(v); ok {
			return map[string]any{"en": p.EN, "ar": p.AR}
		}
		return v
	case map[string]any:
		p := ResolveBoth(v)
		if p.EN == "" && p.AR == "" {
			return ""
		}
		if p.EN == p.AR {
			return p.EN
		}
		return map[string]any{"en": p.EN, "ar": p.AR}
	default:
		return stringFromAny(v)
	}
}

// textIsEmpty reports whether a normalized text value carries no visible
// content in either language.
func textIsEmpty(field any) bool {
	p := ResolveBoth(field)
	return strings.TrimSpace(p.EN) == "" && strings.TrimSpace(p.AR) == ""
}
