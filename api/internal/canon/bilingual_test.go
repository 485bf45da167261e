package canon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveBoth(t *testing.T) {
	t.Run("combined string splits", func(t *testing.T) {
		p := ResolveBoth("Hello / مرحبا")
		assert.Equal(t, "Hello", p.EN)
		assert.Equal(t, "مرحبا", p.AR)
	})

	t.Run("monolingual fallback", func(t *testing.T) {
		p := ResolveBoth("Hello")
		assert.Equal(t, "Hello", p.EN)
		assert.Equal(t, "Hello", p.AR)
	})

	t.Run("en/ar object", func(t *testing.T) {
		p := ResolveBoth(map[string]any{"en": "A", "ar": "ب"})
		assert.Equal(t, "A", p.EN)
		assert.Equal(t, "ب", p.AR)
	})

	t.Run("object with missing key defaults to empty", func(t *testing.T) {
		p := ResolveBoth(map[string]any{"en": "Only English"})
		assert.Equal(t, "Only English", p.EN)
		assert.Equal(t, "", p.AR)
	})

	t.Run("nil", func(t *testing.T) {
		assert.Equal(t, LangPair{}, ResolveBoth(nil))
	})

	t.Run("identical halves stay monolingual", func(t *testing.T) {
		p := ResolveBoth("same / same")
		assert.Equal(t, "same / same", p.EN)
		assert.Equal(t, "same / same", p.AR)
	})

	t.Run("empty half stays monolingual", func(t *testing.T) {
		p := ResolveBoth("Hello / ")
		assert.Equal(t, "Hello / ", p.EN)
		assert.Equal(t, "Hello / ", p.AR)
	})

	t.Run("three segments stay monolingual", func(t *testing.T) {
		p := ResolveBoth("a / b / c")
		assert.Equal(t, "a / b / c", p.EN)
	})

	t.Run("nested label object", func(t *testing.T) {
		p := ResolveBoth(map[string]any{"label": map[string]any{"en": "Yes", "ar": "نعم"}})
		assert.Equal(t, "Yes", p.EN)
		assert.Equal(t, "نعم", p.AR)
	})
}

func TestResolve(t *testing.T) {
	field := map[string]any{"en": "Age?", "ar": "العمر؟"}
	assert.Equal(t, "Age?", Resolve(field, "en"))
	assert.Equal(t, "العمر؟", Resolve(field, "ar"))
	assert.Equal(t, "Age?", Resolve(field, "fr"), "unknown language falls back to English")
}

func TestResolveArray(t *testing.T) {
	in := []any{"One / واحد", map[string]any{"en": "Two", "ar": "اثنان"}, "Three"}
	assert.Equal(t, []string{"واحد", "اثنان", "Three"}, ResolveArray(in, "ar"))
	assert.Equal(t, []string{"One", "Two", "Three"}, ResolveArray(in, "en"))
}

func TestNormalizeTextValue(t *testing.T) {
	t.Run("plain string passes through", func(t *testing.T) {
		assert.Equal(t, "Hello", normalizeTextValue("Hello"))
	})

	t.Run("combined string becomes object", func(t *testing.T) {
		assert.Equal(t,
			map[string]any{"en": "Hello", "ar": "مرحبا"},
			normalizeTextValue("Hello / مرحبا"))
	})

	t.Run("nil becomes empty string", func(t *testing.T) {
		assert.Equal(t, "", normalizeTextValue(nil))
	})

	t.Run("object with equal halves collapses to string", func(t *testing.T) {
		assert.Equal(t, "Same", normalizeTextValue(map[string]any{"en": "Same", "ar": "Same"}))
	})
}
