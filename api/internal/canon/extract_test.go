package canon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractOptions(t *testing.T) {
	t.Run("settings.props wins over props", func(t *testing.T) {
		control := map[string]any{
			"settings": map[string]any{"props": map[string]any{"options": []any{"X"}}},
			"props":    map[string]any{"options": []any{"Y"}},
		}
		assert.Equal(t, []any{"X"}, ExtractOptions(control))
	})

	t.Run("empty settings list falls back to legacy props", func(t *testing.T) {
		control := map[string]any{
			"settings": map[string]any{"props": map[string]any{"options": []any{}}},
			"props":    map[string]any{"options": []any{"Y"}},
		}
		assert.Equal(t, []any{"Y"}, ExtractOptions(control))
	})

	t.Run("no options anywhere yields empty list, not nil", func(t *testing.T) {
		out := ExtractOptions(map[string]any{})
		require.NotNil(t, out)
		assert.Empty(t, out)
	})

	t.Run("labels empty after trim are dropped", func(t *testing.T) {
		control := map[string]any{
			"props": map[string]any{"options": []any{
				map[string]any{"en": "", "ar": ""},
				map[string]any{"en": "Yes", "ar": "نعم"},
			}},
		}
		out := ExtractOptions(control)
		require.Len(t, out, 1)
		assert.Equal(t, map[string]any{"en": "Yes", "ar": "نعم"}, out[0])
	})

	t.Run("combined-string labels decompose", func(t *testing.T) {
		control := map[string]any{
			"props": map[string]any{"options": []any{"No / لا"}},
		}
		assert.Equal(t, []any{map[string]any{"en": "No", "ar": "لا"}}, ExtractOptions(control))
	})
}

func TestExtractScale(t *testing.T) {
	t.Run("settings.props wins over props", func(t *testing.T) {
		control := map[string]any{
			"settings": map[string]any{"props": map[string]any{
				"scale": map[string]any{"min": float64(1), "max": float64(5)},
			}},
			"props": map[string]any{
				"scale": map[string]any{"min": float64(0), "max": float64(10)},
			},
		}
		out := ExtractScale(control)
		require.NotNil(t, out)
		assert.Equal(t, float64(1), out["min"])
		assert.Equal(t, float64(5), out["max"])
	})

	t.Run("no scale yields nil", func(t *testing.T) {
		assert.Nil(t, ExtractScale(map[string]any{}))
		assert.Nil(t, ExtractScale(map[string]any{
			"props": map[string]any{"scale": map[string]any{}},
		}))
	})

	t.Run("scalar labels pass through, objects resolve", func(t *testing.T) {
		control := map[string]any{
			"props": map[string]any{"scale": map[string]any{
				"min": float64(1), "max": float64(7),
				"labels": map[string]any{
					"min": "Low",
					"max": map[string]any{"en": "High", "ar": "مرتفع"},
				},
			}},
		}
		out := ExtractScale(control)
		require.NotNil(t, out)
		labels := mapFromAny(out["labels"])
		require.NotNil(t, labels)
		assert.Equal(t, "Low", labels["min"])
		assert.Equal(t, map[string]any{"en": "High", "ar": "مرتفع"}, labels["max"])
	})

	t.Run("string bounds coerce to numbers", func(t *testing.T) {
		control := map[string]any{
			"props": map[string]any{"scale": map[string]any{"min": "1", "max": "10"}},
		}
		out := ExtractScale(control)
		require.NotNil(t, out)
		assert.Equal(t, float64(1), out["min"])
		assert.Equal(t, float64(10), out["max"])
	})
}
