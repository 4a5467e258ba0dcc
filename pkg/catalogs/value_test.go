package catalogs_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aecstation/costmap/pkg/catalogs"
)

func TestCoerce(t *testing.T) {
	t.Run("WholeNumbersBecomeInts", func(t *testing.T) {
		v := catalogs.Coerce("42")
		assert.Equal(t, catalogs.KindInt, v.Kind())
		assert.Equal(t, int64(42), v.Any())
	})

	t.Run("DotDecimalsBecomeFloats", func(t *testing.T) {
		v := catalogs.Coerce("0.90")
		assert.Equal(t, catalogs.KindFloat, v.Kind())
		assert.Equal(t, 0.90, v.Any())
	})

	t.Run("CommaDecimalsBecomeFloats", func(t *testing.T) {
		v := catalogs.Coerce("12,5")
		assert.Equal(t, catalogs.KindFloat, v.Kind())
		assert.Equal(t, 12.5, v.Any())
	})

	t.Run("TextStaysString", func(t *testing.T) {
		v := catalogs.Coerce("Hormigón HA-25")
		assert.Equal(t, catalogs.KindString, v.Kind())
		assert.Equal(t, "Hormigón HA-25", v.String())
	})

	t.Run("WhitespaceIsTrimmed", func(t *testing.T) {
		v := catalogs.Coerce("  7  ")
		assert.Equal(t, catalogs.KindInt, v.Kind())
	})
}

func TestValueFloat64(t *testing.T) {
	t.Run("IntHasNumericReading", func(t *testing.T) {
		f, ok := catalogs.Int(3).Float64()
		require.True(t, ok)
		assert.Equal(t, 3.0, f)
	})

	t.Run("NumericStringParsesWithComma", func(t *testing.T) {
		f, ok := catalogs.String("2,40").Float64()
		require.True(t, ok)
		assert.Equal(t, 2.40, f)
	})

	t.Run("TextHasNoNumericReading", func(t *testing.T) {
		_, ok := catalogs.String("madera").Float64()
		assert.False(t, ok)
	})
}

func TestValueJSON(t *testing.T) {
	data, err := json.Marshal(map[string]catalogs.Value{
		"h":        catalogs.Float(2.5),
		"count":    catalogs.Int(4),
		"material": catalogs.String("acero"),
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"h":2.5,"count":4,"material":"acero"}`, string(data))

	var back catalogs.Properties
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, catalogs.KindInt, back["count"].Kind())
	assert.Equal(t, catalogs.KindFloat, back["h"].Kind())
	assert.Equal(t, catalogs.KindString, back["material"].Kind())
}

func TestPropertiesFromAny(t *testing.T) {
	props := catalogs.PropertiesFromAny(map[string]any{
		"width":    0.9,
		"count":    3,
		"material": "yeso",
		"empty":    "",
		"nothing":  nil,
	})

	assert.Len(t, props, 3)
	assert.Equal(t, catalogs.KindFloat, props["width"].Kind())
	assert.Equal(t, catalogs.KindInt, props["count"].Kind())
	assert.Equal(t, catalogs.KindString, props["material"].Kind())
	assert.NotContains(t, props, "empty")
	assert.NotContains(t, props, "nothing")
}
