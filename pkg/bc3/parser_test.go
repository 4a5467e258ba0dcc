package bc3_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aecstation/costmap/pkg/bc3"
	"github.com/aecstation/costmap/pkg/catalogs"
	pkgerrors "github.com/aecstation/costmap/pkg/errors"
)

const sampleBudget = `~V||FIEBDC-3/2016|
~C|CAP01#||Carpintería exterior||
~C|W-01|u|Ventana corredera de aluminio|250,50|
~C|W-02|m2|Tabique de yeso laminado|18.75|
~X|W-01|Tipo IfcGUID\2abc\IfcGUID\2abc-001\Nombre de familia\Ventanas\Nombre de tipo\Corredera 90x120\Anchura\0,90\Material\aluminio\
~X|UNKNOWN|Anchura\1,00\
~D|CAP01#|W-01\1\4\W-02\1\12,5\
~C|short
`

func TestParse(t *testing.T) {
	result := bc3.New().Parse(sampleBudget)

	t.Run("Version", func(t *testing.T) {
		assert.Equal(t, "FIEBDC-3/2016", result.Version)
	})

	t.Run("ComponentsInFileOrder", func(t *testing.T) {
		assert.Equal(t, []string{"CAP01", "W-01", "W-02"}, result.Budget.Codes())
	})

	t.Run("CompositeMarkerStripped", func(t *testing.T) {
		assert.True(t, result.Budget.Has("CAP01"))
		assert.False(t, result.Budget.Has("CAP01#"))
	})

	t.Run("PricesAcceptBothDecimalSeparators", func(t *testing.T) {
		w1, ok := result.Budget.Get("W-01")
		require.True(t, ok)
		assert.Equal(t, 250.50, w1.Price)

		w2, ok := result.Budget.Get("W-02")
		require.True(t, ok)
		assert.Equal(t, 18.75, w2.Price)
	})

	t.Run("ExtendedRecordHoistsKnownKeys", func(t *testing.T) {
		w1, ok := result.Budget.Get("W-01")
		require.True(t, ok)
		assert.Equal(t, "2abc", w1.ModelTypeID)
		assert.Equal(t, "2abc-001", w1.ModelInstanceID)
		assert.Equal(t, "Ventanas", w1.FamilyName)
		assert.Equal(t, "Corredera 90x120", w1.TypeName)

		// Hoisted keys never land in the property map.
		assert.NotContains(t, w1.Properties, "Tipo IfcGUID")
		assert.NotContains(t, w1.Properties, "Nombre de familia")
	})

	t.Run("ExtendedRecordCoercesValues", func(t *testing.T) {
		w1, _ := result.Budget.Get("W-01")
		width, ok := w1.Properties["Anchura"].Float64()
		require.True(t, ok)
		assert.Equal(t, 0.90, width)
		assert.Equal(t, catalogs.KindString, w1.Properties["Material"].Kind())
	})

	t.Run("ExtendedRecordForUnknownCodeIsIgnored", func(t *testing.T) {
		assert.False(t, result.Budget.Has("UNKNOWN"))
		for _, w := range result.Warnings {
			assert.NotContains(t, w.Message, "UNKNOWN")
		}
	})

	t.Run("DecompositionLinksHierarchy", func(t *testing.T) {
		parent, ok := result.Budget.Get("CAP01")
		require.True(t, ok)
		require.Len(t, parent.Children, 2)
		assert.Equal(t, catalogs.ChildRef{Code: "W-01", Quantity: 4}, parent.Children[0])
		assert.Equal(t, catalogs.ChildRef{Code: "W-02", Quantity: 12.5}, parent.Children[1])

		w1, _ := result.Budget.Get("W-01")
		assert.Equal(t, "CAP01", w1.ParentCode)
		assert.Equal(t, 4.0, w1.Quantity)

		w2, _ := result.Budget.Get("W-02")
		assert.Equal(t, 12.5, w2.Quantity)
	})

	t.Run("StructuralParentIsNotComparable", func(t *testing.T) {
		parent, _ := result.Budget.Get("CAP01")
		assert.False(t, parent.Comparable())
		assert.Equal(t, 2, result.Budget.ComparableCount())
	})

	t.Run("MalformedRecordWarnsWithoutAborting", func(t *testing.T) {
		require.Len(t, result.Warnings, 1)
		assert.Equal(t, 8, result.Warnings[0].Line)
		assert.Contains(t, result.Warnings[0].Message, "component record")
	})
}

func TestParseRecordOrderIndependence(t *testing.T) {
	// Extended and decomposition records may precede the component they
	// refer to.
	shuffled := "~X|W-01|Anchura\\0,90\\\n" +
		"~D|CAP01|W-01\\1\\2\\\n" +
		"~C|CAP01#||Chapter||\n" +
		"~C|W-01|u|Ventana|100|\n"

	result := bc3.New().Parse(shuffled)

	w1, ok := result.Budget.Get("W-01")
	require.True(t, ok)
	assert.Contains(t, w1.Properties, "Anchura")
	assert.Equal(t, "CAP01", w1.ParentCode)
	assert.Equal(t, 2.0, w1.Quantity)
}

func TestParseEdgeToUnknownChildStaysStructural(t *testing.T) {
	text := "~C|CAP01#||Chapter||\n~D|CAP01|GHOST\\1\\3\\\n"
	result := bc3.New().Parse(text)

	parent, ok := result.Budget.Get("CAP01")
	require.True(t, ok)
	require.Len(t, parent.Children, 1)
	assert.Equal(t, "GHOST", parent.Children[0].Code)
	assert.False(t, result.Budget.Has("GHOST"))
	assert.Contains(t, result.Hierarchy, "CAP01")
}

func TestParseDuplicateCodeKeepsLastDefinition(t *testing.T) {
	text := "~C|W-01|u|First|10|\n~C|W-01|u|Second|20|\n"
	result := bc3.New().Parse(text)

	require.Equal(t, 1, result.Budget.Len())
	item, _ := result.Budget.Get("W-01")
	assert.Equal(t, "Second", item.Description)
	assert.Equal(t, 20.0, item.Price)
}

func TestParseFile(t *testing.T) {
	t.Run("DecodesLegacyEncoding", func(t *testing.T) {
		// "Hormigón" with ó as the single ISO 8859-1 byte 0xF3.
		raw := []byte("~C|E-01|m3|Hormig\xf3n armado|95,00|\n")
		path := filepath.Join(t.TempDir(), "estimate.bc3")
		require.NoError(t, os.WriteFile(path, raw, 0o644))

		result, err := bc3.New().ParseFile(path)
		require.NoError(t, err)

		item, ok := result.Budget.Get("E-01")
		require.True(t, ok)
		assert.Equal(t, "Hormigón armado", item.Description)
	})

	t.Run("MissingFileIsNotFound", func(t *testing.T) {
		_, err := bc3.New().ParseFile(filepath.Join(t.TempDir(), "absent.bc3"))
		require.Error(t, err)
		assert.True(t, pkgerrors.IsNotFound(err))
	})
}
