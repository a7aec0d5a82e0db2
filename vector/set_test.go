package vector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotalabs/steergo/model"
)

func TestSetAdd(t *testing.T) {
	set, err := NewSet("formality")
	require.NoError(t, err)

	require.NoError(t, set.Add(New("formality", 10, []float32{1}, "")))
	require.NoError(t, set.Add(New("formality", 12, []float32{2}, "")))
	assert.Equal(t, 2, set.Len())

	t.Run("replaces same layer", func(t *testing.T) {
		require.NoError(t, set.Add(New("formality", 10, []float32{9}, "")))
		assert.Equal(t, 2, set.Len())

		v, ok := set.Get(10)
		require.True(t, ok)
		assert.Equal(t, float32(9), v.Data[0])
	})

	t.Run("rejects behavior mismatch", func(t *testing.T) {
		err := set.Add(New("conciseness", 5, []float32{1}, ""))
		var cfgErr *model.ErrConfiguration
		assert.ErrorAs(t, err, &cfgErr)
	})
}

func TestSetLayersSorted(t *testing.T) {
	set, err := NewSet("b",
		New("b", 20, []float32{1}, ""),
		New("b", 5, []float32{1}, ""),
		New("b", 12, []float32{1}, ""),
	)
	require.NoError(t, err)

	assert.Equal(t, []int{5, 12, 20}, set.Layers())
}

func TestSetLookup(t *testing.T) {
	set, err := NewSet("b", New("b", 3, []float32{1}, ""))
	require.NoError(t, err)

	v, err := set.Lookup(3)
	require.NoError(t, err)
	assert.Equal(t, 3, v.LayerIndex)

	_, err = set.Lookup(4)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestSetBest(t *testing.T) {
	t.Run("picks maximal norm", func(t *testing.T) {
		set, err := NewSet("b",
			New("b", 1, []float32{1, 0}, ""),
			New("b", 2, []float32{3, 4}, ""),
			New("b", 3, []float32{0, 2}, ""),
		)
		require.NoError(t, err)

		best, err := set.Best(MetricNorm)
		require.NoError(t, err)
		assert.Equal(t, 2, best.LayerIndex)
	})

	t.Run("ties resolve to lowest layer", func(t *testing.T) {
		set, err := NewSet("b",
			New("b", 7, []float32{0, 5}, ""),
			New("b", 4, []float32{5, 0}, ""),
		)
		require.NoError(t, err)

		for i := 0; i < 5; i++ {
			best, err := set.Best(MetricNorm)
			require.NoError(t, err)
			assert.Equal(t, 4, best.LayerIndex)
		}
	})

	t.Run("unknown metric", func(t *testing.T) {
		set, err := NewSet("b", New("b", 1, []float32{1}, ""))
		require.NoError(t, err)

		_, err = set.Best("cosine")
		var cfgErr *model.ErrConfiguration
		assert.ErrorAs(t, err, &cfgErr)
	})

	t.Run("empty set", func(t *testing.T) {
		set, err := NewSet("b")
		require.NoError(t, err)

		_, err = set.Best(MetricNorm)
		var cfgErr *model.ErrConfiguration
		assert.ErrorAs(t, err, &cfgErr)
	})
}

func TestSetSourceModel(t *testing.T) {
	set, err := NewSet("b", New("b", 1, []float32{1}, "qwen3-8b"))
	require.NoError(t, err)
	assert.Equal(t, "qwen3-8b", set.SourceModel())

	empty, err := NewSet("b")
	require.NoError(t, err)
	assert.Empty(t, empty.SourceModel())
}
