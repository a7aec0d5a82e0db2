package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotalabs/steergo/arch"
	"github.com/rotalabs/steergo/model"
	"github.com/rotalabs/steergo/testutil"
)

// pairSource is a minimal in-memory Source.
type pairSource struct {
	behavior string
	pairs    [][2]string
}

func (s *pairSource) Behavior() string { return s.behavior }

func (s *pairSource) Len() int { return len(s.pairs) }

func (s *pairSource) Pair(i int) (string, string) { return s.pairs[i][0], s.pairs[i][1] }

// contrastModel emits a fixed row per text class: texts starting with 'p'
// produce {3, -1}, everything else {1, 1}. The CAA difference is therefore
// exactly {2, -2} at every layer.
func contrastModel(numLayers int) *testutil.ToyModel {
	return testutil.NewToyModel("toy", numLayers, 2, func(tokens []int) [][]float32 {
		row := []float32{1, 1}
		if tokens[0] == 'p' {
			row = []float32{3, -1}
		}
		rows := make([][]float32, len(tokens))
		for p := range rows {
			rows[p] = row
		}
		return rows
	})
}

func newExtractor(t *testing.T, m *testutil.ToyModel, optFns ...func(*Options)) *Extractor {
	t.Helper()
	res, err := arch.ResolveModelIn(m, arch.NewRegistry())
	require.NoError(t, err)
	return New(m, testutil.ByteEncoder{}, res, optFns...)
}

func TestExtractMeanDifference(t *testing.T) {
	m := contrastModel(3)
	e := newExtractor(t, m)
	src := &pairSource{behavior: "formality", pairs: [][2]string{
		{"p one", "n one"},
		{"p two", "n two"},
	}}

	set, err := e.Extract(context.Background(), src, []int{0, 2})
	require.NoError(t, err)

	assert.Equal(t, "formality", set.Behavior())
	assert.Equal(t, []int{0, 2}, set.Layers())

	for _, layer := range set.Layers() {
		v, err := set.Lookup(layer)
		require.NoError(t, err)
		assert.InDelta(t, 2, float64(v.Data[0]), 1e-6)
		assert.InDelta(t, -2, float64(v.Data[1]), 1e-6)
		assert.Equal(t, "toy", v.SourceModel)
		assert.Equal(t, 2, v.Metadata["num_pairs"])
		assert.Equal(t, "last", v.Metadata["token_position"])
	}

	// two forwards per pair
	assert.Equal(t, 4, m.ForwardCount)
}

func TestExtractIdenticalPairsYieldZero(t *testing.T) {
	m := contrastModel(2)
	e := newExtractor(t, m)
	src := &pairSource{behavior: "b", pairs: [][2]string{
		{"same text", "same text"},
	}}

	set, err := e.Extract(context.Background(), src, []int{1})
	require.NoError(t, err)

	v, err := set.Lookup(1)
	require.NoError(t, err)
	assert.Zero(t, v.Norm())
}

func TestExtractSingle(t *testing.T) {
	m := contrastModel(2)
	e := newExtractor(t, m)
	src := &pairSource{behavior: "b", pairs: [][2]string{{"p", "n"}}}

	v, err := e.ExtractSingle(context.Background(), src, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, v.LayerIndex)
	assert.InDelta(t, 2, float64(v.Data[0]), 1e-6)
}

func TestExtractMeanPosition(t *testing.T) {
	// rows vary by position; mean pooling averages them before the contrast
	m := testutil.NewToyModel("toy", 1, 1, func(tokens []int) [][]float32 {
		base := float32(0)
		if tokens[0] == 'p' {
			base = 10
		}
		rows := make([][]float32, len(tokens))
		for p := range rows {
			rows[p] = []float32{base + float32(p)}
		}
		return rows
	})
	e := newExtractor(t, m, WithPosition(model.PositionMean))
	src := &pairSource{behavior: "b", pairs: [][2]string{{"pp", "nn"}}}

	v, err := e.ExtractSingle(context.Background(), src, 0)
	require.NoError(t, err)
	// mean over two positions cancels the per-position offset
	assert.InDelta(t, 10, float64(v.Data[0]), 1e-6)
}

func TestExtractDetachesHooks(t *testing.T) {
	m := contrastModel(2)
	e := newExtractor(t, m)
	src := &pairSource{behavior: "b", pairs: [][2]string{{"p", "n"}}}

	_, err := e.Extract(context.Background(), src, []int{0, 1})
	require.NoError(t, err)

	assert.Equal(t, 0, m.LayerModule(0).HookCount())
	assert.Equal(t, 0, m.LayerModule(1).HookCount())
}

func TestExtractValidation(t *testing.T) {
	m := contrastModel(2)
	ctx := context.Background()

	t.Run("no pairs", func(t *testing.T) {
		e := newExtractor(t, m)
		_, err := e.Extract(ctx, &pairSource{behavior: "b"}, []int{0})
		var cfgErr *model.ErrConfiguration
		assert.ErrorAs(t, err, &cfgErr)
	})

	t.Run("no layers", func(t *testing.T) {
		e := newExtractor(t, m)
		_, err := e.Extract(ctx, &pairSource{behavior: "b", pairs: [][2]string{{"p", "n"}}}, nil)
		var cfgErr *model.ErrConfiguration
		assert.ErrorAs(t, err, &cfgErr)
	})

	t.Run("empty pair text", func(t *testing.T) {
		e := newExtractor(t, m)
		_, err := e.Extract(ctx, &pairSource{behavior: "b", pairs: [][2]string{{"p", ""}}}, []int{0})
		var cfgErr *model.ErrConfiguration
		assert.ErrorAs(t, err, &cfgErr)
	})

	t.Run("layer out of range", func(t *testing.T) {
		e := newExtractor(t, m)
		_, err := e.Extract(ctx, &pairSource{behavior: "b", pairs: [][2]string{{"p", "n"}}}, []int{2})
		var rangeErr *model.ErrLayerOutOfRange
		assert.ErrorAs(t, err, &rangeErr)
	})

	t.Run("all is not an extraction position", func(t *testing.T) {
		e := newExtractor(t, m, WithPosition(model.PositionAll))
		_, err := e.Extract(ctx, &pairSource{behavior: "b", pairs: [][2]string{{"p", "n"}}}, []int{0})
		var cfgErr *model.ErrConfiguration
		assert.ErrorAs(t, err, &cfgErr)
	})
}
