package arch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotalabs/steergo/model"
	"github.com/rotalabs/steergo/testutil"
)

func TestResolveModelRegistry(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(Config{Name: "toy-30l", NumLayers: 30, HiddenSize: 8}))

	m := testutil.NewConstantModel("toy-30l", 30, 8, 0)
	res, err := ResolveModelIn(m, reg)
	require.NoError(t, err)

	assert.Equal(t, 30, res.NumLayers())
	assert.Equal(t, 8, res.HiddenSize())
}

func TestResolveModelInference(t *testing.T) {
	// identity unknown to the registry, so resolution falls back to
	// structural inference over the module tree
	m := testutil.NewConstantModel("unregistered/model", 30, 16, 0)

	res, err := ResolveModelIn(m, NewRegistry())
	require.NoError(t, err)
	assert.Equal(t, 30, res.NumLayers())
	assert.Equal(t, 16, res.HiddenSize())

	t.Run("inferred config has no behavior table", func(t *testing.T) {
		layers := res.Recommended("refusal")
		assert.Equal(t, span(10, 20), layers)
	})
}

func TestInferUnsupportedLayout(t *testing.T) {
	m := &flatModel{root: model.NewBaseModule("")}

	_, err := Infer(m)
	var archErr *ErrUnsupportedArchitecture
	require.ErrorAs(t, err, &archErr)
	assert.Equal(t, "flat", archErr.Identity)

	t.Run("classifies as configuration error", func(t *testing.T) {
		var cfgErr *model.ErrConfiguration
		assert.ErrorAs(t, err, &cfgErr)
	})
}

func TestResolverModule(t *testing.T) {
	m := testutil.NewConstantModel("toy", 4, 8, 0)
	res, err := ResolveModelIn(m, NewRegistry())
	require.NoError(t, err)

	t.Run("residual resolves to the layer module", func(t *testing.T) {
		mod, err := res.Module(m, Residual(2))
		require.NoError(t, err)
		assert.Equal(t, "2", mod.Name())
	})

	t.Run("mlp resolves to the layer's mlp child", func(t *testing.T) {
		mod, err := res.Module(m, MLP(1))
		require.NoError(t, err)
		assert.Equal(t, "mlp", mod.Name())
	})

	t.Run("attention resolves to the layer's self_attn child", func(t *testing.T) {
		mod, err := res.Module(m, Attention(0))
		require.NoError(t, err)
		assert.Equal(t, "self_attn", mod.Name())
	})

	t.Run("layer out of range", func(t *testing.T) {
		_, err := res.Module(m, Residual(4))
		var rangeErr *model.ErrLayerOutOfRange
		assert.ErrorAs(t, err, &rangeErr)
	})
}

func TestResolverCheckLayers(t *testing.T) {
	res, err := NewResolver(Config{Name: "m", NumLayers: 12, HiddenSize: 8})
	require.NoError(t, err)

	require.NoError(t, res.CheckLayers([]int{0, 5, 11}))

	err = res.CheckLayers([]int{0, 12})
	var rangeErr *model.ErrLayerOutOfRange
	require.ErrorAs(t, err, &rangeErr)
	assert.Equal(t, 12, rangeErr.Layer)

	err = res.CheckLayers([]int{-1})
	assert.ErrorAs(t, err, &rangeErr)
}

// flatModel has no recognizable layer list.
type flatModel struct {
	root model.Module
}

func (m *flatModel) Identity() string { return "flat" }

func (m *flatModel) Root() model.Module { return m.root }

func (m *flatModel) Forward(_ context.Context, _ []int) error { return nil }
