package inject

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotalabs/steergo/arch"
	"github.com/rotalabs/steergo/capture"
	"github.com/rotalabs/steergo/model"
	"github.com/rotalabs/steergo/testutil"
	"github.com/rotalabs/steergo/vector"
)

func newToy(t *testing.T, numLayers, hidden int) (*testutil.ToyModel, *arch.Resolver) {
	t.Helper()
	m := testutil.NewConstantModel("toy", numLayers, hidden, 0)
	res, err := arch.ResolveModelIn(m, arch.NewRegistry())
	require.NoError(t, err)
	return m, res
}

func TestInjectorAddsScaledVector(t *testing.T) {
	m, res := newToy(t, 2, 2)
	v := vector.New("b", 1, []float32{1, 0}, "toy")

	inj, err := New(m, res, []vector.Vector{v}, 2.0, model.PositionAll)
	require.NoError(t, err)
	require.NoError(t, inj.Attach())
	defer inj.Detach()

	require.NoError(t, m.Forward(context.Background(), []int{1, 2, 3}))

	out := m.LastOutput
	require.Equal(t, 3, out.Seq())
	for p := 0; p < out.Seq(); p++ {
		assert.Equal(t, []float32{2, 0}, out.Row(p), "position %d", p)
	}
}

func TestInjectorModes(t *testing.T) {
	v := vector.New("b", 0, []float32{1}, "toy")

	tests := []struct {
		name string
		mode model.Position
		want []float32
	}{
		{name: "all", mode: model.PositionAll, want: []float32{1, 1, 1}},
		{name: "last", mode: model.PositionLast, want: []float32{0, 0, 1}},
		{name: "first", mode: model.PositionFirst, want: []float32{1, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, res := newToy(t, 1, 1)
			inj, err := New(m, res, []vector.Vector{v}, 1.0, tt.mode)
			require.NoError(t, err)

			require.NoError(t, inj.With(func() error {
				return m.Forward(context.Background(), []int{1, 2, 3})
			}))
			assert.Equal(t, tt.want, m.LastOutput.Data())
		})
	}
}

func TestInjectorZeroStrengthIsNumericIdentity(t *testing.T) {
	m, res := newToy(t, 2, 4)

	require.NoError(t, m.Forward(context.Background(), []int{1, 2}))
	baseline := m.LastOutput.Clone()

	v := vector.New("b", 0, testutil.RandomVector(1, 4), "toy")
	inj, err := New(m, res, []vector.Vector{v}, 0, model.PositionAll)
	require.NoError(t, err)

	require.NoError(t, inj.With(func() error {
		return m.Forward(context.Background(), []int{1, 2})
	}))
	assert.True(t, baseline.Equal(m.LastOutput))
}

func TestInjectorLinearity(t *testing.T) {
	// injecting a and b separately at one point equals injecting their sum
	a := vector.New("b", 0, []float32{1, 2}, "toy")
	b := vector.New("b", 0, []float32{-3, 5}, "toy")
	sum := vector.New("b", 0, []float32{-2, 7}, "toy")

	runWith := func(vectors []vector.Vector) *model.Activation {
		m, res := newToy(t, 1, 2)
		inj, err := New(m, res, vectors, 1.5, model.PositionAll)
		require.NoError(t, err)
		require.NoError(t, inj.With(func() error {
			return m.Forward(context.Background(), []int{1})
		}))
		return m.LastOutput
	}

	separate := runWith([]vector.Vector{a, b})
	combined := runWith([]vector.Vector{sum})

	require.Equal(t, combined.Seq(), separate.Seq())
	for i, want := range combined.Data() {
		assert.InDelta(t, float64(want), float64(separate.Data()[i]), 1e-5)
	}
}

func TestInjectorSetStrength(t *testing.T) {
	m, res := newToy(t, 1, 1)
	v := vector.New("b", 0, []float32{1}, "toy")

	inj, err := New(m, res, []vector.Vector{v}, 1.0, model.PositionAll)
	require.NoError(t, err)
	require.NoError(t, inj.Attach())
	defer inj.Detach()

	require.NoError(t, m.Forward(context.Background(), []int{1}))
	assert.Equal(t, float32(1), m.LastOutput.Row(0)[0])

	// strength changes apply on the next pass without re-registration
	inj.SetStrength(5)
	assert.Equal(t, 5.0, inj.Strength())
	require.NoError(t, m.Forward(context.Background(), []int{1}))
	assert.Equal(t, float32(5), m.LastOutput.Row(0)[0])
	assert.Equal(t, 1, m.LayerModule(0).HookCount())
}

func TestInjectorDetachRestoresPassThrough(t *testing.T) {
	m, res := newToy(t, 3, 2)

	require.NoError(t, m.Forward(context.Background(), []int{1, 2}))
	baseline := m.LastOutput.Clone()

	v := vector.New("b", 1, testutil.RandomVector(7, 2), "toy")
	inj, err := New(m, res, []vector.Vector{v}, 3.0, model.PositionAll)
	require.NoError(t, err)
	require.NoError(t, inj.Attach())

	require.NoError(t, m.Forward(context.Background(), []int{1, 2}))
	assert.False(t, baseline.Equal(m.LastOutput))

	inj.Detach()
	require.NoError(t, m.Forward(context.Background(), []int{1, 2}))
	assert.True(t, baseline.Equal(m.LastOutput))
}

func TestInjectorLifecycle(t *testing.T) {
	m, res := newToy(t, 1, 1)
	v := vector.New("b", 0, []float32{1}, "toy")

	inj, err := New(m, res, []vector.Vector{v}, 1.0, model.PositionAll)
	require.NoError(t, err)

	require.NoError(t, inj.Attach())
	assert.True(t, inj.Attached())
	assert.ErrorIs(t, inj.Attach(), model.ErrHookState)

	inj.Detach()
	inj.Detach()
	assert.False(t, inj.Attached())
	assert.Equal(t, 0, m.LayerModule(0).HookCount())
}

func TestInjectorValidation(t *testing.T) {
	m, res := newToy(t, 2, 2)

	t.Run("no vectors", func(t *testing.T) {
		_, err := New(m, res, nil, 1.0, model.PositionAll)
		var cfgErr *model.ErrConfiguration
		assert.ErrorAs(t, err, &cfgErr)
	})

	t.Run("mean is not an injection mode", func(t *testing.T) {
		v := vector.New("b", 0, []float32{1, 0}, "toy")
		_, err := New(m, res, []vector.Vector{v}, 1.0, model.PositionMean)
		var cfgErr *model.ErrConfiguration
		assert.ErrorAs(t, err, &cfgErr)
	})

	t.Run("layer out of range", func(t *testing.T) {
		v := vector.New("b", 2, []float32{1, 0}, "toy")
		_, err := New(m, res, []vector.Vector{v}, 1.0, model.PositionAll)
		var rangeErr *model.ErrLayerOutOfRange
		require.ErrorAs(t, err, &rangeErr)
		assert.Equal(t, 2, rangeErr.Layer)
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		v := vector.New("b", 0, []float32{1, 0, 0}, "toy")
		_, err := New(m, res, []vector.Vector{v}, 1.0, model.PositionAll)
		var dimErr *model.ErrDimensionMismatch
		assert.ErrorAs(t, err, &dimErr)
	})
}

func TestCaptureObservesInjection(t *testing.T) {
	// a capture session attached after the injector sees post-injection values
	m, res := newToy(t, 1, 2)
	v := vector.New("b", 0, []float32{1, 0}, "toy")

	inj, err := New(m, res, []vector.Vector{v}, 2.0, model.PositionAll)
	require.NoError(t, err)
	require.NoError(t, inj.Attach())
	defer inj.Detach()

	err = capture.With(m, res, []arch.Point{arch.Residual(0)}, model.PositionAll, func(s *capture.Session) error {
		if err := m.Forward(context.Background(), []int{1}); err != nil {
			return err
		}
		act, ok := s.Activation(arch.Residual(0))
		require.True(t, ok)
		assert.Equal(t, []float32{2, 0}, act.Row(0))
		return nil
	})
	require.NoError(t, err)
}
