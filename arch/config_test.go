package arch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotalabs/steergo/model"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid",
			cfg:  Config{Name: "m", NumLayers: 32, HiddenSize: 4096},
		},
		{
			name:    "zero layers",
			cfg:     Config{Name: "m", NumLayers: 0, HiddenSize: 4096},
			wantErr: true,
		},
		{
			name:    "zero hidden size",
			cfg:     Config{Name: "m", NumLayers: 32, HiddenSize: 0},
			wantErr: true,
		},
		{
			name: "recommended layer out of range",
			cfg: Config{
				Name: "m", NumLayers: 32, HiddenSize: 4096,
				RecommendedLayers: map[string][]int{"refusal": {32}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigRecommended(t *testing.T) {
	cfg := Config{
		Name: "m", NumLayers: 30, HiddenSize: 64,
		RecommendedLayers: map[string][]int{"refusal": {14, 15, 16}},
	}

	t.Run("table entry wins", func(t *testing.T) {
		assert.Equal(t, []int{14, 15, 16}, cfg.Recommended("refusal"))
	})

	t.Run("unknown behavior falls back to middle third", func(t *testing.T) {
		layers := cfg.Recommended("never-heard-of-it")
		assert.Equal(t, span(10, 20), layers)
	})

	t.Run("returned slice is a copy", func(t *testing.T) {
		layers := cfg.Recommended("refusal")
		layers[0] = 99
		assert.Equal(t, []int{14, 15, 16}, cfg.Recommended("refusal"))
	})
}

func TestConfigModulePath(t *testing.T) {
	cfg := Config{Name: "m", NumLayers: 32, HiddenSize: 64}

	tests := []struct {
		name  string
		point Point
		want  string
	}{
		{name: "residual", point: Residual(14), want: "model.layers.14"},
		{name: "mlp", point: MLP(3), want: "model.layers.3.mlp"},
		{name: "attention", point: Attention(0), want: "model.layers.0.self_attn"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, err := cfg.ModulePath(tt.point)
			require.NoError(t, err)
			assert.Equal(t, tt.want, path)
		})
	}

	t.Run("custom template", func(t *testing.T) {
		gpt2 := Config{Name: "gpt2", NumLayers: 12, HiddenSize: 768, ResidualTemplate: "transformer.h.%d"}
		path, err := gpt2.ModulePath(Residual(5))
		require.NoError(t, err)
		assert.Equal(t, "transformer.h.5", path)
	})

	t.Run("layer out of range", func(t *testing.T) {
		_, err := cfg.ModulePath(Residual(32))
		var rangeErr *model.ErrLayerOutOfRange
		require.ErrorAs(t, err, &rangeErr)
		assert.Equal(t, 32, rangeErr.Layer)
		assert.Equal(t, 32, rangeErr.NumLayers)
	})
}
