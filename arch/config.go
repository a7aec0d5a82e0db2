package arch

import (
	"fmt"
	"slices"

	"github.com/rotalabs/steergo/model"
)

// Default path templates match the Llama/Qwen/Mistral module layout.
const (
	DefaultResidualTemplate  = "model.layers.%d"
	DefaultMLPTemplate       = "model.layers.%d.mlp"
	DefaultAttentionTemplate = "model.layers.%d.self_attn"
)

// Config describes one model architecture: its size and the path templates
// that map a (layer, component) point onto the model's module tree.
//
// A Config is immutable once registered; Registry hands out copies.
type Config struct {
	// Name is the model identity string, e.g. "Qwen/Qwen3-8B".
	Name string
	// NumLayers is the number of transformer layers.
	NumLayers int
	// HiddenSize is the residual-stream dimension.
	HiddenSize int

	// Path templates, parameterized by layer index via %d. Empty fields
	// fall back to the Llama-style defaults.
	ResidualTemplate  string
	MLPTemplate       string
	AttentionTemplate string

	// RecommendedLayers maps a behavior name to the layer indices known to
	// steer it well. Behaviors without an entry fall back to the middle
	// third of the layer stack (see Recommended).
	RecommendedLayers map[string][]int
}

// Validate checks internal consistency: positive dimensions and recommended
// layer indices within range.
func (c *Config) Validate() error {
	if c.NumLayers <= 0 {
		return model.Configf("config %q: num layers must be positive, got %d", c.Name, c.NumLayers)
	}
	if c.HiddenSize <= 0 {
		return model.Configf("config %q: hidden size must be positive, got %d", c.Name, c.HiddenSize)
	}
	for behavior, layers := range c.RecommendedLayers {
		for _, l := range layers {
			if l < 0 || l >= c.NumLayers {
				return fmt.Errorf("config %q, behavior %q: %w",
					c.Name, behavior, &model.ErrLayerOutOfRange{Layer: l, NumLayers: c.NumLayers})
			}
		}
	}
	return nil
}

// Recommended returns the layers recommended for a behavior. Behaviors
// without a table entry get the middle third of the layer stack,
// [NumLayers/3, 2*NumLayers/3) — a deliberate heuristic, not a learned value.
func (c *Config) Recommended(behavior string) []int {
	if layers, ok := c.RecommendedLayers[behavior]; ok {
		return slices.Clone(layers)
	}
	start := c.NumLayers / 3
	end := 2 * c.NumLayers / 3
	out := make([]int, 0, end-start)
	for l := start; l < end; l++ {
		out = append(out, l)
	}
	return out
}

// ModulePath renders the module path for an instrumentation point.
func (c *Config) ModulePath(p Point) (string, error) {
	if p.Layer < 0 || p.Layer >= c.NumLayers {
		return "", &model.ErrLayerOutOfRange{Layer: p.Layer, NumLayers: c.NumLayers}
	}

	var tmpl string
	switch p.Component {
	case model.ComponentResidual:
		tmpl = c.ResidualTemplate
		if tmpl == "" {
			tmpl = DefaultResidualTemplate
		}
	case model.ComponentMLP:
		tmpl = c.MLPTemplate
		if tmpl == "" {
			tmpl = DefaultMLPTemplate
		}
	case model.ComponentAttention:
		tmpl = c.AttentionTemplate
		if tmpl == "" {
			tmpl = DefaultAttentionTemplate
		}
	default:
		return "", model.Configf("unknown component: %d", int(p.Component))
	}

	return fmt.Sprintf(tmpl, p.Layer), nil
}

func (c *Config) clone() Config {
	out := *c
	if c.RecommendedLayers != nil {
		out.RecommendedLayers = make(map[string][]int, len(c.RecommendedLayers))
		for k, v := range c.RecommendedLayers {
			out.RecommendedLayers[k] = slices.Clone(v)
		}
	}
	return out
}

// Behaviors returns the behavior names with explicit layer tables, sorted.
func (c *Config) Behaviors() []string {
	names := make([]string, 0, len(c.RecommendedLayers))
	for name := range c.RecommendedLayers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
