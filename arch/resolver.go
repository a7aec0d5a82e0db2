package arch

import (
	"fmt"

	"github.com/rotalabs/steergo/model"
)

// ErrUnsupportedArchitecture is returned when a model's structure matches
// none of the supported family layouts.
type ErrUnsupportedArchitecture struct {
	Identity string
	Reason   string
}

func (e *ErrUnsupportedArchitecture) Error() string {
	return fmt.Sprintf("unsupported architecture for model %q: %s", e.Identity, e.Reason)
}

// Unwrap exposes the error as a configuration error, keeping it in the same
// class as other bad-input failures for errors.As callers.
func (e *ErrUnsupportedArchitecture) Unwrap() error {
	return &model.ErrConfiguration{Reason: e.Error()}
}

// Resolver maps instrumentation points onto a concrete model's module tree
// using one architecture config.
type Resolver struct {
	cfg Config
}

// NewResolver creates a resolver from an explicit config.
func NewResolver(cfg Config) (*Resolver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Resolver{cfg: cfg.clone()}, nil
}

// ResolveModel builds a resolver for a live model. It consults the registry
// by identity (exact, then substring) and falls back to structural inference.
func ResolveModel(m model.Model) (*Resolver, error) {
	return resolveModel(m, defaultRegistry)
}

// ResolveModelIn is ResolveModel against a specific registry.
func ResolveModelIn(m model.Model, reg *Registry) (*Resolver, error) {
	return resolveModel(m, reg)
}

func resolveModel(m model.Model, reg *Registry) (*Resolver, error) {
	if identity := m.Identity(); identity != "" {
		if cfg, err := reg.Lookup(identity); err == nil {
			return &Resolver{cfg: cfg}, nil
		}
	}

	cfg, err := Infer(m)
	if err != nil {
		return nil, err
	}
	return &Resolver{cfg: cfg}, nil
}

// layerListPath describes one supported family layout: the path of the layer
// list plus the component templates rooted at it.
type layerListPath struct {
	listPath          string
	residualTemplate  string
	mlpTemplate       string
	attentionTemplate string
}

var knownLayouts = []layerListPath{
	{
		// Llama, Qwen, Mistral, Gemma style.
		listPath:          "model.layers",
		residualTemplate:  "model.layers.%d",
		mlpTemplate:       "model.layers.%d.mlp",
		attentionTemplate: "model.layers.%d.self_attn",
	},
	{
		// GPT-2 style.
		listPath:          "transformer.h",
		residualTemplate:  "transformer.h.%d",
		mlpTemplate:       "transformer.h.%d.mlp",
		attentionTemplate: "transformer.h.%d.attn",
	},
}

// Infer synthesizes a config by inspecting a model's module tree: it finds
// the layer list under a known family layout, counts layers and reads the
// hidden size from the model. The result carries no behavior table, so
// Recommended falls back to the middle-third default for every behavior.
func Infer(m model.Model) (Config, error) {
	for _, layout := range knownLayouts {
		list, ok := model.Lookup(m, layout.listPath)
		if !ok {
			continue
		}
		numLayers := len(list.Children())
		if numLayers == 0 {
			continue
		}

		sizer, ok := m.(model.HiddenSizer)
		if !ok {
			return Config{}, &ErrUnsupportedArchitecture{
				Identity: m.Identity(),
				Reason:   "model does not report its hidden size",
			}
		}

		cfg := Config{
			Name:              m.Identity(),
			NumLayers:         numLayers,
			HiddenSize:        sizer.HiddenSize(),
			ResidualTemplate:  layout.residualTemplate,
			MLPTemplate:       layout.mlpTemplate,
			AttentionTemplate: layout.attentionTemplate,
		}
		if err := cfg.Validate(); err != nil {
			return Config{}, err
		}
		return cfg, nil
	}

	return Config{}, &ErrUnsupportedArchitecture{
		Identity: m.Identity(),
		Reason:   "no layer list found under any supported layout",
	}
}

// Config returns a copy of the resolver's config.
func (r *Resolver) Config() Config {
	return r.cfg.clone()
}

// NumLayers returns the layer count of the resolved architecture.
func (r *Resolver) NumLayers() int { return r.cfg.NumLayers }

// HiddenSize returns the hidden dimension of the resolved architecture.
func (r *Resolver) HiddenSize() int { return r.cfg.HiddenSize }

// Recommended returns the recommended layers for a behavior.
func (r *Resolver) Recommended(behavior string) []int {
	return r.cfg.Recommended(behavior)
}

// Module resolves an instrumentation point to the concrete module of a model.
func (r *Resolver) Module(m model.Model, p Point) (model.Module, error) {
	path, err := r.cfg.ModulePath(p)
	if err != nil {
		return nil, err
	}
	mod, ok := model.Lookup(m, path)
	if !ok {
		return nil, &ErrUnsupportedArchitecture{
			Identity: m.Identity(),
			Reason:   fmt.Sprintf("module path %q not found", path),
		}
	}
	return mod, nil
}

// CheckLayers validates that every layer index is within range.
func (r *Resolver) CheckLayers(layers []int) error {
	for _, l := range layers {
		if l < 0 || l >= r.cfg.NumLayers {
			return &model.ErrLayerOutOfRange{Layer: l, NumLayers: r.cfg.NumLayers}
		}
	}
	return nil
}
