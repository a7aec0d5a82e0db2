package inject

import (
	"fmt"
	"log/slog"

	"github.com/rotalabs/steergo/arch"
	"github.com/rotalabs/steergo/model"
	"github.com/rotalabs/steergo/vector"
)

// MultiOptions configure a MultiInjector.
type MultiOptions struct {
	// Component is the instrumentation component, default residual.
	Component model.Component
	// DefaultLayer, when >= 0, selects that layer from every behavior's set
	// when present; behaviors without it fall back to Best("norm").
	DefaultLayer int
	// Logger receives debug records.
	Logger *slog.Logger
}

// WithMultiComponent sets the injection component.
func WithMultiComponent(c model.Component) func(*MultiOptions) {
	return func(o *MultiOptions) { o.Component = c }
}

// WithDefaultLayer prefers a specific layer from each behavior's set.
func WithDefaultLayer(layer int) func(*MultiOptions) {
	return func(o *MultiOptions) { o.DefaultLayer = layer }
}

// WithMultiLogger sets the injector logger.
func WithMultiLogger(logger *slog.Logger) func(*MultiOptions) {
	return func(o *MultiOptions) { o.Logger = logger }
}

// behaviorVector pairs a resolved vector with the behavior that owns it.
type behaviorVector struct {
	behavior string
	vec      vector.Vector
}

// MultiInjector steers several behaviors at once with independent,
// runtime-adjustable strength per behavior. One consolidated mutating
// observer per point sums strength×vector over every enabled behavior
// touching that point.
type MultiInjector struct {
	model    model.Model
	resolver *arch.Resolver
	mode     model.Position
	logger   *slog.Logger

	states  map[string]*strengthCell
	byPoint map[arch.Point][]behaviorVector
	points  []arch.Point

	handles  []model.Handle
	attached bool
}

// NewMulti creates a multi-behavior injector. For each behavior one vector is
// resolved: the DefaultLayer vector when configured and present, otherwise
// the set's Best("norm"). Behaviors missing from strengths start at 1.0.
// Behaviors with empty sets are skipped.
func NewMulti(m model.Model, res *arch.Resolver, sets map[string]*vector.Set, strengths map[string]float64, mode model.Position, optFns ...func(*MultiOptions)) (*MultiInjector, error) {
	opts := MultiOptions{Component: model.ComponentResidual, DefaultLayer: -1}
	for _, fn := range optFns {
		if fn != nil {
			fn(&opts)
		}
	}
	if opts.Logger == nil {
		opts.Logger = discardLogger()
	}

	if len(sets) == 0 {
		return nil, model.Configf("multi injector needs at least one vector set")
	}
	switch mode {
	case model.PositionAll, model.PositionLast, model.PositionFirst:
	default:
		return nil, model.Configf("invalid injection mode: %s", mode)
	}

	inj := &MultiInjector{
		model:    m,
		resolver: res,
		mode:     mode,
		logger:   opts.Logger,
		states:   make(map[string]*strengthCell, len(sets)),
		byPoint:  make(map[arch.Point][]behaviorVector),
	}

	for behavior, set := range sets {
		strength := 1.0
		if s, ok := strengths[behavior]; ok {
			strength = s
		}
		cell := &strengthCell{}
		cell.store(strength, true)
		inj.states[behavior] = cell

		vec, ok, err := resolveVector(set, opts.DefaultLayer)
		if err != nil {
			return nil, err
		}
		if !ok {
			inj.logger.Warn("behavior has no vectors, skipping", "behavior", behavior)
			continue
		}
		if vec.LayerIndex < 0 || vec.LayerIndex >= res.NumLayers() {
			return nil, &model.ErrLayerOutOfRange{Layer: vec.LayerIndex, NumLayers: res.NumLayers()}
		}
		if err := vec.CheckDim(res.HiddenSize()); err != nil {
			return nil, err
		}

		p := arch.Point{Layer: vec.LayerIndex, Component: opts.Component}
		if _, seen := inj.byPoint[p]; !seen {
			inj.points = append(inj.points, p)
		}
		inj.byPoint[p] = append(inj.byPoint[p], behaviorVector{behavior: behavior, vec: vec})
	}

	return inj, nil
}

// resolveVector picks one vector from a set: the default layer when present,
// otherwise the norm-maximal member. ok=false for an empty set.
func resolveVector(set *vector.Set, defaultLayer int) (vector.Vector, bool, error) {
	if set.Len() == 0 {
		return vector.Vector{}, false, nil
	}
	if defaultLayer >= 0 {
		if v, ok := set.Get(defaultLayer); ok {
			return v, true, nil
		}
	}
	v, err := set.Best(vector.MetricNorm)
	if err != nil {
		return vector.Vector{}, false, err
	}
	return v, true, nil
}

// Attach registers one consolidated mutating observer per point.
func (mi *MultiInjector) Attach() error {
	if mi.attached {
		return fmt.Errorf("%w: multi injector already attached", model.ErrHookState)
	}

	handles := make([]model.Handle, 0, len(mi.points))
	for _, p := range mi.points {
		mod, err := mi.resolver.Module(mi.model, p)
		if err != nil {
			for _, h := range handles {
				h.Remove()
			}
			return err
		}
		handles = append(handles, mod.RegisterHook(mi.mutator(mi.byPoint[p])))
	}

	mi.handles = handles
	mi.attached = true
	mi.logger.Debug("multi injector attached", "points", len(mi.points), "behaviors", len(mi.states))
	return nil
}

// mutator sums strength×vector over every enabled behavior at one point.
// Strengths are read fresh on each pass; a zero strength stays on the hot
// path and contributes zero.
func (mi *MultiInjector) mutator(vectors []behaviorVector) model.HookFunc {
	return func(act *model.Activation) (*model.Activation, error) {
		out := act.Clone()
		for _, bv := range vectors {
			strength, enabled := mi.states[bv.behavior].load()
			if !enabled {
				continue
			}
			if err := out.AddScaled(bv.vec.Data, float32(strength), mi.mode); err != nil {
				return nil, err
			}
		}
		return out, nil
	}
}

// Detach removes every hook. Idempotent.
func (mi *MultiInjector) Detach() {
	if !mi.attached {
		return
	}
	for _, h := range mi.handles {
		h.Remove()
	}
	mi.handles = nil
	mi.attached = false
	mi.logger.Debug("multi injector detached", "points", len(mi.points))
}

// Attached reports whether the injector currently holds live hooks.
func (mi *MultiInjector) Attached() bool { return mi.attached }

// SetStrength updates one behavior's strength without touching hooks.
func (mi *MultiInjector) SetStrength(behavior string, strength float64) error {
	cell, err := mi.cell(behavior)
	if err != nil {
		return err
	}
	_, enabled := cell.load()
	cell.store(strength, enabled)
	mi.logger.Debug("strength changed", "behavior", behavior, "strength", strength)
	return nil
}

// GetStrength reads one behavior's current strength.
func (mi *MultiInjector) GetStrength(behavior string) (float64, error) {
	cell, err := mi.cell(behavior)
	if err != nil {
		return 0, err
	}
	s, _ := cell.load()
	return s, nil
}

// Enable re-enables a behavior and sets its strength atomically.
func (mi *MultiInjector) Enable(behavior string, strength float64) error {
	cell, err := mi.cell(behavior)
	if err != nil {
		return err
	}
	cell.store(strength, true)
	mi.logger.Debug("behavior enabled", "behavior", behavior, "strength", strength)
	return nil
}

// Disable turns steering off for one behavior, or for all behaviors when
// behavior is empty. Strength values are preserved for re-enabling.
func (mi *MultiInjector) Disable(behavior string) error {
	if behavior == "" {
		for name, cell := range mi.states {
			s, _ := cell.load()
			cell.store(s, false)
			mi.logger.Debug("behavior disabled", "behavior", name)
		}
		return nil
	}

	cell, err := mi.cell(behavior)
	if err != nil {
		return err
	}
	s, _ := cell.load()
	cell.store(s, false)
	mi.logger.Debug("behavior disabled", "behavior", behavior)
	return nil
}

// Behaviors returns the behavior names this injector controls.
func (mi *MultiInjector) Behaviors() []string {
	out := make([]string, 0, len(mi.states))
	for name := range mi.states {
		out = append(out, name)
	}
	return out
}

func (mi *MultiInjector) cell(behavior string) (*strengthCell, error) {
	cell, ok := mi.states[behavior]
	if !ok {
		return nil, model.Configf("unknown behavior: %q", behavior)
	}
	return cell, nil
}

// With runs fn with the injector attached and guarantees detachment on every
// exit path, including panics.
func (mi *MultiInjector) With(fn func() error) error {
	if err := mi.Attach(); err != nil {
		return err
	}
	defer mi.Detach()
	return fn()
}
