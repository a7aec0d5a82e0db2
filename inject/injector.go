package inject

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/rotalabs/steergo/arch"
	"github.com/rotalabs/steergo/model"
	"github.com/rotalabs/steergo/vector"
)

// Options configure an injector.
type Options struct {
	// Component is the instrumentation component, default residual.
	Component model.Component
	// Logger receives debug records for attach/detach and strength changes.
	Logger *slog.Logger
}

// WithComponent sets the injection component.
func WithComponent(c model.Component) func(*Options) {
	return func(o *Options) { o.Component = c }
}

// WithLogger sets the injector logger.
func WithLogger(logger *slog.Logger) func(*Options) {
	return func(o *Options) { o.Logger = logger }
}

func applyOptions(optFns []func(*Options)) Options {
	opts := Options{Component: model.ComponentResidual}
	for _, fn := range optFns {
		if fn != nil {
			fn(&opts)
		}
	}
	if opts.Logger == nil {
		opts.Logger = discardLogger()
	}
	return opts
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// strengthCell is the one piece of mutable state an injector's hooks read.
// Hooks read it fresh on every forward pass; only the owning injector's
// accessors write it.
type strengthCell struct {
	mu      sync.Mutex
	value   float64
	enabled bool
}

func (c *strengthCell) load() (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value, c.enabled
}

func (c *strengthCell) store(value float64, enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = value
	c.enabled = enabled
}

// Injector adds scaled steering vectors to activations during forward
// passes. It is the only component that changes a model's runtime output; it
// never touches stored weights, and Detach restores exact pass-through
// behavior.
type Injector struct {
	model    model.Model
	resolver *arch.Resolver
	mode     model.Position
	logger   *slog.Logger

	// vectors at the same point are summed, not last-write-wins.
	byPoint map[arch.Point][]vector.Vector
	points  []arch.Point

	strength strengthCell
	handles  []model.Handle
	attached bool
}

// New creates an injector for a list of steering vectors. Vectors targeting
// the same layer are summed at that point. mode selects which sequence
// positions receive the addition: all, last or first.
func New(m model.Model, res *arch.Resolver, vectors []vector.Vector, strength float64, mode model.Position, optFns ...func(*Options)) (*Injector, error) {
	opts := applyOptions(optFns)

	if len(vectors) == 0 {
		return nil, model.Configf("injector needs at least one vector")
	}
	switch mode {
	case model.PositionAll, model.PositionLast, model.PositionFirst:
	default:
		return nil, model.Configf("invalid injection mode: %s", mode)
	}

	byPoint := make(map[arch.Point][]vector.Vector)
	var points []arch.Point
	for _, v := range vectors {
		if v.LayerIndex < 0 || v.LayerIndex >= res.NumLayers() {
			return nil, &model.ErrLayerOutOfRange{Layer: v.LayerIndex, NumLayers: res.NumLayers()}
		}
		if err := v.CheckDim(res.HiddenSize()); err != nil {
			return nil, err
		}
		p := arch.Point{Layer: v.LayerIndex, Component: opts.Component}
		if _, seen := byPoint[p]; !seen {
			points = append(points, p)
		}
		byPoint[p] = append(byPoint[p], v)
	}

	inj := &Injector{
		model:    m,
		resolver: res,
		mode:     mode,
		logger:   opts.Logger,
		byPoint:  byPoint,
		points:   points,
	}
	inj.strength.store(strength, true)
	return inj, nil
}

// Attach registers one mutating observer per point. Attaching an attached
// injector is an ErrHookState.
func (i *Injector) Attach() error {
	if i.attached {
		return fmt.Errorf("%w: injector already attached", model.ErrHookState)
	}

	handles := make([]model.Handle, 0, len(i.points))
	for _, p := range i.points {
		mod, err := i.resolver.Module(i.model, p)
		if err != nil {
			for _, h := range handles {
				h.Remove()
			}
			return err
		}
		handles = append(handles, mod.RegisterHook(i.mutator(i.byPoint[p])))
	}

	i.handles = handles
	i.attached = true
	i.logger.Debug("injector attached", "points", len(i.points), "mode", i.mode.String())
	return nil
}

// mutator substitutes output + strength×vector for the downstream
// computation. Strength is read from the cell on every pass, so SetStrength
// takes effect without re-registration; a zero strength still computes.
func (i *Injector) mutator(vectors []vector.Vector) model.HookFunc {
	return func(act *model.Activation) (*model.Activation, error) {
		strength, enabled := i.strength.load()
		if !enabled {
			return nil, nil
		}
		out := act.Clone()
		for _, v := range vectors {
			if err := out.AddScaled(v.Data, float32(strength), i.mode); err != nil {
				return nil, err
			}
		}
		return out, nil
	}
}

// Detach removes the mutation entirely. Idempotent.
func (i *Injector) Detach() {
	if !i.attached {
		return
	}
	for _, h := range i.handles {
		h.Remove()
	}
	i.handles = nil
	i.attached = false
	i.logger.Debug("injector detached", "points", len(i.points))
}

// Attached reports whether the injector currently holds live hooks.
func (i *Injector) Attached() bool { return i.attached }

// Strength returns the current strength.
func (i *Injector) Strength() float64 {
	s, _ := i.strength.load()
	return s
}

// SetStrength updates the strength without touching hook registrations.
func (i *Injector) SetStrength(strength float64) {
	_, enabled := i.strength.load()
	i.strength.store(strength, enabled)
	i.logger.Debug("strength changed", "strength", strength)
}

// With runs fn with the injector attached and guarantees detachment on every
// exit path, including panics.
func (i *Injector) With(fn func() error) error {
	if err := i.Attach(); err != nil {
		return err
	}
	defer i.Detach()
	return fn()
}
