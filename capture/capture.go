package capture

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/rotalabs/steergo/arch"
	"github.com/rotalabs/steergo/model"
)

// Options configure a capture session.
type Options struct {
	// Logger receives debug records for attach/detach. Nil disables logging.
	Logger *slog.Logger
}

// WithLogger sets the session logger.
func WithLogger(logger *slog.Logger) func(*Options) {
	return func(o *Options) { o.Logger = logger }
}

// Session is a read-only instrumentation scope: it records activation arrays
// at chosen points during forward passes, without disturbing the computation.
//
// Each forward pass overwrites the prior record for a point; callers needing
// accumulation copy activations out between passes. The session exclusively
// owns its hook registrations and releases them on Detach.
type Session struct {
	model    model.Model
	resolver *arch.Resolver
	points   []arch.Point
	position model.Position
	logger   *slog.Logger

	handles  []model.Handle
	records  map[arch.Point]*model.Activation
	attached bool
}

// NewSession prepares a capture session over the given points.
// position selects which sequence positions are retained: PositionAll keeps
// every position, PositionLast/PositionFirst keep one row per sequence.
func NewSession(m model.Model, res *arch.Resolver, points []arch.Point, position model.Position, optFns ...func(*Options)) (*Session, error) {
	if len(points) == 0 {
		return nil, model.Configf("capture needs at least one instrumentation point")
	}
	switch position {
	case model.PositionAll, model.PositionLast, model.PositionFirst:
	default:
		return nil, model.Configf("invalid capture position: %s", position)
	}
	for _, p := range points {
		if p.Layer < 0 || p.Layer >= res.NumLayers() {
			return nil, &model.ErrLayerOutOfRange{Layer: p.Layer, NumLayers: res.NumLayers()}
		}
	}

	opts := Options{}
	for _, fn := range optFns {
		if fn != nil {
			fn(&opts)
		}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Session{
		model:    m,
		resolver: res,
		points:   points,
		position: position,
		logger:   logger,
		records:  make(map[arch.Point]*model.Activation, len(points)),
	}, nil
}

// Attach registers one observer per point. Attaching an attached session is
// an ErrHookState; partially registered hooks are rolled back on failure.
func (s *Session) Attach() error {
	if s.attached {
		return fmt.Errorf("%w: capture session already attached", model.ErrHookState)
	}

	handles := make([]model.Handle, 0, len(s.points))
	for _, p := range s.points {
		mod, err := s.resolver.Module(s.model, p)
		if err != nil {
			for _, h := range handles {
				h.Remove()
			}
			return err
		}
		handles = append(handles, mod.RegisterHook(s.observer(p)))
	}

	s.handles = handles
	s.attached = true
	s.logger.Debug("capture attached", "points", len(s.points), "position", s.position.String())
	return nil
}

// observer copies (never mutates) the activation flowing through a point.
func (s *Session) observer(p arch.Point) model.HookFunc {
	return func(act *model.Activation) (*model.Activation, error) {
		selected, err := act.Select(s.position)
		if err != nil {
			return nil, err
		}
		s.records[p] = selected
		return nil, nil
	}
}

// Detach removes every observer. Detaching a detached session is a no-op.
func (s *Session) Detach() {
	if !s.attached {
		return
	}
	for _, h := range s.handles {
		h.Remove()
	}
	s.handles = nil
	s.attached = false
	s.logger.Debug("capture detached", "points", len(s.points))
}

// Attached reports whether the session currently holds live observers.
func (s *Session) Attached() bool { return s.attached }

// Activation returns the most recent capture for a point.
func (s *Session) Activation(p arch.Point) (*model.Activation, bool) {
	act, ok := s.records[p]
	return act, ok
}

// Activations returns a copy of the point → activation map.
func (s *Session) Activations() map[arch.Point]*model.Activation {
	out := make(map[arch.Point]*model.Activation, len(s.records))
	for p, act := range s.records {
		out[p] = act
	}
	return out
}

// Clear drops all recorded activations without touching hook registrations.
func (s *Session) Clear() {
	clear(s.records)
}

// With runs fn inside an attached session and guarantees detachment on every
// exit path, including panics.
func With(m model.Model, res *arch.Resolver, points []arch.Point, position model.Position, fn func(*Session) error, optFns ...func(*Options)) error {
	s, err := NewSession(m, res, points, position, optFns...)
	if err != nil {
		return err
	}
	if err := s.Attach(); err != nil {
		return err
	}
	defer s.Detach()
	return fn(s)
}
