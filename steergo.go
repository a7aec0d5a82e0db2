package steergo

import (
	"context"

	"github.com/rotalabs/steergo/arch"
	"github.com/rotalabs/steergo/capture"
	"github.com/rotalabs/steergo/extract"
	"github.com/rotalabs/steergo/inject"
	"github.com/rotalabs/steergo/model"
	"github.com/rotalabs/steergo/vector"
)

// Options configure the package-level helpers.
type Options struct {
	// Logger receives structured records for each operation. Defaults to a
	// silent logger.
	Logger *Logger
}

// WithLogger sets the logger for a package-level helper. The logger is also
// threaded into the underlying extractor or injector for its debug records.
func WithLogger(l *Logger) func(*Options) {
	return func(o *Options) { o.Logger = l }
}

func applyOptions(optFns []func(*Options)) Options {
	var opts Options
	for _, fn := range optFns {
		if fn != nil {
			fn(&opts)
		}
	}
	if opts.Logger == nil {
		opts.Logger = NoopLogger()
	}
	return opts
}

// CaptureActivations runs one forward pass over tokens with observers at the
// given residual-stream layers and returns the captured activations keyed by
// layer. The model passes through untouched.
func CaptureActivations(ctx context.Context, m model.Model, tokens []int, layers []int, position model.Position, optFns ...func(*Options)) (map[int]*model.Activation, error) {
	opts := applyOptions(optFns)
	res, err := arch.ResolveModel(m)
	if err != nil {
		return nil, err
	}

	points := arch.Points(layers, model.ComponentResidual)
	out := make(map[int]*model.Activation, len(layers))

	err = capture.With(m, res, points, position, func(s *capture.Session) error {
		if err := m.Forward(ctx, tokens); err != nil {
			return err
		}
		for _, p := range points {
			act, ok := s.Activation(p)
			if !ok {
				return model.Configf("no activation captured at layer %d", p.Layer)
			}
			out[p.Layer] = act
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	opts.Logger.WithModel(m.Identity()).DebugContext(ctx, "activations captured",
		"layers", len(out),
		"position", position.String(),
	)
	return out, nil
}

// Extract derives a steering-vector set for a behavior via contrastive
// activation addition. A nil or empty layers slice falls back to the
// architecture's recommended layers for the behavior.
func Extract(ctx context.Context, m model.Model, enc extract.Encoder, src extract.Source, layers []int, optFns ...func(*Options)) (*vector.Set, error) {
	opts := applyOptions(optFns)
	res, err := arch.ResolveModel(m)
	if err != nil {
		return nil, err
	}
	if len(layers) == 0 {
		layers = res.Recommended(src.Behavior())
	}

	logger := opts.Logger.WithModel(m.Identity())
	set, err := extract.New(m, enc, res, extract.WithLogger(logger.Logger)).Extract(ctx, src, layers)
	logger.LogExtraction(ctx, src.Behavior(), len(layers), src.Len(), err)
	return set, err
}

// Steer attaches an injector for the set's strongest vector and returns it.
// The caller owns the injector and must Detach it (or use SteerScoped).
func Steer(m model.Model, set *vector.Set, strength float64, optFns ...func(*Options)) (*inject.Injector, error) {
	opts := applyOptions(optFns)
	res, err := arch.ResolveModel(m)
	if err != nil {
		return nil, err
	}
	best, err := set.Best(vector.MetricNorm)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger.WithModel(m.Identity())
	inj, err := inject.New(m, res, []vector.Vector{best}, strength, model.PositionAll, inject.WithLogger(logger.Logger))
	if err != nil {
		return nil, err
	}
	err = inj.Attach()
	logger.LogInjection(context.Background(), set.Behavior(), strength, err)
	if err != nil {
		return nil, err
	}
	return inj, nil
}

// SteerScoped runs fn with steering active and guarantees the model returns
// to pass-through behavior on every exit path.
func SteerScoped(m model.Model, set *vector.Set, strength float64, fn func(*inject.Injector) error, optFns ...func(*Options)) error {
	opts := applyOptions(optFns)
	res, err := arch.ResolveModel(m)
	if err != nil {
		return err
	}
	best, err := set.Best(vector.MetricNorm)
	if err != nil {
		return err
	}

	logger := opts.Logger.WithModel(m.Identity()).WithBehavior(set.Behavior())
	inj, err := inject.New(m, res, []vector.Vector{best}, strength, model.PositionAll, inject.WithLogger(logger.Logger))
	if err != nil {
		return err
	}
	return inj.With(func() error { return fn(inj) })
}
