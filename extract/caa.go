package extract

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/rotalabs/steergo/arch"
	"github.com/rotalabs/steergo/capture"
	"github.com/rotalabs/steergo/model"
	"github.com/rotalabs/steergo/vector"
)

// Source supplies contrast pairs for extraction. dataset.Dataset satisfies
// it; any iterable of (positive, negative) texts with a count will do.
type Source interface {
	// Behavior names the behavior the pairs contrast.
	Behavior() string
	// Len returns the number of pairs.
	Len() int
	// Pair returns the i-th positive/negative text pair.
	Pair(i int) (positive, negative string)
}

// Encoder turns text into the token ids the model's Forward expects.
type Encoder interface {
	Encode(text string) ([]int, error)
}

// Options configure an Extractor.
type Options struct {
	// Component is the instrumentation component, default residual.
	Component model.Component
	// Position selects the token position fed into the mean: last, first
	// or mean pooling. Default last.
	Position model.Position
	// Logger receives per-layer progress records. Nil disables logging.
	Logger *slog.Logger
}

// WithComponent sets the captured component.
func WithComponent(c model.Component) func(*Options) {
	return func(o *Options) { o.Component = c }
}

// WithPosition sets the token position policy.
func WithPosition(p model.Position) func(*Options) {
	return func(o *Options) { o.Position = p }
}

// WithLogger sets the progress logger.
func WithLogger(logger *slog.Logger) func(*Options) {
	return func(o *Options) { o.Logger = logger }
}

// Extractor derives steering vectors with Contrastive Activation Addition:
// the difference of mean activations between positive and negative examples.
type Extractor struct {
	model    model.Model
	encoder  Encoder
	resolver *arch.Resolver
	opts     Options
}

// New creates a CAA extractor bound to a model, its encoder and a resolver.
func New(m model.Model, enc Encoder, res *arch.Resolver, optFns ...func(*Options)) *Extractor {
	opts := Options{
		Component: model.ComponentResidual,
		Position:  model.PositionLast,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&opts)
		}
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Extractor{model: m, encoder: enc, resolver: res, opts: opts}
}

// meanAccumulator maintains a running mean in float64, so memory stays
// constant in the dataset size and large datasets don't lose precision to a
// giant sum.
type meanAccumulator struct {
	mean []float64
	n    int
}

func newMeanAccumulator(dim int) *meanAccumulator {
	return &meanAccumulator{mean: make([]float64, dim)}
}

// add folds one activation row into the mean: m += (a - m) / n.
func (acc *meanAccumulator) add(row []float32) error {
	if len(row) != len(acc.mean) {
		return &model.ErrDimensionMismatch{Expected: len(acc.mean), Actual: len(row)}
	}
	acc.n++
	inv := 1 / float64(acc.n)
	for i, a := range row {
		acc.mean[i] += (float64(a) - acc.mean[i]) * inv
	}
	return nil
}

func (acc *meanAccumulator) norm() float64 {
	var sum float64
	for _, x := range acc.mean {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// Extract runs CAA over every requested layer and returns one steering
// vector per layer: mean(positive activations) − mean(negative activations).
//
// Each pair costs two independent forward passes (positive and negative);
// all requested layers are captured in the same pass, which does not change
// the per-layer result.
func (e *Extractor) Extract(ctx context.Context, src Source, layers []int) (*vector.Set, error) {
	if err := e.validate(src, layers); err != nil {
		return nil, err
	}

	points := arch.Points(layers, e.opts.Component)
	pos := make(map[int]*meanAccumulator, len(layers))
	neg := make(map[int]*meanAccumulator, len(layers))
	hidden := e.resolver.HiddenSize()
	for _, l := range layers {
		pos[l] = newMeanAccumulator(hidden)
		neg[l] = newMeanAccumulator(hidden)
	}

	err := capture.With(e.model, e.resolver, points, model.PositionAll, func(s *capture.Session) error {
		for i := 0; i < src.Len(); i++ {
			positive, negative := src.Pair(i)

			if err := e.accumulate(ctx, s, positive, layers, pos); err != nil {
				return fmt.Errorf("pair %d positive: %w", i, err)
			}
			if err := e.accumulate(ctx, s, negative, layers, neg); err != nil {
				return fmt.Errorf("pair %d negative: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	set, err := vector.NewSet(src.Behavior())
	if err != nil {
		return nil, err
	}
	for _, l := range layers {
		v := e.buildVector(src, l, pos[l], neg[l])
		if err := set.Add(v); err != nil {
			return nil, err
		}
		e.opts.Logger.Debug("layer extracted",
			"behavior", src.Behavior(),
			"layer", l,
			"pairs", src.Len(),
			"vector_norm", v.Norm(),
		)
	}
	return set, nil
}

// ExtractSingle is the single-layer form of Extract.
func (e *Extractor) ExtractSingle(ctx context.Context, src Source, layer int) (vector.Vector, error) {
	set, err := e.Extract(ctx, src, []int{layer})
	if err != nil {
		return vector.Vector{}, err
	}
	return set.Lookup(layer)
}

// accumulate runs one forward pass over text and folds the selected position
// of every captured layer into the corresponding running mean.
func (e *Extractor) accumulate(ctx context.Context, s *capture.Session, text string, layers []int, accs map[int]*meanAccumulator) error {
	tokens, err := e.encoder.Encode(text)
	if err != nil {
		return err
	}
	if err := e.model.Forward(ctx, tokens); err != nil {
		return err
	}

	for _, l := range layers {
		act, ok := s.Activation(arch.Point{Layer: l, Component: e.opts.Component})
		if !ok {
			return model.Configf("no activation captured at layer %d", l)
		}
		selected, err := act.Select(e.opts.Position)
		if err != nil {
			return err
		}
		if err := accs[l].add(selected.Row(0)); err != nil {
			return err
		}
	}
	return nil
}

func (e *Extractor) buildVector(src Source, layer int, pos, neg *meanAccumulator) vector.Vector {
	data := make([]float32, len(pos.mean))
	for i := range data {
		data[i] = float32(pos.mean[i] - neg.mean[i])
	}

	v := vector.New(src.Behavior(), layer, data, e.model.Identity())
	v.Metadata["num_pairs"] = src.Len()
	v.Metadata["token_position"] = e.opts.Position.String()
	v.Metadata["pos_mean_norm"] = pos.norm()
	v.Metadata["neg_mean_norm"] = neg.norm()
	v.Metadata["vector_norm"] = v.Norm()
	return v
}

func (e *Extractor) validate(src Source, layers []int) error {
	if src == nil || src.Len() == 0 {
		return model.Configf("no pairs to extract from")
	}
	if len(layers) == 0 {
		return model.Configf("no layers to extract at")
	}
	switch e.opts.Position {
	case model.PositionLast, model.PositionFirst, model.PositionMean:
	default:
		return model.Configf("invalid extraction position: %s", e.opts.Position)
	}
	if err := e.resolver.CheckLayers(layers); err != nil {
		return err
	}
	for i := 0; i < src.Len(); i++ {
		positive, negative := src.Pair(i)
		if positive == "" || negative == "" {
			return model.Configf("pair %d has empty text", i)
		}
	}
	return nil
}
