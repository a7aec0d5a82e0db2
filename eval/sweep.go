package eval

import (
	"context"
	"io"
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/rotalabs/steergo/inject"
	"github.com/rotalabs/steergo/model"
)

// SweepOptions configure a strength sweep.
type SweepOptions struct {
	// Behavior labels the resulting metrics.
	Behavior string
	// Limiter throttles generation calls, protecting shared inference
	// backends. Defaults to unlimited.
	Limiter *rate.Limiter
	// Logger receives progress records.
	Logger *slog.Logger
}

// WithBehavior labels sweep results with a behavior name.
func WithBehavior(behavior string) func(*SweepOptions) {
	return func(o *SweepOptions) { o.Behavior = behavior }
}

// WithLimiter sets the generation rate limiter.
func WithLimiter(l *rate.Limiter) func(*SweepOptions) {
	return func(o *SweepOptions) { o.Limiter = l }
}

// WithSweepLogger sets the sweep logger.
func WithSweepLogger(logger *slog.Logger) func(*SweepOptions) {
	return func(o *SweepOptions) { o.Logger = logger }
}

// Sweep measures steering effect across strengths. The baseline runs first
// with the injector detached; the injector then attaches once and each
// strength is applied with SetStrength, so hook registrations are not churned
// between measurements. The injector's original strength is restored on
// return.
func Sweep(ctx context.Context, injector *inject.Injector, gen Generator, prompts PromptSource, scorer Scorer, strengths []float64, optFns ...func(*SweepOptions)) ([]BehaviorMetrics, error) {
	opts := SweepOptions{
		Limiter: rate.NewLimiter(rate.Inf, 0),
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&opts)
		}
	}

	if len(strengths) == 0 {
		return nil, model.Configf("sweep needs at least one strength")
	}
	if prompts.Len() == 0 {
		return nil, model.Configf("sweep needs at least one prompt")
	}

	original := injector.Strength()
	defer injector.SetStrength(original)

	baseline, err := measure(ctx, gen, prompts, scorer, &opts)
	if err != nil {
		return nil, err
	}
	opts.Logger.Debug("baseline measured", "rate", baseline)

	var results []BehaviorMetrics
	err = injector.With(func() error {
		for _, strength := range strengths {
			injector.SetStrength(strength)
			targetRate, err := measure(ctx, gen, prompts, scorer, &opts)
			if err != nil {
				return err
			}
			opts.Logger.Debug("strength measured", "strength", strength, "rate", targetRate)

			results = append(results, BehaviorMetrics{
				Behavior:     opts.Behavior,
				Strength:     strength,
				TargetRate:   targetRate,
				BaselineRate: baseline,
				Improvement:  targetRate - baseline,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// measure generates a response for each expected-positive prompt and returns
// the fraction scored as exhibiting the behavior.
func measure(ctx context.Context, gen Generator, prompts PromptSource, scorer Scorer, opts *SweepOptions) (float64, error) {
	var positives, hits int
	for i := 0; i < prompts.Len(); i++ {
		prompt, expected := prompts.Example(i)
		if !expected {
			continue
		}
		positives++

		if err := opts.Limiter.Wait(ctx); err != nil {
			return 0, err
		}
		response, err := gen.Generate(ctx, prompt)
		if err != nil {
			return 0, err
		}
		if scorer.Score(response) {
			hits++
		}
	}
	if positives == 0 {
		return 0, model.Configf("no expected-positive prompts to measure")
	}
	return float64(hits) / float64(positives), nil
}
