package eval

import (
	"context"
	"strings"
)

// Generator produces model text for a prompt. Implementations wrap whatever
// decoding loop sits on top of the instrumented model.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// PromptSource supplies evaluation prompts with their behavior expectation.
// dataset.EvalDataset satisfies it.
type PromptSource interface {
	Len() int
	Example(i int) (prompt string, expected bool)
}

// Scorer decides whether a response exhibits the target behavior.
type Scorer interface {
	Score(response string) bool
}

// ScorerFunc adapts a function to the Scorer interface.
type ScorerFunc func(response string) bool

func (f ScorerFunc) Score(response string) bool { return f(response) }

// KeywordScorer marks a response as exhibiting the behavior when any keyword
// appears in it, case-insensitively. Crude but cheap; suitable for behaviors
// with a distinctive surface vocabulary such as refusal.
type KeywordScorer struct {
	Keywords []string
}

func (s KeywordScorer) Score(response string) bool {
	lower := strings.ToLower(response)
	for _, kw := range s.Keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// BehaviorMetrics summarizes steering effect at one strength.
type BehaviorMetrics struct {
	// Behavior names the steered behavior.
	Behavior string
	// Strength is the injection strength these metrics were measured at.
	Strength float64
	// TargetRate is the fraction of expected-positive prompts whose
	// responses scored as exhibiting the behavior.
	TargetRate float64
	// BaselineRate is TargetRate measured at strength zero.
	BaselineRate float64
	// Improvement is TargetRate minus BaselineRate.
	Improvement float64
}
