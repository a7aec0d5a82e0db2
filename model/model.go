package model

import "context"

// Model is the borrowed language-model runtime. Implementations expose their
// module tree for hook registration and a forward-pass entry point that
// triggers registered hooks inline.
//
// The steering engine never copies or owns a Model; it only registers and
// removes hooks on it.
type Model interface {
	// Identity returns the model's identity string (e.g. "Qwen/Qwen3-8B").
	Identity() string
	// Root returns the root of the module tree.
	Root() Module
	// Forward runs one forward pass over the given token ids. Hooks
	// registered on modules fire inline, in the model's execution order.
	Forward(ctx context.Context, tokens []int) error
}

// HiddenSizer is an optional Model interface reporting the hidden dimension.
// Structural config inference requires it.
type HiddenSizer interface {
	HiddenSize() int
}
