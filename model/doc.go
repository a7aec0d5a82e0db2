// Package model defines the contract between the steering engine and a
// language-model runtime.
//
// # Runtime Contract
//
// Any runtime can be steered as long as it exposes:
//
//   - Model: identity string, a module tree, and a forward-pass entry point
//   - Module: named sub-modules plus post-forward hook registration
//   - Activation: the (sequence, hidden) float32 array flowing through a module
//
// The engine never owns the model; it borrows it for the lifetime of an
// attached capture or injection session and releases all hooks on detach.
//
// # Hook Mechanics
//
// BaseModule is the reference implementation of the hook protocol. Hooks run
// inline on the forward-pass call stack, in registration order. A hook that
// returns a replacement Activation substitutes it for downstream computation
// and for later hooks on the same module; a nil return is pass-through.
//
// # Error Taxonomy
//
//   - ErrConfiguration: invalid input or unsupported setup
//   - ErrDimensionMismatch: vector length vs model hidden size
//   - ErrLayerOutOfRange: layer index beyond the model's layer count
//   - ErrHookState: attach/detach lifecycle violations
//   - ErrNotFound: requested item absent with no fallback
package model
