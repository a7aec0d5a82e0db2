// Package capture provides read-only activation instrumentation.
//
// A Session registers non-mutating observers at instrumentation points and
// records the activation flowing through each one per forward pass. Records
// are overwritten on every pass; the session never accumulates implicitly.
//
// The core correctness contract is scoped acquisition with guaranteed
// release: With attaches on entry and detaches on every exit path, so a
// capture scope can never leak a live observer on the model.
package capture
