// Package testutil provides deterministic toy models and encoders for
// exercising capture, extraction and injection without a real runtime.
package testutil
