// Package steergo steers language model behavior at inference time by
// adding contrastively extracted directions to intermediate activations.
//
// The pipeline has three stages. Capture observes activations at resolved
// instrumentation points without changing the forward pass. Extraction runs
// contrast pairs through capture and accumulates mean-difference vectors per
// layer. Injection registers mutating hooks that add scaled vectors back
// into activations, with strength adjustable between passes and exact
// pass-through behavior restored on detach.
//
// Subpackages:
//
//   - model: activation tensors, module trees, hooks and the error taxonomy
//   - arch: architecture configs, the registry and point resolution
//   - capture: read-only activation recording
//   - extract: contrastive vector extraction
//   - vector: steering vectors and per-behavior sets
//   - inject: single- and multi-behavior activation injection
//   - dataset: contrast-pair and evaluation-prompt collections
//   - vectorstore: local, in-memory, S3 and MinIO persistence
//   - eval: strength sweeps against keyword-scored baselines
//
// This package re-exports the common error predicates and a small facade
// over the capture/extract/inject pipeline for one-call use.
package steergo
