// Package vector defines the steering-vector data model: the direction in
// activation space extracted from contrastive examples, and per-behavior
// collections of those directions keyed by layer.
package vector
