package vector

import (
	"fmt"
	"slices"

	"github.com/rotalabs/steergo/model"
)

// MetricNorm selects the raw L2-norm heuristic in Set.Best. It is the only
// defined metric: the norm of a mean-difference vector is a proxy for effect
// size, a default choice rather than a proven optimality criterion.
const MetricNorm = "norm"

// Set is a collection of steering vectors for one behavior, keyed by layer
// index (unique per layer). Sets grow incrementally during extraction or
// loading; Add stays legal after a set has been consumed by an injector.
type Set struct {
	behavior string
	vectors  map[int]Vector
}

// NewSet creates a set for a behavior, optionally seeded with vectors.
func NewSet(behavior string, vectors ...Vector) (*Set, error) {
	s := &Set{
		behavior: behavior,
		vectors:  make(map[int]Vector, len(vectors)),
	}
	for _, v := range vectors {
		if err := s.Add(v); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Behavior returns the behavior this set steers.
func (s *Set) Behavior() string { return s.behavior }

// Add inserts a vector, replacing any existing vector at the same layer.
// Vectors with a different behavior are rejected.
func (s *Set) Add(v Vector) error {
	if v.Behavior != s.behavior {
		return model.Configf("vector behavior %q does not match set behavior %q", v.Behavior, s.behavior)
	}
	s.vectors[v.LayerIndex] = v
	return nil
}

// Get returns the vector at a layer.
func (s *Set) Get(layer int) (Vector, bool) {
	v, ok := s.vectors[layer]
	return v, ok
}

// Lookup returns the vector at a layer or ErrNotFound.
func (s *Set) Lookup(layer int) (Vector, error) {
	v, ok := s.vectors[layer]
	if !ok {
		return Vector{}, fmt.Errorf("%w: no vector for layer %d in behavior %q", model.ErrNotFound, layer, s.behavior)
	}
	return v, nil
}

// Best returns the vector maximizing the given metric across layers.
// Only MetricNorm is defined. Ties resolve to the lowest layer index so
// repeated calls pick the same member.
func (s *Set) Best(metric string) (Vector, error) {
	if metric != MetricNorm {
		return Vector{}, model.Configf("unknown metric: %q", metric)
	}
	if len(s.vectors) == 0 {
		return Vector{}, model.Configf("empty vector set for behavior %q", s.behavior)
	}

	var best Vector
	bestNorm := -1.0
	for _, layer := range s.Layers() {
		v := s.vectors[layer]
		if n := v.Norm(); n > bestNorm {
			best, bestNorm = v, n
		}
	}
	return best, nil
}

// Layers returns the layer indices with vectors, sorted.
func (s *Set) Layers() []int {
	layers := make([]int, 0, len(s.vectors))
	for layer := range s.vectors {
		layers = append(layers, layer)
	}
	slices.Sort(layers)
	return layers
}

// Len returns the number of vectors in the set.
func (s *Set) Len() int { return len(s.vectors) }

// Vectors returns the vectors in layer order.
func (s *Set) Vectors() []Vector {
	out := make([]Vector, 0, len(s.vectors))
	for _, layer := range s.Layers() {
		out = append(out, s.vectors[layer])
	}
	return out
}

// SourceModel returns the source model identity recorded on the vectors, or
// "" for an empty set.
func (s *Set) SourceModel() string {
	for _, layer := range s.Layers() {
		return s.vectors[layer].SourceModel
	}
	return ""
}
