package vector

import (
	"errors"
	"math"
	"slices"

	"github.com/rotalabs/steergo/model"
)

// ErrZeroVector is returned when an operation is undefined on a zero vector.
var ErrZeroVector = errors.New("zero vector")

// ExtractionCAA is the extraction method recorded by the CAA extractor.
const ExtractionCAA = "caa"

// Metadata is free-form vector provenance.
type Metadata map[string]any

// Vector is one steering direction for a behavior at a specific layer.
//
// Vector is an immutable value object: derived operations (Normalize, Scale)
// return new instances with freshly allocated data. The data length is
// checked against the target model's hidden size at injection time, not at
// construction, since extraction may happen offline against another process.
type Vector struct {
	Behavior         string
	LayerIndex       int
	Data             []float32
	SourceModel      string
	ExtractionMethod string
	Metadata         Metadata
}

// New creates a steering vector. The data slice is cloned.
func New(behavior string, layerIndex int, data []float32, sourceModel string) Vector {
	return Vector{
		Behavior:         behavior,
		LayerIndex:       layerIndex,
		Data:             slices.Clone(data),
		SourceModel:      sourceModel,
		ExtractionMethod: ExtractionCAA,
		Metadata:         Metadata{},
	}
}

// Dim returns the vector's dimension.
func (v Vector) Dim() int { return len(v.Data) }

// Norm returns the L2 norm.
func (v Vector) Norm() float64 {
	var sum float64
	for _, x := range v.Data {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// Normalize returns a unit-norm copy preserving direction.
// Returns ErrZeroVector for a zero vector.
func (v Vector) Normalize() (Vector, error) {
	norm := v.Norm()
	if norm == 0 {
		return Vector{}, ErrZeroVector
	}

	out := v.derive()
	inv := float32(1 / norm)
	for i, x := range v.Data {
		out.Data[i] = x * inv
	}
	out.Metadata["normalized"] = true
	return out, nil
}

// Scale returns a copy with magnitude scaled by factor. The direction is
// preserved for positive factors and reversed for negative ones.
func (v Vector) Scale(factor float32) Vector {
	out := v.derive()
	for i, x := range v.Data {
		out.Data[i] = x * factor
	}
	out.Metadata["scale_factor"] = factor
	return out
}

// derive copies the vector with fresh data and metadata buffers.
func (v Vector) derive() Vector {
	out := v
	out.Data = make([]float32, len(v.Data))
	out.Metadata = make(Metadata, len(v.Metadata)+1)
	for k, val := range v.Metadata {
		out.Metadata[k] = val
	}
	return out
}

// CheckDim validates the vector against a model hidden size.
func (v Vector) CheckDim(hiddenSize int) error {
	if len(v.Data) != hiddenSize {
		return &model.ErrDimensionMismatch{Expected: hiddenSize, Actual: len(v.Data)}
	}
	return nil
}
