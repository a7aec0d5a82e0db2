package arch

import (
	"fmt"

	"github.com/rotalabs/steergo/model"
)

// Point identifies an instrumentation location in a model: one layer index
// plus the component within that layer. Points are resolved on demand against
// a Config's path templates; they are never persisted.
type Point struct {
	Layer     int
	Component model.Component
}

// Residual returns the residual-stream point for a layer.
func Residual(layer int) Point {
	return Point{Layer: layer, Component: model.ComponentResidual}
}

// MLP returns the MLP point for a layer.
func MLP(layer int) Point {
	return Point{Layer: layer, Component: model.ComponentMLP}
}

// Attention returns the attention point for a layer.
func Attention(layer int) Point {
	return Point{Layer: layer, Component: model.ComponentAttention}
}

func (p Point) String() string {
	return fmt.Sprintf("layer_%d.%s", p.Layer, p.Component)
}

// Points builds same-component points for a list of layers.
func Points(layers []int, component model.Component) []Point {
	out := make([]Point, len(layers))
	for i, l := range layers {
		out[i] = Point{Layer: l, Component: component}
	}
	return out
}
