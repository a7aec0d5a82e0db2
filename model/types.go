package model

import "fmt"

// Component identifies the sub-computation of a transformer layer that a
// hook attaches to.
type Component int

const (
	// ComponentResidual is the residual stream output of a layer.
	ComponentResidual Component = iota
	// ComponentMLP is the layer's MLP block output.
	ComponentMLP
	// ComponentAttention is the layer's attention block output.
	ComponentAttention
)

func (c Component) String() string {
	switch c {
	case ComponentResidual:
		return "residual"
	case ComponentMLP:
		return "mlp"
	case ComponentAttention:
		return "attention"
	default:
		return fmt.Sprintf("Unknown(%d)", int(c))
	}
}

// ParseComponent parses a component name as used in configuration files.
func ParseComponent(s string) (Component, error) {
	switch s {
	case "residual":
		return ComponentResidual, nil
	case "mlp":
		return ComponentMLP, nil
	case "attention", "attn":
		return ComponentAttention, nil
	default:
		return 0, Configf("unknown component: %q", s)
	}
}

// Position selects which sequence positions of an activation an operation
// applies to. Capture and injection accept All, Last and First; extraction
// additionally accepts Mean (average pooling over the sequence).
type Position int

const (
	// PositionAll selects every sequence position.
	PositionAll Position = iota
	// PositionLast selects the final sequence position.
	PositionLast
	// PositionFirst selects the first sequence position.
	PositionFirst
	// PositionMean averages over all sequence positions (extraction only).
	PositionMean
)

func (p Position) String() string {
	switch p {
	case PositionAll:
		return "all"
	case PositionLast:
		return "last"
	case PositionFirst:
		return "first"
	case PositionMean:
		return "mean"
	default:
		return fmt.Sprintf("Unknown(%d)", int(p))
	}
}

// ParsePosition parses a position name as used in configuration files.
func ParsePosition(s string) (Position, error) {
	switch s {
	case "all":
		return PositionAll, nil
	case "last":
		return PositionLast, nil
	case "first":
		return PositionFirst, nil
	case "mean":
		return PositionMean, nil
	default:
		return 0, Configf("unknown position: %q", s)
	}
}
