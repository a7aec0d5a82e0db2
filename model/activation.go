package model

import (
	"math"
	"slices"
)

// Activation is a (sequence, hidden) float32 array produced at one point of a
// model's computation. Data is row-major: position p occupies
// Data()[p*hidden : (p+1)*hidden].
//
// Hooks must treat the Activation they receive as read-only; to substitute a
// modified value they return a new instance (see HookFunc).
type Activation struct {
	data   []float32
	seq    int
	hidden int
}

// NewActivation creates a zero-filled activation of the given shape.
func NewActivation(seq, hidden int) *Activation {
	return &Activation{
		data:   make([]float32, seq*hidden),
		seq:    seq,
		hidden: hidden,
	}
}

// ActivationFromRows builds an activation from per-position rows.
// All rows must share one length.
func ActivationFromRows(rows [][]float32) (*Activation, error) {
	if len(rows) == 0 {
		return nil, Configf("activation needs at least one row")
	}
	hidden := len(rows[0])
	a := NewActivation(len(rows), hidden)
	for i, row := range rows {
		if len(row) != hidden {
			return nil, &ErrDimensionMismatch{Expected: hidden, Actual: len(row)}
		}
		copy(a.Row(i), row)
	}
	return a, nil
}

// Seq returns the number of sequence positions.
func (a *Activation) Seq() int { return a.seq }

// Hidden returns the hidden dimension.
func (a *Activation) Hidden() int { return a.hidden }

// Data returns the underlying row-major buffer.
func (a *Activation) Data() []float32 { return a.data }

// Row returns the slice for one sequence position. The slice aliases the
// activation's buffer.
func (a *Activation) Row(pos int) []float32 {
	return a.data[pos*a.hidden : (pos+1)*a.hidden]
}

// Clone returns a deep copy.
func (a *Activation) Clone() *Activation {
	return &Activation{
		data:   slices.Clone(a.data),
		seq:    a.seq,
		hidden: a.hidden,
	}
}

// Equal reports whether two activations have identical shape and contents.
func (a *Activation) Equal(other *Activation) bool {
	if other == nil {
		return false
	}
	return a.seq == other.seq && a.hidden == other.hidden && slices.Equal(a.data, other.data)
}

// Select reduces the activation to the positions chosen by pos. PositionAll
// returns a full copy, PositionLast/PositionFirst a single-row copy, and
// PositionMean a single row averaging every position.
func (a *Activation) Select(pos Position) (*Activation, error) {
	switch pos {
	case PositionAll:
		return a.Clone(), nil
	case PositionLast:
		out := NewActivation(1, a.hidden)
		copy(out.Row(0), a.Row(a.seq-1))
		return out, nil
	case PositionFirst:
		out := NewActivation(1, a.hidden)
		copy(out.Row(0), a.Row(0))
		return out, nil
	case PositionMean:
		out := NewActivation(1, a.hidden)
		row := out.Row(0)
		for p := 0; p < a.seq; p++ {
			src := a.Row(p)
			for i := range row {
				row[i] += src[i]
			}
		}
		inv := float32(1) / float32(a.seq)
		for i := range row {
			row[i] *= inv
		}
		return out, nil
	default:
		return nil, Configf("unknown position: %d", int(pos))
	}
}

// AddScaled adds scale*vec to the positions selected by pos, in place.
// PositionMean is not a valid injection mode.
func (a *Activation) AddScaled(vec []float32, scale float32, pos Position) error {
	if len(vec) != a.hidden {
		return &ErrDimensionMismatch{Expected: a.hidden, Actual: len(vec)}
	}
	addRow := func(p int) {
		row := a.Row(p)
		for i := range row {
			row[i] += scale * vec[i]
		}
	}
	switch pos {
	case PositionAll:
		for p := 0; p < a.seq; p++ {
			addRow(p)
		}
	case PositionLast:
		addRow(a.seq - 1)
	case PositionFirst:
		addRow(0)
	default:
		return Configf("invalid injection mode: %s", pos)
	}
	return nil
}

// NormRow returns the L2 norm of one sequence position.
func (a *Activation) NormRow(pos int) float64 {
	var sum float64
	for _, v := range a.Row(pos) {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}
