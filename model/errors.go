package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a requested item does not exist and no
	// fallback resolution applies.
	ErrNotFound = errors.New("not found")

	// ErrHookState indicates an attach/detach lifecycle violation, such as
	// attaching an already-attached session or using a detached one.
	ErrHookState = errors.New("hook state violation")
)

// ErrConfiguration indicates invalid configuration or input: unsupported
// architectures, unknown behaviors or metrics, empty extraction input.
type ErrConfiguration struct {
	Reason string
}

func (e *ErrConfiguration) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

// Configf builds an ErrConfiguration from a format string.
func Configf(format string, args ...any) error {
	return &ErrConfiguration{Reason: fmt.Sprintf(format, args...)}
}

// ErrDimensionMismatch indicates a vector/activation dimensionality mismatch.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// ErrLayerOutOfRange indicates a layer index beyond the model's layer count.
type ErrLayerOutOfRange struct {
	Layer     int
	NumLayers int
}

func (e *ErrLayerOutOfRange) Error() string {
	return fmt.Sprintf("layer %d out of range: model has %d layers", e.Layer, e.NumLayers)
}
