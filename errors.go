package steergo

import (
	"errors"

	"github.com/rotalabs/steergo/model"
)

// Re-exported error values and types so callers matching on failure classes
// need only this package.
var (
	ErrNotFound  = model.ErrNotFound
	ErrHookState = model.ErrHookState
)

type (
	ErrConfiguration     = model.ErrConfiguration
	ErrDimensionMismatch = model.ErrDimensionMismatch
	ErrLayerOutOfRange   = model.ErrLayerOutOfRange
)

// IsNotFound reports whether err is a missing-item error.
func IsNotFound(err error) bool {
	return errors.Is(err, model.ErrNotFound)
}

// IsHookState reports whether err is an attach/detach lifecycle violation.
func IsHookState(err error) bool {
	return errors.Is(err, model.ErrHookState)
}

// IsConfiguration reports whether err is a configuration error.
func IsConfiguration(err error) bool {
	var e *model.ErrConfiguration
	return errors.As(err, &e)
}

// IsDimensionMismatch reports whether err is a dimensionality mismatch.
func IsDimensionMismatch(err error) bool {
	var e *model.ErrDimensionMismatch
	return errors.As(err, &e)
}

// IsLayerOutOfRange reports whether err is an out-of-range layer index.
func IsLayerOutOfRange(err error) bool {
	var e *model.ErrLayerOutOfRange
	return errors.As(err, &e)
}
