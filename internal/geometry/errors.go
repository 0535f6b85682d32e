package geometry

import "errors"

var (
	// ErrInvalidGeometry is returned for input that is not a usable polygon.
	ErrInvalidGeometry = errors.New("invalid geometry")

	// ErrEmptyGeometry is returned when repair or cleaning leaves nothing.
	ErrEmptyGeometry = errors.New("empty geometry")
)
