package fd

import "errors"

var (
	// ErrShapeMismatch marks inputs violating an array contract: stencil
	// size out of range for the node set, ragged coordinates, and the like.
	ErrShapeMismatch = errors.New("fd: shape mismatch")

	// ErrUnsupportedOperator marks a derivative order with no closed-form
	// basis derivative here. The supported set covers everything plane
	// elasticity needs.
	ErrUnsupportedOperator = errors.New("fd: unsupported derivative order")
)
