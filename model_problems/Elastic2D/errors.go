package Elastic2D

import "errors"

var (
	// ErrKeyConflict marks two assembly passes claiming the same global
	// operator row for overwrite. Detected before any rows are written;
	// never resolved by pass order.
	ErrKeyConflict = errors.New("Elastic2D: conflicting row targets")

	// ErrShapeMismatch marks inputs violating an array contract at this
	// layer (normals not unit length, group/normal misalignment).
	ErrShapeMismatch = errors.New("Elastic2D: shape mismatch")
)
