package geometry2D

import "errors"

// ErrShapeMismatch marks array inputs that violate a rank/dimension/content
// contract (ragged coordinates, non-unit normals, groups referencing nodes
// that do not exist). It is returned by the first component to observe the
// violation and is never retried.
var ErrShapeMismatch = errors.New("geometry2D: shape mismatch")
