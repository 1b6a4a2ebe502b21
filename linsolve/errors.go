package linsolve

import "errors"

// ErrSingular marks a matrix the factorization cannot pivot through. The
// solve is one-shot: the error surfaces to the caller with no automatic
// fallback to another strategy.
var ErrSingular = errors.New("linsolve: singular system")
