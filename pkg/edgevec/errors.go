package edgevec

import "errors"

// ErrInvalidArgument is returned when the inputs violate the halfedge layout:
// mismatched shapes, vertex or edge ids out of range, sparse edge ids or
// orientation flags other than +1 and -1. Errors wrap it with context; match
// with errors.Is.
var ErrInvalidArgument = errors.New("edgevec: invalid argument")
