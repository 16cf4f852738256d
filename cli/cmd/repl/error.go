package repl

import "errors"

// Sentinel errors.
var (
	ErrOutOfBounds  = errors.New("index out of range")
	ErrEditDeclined = errors.New("decline edit")
	ErrAssignment   = errors.New("expected: NAME[, NAME...] = EXPR[, EXPR...]")
	ErrAssignCount  = errors.New("number of names and values differ")
)
