package common

import "errors"

// These are the sentinel error kinds. Design and source-plate validation
// wrap ErrInvalidDesign with %w so callers can compare with errors.Is; the
// solver reports failures through its Result status and message instead
// of an error value, and pkg/geometry returns its own InvalidPositionError.
var (
	ErrCapacityExceeded = errors.New("capacity exceeded")
	ErrEngineInfeasible = errors.New("engine infeasible")
	ErrEngineTimeout    = errors.New("engine timeout")
	ErrValidation       = errors.New("validation error")
	ErrInvalidPosition  = errors.New("invalid position")
	ErrInvalidDesign    = errors.New("invalid design")
	ErrEngine           = errors.New("engine error")
)
