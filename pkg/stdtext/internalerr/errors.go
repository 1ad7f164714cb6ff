package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidConfig      = errors.New("invalid configuration")
	ErrStoreUnavailable   = errors.New("store unavailable")
	ErrModelNotFitted     = errors.New("model not fitted")
	ErrCorruptSnapshot    = errors.New("corrupt model snapshot")
	ErrRebuildInProgress  = errors.New("rebuild already in progress")
	ErrBackendUnavailable = errors.New("backend unavailable")
)
