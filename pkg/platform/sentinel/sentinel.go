package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and infrastructure layers
// return these (optionally wrapped) so services can translate them into domain
// errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: entity does not exist in store
// - ErrIndexOutOfBounds: dense-sequence index outside [0, count)
// - ErrConflict: write collides with existing state
// - ErrUnavailable: service or resource temporarily unavailable
//
// For validation errors (bad input, missing fields), use pkg/domain-errors
// directly.
var (
	ErrNotFound         = errors.New("not found")
	ErrIndexOutOfBounds = errors.New("index out of bounds")
	ErrConflict         = errors.New("conflict")
	ErrUnavailable      = errors.New("unavailable")
)
