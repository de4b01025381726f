package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. empty location, cycle hours out of [0, 70]).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrRouting is returned when the external routing collaborator cannot
// resolve a path between the trip's locations, or times out.
// The trip is left exactly as it was before the call.
// Handlers should map this to HTTP 502 Bad Gateway.
var ErrRouting = errors.New("routing error")

// ErrCompliance is returned when a trip cannot be completed within the
// configured planning horizon given the driver's cycle deficit.
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrCompliance = errors.New("compliance error")

// ErrInvalidState is returned when an operation is attempted on a trip whose
// status does not permit it (e.g. recalculating a COMPLETED trip).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrInvalidState = errors.New("invalid state")

// ErrConcurrency is returned when a recalculation or deletion is attempted
// while another is already in flight for the same trip. Callers should retry.
// Handlers should map this to HTTP 409 Conflict.
var ErrConcurrency = errors.New("operation already in progress")
