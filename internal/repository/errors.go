// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// booking service and handlers to distinguish between different failure
// scenarios without inspecting driver error strings. For example,
// ErrForbidden indicates that the current user is not authorized to act
// on a resource owned by someone else, while ErrCapacityExceeded signals
// that an admission would push a slot past its seat capacity.
package repository

import "errors"

// ErrRestaurantNotFound is returned when a referenced restaurant does
// not exist. Handlers translate this into an HTTP 404 response.
var ErrRestaurantNotFound = errors.New("restaurant not found")

// ErrReservationNotFound is returned when a referenced reservation does
// not exist. Handlers translate this into an HTTP 404 response.
var ErrReservationNotFound = errors.New("reservation not found")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own. Handlers should translate this into an HTTP
// 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrCapacityExceeded is returned by the admission path when accepting a
// party would make the sum of ACTIVE party sizes for a
// (restaurant, date, slot) key exceed the restaurant's total seats. The
// reservation row is not created in that case.
var ErrCapacityExceeded = errors.New("not enough available seats")

// ErrAlreadyCancelled is returned when cancelling a reservation that is
// already in the terminal CANCELLED state. Cancellation is one-way and
// deliberately not idempotent.
var ErrAlreadyCancelled = errors.New("reservation already cancelled")

// ErrConflict is returned when a delete cannot be performed because of
// dependent records, such as removing a restaurant that still has
// reservations referencing it. Handlers should translate this into an
// HTTP 409 response.
var ErrConflict = errors.New("conflict")
