// Package booking implements the reservation engine: availability
// listing, booking admission and cancellation. It validates requests,
// enforces the role policy and maps storage failures to a small error
// taxonomy that handlers translate to HTTP statuses. The capacity
// invariant itself is enforced by the store's serialized Book operation;
// this package guarantees that nothing reaches the store until the
// request is well-formed.
package booking

import "errors"

// ErrValidation covers malformed input: bad date strings, non-positive
// party sizes, slots outside the restaurant's hours, past dates. The
// store is never touched when validation fails.
var ErrValidation = errors.New("validation failed")

// ErrNotFound is returned when the referenced restaurant or reservation
// does not exist.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned on role or ownership mismatch: an owner
// calling admit, or a cancellation by someone who neither booked the
// reservation nor owns the restaurant.
var ErrForbidden = errors.New("forbidden")

// ErrCapacityExceeded is returned when a booking would push the sum of
// ACTIVE party sizes for the slot past the restaurant's total seats.
var ErrCapacityExceeded = errors.New("not enough available seats for the selected time")

// ErrAlreadyCancelled is returned when cancelling a reservation that is
// already CANCELLED. The transition is one-way and not idempotent.
var ErrAlreadyCancelled = errors.New("reservation already cancelled")

// ErrUnavailable is returned on transient storage or lock failures,
// including timeouts of the admission critical section. The caller may
// safely retry the same request: nothing was written.
var ErrUnavailable = errors.New("service temporarily unavailable")
