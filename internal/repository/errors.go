// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// services and handlers to distinguish between different failure
// scenarios. For example, ErrForbidden indicates that the current user
// is not authorized to perform an operation on a resource owned by
// someone else, while ErrConflict signals that an operation cannot
// proceed due to existing dependent records (e.g. deleting an event
// with active reservations).
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a delete or update cannot be
// performed because of conflicting state, such as attempting to
// delete an event that still has active reservations. Handlers
// should translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// Per-entity not-found sentinels.  Repositories translate sql.ErrNoRows
// into these so callers can produce precise 404 messages without
// inspecting which query failed.
var (
    ErrUserNotFound        = errors.New("user not found")
    ErrEventNotFound       = errors.New("event not found")
    ErrTimeSlotNotFound    = errors.New("time slot not found")
    ErrReservationNotFound = errors.New("reservation not found")
    ErrFoodTruckNotFound   = errors.New("food truck not found")
    ErrMenuItemNotFound    = errors.New("menu item not found")
    ErrOrderNotFound       = errors.New("order not found")
)
