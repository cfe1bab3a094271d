package model

import "time"

// Reservation status values stored in the reservations.status column.
// PENDING and REJECTED only occur for SELECTION-mode events.
const (
    ReservationPending   = "PENDING"
    ReservationConfirmed = "CONFIRMED"
    ReservationCheckedIn = "CHECKED_IN"
    ReservationCancelled = "CANCELLED"
    ReservationRejected  = "REJECTED"
)

// ActiveReservationStatuses are the statuses that occupy capacity.  Counts
// against event and slot capacity are computed live over this set, so a
// cancellation frees its place without any separate counter bookkeeping.
var ActiveReservationStatuses = []string{ReservationConfirmed, ReservationCheckedIn}

// Reservation records a user's booking for a festival event, optionally
// pinned to a specific time slot.  The primary key is a UUID generated
// before the row is written so the check-in token can embed it.
// Reservations are never deleted; cancellation and rejection are status
// writes.
//
// Fields:
//  ID          – UUID primary key, generated at creation.
//  UserID      – user who made the reservation.
//  EventID     – event being reserved.
//  TimeSlotID  – optional slot when the event subdivides capacity.
//  PartySize   – number of attendees covered, at least 1.
//  Status      – current state (see constants above).
//  QRCode      – signed check-in token, produced once and never regenerated.
//  CheckedInAt – set exactly once on the CONFIRMED→CHECKED_IN transition.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Reservation struct {
    ID          string     // reservations.id
    UserID      uint64     // reservations.user_id
    EventID     uint64     // reservations.event_id
    TimeSlotID  *uint64    // reservations.time_slot_id (nullable)
    PartySize   uint32     // reservations.party_size
    Status      string     // reservations.status
    QRCode      string     // reservations.qr_code
    CheckedInAt *time.Time // reservations.checked_in_at (nullable)
    CreatedAt   time.Time  // reservations.created_at
    UpdatedAt   time.Time  // reservations.updated_at
}

// Terminal reports whether the reservation is in a state with no
// outgoing transitions.
func (r *Reservation) Terminal() bool {
    switch r.Status {
    case ReservationCheckedIn, ReservationCancelled, ReservationRejected:
        return true
    }
    return false
}
