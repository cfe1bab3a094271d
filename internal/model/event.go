package model

import "time"

// Reservation modes stored in the events.reservation_type column.
const (
    ReservationFirstCome = "FIRST_COME" // creation confirms immediately, subject to capacity
    ReservationSelection = "SELECTION"  // creation parks the request pending operator approval
)

// Event represents a festival event or booth as stored in the `events`
// table.  An event may accept reservations either directly against its
// own capacity or through time slots that subdivide it.  A nil Capacity
// means unlimited attendance.
//
// Fields:
//  ID                 – primary key identifier.
//  VendorID           – user who owns and manages the event.
//  Title              – display title of the event.
//  Description        – free-form description.
//  Location           – where on the festival grounds the event runs.
//  StartsAt           – when the event begins (UTC).
//  EndsAt             – when the event ends (UTC).
//  Capacity           – maximum active reservations (nil = unlimited).
//  IsStudentOnly      – restricts reservations to verified students.
//  ReservationEnabled – whether reservations are currently accepted.
//  ReservationType    – FIRST_COME or SELECTION.
//  CreatedAt          – creation timestamp.
//  UpdatedAt          – last update timestamp.
type Event struct {
    ID                 uint64    // events.id
    VendorID           uint64    // events.vendor_id
    Title              string    // events.title
    Description        string    // events.description
    Location           string    // events.location
    StartsAt           time.Time // events.starts_at
    EndsAt             time.Time // events.ends_at
    Capacity           *uint32   // events.capacity (nullable)
    IsStudentOnly      bool      // events.is_student_only
    ReservationEnabled bool      // events.reservation_enabled
    ReservationType    string    // events.reservation_type
    CreatedAt          time.Time // events.created_at
    UpdatedAt          time.Time // events.updated_at
}

// TimeSlot subdivides an event's schedule into bookable windows.  Slot
// capacity is counted independently of the parent event's capacity.
//
// Fields:
//  ID        – primary key identifier.
//  EventID   – parent event.
//  StartsAt  – slot start (UTC).
//  EndsAt    – slot end (UTC).
//  Capacity  – maximum active reservations for this slot (nil = unlimited).
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type TimeSlot struct {
    ID        uint64    // time_slots.id
    EventID   uint64    // time_slots.event_id
    StartsAt  time.Time // time_slots.starts_at
    EndsAt    time.Time // time_slots.ends_at
    Capacity  *uint32   // time_slots.capacity (nullable)
    CreatedAt time.Time // time_slots.created_at
    UpdatedAt time.Time // time_slots.updated_at
}
