// Package service holds the business rules that sit between the HTTP
// handlers and the repositories.  The reservation engine enforces the
// one-active-reservation-per-user-per-event rule, event and slot
// capacity ceilings, student-only gating and the status state machine.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/campusfest/festival/internal/model"
	"github.com/campusfest/festival/internal/repository"
)

// Request-rejection sentinels.  Every precondition failure short-circuits
// with a distinct error so handlers can surface a precise message; the
// caller-facing layer maps these to 400/409 while repository sentinels map
// to 404/403.
var (
	ErrReservationsDisabled = errors.New("reservations are not enabled for this event")
	ErrStudentOnly          = errors.New("event is limited to verified students")
	ErrFullyBooked          = errors.New("fully booked")
	ErrSlotFullyBooked      = errors.New("slot fully booked")
	ErrAlreadyReserved      = errors.New("already reserved")
	ErrAlreadyCancelled     = errors.New("already cancelled")
	ErrCancelAfterCheckIn   = errors.New("cannot cancel after check-in")
	ErrCheckInCancelled     = errors.New("cannot check in a cancelled reservation")
	ErrAlreadyCheckedIn     = errors.New("already checked in")
	ErrNotPending           = errors.New("reservation is not pending")
	ErrSlotMismatch         = errors.New("time slot does not belong to this event")
)

// EventLookup supplies the event and time-slot fields that constrain the
// engine.  Implemented by repository.EventRepo.
type EventLookup interface {
	GetEvent(ctx context.Context, id uint64) (model.Event, error)
	GetTimeSlot(ctx context.Context, id uint64) (model.TimeSlot, error)
}

// UserLookup supplies the verification flag for student-only gating.
// Implemented by repository.UserRepo.
type UserLookup interface {
	GetUser(ctx context.Context, id uint64) (model.User, error)
}

// ReservationStore is the persisted reservation table.  Counts are always
// computed live over the occupying statuses; no counter column exists.
// Implemented by repository.ReservationRepo.
type ReservationStore interface {
	CountActiveByEvent(ctx context.Context, eventID uint64) (int, error)
	CountActiveBySlot(ctx context.Context, slotID uint64) (int, error)
	HasActiveForUser(ctx context.Context, userID, eventID uint64) (bool, error)
	Insert(ctx context.Context, r *model.Reservation) error
	GetByID(ctx context.Context, id string) (model.Reservation, error)
	SetStatus(ctx context.Context, id, status string) error
	SetCheckedIn(ctx context.Context, id string, at time.Time) error
	ListByUser(ctx context.Context, userID uint64) ([]model.Reservation, error)
	ListByEvent(ctx context.Context, eventID uint64, statusIn []string) ([]model.Reservation, error)
}

// TokenEncoder renders the check-in payload into the opaque string stored
// on the row.  Implemented by utils.QRTokenEncoder.
type TokenEncoder interface {
	Encode(reservationID string, userID, eventID uint64) (string, error)
}

// ReservationEngine validates and applies every reservation lifecycle
// operation.  Each storage call is an independent round trip: the check
// sequence in Create is deliberately not batched into one atomic
// operation and no lock is held across it, so the backing store's
// default isolation governs what concurrent requests observe.
type ReservationEngine struct {
	events       EventLookup
	users        UserLookup
	reservations ReservationStore
	tokens       TokenEncoder
}

// NewReservationEngine constructs the engine.  All dependencies must be
// non-nil.
func NewReservationEngine(events EventLookup, users UserLookup, reservations ReservationStore, tokens TokenEncoder) *ReservationEngine {
	if events == nil || users == nil || reservations == nil || tokens == nil {
		panic("nil dependency passed to NewReservationEngine")
	}
	return &ReservationEngine{events: events, users: users, reservations: reservations, tokens: tokens}
}

// Create places a reservation for the user on the event, optionally
// against a time slot.  Checks run in a fixed order and each failure
// aborts before any write:
//
//  1. event exists and accepts reservations
//  2. student-only gating against the requesting user
//  3. event-level capacity (only when no slot is requested)
//  4. slot existence, ownership and slot-level capacity
//  5. no existing active reservation for (user, event)
//
// On success the reservation is persisted with a freshly generated UUID,
// the signed check-in token, and an initial status of CONFIRMED for
// FIRST_COME events or PENDING for SELECTION events.
func (e *ReservationEngine) Create(ctx context.Context, userID, eventID uint64, timeSlotID *uint64, partySize uint32) (model.Reservation, error) {
	if partySize == 0 {
		partySize = 1
	}
	event, err := e.events.GetEvent(ctx, eventID)
	if err != nil {
		return model.Reservation{}, err
	}
	if !event.ReservationEnabled {
		return model.Reservation{}, ErrReservationsDisabled
	}
	if event.IsStudentOnly {
		user, err := e.users.GetUser(ctx, userID)
		if err != nil {
			return model.Reservation{}, err
		}
		if !user.IsStudentVerified {
			return model.Reservation{}, ErrStudentOnly
		}
	}
	if timeSlotID == nil {
		if event.Capacity != nil {
			count, err := e.reservations.CountActiveByEvent(ctx, eventID)
			if err != nil {
				return model.Reservation{}, err
			}
			if count >= int(*event.Capacity) {
				return model.Reservation{}, ErrFullyBooked
			}
		}
	} else {
		slot, err := e.events.GetTimeSlot(ctx, *timeSlotID)
		if err != nil {
			return model.Reservation{}, err
		}
		if slot.EventID != eventID {
			return model.Reservation{}, ErrSlotMismatch
		}
		if slot.Capacity != nil {
			count, err := e.reservations.CountActiveBySlot(ctx, *timeSlotID)
			if err != nil {
				return model.Reservation{}, err
			}
			if count >= int(*slot.Capacity) {
				return model.Reservation{}, ErrSlotFullyBooked
			}
		}
	}
	exists, err := e.reservations.HasActiveForUser(ctx, userID, eventID)
	if err != nil {
		return model.Reservation{}, err
	}
	if exists {
		return model.Reservation{}, ErrAlreadyReserved
	}

	// The id is generated before the row exists so the check-in token can
	// embed it.
	id := uuid.NewString()
	qr, err := e.tokens.Encode(id, userID, eventID)
	if err != nil {
		return model.Reservation{}, err
	}
	status := model.ReservationConfirmed
	if event.ReservationType == model.ReservationSelection {
		status = model.ReservationPending
	}
	res := model.Reservation{
		ID:         id,
		UserID:     userID,
		EventID:    eventID,
		TimeSlotID: timeSlotID,
		PartySize:  partySize,
		Status:     status,
		QRCode:     qr,
	}
	if err := e.reservations.Insert(ctx, &res); err != nil {
		return model.Reservation{}, err
	}
	return res, nil
}

// Cancel transitions the caller's own reservation to CANCELLED.  The
// capacity place is freed implicitly because counts are computed live
// from status.  Cancelling a PENDING request withdraws it before the
// operator decides.
func (e *ReservationEngine) Cancel(ctx context.Context, userID uint64, reservationID string) (model.Reservation, error) {
	res, err := e.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return model.Reservation{}, err
	}
	if res.UserID != userID {
		return model.Reservation{}, repository.ErrForbidden
	}
	switch res.Status {
	case model.ReservationCancelled:
		return model.Reservation{}, ErrAlreadyCancelled
	case model.ReservationCheckedIn:
		return model.Reservation{}, ErrCancelAfterCheckIn
	case model.ReservationRejected:
		return model.Reservation{}, ErrNotPending
	}
	if err := e.reservations.SetStatus(ctx, reservationID, model.ReservationCancelled); err != nil {
		return model.Reservation{}, err
	}
	res.Status = model.ReservationCancelled
	return res, nil
}

// CheckIn redeems a CONFIRMED reservation at the gate.  Authorization is
// the caller's concern; the engine only validates the transition.  The
// checked-in timestamp is written exactly once.
func (e *ReservationEngine) CheckIn(ctx context.Context, reservationID string) (model.Reservation, error) {
	res, err := e.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return model.Reservation{}, err
	}
	switch res.Status {
	case model.ReservationCancelled:
		return model.Reservation{}, ErrCheckInCancelled
	case model.ReservationCheckedIn:
		return model.Reservation{}, ErrAlreadyCheckedIn
	case model.ReservationPending, model.ReservationRejected:
		return model.Reservation{}, ErrNotPending
	}
	now := time.Now().UTC()
	if err := e.reservations.SetCheckedIn(ctx, reservationID, now); err != nil {
		return model.Reservation{}, err
	}
	res.Status = model.ReservationCheckedIn
	res.CheckedInAt = &now
	return res, nil
}

// Approve moves a PENDING selection-mode request to CONFIRMED.  Any
// other current status is a conflict.
func (e *ReservationEngine) Approve(ctx context.Context, reservationID string) (model.Reservation, error) {
	return e.decide(ctx, reservationID, model.ReservationConfirmed)
}

// Reject moves a PENDING selection-mode request to REJECTED.  Any other
// current status is a conflict.
func (e *ReservationEngine) Reject(ctx context.Context, reservationID string) (model.Reservation, error) {
	return e.decide(ctx, reservationID, model.ReservationRejected)
}

func (e *ReservationEngine) decide(ctx context.Context, reservationID, to string) (model.Reservation, error) {
	res, err := e.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return model.Reservation{}, err
	}
	if res.Status != model.ReservationPending {
		return model.Reservation{}, ErrNotPending
	}
	if err := e.reservations.SetStatus(ctx, reservationID, to); err != nil {
		return model.Reservation{}, err
	}
	res.Status = to
	return res, nil
}

// Get returns a reservation the caller owns.
func (e *ReservationEngine) Get(ctx context.Context, userID uint64, reservationID string) (model.Reservation, error) {
	res, err := e.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return model.Reservation{}, err
	}
	if res.UserID != userID {
		return model.Reservation{}, repository.ErrForbidden
	}
	return res, nil
}

// ListByUser returns the caller's reservations, newest first.
func (e *ReservationEngine) ListByUser(ctx context.Context, userID uint64) ([]model.Reservation, error) {
	return e.reservations.ListByUser(ctx, userID)
}

// ListByEvent returns an event's reservations for operators, optionally
// filtered by status.
func (e *ReservationEngine) ListByEvent(ctx context.Context, eventID uint64, statusIn []string) ([]model.Reservation, error) {
	if _, err := e.events.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}
	return e.reservations.ListByEvent(ctx, eventID, statusIn)
}
