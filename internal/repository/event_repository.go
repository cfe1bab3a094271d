// Package repository contains data access logic for the festival domain.
// This file holds persistence for events and their time slots.  Events
// carry the fields that constrain the reservation engine: capacity,
// student-only gating, whether reservations are open and the reservation
// mode.  All timestamps are stored as UTC DATETIME columns and surface
// as time.Time thanks to parseTime=true on the DSN.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/campusfest/festival/internal/model"
)

// EventRepo manages persistence for events and time slots.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo returns a new EventRepo bound to the given database.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

// DB exposes the underlying sql.DB.  It allows callers to begin
// transactions spanning multiple repositories.
func (r *EventRepo) DB() *sql.DB { return r.db }

const eventCols = `id, vendor_id, title, description, location, starts_at, ends_at,
       capacity, is_student_only, reservation_enabled, reservation_type,
       created_at, updated_at`

func scanEvent(row *sql.Row) (model.Event, error) {
	var e model.Event
	var capacity sql.NullInt64
	err := row.Scan(&e.ID, &e.VendorID, &e.Title, &e.Description, &e.Location,
		&e.StartsAt, &e.EndsAt, &capacity, &e.IsStudentOnly,
		&e.ReservationEnabled, &e.ReservationType, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return model.Event{}, err
	}
	if capacity.Valid {
		c := uint32(capacity.Int64)
		e.Capacity = &c
	}
	return e, nil
}

// Create inserts a new event and populates the generated ID.
func (r *EventRepo) Create(ctx context.Context, e *model.Event) error {
	const q = `INSERT INTO events
	           (vendor_id, title, description, location, starts_at, ends_at,
	            capacity, is_student_only, reservation_enabled, reservation_type)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	var capacity interface{}
	if e.Capacity != nil {
		capacity = *e.Capacity
	}
	res, err := r.db.ExecContext(ctx, q, e.VendorID, e.Title, e.Description,
		e.Location, e.StartsAt, e.EndsAt, capacity, e.IsStudentOnly,
		e.ReservationEnabled, e.ReservationType)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	return nil
}

// GetByID returns a single event or ErrEventNotFound.
func (r *EventRepo) GetByID(ctx context.Context, id uint64) (model.Event, error) {
	e, err := scanEvent(r.db.QueryRowContext(ctx,
		`SELECT `+eventCols+` FROM events WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Event{}, ErrEventNotFound
	}
	return e, err
}

// GetEvent adapts GetByID to the lookup contract consumed by the
// reservation engine.
func (r *EventRepo) GetEvent(ctx context.Context, id uint64) (model.Event, error) {
	return r.GetByID(ctx, id)
}

// List returns all events ordered by start time.  The listing is public
// and sits behind the response cache, so no pagination is applied at
// this scale (a festival programme is a few hundred rows at most).
func (r *EventRepo) List(ctx context.Context) ([]model.Event, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+eventCols+` FROM events ORDER BY starts_at ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]model.Event, 0)
	for rows.Next() {
		var e model.Event
		var capacity sql.NullInt64
		if err := rows.Scan(&e.ID, &e.VendorID, &e.Title, &e.Description,
			&e.Location, &e.StartsAt, &e.EndsAt, &capacity, &e.IsStudentOnly,
			&e.ReservationEnabled, &e.ReservationType, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		if capacity.Valid {
			c := uint32(capacity.Int64)
			e.Capacity = &c
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Update rewrites the mutable columns of an event.  Ownership must be
// validated by the caller through GetByID first; admins bypass the
// vendor check entirely.
func (r *EventRepo) Update(ctx context.Context, e *model.Event) error {
	const q = `UPDATE events SET title=?, description=?, location=?, starts_at=?,
	           ends_at=?, capacity=?, is_student_only=?, reservation_enabled=?,
	           reservation_type=? WHERE id=?`
	var capacity interface{}
	if e.Capacity != nil {
		capacity = *e.Capacity
	}
	res, err := r.db.ExecContext(ctx, q, e.Title, e.Description, e.Location,
		e.StartsAt, e.EndsAt, capacity, e.IsStudentOnly, e.ReservationEnabled,
		e.ReservationType, e.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// Either the row is missing or nothing changed; distinguish by probing.
		if _, getErr := r.GetByID(ctx, e.ID); getErr != nil {
			return getErr
		}
	}
	return nil
}

// Delete removes an event.  It refuses with ErrConflict while active
// reservations exist; attendees must cancel (a status change) before an
// event row can go away.
func (r *EventRepo) Delete(ctx context.Context, id uint64) error {
	var active int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reservations WHERE event_id=? AND status IN ('CONFIRMED','CHECKED_IN')`,
		id).Scan(&active)
	if err != nil {
		return err
	}
	if active > 0 {
		return ErrConflict
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id=?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrEventNotFound
	}
	return nil
}

// CreateSlot inserts a time slot for an event and populates the ID.
func (r *EventRepo) CreateSlot(ctx context.Context, s *model.TimeSlot) error {
	const q = `INSERT INTO time_slots (event_id, starts_at, ends_at, capacity) VALUES (?, ?, ?, ?)`
	var capacity interface{}
	if s.Capacity != nil {
		capacity = *s.Capacity
	}
	res, err := r.db.ExecContext(ctx, q, s.EventID, s.StartsAt, s.EndsAt, capacity)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

// GetSlotByID returns a single slot or ErrTimeSlotNotFound.
func (r *EventRepo) GetSlotByID(ctx context.Context, id uint64) (model.TimeSlot, error) {
	var s model.TimeSlot
	var capacity sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		`SELECT id, event_id, starts_at, ends_at, capacity, created_at, updated_at
		 FROM time_slots WHERE id = ?`, id).
		Scan(&s.ID, &s.EventID, &s.StartsAt, &s.EndsAt, &capacity, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.TimeSlot{}, ErrTimeSlotNotFound
	}
	if err != nil {
		return model.TimeSlot{}, err
	}
	if capacity.Valid {
		c := uint32(capacity.Int64)
		s.Capacity = &c
	}
	return s, nil
}

// GetTimeSlot adapts GetSlotByID to the lookup contract consumed by the
// reservation engine.
func (r *EventRepo) GetTimeSlot(ctx context.Context, id uint64) (model.TimeSlot, error) {
	return r.GetSlotByID(ctx, id)
}

// ListSlotsByEvent returns all slots of an event in chronological order.
func (r *EventRepo) ListSlotsByEvent(ctx context.Context, eventID uint64) ([]model.TimeSlot, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, event_id, starts_at, ends_at, capacity, created_at, updated_at
		 FROM time_slots WHERE event_id = ? ORDER BY starts_at ASC, id ASC`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	slots := make([]model.TimeSlot, 0)
	for rows.Next() {
		var s model.TimeSlot
		var capacity sql.NullInt64
		if err := rows.Scan(&s.ID, &s.EventID, &s.StartsAt, &s.EndsAt, &capacity,
			&s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		if capacity.Valid {
			c := uint32(capacity.Int64)
			s.Capacity = &c
		}
		slots = append(slots, s)
	}
	return slots, rows.Err()
}
