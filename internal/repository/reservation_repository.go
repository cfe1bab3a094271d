package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/campusfest/festival/internal/model"
)

// ReservationRepo provides persistence for reservations.  Capacity is
// never tracked in a counter column: every capacity decision is computed
// live by counting rows whose status occupies a place (CONFIRMED or
// CHECKED_IN).  Cancelling therefore frees capacity implicitly, and the
// engine's check sequence observes whatever state the store holds at
// the moment each query runs.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// DB exposes the underlying sql.DB.
func (r *ReservationRepo) DB() *sql.DB { return r.db }

const reservationCols = `id, user_id, event_id, time_slot_id, party_size, status,
       qr_code, checked_in_at, created_at, updated_at`

// Insert persists a reservation whose ID, status and QR token were
// generated by the engine before the write.  The row's DB-default
// timestamps are read back onto the struct.
func (r *ReservationRepo) Insert(ctx context.Context, res *model.Reservation) error {
	const q = `INSERT INTO reservations
	           (id, user_id, event_id, time_slot_id, party_size, status, qr_code)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	var slotID interface{}
	if res.TimeSlotID != nil {
		slotID = *res.TimeSlotID
	}
	if _, err := r.db.ExecContext(ctx, q, res.ID, res.UserID, res.EventID,
		slotID, res.PartySize, res.Status, res.QRCode); err != nil {
		return err
	}
	// Query back the full row to populate timestamps and defaults.
	stored, err := r.GetByID(ctx, res.ID)
	if err != nil {
		return err
	}
	*res = stored
	return nil
}

func scanReservation(scan func(dest ...interface{}) error) (model.Reservation, error) {
	var res model.Reservation
	var slotID sql.NullInt64
	var checkedIn sql.NullTime
	err := scan(&res.ID, &res.UserID, &res.EventID, &slotID, &res.PartySize,
		&res.Status, &res.QRCode, &checkedIn, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return model.Reservation{}, err
	}
	if slotID.Valid {
		sid := uint64(slotID.Int64)
		res.TimeSlotID = &sid
	}
	if checkedIn.Valid {
		t := checkedIn.Time
		res.CheckedInAt = &t
	}
	return res, nil
}

// GetByID returns a single reservation or ErrReservationNotFound.
func (r *ReservationRepo) GetByID(ctx context.Context, id string) (model.Reservation, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+reservationCols+` FROM reservations WHERE id = ?`, id)
	res, err := scanReservation(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Reservation{}, ErrReservationNotFound
	}
	return res, err
}

// CountActiveByEvent counts reservations occupying the event's capacity.
func (r *ReservationRepo) CountActiveByEvent(ctx context.Context, eventID uint64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reservations WHERE event_id = ? AND status IN ('CONFIRMED','CHECKED_IN')`,
		eventID).Scan(&n)
	return n, err
}

// CountActiveBySlot counts reservations occupying the slot's capacity.
// Slot counts are independent of the parent event's capacity.
func (r *ReservationRepo) CountActiveBySlot(ctx context.Context, slotID uint64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reservations WHERE time_slot_id = ? AND status IN ('CONFIRMED','CHECKED_IN')`,
		slotID).Scan(&n)
	return n, err
}

// HasActiveForUser reports whether the user already holds an occupying
// reservation for the event.
func (r *ReservationRepo) HasActiveForUser(ctx context.Context, userID, eventID uint64) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reservations
		 WHERE user_id = ? AND event_id = ? AND status IN ('CONFIRMED','CHECKED_IN')`,
		userID, eventID).Scan(&n)
	return n > 0, err
}

// SetStatus writes a new status.  The qr_code column is never touched by
// any transition.
func (r *ReservationRepo) SetStatus(ctx context.Context, id, status string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE reservations SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrReservationNotFound
	}
	return nil
}

// SetCheckedIn transitions the row to CHECKED_IN and records the
// timestamp in one statement so checked_in_at is set exactly once.
func (r *ReservationRepo) SetCheckedIn(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE reservations SET status = 'CHECKED_IN', checked_in_at = ? WHERE id = ?`,
		at, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrReservationNotFound
	}
	return nil
}

// ListByUser returns the user's reservations, newest first.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Reservation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+reservationCols+` FROM reservations WHERE user_id = ? ORDER BY created_at DESC, id`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReservations(rows)
}

// ListByEvent returns an event's reservations, optionally filtered to a
// status set, newest first.  Operators use it for check-in desks and
// selection-mode triage.
func (r *ReservationRepo) ListByEvent(ctx context.Context, eventID uint64, statusIn []string) ([]model.Reservation, error) {
	q := `SELECT ` + reservationCols + ` FROM reservations WHERE event_id = ?`
	args := []interface{}{eventID}
	if len(statusIn) > 0 {
		placeholders := make([]string, len(statusIn))
		for i, s := range statusIn {
			placeholders[i] = "?"
			args = append(args, s)
		}
		q += ` AND status IN (` + strings.Join(placeholders, ",") + `)`
	}
	q += ` ORDER BY created_at DESC, id`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReservations(rows)
}

func collectReservations(rows *sql.Rows) ([]model.Reservation, error) {
	out := make([]model.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}
