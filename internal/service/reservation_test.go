package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusfest/festival/internal/model"
	"github.com/campusfest/festival/internal/repository"
	"github.com/campusfest/festival/internal/utils"
)

// fakeCatalog holds events and slots in memory for engine tests.
type fakeCatalog struct {
	events map[uint64]model.Event
	slots  map[uint64]model.TimeSlot
}

func (f *fakeCatalog) GetEvent(_ context.Context, id uint64) (model.Event, error) {
	e, ok := f.events[id]
	if !ok {
		return model.Event{}, repository.ErrEventNotFound
	}
	return e, nil
}

func (f *fakeCatalog) GetTimeSlot(_ context.Context, id uint64) (model.TimeSlot, error) {
	s, ok := f.slots[id]
	if !ok {
		return model.TimeSlot{}, repository.ErrTimeSlotNotFound
	}
	return s, nil
}

type fakeUsers struct {
	users map[uint64]model.User
}

func (f *fakeUsers) GetUser(_ context.Context, id uint64) (model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return model.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

// memStore implements ReservationStore over a map, counting active rows
// the way the SQL queries do.
type memStore struct {
	rows  map[string]model.Reservation
	order []string
}

func newMemStore() *memStore {
	return &memStore{rows: make(map[string]model.Reservation)}
}

func occupies(status string) bool {
	return status == model.ReservationConfirmed || status == model.ReservationCheckedIn
}

func (m *memStore) CountActiveByEvent(_ context.Context, eventID uint64) (int, error) {
	n := 0
	for _, r := range m.rows {
		if r.EventID == eventID && occupies(r.Status) {
			n++
		}
	}
	return n, nil
}

func (m *memStore) CountActiveBySlot(_ context.Context, slotID uint64) (int, error) {
	n := 0
	for _, r := range m.rows {
		if r.TimeSlotID != nil && *r.TimeSlotID == slotID && occupies(r.Status) {
			n++
		}
	}
	return n, nil
}

func (m *memStore) HasActiveForUser(_ context.Context, userID, eventID uint64) (bool, error) {
	for _, r := range m.rows {
		if r.UserID == userID && r.EventID == eventID && occupies(r.Status) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) Insert(_ context.Context, r *model.Reservation) error {
	r.CreatedAt = time.Now().UTC()
	r.UpdatedAt = r.CreatedAt
	m.rows[r.ID] = *r
	m.order = append(m.order, r.ID)
	return nil
}

func (m *memStore) GetByID(_ context.Context, id string) (model.Reservation, error) {
	r, ok := m.rows[id]
	if !ok {
		return model.Reservation{}, repository.ErrReservationNotFound
	}
	return r, nil
}

func (m *memStore) SetStatus(_ context.Context, id, status string) error {
	r, ok := m.rows[id]
	if !ok {
		return repository.ErrReservationNotFound
	}
	r.Status = status
	r.UpdatedAt = time.Now().UTC()
	m.rows[id] = r
	return nil
}

func (m *memStore) SetCheckedIn(_ context.Context, id string, at time.Time) error {
	r, ok := m.rows[id]
	if !ok {
		return repository.ErrReservationNotFound
	}
	r.Status = model.ReservationCheckedIn
	r.CheckedInAt = &at
	r.UpdatedAt = at
	m.rows[id] = r
	return nil
}

func (m *memStore) ListByUser(_ context.Context, userID uint64) ([]model.Reservation, error) {
	out := make([]model.Reservation, 0)
	for i := len(m.order) - 1; i >= 0; i-- {
		if r := m.rows[m.order[i]]; r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) ListByEvent(_ context.Context, eventID uint64, statusIn []string) ([]model.Reservation, error) {
	want := make(map[string]bool, len(statusIn))
	for _, s := range statusIn {
		want[s] = true
	}
	out := make([]model.Reservation, 0)
	for i := len(m.order) - 1; i >= 0; i-- {
		r := m.rows[m.order[i]]
		if r.EventID != eventID {
			continue
		}
		if len(want) > 0 && !want[r.Status] {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func u32(v uint32) *uint32 { return &v }
func u64(v uint64) *uint64 { return &v }

// newTestEngine builds an engine over in-memory collaborators with one
// open FIRST_COME event (id 1, capacity 2), one SELECTION event (id 2,
// unlimited), one student-only event (id 3) and a disabled event (id 4).
// Event 1 owns slot 10 with capacity 1.
func newTestEngine() (*ReservationEngine, *memStore) {
	catalog := &fakeCatalog{
		events: map[uint64]model.Event{
			1: {ID: 1, Title: "Main Stage", Capacity: u32(2), ReservationEnabled: true, ReservationType: model.ReservationFirstCome},
			2: {ID: 2, Title: "Workshop", ReservationEnabled: true, ReservationType: model.ReservationSelection},
			3: {ID: 3, Title: "Alumni Mixer", IsStudentOnly: true, ReservationEnabled: true, ReservationType: model.ReservationFirstCome},
			4: {ID: 4, Title: "Parade", ReservationEnabled: false, ReservationType: model.ReservationFirstCome},
		},
		slots: map[uint64]model.TimeSlot{
			10: {ID: 10, EventID: 1, Capacity: u32(1)},
		},
	}
	users := &fakeUsers{users: map[uint64]model.User{
		100: {ID: 100, Role: model.RoleUser, IsStudentVerified: true},
		101: {ID: 101, Role: model.RoleUser},
		102: {ID: 102, Role: model.RoleUser},
	}}
	store := newMemStore()
	return NewReservationEngine(catalog, users, store, utils.NewQRTokenEncoder("test-secret")), store
}

func TestCreateFirstComeConfirmed(t *testing.T) {
	engine, _ := newTestEngine()

	res, err := engine.Create(context.Background(), 100, 1, nil, 2)
	require.NoError(t, err)
	assert.NotEmpty(t, res.ID)
	assert.Equal(t, model.ReservationConfirmed, res.Status)
	assert.Equal(t, uint32(2), res.PartySize)
	assert.NotEmpty(t, res.QRCode)
	assert.Nil(t, res.CheckedInAt)
}

func TestCreatePartySizeDefaultsToOne(t *testing.T) {
	engine, _ := newTestEngine()

	res, err := engine.Create(context.Background(), 100, 1, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), res.PartySize)
}

func TestCreateEventNotFound(t *testing.T) {
	engine, _ := newTestEngine()

	_, err := engine.Create(context.Background(), 100, 999, nil, 1)
	assert.ErrorIs(t, err, repository.ErrEventNotFound)
}

func TestCreateReservationsDisabled(t *testing.T) {
	engine, _ := newTestEngine()

	_, err := engine.Create(context.Background(), 100, 4, nil, 1)
	assert.ErrorIs(t, err, ErrReservationsDisabled)
}

func TestCreateStudentGating(t *testing.T) {
	engine, _ := newTestEngine()
	ctx := context.Background()

	_, err := engine.Create(ctx, 101, 3, nil, 1)
	assert.ErrorIs(t, err, ErrStudentOnly)

	_, err = engine.Create(ctx, 999, 3, nil, 1)
	assert.ErrorIs(t, err, repository.ErrUserNotFound)

	res, err := engine.Create(ctx, 100, 3, nil, 1)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationConfirmed, res.Status)
}

func TestCreateFullyBooked(t *testing.T) {
	engine, _ := newTestEngine()
	ctx := context.Background()

	_, err := engine.Create(ctx, 100, 1, nil, 1)
	require.NoError(t, err)
	_, err = engine.Create(ctx, 101, 1, nil, 1)
	require.NoError(t, err)

	_, err = engine.Create(ctx, 102, 1, nil, 1)
	assert.ErrorIs(t, err, ErrFullyBooked)
}

func TestCreateDuplicateActive(t *testing.T) {
	engine, _ := newTestEngine()
	ctx := context.Background()

	_, err := engine.Create(ctx, 100, 1, nil, 1)
	require.NoError(t, err)

	_, err = engine.Create(ctx, 100, 1, nil, 1)
	assert.ErrorIs(t, err, ErrAlreadyReserved)
}

func TestCreateSlotChecks(t *testing.T) {
	engine, _ := newTestEngine()
	ctx := context.Background()

	_, err := engine.Create(ctx, 100, 1, u64(999), 1)
	assert.ErrorIs(t, err, repository.ErrTimeSlotNotFound)

	// Slot 10 belongs to event 1, not event 2.
	_, err = engine.Create(ctx, 100, 2, u64(10), 1)
	assert.ErrorIs(t, err, ErrSlotMismatch)

	res, err := engine.Create(ctx, 100, 1, u64(10), 1)
	require.NoError(t, err)
	require.NotNil(t, res.TimeSlotID)
	assert.Equal(t, uint64(10), *res.TimeSlotID)

	_, err = engine.Create(ctx, 101, 1, u64(10), 1)
	assert.ErrorIs(t, err, ErrSlotFullyBooked)
}

func TestCancelFreesCapacity(t *testing.T) {
	engine, _ := newTestEngine()
	ctx := context.Background()

	first, err := engine.Create(ctx, 100, 1, nil, 1)
	require.NoError(t, err)
	_, err = engine.Create(ctx, 101, 1, nil, 1)
	require.NoError(t, err)
	_, err = engine.Create(ctx, 102, 1, nil, 1)
	require.ErrorIs(t, err, ErrFullyBooked)

	cancelled, err := engine.Cancel(ctx, 100, first.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationCancelled, cancelled.Status)

	// The freed place is immediately reusable.
	_, err = engine.Create(ctx, 102, 1, nil, 1)
	assert.NoError(t, err)
}

func TestCancelGuards(t *testing.T) {
	engine, _ := newTestEngine()
	ctx := context.Background()

	res, err := engine.Create(ctx, 100, 1, nil, 1)
	require.NoError(t, err)

	_, err = engine.Cancel(ctx, 101, res.ID)
	assert.ErrorIs(t, err, repository.ErrForbidden)

	_, err = engine.Cancel(ctx, 100, "no-such-id")
	assert.ErrorIs(t, err, repository.ErrReservationNotFound)

	_, err = engine.Cancel(ctx, 100, res.ID)
	require.NoError(t, err)
	_, err = engine.Cancel(ctx, 100, res.ID)
	assert.ErrorIs(t, err, ErrAlreadyCancelled)
}

func TestCancelAfterCheckIn(t *testing.T) {
	engine, _ := newTestEngine()
	ctx := context.Background()

	res, err := engine.Create(ctx, 100, 1, nil, 1)
	require.NoError(t, err)
	_, err = engine.CheckIn(ctx, res.ID)
	require.NoError(t, err)

	_, err = engine.Cancel(ctx, 100, res.ID)
	assert.ErrorIs(t, err, ErrCancelAfterCheckIn)
}

func TestCheckInTransitions(t *testing.T) {
	engine, _ := newTestEngine()
	ctx := context.Background()

	res, err := engine.Create(ctx, 100, 1, nil, 1)
	require.NoError(t, err)

	checked, err := engine.CheckIn(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationCheckedIn, checked.Status)
	require.NotNil(t, checked.CheckedInAt)

	_, err = engine.CheckIn(ctx, res.ID)
	assert.ErrorIs(t, err, ErrAlreadyCheckedIn)

	cancelled, err := engine.Create(ctx, 101, 1, nil, 1)
	require.NoError(t, err)
	_, err = engine.Cancel(ctx, 101, cancelled.ID)
	require.NoError(t, err)
	_, err = engine.CheckIn(ctx, cancelled.ID)
	assert.ErrorIs(t, err, ErrCheckInCancelled)
}

func TestCheckInPendingRejected(t *testing.T) {
	engine, _ := newTestEngine()
	ctx := context.Background()

	pending, err := engine.Create(ctx, 100, 2, nil, 1)
	require.NoError(t, err)
	require.Equal(t, model.ReservationPending, pending.Status)

	_, err = engine.CheckIn(ctx, pending.ID)
	assert.ErrorIs(t, err, ErrNotPending)

	_, err = engine.Reject(ctx, pending.ID)
	require.NoError(t, err)
	_, err = engine.CheckIn(ctx, pending.ID)
	assert.ErrorIs(t, err, ErrNotPending)
}

func TestSelectionLifecycle(t *testing.T) {
	engine, _ := newTestEngine()
	ctx := context.Background()

	res, err := engine.Create(ctx, 100, 2, nil, 1)
	require.NoError(t, err)
	require.Equal(t, model.ReservationPending, res.Status)

	approved, err := engine.Approve(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationConfirmed, approved.Status)

	// The stored token never changes across transitions.
	assert.Equal(t, res.QRCode, approved.QRCode)

	checked, err := engine.CheckIn(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationCheckedIn, checked.Status)
	assert.NotNil(t, checked.CheckedInAt)
}

func TestDecideRequiresPending(t *testing.T) {
	engine, _ := newTestEngine()
	ctx := context.Background()

	confirmed, err := engine.Create(ctx, 100, 1, nil, 1)
	require.NoError(t, err)

	_, err = engine.Approve(ctx, confirmed.ID)
	assert.ErrorIs(t, err, ErrNotPending)
	_, err = engine.Reject(ctx, confirmed.ID)
	assert.ErrorIs(t, err, ErrNotPending)

	pending, err := engine.Create(ctx, 101, 2, nil, 1)
	require.NoError(t, err)
	rejected, err := engine.Reject(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationRejected, rejected.Status)

	_, err = engine.Approve(ctx, pending.ID)
	assert.ErrorIs(t, err, ErrNotPending)
}

func TestCancelPendingWithdrawsRequest(t *testing.T) {
	engine, _ := newTestEngine()
	ctx := context.Background()

	pending, err := engine.Create(ctx, 100, 2, nil, 1)
	require.NoError(t, err)

	cancelled, err := engine.Cancel(ctx, 100, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationCancelled, cancelled.Status)

	_, err = engine.Approve(ctx, pending.ID)
	assert.ErrorIs(t, err, ErrNotPending)
}

func TestReservationIDsUnique(t *testing.T) {
	engine, _ := newTestEngine()
	ctx := context.Background()

	seen := make(map[string]bool)
	for user := uint64(100); user <= 102; user++ {
		res, err := engine.Create(ctx, user, 2, nil, 1)
		require.NoError(t, err)
		assert.False(t, seen[res.ID])
		seen[res.ID] = true
	}
}

func TestGetEnforcesOwnership(t *testing.T) {
	engine, _ := newTestEngine()
	ctx := context.Background()

	res, err := engine.Create(ctx, 100, 1, nil, 1)
	require.NoError(t, err)

	got, err := engine.Get(ctx, 100, res.ID)
	require.NoError(t, err)
	assert.Equal(t, res.ID, got.ID)

	_, err = engine.Get(ctx, 101, res.ID)
	assert.ErrorIs(t, err, repository.ErrForbidden)
}

func TestListByEvent(t *testing.T) {
	engine, _ := newTestEngine()
	ctx := context.Background()

	a, err := engine.Create(ctx, 100, 2, nil, 1)
	require.NoError(t, err)
	_, err = engine.Create(ctx, 101, 2, nil, 1)
	require.NoError(t, err)
	_, err = engine.Approve(ctx, a.ID)
	require.NoError(t, err)

	all, err := engine.ListByEvent(ctx, 2, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	confirmed, err := engine.ListByEvent(ctx, 2, []string{model.ReservationConfirmed})
	require.NoError(t, err)
	require.Len(t, confirmed, 1)
	assert.Equal(t, a.ID, confirmed[0].ID)

	_, err = engine.ListByEvent(ctx, 999, nil)
	assert.ErrorIs(t, err, repository.ErrEventNotFound)
}
