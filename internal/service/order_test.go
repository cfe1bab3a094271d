package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusfest/festival/internal/model"
	"github.com/campusfest/festival/internal/repository"
)

type fakeTrucks struct {
	trucks map[uint64]model.FoodTruck
	menu   map[uint64]model.MenuItem
}

func (f *fakeTrucks) GetByID(_ context.Context, id uint64) (model.FoodTruck, error) {
	t, ok := f.trucks[id]
	if !ok {
		return model.FoodTruck{}, repository.ErrFoodTruckNotFound
	}
	return t, nil
}

func (f *fakeTrucks) GetMenuItem(_ context.Context, id uint64) (model.MenuItem, error) {
	m, ok := f.menu[id]
	if !ok {
		return model.MenuItem{}, repository.ErrMenuItemNotFound
	}
	return m, nil
}

type memOrderStore struct {
	rows  map[string]model.Order
	items map[string][]model.OrderItem
	order []string
}

func newMemOrderStore() *memOrderStore {
	return &memOrderStore{
		rows:  make(map[string]model.Order),
		items: make(map[string][]model.OrderItem),
	}
}

func (m *memOrderStore) CreateWithItems(_ context.Context, o *model.Order, items []model.OrderItem) error {
	o.CreatedAt = time.Now().UTC()
	o.UpdatedAt = o.CreatedAt
	for i := range items {
		items[i].OrderID = o.ID
	}
	m.rows[o.ID] = *o
	m.items[o.ID] = items
	m.order = append(m.order, o.ID)
	return nil
}

func (m *memOrderStore) GetByID(_ context.Context, id string) (model.Order, error) {
	o, ok := m.rows[id]
	if !ok {
		return model.Order{}, repository.ErrOrderNotFound
	}
	return o, nil
}

func (m *memOrderStore) ListItems(_ context.Context, orderID string) ([]model.OrderItem, error) {
	return m.items[orderID], nil
}

func (m *memOrderStore) SetStatus(_ context.Context, id, status string) error {
	o, ok := m.rows[id]
	if !ok {
		return repository.ErrOrderNotFound
	}
	o.Status = status
	m.rows[id] = o
	return nil
}

func (m *memOrderStore) ListByUser(_ context.Context, userID uint64) ([]model.Order, error) {
	out := make([]model.Order, 0)
	for i := len(m.order) - 1; i >= 0; i-- {
		if o := m.rows[m.order[i]]; o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *memOrderStore) ListByTruck(_ context.Context, truckID uint64) ([]model.Order, error) {
	out := make([]model.Order, 0)
	for _, id := range m.order {
		if o := m.rows[id]; o.FoodTruckID == truckID {
			out = append(out, o)
		}
	}
	return out, nil
}

// newTestOrderService builds a service over one open truck (id 1, vendor
// 200) with a burger (item 10, 500 cents) and an unavailable special
// (item 11), plus a closed truck (id 2, vendor 201).
func newTestOrderService() (*OrderService, *memOrderStore) {
	trucks := &fakeTrucks{
		trucks: map[uint64]model.FoodTruck{
			1: {ID: 1, VendorID: 200, Name: "Grill Bros", IsOpen: true},
			2: {ID: 2, VendorID: 201, Name: "Noodle Cart", IsOpen: false},
		},
		menu: map[uint64]model.MenuItem{
			10: {ID: 10, FoodTruckID: 1, Name: "Burger", PriceCents: 500, IsAvailable: true},
			11: {ID: 11, FoodTruckID: 1, Name: "Special", PriceCents: 900, IsAvailable: false},
		},
	}
	store := newMemOrderStore()
	return NewOrderService(trucks, store), store
}

func TestOrderCreateSnapshotsPrices(t *testing.T) {
	svc, _ := newTestOrderService()

	order, items, err := svc.Create(context.Background(), 100, 1, []OrderLine{
		{MenuItemID: 10, Quantity: 3},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, order.ID)
	assert.Equal(t, model.OrderPending, order.Status)
	assert.Equal(t, uint32(1500), order.TotalCents)
	require.Len(t, items, 1)
	assert.Equal(t, uint32(500), items[0].PriceCents)
}

func TestOrderCreateGuards(t *testing.T) {
	svc, _ := newTestOrderService()
	ctx := context.Background()

	_, _, err := svc.Create(ctx, 100, 1, nil)
	assert.ErrorIs(t, err, ErrEmptyOrder)

	_, _, err = svc.Create(ctx, 100, 999, []OrderLine{{MenuItemID: 10, Quantity: 1}})
	assert.ErrorIs(t, err, repository.ErrFoodTruckNotFound)

	_, _, err = svc.Create(ctx, 100, 2, []OrderLine{{MenuItemID: 10, Quantity: 1}})
	assert.ErrorIs(t, err, ErrTruckClosed)

	_, _, err = svc.Create(ctx, 100, 1, []OrderLine{{MenuItemID: 11, Quantity: 1}})
	assert.ErrorIs(t, err, ErrItemUnavailable)
}

func TestOrderCancelOnlyPending(t *testing.T) {
	svc, _ := newTestOrderService()
	ctx := context.Background()

	order, _, err := svc.Create(ctx, 100, 1, []OrderLine{{MenuItemID: 10, Quantity: 1}})
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, 101, order.ID)
	assert.ErrorIs(t, err, repository.ErrForbidden)

	cancelled, err := svc.Cancel(ctx, 100, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderCancelled, cancelled.Status)

	_, err = svc.Cancel(ctx, 100, order.ID)
	assert.ErrorIs(t, err, ErrOrderNotPending)
}

func TestOrderAdvanceOneStep(t *testing.T) {
	svc, _ := newTestOrderService()
	ctx := context.Background()

	order, _, err := svc.Create(ctx, 100, 1, []OrderLine{{MenuItemID: 10, Quantity: 1}})
	require.NoError(t, err)

	// Only the owning vendor may advance.
	_, err = svc.Advance(ctx, 201, order.ID, model.OrderAccepted)
	assert.ErrorIs(t, err, repository.ErrForbidden)

	// Skipping a step is a conflict.
	_, err = svc.Advance(ctx, 200, order.ID, model.OrderReady)
	assert.ErrorIs(t, err, ErrBadOrderTransition)

	for _, next := range []string{model.OrderAccepted, model.OrderReady, model.OrderCompleted} {
		advanced, err := svc.Advance(ctx, 200, order.ID, next)
		require.NoError(t, err)
		assert.Equal(t, next, advanced.Status)
	}

	_, err = svc.Advance(ctx, 200, order.ID, model.OrderCompleted)
	assert.ErrorIs(t, err, ErrBadOrderTransition)
}

func TestOrderCancelAfterAcceptRejected(t *testing.T) {
	svc, _ := newTestOrderService()
	ctx := context.Background()

	order, _, err := svc.Create(ctx, 100, 1, []OrderLine{{MenuItemID: 10, Quantity: 1}})
	require.NoError(t, err)
	_, err = svc.Advance(ctx, 200, order.ID, model.OrderAccepted)
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, 100, order.ID)
	assert.ErrorIs(t, err, ErrOrderNotPending)
}

func TestOrderGetAndLists(t *testing.T) {
	svc, _ := newTestOrderService()
	ctx := context.Background()

	order, _, err := svc.Create(ctx, 100, 1, []OrderLine{{MenuItemID: 10, Quantity: 2}})
	require.NoError(t, err)

	got, items, err := svc.Get(ctx, 100, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)
	require.Len(t, items, 1)
	assert.Equal(t, uint32(2), items[0].Quantity)

	_, _, err = svc.Get(ctx, 101, order.ID)
	assert.ErrorIs(t, err, repository.ErrForbidden)

	mine, err := svc.ListByUser(ctx, 100)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	queue, err := svc.ListByTruck(ctx, 200, 1)
	require.NoError(t, err)
	assert.Len(t, queue, 1)

	_, err = svc.ListByTruck(ctx, 201, 1)
	assert.ErrorIs(t, err, repository.ErrForbidden)
}
