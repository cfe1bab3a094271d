package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/campusfest/festival/internal/model"
	"github.com/campusfest/festival/internal/repository"
)

// Order-rejection sentinels, mapped to 400/409 by handlers.
var (
	ErrTruckClosed       = errors.New("food truck is not accepting orders")
	ErrItemUnavailable   = errors.New("menu item is not available")
	ErrEmptyOrder        = errors.New("order has no items")
	ErrOrderNotPending   = errors.New("order can only be cancelled while pending")
	ErrBadOrderTransition = errors.New("invalid order status transition")
)

// OrderLine is one requested item in an incoming order.
type OrderLine struct {
	MenuItemID uint64
	Quantity   uint32
}

// TruckLookup supplies the truck and menu fields that constrain
// ordering.  Implemented by repository.FoodTruckRepo.
type TruckLookup interface {
	GetByID(ctx context.Context, id uint64) (model.FoodTruck, error)
	GetMenuItem(ctx context.Context, id uint64) (model.MenuItem, error)
}

// OrderStore is the persisted order table.  Implemented by
// repository.OrderRepo; creation is transactional inside the store
// because it writes two tables.
type OrderStore interface {
	CreateWithItems(ctx context.Context, o *model.Order, items []model.OrderItem) error
	GetByID(ctx context.Context, id string) (model.Order, error)
	ListItems(ctx context.Context, orderID string) ([]model.OrderItem, error)
	SetStatus(ctx context.Context, id, status string) error
	ListByUser(ctx context.Context, userID uint64) ([]model.Order, error)
	ListByTruck(ctx context.Context, truckID uint64) ([]model.Order, error)
}

// OrderService mirrors the reservation engine's shape for food-truck
// orders: a status machine plus fan-out, with prices snapshotted at
// order time.
type OrderService struct {
	trucks TruckLookup
	orders OrderStore
}

// NewOrderService constructs the service.  Dependencies must be non-nil.
func NewOrderService(trucks TruckLookup, orders OrderStore) *OrderService {
	if trucks == nil || orders == nil {
		panic("nil dependency passed to NewOrderService")
	}
	return &OrderService{trucks: trucks, orders: orders}
}

// forwardOrderEdges lists the legal vendor-driven transitions.
var forwardOrderEdges = map[string]string{
	model.OrderPending:  model.OrderAccepted,
	model.OrderAccepted: model.OrderReady,
	model.OrderReady:    model.OrderCompleted,
}

// Create places an order with a truck.  The truck must be open and every
// requested item must belong to it and be available.  The total is the
// sum of unit-price snapshots times quantity.
func (s *OrderService) Create(ctx context.Context, userID, truckID uint64, lines []OrderLine) (model.Order, []model.OrderItem, error) {
	if len(lines) == 0 {
		return model.Order{}, nil, ErrEmptyOrder
	}
	truck, err := s.trucks.GetByID(ctx, truckID)
	if err != nil {
		return model.Order{}, nil, err
	}
	if !truck.IsOpen {
		return model.Order{}, nil, ErrTruckClosed
	}
	total := uint32(0)
	items := make([]model.OrderItem, 0, len(lines))
	for _, line := range lines {
		if line.Quantity == 0 {
			line.Quantity = 1
		}
		item, err := s.trucks.GetMenuItem(ctx, line.MenuItemID)
		if err != nil {
			return model.Order{}, nil, err
		}
		if item.FoodTruckID != truckID || !item.IsAvailable {
			return model.Order{}, nil, ErrItemUnavailable
		}
		total += item.PriceCents * line.Quantity
		items = append(items, model.OrderItem{
			MenuItemID: item.ID,
			Quantity:   line.Quantity,
			PriceCents: item.PriceCents,
		})
	}

	order := model.Order{
		ID:          uuid.NewString(),
		UserID:      userID,
		FoodTruckID: truckID,
		Status:      model.OrderPending,
		TotalCents:  total,
	}
	if err := s.orders.CreateWithItems(ctx, &order, items); err != nil {
		return model.Order{}, nil, err
	}
	return order, items, nil
}

// Cancel lets the customer withdraw an order that no vendor has picked
// up yet.
func (s *OrderService) Cancel(ctx context.Context, userID uint64, orderID string) (model.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return model.Order{}, err
	}
	if order.UserID != userID {
		return model.Order{}, repository.ErrForbidden
	}
	if order.Status != model.OrderPending {
		return model.Order{}, ErrOrderNotPending
	}
	if err := s.orders.SetStatus(ctx, orderID, model.OrderCancelled); err != nil {
		return model.Order{}, err
	}
	order.Status = model.OrderCancelled
	return order, nil
}

// Advance moves an order one step along PENDING→ACCEPTED→READY→COMPLETED
// on behalf of the truck's vendor.  Terminal orders and skipped steps are
// conflicts.
func (s *OrderService) Advance(ctx context.Context, vendorID uint64, orderID, to string) (model.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return model.Order{}, err
	}
	truck, err := s.trucks.GetByID(ctx, order.FoodTruckID)
	if err != nil {
		return model.Order{}, err
	}
	if truck.VendorID != vendorID {
		return model.Order{}, repository.ErrForbidden
	}
	if next, ok := forwardOrderEdges[order.Status]; !ok || next != to {
		return model.Order{}, ErrBadOrderTransition
	}
	if err := s.orders.SetStatus(ctx, orderID, to); err != nil {
		return model.Order{}, err
	}
	order.Status = to
	return order, nil
}

// Get returns an order the caller owns, with its items.
func (s *OrderService) Get(ctx context.Context, userID uint64, orderID string) (model.Order, []model.OrderItem, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return model.Order{}, nil, err
	}
	if order.UserID != userID {
		return model.Order{}, nil, repository.ErrForbidden
	}
	items, err := s.orders.ListItems(ctx, orderID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return model.Order{}, nil, err
	}
	return order, items, nil
}

// ListByUser returns the caller's orders, newest first.
func (s *OrderService) ListByUser(ctx context.Context, userID uint64) ([]model.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

// ListByTruck returns a truck's order queue for its vendor.
func (s *OrderService) ListByTruck(ctx context.Context, vendorID, truckID uint64) ([]model.Order, error) {
	truck, err := s.trucks.GetByID(ctx, truckID)
	if err != nil {
		return nil, err
	}
	if truck.VendorID != vendorID {
		return nil, repository.ErrForbidden
	}
	return s.orders.ListByTruck(ctx, truckID)
}
