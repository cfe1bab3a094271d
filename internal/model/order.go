package model

import "time"

// Order status values stored in the orders.status column.  Vendors move
// an order forward along PENDING→ACCEPTED→READY→COMPLETED; the customer
// may cancel only while the order is still PENDING.
const (
    OrderPending   = "PENDING"
    OrderAccepted  = "ACCEPTED"
    OrderReady     = "READY"
    OrderCompleted = "COMPLETED"
    OrderCancelled = "CANCELLED"
)

// Order records a food-truck order placed by a user.  Like reservations
// the primary key is a UUID generated before the insert.  TotalCents is
// a snapshot of the menu prices at order time; later menu edits do not
// change past orders.
//
// Fields:
//  ID         – UUID primary key, generated at creation.
//  UserID     – user who placed the order.
//  FoodTruckID – truck the order was placed with.
//  Status     – current state (see constants above).
//  TotalCents – total price in cents at order time.
//  CreatedAt  – creation timestamp.
//  UpdatedAt  – last update timestamp.
type Order struct {
    ID          string    // orders.id
    UserID      uint64    // orders.user_id
    FoodTruckID uint64    // orders.food_truck_id
    Status      string    // orders.status
    TotalCents  uint32    // orders.total_cents
    CreatedAt   time.Time // orders.created_at
    UpdatedAt   time.Time // orders.updated_at
}

// OrderItem links an order to a menu item with the quantity and the
// unit price captured when the order was placed.
//
// Fields:
//  ID         – primary key identifier.
//  OrderID    – owning order.
//  MenuItemID – ordered menu item.
//  Quantity   – how many units were ordered, at least 1.
//  PriceCents – unit price snapshot in cents.
//  CreatedAt  – creation timestamp.
type OrderItem struct {
    ID         uint64    // order_items.id
    OrderID    string    // order_items.order_id
    MenuItemID uint64    // order_items.menu_item_id
    Quantity   uint32    // order_items.quantity
    PriceCents uint32    // order_items.price_cents
    CreatedAt  time.Time // order_items.created_at
}

// Terminal reports whether the order can no longer change state.
func (o *Order) Terminal() bool {
    return o.Status == OrderCompleted || o.Status == OrderCancelled
}
