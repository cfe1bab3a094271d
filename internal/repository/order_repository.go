package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/campusfest/festival/internal/model"
)

// OrderRepo provides persistence for food-truck orders and their items.
// Creating an order writes two tables, so the insert methods take a
// transaction; the caller commits or rolls back.
type OrderRepo struct {
	db *sql.DB
}

// NewOrderRepo returns a new OrderRepo bound to the given database.
func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

// DB exposes the underlying sql.DB for transaction control.
func (r *OrderRepo) DB() *sql.DB { return r.db }

// CreateTx inserts an order within the scope of an existing transaction.
// The order's UUID must already be set; timestamps are read back after
// the insert.
func (r *OrderRepo) CreateTx(ctx context.Context, tx *sql.Tx, o *model.Order) error {
	const q = `INSERT INTO orders (id, user_id, food_truck_id, status, total_cents) VALUES (?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, q, o.ID, o.UserID, o.FoodTruckID, o.Status, o.TotalCents); err != nil {
		return err
	}
	const sel = `SELECT created_at, updated_at FROM orders WHERE id = ?`
	return tx.QueryRowContext(ctx, sel, o.ID).Scan(&o.CreatedAt, &o.UpdatedAt)
}

// CreateItemsBulkTx inserts all order_items rows in a single statement.
// Passing an empty slice has no effect and returns nil.
func (r *OrderRepo) CreateItemsBulkTx(ctx context.Context, tx *sql.Tx, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	query := `INSERT INTO order_items (order_id, menu_item_id, quantity, price_cents) VALUES `
	args := make([]interface{}, 0, len(items)*4)
	for i, it := range items {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?)"
		args = append(args, it.OrderID, it.MenuItemID, it.Quantity, it.PriceCents)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// CreateWithItems inserts the order header and all of its item rows in
// one transaction.  The order's UUID must already be set and every item
// inherits it.
func (r *OrderRepo) CreateWithItems(ctx context.Context, o *model.Order, items []model.OrderItem) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := r.CreateTx(ctx, tx, o); err != nil {
		return err
	}
	for i := range items {
		items[i].OrderID = o.ID
	}
	if err := r.CreateItemsBulkTx(ctx, tx, items); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetByID returns a single order or ErrOrderNotFound.
func (r *OrderRepo) GetByID(ctx context.Context, id string) (model.Order, error) {
	var o model.Order
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, food_truck_id, status, total_cents, created_at, updated_at
		 FROM orders WHERE id = ?`, id).
		Scan(&o.ID, &o.UserID, &o.FoodTruckID, &o.Status, &o.TotalCents,
			&o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Order{}, ErrOrderNotFound
	}
	return o, err
}

// ListItems returns the items belonging to an order.
func (r *OrderRepo) ListItems(ctx context.Context, orderID string) ([]model.OrderItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, order_id, menu_item_id, quantity, price_cents, created_at
		 FROM order_items WHERE order_id = ? ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]model.OrderItem, 0)
	for rows.Next() {
		var it model.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.MenuItemID, &it.Quantity,
			&it.PriceCents, &it.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// SetStatus writes a new order status.
func (r *OrderRepo) SetStatus(ctx context.Context, id, status string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// ListByUser returns the user's orders, newest first.
func (r *OrderRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Order, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, food_truck_id, status, total_cents, created_at, updated_at
		 FROM orders WHERE user_id = ? ORDER BY created_at DESC, id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

// ListByTruck returns a truck's orders, oldest PENDING first so vendors
// work the queue in arrival order.
func (r *OrderRepo) ListByTruck(ctx context.Context, truckID uint64) ([]model.Order, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, food_truck_id, status, total_cents, created_at, updated_at
		 FROM orders WHERE food_truck_id = ? ORDER BY created_at ASC, id`, truckID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

func collectOrders(rows *sql.Rows) ([]model.Order, error) {
	out := make([]model.Order, 0)
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.FoodTruckID, &o.Status,
			&o.TotalCents, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
