package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/campusfest/festival/internal/model"
)

// FoodTruckRepo manages persistence for food trucks and their menus.
type FoodTruckRepo struct {
	db *sql.DB
}

// NewFoodTruckRepo returns a new FoodTruckRepo bound to the given database.
func NewFoodTruckRepo(db *sql.DB) *FoodTruckRepo { return &FoodTruckRepo{db: db} }

// DB exposes the underlying sql.DB.
func (r *FoodTruckRepo) DB() *sql.DB { return r.db }

// Create inserts a food truck and populates the generated ID.
func (r *FoodTruckRepo) Create(ctx context.Context, t *model.FoodTruck) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO food_trucks (vendor_id, name, description, location, is_open) VALUES (?, ?, ?, ?, ?)`,
		t.VendorID, t.Name, t.Description, t.Location, t.IsOpen)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return nil
}

// GetByID returns a single food truck or ErrFoodTruckNotFound.
func (r *FoodTruckRepo) GetByID(ctx context.Context, id uint64) (model.FoodTruck, error) {
	var t model.FoodTruck
	err := r.db.QueryRowContext(ctx,
		`SELECT id, vendor_id, name, description, location, is_open, created_at, updated_at
		 FROM food_trucks WHERE id = ?`, id).
		Scan(&t.ID, &t.VendorID, &t.Name, &t.Description, &t.Location, &t.IsOpen,
			&t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.FoodTruck{}, ErrFoodTruckNotFound
	}
	return t, err
}

// List returns all food trucks ordered by name.
func (r *FoodTruckRepo) List(ctx context.Context) ([]model.FoodTruck, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, vendor_id, name, description, location, is_open, created_at, updated_at
		 FROM food_trucks ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	trucks := make([]model.FoodTruck, 0)
	for rows.Next() {
		var t model.FoodTruck
		if err := rows.Scan(&t.ID, &t.VendorID, &t.Name, &t.Description,
			&t.Location, &t.IsOpen, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		trucks = append(trucks, t)
	}
	return trucks, rows.Err()
}

// ListByVendor returns the trucks owned by a vendor.
func (r *FoodTruckRepo) ListByVendor(ctx context.Context, vendorID uint64) ([]model.FoodTruck, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, vendor_id, name, description, location, is_open, created_at, updated_at
		 FROM food_trucks WHERE vendor_id = ? ORDER BY name, id`, vendorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	trucks := make([]model.FoodTruck, 0)
	for rows.Next() {
		var t model.FoodTruck
		if err := rows.Scan(&t.ID, &t.VendorID, &t.Name, &t.Description,
			&t.Location, &t.IsOpen, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		trucks = append(trucks, t)
	}
	return trucks, rows.Err()
}

// Update rewrites the mutable columns of a truck.
func (r *FoodTruckRepo) Update(ctx context.Context, t *model.FoodTruck) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE food_trucks SET name=?, description=?, location=?, is_open=? WHERE id=?`,
		t.Name, t.Description, t.Location, t.IsOpen, t.ID)
	return err
}

// CreateMenuItem inserts a menu item and populates the generated ID.
func (r *FoodTruckRepo) CreateMenuItem(ctx context.Context, m *model.MenuItem) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO menu_items (food_truck_id, name, price_cents, is_available) VALUES (?, ?, ?, ?)`,
		m.FoodTruckID, m.Name, m.PriceCents, m.IsAvailable)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	return nil
}

// GetMenuItem returns a single menu item or ErrMenuItemNotFound.
func (r *FoodTruckRepo) GetMenuItem(ctx context.Context, id uint64) (model.MenuItem, error) {
	var m model.MenuItem
	err := r.db.QueryRowContext(ctx,
		`SELECT id, food_truck_id, name, price_cents, is_available, created_at, updated_at
		 FROM menu_items WHERE id = ?`, id).
		Scan(&m.ID, &m.FoodTruckID, &m.Name, &m.PriceCents, &m.IsAvailable,
			&m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.MenuItem{}, ErrMenuItemNotFound
	}
	return m, err
}

// ListMenu returns a truck's menu items.
func (r *FoodTruckRepo) ListMenu(ctx context.Context, truckID uint64) ([]model.MenuItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, food_truck_id, name, price_cents, is_available, created_at, updated_at
		 FROM menu_items WHERE food_truck_id = ? ORDER BY name, id`, truckID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]model.MenuItem, 0)
	for rows.Next() {
		var m model.MenuItem
		if err := rows.Scan(&m.ID, &m.FoodTruckID, &m.Name, &m.PriceCents,
			&m.IsAvailable, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

// UpdateMenuItem rewrites the mutable columns of a menu item.
func (r *FoodTruckRepo) UpdateMenuItem(ctx context.Context, m *model.MenuItem) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE menu_items SET name=?, price_cents=?, is_available=? WHERE id=?`,
		m.Name, m.PriceCents, m.IsAvailable, m.ID)
	return err
}
