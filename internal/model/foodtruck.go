package model

import "time"

// FoodTruck represents a vendor stand taking food orders, as stored in
// the `food_trucks` table.
//
// Fields:
//  ID          – primary key identifier.
//  VendorID    – user who operates the truck.
//  Name        – display name.
//  Description – free-form description.
//  Location    – pitch location on the festival grounds.
//  IsOpen      – whether the truck currently accepts orders.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type FoodTruck struct {
    ID          uint64    // food_trucks.id
    VendorID    uint64    // food_trucks.vendor_id
    Name        string    // food_trucks.name
    Description string    // food_trucks.description
    Location    string    // food_trucks.location
    IsOpen      bool      // food_trucks.is_open
    CreatedAt   time.Time // food_trucks.created_at
    UpdatedAt   time.Time // food_trucks.updated_at
}

// MenuItem is a single orderable item on a truck's menu.  Prices are
// stored in cents to avoid floating point.
//
// Fields:
//  ID          – primary key identifier.
//  FoodTruckID – owning truck.
//  Name        – item name.
//  PriceCents  – unit price in cents.
//  IsAvailable – whether the item can currently be ordered.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type MenuItem struct {
    ID          uint64    // menu_items.id
    FoodTruckID uint64    // menu_items.food_truck_id
    Name        string    // menu_items.name
    PriceCents  uint32    // menu_items.price_cents
    IsAvailable bool      // menu_items.is_available
    CreatedAt   time.Time // menu_items.created_at
    UpdatedAt   time.Time // menu_items.updated_at
}
