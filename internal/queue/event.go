// Package queue defines message payloads exchanged over the message broker
// plus the publisher and the background consumer that fan state changes out
// to interested parties.
package queue

// Queue names used on the default exchange.  Routing key equals queue name.
const (
    ReservationQueueName = "reservation.updated"
    OrderQueueName       = "order.updated"
)

// ReservationUpdatedEvent is published after every successful reservation
// state transition, including creation.  It carries enough information for
// downstream consumers to log, notify or trigger analytics without querying
// the primary database.
type ReservationUpdatedEvent struct {
    ReservationID string  `json:"reservation_id"`
    UserID        uint64  `json:"user_id"`
    EventID       uint64  `json:"event_id"`
    EventTitle    string  `json:"event_title"`
    TimeSlotID    *uint64 `json:"time_slot_id,omitempty"`
    PartySize     uint32  `json:"party_size"`
    Status        string  `json:"status"`
    OccurredAt    string  `json:"occurred_at"`
}

// OrderUpdatedEvent is published after every successful order state
// transition, including creation.
type OrderUpdatedEvent struct {
    OrderID     string `json:"order_id"`
    UserID      uint64 `json:"user_id"`
    FoodTruckID uint64 `json:"food_truck_id"`
    TruckName   string `json:"truck_name"`
    Status      string `json:"status"`
    TotalCents  uint32 `json:"total_cents"`
    OccurredAt  string `json:"occurred_at"`
}
