package handler // handler defines http handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/campusfest/festival/internal/model"
	"github.com/campusfest/festival/internal/repository"
	"github.com/campusfest/festival/internal/service"
)

// getUserID extracts the user_id from echo.Context and converts it to uint64.
// JWT numeric claims round-trip as float64, so several representations are
// accepted.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// getRole extracts the role claim stored by the JWT middleware.
func getRole(c echo.Context) string {
	if s, ok := c.Get("role").(string); ok {
		return s
	}
	return ""
}

// respondDomainError maps repository and service sentinels onto HTTP
// responses.  NotFound sentinels become 404, ownership and gating
// failures 403, state-machine conflicts 409, and the remaining request
// rejections 400.  Anything unrecognized is a 500 without leaking the
// underlying error.
func respondDomainError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, repository.ErrEventNotFound),
		errors.Is(err, repository.ErrTimeSlotNotFound),
		errors.Is(err, repository.ErrReservationNotFound),
		errors.Is(err, repository.ErrFoodTruckNotFound),
		errors.Is(err, repository.ErrMenuItemNotFound),
		errors.Is(err, repository.ErrOrderNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrForbidden),
		errors.Is(err, service.ErrStudentOnly):
		return c.JSON(http.StatusForbidden, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrConflict),
		errors.Is(err, service.ErrNotPending),
		errors.Is(err, service.ErrBadOrderTransition):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrReservationsDisabled),
		errors.Is(err, service.ErrFullyBooked),
		errors.Is(err, service.ErrSlotFullyBooked),
		errors.Is(err, service.ErrAlreadyReserved),
		errors.Is(err, service.ErrAlreadyCancelled),
		errors.Is(err, service.ErrCancelAfterCheckIn),
		errors.Is(err, service.ErrCheckInCancelled),
		errors.Is(err, service.ErrAlreadyCheckedIn),
		errors.Is(err, service.ErrSlotMismatch),
		errors.Is(err, service.ErrTruckClosed),
		errors.Is(err, service.ErrItemUnavailable),
		errors.Is(err, service.ErrEmptyOrder),
		errors.Is(err, service.ErrOrderNotPending):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
}

// reservationResp is the JSON shape returned for reservations.  The QR
// token is included so the client can render the code; internal columns
// stay internal.
type reservationResp struct {
	ID          string  `json:"id"`
	EventID     uint64  `json:"event_id"`
	TimeSlotID  *uint64 `json:"time_slot_id,omitempty"`
	PartySize   uint32  `json:"party_size"`
	Status      string  `json:"status"`
	QRCode      string  `json:"qr_code"`
	CheckedInAt *string `json:"checked_in_at,omitempty"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

func toReservationResp(r model.Reservation) reservationResp {
	out := reservationResp{
		ID:         r.ID,
		EventID:    r.EventID,
		TimeSlotID: r.TimeSlotID,
		PartySize:  r.PartySize,
		Status:     r.Status,
		QRCode:     r.QRCode,
		CreatedAt:  r.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:  r.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if r.CheckedInAt != nil {
		iso := r.CheckedInAt.UTC().Format(time.RFC3339)
		out.CheckedInAt = &iso
	}
	return out
}

func toReservationList(in []model.Reservation) []reservationResp {
	out := make([]reservationResp, 0, len(in))
	for _, r := range in {
		out = append(out, toReservationResp(r))
	}
	return out
}

// orderResp is the JSON shape returned for orders.
type orderResp struct {
	ID          string          `json:"id"`
	FoodTruckID uint64          `json:"food_truck_id"`
	Status      string          `json:"status"`
	TotalCents  uint32          `json:"total_cents"`
	CreatedAt   string          `json:"created_at"`
	Items       []orderItemResp `json:"items,omitempty"`
}

type orderItemResp struct {
	MenuItemID uint64 `json:"menu_item_id"`
	Quantity   uint32 `json:"quantity"`
	PriceCents uint32 `json:"price_cents"`
}

func toOrderResp(o model.Order, items []model.OrderItem) orderResp {
	out := orderResp{
		ID:          o.ID,
		FoodTruckID: o.FoodTruckID,
		Status:      o.Status,
		TotalCents:  o.TotalCents,
		CreatedAt:   o.CreatedAt.UTC().Format(time.RFC3339),
	}
	for _, it := range items {
		out.Items = append(out.Items, orderItemResp{
			MenuItemID: it.MenuItemID,
			Quantity:   it.Quantity,
			PriceCents: it.PriceCents,
		})
	}
	return out
}
