package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/campusfest/festival/internal/model"
	"github.com/campusfest/festival/internal/repository"
)

// PublicHandler exposes unauthenticated browse endpoints returning
// sanitized data for events, time slots, food trucks and menus.  These
// sit behind the response cache.
type PublicHandler struct {
	Events *repository.EventRepo
	Trucks *repository.FoodTruckRepo
}

// NewPublicHandler constructs a PublicHandler; repositories must be non-nil.
func NewPublicHandler(events *repository.EventRepo, trucks *repository.FoodTruckRepo) *PublicHandler {
	if events == nil || trucks == nil {
		panic("nil repository passed to NewPublicHandler")
	}
	return &PublicHandler{Events: events, Trucks: trucks}
}

// eventResp is the public JSON shape of an event.  VendorID stays private.
type eventResp struct {
	ID                 uint64  `json:"id"`
	Title              string  `json:"title"`
	Description        string  `json:"description"`
	Location           string  `json:"location"`
	StartsAt           string  `json:"starts_at"`
	EndsAt             string  `json:"ends_at"`
	Capacity           *uint32 `json:"capacity,omitempty"`
	IsStudentOnly      bool    `json:"is_student_only"`
	ReservationEnabled bool    `json:"reservation_enabled"`
	ReservationType    string  `json:"reservation_type"`
}

func toEventResp(e model.Event) eventResp {
	return eventResp{
		ID:                 e.ID,
		Title:              e.Title,
		Description:        e.Description,
		Location:           e.Location,
		StartsAt:           e.StartsAt.UTC().Format(time.RFC3339),
		EndsAt:             e.EndsAt.UTC().Format(time.RFC3339),
		Capacity:           e.Capacity,
		IsStudentOnly:      e.IsStudentOnly,
		ReservationEnabled: e.ReservationEnabled,
		ReservationType:    e.ReservationType,
	}
}

type slotResp struct {
	ID       uint64  `json:"id"`
	EventID  uint64  `json:"event_id"`
	StartsAt string  `json:"starts_at"`
	EndsAt   string  `json:"ends_at"`
	Capacity *uint32 `json:"capacity,omitempty"`
}

type truckResp struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Location    string `json:"location"`
	IsOpen      bool   `json:"is_open"`
}

type menuItemResp struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	PriceCents  uint32 `json:"price_cents"`
	IsAvailable bool   `json:"is_available"`
}

// ListEvents handles GET /v1/events.
func (h *PublicHandler) ListEvents(c echo.Context) error {
	events, err := h.Events.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load events"})
	}
	items := make([]eventResp, 0, len(events))
	for _, e := range events {
		items = append(items, toEventResp(e))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetEvent handles GET /v1/events/:id.
func (h *PublicHandler) GetEvent(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	e, err := h.Events.GetByID(c.Request().Context(), id)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"item": toEventResp(e)})
}

// ListEventSlots handles GET /v1/events/:id/slots.
func (h *PublicHandler) ListEventSlots(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	ctx := c.Request().Context()
	if _, err := h.Events.GetByID(ctx, id); err != nil {
		return respondDomainError(c, err)
	}
	slots, err := h.Events.ListSlotsByEvent(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load slots"})
	}
	items := make([]slotResp, 0, len(slots))
	for _, s := range slots {
		items = append(items, slotResp{
			ID:       s.ID,
			EventID:  s.EventID,
			StartsAt: s.StartsAt.UTC().Format(time.RFC3339),
			EndsAt:   s.EndsAt.UTC().Format(time.RFC3339),
			Capacity: s.Capacity,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// ListFoodTrucks handles GET /v1/foodtrucks.
func (h *PublicHandler) ListFoodTrucks(c echo.Context) error {
	trucks, err := h.Trucks.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load food trucks"})
	}
	items := make([]truckResp, 0, len(trucks))
	for _, t := range trucks {
		items = append(items, truckResp{
			ID: t.ID, Name: t.Name, Description: t.Description,
			Location: t.Location, IsOpen: t.IsOpen,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetFoodTruckMenu handles GET /v1/foodtrucks/:id/menu.
func (h *PublicHandler) GetFoodTruckMenu(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid food truck id"})
	}
	ctx := c.Request().Context()
	if _, err := h.Trucks.GetByID(ctx, id); err != nil {
		return respondDomainError(c, err)
	}
	menu, err := h.Trucks.ListMenu(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load menu"})
	}
	items := make([]menuItemResp, 0, len(menu))
	for _, m := range menu {
		items = append(items, menuItemResp{
			ID: m.ID, Name: m.Name, PriceCents: m.PriceCents, IsAvailable: m.IsAvailable,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
