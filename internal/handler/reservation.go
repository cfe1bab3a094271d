package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/campusfest/festival/internal/model"
	"github.com/campusfest/festival/internal/queue"
	"github.com/campusfest/festival/internal/repository"
	"github.com/campusfest/festival/internal/service"
)

// ReservationHandler exposes the attendee-facing reservation endpoints.
type ReservationHandler struct {
	Engine *service.ReservationEngine
	Events *repository.EventRepo
}

// NewReservationHandler constructs a ReservationHandler.
func NewReservationHandler(engine *service.ReservationEngine, events *repository.EventRepo) *ReservationHandler {
	if engine == nil || events == nil {
		panic("nil dependency passed to NewReservationHandler")
	}
	return &ReservationHandler{Engine: engine, Events: events}
}

type createReservationReq struct {
	EventID    uint64  `json:"event_id"`
	TimeSlotID *uint64 `json:"time_slot_id"`
	PartySize  uint32  `json:"party_size"`
}

// Create handles POST /v1/reservations.
func (h *ReservationHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createReservationReq
	if err := c.Bind(&req); err != nil || req.EventID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "event_id is required"})
	}
	res, err := h.Engine.Create(c.Request().Context(), userID, req.EventID, req.TimeSlotID, req.PartySize)
	if err != nil {
		return respondDomainError(c, err)
	}
	publishReservationUpdate(c, h.Events, res)
	return c.JSON(http.StatusCreated, echo.Map{"item": toReservationResp(res)})
}

// ListMine handles GET /v1/my-reservations.
func (h *ReservationHandler) ListMine(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Engine.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load reservations"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": toReservationList(items)})
}

// Get handles GET /v1/reservations/:id.
func (h *ReservationHandler) Get(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	res, err := h.Engine.Get(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"item": toReservationResp(res)})
}

// Cancel handles DELETE /v1/reservations/:id.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	res, err := h.Engine.Cancel(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return respondDomainError(c, err)
	}
	publishReservationUpdate(c, h.Events, res)
	return c.JSON(http.StatusOK, echo.Map{"item": toReservationResp(res)})
}

// publishReservationUpdate emits a reservation fan-out message.  Broker
// errors are logged by the publisher and never fail the request.
func publishReservationUpdate(c echo.Context, events *repository.EventRepo, res model.Reservation) {
	title := ""
	if e, err := events.GetByID(c.Request().Context(), res.EventID); err == nil {
		title = e.Title
	}
	_ = queue.PublishReservationUpdated(c.Request().Context(), queue.ReservationUpdatedEvent{
		ReservationID: res.ID,
		UserID:        res.UserID,
		EventID:       res.EventID,
		EventTitle:    title,
		TimeSlotID:    res.TimeSlotID,
		PartySize:     res.PartySize,
		Status:        res.Status,
		OccurredAt:    time.Now().UTC().Format(time.RFC3339),
	})
}
