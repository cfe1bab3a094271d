package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/campusfest/festival/internal/model"
	"github.com/campusfest/festival/internal/repository"
	"github.com/campusfest/festival/internal/service"
	"github.com/campusfest/festival/internal/utils"
)

// OperatorHandler exposes the event-operator endpoints: attendee lists,
// gate check-in and pending-reservation decisions.  Vendors act on their
// own events, admins on any event.
type OperatorHandler struct {
	Engine       *service.ReservationEngine
	Events       *repository.EventRepo
	Reservations *repository.ReservationRepo
	QR           *utils.QRTokenEncoder
}

// NewOperatorHandler constructs an OperatorHandler.
func NewOperatorHandler(engine *service.ReservationEngine, events *repository.EventRepo, reservations *repository.ReservationRepo, qr *utils.QRTokenEncoder) *OperatorHandler {
	if engine == nil || events == nil || reservations == nil || qr == nil {
		panic("nil dependency passed to NewOperatorHandler")
	}
	return &OperatorHandler{Engine: engine, Events: events, Reservations: reservations, QR: qr}
}

// authorizeEvent loads the event and verifies the caller may operate it.
func (h *OperatorHandler) authorizeEvent(c echo.Context, eventID uint64) (model.Event, error) {
	e, err := h.Events.GetByID(c.Request().Context(), eventID)
	if err != nil {
		return model.Event{}, err
	}
	if getRole(c) == model.RoleAdmin {
		return e, nil
	}
	callerID, err := getUserID(c)
	if err != nil || e.VendorID != callerID {
		return model.Event{}, repository.ErrForbidden
	}
	return e, nil
}

// ListByEvent handles GET /v1/events/:id/reservations.  An optional
// comma-separated ?status= filter narrows the list.
func (h *OperatorHandler) ListByEvent(c echo.Context) error {
	eventID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || eventID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	if _, err := h.authorizeEvent(c, eventID); err != nil {
		return respondDomainError(c, err)
	}
	var statusIn []string
	if raw := c.QueryParam("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				statusIn = append(statusIn, strings.ToUpper(s))
			}
		}
	}
	items, err := h.Engine.ListByEvent(c.Request().Context(), eventID, statusIn)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": toReservationList(items)})
}

type checkInReq struct {
	Token string `json:"token"`
}

// CheckIn handles POST /v1/checkin.  The scanned QR payload is verified
// before the reservation it names is transitioned.
func (h *OperatorHandler) CheckIn(c echo.Context) error {
	var req checkInReq
	if err := c.Bind(&req); err != nil || req.Token == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token is required"})
	}
	payload, err := h.QR.Decode(req.Token)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid check-in token"})
	}
	if _, err := h.authorizeEvent(c, payload.EventID); err != nil {
		return respondDomainError(c, err)
	}
	res, err := h.Engine.CheckIn(c.Request().Context(), payload.ReservationID)
	if err != nil {
		return respondDomainError(c, err)
	}
	publishReservationUpdate(c, h.Events, res)
	return c.JSON(http.StatusOK, echo.Map{"item": toReservationResp(res)})
}

// Approve handles POST /v1/reservations/:id/approve.
func (h *OperatorHandler) Approve(c echo.Context) error {
	return h.decide(c, h.Engine.Approve)
}

// Reject handles POST /v1/reservations/:id/reject.
func (h *OperatorHandler) Reject(c echo.Context) error {
	return h.decide(c, h.Engine.Reject)
}

func (h *OperatorHandler) decide(c echo.Context, apply func(ctx context.Context, reservationID string) (model.Reservation, error)) error {
	ctx := c.Request().Context()
	current, err := h.Reservations.GetByID(ctx, c.Param("id"))
	if err != nil {
		return respondDomainError(c, err)
	}
	if _, err := h.authorizeEvent(c, current.EventID); err != nil {
		return respondDomainError(c, err)
	}
	res, err := apply(ctx, current.ID)
	if err != nil {
		return respondDomainError(c, err)
	}
	publishReservationUpdate(c, h.Events, res)
	return c.JSON(http.StatusOK, echo.Map{"item": toReservationResp(res)})
}
