package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/campusfest/festival/internal/model"
	"github.com/campusfest/festival/internal/repository"
)

// EventHandler exposes event and time-slot management.  Vendors manage
// their own events, admins manage any.
type EventHandler struct {
	Events *repository.EventRepo
	Users  *repository.UserRepo
}

// NewEventHandler constructs an EventHandler.
func NewEventHandler(events *repository.EventRepo, users *repository.UserRepo) *EventHandler {
	if events == nil || users == nil {
		panic("nil repository passed to NewEventHandler")
	}
	return &EventHandler{Events: events, Users: users}
}

type eventReq struct {
	Title              string  `json:"title"`
	Description        string  `json:"description"`
	Location           string  `json:"location"`
	StartsAt           string  `json:"starts_at"`
	EndsAt             string  `json:"ends_at"`
	Capacity           *uint32 `json:"capacity"`
	IsStudentOnly      bool    `json:"is_student_only"`
	ReservationEnabled bool    `json:"reservation_enabled"`
	ReservationType    string  `json:"reservation_type"`
}

func (r eventReq) validate() (start, end time.Time, err error) {
	if r.Title == "" {
		return start, end, echo.NewHTTPError(http.StatusBadRequest, "title is required")
	}
	start, err = time.Parse(time.RFC3339, r.StartsAt)
	if err != nil {
		return start, end, echo.NewHTTPError(http.StatusBadRequest, "starts_at must be RFC3339")
	}
	end, err = time.Parse(time.RFC3339, r.EndsAt)
	if err != nil || !end.After(start) {
		return start, end, echo.NewHTTPError(http.StatusBadRequest, "ends_at must be RFC3339 and after starts_at")
	}
	switch r.ReservationType {
	case model.ReservationFirstCome, model.ReservationSelection:
	default:
		return start, end, echo.NewHTTPError(http.StatusBadRequest, "reservation_type must be FIRST_COME or SELECTION")
	}
	return start, end, nil
}

// Create handles POST /v1/events.  The event is owned by the calling
// vendor; admins may create on behalf of anyone via ?vendor_id=.
func (h *EventHandler) Create(c echo.Context) error {
	callerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req eventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	start, end, err := req.validate()
	if err != nil {
		return err
	}
	vendorID := callerID
	if getRole(c) == model.RoleAdmin {
		if raw := c.QueryParam("vendor_id"); raw != "" {
			if n, err := strconv.ParseUint(raw, 10, 64); err == nil && n > 0 {
				vendorID = n
			}
		}
	}
	e := model.Event{
		VendorID:           vendorID,
		Title:              req.Title,
		Description:        req.Description,
		Location:           req.Location,
		StartsAt:           start.UTC(),
		EndsAt:             end.UTC(),
		Capacity:           req.Capacity,
		IsStudentOnly:      req.IsStudentOnly,
		ReservationEnabled: req.ReservationEnabled,
		ReservationType:    req.ReservationType,
	}
	if err := h.Events.Create(c.Request().Context(), &e); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create event"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"item": toEventResp(e)})
}

// loadOwned fetches the event and verifies the caller owns it or is admin.
func (h *EventHandler) loadOwned(c echo.Context) (model.Event, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return model.Event{}, echo.NewHTTPError(http.StatusBadRequest, "invalid event id")
	}
	e, err := h.Events.GetByID(c.Request().Context(), id)
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

// Update handles PUT /v1/events/:id.
func (h *EventHandler) Update(c echo.Context) error {
	e, err := h.loadOwned(c)
	if err != nil {
		if he, ok := err.(*echo.HTTPError); ok {
			return he
		}
		return respondDomainError(c, err)
	}
	var req eventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	start, end, err := req.validate()
	if err != nil {
		return err
	}
	e.Title = req.Title
	e.Description = req.Description
	e.Location = req.Location
	e.StartsAt = start.UTC()
	e.EndsAt = end.UTC()
	e.Capacity = req.Capacity
	e.IsStudentOnly = req.IsStudentOnly
	e.ReservationEnabled = req.ReservationEnabled
	e.ReservationType = req.ReservationType
	if err := h.Events.Update(c.Request().Context(), &e); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update event"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": toEventResp(e)})
}

// Delete handles DELETE /v1/events/:id.  Deletion is refused while the
// event still has active reservations.
func (h *EventHandler) Delete(c echo.Context) error {
	e, err := h.loadOwned(c)
	if err != nil {
		if he, ok := err.(*echo.HTTPError); ok {
			return he
		}
		return respondDomainError(c, err)
	}
	if err := h.Events.Delete(c.Request().Context(), e.ID); err != nil {
		return respondDomainError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type slotReq struct {
	StartsAt string  `json:"starts_at"`
	EndsAt   string  `json:"ends_at"`
	Capacity *uint32 `json:"capacity"`
}

// CreateSlot handles POST /v1/events/:id/slots.
func (h *EventHandler) CreateSlot(c echo.Context) error {
	e, err := h.loadOwned(c)
	if err != nil {
		if he, ok := err.(*echo.HTTPError); ok {
			return he
		}
		return respondDomainError(c, err)
	}
	var req slotReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	start, err := time.Parse(time.RFC3339, req.StartsAt)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "starts_at must be RFC3339"})
	}
	end, err := time.Parse(time.RFC3339, req.EndsAt)
	if err != nil || !end.After(start) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ends_at must be RFC3339 and after starts_at"})
	}
	s := model.TimeSlot{
		EventID:  e.ID,
		StartsAt: start.UTC(),
		EndsAt:   end.UTC(),
		Capacity: req.Capacity,
	}
	if err := h.Events.CreateSlot(c.Request().Context(), &s); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create slot"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"item": slotResp{
		ID:       s.ID,
		EventID:  s.EventID,
		StartsAt: s.StartsAt.UTC().Format(time.RFC3339),
		EndsAt:   s.EndsAt.UTC().Format(time.RFC3339),
		Capacity: s.Capacity,
	}})
}

type verifyStudentReq struct {
	Verified bool `json:"verified"`
}

// VerifyStudent handles POST /v1/users/:id/verify-student.  Admin only,
// enforced at the router.
func (h *EventHandler) VerifyStudent(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	req := verifyStudentReq{Verified: true}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	ctx := c.Request().Context()
	if _, err := h.Users.GetByID(ctx, id); err != nil {
		return respondDomainError(c, err)
	}
	if err := h.Users.SetStudentVerified(ctx, id, req.Verified); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update user"})
	}
	return c.JSON(http.StatusOK, echo.Map{"user_id": id, "student_verified": req.Verified})
}
