package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/campusfest/festival/internal/model"
	"github.com/campusfest/festival/internal/queue"
	"github.com/campusfest/festival/internal/repository"
	"github.com/campusfest/festival/internal/service"
)

// OrderHandler exposes the food ordering endpoints for attendees and the
// queue-management endpoints for vendors.
type OrderHandler struct {
	Orders *service.OrderService
	Trucks *repository.FoodTruckRepo
}

// NewOrderHandler constructs an OrderHandler.
func NewOrderHandler(orders *service.OrderService, trucks *repository.FoodTruckRepo) *OrderHandler {
	if orders == nil || trucks == nil {
		panic("nil dependency passed to NewOrderHandler")
	}
	return &OrderHandler{Orders: orders, Trucks: trucks}
}

type orderLineReq struct {
	MenuItemID uint64 `json:"menu_item_id"`
	Quantity   uint32 `json:"quantity"`
}

type createOrderReq struct {
	FoodTruckID uint64         `json:"food_truck_id"`
	Items       []orderLineReq `json:"items"`
}

// Create handles POST /v1/orders.
func (h *OrderHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createOrderReq
	if err := c.Bind(&req); err != nil || req.FoodTruckID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "food_truck_id is required"})
	}
	lines := make([]service.OrderLine, 0, len(req.Items))
	for _, l := range req.Items {
		lines = append(lines, service.OrderLine{MenuItemID: l.MenuItemID, Quantity: l.Quantity})
	}
	o, items, err := h.Orders.Create(c.Request().Context(), userID, req.FoodTruckID, lines)
	if err != nil {
		return respondDomainError(c, err)
	}
	h.publishUpdate(c, o)
	return c.JSON(http.StatusCreated, echo.Map{"item": toOrderResp(o, items)})
}

// ListMine handles GET /v1/my-orders.
func (h *OrderHandler) ListMine(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	orders, err := h.Orders.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load orders"})
	}
	items := make([]orderResp, 0, len(orders))
	for _, o := range orders {
		items = append(items, toOrderResp(o, nil))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Get handles GET /v1/orders/:id.
func (h *OrderHandler) Get(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	o, items, err := h.Orders.Get(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"item": toOrderResp(o, items)})
}

// Cancel handles DELETE /v1/orders/:id.  Only pending orders may be
// cancelled by the buyer.
func (h *OrderHandler) Cancel(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	o, err := h.Orders.Cancel(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return respondDomainError(c, err)
	}
	h.publishUpdate(c, o)
	return c.JSON(http.StatusOK, echo.Map{"item": toOrderResp(o, nil)})
}

type advanceOrderReq struct {
	Status string `json:"status"`
}

// Advance handles POST /v1/orders/:id/status.  Vendors move their own
// orders one step forward through the preparation pipeline.
func (h *OrderHandler) Advance(c echo.Context) error {
	vendorID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req advanceOrderReq
	if err := c.Bind(&req); err != nil || req.Status == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status is required"})
	}
	o, err := h.Orders.Advance(c.Request().Context(), vendorID, c.Param("id"), strings.ToUpper(req.Status))
	if err != nil {
		return respondDomainError(c, err)
	}
	h.publishUpdate(c, o)
	return c.JSON(http.StatusOK, echo.Map{"item": toOrderResp(o, nil)})
}

// ListForTruck handles GET /v1/foodtrucks/:id/orders, the vendor's
// preparation queue in arrival order.
func (h *OrderHandler) ListForTruck(c echo.Context) error {
	vendorID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	truckID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || truckID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid food truck id"})
	}
	orders, err := h.Orders.ListByTruck(c.Request().Context(), vendorID, truckID)
	if err != nil {
		return respondDomainError(c, err)
	}
	items := make([]orderResp, 0, len(orders))
	for _, o := range orders {
		items = append(items, toOrderResp(o, nil))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// publishUpdate emits an order fan-out message.  Broker errors are logged
// by the publisher and never fail the request.
func (h *OrderHandler) publishUpdate(c echo.Context, o model.Order) {
	name := ""
	if t, err := h.Trucks.GetByID(c.Request().Context(), o.FoodTruckID); err == nil {
		name = t.Name
	}
	_ = queue.PublishOrderUpdated(c.Request().Context(), queue.OrderUpdatedEvent{
		OrderID:     o.ID,
		UserID:      o.UserID,
		FoodTruckID: o.FoodTruckID,
		TruckName:   name,
		Status:      o.Status,
		TotalCents:  o.TotalCents,
		OccurredAt:  time.Now().UTC().Format(time.RFC3339),
	})
}
