package router

import (
	"github.com/labstack/echo/v4"

	"github.com/campusfest/festival/internal/handler"
	"github.com/campusfest/festival/internal/middleware"
	"github.com/campusfest/festival/internal/model"
)

// RegisterVendor registers the operator surface: event and time-slot
// management, the gate (check-in and pending-reservation decisions), food
// truck and menu management, and the order preparation queue.  Admins pass
// every ownership check, so they share this group.
func RegisterVendor(e *echo.Echo, ev *handler.EventHandler, op *handler.OperatorHandler, ft *handler.FoodTruckHandler, oh *handler.OrderHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleVendor, model.RoleAdmin),
	)

	g.POST("/events", ev.Create)
	g.PUT("/events/:id", ev.Update)
	g.PATCH("/events/:id", ev.Update)
	g.DELETE("/events/:id", ev.Delete)
	g.POST("/events/:id/slots", ev.CreateSlot)

	// Gate operations.  Check-in takes the scanned QR token in the body;
	// approve and reject act on pending selection-mode reservations.
	g.GET("/events/:id/reservations", op.ListByEvent)
	g.POST("/checkin", op.CheckIn)
	g.POST("/reservations/:id/approve", op.Approve)
	g.POST("/reservations/:id/reject", op.Reject)

	g.POST("/foodtrucks", ft.Create)
	g.GET("/my-foodtrucks", ft.ListMine)
	g.PUT("/foodtrucks/:id", ft.Update)
	g.PATCH("/foodtrucks/:id", ft.Update)
	g.POST("/foodtrucks/:id/menu", ft.CreateMenuItem)
	g.PUT("/foodtrucks/:id/menu/:itemID", ft.UpdateMenuItem)

	g.GET("/foodtrucks/:id/orders", oh.ListForTruck)
	g.POST("/orders/:id/status", oh.Advance)
}

// RegisterAdmin registers admin-only endpoints.
func RegisterAdmin(e *echo.Echo, ev *handler.EventHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)

	g.POST("/users/:id/verify-student", ev.VerifyStudent)
}
