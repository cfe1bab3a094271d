package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/campusfest/festival/internal/handler"
	"github.com/campusfest/festival/internal/middleware"
	"github.com/campusfest/festival/internal/model"
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check used by
// load balancers and monitoring.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes.  Unauthenticated
// operations live under /v1/auth, while /v1/me requires a valid access
// token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Refresh rotates the refresh token: the presented token is revoked and
	// a fresh pair is issued.
	g.POST("/refresh", a.Refresh)
	// Logout accepts the refresh token in the body and revokes it, so it
	// does not require an access token.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
}

// RegisterPublic registers the unauthenticated browse endpoints.  These
// return sanitized data for guests and sit behind the Redis response cache
// when one is supplied.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, mws ...echo.MiddlewareFunc) {
	g := e.Group("/v1", mws...)
	g.GET("/events", p.ListEvents)
	g.GET("/events/:id", p.GetEvent)
	g.GET("/events/:id/slots", p.ListEventSlots)
	g.GET("/foodtrucks", p.ListFoodTrucks)
	g.GET("/foodtrucks/:id/menu", p.GetFoodTruckMenu)
}

// RegisterAttendee registers the endpoints any authenticated festival-goer
// uses: reservations and food orders.  Vendors and admins attend the
// festival too, so all roles are accepted here.
func RegisterAttendee(e *echo.Echo, r *handler.ReservationHandler, o *handler.OrderHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleUser, model.RoleVendor, model.RoleAdmin),
	)

	g.POST("/reservations", r.Create)
	g.GET("/my-reservations", r.ListMine)
	g.GET("/reservations/:id", r.Get)
	g.DELETE("/reservations/:id", r.Cancel)

	g.POST("/orders", o.Create)
	g.GET("/my-orders", o.ListMine)
	g.GET("/orders/:id", o.Get)
	g.DELETE("/orders/:id", o.Cancel)
}
