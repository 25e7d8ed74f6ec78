package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-reservation/internal/handler"
	"github.com/iliyamo/restaurant-table-reservation/internal/middleware"
	"github.com/iliyamo/restaurant-table-reservation/internal/model"
)

// RegisterCustomer registers the reservation endpoints. All routes
// require a valid JWT with the CUSTOMER role; the service enforces the
// role again so the policy holds even if a route is ever rewired.
func RegisterCustomer(e *echo.Echo, h *handler.CustomerHandler, jwtSecret string, mws ...echo.MiddlewareFunc) {
	g := e.Group(
		"/v1/reservations",
		append([]echo.MiddlewareFunc{
			middleware.JWTAuth(jwtSecret),
			middleware.RequireRole(model.RoleCustomer),
		}, mws...)...,
	)
	g.POST("", h.Create)
	g.GET("/my", h.ListMy)
	g.GET("/:id", h.Get)
	g.DELETE("/:id", h.Cancel)
}
