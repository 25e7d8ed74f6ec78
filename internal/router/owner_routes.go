package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-reservation/internal/handler"
	"github.com/iliyamo/restaurant-table-reservation/internal/middleware"
	"github.com/iliyamo/restaurant-table-reservation/internal/model"
)

// RegisterOwner registers the restaurant management endpoints under
// /v1/my-restaurants. All routes require the OWNER role; ownership of
// the individual restaurant is checked per query in the repository.
func RegisterOwner(e *echo.Echo, h *handler.OwnerHandler, jwtSecret string) {
	g := e.Group(
		"/v1/my-restaurants",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleOwner),
	)
	g.POST("", h.Create)
	g.GET("", h.ListMine)
	g.GET("/:id", h.GetMine)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	g.GET("/:id/reservations", h.ListReservations)
	g.DELETE("/reservations/:id", h.CancelReservation)
}
