// This file defines the public browsing API: unauthenticated users can
// search restaurants, view a single restaurant and check slot
// availability for a date. Owner IDs and other private fields are
// filtered from responses.

package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-reservation/internal/booking"
	"github.com/iliyamo/restaurant-table-reservation/internal/model"
	"github.com/iliyamo/restaurant-table-reservation/internal/repository"
)

// PublicHandler aggregates what the unauthenticated browse routes need.
type PublicHandler struct {
	Restaurants *repository.RestaurantRepo
	Booking     *booking.Service
}

func NewPublicHandler(r *repository.RestaurantRepo, b *booking.Service) *PublicHandler {
	if r == nil || b == nil {
		panic("nil dependency passed to NewPublicHandler")
	}
	return &PublicHandler{Restaurants: r, Booking: b}
}

// PublicRestaurant is a restaurant as exposed to anonymous browsers.
type PublicRestaurant struct {
	ID           uint64  `json:"id"`
	Name         string  `json:"name"`
	Cuisine      string  `json:"cuisine"`
	Description  string  `json:"description,omitempty"`
	Image        string  `json:"image,omitempty"`
	Rating       float64 `json:"rating"`
	TotalSeats   uint32  `json:"total_seats"`
	Location     string  `json:"location,omitempty"`
	Address      string  `json:"address,omitempty"`
	City         string  `json:"city,omitempty"`
	OpeningTime  string  `json:"opening_time"`
	ClosingTime  string  `json:"closing_time"`
	PricePerSeat float64 `json:"price_per_seat"`
}

func toPublic(r model.Restaurant) PublicRestaurant {
	return PublicRestaurant{
		ID:           r.ID,
		Name:         r.Name,
		Cuisine:      r.Cuisine,
		Description:  r.Description,
		Image:        r.Image,
		Rating:       r.Rating,
		TotalSeats:   r.TotalSeats,
		Location:     r.Location,
		Address:      r.Address,
		City:         r.City,
		OpeningTime:  r.OpeningTime,
		ClosingTime:  r.ClosingTime,
		PricePerSeat: r.PricePerSeat,
	}
}

// ListRestaurants handles GET /v1/restaurants with optional q, cuisine
// and city filters. Results are ordered by rating.
func (h *PublicHandler) ListRestaurants(c echo.Context) error {
	ctx := c.Request().Context()
	filter := repository.SearchFilter{
		Query:   c.QueryParam("q"),
		Cuisine: c.QueryParam("cuisine"),
		City:    c.QueryParam("city"),
	}
	restaurants, err := h.Restaurants.Search(ctx, filter)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]PublicRestaurant, 0, len(restaurants))
	for _, r := range restaurants {
		out = append(out, toPublic(r))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// ListFeatured handles GET /v1/restaurants/featured: the top-rated
// restaurants, six unless ?limit= says otherwise.
func (h *PublicHandler) ListFeatured(c echo.Context) error {
	ctx := c.Request().Context()
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	restaurants, err := h.Restaurants.ListFeatured(ctx, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]PublicRestaurant, 0, len(restaurants))
	for _, r := range restaurants {
		out = append(out, toPublic(r))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// GetRestaurant handles GET /v1/restaurants/:id. The detail view also
// carries the number of active reservations as a popularity signal.
func (h *PublicHandler) GetRestaurant(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	r, err := h.Restaurants.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRestaurantNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "restaurant not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	count, err := h.Restaurants.ReservationCount(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"restaurant":          toPublic(*r),
		"active_reservations": count,
	})
}

// GetAvailability handles GET /v1/restaurants/:id/availability?date=.
// Every slot of the day is returned with its remaining seats, full
// slots included with zero.
func (h *PublicHandler) GetAvailability(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	date := c.QueryParam("date")
	if date == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date is required"})
	}
	slots, err := h.Booking.ListAvailability(c.Request().Context(), id, date)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"restaurant_id": id,
		"date":          date,
		"slots":         slots,
	})
}
