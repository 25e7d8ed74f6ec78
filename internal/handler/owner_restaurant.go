package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-reservation/internal/booking"
	"github.com/iliyamo/restaurant-table-reservation/internal/model"
	"github.com/iliyamo/restaurant-table-reservation/internal/repository"
	"github.com/iliyamo/restaurant-table-reservation/internal/timeslot"
)

// OwnerHandler serves the restaurant management endpoints. Every route
// is gated on the OWNER role and every repository call is scoped to the
// authenticated owner, so one owner can never touch another's rows.
type OwnerHandler struct {
	Restaurants  *repository.RestaurantRepo
	Reservations *repository.ReservationRepo
	Booking      *booking.Service
}

func NewOwnerHandler(rest *repository.RestaurantRepo, res *repository.ReservationRepo, b *booking.Service) *OwnerHandler {
	if rest == nil || res == nil || b == nil {
		panic("nil dependency passed to NewOwnerHandler")
	}
	return &OwnerHandler{Restaurants: rest, Reservations: res, Booking: b}
}

type restaurantReq struct {
	Name         string  `json:"name"`
	Cuisine      string  `json:"cuisine"`
	Description  string  `json:"description"`
	Image        string  `json:"image"`
	Rating       float64 `json:"rating"`
	TotalSeats   uint32  `json:"total_seats"`
	Location     string  `json:"location"`
	Address      string  `json:"address"`
	City         string  `json:"city"`
	OpeningTime  string  `json:"opening_time"`
	ClosingTime  string  `json:"closing_time"`
	PricePerSeat float64 `json:"price_per_seat"`
}

func (req *restaurantReq) validate() error {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return errors.New("name is required")
	}
	if req.TotalSeats == 0 {
		return errors.New("total_seats must be positive")
	}
	if req.PricePerSeat < 0 {
		return errors.New("price_per_seat must not be negative")
	}
	if req.Rating < 0 || req.Rating > 5 {
		return errors.New("rating must be between 0 and 5")
	}
	if _, err := timeslot.ParseClock(req.OpeningTime); err != nil {
		return errors.New("opening_time must be HH:MM")
	}
	if _, err := timeslot.ParseClock(req.ClosingTime); err != nil {
		return errors.New("closing_time must be HH:MM")
	}
	return nil
}

func (req *restaurantReq) toModel(ownerID uint64) model.Restaurant {
	return model.Restaurant{
		OwnerID:      ownerID,
		Name:         req.Name,
		Cuisine:      req.Cuisine,
		Description:  req.Description,
		Image:        req.Image,
		Rating:       req.Rating,
		TotalSeats:   req.TotalSeats,
		Location:     req.Location,
		Address:      req.Address,
		City:         req.City,
		OpeningTime:  req.OpeningTime,
		ClosingTime:  req.ClosingTime,
		PricePerSeat: req.PricePerSeat,
	}
}

// Create handles POST /v1/my-restaurants.
func (h *OwnerHandler) Create(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req restaurantReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := req.validate(); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	rest := req.toModel(ownerID)
	if err := h.Restaurants.Create(c.Request().Context(), &rest); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create restaurant failed"})
	}
	return c.JSON(http.StatusCreated, rest)
}

// ListMine handles GET /v1/my-restaurants.
func (h *OwnerHandler) ListMine(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Restaurants.ListByOwner(c.Request().Context(), ownerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetMine handles GET /v1/my-restaurants/:id.
func (h *OwnerHandler) GetMine(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	rest, err := h.Restaurants.GetByIDAndOwner(c.Request().Context(), id, ownerID)
	if err != nil {
		return ownerRepoError(c, err)
	}
	return c.JSON(http.StatusOK, rest)
}

// Update handles PUT /v1/my-restaurants/:id. The whole document is
// replaced; shrinking total_seats is allowed and existing reservations
// keep their seats, future admissions just see less room.
func (h *OwnerHandler) Update(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req restaurantReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := req.validate(); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	rest := req.toModel(ownerID)
	rest.ID = id
	if err := h.Restaurants.Update(c.Request().Context(), ownerID, &rest); err != nil {
		return ownerRepoError(c, err)
	}
	return c.JSON(http.StatusOK, rest)
}

// Delete handles DELETE /v1/my-restaurants/:id. A restaurant with
// reservations on file cannot be removed; history stays intact.
func (h *OwnerHandler) Delete(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Restaurants.Delete(c.Request().Context(), id, ownerID); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "restaurant has reservations"})
		}
		return ownerRepoError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListReservations handles GET /v1/my-restaurants/:id/reservations.
func (h *OwnerHandler) ListReservations(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	items, err := h.Reservations.ListByRestaurantForOwner(c.Request().Context(), id, ownerID)
	if err != nil {
		return ownerRepoError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// CancelReservation handles DELETE /v1/my-restaurants/reservations/:id.
// The owner may cancel any reservation at one of their restaurants; the
// authorization check runs inside the same transaction as the update.
func (h *OwnerHandler) CancelReservation(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Booking.Cancel(c.Request().Context(), id, ownerID); err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "cancelled"})
}

// ownerRepoError maps repository sentinels for owner-scoped reads.
func ownerRepoError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrRestaurantNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "restaurant not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
}
