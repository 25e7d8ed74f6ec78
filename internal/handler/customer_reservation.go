package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-reservation/internal/booking"
	"github.com/iliyamo/restaurant-table-reservation/internal/model"
	"github.com/iliyamo/restaurant-table-reservation/internal/queue"
	"github.com/iliyamo/restaurant-table-reservation/internal/repository"
	queue_publisher "github.com/iliyamo/restaurant-table-reservation/internal/service"
	"github.com/iliyamo/restaurant-table-reservation/internal/timeslot"
)

// CustomerHandler serves the reservation endpoints for customers. The
// JWT and role middleware run first; methods still return 401 when the
// user ID cannot be read from the context.
type CustomerHandler struct {
	Booking      *booking.Service
	Reservations *repository.ReservationRepo
	Restaurants  *repository.RestaurantRepo
}

func NewCustomerHandler(b *booking.Service, res *repository.ReservationRepo, rest *repository.RestaurantRepo) *CustomerHandler {
	if b == nil || res == nil || rest == nil {
		panic("nil dependency passed to NewCustomerHandler")
	}
	return &CustomerHandler{Booking: b, Reservations: res, Restaurants: rest}
}

type createReservationReq struct {
	RestaurantID uint64 `json:"restaurant_id"`
	Date         string `json:"date"`
	TimeSlot     int    `json:"time_slot"`
	PartySize    int    `json:"party_size"`
}

// Create handles POST /v1/reservations. On success a booked event is
// published in the background; a broker outage never fails the booking.
func (h *CustomerHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.RestaurantID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "restaurant_id is required"})
	}

	res, err := h.Booking.Admit(c.Request().Context(), booking.AdmitRequest{
		RestaurantID: req.RestaurantID,
		Date:         req.Date,
		TimeSlot:     req.TimeSlot,
		PartySize:    req.PartySize,
		UserID:       userID,
		Role:         getRole(c),
	})
	if err != nil {
		return bookingError(c, err)
	}

	go h.publishBooked(*res)

	return c.JSON(http.StatusCreated, res)
}

func (h *CustomerHandler) publishBooked(res model.Reservation) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	name := ""
	if rest, err := h.Restaurants.GetByID(ctx, res.RestaurantID); err == nil {
		name = rest.Name
	}
	display := timeslot.Slot{StartMinutes: res.TimeSlot * 60}.Label()

	_ = queue_publisher.PublishReservationBooked(ctx, queue.ReservationBookedEvent{
		ReservationID:  res.ID,
		RestaurantID:   res.RestaurantID,
		RestaurantName: name,
		UserID:         res.UserID,
		CustomerName:   res.CustomerName,
		Date:           res.Date,
		TimeSlot:       res.TimeSlot,
		DisplayTime:    display,
		PartySize:      res.PartySize,
		TotalPrice:     res.TotalPrice,
		BookedAt:       time.Now().UTC().Format(time.RFC3339),
	})
}

// ListMy handles GET /v1/reservations/my: every reservation of the
// authenticated customer partitioned into upcoming (ACTIVE, today or
// later) and past (dated in the past, or cancelled).
func (h *CustomerHandler) ListMy(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Reservations.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	now := time.Now()
	upcoming := make([]repository.ReservationDetail, 0, len(items))
	past := make([]repository.ReservationDetail, 0)
	for _, item := range items {
		day, err := timeslot.ParseDate(item.Date)
		if item.Status == model.ReservationActive && err == nil && !timeslot.IsPast(day, now) {
			upcoming = append(upcoming, item)
		} else {
			past = append(past, item)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"upcoming": upcoming, "past": past})
}

// Get handles GET /v1/reservations/:id. Customers only ever see their
// own reservations; someone else's ID is a 403, not a 404.
func (h *CustomerHandler) Get(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	item, err := h.Reservations.GetByIDForUser(c.Request().Context(), id, userID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows), errors.Is(err, repository.ErrReservationNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, item)
}

// Cancel handles DELETE /v1/reservations/:id.
func (h *CustomerHandler) Cancel(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Booking.Cancel(c.Request().Context(), id, userID); err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "cancelled"})
}
