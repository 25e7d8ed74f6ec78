package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-reservation/internal/booking"
)

// getUserID extracts the authenticated user's ID from the context. The
// JWT middleware stores the raw claim value; numeric claims arrive as
// float64 after JSON decoding.
func getUserID(c echo.Context) (uint64, error) {
	switch t := c.Get("user_id").(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// getRole returns the role claim stored by the JWT middleware.
func getRole(c echo.Context) string {
	role, _ := c.Get("role").(string)
	return role
}

// bookingError translates the booking service's error taxonomy into an
// HTTP response. Capacity conflicts are 409 so clients can distinguish
// "someone got there first" from their own bad input.
func bookingError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, booking.ErrValidation):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, booking.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, booking.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, booking.ErrCapacityExceeded):
		return c.JSON(http.StatusConflict, echo.Map{"error": "not enough available seats for the selected time"})
	case errors.Is(err, booking.ErrAlreadyCancelled):
		// A terminal-state conflict reads as a bad request, not 409:
		// only capacity races get the retry-signalling conflict status.
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "reservation already cancelled"})
	default:
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "service unavailable"})
	}
}
