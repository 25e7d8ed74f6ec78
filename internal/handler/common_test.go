package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restaurant-table-reservation/internal/booking"
)

func TestBookingErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", booking.ErrValidation, http.StatusBadRequest},
		{"not found", booking.ErrNotFound, http.StatusNotFound},
		{"forbidden", booking.ErrForbidden, http.StatusForbidden},
		{"capacity exceeded", booking.ErrCapacityExceeded, http.StatusConflict},
		{"already cancelled", booking.ErrAlreadyCancelled, http.StatusBadRequest},
		{"unavailable", booking.ErrUnavailable, http.StatusServiceUnavailable},
	}
	e := echo.New()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
			require.NoError(t, bookingError(c, tc.err))
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestGetUserID(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	_, err := getUserID(c)
	assert.Error(t, err)

	c.Set("user_id", float64(42)) // how a JWT numeric claim arrives
	id, err := getUserID(c)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), id)

	c.Set("user_id", "7")
	id, err = getUserID(c)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), id)
}
