package middleware

import (
	"fmt"

	"github.com/labstack/echo/v4"
)

// requestUserID returns a stable identifier for the requesting user, for
// use in cache and rate-limit keys. Unauthenticated requests all share
// the "guest" identity and are keyed by IP instead.
func requestUserID(c echo.Context) string {
	switch v := c.Get("user_id").(type) {
	case string:
		if v != "" {
			return v
		}
	case float64:
		// JWT numeric claims decode as float64.
		return fmt.Sprintf("%.0f", v)
	}
	return "guest"
}
