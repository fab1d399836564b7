package middleware

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// AccountIDKey is the context key the identity middleware stores the
// caller's account ID under.
const AccountIDKey = "account_id"

// Identity extracts the caller's account ID from the X-Account-ID header.
// The edge proxy authenticates requests and stamps the header before they
// reach this service; a request without it never made it through the edge.
func Identity() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := c.Request().Header.Get("X-Account-ID")
			if raw == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing X-Account-ID header")
			}

			accountID, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || accountID <= 0 {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid X-Account-ID header")
			}

			c.Set(AccountIDKey, accountID)
			return next(c)
		}
	}
}
