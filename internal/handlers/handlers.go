// Package handlers holds the Echo HTTP handlers. Handlers parse and
// validate the request, delegate to a service or repository, and translate
// typed errors into HTTP statuses; none of them contain domain logic.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/corvid-labs/rookery/backend/internal/apperrors"
	"github.com/corvid-labs/rookery/backend/internal/middleware"
	"github.com/corvid-labs/rookery/backend/internal/pagination"
)

// getAccountID returns the authenticated caller's account ID, 0 when the
// identity middleware did not run.
func getAccountID(c echo.Context) int64 {
	accountID, _ := c.Get(middleware.AccountIDKey).(int64)
	return accountID
}

// pathID parses a positive int64 path parameter.
func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid "+name)
	}
	return id, nil
}

// httpError maps a typed service error onto the HTTP status it stands for.
func httpError(err error) error {
	return echo.NewHTTPError(apperrors.HTTPStatus(err), err.Error())
}

// cursorFromQuery builds the pagination cursor from before_id / after_id.
func cursorFromQuery(c echo.Context) (*pagination.Cursor, error) {
	cursor, err := pagination.FromParams(c.QueryParam("before_id"), c.QueryParam("after_id"))
	if err != nil {
		return nil, httpError(err)
	}
	return cursor, nil
}

// pageMeta describes a cursor page: the cursors a client passes to keep
// walking in either direction, omitted on an empty page.
func pageMeta(firstID, lastID int64, count, limit int) echo.Map {
	meta := echo.Map{
		"count":        count,
		"itemsPerPage": limit,
	}
	if count > 0 {
		meta["nextBeforeId"] = strconv.FormatInt(lastID, 10)
		meta["prevAfterId"] = strconv.FormatInt(firstID, 10)
	}
	return meta
}
