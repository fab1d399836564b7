package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/corvid-labs/rookery/backend/internal/models"
	"github.com/corvid-labs/rookery/backend/internal/pagination"
	"github.com/corvid-labs/rookery/backend/internal/timeline"
)

// TimelineHandler serves the four chronological read views.
type TimelineHandler struct {
	assembler *timeline.Assembler
}

// NewTimelineHandler creates a new TimelineHandler.
func NewTimelineHandler(assembler *timeline.Assembler) *TimelineHandler {
	return &TimelineHandler{assembler: assembler}
}

// RegisterTimelineRoutes registers the identity-scoped timeline routes.
func (h *TimelineHandler) RegisterTimelineRoutes(g *echo.Group) {
	g.GET("/timelines/home", h.GetHome)
	g.GET("/timelines/list/:id", h.GetList)
	g.GET("/accounts/:id/timeline", h.GetAccount)
}

// RegisterPublicRoutes registers the routes served without an identity.
func (h *TimelineHandler) RegisterPublicRoutes(e *echo.Echo) {
	e.GET("/api/v1/timelines/public", h.GetPublic)
}

func timelineFilters(c echo.Context) timeline.Filters {
	return timeline.Filters{
		OnlyMedia:        c.QueryParam("only_media") == "true",
		ExcludeSensitive: c.QueryParam("exclude_sensitive") == "true",
	}
}

func timelineLimit(c echo.Context) int {
	return pagination.ClampLimit(c.QueryParam("limit"), pagination.TimelineDefaultLimit, pagination.TimelineMaxLimit)
}

func respondTimeline(c echo.Context, notes []*models.Note, limit int) error {
	var firstID, lastID int64
	if len(notes) > 0 {
		firstID, lastID = notes[0].ID, notes[len(notes)-1].ID
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"notes": notes},
		"meta":    pageMeta(firstID, lastID, len(notes), limit),
	})
}

// GetHome returns the caller's home timeline.
func (h *TimelineHandler) GetHome(c echo.Context) error {
	cursor, err := cursorFromQuery(c)
	if err != nil {
		return err
	}
	limit := timelineLimit(c)

	notes, err := h.assembler.Home(c.Request().Context(), getAccountID(c), cursor, limit, timelineFilters(c))
	if err != nil {
		return httpError(err)
	}
	return respondTimeline(c, notes, limit)
}

// GetList returns a list timeline, owner-only when the list is private.
func (h *TimelineHandler) GetList(c echo.Context) error {
	listID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	cursor, err := cursorFromQuery(c)
	if err != nil {
		return err
	}
	limit := timelineLimit(c)

	notes, err := h.assembler.List(c.Request().Context(), listID, getAccountID(c), cursor, limit, timelineFilters(c))
	if err != nil {
		return httpError(err)
	}
	return respondTimeline(c, notes, limit)
}

// GetAccount returns an account's timeline as seen by the caller.
func (h *TimelineHandler) GetAccount(c echo.Context) error {
	targetID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	cursor, err := cursorFromQuery(c)
	if err != nil {
		return err
	}
	limit := timelineLimit(c)

	notes, err := h.assembler.Account(c.Request().Context(), targetID, getAccountID(c), cursor, limit, timelineFilters(c))
	if err != nil {
		return httpError(err)
	}
	return respondTimeline(c, notes, limit)
}

// GetPublic returns the public firehose. No identity is required.
func (h *TimelineHandler) GetPublic(c echo.Context) error {
	cursor, err := cursorFromQuery(c)
	if err != nil {
		return err
	}
	limit := timelineLimit(c)

	notes, err := h.assembler.Public(c.Request().Context(), cursor, limit, timelineFilters(c))
	if err != nil {
		return httpError(err)
	}
	return respondTimeline(c, notes, limit)
}
