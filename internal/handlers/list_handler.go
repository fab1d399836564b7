package handlers

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/corvid-labs/rookery/backend/internal/cache"
	"github.com/corvid-labs/rookery/backend/internal/id"
	"github.com/corvid-labs/rookery/backend/internal/models"
	"github.com/corvid-labs/rookery/backend/internal/repositories"
)

// ListHandler handles list registry requests: list CRUD and membership.
type ListHandler struct {
	lists  repositories.ListRepository
	cache  cache.TimelineCache
	ids    *id.Generator
	logger *slog.Logger
}

// NewListHandler creates a new ListHandler.
func NewListHandler(lists repositories.ListRepository, timelineCache cache.TimelineCache, ids *id.Generator, logger *slog.Logger) *ListHandler {
	return &ListHandler{
		lists:  lists,
		cache:  timelineCache,
		ids:    ids,
		logger: logger.With("component", "handlers.ListHandler"),
	}
}

// RegisterListRoutes registers list routes.
func (h *ListHandler) RegisterListRoutes(g *echo.Group) {
	g.POST("/lists", h.CreateList)
	g.GET("/lists", h.GetOwnLists)
	g.GET("/lists/:id", h.GetList)
	g.PUT("/lists/:id", h.UpdateList)
	g.DELETE("/lists/:id", h.DeleteList)
	g.GET("/lists/:id/members", h.GetMembers)
	g.POST("/lists/:id/members/:accountId", h.AppendMember)
	g.DELETE("/lists/:id/members/:accountId", h.RemoveMember)
}

// evictListEntry drops the list's cached timeline after a membership or
// lifecycle change; the next read rebuilds it from the registry.
func (h *ListHandler) evictListEntry(c echo.Context, listID int64) {
	if err := h.cache.Evict(c.Request().Context(), cache.ScopeList, listID); err != nil {
		h.logger.Warn("list cache eviction failed", "list_id", listID, "error", err)
	}
}

// CreateList creates a list owned by the caller.
func (h *ListHandler) CreateList(c echo.Context) error {
	var req models.CreateListRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	listID, err := h.ids.Generate()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	list := &models.List{
		ID:        listID,
		OwnerID:   getAccountID(c),
		Title:     req.Title,
		Publicity: models.ListPublicity(req.Publicity),
	}
	if err := h.lists.CreateList(c.Request().Context(), list); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": echo.Map{"list": list}})
}

// GetOwnLists returns the caller's lists, newest first.
func (h *ListHandler) GetOwnLists(c echo.Context) error {
	lists, err := h.lists.FindByOwner(c.Request().Context(), getAccountID(c))
	if err != nil {
		return httpError(err)
	}
	if lists == nil {
		lists = []*models.List{}
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"lists": lists}})
}

// GetList returns one list. Private lists are visible only to their owner.
func (h *ListHandler) GetList(c echo.Context) error {
	listID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	list, err := h.lists.FindByID(c.Request().Context(), listID)
	if err != nil {
		return httpError(err)
	}
	if list.Publicity != models.ListPublic && list.OwnerID != getAccountID(c) {
		return echo.NewHTTPError(http.StatusForbidden, "List is private")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"list": list}})
}

// UpdateList edits a caller-owned list's title or publicity.
func (h *ListHandler) UpdateList(c echo.Context) error {
	listID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req models.UpdateListRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	list, err := h.lists.UpdateList(c.Request().Context(), listID, getAccountID(c), req.Title, models.ListPublicity(req.Publicity))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"list": list}})
}

// DeleteList removes a caller-owned list and its cached timeline.
func (h *ListHandler) DeleteList(c echo.Context) error {
	listID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.lists.DeleteList(c.Request().Context(), listID, getAccountID(c)); err != nil {
		return httpError(err)
	}
	h.evictListEntry(c, listID)
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"deleted": true}})
}

// GetMembers returns the list's member account IDs in append order.
func (h *ListHandler) GetMembers(c echo.Context) error {
	listID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	list, err := h.lists.FindByID(c.Request().Context(), listID)
	if err != nil {
		return httpError(err)
	}
	if list.Publicity != models.ListPublic && list.OwnerID != getAccountID(c) {
		return echo.NewHTTPError(http.StatusForbidden, "List is private")
	}

	memberIDs, err := h.lists.FindMemberIDs(c.Request().Context(), listID)
	if err != nil {
		return httpError(err)
	}
	if memberIDs == nil {
		memberIDs = []int64{}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"memberIds": memberIDs},
		"meta":    echo.Map{"count": len(memberIDs), "capacity": models.MaxListMembers},
	})
}

// AppendMember adds an account to a caller-owned list.
func (h *ListHandler) AppendMember(c echo.Context) error {
	listID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	memberID, err := pathID(c, "accountId")
	if err != nil {
		return err
	}

	if err := h.lists.AppendMember(c.Request().Context(), listID, getAccountID(c), memberID); err != nil {
		return httpError(err)
	}
	h.evictListEntry(c, listID)
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"member": true}})
}

// RemoveMember drops an account from a caller-owned list. Removing a
// non-member succeeds without effect.
func (h *ListHandler) RemoveMember(c echo.Context) error {
	listID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	memberID, err := pathID(c, "accountId")
	if err != nil {
		return err
	}

	if err := h.lists.RemoveMember(c.Request().Context(), listID, getAccountID(c), memberID); err != nil {
		return httpError(err)
	}
	h.evictListEntry(c, listID)
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"member": false}})
}
