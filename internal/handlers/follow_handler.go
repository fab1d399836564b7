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

// FollowHandler handles follow graph mutations, including the request
// round-trip locked accounts demand.
type FollowHandler struct {
	follows  repositories.FollowRepository
	accounts repositories.AccountRepository
	requests repositories.FollowRequestRepository
	notifs   repositories.NotificationRepository
	cache    cache.TimelineCache
	ids      *id.Generator
	logger   *slog.Logger
}

// NewFollowHandler creates a new FollowHandler.
func NewFollowHandler(
	follows repositories.FollowRepository,
	accounts repositories.AccountRepository,
	requests repositories.FollowRequestRepository,
	notifs repositories.NotificationRepository,
	timelineCache cache.TimelineCache,
	ids *id.Generator,
	logger *slog.Logger,
) *FollowHandler {
	return &FollowHandler{
		follows:  follows,
		accounts: accounts,
		requests: requests,
		notifs:   notifs,
		cache:    timelineCache,
		ids:      ids,
		logger:   logger.With("component", "handlers.FollowHandler"),
	}
}

// RegisterFollowRoutes registers follow and follow-request routes.
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/accounts/:id/follow", h.Follow)
	g.DELETE("/accounts/:id/follow", h.Unfollow)
	g.GET("/follow-requests", h.GetFollowRequests)
	g.POST("/follow-requests/:id/accept", h.AcceptFollowRequest)
	g.DELETE("/follow-requests/:id", h.RejectFollowRequest)
}

// notify writes a notification, logging instead of failing the request when
// the store misbehaves.
func (h *FollowHandler) notify(c echo.Context, notification *models.Notification) {
	notificationID, err := h.ids.Generate()
	if err != nil {
		h.logger.Warn("notification dropped", "type", notification.Type, "error", err)
		return
	}
	notification.ID = notificationID
	if err := h.notifs.Create(c.Request().Context(), notification); err != nil {
		h.logger.Warn("notification dropped", "type", notification.Type, "error", err)
	}
}

// evictHomeEntry drops an account's cached home timeline after its
// following set changed; the next read rebuilds it against the new graph.
func (h *FollowHandler) evictHomeEntry(c echo.Context, accountID int64) {
	if err := h.cache.Evict(c.Request().Context(), cache.ScopeHome, accountID); err != nil {
		h.logger.Warn("home cache eviction failed", "account_id", accountID, "error", err)
	}
}

// Follow follows an account, or files a follow request when the target is
// locked.
func (h *FollowHandler) Follow(c echo.Context) error {
	callerID := getAccountID(c)
	targetID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if targetID == callerID {
		return echo.NewHTTPError(http.StatusBadRequest, "Cannot follow yourself")
	}

	ctx := c.Request().Context()
	target, err := h.accounts.FindByID(ctx, targetID)
	if err != nil {
		return httpError(err)
	}

	if target.Locked {
		requestID, err := h.ids.Generate()
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		request := &models.FollowRequest{ID: requestID, RequesterID: callerID, TargetID: targetID}
		if err := h.requests.Create(ctx, request); err != nil {
			return httpError(err)
		}
		h.notify(c, &models.Notification{
			RecipientID: targetID,
			Type:        models.NotificationFollowRequested,
			ActorID:     callerID,
		})
		return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"requested": true}})
	}

	edgeID, err := h.ids.Generate()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	edge := &models.FollowEdge{ID: edgeID, FollowerID: callerID, FollowingID: targetID}
	if err := h.follows.CreateFollow(ctx, edge); err != nil {
		return httpError(err)
	}

	h.evictHomeEntry(c, callerID)
	h.notify(c, &models.Notification{
		RecipientID: targetID,
		Type:        models.NotificationFollowed,
		ActorID:     callerID,
	})
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"following": true}})
}

// Unfollow removes the caller's follow edge toward an account.
func (h *FollowHandler) Unfollow(c echo.Context) error {
	callerID := getAccountID(c)
	targetID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if err := h.follows.DeleteFollow(c.Request().Context(), callerID, targetID); err != nil {
		return httpError(err)
	}
	h.evictHomeEntry(c, callerID)
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"following": false}})
}

// GetFollowRequests returns the pending follow requests toward the caller.
func (h *FollowHandler) GetFollowRequests(c echo.Context) error {
	requests, err := h.requests.FindByTarget(c.Request().Context(), getAccountID(c))
	if err != nil {
		return httpError(err)
	}
	if requests == nil {
		requests = []*models.FollowRequest{}
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"requests": requests}})
}

// AcceptFollowRequest turns a pending request into a follow edge. The path
// parameter is the requester's account ID.
func (h *FollowHandler) AcceptFollowRequest(c echo.Context) error {
	callerID := getAccountID(c)
	requesterID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	if _, err := h.requests.Find(ctx, requesterID, callerID); err != nil {
		return httpError(err)
	}

	edgeID, err := h.ids.Generate()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	edge := &models.FollowEdge{ID: edgeID, FollowerID: requesterID, FollowingID: callerID}
	if err := h.follows.CreateFollow(ctx, edge); err != nil {
		return httpError(err)
	}
	if err := h.requests.Delete(ctx, requesterID, callerID); err != nil {
		h.logger.Warn("accepted follow request not removed", "requester_id", requesterID, "error", err)
	}

	h.evictHomeEntry(c, requesterID)
	h.notify(c, &models.Notification{
		RecipientID: requesterID,
		Type:        models.NotificationFollowAccepted,
		ActorID:     callerID,
	})
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"accepted": true}})
}

// RejectFollowRequest discards a pending request without a trace; the
// requester is never told.
func (h *FollowHandler) RejectFollowRequest(c echo.Context) error {
	requesterID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.requests.Delete(c.Request().Context(), requesterID, getAccountID(c)); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"rejected": true}})
}
