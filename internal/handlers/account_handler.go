package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/corvid-labs/rookery/backend/internal/repositories"
)

// AccountHandler serves the slim account profiles this service reads.
type AccountHandler struct {
	accounts repositories.AccountRepository
	follows  repositories.FollowRepository
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accounts repositories.AccountRepository, follows repositories.FollowRepository) *AccountHandler {
	return &AccountHandler{accounts: accounts, follows: follows}
}

// RegisterAccountRoutes registers account routes.
func (h *AccountHandler) RegisterAccountRoutes(g *echo.Group) {
	g.GET("/accounts/:id", h.GetAccount)
}

// GetAccount returns an account profile plus the follow relationship
// between it and the caller.
func (h *AccountHandler) GetAccount(c echo.Context) error {
	targetID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	account, err := h.accounts.FindByID(ctx, targetID)
	if err != nil {
		return httpError(err)
	}

	callerID := getAccountID(c)
	following, followedBy := false, false
	if callerID != targetID {
		if following, err = h.follows.IsFollowing(ctx, callerID, targetID); err != nil {
			return httpError(err)
		}
		if followedBy, err = h.follows.IsFollowing(ctx, targetID, callerID); err != nil {
			return httpError(err)
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"account":    account,
			"following":  following,
			"followedBy": followedBy,
		},
	})
}
