package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/corvid-labs/rookery/backend/internal/models"
	"github.com/corvid-labs/rookery/backend/internal/notes"
	"github.com/corvid-labs/rookery/backend/internal/repositories"
)

// NoteHandler handles note authoring, reading and reactions.
type NoteHandler struct {
	service   *notes.Service
	reactions repositories.ReactionRepository
}

// NewNoteHandler creates a new NoteHandler.
func NewNoteHandler(service *notes.Service, reactions repositories.ReactionRepository) *NoteHandler {
	return &NoteHandler{service: service, reactions: reactions}
}

// RegisterNoteRoutes registers note routes.
func (h *NoteHandler) RegisterNoteRoutes(g *echo.Group) {
	g.POST("/notes", h.CreateNote)
	g.GET("/notes/:id", h.GetNote)
	g.DELETE("/notes/:id", h.DeleteNote)
	g.POST("/notes/:id/renote", h.Renote)
	g.PUT("/notes/:id/react", h.React)
	g.DELETE("/notes/:id/react", h.Unreact)
}

// CreateNote authors a new note.
func (h *NoteHandler) CreateNote(c echo.Context) error {
	var req models.CreateNoteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	note, err := h.service.Create(c.Request().Context(), getAccountID(c), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": echo.Map{"note": note}})
}

// GetNote returns a single note with its reaction count. Notes the caller
// cannot see read as absent.
func (h *NoteHandler) GetNote(c echo.Context) error {
	noteID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	note, err := h.service.Get(ctx, noteID, getAccountID(c))
	if err != nil {
		return httpError(err)
	}

	reactionCount, err := h.reactions.CountByNote(ctx, noteID)
	if err != nil {
		return httpError(err)
	}
	reacted, err := h.reactions.HasReacted(ctx, noteID, getAccountID(c))
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"note":          note,
			"reactionCount": reactionCount,
			"reacted":       reacted,
		},
	})
}

// DeleteNote soft-deletes a caller-owned note.
func (h *NoteHandler) DeleteNote(c echo.Context) error {
	noteID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), noteID, getAccountID(c)); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"deleted": true}})
}

// Renote re-publishes an existing note.
func (h *NoteHandler) Renote(c echo.Context) error {
	sourceID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	note, err := h.service.Renote(c.Request().Context(), getAccountID(c), sourceID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": echo.Map{"note": note}})
}

// React records the caller's emoji reaction on a note.
func (h *NoteHandler) React(c echo.Context) error {
	noteID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req models.ReactRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.service.React(c.Request().Context(), noteID, getAccountID(c), req.Emoji); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"reacted": true}})
}

// Unreact removes the caller's reaction from a note.
func (h *NoteHandler) Unreact(c echo.Context) error {
	noteID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.Unreact(c.Request().Context(), noteID, getAccountID(c)); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"reacted": false}})
}
