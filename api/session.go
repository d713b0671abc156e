package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// sessionRequest is the optional POST /api/session body.
type sessionRequest struct {
	Language string `json:"language"`
	Model    string `json:"model"`
}

// CreateSession creates a new chat session.
// POST /api/session
func (h *Handler) CreateSession(c echo.Context) error {
	ctx := c.Request().Context()

	// The body is optional; a missing or malformed one means no hints.
	var req sessionRequest
	_ = c.Bind(&req)

	sessionID, err := h.store.CreateSession(ctx, req.Language, req.Model)
	if err != nil {
		log.Error().Err(err).Msg("failed to create session")
		return c.JSON(http.StatusInternalServerError, errorResponse{
			Error:   "Failed to create session",
			Message: err.Error(),
		})
	}

	return c.JSON(http.StatusCreated, map[string]string{
		"session_id": sessionID,
		"status":     "created",
	})
}

// GetSession returns session metadata and its messages.
// GET /api/session/:session_id
func (h *Handler) GetSession(c echo.Context) error {
	ctx := c.Request().Context()
	sessionID := c.Param("session_id")

	session, err := h.store.GetSession(ctx, sessionID)
	if err != nil {
		log.Error().Err(err).Msg("failed to get session")
		return c.JSON(http.StatusInternalServerError, errorResponse{
			Error:   "Failed to get session",
			Message: err.Error(),
		})
	}
	if session == nil {
		return c.JSON(http.StatusNotFound, errorResponse{
			Error: "Session not found",
		})
	}

	messages, err := h.store.ListMessages(ctx, sessionID)
	if err != nil {
		log.Error().Err(err).Msg("failed to list messages")
		return c.JSON(http.StatusInternalServerError, errorResponse{
			Error:   "Failed to get session",
			Message: err.Error(),
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"session":  session,
		"messages": messages,
	})
}
