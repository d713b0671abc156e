// Package api exposes the HTTP surface of the chat backend.
package api

import (
	"github.com/labstack/echo/v4"

	"github.com/baatcheet/server/config"
	"github.com/baatcheet/server/groq"
	"github.com/baatcheet/server/metrics"
	"github.com/baatcheet/server/store"
)

// Handler handles the chat, session, model, and health endpoints.
type Handler struct {
	cfg     *config.Config
	store   store.Store
	llm     *groq.Client
	metrics *metrics.Collector
}

// NewHandler creates a new API handler.
func NewHandler(cfg *config.Config, st store.Store, llm *groq.Client, collector *metrics.Collector) *Handler {
	return &Handler{
		cfg:     cfg,
		store:   st,
		llm:     llm,
		metrics: collector,
	}
}

// RegisterRoutes registers all API routes.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/chat", h.Chat)
	e.GET("/api/models", h.ListModels)
	e.POST("/api/session", h.CreateSession)
	e.GET("/api/session/:session_id", h.GetSession)
	e.GET("/health", h.Health)
}

// errorResponse is the JSON error body for non-streaming failures.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
