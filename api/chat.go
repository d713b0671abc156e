package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/baatcheet/server/domain"
	"github.com/baatcheet/server/groq"
	"github.com/baatcheet/server/langdetect"
	"github.com/baatcheet/server/store"
)

// chatRequest is the POST /api/chat body.
type chatRequest struct {
	Message     string   `json:"message"`
	SessionID   string   `json:"session_id"`
	Model       string   `json:"model"`
	Temperature *float64 `json:"temperature"`
	MaxTokens   *int     `json:"max_tokens"`
	TopP        *float64 `json:"top_p"`
}

// Chat handles a chat turn and streams the completion back as SSE.
// POST /api/chat
func (h *Handler) Chat(c echo.Context) error {
	ctx := c.Request().Context()

	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{
			Error:   "Invalid request",
			Message: "invalid request body",
		})
	}
	if strings.TrimSpace(req.Message) == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{
			Error:   "Invalid request",
			Message: "Message is required",
		})
	}

	sessionID := req.SessionID
	if sessionID == "" {
		id, err := h.store.CreateSession(ctx, "", "")
		if err != nil {
			log.Error().Err(err).Msg("failed to create session for chat")
			return c.JSON(http.StatusInternalServerError, errorResponse{
				Error:   "Internal server error",
				Message: "failed to create session",
			})
		}
		sessionID = id
		log.Info().Str("session_id", sessionID).Msg("created new session for chat")
	} else {
		session, err := h.store.GetSession(ctx, sessionID)
		if err != nil {
			log.Error().Err(err).Msg("failed to look up session")
			return c.JSON(http.StatusInternalServerError, errorResponse{
				Error:   "Internal server error",
				Message: "failed to look up session",
			})
		}
		if session == nil {
			return c.JSON(http.StatusNotFound, errorResponse{
				Error:   "Session not found",
				Message: fmt.Sprintf("Session %s not found", sessionID),
			})
		}
	}

	language := langdetect.Detect(req.Message)
	systemPrompt := langdetect.SystemPrompt(language)

	history, err := h.store.History(ctx, sessionID)
	if err != nil {
		log.Error().Err(err).Msg("failed to load conversation history")
		return c.JSON(http.StatusInternalServerError, errorResponse{
			Error:   "Internal server error",
			Message: "failed to load history",
		})
	}

	messages := make([]groq.ChatMessage, 0, len(history)+2)
	messages = append(messages, groq.ChatMessage{Role: domain.RoleSystem, Content: systemPrompt})
	for _, m := range history {
		messages = append(messages, groq.ChatMessage{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, groq.ChatMessage{Role: domain.RoleUser, Content: req.Message})

	// The user turn is persisted before streaming begins so a crash
	// mid-stream still leaves it recorded.
	if err := h.store.AppendMessage(ctx, sessionID, domain.RoleUser, req.Message); err != nil {
		if err == store.ErrSessionNotFound {
			return c.JSON(http.StatusNotFound, errorResponse{
				Error:   "Session not found",
				Message: fmt.Sprintf("Session %s not found", sessionID),
			})
		}
		log.Error().Err(err).Msg("failed to save user message")
		return c.JSON(http.StatusInternalServerError, errorResponse{
			Error:   "Internal server error",
			Message: "failed to save message",
		})
	}

	flusher, ok := c.Response().Writer.(http.Flusher)
	if !ok {
		return c.JSON(http.StatusInternalServerError, errorResponse{
			Error:   "Internal server error",
			Message: "streaming not supported",
		})
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/event-stream")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set("Connection", "keep-alive")
	c.Response().Header().Set("X-Accel-Buffering", "no")
	c.Response().WriteHeader(http.StatusOK)

	h.streamChat(c, sessionID, messages, groq.StreamOptions{
		ModelKey:    req.Model,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		TopP:        req.TopP,
	}, flusher)

	return nil
}

// streamChat drives the completion client, forwarding every event to the
// caller as it arrives, then persists the assistant turn and records metrics.
func (h *Handler) streamChat(c echo.Context, sessionID string, messages []groq.ChatMessage, opts groq.StreamOptions, flusher http.Flusher) {
	// The stream is driven on a detached context: there is no cancellation
	// protocol, and a disconnected caller simply has its events discarded.
	streamCtx, cancel := context.WithTimeout(context.Background(), h.cfg.LLMTimeout)
	defer cancel()

	start := time.Now()
	var full strings.Builder
	tokenCount := 0
	failed := false
	clientGone := false

	for event := range h.llm.Stream(streamCtx, messages, opts) {
		switch {
		case event.Type == groq.EventToken:
			tokenCount++
			full.WriteString(event.Content)
		case event.State == groq.StateComplete:
			if event.Metrics != nil {
				h.metrics.Record(event.Metrics.Latency, tokenCount, event.Metrics.TokensPerSec, event.Metrics.Model, true)
			}
		case event.State == groq.StateError:
			failed = true
			elapsed := time.Since(start).Seconds()
			h.metrics.Record(elapsed, 0, 0, "unknown", false)
			log.Error().Str("session_id", sessionID).Str("detail", event.Message).Msg("upstream stream failed")
		}

		if clientGone {
			continue
		}
		data, err := json.Marshal(event)
		if err != nil {
			log.Error().Err(err).Msg("failed to marshal stream event")
			continue
		}
		if _, err := fmt.Fprintf(c.Response(), "data: %s\n\n", data); err != nil {
			clientGone = true
			continue
		}
		flusher.Flush()
	}

	// A failed or empty stream never produces an assistant message.
	if failed || full.Len() == 0 {
		return
	}
	if err := h.store.AppendMessage(context.Background(), sessionID, domain.RoleAssistant, full.String()); err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("failed to save assistant message")
	}
}

// ListModels returns the configured model table.
// GET /api/models
func (h *Handler) ListModels(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"models":  h.llm.Models(),
		"default": h.llm.DefaultModelKey(),
	})
}
