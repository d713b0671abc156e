package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Health reports aggregated metrics and upstream configuration state.
// GET /health
func (h *Handler) Health(c echo.Context) error {
	configured := h.cfg.GroqConfigured()

	status := "healthy"
	code := http.StatusOK
	if !configured {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	return c.JSON(code, map[string]interface{}{
		"status":          status,
		"groq_configured": configured,
		"metrics":         h.metrics.Stats(),
		"timestamp":       time.Now().UTC().Format(time.RFC3339),
	})
}
