package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getHealth(t *testing.T, h *Handler) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.Health(c))
	return rec
}

func TestHealthConfigured(t *testing.T) {
	h, _ := newTestHandler(t, "http://example.com")

	h.metrics.Record(1.0, 10, 10.0, "llama-3.1-8b-instant", true)

	rec := getHealth(t, h)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Status         string `json:"status"`
		GroqConfigured bool   `json:"groq_configured"`
		Metrics        struct {
			TotalRequests int64 `json:"total_requests"`
		} `json:"metrics"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.True(t, resp.GroqConfigured)
	assert.Equal(t, int64(1), resp.Metrics.TotalRequests)
}

func TestHealthMissingAPIKey(t *testing.T) {
	h, _ := newTestHandler(t, "http://example.com")
	h.cfg.GroqAPIKey = ""

	rec := getHealth(t, h)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp.Status)
}
