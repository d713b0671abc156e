// Package config provides configuration for the chat backend.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the application configuration. It is loaded once at startup and
// treated as immutable for the process lifetime.
type Config struct {
	// Server settings
	HTTPPort int

	// Database
	DatabasePath string

	// Groq API
	GroqAPIKey  string
	GroqBaseURL string
	LLMTimeout  time.Duration

	// Model table: short keys exposed to clients mapped to Groq model names.
	Models       map[string]string
	DefaultModel string

	// Sampling defaults
	Temperature float64
	MaxTokens   int
	TopP        float64

	// Session settings
	SessionTimeout  time.Duration
	CleanupInterval time.Duration

	// Metrics settings
	MetricsEnabled   bool
	MetricsRetention time.Duration

	// Logging
	LogLevel string
}

// fileConfig is the optional JSON override file. Any zero-valued field keeps
// the built-in default.
type fileConfig struct {
	Models       map[string]string `json:"models"`
	DefaultModel string            `json:"default_model"`
	Temperature  *float64          `json:"temperature"`
	MaxTokens    *int              `json:"max_tokens"`
	TopP         *float64          `json:"top_p"`
	Session      struct {
		TimeoutMinutes         int `json:"timeout_minutes"`
		CleanupIntervalMinutes int `json:"cleanup_interval_minutes"`
	} `json:"session"`
	Metrics struct {
		Enabled        *bool `json:"enabled"`
		RetentionHours int   `json:"retention_hours"`
	} `json:"metrics"`
}

// Load loads configuration from environment variables, applying overrides from
// the JSON file named by CONFIG_FILE when set.
func Load() (*Config, error) {
	cfg := &Config{
		HTTPPort:     getEnvInt("HTTP_PORT", 8000),
		DatabasePath: getEnv("DATABASE_PATH", "sessions.sqlite"),
		GroqAPIKey:   getEnv("GROQ_API_KEY", ""),
		GroqBaseURL:  getEnv("GROQ_BASE_URL", "https://api.groq.com/openai"),
		LLMTimeout:   time.Duration(getEnvInt("LLM_TIMEOUT_MS", 120000)) * time.Millisecond,
		Models: map[string]string{
			"llama3-8b":  "llama-3.1-8b-instant",
			"llama3-70b": "llama-3.3-70b-versatile",
			"gemma2":     "gemma2-9b-it",
		},
		DefaultModel:     "llama3-8b",
		Temperature:      0.7,
		MaxTokens:        2048,
		TopP:             0.9,
		SessionTimeout:   time.Duration(getEnvInt("SESSION_TIMEOUT_MINUTES", 30)) * time.Minute,
		CleanupInterval:  time.Duration(getEnvInt("CLEANUP_INTERVAL_MINUTES", 10)) * time.Minute,
		MetricsEnabled:   getEnvBool("METRICS_ENABLED", true),
		MetricsRetention: time.Duration(getEnvInt("METRICS_RETENTION_HOURS", 24)) * time.Hour,
		LogLevel:         getEnv("LOG_LEVEL", "info"),
	}

	if path := getEnv("CONFIG_FILE", ""); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if _, ok := cfg.Models[cfg.DefaultModel]; !ok {
		return nil, fmt.Errorf("default model %q is not in the model table", cfg.DefaultModel)
	}

	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var fc fileConfig
	if err := json.Unmarshal(data, &fc); err != nil {
		return err
	}

	if len(fc.Models) > 0 {
		c.Models = fc.Models
	}
	if fc.DefaultModel != "" {
		c.DefaultModel = fc.DefaultModel
	}
	if fc.Temperature != nil {
		c.Temperature = *fc.Temperature
	}
	if fc.MaxTokens != nil {
		c.MaxTokens = *fc.MaxTokens
	}
	if fc.TopP != nil {
		c.TopP = *fc.TopP
	}
	if fc.Session.TimeoutMinutes > 0 {
		c.SessionTimeout = time.Duration(fc.Session.TimeoutMinutes) * time.Minute
	}
	if fc.Session.CleanupIntervalMinutes > 0 {
		c.CleanupInterval = time.Duration(fc.Session.CleanupIntervalMinutes) * time.Minute
	}
	if fc.Metrics.Enabled != nil {
		c.MetricsEnabled = *fc.Metrics.Enabled
	}
	if fc.Metrics.RetentionHours > 0 {
		c.MetricsRetention = time.Duration(fc.Metrics.RetentionHours) * time.Hour
	}

	return nil
}

// GroqConfigured reports whether an upstream API key is present.
func (c *Config) GroqConfigured() bool {
	return c.GroqAPIKey != ""
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if boolVal, err := strconv.ParseBool(val); err == nil {
			return boolVal
		}
	}
	return defaultVal
}
