package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/baatcheet/server/api"
	"github.com/baatcheet/server/config"
	"github.com/baatcheet/server/groq"
	"github.com/baatcheet/server/metrics"
	"github.com/baatcheet/server/store"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	log.Info().
		Int("port", cfg.HTTPPort).
		Str("database", cfg.DatabasePath).
		Str("default_model", cfg.DefaultModel).
		Msg("starting chat backend")

	if !cfg.GroqConfigured() {
		log.Warn().Msg("GROQ_API_KEY is not set; chat requests will fail and /health will report degraded")
	}

	db, err := store.NewSQLiteStore(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize store")
	}
	defer db.Close()

	llm := groq.NewClient(groq.Config{
		BaseURL:      cfg.GroqBaseURL,
		APIKey:       cfg.GroqAPIKey,
		Timeout:      cfg.LLMTimeout,
		Models:       cfg.Models,
		DefaultModel: cfg.DefaultModel,
		Temperature:  cfg.Temperature,
		MaxTokens:    cfg.MaxTokens,
		TopP:         cfg.TopP,
	})

	collector := metrics.NewCollector(cfg.MetricsEnabled, cfg.MetricsRetention)

	h := api.NewHandler(cfg, db, llm, collector)

	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	h.RegisterRoutes(e)

	// Sweep once at startup, then on the configured interval.
	sweepDone := make(chan struct{})
	sweep := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := db.SweepExpired(ctx, cfg.SessionTimeout); err != nil {
			log.Error().Err(err).Msg("session sweep failed")
		}
	}
	sweep()
	go func() {
		ticker := time.NewTicker(cfg.CleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				sweep()
			case <-sweepDone:
				return
			}
		}
	}()

	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	log.Info().Int("port", cfg.HTTPPort).Msg("server started")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	close(sweepDone)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("failed to shut down gracefully")
	}

	sweep()
	log.Info().Msg("server stopped")
}
