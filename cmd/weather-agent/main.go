package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/i474232898/weather-agent/internal/agent"
	httpapi "github.com/i474232898/weather-agent/internal/api/http"
	"github.com/i474232898/weather-agent/internal/config"
	"github.com/i474232898/weather-agent/internal/genai"
	"github.com/i474232898/weather-agent/internal/status"
	"github.com/i474232898/weather-agent/internal/store"
	"github.com/i474232898/weather-agent/internal/weather"
	"github.com/i474232898/weather-agent/internal/weather/providers"
)

func main() {
	// Load configuration (reads .env if present).
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Weather provider adapter with resilience (backoff + circuit breaker).
	fetcher := providers.NewOpenWeatherFetcher(httpClient, cfg.OpenWeatherAPIKey)

	// Generative provider; recommendations fall back to rules without it.
	var gen genai.Generator
	if cfg.GeminiAPIKey != "" {
		gen = genai.NewGeminiClient(httpClient, cfg.GeminiAPIKey, cfg.GeminiModel)
	} else {
		log.Println("INFO: GEMINI_API_KEY not set; using rule-based recommendations only")
	}

	// Core pipeline: extract -> classify -> fetch -> compose -> format.
	composer := agent.NewComposer(gen)
	formatter := agent.NewFormatter(agent.Units(cfg.DisplayUnits))
	dispatcher := agent.NewDispatcher(fetcher, composer, formatter)

	// Task store backing tasks/get and tasks/cancel.
	tasks := store.NewTaskStore(cfg.TaskMaxHistory, cfg.TaskMaxAge)

	// Periodic provider reachability probe for the health endpoint.
	monitor := status.New(func(ctx context.Context) error {
		_, err := fetcher.Current(ctx, weather.Location{Name: "London", Country: "GB"})
		return err
	}, cfg.StatusCheckInterval)
	if err := monitor.Start(); err != nil {
		log.Fatalf("failed to start status monitor: %v", err)
	}
	defer monitor.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "weather-agent",
		DisableStartupMessage: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// JSON-RPC surface, agent card and health.
	httpapi.RegisterRoutes(app, httpapi.Deps{
		Agent:     dispatcher,
		Tasks:     tasks,
		Monitor:   monitor,
		AuthToken: cfg.AuthToken,
		AgentName: "weather-agent",
	})

	// Start server with graceful shutdown
	go func() {
		log.Printf("weather-agent listening on :%s", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
