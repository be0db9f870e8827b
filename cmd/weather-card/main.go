package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/weather-card/internal/api/http"
	"github.com/i474232898/weather-card/internal/config"
	"github.com/i474232898/weather-card/internal/location"
	"github.com/i474232898/weather-card/internal/presentation"
	"github.com/i474232898/weather-card/internal/render"
	"github.com/i474232898/weather-card/internal/scheduler"
	"github.com/i474232898/weather-card/internal/weather"
	"github.com/i474232898/weather-card/internal/weather/providers"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if cfg.OpenWeatherAPIKey == "" {
		log.Println("INFO: OPENWEATHER_API_KEY is empty; weather requests will be rejected upstream")
	}

	// Shared HTTP client for outbound weather calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}
	client := providers.NewOpenWeatherClient(httpClient, cfg.OpenWeatherBaseURL)

	// Presentation state read by the API and the terminal card.
	store := presentation.NewStore(cfg.Ordering)

	errPolicy := weather.DropErrors
	if cfg.SurfaceErrors {
		errPolicy = weather.SurfaceErrors
	}
	observer := weather.NewObserver(client, cfg.OpenWeatherAPIKey, store, errPolicy)

	perms := location.WithRationale(cfg.Permissions, cfg.ShowRationale)
	feed := location.NewFeed()
	sub, err := observer.Register(feed, perms, cfg.LocationRequest)
	switch {
	case errors.Is(err, weather.ErrPermissionDenied):
		log.Printf("INFO: %s", render.PermissionPrompt(perms))
	case err != nil:
		log.Fatalf("failed to register location observer: %v", err)
	}

	// Periodic fix source when a location is configured; otherwise fixes
	// only arrive through the API.
	var sched *scheduler.Scheduler
	if source := fixSource(cfg); source != nil && sub != nil {
		sched = scheduler.New(feed, source, cfg.LocationRequest)
		if err := sched.Start(); err != nil {
			log.Fatalf("failed to start scheduler: %v", err)
		}
	}

	updates, unsubscribe := store.Subscribe()
	defer unsubscribe()
	go func() {
		for st := range updates {
			if err := render.Card(os.Stdout, perms, st); err != nil {
				log.Printf("render failed: %v", err)
			}
		}
	}()
	if err := render.Card(os.Stdout, perms, store.Current()); err != nil {
		log.Printf("render failed: %v", err)
	}

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "weather-card",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
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

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":      "ok",
			"service":     "weather-card",
			"subscribed":  feed.Subscribers() > 0,
			"dataLoaded":  store.Current().Loaded,
			"permissions": cfg.Permissions,
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, store, feed)

	go func() {
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

	// Stop every fix producer before draining in-flight fetches.
	if sched != nil {
		sched.Stop()
	}
	if sub != nil {
		sub.Stop()
	}
	observer.Close()
}

func fixSource(cfg *config.AppConfig) scheduler.FixSource {
	if cfg.HasCoordinates {
		return scheduler.StaticSource(cfg.Latitude, cfg.Longitude)
	}
	if cfg.Address.City == "" {
		return nil
	}

	fix, err := location.Geocode(cfg.GeocoderAPIKey, cfg.Address)
	if err != nil {
		log.Printf("INFO: could not resolve %s,%s: %v", cfg.Address.City, cfg.Address.Country, err)
		return nil
	}
	log.Printf("INFO: resolved %s,%s to %.4f,%.4f", cfg.Address.City, cfg.Address.Country, fix.Latitude, fix.Longitude)
	return scheduler.StaticSource(fix.Latitude, fix.Longitude)
}
