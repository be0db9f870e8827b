package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/i474232898/weather-card/internal/location"
	"github.com/i474232898/weather-card/internal/presentation"
)

type AppConfig struct {
	OpenWeatherAPIKey  string
	OpenWeatherBaseURL string

	// HTTPTimeout bounds each outbound weather request.
	HTTPTimeout time.Duration

	// Location update cadence and the permissions the user granted.
	LocationRequest location.Request
	Permissions     location.StaticPermissions
	// ShowRationale is set when the user already declined location access.
	ShowRationale bool

	// Coordinates reported by the periodic fix source. HasCoordinates is
	// false when neither LOCATION_LAT/LON nor a geocodable city is set.
	Latitude       float64
	Longitude      float64
	HasCoordinates bool
	Address        location.Address
	GeocoderAPIKey string

	Ordering      presentation.Ordering
	SurfaceErrors bool

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.OpenWeatherBaseURL = os.Getenv("OPENWEATHER_BASE_URL")

	timeout, err := time.ParseDuration(getenvDefault("HTTP_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	req, err := loadLocationRequest()
	if err != nil {
		return nil, err
	}
	cfg.LocationRequest = req

	perms, err := ParsePermissions(getenvDefault("LOCATION_PERMISSIONS", "fine,coarse"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOCATION_PERMISSIONS: %w", err)
	}
	cfg.Permissions = perms
	cfg.ShowRationale = getenvBool("LOCATION_SHOW_RATIONALE", false)

	if err := loadCoordinates(cfg); err != nil {
		return nil, err
	}
	cfg.Address = location.Address{
		City:    os.Getenv("WEATHER_LOCATION_CITY"),
		Country: os.Getenv("WEATHER_LOCATION_COUNTRY"),
	}
	cfg.GeocoderAPIKey = os.Getenv("GEOCODER_API_KEY")

	ordering, err := presentation.ParseOrdering(getenvDefault("STATE_ORDERING", string(presentation.LastCompletion)))
	if err != nil {
		return nil, fmt.Errorf("invalid STATE_ORDERING: %w", err)
	}
	cfg.Ordering = ordering
	cfg.SurfaceErrors = getenvBool("SURFACE_ERRORS", false)

	cfg.Port = getenvDefault("PORT", "8080")

	return cfg, nil
}

func loadLocationRequest() (location.Request, error) {
	req := location.DefaultRequest()

	interval, err := time.ParseDuration(getenvDefault("LOCATION_INTERVAL", req.Interval.String()))
	if err != nil {
		return req, fmt.Errorf("invalid LOCATION_INTERVAL: %w", err)
	}
	fastest, err := time.ParseDuration(getenvDefault("LOCATION_FASTEST_INTERVAL", req.FastestInterval.String()))
	if err != nil {
		return req, fmt.Errorf("invalid LOCATION_FASTEST_INTERVAL: %w", err)
	}
	priority, ok := location.ParsePriority(getenvDefault("LOCATION_PRIORITY", string(req.Priority)))
	if !ok {
		return req, fmt.Errorf("invalid LOCATION_PRIORITY: %q", os.Getenv("LOCATION_PRIORITY"))
	}

	req.Interval = interval
	req.FastestInterval = fastest
	req.Priority = priority
	return req, nil
}

func loadCoordinates(cfg *AppConfig) error {
	latStr, lonStr := os.Getenv("LOCATION_LAT"), os.Getenv("LOCATION_LON")
	if latStr == "" && lonStr == "" {
		return nil
	}
	if latStr == "" || lonStr == "" {
		return fmt.Errorf("LOCATION_LAT and LOCATION_LON must be set together")
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil || lat < -90 || lat > 90 {
		return fmt.Errorf("invalid LOCATION_LAT: %q", latStr)
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil || lon < -180 || lon > 180 {
		return fmt.Errorf("invalid LOCATION_LON: %q", lonStr)
	}

	cfg.Latitude, cfg.Longitude, cfg.HasCoordinates = lat, lon, true
	return nil
}

// ParsePermissions reads a comma separated list such as "fine,coarse".
// Accepted names are fine, precise, coarse and approximate.
// "none" or an empty list grants nothing.
func ParsePermissions(s string) (location.StaticPermissions, error) {
	perms := location.StaticPermissions{}
	for _, item := range strings.Split(s, ",") {
		item = strings.ToLower(strings.TrimSpace(item))
		switch {
		case item == "" || item == "none":
		case item == "fine" || item == "precise":
			perms[location.Fine] = true
		case item == "coarse" || item == "approximate":
			perms[location.Coarse] = true
		default:
			return nil, fmt.Errorf("unknown permission %q", item)
		}
	}
	return perms, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}
