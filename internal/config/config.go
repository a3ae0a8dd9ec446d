package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Backend API.
	APIBaseURL string
	APITimeout time.Duration // 0 disables the client timeout

	// Geocoding (Nominatim-compatible search endpoint).
	GeocoderURL         string
	GeocoderCountry     string // appended to every query, e.g. "Brasil"
	GeocoderCountryCode string // countrycodes restriction, e.g. "br"
	GeocoderTimeout     time.Duration
	GeocoderUserAgent   string

	// Filters.
	LatestYear     int // 0 means the current year
	DefaultCulture string

	// Optional snapshot publishing; disabled when KafkaBrokers is empty.
	KafkaBrokers       []string
	KafkaSnapshotTopic string
}

// KafkaEnabled reports whether snapshots should be published.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	apiTimeout, err := parseTimeout("API_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	geocoderTimeout, err := parseTimeout("GEOCODER_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	latestYear, err := parseLatestYear()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		APIBaseURL: strings.TrimRight(sharedcfg.EnvOrDefault("API_BASE_URL", "http://localhost:8000/api"), "/"),
		APITimeout: apiTimeout,

		GeocoderURL:         strings.TrimRight(sharedcfg.EnvOrDefault("GEOCODER_URL", "https://nominatim.openstreetmap.org"), "/"),
		GeocoderCountry:     sharedcfg.EnvOrDefault("GEOCODER_COUNTRY", "Brasil"),
		GeocoderCountryCode: sharedcfg.EnvOrDefault("GEOCODER_COUNTRY_CODE", "br"),
		GeocoderTimeout:     geocoderTimeout,
		GeocoderUserAgent:   sharedcfg.EnvOrDefault("GEOCODER_USER_AGENT", "crop-production-dashboard/1.0"),

		LatestYear:     latestYear,
		DefaultCulture: sharedcfg.EnvOrDefault("DEFAULT_CULTURE", "2713"),

		KafkaBrokers:       sharedcfg.ParseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaSnapshotTopic: sharedcfg.EnvOrDefault("KAFKA_SNAPSHOT_TOPIC", "crop-dashboard-snapshots"),
	}

	if _, err := url.ParseRequestURI(cfg.APIBaseURL); err != nil {
		return nil, fmt.Errorf("invalid API_BASE_URL: %w", err)
	}
	if _, err := url.ParseRequestURI(cfg.GeocoderURL); err != nil {
		return nil, fmt.Errorf("invalid GEOCODER_URL: %w", err)
	}

	return cfg, nil
}

// parseTimeout reads a non-negative duration. Zero disables the timeout.
func parseTimeout(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseLatestYear() (int, error) {
	s := os.Getenv("LATEST_YEAR")
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1900 {
		return 0, errors.New("invalid LATEST_YEAR")
	}
	return n, nil
}
