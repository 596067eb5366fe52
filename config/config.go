package config

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultAPIURL is the backend endpoint used when none is configured.
const DefaultAPIURL = "http://localhost:8080/api/dashboard"

// Config holds all application configuration.
type Config struct {
	// Environment
	IsProd bool `json:"is_prod"`

	// Backend polling
	Dashboard DashboardConfig `json:"dashboard"`

	// Dashboard HTTP server
	Server ServerConfig `json:"server"`
}

// DashboardConfig holds the backend endpoint and polling configuration.
type DashboardConfig struct {
	APIURL       string        `json:"api_url"`
	PollInterval time.Duration `json:"poll_interval"`
	HTTPTimeout  time.Duration `json:"http_timeout"`
	// DiscardStale drops responses older than the newest applied one when
	// polling cycles overlap. Off by default: the last response to arrive wins.
	DiscardStale bool `json:"discard_stale"`
}

// ServerConfig holds the dashboard server configuration.
type ServerConfig struct {
	Enabled bool `json:"enabled"`
	Port    int  `json:"port"`
}

// Clone creates a copy of the config.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

// ToJSON serializes the config to JSON.
func (c *Config) ToJSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// Defaults returns a config with hardcoded default values.
func Defaults() *Config {
	return &Config{
		IsProd: false,
		Dashboard: DashboardConfig{
			APIURL:       DefaultAPIURL,
			PollInterval: 5 * time.Second,
			HTTPTimeout:  30 * time.Second,
			DiscardStale: false,
		},
		Server: ServerConfig{
			Enabled: true,
			Port:    3000,
		},
	}
}

// LoadDotEnv loads variables from a .env file in the working directory if one
// exists. Variables already set in the environment take precedence.
func LoadDotEnv() error {
	if _, err := os.Stat(".env"); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load()
}

// ReloadDotEnv re-reads the .env file, overriding variables that are already
// set. A missing file is not an error.
func ReloadDotEnv() error {
	if _, err := os.Stat(".env"); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Overload()
}

// Load loads configuration from environment variables with defaults.
func Load() *Config {
	d := Defaults()
	return &Config{
		IsProd: envBool("STAGE", "PROD"),

		Dashboard: DashboardConfig{
			APIURL:       envString("DASHBOARD_API_URL", d.Dashboard.APIURL),
			PollInterval: envDuration("DASHBOARD_POLL_INTERVAL", d.Dashboard.PollInterval),
			HTTPTimeout:  envDuration("DASHBOARD_HTTP_TIMEOUT", d.Dashboard.HTTPTimeout),
			DiscardStale: envBoolDefault("DASHBOARD_DISCARD_STALE", d.Dashboard.DiscardStale),
		},

		Server: ServerConfig{
			Enabled: envBoolDefault("DASHBOARD_SERVER_ENABLED", d.Server.Enabled),
			Port:    envInt("DASHBOARD_PORT", d.Server.Port),
		},
	}
}

// Helper functions for parsing environment variables

func envString(key, defaultVal string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}

func envBool(key, trueValue string) bool {
	return strings.EqualFold(strings.TrimSpace(os.Getenv(key)), trueValue)
}

func envBoolDefault(key string, defaultVal bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultVal
	}
	return strings.EqualFold(v, "true") || strings.EqualFold(v, "1") || strings.EqualFold(v, "yes")
}
