// Package config resolves runtime settings for the estate client.
//
// Precedence, lowest to highest: built-in defaults, a .env file, the process
// environment. The .env file is optional; its path comes from ESTATE_ENV_FILE
// and defaults to ./.env.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvAPIURL   = "ESTATE_API_URL"
	EnvHome     = "ESTATE_HOME"
	EnvLogFile  = "ESTATE_LOG_FILE"
	EnvLogLevel = "ESTATE_LOG_LEVEL"
	EnvTimeout  = "ESTATE_TIMEOUT"
	EnvEnvFile  = "ESTATE_ENV_FILE"
	EnvToken    = "ESTATE_TOKEN"
)

// DefaultAPIURL is where the backend listens in local development.
const DefaultAPIURL = "http://localhost:8000"

// Config holds runtime settings.
type Config struct {
	// APIURL is the backend base URL.
	APIURL string
	// Home is the state directory (session file, logs). Defaults to ~/.estate.
	Home string
	// LogFile is the log destination. "-" disables logging.
	LogFile string
	// LogLevel is a zap level name.
	LogLevel string
	// Timeout bounds each API request.
	Timeout time.Duration
	// Token is a bearer token that takes precedence over the saved session.
	Token string
}

// SessionFile is where the client keeps its cookies and token.
func (c *Config) SessionFile() string {
	return filepath.Join(c.Home, "session.json")
}

// LogPath returns the log file, or "" when logging is disabled.
func (c *Config) LogPath() string {
	if c.LogFile == "-" {
		return ""
	}
	return c.LogFile
}

// Load builds a Config from defaults, the optional .env file and the
// environment.
func Load() (*Config, error) {
	envFile := os.Getenv(EnvEnvFile)
	if envFile == "" {
		envFile = ".env"
	}
	// godotenv.Load never overrides variables that are already set.
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config.Load: read %s: %w", envFile, err)
	}
	return fromEnv(os.Getenv)
}

func fromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		APIURL:   DefaultAPIURL,
		LogLevel: "info",
		Timeout:  2 * time.Minute,
	}

	if v := strings.TrimSpace(getenv(EnvAPIURL)); v != "" {
		cfg.APIURL = strings.TrimRight(v, "/")
	}
	u, err := url.Parse(cfg.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("config: %s must be an absolute http(s) URL, got %q", EnvAPIURL, cfg.APIURL)
	}

	cfg.Home = getenv(EnvHome)
	if cfg.Home == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("config: get home dir: %w", err)
		}
		cfg.Home = filepath.Join(home, ".estate")
	}

	cfg.LogFile = getenv(EnvLogFile)
	if cfg.LogFile == "" {
		cfg.LogFile = filepath.Join(cfg.Home, "estate.log")
	}
	if v := getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}

	if v := getenv(EnvTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("config: %s: %w", EnvTimeout, err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("config: %s must be positive, got %s", EnvTimeout, d)
		}
		cfg.Timeout = d
	}
	cfg.Token = strings.TrimSpace(getenv(EnvToken))
	return cfg, nil
}
