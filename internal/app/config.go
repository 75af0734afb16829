package app

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`

	APIURL       string        `envconfig:"API_URL" default:"http://localhost:5000"`
	APITimeout   time.Duration `envconfig:"API_TIMEOUT" default:"10s"`
	APIRateLimit float64       `envconfig:"API_RATE_LIMIT" default:"20"`

	RedisAddr     string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	SessionSecret string        `envconfig:"SESSION_SECRET" required:"true"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"720h"`

	CSRFSecret string `envconfig:"CSRF_SECRET" required:"true"`

	BannerTTL        time.Duration `envconfig:"BANNER_TTL" default:"3s"`
	WorkspaceIdleTTL time.Duration `envconfig:"WORKSPACE_IDLE_TTL" default:"30m"`
	CatalogCacheTTL  time.Duration `envconfig:"CATALOG_CACHE_TTL" default:"5m"`
	Locale           string        `envconfig:"LOCALE" default:"en-US"`
}

// LoadConfig reads configuration from environment variables. A .env file in
// the working directory is loaded first when present; variables already set
// in the environment win.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.SessionSecret == "" {
		return nil, errors.New("session secret must be provided")
	}
	if cfg.CSRFSecret == "" {
		return nil, errors.New("csrf secret must be provided")
	}
	if cfg.APIURL == "" {
		return nil, errors.New("api url must be provided")
	}
	if cfg.BannerTTL <= 0 {
		return nil, errors.New("banner ttl must be positive")
	}
	return &cfg, nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

const testModeEnv = "CRUDIO_TEST_MODE"

var testMode = sync.OnceValue(func() bool {
	return os.Getenv(testModeEnv) == "1"
})

// InTestMode reports whether the process runs under the test harness and
// should skip runtime side effects such as binding a port.
func InTestMode() bool {
	return testMode()
}
