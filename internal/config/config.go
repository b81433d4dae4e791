package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/diegoclair/untis-cancellation-bot/internal/domain"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	SlackBotToken      string `envconfig:"SLACK_BOT_TOKEN" required:"true"`
	SlackSigningSecret string `envconfig:"SLACK_SIGNING_SECRET"`
	DatabasePath       string `envconfig:"DATABASE_PATH" default:"./untis.db"`
	Port               string `envconfig:"PORT" default:"3000"`
	LogLevel           string `envconfig:"LOG_LEVEL" default:"info"` // debug|info|warn|error

	// Left empty, these fall back to the domain defaults in Load.
	CycleSchedule string        `envconfig:"CYCLE_SCHEDULE"`
	TimeZone      string        `envconfig:"TZ_NAME" default:"Europe/Berlin"`
	CycleWorkers  int           `envconfig:"CYCLE_WORKERS"`
	FetchTimeout  time.Duration `envconfig:"FETCH_TIMEOUT"`

	// Left empty, the untis client applies its own defaults.
	UntisClientName        string `envconfig:"UNTIS_CLIENT_NAME"`
	UntisSchoolSearchURL   string `envconfig:"UNTIS_SCHOOL_SEARCH_URL"`
	UntisRequestsPerMinute int    `envconfig:"UNTIS_REQUESTS_PER_MINUTE"`
}

// Load reads an optional .env file and then the environment into Config.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if _, err := time.LoadLocation(cfg.TimeZone); err != nil {
		return nil, fmt.Errorf("invalid TZ_NAME %q: %w", cfg.TimeZone, err)
	}
	if cfg.CycleWorkers < 0 {
		return nil, fmt.Errorf("CYCLE_WORKERS must be at least 1, got %d", cfg.CycleWorkers)
	}
	if cfg.FetchTimeout < 0 {
		return nil, fmt.Errorf("FETCH_TIMEOUT must be positive, got %s", cfg.FetchTimeout)
	}

	if cfg.CycleSchedule == "" {
		cfg.CycleSchedule = domain.DefaultCycleSchedule
	}
	if cfg.CycleWorkers == 0 {
		cfg.CycleWorkers = domain.DefaultCycleWorkers
	}
	if cfg.FetchTimeout == 0 {
		cfg.FetchTimeout = domain.DefaultFetchTimeout
	}

	return &cfg, nil
}

// Location returns the time zone the cycle schedule is evaluated in.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}
