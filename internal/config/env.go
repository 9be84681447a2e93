package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

// Settings are process-level options read from the environment.
type Settings struct {
	ConfigPath   string        `env:"ALMANAC_CONFIG"        envDefault:"config.yml"`
	DBPath       string        `env:"ALMANAC_DB"            envDefault:"data/almanac.db"`
	APIPort      int           `env:"ALMANAC_API_PORT"      envDefault:"8080"`
	AdminKey     string        `env:"ALMANAC_ADMIN_KEY"`
	NATSURL      string        `env:"ALMANAC_NATS_URL"`
	NATSSubject  string        `env:"ALMANAC_NATS_SUBJECT"  envDefault:"almanac.broadcast"`
	Seed         int64         `env:"ALMANAC_SEED"          envDefault:"42"`
	TickInterval time.Duration `env:"ALMANAC_TICK_INTERVAL" envDefault:"50ms"`
	LogLevel     string        `env:"ALMANAC_LOG_LEVEL"     envDefault:"info"`
	CORSOrigins  []string      `env:"ALMANAC_CORS_ORIGINS"  envSeparator:","`
}

// ClientSettings configure the admin CLI.
type ClientSettings struct {
	APIURL   string        `env:"ALMANAC_API_URL"   envDefault:"http://localhost:8080"`
	AdminKey string        `env:"ALMANAC_ADMIN_KEY"`
	Timeout  time.Duration `env:"ALMANAC_TIMEOUT"   envDefault:"10s"`
}

// LoadSettings parses Settings from the environment.
func LoadSettings() (Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return Settings{}, fmt.Errorf("parse env: %w", err)
	}
	return s, nil
}

// LoadClientSettings parses ClientSettings from the environment.
func LoadClientSettings() (ClientSettings, error) {
	var s ClientSettings
	if err := env.Parse(&s); err != nil {
		return ClientSettings{}, fmt.Errorf("parse env: %w", err)
	}
	return s, nil
}

// Level converts LogLevel to a slog level, defaulting to info.
func (s Settings) Level() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
