package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	appenv "github.com/garrettladley/pulse/internal/env"
	"github.com/garrettladley/pulse/internal/xslog"
)

type Config struct {
	Env       appenv.Environment `env:"ENV" envDefault:"production"`
	Whoop     Whoop              `envPrefix:"WHOOP_"`
	DBPath    string             `env:"PULSE_DB_PATH"`
	URLScheme string             `env:"PULSE_URL_SCHEME" envDefault:"pulse"`
	CacheTTL  time.Duration      `env:"PULSE_CACHE_TTL" envDefault:"6h"`
	RedisURL  string             `env:"REDIS_URL"`
	LogLevel  xslog.Level        `env:"LOG_LEVEL" envDefault:"info"`
}

type Whoop struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	RedirectURL  string `env:"REDIRECT_URL" envDefault:"http://127.0.0.1:8765/callback"`
}

func Read() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, err
	}
	if !cfg.Env.Valid() {
		return Config{}, fmt.Errorf("invalid ENV %q", cfg.Env)
	}
	return cfg, nil
}

// HasCredentials reports whether the WHOOP OAuth client is configured.
func (c Config) HasCredentials() bool {
	return c.Whoop.ClientID != "" && c.Whoop.ClientSecret != ""
}
