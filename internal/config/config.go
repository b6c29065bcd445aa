// Package config loads runtime settings from the environment.
//
// Every field has a SNOOZE_ prefixed variable and a default, so the client
// starts against the hosted API with no configuration at all. CLI flags in
// cmd/snooze override individual fields after Load.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the settings for both the rendering surface and the
// development API.
type Config struct {
	APIURL     string        `env:"API_URL"     envDefault:"https://hack-or-snooze-v3.herokuapp.com"`
	Port       int           `env:"PORT"        envDefault:"8080"`
	SessionDB  string        `env:"SESSION_DB"  envDefault:"data/session.db"`
	APITimeout time.Duration `env:"API_TIMEOUT" envDefault:"10s"`
	StoryLimit int           `env:"STORY_LIMIT" envDefault:"10"`
	Debug      bool          `env:"DEBUG"`

	DevAPIPort   int    `env:"DEVAPI_PORT"   envDefault:"5000"`
	DevAPISecret string `env:"DEVAPI_SECRET" envDefault:"snooze-development-secret"`
}

// Load parses the process environment.
func Load() (Config, error) {
	return parse(env.Options{Prefix: "SNOOZE_"})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the rest of the program cannot work with.
func (c Config) Validate() error {
	switch {
	case c.APIURL == "":
		return fmt.Errorf("config: API URL is empty")
	case c.Port <= 0 || c.Port > 65535:
		return fmt.Errorf("config: invalid port %d", c.Port)
	case c.DevAPIPort <= 0 || c.DevAPIPort > 65535:
		return fmt.Errorf("config: invalid dev API port %d", c.DevAPIPort)
	case c.APITimeout <= 0:
		return fmt.Errorf("config: API timeout must be positive, got %s", c.APITimeout)
	case c.StoryLimit <= 0:
		return fmt.Errorf("config: story limit must be positive, got %d", c.StoryLimit)
	case c.SessionDB == "":
		return fmt.Errorf("config: session database path is empty")
	}
	return nil
}
