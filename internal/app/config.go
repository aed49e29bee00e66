package app

import (
	"fmt"
	"time"

	coreconfig "github.com/m3rciful/citybot/core/config"
	coredatabase "github.com/m3rciful/citybot/core/database"
	tgsender "github.com/m3rciful/citybot/core/telegram/sender"
	"github.com/m3rciful/citybot/internal/citydata"
)

// SessionConfig controls conversation expiry. IdleTTL 0 keeps sessions for
// the lifetime of the process.
type SessionConfig struct {
	IdleTTL      time.Duration `yaml:"idle_ttl" envconfig:"SESSION_IDLE_TTL" validate:"gte=0"`
	ReapInterval time.Duration `yaml:"reap_interval" envconfig:"SESSION_REAP_INTERVAL" validate:"gte=0"`
}

// SenderConfig sizes the outbound message worker pool.
type SenderConfig struct {
	Workers    int `yaml:"workers" envconfig:"SENDER_WORKERS" validate:"gte=0"`
	QueueSize  int `yaml:"queue_size" envconfig:"SENDER_QUEUE_SIZE" validate:"gte=0"`
	MaxRetries int `yaml:"max_retries" envconfig:"SENDER_MAX_RETRIES" validate:"gte=0"`
}

// HTTPConfig enables the ops endpoints when Listen is set.
type HTTPConfig struct {
	Listen string `yaml:"listen" envconfig:"HTTP_LISTEN"`
}

// Config is the full citybot configuration.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Data     citydata.Config     `yaml:"data"`
	Database coredatabase.Config `yaml:"database"`
	Session  SessionConfig       `yaml:"session"`
	Sender   SenderConfig        `yaml:"sender"`
	HTTP     HTTPConfig          `yaml:"http"`
}

// CoreConfig exposes the embedded core settings.
func (c *Config) CoreConfig() *coreconfig.Config { return &c.Config }

// LoadConfig reads path, applies environment overrides and validates.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.Decode(path, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates every section and fills defaults.
func (c *Config) Normalize() error {
	if err := coreconfig.Normalize(&c.Config); err != nil {
		return err
	}
	if err := c.Data.Normalize(); err != nil {
		return err
	}
	if err := coreconfig.Validate(c); err != nil {
		return err
	}
	if c.Data.NeedsDatabase() {
		if c.Database.Host == "" || c.Database.Name == "" {
			return fmt.Errorf("database.host and database.name are required when data.source is postgres or data.seed is on")
		}
		if c.Database.Port == "" {
			c.Database.Port = "5432"
		}
	}
	return nil
}

const defaultSendRetries = 2

// SenderOptions maps the sender section onto dispatcher options; zero values
// fall back to the dispatcher defaults.
func (c *Config) SenderOptions() tgsender.Options {
	retries := c.Sender.MaxRetries
	if retries == 0 {
		retries = defaultSendRetries
	}
	return tgsender.Options{
		Workers:    c.Sender.Workers,
		QueueSize:  c.Sender.QueueSize,
		MaxRetries: retries,
	}
}
