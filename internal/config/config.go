package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	BotToken     string `envconfig:"BOT_TOKEN" required:"true"`
	DBPath       string `envconfig:"DB_PATH" default:"./data/reminders.db"`
	PollInterval int    `envconfig:"POLL_INTERVAL_SECONDS" default:"60"` // scheduler tick period
	SendTimeout  int    `envconfig:"SEND_TIMEOUT_SECONDS" default:"10"`  // outbound send deadline
	LogLevel     string `envconfig:"LOG_LEVEL" default:"info"`           // debug|info|warn|error
	HTTPAddr     string `envconfig:"HTTP_ADDR" default:":8080"`          // healthz
}

// Load reads environment variables into Config.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// PollEvery returns the scheduler tick period as a duration.
func (c Config) PollEvery() time.Duration {
	return time.Duration(c.PollInterval) * time.Second
}

// SendDeadline returns the outbound HTTP timeout as a duration.
func (c Config) SendDeadline() time.Duration {
	return time.Duration(c.SendTimeout) * time.Second
}
