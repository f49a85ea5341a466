package config

import (
	"fmt"
	"net"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Configuration struct {
	Server struct {
		Host string `envconfig:"SERVER_HOST" default:"0.0.0.0"`
		Port string `envconfig:"SERVER_PORT" default:"8080"`
	}
	CORS struct {
		AllowOrigins string `envconfig:"CORS_ALLOW_ORIGINS" default:"*"`
	}
	Board struct {
		LongPollTimeout time.Duration `envconfig:"LONG_POLL_TIMEOUT" default:"30s"`
		MaxWindow       int64         `envconfig:"MAX_WINDOW" default:"64"`
	}
	Log struct {
		Level  string `envconfig:"LOG_LEVEL" default:"info"`
		Pretty bool   `envconfig:"LOG_PRETTY" default:"false"`
	}
	StaticDir string `envconfig:"STATIC_DIR" default:"./static"`
}

// InitConfig reads the configuration from the environment.
func InitConfig() (*Configuration, error) {
	var config Configuration
	if err := envconfig.Process("", &config); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	if config.Board.LongPollTimeout <= 0 {
		return nil, fmt.Errorf("LONG_POLL_TIMEOUT must be positive, got %s", config.Board.LongPollTimeout)
	}
	if config.Board.MaxWindow <= 0 {
		return nil, fmt.Errorf("MAX_WINDOW must be positive, got %d", config.Board.MaxWindow)
	}
	return &config, nil
}

func (c *Configuration) Addr() string {
	return net.JoinHostPort(c.Server.Host, c.Server.Port)
}
