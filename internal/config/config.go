package config

import (
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/fx"

	"github.com/emergent-company/ldpgraph/pkg/ldp"
)

var Module = fx.Module("config",
	fx.Provide(NewConfig),
)

// Config holds all application configuration
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"local"`

	// Namespace prefix for minted PIDs ("<namespace>:<uuid>")
	PIDNamespace string `env:"PID_NAMESPACE" envDefault:"changeme"`

	Fedora FedoraConfig
	Stub   StubConfig
	Otel   OtelConfig
}

// FedoraConfig holds repository connection settings
type FedoraConfig struct {
	URL       string        `env:"FEDORA_URL" envDefault:"http://localhost:8080/rest"`
	User      string        `env:"FEDORA_USER" envDefault:"fedoraAdmin"`
	Password  string        `env:"FEDORA_PASSWORD" envDefault:""`
	Timeout   time.Duration `env:"FEDORA_TIMEOUT" envDefault:"30s"`
	RateLimit float64       `env:"FEDORA_RATE_LIMIT" envDefault:"0"` // requests per second, 0 = unlimited
	RateBurst int           `env:"FEDORA_RATE_BURST" envDefault:"10"`
}

// ClientConfig converts the settings for the LDP client.
func (f FedoraConfig) ClientConfig() ldp.Config {
	return ldp.Config{
		BaseURL:   f.URL,
		User:      f.User,
		Password:  f.Password,
		Timeout:   f.Timeout,
		RateLimit: f.RateLimit,
		RateBurst: f.RateBurst,
	}
}

// StubConfig holds settings for the in-memory repository server
type StubConfig struct {
	Port            int           `env:"STUB_PORT" envDefault:"8080"`
	Address         string        `env:"STUB_ADDRESS" envDefault:"0.0.0.0"`
	BasePath        string        `env:"STUB_BASE_PATH" envDefault:"/rest"`
	ReadTimeout     time.Duration `env:"STUB_READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"STUB_WRITE_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Addr returns the listen address.
func (s StubConfig) Addr() string {
	return net.JoinHostPort(s.Address, strconv.Itoa(s.Port))
}

// NewConfig parses configuration from the environment.
func NewConfig(log *slog.Logger) (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	log.Info("configuration loaded",
		slog.String("environment", cfg.Environment),
		slog.String("fedora_url", cfg.Fedora.URL),
		slog.String("pid_namespace", cfg.PIDNamespace),
	)

	return cfg, nil
}
