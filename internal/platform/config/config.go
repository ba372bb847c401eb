// Package config holds all service configuration, loaded from environment
// variables with a .env fallback for local development.
package config

import (
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Addr     string `env:"SFTGATE_ADDR" envDefault:":8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// ContainerPrefix is prepended to every derived container name.
	ContainerPrefix string `env:"CONTAINER_PREFIX" envDefault:"sft-"`

	// MaxUploadSizeBytes is the largest accepted declared upload size.
	MaxUploadSizeBytes int64 `env:"MAX_UPLOAD_SIZE_BYTES" envDefault:"52428800"` // 50MB

	// AllowedExtensions overrides the built-in upload extension allow-list
	// when set. Entries are normalized to lowercase.
	AllowedExtensions []string `env:"ALLOWED_EXTENSIONS" envSeparator:","`

	JWTSigningKey string        `env:"JWT_SIGNING_KEY" envDefault:"dev-secret-key-change-in-production"`
	JWTIssuer     string        `env:"JWT_ISSUER" envDefault:"https://sftgate.local"`
	JWTAudience   string        `env:"JWT_AUDIENCE" envDefault:"sftgate-api"`
	TokenTTL      time.Duration `env:"TOKEN_TTL" envDefault:"15m"`

	// PostgresURL switches the registry to the postgres store when set;
	// empty keeps the in-memory table store for local runs.
	PostgresURL string `env:"POSTGRES_URL"`

	RequestTimeout   time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout  time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	AuditBufferSize  int           `env:"AUDIT_BUFFER_SIZE" envDefault:"256"`
	ProvisionerDelay time.Duration `env:"PROVISIONER_POLL_INTERVAL" envDefault:"2s"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	// Attempt to load .env file for local development.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
