package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
)

// Config holds the service configuration parsed from environment variables.
type Config struct {
	HTTPAddr      string `env:"HTTP_ADDR"      envDefault:":8080"`
	MongoURI      string `env:"MONGO_URI"      envDefault:"mongodb://localhost:27017"`
	MongoDatabase string `env:"MONGO_DATABASE" envDefault:"account"`

	Token TokenConfig

	VerificationExpiresInDays int           `env:"VERIFICATION_EXPIRES_IN_DAYS" envDefault:"7"`
	PasswordResetExpiresIn    time.Duration `env:"PASSWORD_RESET_EXPIRES_IN"    envDefault:"1h"`

	AppVerifyURL        string `env:"APP_VERIFY_URL"         envDefault:"http://localhost:3000/verify-email"`
	AppPasswordResetURL string `env:"APP_PASSWORD_RESET_URL" envDefault:"http://localhost:3000/reset-password"`
}

// TokenConfig holds the session token signing configuration.
type TokenConfig struct {
	Secret    string        `env:"TOKEN_SECRET"`
	Issuer    string        `env:"TOKEN_ISSUER"     envDefault:"account-api"`
	ExpiresIn time.Duration `env:"TOKEN_EXPIRES_IN" envDefault:"15m"`
}

// New creates a Config instance from environment variables.
func New(logger *zerolog.Logger) *Config {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to parse environment variables")
	}

	if err := cfg.validate(); err != nil {
		logger.Fatal().Err(err).Msg("failed to validate configuration")
	}

	return &cfg
}

// validate checks if the configuration is valid.
func (c *Config) validate() error {
	if c.MongoURI == "" {
		return fmt.Errorf("missing MONGO_URI environment variable")
	}
	if c.Token.Secret == "" {
		return fmt.Errorf("missing TOKEN_SECRET environment variable")
	}
	if c.VerificationExpiresInDays <= 0 {
		return fmt.Errorf("VERIFICATION_EXPIRES_IN_DAYS must be positive")
	}

	return nil
}
