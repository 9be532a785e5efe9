package config

import (
	"errors"
	"fmt"

	"github.com/kabar-api/kabar-api/internal/validation"
)

var (
	ErrMissingDatabaseURL = errors.New("DATABASE_URL (or CONNECTION_URI) is required")
	ErrMissingFIRMSToken  = errors.New("FIRMS_TOKEN (or TOKEN) is required for the fires pipeline")
)

// Validate checks field constraints. Database and token presence are
// checked separately because not every command needs them.
func (c *Config) Validate() error {
	return validation.Struct(c)
}

// RequireDatabase reports whether a database URL is configured.
func (c *Config) RequireDatabase() error {
	if c.Database.URL == "" {
		return ErrMissingDatabaseURL
	}
	return nil
}

// RequireFIRMSToken reports whether a FIRMS map key is configured.
func (c *Config) RequireFIRMSToken() error {
	if c.FIRMS.Token == "" {
		return ErrMissingFIRMSToken
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
