package sefaz

import "errors"

// Environment codes used in the tpAmb field of every request
const (
	EnvironmentProduction   = "1"
	EnvironmentHomologation = "2"
)

// Config holds the connection settings for the SEFAZ national environment
type Config struct {
	// BaseURL is the service endpoint, production or homologation
	BaseURL string
	// Environment is the tpAmb value sent on every request
	Environment string
	// UFAuthor is the IBGE code of the authoring state, 91 for the
	// national environment
	UFAuthor string
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
}

// Errors for SEFAZ configuration
var (
	ErrConfigMissingBaseURL     = errors.New("sefaz: base URL is required")
	ErrConfigInvalidEnvironment = errors.New("sefaz: environment must be 1 (production) or 2 (homologation)")
)

// NewConfig creates a configuration with defaults for the national environment
func NewConfig(baseURL string) *Config {
	return &Config{
		BaseURL:        baseURL,
		Environment:    EnvironmentProduction,
		UFAuthor:       "91",
		TimeoutSeconds: 30,
	}
}

// Validate checks the configuration is usable
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrConfigMissingBaseURL
	}
	if c.Environment != EnvironmentProduction && c.Environment != EnvironmentHomologation {
		return ErrConfigInvalidEnvironment
	}
	return nil
}
