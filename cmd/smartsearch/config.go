package main

import (
	"fmt"

	"github.com/kbukum/smartsearch/config"
	"github.com/kbukum/smartsearch/observability"
	"github.com/kbukum/smartsearch/searchinput"
	"github.com/kbukum/smartsearch/server"
	"github.com/kbukum/smartsearch/validation"
)

const serviceName = "smartsearch"

// Config is the smartsearch process configuration. Provider credentials are
// read from providers.<name>.api_key or PROVIDERS_<NAME>_API_KEY.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
	searchinput.Config   `yaml:",inline" mapstructure:",squash"`
	Server               server.Config        `yaml:"server" mapstructure:"server"`
	Observability        observability.Config `yaml:"observability" mapstructure:"observability"`
}

// ApplyDefaults fills every section's defaults.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = serviceName
	}
	c.ServiceConfig.ApplyDefaults()
	c.Config.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Observability.ApplyDefaults()
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Config.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := validation.Validate(&c.Observability); err != nil {
		return fmt.Errorf("observability: %w", err)
	}
	return nil
}

// loadConfig reads config.yml and .env from the standard search paths, or
// from the given files when set, then applies defaults and validates.
func loadConfig(configFile, envFile string) (*Config, error) {
	var opts []config.LoaderOption
	if configFile != "" {
		opts = append(opts, config.WithConfigFile(configFile))
	}
	if envFile != "" {
		opts = append(opts, config.WithEnvFile(envFile))
	}

	cfg := &Config{}
	if err := config.LoadConfig(serviceName, cfg, opts...); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
