// Package config loads and validates the valet configuration file.
package config

import "fmt"

// Config is the root configuration.
type Config struct {
	API       APIConfig     `yaml:"api"`
	Session   SessionConfig `yaml:"session,omitempty"`
	Logging   LoggingConfig `yaml:"logging,omitempty"`
	Workspace string        `yaml:"workspace,omitempty"` // directory for tool state like memory
}

// APIConfig points at an OpenAI-compatible completion endpoint.
type APIConfig struct {
	Hostname string `yaml:"hostname"`          // e.g. https://api.openai.com
	Key      string `yaml:"key,omitempty"`     // supports ${ENV_VAR} references
	Model    string `yaml:"model"`             // model identifier
	Stream   bool   `yaml:"stream,omitempty"`  // use the streaming client
}

// SessionConfig controls chat persistence.
type SessionConfig struct {
	DBPath string   `yaml:"dbPath,omitempty"` // "" disables persistence
	Tags   []string `yaml:"tags,omitempty"`   // default tag set for new sessions
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level string `yaml:"level,omitempty"` // trace|debug|info|warn|error|silent
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		API: APIConfig{
			Hostname: "https://api.openai.com",
			Model:    "gpt-4o",
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.API.Hostname == "" {
		return fmt.Errorf("api.hostname is required")
	}
	if c.API.Model == "" {
		return fmt.Errorf("api.model is required")
	}
	return nil
}
