package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// envVarPattern matches ${VAR_NAME} patterns in strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvVars replaces ${VAR} patterns with environment variable
// values. Unset variables are left unchanged.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if val, ok := os.LookupEnv(match[2 : len(match)-1]); ok {
			return val
		}
		return match
	})
}

// Load reads the config file at path and returns it merged over the
// defaults. A missing file yields defaults only, so first runs work
// without any setup. The API key field supports ${ENV_VAR} references so
// secrets stay out of the file.
func Load(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(&cfg)
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	applyEnvOverrides(&cfg)
	cfg.API.Key = expandEnvVars(cfg.API.Key)
	return cfg, nil
}

// applyEnvOverrides lets the usual environment variables win over the
// file for quick one-off runs.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("VALET_API_HOSTNAME"); v != "" {
		cfg.API.Hostname = v
	}
	if v := os.Getenv("VALET_API_KEY"); v != "" {
		cfg.API.Key = v
	}
	if v := os.Getenv("VALET_MODEL"); v != "" {
		cfg.API.Model = v
	}
}
