package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths holds the resolved filesystem locations valet uses.
type Paths struct {
	Config    string // config file
	DB        string // default sqlite database
	Workspace string // default tool workspace
}

// ResolvePaths returns the standard locations under ~/.valet, honoring
// VALET_HOME as an override.
func ResolvePaths() (Paths, error) {
	home := os.Getenv("VALET_HOME")
	if home == "" {
		dir, err := os.UserHomeDir()
		if err != nil {
			return Paths{}, fmt.Errorf("resolving home directory: %w", err)
		}
		home = filepath.Join(dir, ".valet")
	}

	return Paths{
		Config:    filepath.Join(home, "config.yaml"),
		DB:        filepath.Join(home, "valet.db"),
		Workspace: filepath.Join(home, "workspace"),
	}, nil
}
