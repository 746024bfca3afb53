package config

import (
	"os"

	"github.com/mcuadros/go-defaults"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Loader reads and validates a Config from a YAML file.
type Loader struct {
	filePath string
}

// NewLoader creates a configuration loader for the given file path.
func NewLoader(filePath string) *Loader {
	return &Loader{filePath: filePath}
}

// Load reads the file, unmarshals it, fills defaults for omitted fields
// and validates the result.
func (l *Loader) Load() (*Config, error) {
	if l.filePath == "" {
		return nil, errors.New("configuration file path is empty")
	}
	content, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %q", l.filePath)
	}
	if len(content) == 0 {
		return nil, errors.Errorf("configuration file %q is empty", l.filePath)
	}

	// Unmarshal over a fully defaulted struct: applying defaults after
	// unmarshaling cannot tell an explicitly configured zero from an
	// omitted field and would clobber it.
	cfg := Default()
	if err := yaml.Unmarshal(content, cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal config YAML from %q", l.filePath)
	}
	if cfg.Remote != nil {
		defaults.SetDefaults(cfg.Remote)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "config validation failed for %q", l.filePath)
	}
	return cfg, nil
}
