package config

import (
	"fmt"
	"os"
)

// LoadOptions names the files Load reads.
type LoadOptions struct {
	// ConfigPath overrides the default TOML path. An explicit path that does
	// not exist is an error.
	ConfigPath string
	// EnvFile is a dotenv file; empty means ".env" in the working directory.
	EnvFile string
}

// Load resolves and validates the configuration. Command-line flags are
// applied by the caller afterwards, followed by another Validate.
func Load(opts LoadOptions) (*Config, error) {
	cfg := Default()

	path := opts.ConfigPath
	if path == "" {
		path = DefaultConfigPath()
	} else if err := mustExist(path); err != nil {
		return nil, err
	}
	fc, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	if err := fc.Apply(cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := LoadDotEnv(envFile); err != nil {
		return nil, err
	}
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func mustExist(path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("config file: %w", err)
	}
	return nil
}
