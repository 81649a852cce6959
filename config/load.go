package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

const DefaultConfigPath = "config.yaml"

// Load reads the config file at path (if present) and overlays environment
// variables. A missing file is not an error: env and defaults apply.
func Load(path string) (*AppConfig, error) {
	var cfg AppConfig
	if path == "" {
		path = DefaultConfigPath
	}
	if _, err := os.Stat(path); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, err
		}
		return &cfg, nil
	}
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
