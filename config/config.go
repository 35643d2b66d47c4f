package config

import (
	"errors"
	"io"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

var DefaultConfig = Config{
	Server: DefaultServerConfig,
}

type Config struct {
	Server ServerConfig `yaml:"server"`
}

// Load reads the yaml file at path over DefaultConfig and then applies
// environment overrides, including those from a .env file.
// A missing config file leaves the defaults in place.
func Load(path string) (Config, error) {
	cfg := DefaultConfig
	f, err := os.Open(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return cfg, err
		}
	} else {
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return cfg, err
		}
	}
	_ = godotenv.Load()
	cfg.Server.ApplyEnv(os.LookupEnv)
	return cfg, nil
}
