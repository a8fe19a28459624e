package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/gratten/lapgpx/internal/gpx"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "LAPGPX_"

type Config struct {
	DBPath   string `yaml:"db_path" env:"DB_PATH"`
	HTTPAddr string `yaml:"http_addr" env:"HTTP_ADDR"`

	LogLevel  string `yaml:"log_level" env:"LOG_LEVEL"`
	LogFormat string `yaml:"log_format" env:"LOG_FORMAT"` // json | console

	// GPX output
	Creator           string `yaml:"creator" env:"CREATOR"`
	NamePrefix        string `yaml:"name_prefix" env:"NAME_PREFIX"`
	PrivateExtensions bool   `yaml:"private_extensions" env:"PRIVATE_EXTENSIONS"`
	RestLaps          string `yaml:"rest_laps" env:"REST_LAPS"` // off | empty | bridge
	Indent            bool   `yaml:"indent" env:"INDENT"`
}

func Default() Config {
	return Config{
		DBPath:    "./ownpath.db",
		HTTPAddr:  ":8080",
		LogLevel:  "info",
		LogFormat: "json",
		Creator:   "OwnPath",
		RestLaps:  "off",
		Indent:    true,
	}
}

// Load starts from Default, applies the YAML file at path (if path is not empty)
// and then LAPGPX_* environment variables.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.DBPath == "" {
		return errors.New("db path is required")
	}
	if c.LogFormat != "json" && c.LogFormat != "console" {
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	if _, err := gpx.ParseRestLapPolicy(c.RestLaps); err != nil {
		return err
	}
	return nil
}

// GPXOptions maps the output settings onto gpx.Options.
func (c Config) GPXOptions() gpx.Options {
	restLaps, _ := gpx.ParseRestLapPolicy(c.RestLaps)
	return gpx.Options{
		PrivateExtensions: c.PrivateExtensions,
		RestLaps:          restLaps,
		Creator:           c.Creator,
		NamePrefix:        c.NamePrefix,
	}
}
