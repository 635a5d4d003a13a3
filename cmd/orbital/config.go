package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Config represents the orbital configuration file
// (~/.config/orbital/config.yaml). All fields are pointers so we can
// distinguish "not set" from zero values.
type Config struct {
	Device  *string `yaml:"device"`
	Workers *int64  `yaml:"workers"`

	// Output
	OutputFormat *string `yaml:"output_format"`
	LogLevel     *string `yaml:"log_level"`
	LogFormat    *string `yaml:"log_format"`

	// Server
	ServerAddress *string `yaml:"server_address"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "orbital", "config.yaml")
}

// LoadConfig reads the config file at path, or the default location when
// path is empty. A missing default file yields a zero Config; a missing
// explicit file or an unknown key is an error.
func LoadConfig(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = configPath()
	}
	if path == "" {
		return Config{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// applyGlobalConfig applies config file defaults to the root flags when the
// corresponding CLI flag was not explicitly set.
func applyGlobalConfig(c *cli.Command, cfg Config) {
	if cfg.Device != nil && !c.IsSet("device") {
		deviceName = *cfg.Device
	}
	if cfg.Workers != nil && !c.IsSet("workers") {
		workers = *cfg.Workers
	}
	if cfg.LogLevel != nil && !c.IsSet("log-level") {
		logLevel = *cfg.LogLevel
	}
	if cfg.LogFormat != nil && !c.IsSet("log-format") {
		logFormat = *cfg.LogFormat
	}
}

func applyEvalConfig(c *cli.Command, cfg Config, format *string) {
	if cfg.OutputFormat != nil && !c.IsSet("format") {
		*format = *cfg.OutputFormat
	}
}

func applyServeConfig(c *cli.Command, cfg Config, addr *string) {
	if cfg.ServerAddress != nil && !c.IsSet("addr") {
		*addr = *cfg.ServerAddress
	}
}
