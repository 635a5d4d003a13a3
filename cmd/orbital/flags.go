package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/orbital/internal/logger"
)

var (
	configFile string
	deviceName string
	workers    int64
	logLevel   string
	logFormat  string
	debug      bool
)

func deviceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "device",
			Usage:       "memory device (auto, host, emulated, cuda)",
			Value:       "auto",
			Sources:     cli.EnvVars("ORBITAL_DEVICE"),
			Destination: &deviceName,
		},
		&cli.Int64Flag{
			Name:        "workers",
			Aliases:     []string{"j"},
			Usage:       "AO kernel workers (0 uses every CPU)",
			Destination: &workers,
		},
		&cli.StringFlag{
			Name:        "config",
			Usage:       "config file (default $XDG_CONFIG_HOME/orbital/config.yaml)",
			Sources:     cli.EnvVars("ORBITAL_CONFIG"),
			Destination: &configFile,
		},
	}
}

func loggingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json, text)",
			Value:       "pretty",
			Destination: &logFormat,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "enable debug logging (shorthand for --log-level=debug)",
			Destination: &debug,
		},
	}
}

// setup loads the config file, applies it under any explicit flags and
// attaches the resulting logger to ctx.
func setup(ctx context.Context, cmd *cli.Command) (context.Context, Config, error) {
	cfg, err := LoadConfig(configFile)
	if err != nil {
		return ctx, cfg, cli.Exit("error: "+err.Error(), 1)
	}
	applyGlobalConfig(cmd, cfg)
	level := logLevel
	if debug {
		level = "debug"
	}
	log, err := logger.Open(os.Stderr, logFormat, level)
	if err != nil {
		return ctx, cfg, cli.Exit("error: "+err.Error(), 1)
	}
	return logger.WithContext(ctx, log), cfg, nil
}
