package config

import (
	"flag"
	"fmt"
	"io"
)

// CLIFlags holds command-line overrides. Nil fields were not given.
type CLIFlags struct {
	ConfigPath *string
	Port       *string
	LogLevel   *string
	Driver     *string
	DSN        *string
	NatsURL    *string
}

// ParseFlags parses serve flags. Only flags that appear in args are set.
func ParseFlags(args []string) (CLIFlags, error) {
	fs := flag.NewFlagSet("todolist", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		configPath, port, logLevel, driver, dsn, natsURL string
	)
	fs.StringVar(&configPath, "config", DefaultConfigFile, "path to YAML config file")
	fs.StringVar(&configPath, "c", DefaultConfigFile, "shorthand for --config")
	fs.StringVar(&port, "port", "", "HTTP listen port")
	fs.StringVar(&port, "p", "", "shorthand for --port")
	fs.StringVar(&logLevel, "log-level", "", "debug|info|warn|error")
	fs.StringVar(&driver, "db-driver", "", "postgres|sqlite")
	fs.StringVar(&dsn, "dsn", "", "PostgreSQL DSN")
	fs.StringVar(&natsURL, "nats-url", "", "NATS server URL")

	if err := fs.Parse(args); err != nil {
		return CLIFlags{}, fmt.Errorf("parse flags: %w", err)
	}

	var flags CLIFlags
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "config", "c":
			flags.ConfigPath = &configPath
		case "port", "p":
			flags.Port = &port
		case "log-level":
			flags.LogLevel = &logLevel
		case "db-driver":
			flags.Driver = &driver
		case "dsn":
			flags.DSN = &dsn
		case "nats-url":
			flags.NatsURL = &natsURL
		}
	})
	return flags, nil
}

// LoadWithCLI loads configuration with CLI flags on top of every other
// source. It returns the YAML path that was used.
func LoadWithCLI(flags CLIFlags) (*Config, string, error) {
	path := DefaultConfigFile
	if flags.ConfigPath != nil {
		path = *flags.ConfigPath
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		return nil, path, err
	}

	applyCLI(cfg, flags)
	if err := validate(cfg); err != nil {
		return nil, path, fmt.Errorf("config validate: %w", err)
	}
	return cfg, path, nil
}

func applyCLI(cfg *Config, flags CLIFlags) {
	if flags.Port != nil {
		cfg.Server.Port = *flags.Port
	}
	if flags.LogLevel != nil {
		cfg.Logging.Level = *flags.LogLevel
	}
	if flags.Driver != nil {
		cfg.Database.Driver = *flags.Driver
	}
	if flags.DSN != nil {
		cfg.Postgres.DSN = *flags.DSN
	}
	if flags.NatsURL != nil {
		cfg.NATS.URL = *flags.NatsURL
	}
}
