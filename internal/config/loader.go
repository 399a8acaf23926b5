package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigFile is the path checked for YAML configuration.
	DefaultConfigFile = "todolist.yaml"
	// DefaultEnvFile is the path checked for dotenv variables.
	DefaultEnvFile = ".env"
)

// lookupFunc resolves an environment key; "" means unset.
type lookupFunc func(key string) string

// Load returns a Config using the hierarchy: defaults < YAML < .env < ENV.
// Both files are optional.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom is Load with an explicit YAML path. The .env file is read from
// the working directory.
func LoadFrom(yamlPath string) (*Config, error) {
	return loadFiles(yamlPath, DefaultEnvFile)
}

func loadFiles(yamlPath, envPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	dotenv, err := readDotEnv(envPath)
	if err != nil {
		return nil, fmt.Errorf("config dotenv: %w", err)
	}

	loadEnv(&cfg, envLookup(dotenv))

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: operator-supplied path
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// readDotEnv parses a dotenv file without touching the process environment.
// A missing file yields an empty map.
func readDotEnv(path string) (map[string]string, error) {
	vars, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return vars, nil
}

// envLookup prefers the process environment over dotenv values.
func envLookup(dotenv map[string]string) lookupFunc {
	return func(key string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return dotenv[key]
	}
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty, parseable values override the current config.
func loadEnv(cfg *Config, env lookupFunc) {
	setString(&cfg.AppEnv, env, "TODOLIST_APP_ENV")

	setString(&cfg.Server.Port, env, "TODOLIST_PORT")
	setString(&cfg.Server.CORSOrigin, env, "TODOLIST_CORS_ORIGIN")
	setDuration(&cfg.Server.RequestTimeout, env, "TODOLIST_REQUEST_TIMEOUT")
	setDuration(&cfg.Server.ShutdownTimeout, env, "TODOLIST_SHUTDOWN_TIMEOUT")

	setString(&cfg.Database.Driver, env, "TODOLIST_DB_DRIVER")
	setString(&cfg.Postgres.DSN, env, "DATABASE_URL")
	setInt32(&cfg.Postgres.MaxConns, env, "TODOLIST_PG_MAX_CONNS")
	setInt32(&cfg.Postgres.MinConns, env, "TODOLIST_PG_MIN_CONNS")
	setDuration(&cfg.Postgres.MaxConnLifetime, env, "TODOLIST_PG_MAX_CONN_LIFETIME")
	setDuration(&cfg.Postgres.MaxConnIdleTime, env, "TODOLIST_PG_MAX_CONN_IDLE_TIME")
	setDuration(&cfg.Postgres.HealthCheck, env, "TODOLIST_PG_HEALTH_CHECK")
	setString(&cfg.SQLite.Path, env, "TODOLIST_SQLITE_PATH")

	setString(&cfg.NATS.URL, env, "NATS_URL")
	setString(&cfg.NATS.Stream, env, "TODOLIST_NATS_STREAM")

	setString(&cfg.Logging.Level, env, "TODOLIST_LOG_LEVEL")
	setString(&cfg.Logging.Service, env, "TODOLIST_LOG_SERVICE")
	setBool(&cfg.Logging.Async, env, "TODOLIST_LOG_ASYNC")

	setInt(&cfg.Breaker.MaxFailures, env, "TODOLIST_BREAKER_MAX_FAILURES")
	setDuration(&cfg.Breaker.Timeout, env, "TODOLIST_BREAKER_TIMEOUT")

	setInt64(&cfg.Cache.L1MaxSizeMB, env, "TODOLIST_CACHE_L1_SIZE_MB")
	setDuration(&cfg.Idempotency.TTL, env, "TODOLIST_IDEMPOTENCY_TTL")
	setString(&cfg.Idempotency.Bucket, env, "TODOLIST_IDEMPOTENCY_BUCKET")

	setString(&cfg.OTel.Endpoint, env, "OTEL_EXPORTER_OTLP_ENDPOINT")
	setString(&cfg.OTel.ServiceName, env, "OTEL_SERVICE_NAME")
	setBool(&cfg.OTel.Insecure, env, "TODOLIST_OTEL_INSECURE")
	setFloat64(&cfg.OTel.SampleRate, env, "TODOLIST_OTEL_SAMPLE_RATE")

	setBool(&cfg.MCP.Enabled, env, "TODOLIST_MCP_ENABLED")
	setString(&cfg.MCP.Path, env, "TODOLIST_MCP_PATH")

	if v := env("TODOLIST_CLEAR_ALL_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Admin.ClearAllEnabled = &b
		}
	}
}

// validate checks that required fields are set.
func validate(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.New("server.port is required")
	}
	switch cfg.Database.Driver {
	case DriverPostgres:
		if cfg.Postgres.DSN == "" {
			return errors.New("postgres.dsn is required")
		}
		if cfg.Postgres.MaxConns < 1 {
			return errors.New("postgres.max_conns must be >= 1")
		}
		if cfg.Postgres.MinConns < 0 || cfg.Postgres.MinConns > cfg.Postgres.MaxConns {
			return errors.New("postgres.min_conns must be between 0 and max_conns")
		}
	case DriverSQLite:
		if cfg.SQLite.Path == "" {
			return errors.New("sqlite.path is required")
		}
	default:
		return fmt.Errorf("database.driver must be %q or %q", DriverPostgres, DriverSQLite)
	}
	if cfg.Breaker.MaxFailures < 1 {
		return errors.New("breaker.max_failures must be >= 1")
	}
	if cfg.Cache.L1MaxSizeMB < 1 {
		return errors.New("cache.l1_max_size_mb must be >= 1")
	}
	if cfg.OTel.SampleRate < 0 || cfg.OTel.SampleRate > 1 {
		return errors.New("otel.sample_rate must be between 0 and 1")
	}
	return nil
}

func setString(dst *string, env lookupFunc, key string) {
	if v := env(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, env lookupFunc, key string) {
	if v := env(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt32(dst *int32, env lookupFunc, key string) {
	if v := env(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			*dst = int32(n)
		}
	}
}

func setInt64(dst *int64, env lookupFunc, key string) {
	if v := env(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, env lookupFunc, key string) {
	if v := env(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, env lookupFunc, key string) {
	if v := env(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, env lookupFunc, key string) {
	if v := env(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
