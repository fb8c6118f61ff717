package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverSQLite   = "sqlite"

	MinWarnDays     = 7
	MaxWarnDays     = 180
	DefaultWarnDays = 30
)

type Config struct {
	Database  DatabaseConfig
	Storage   StorageConfig
	Files     FilesConfig
	JWT       JWTConfig
	App       AppConfig
	Documents DocumentsConfig
	Audit     AuditConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// StorageConfig selects the record store. There is no runtime probing:
// the driver named here is the one that gets opened.
type StorageConfig struct {
	Driver     string
	SQLitePath string
}

// FilesConfig holds uploaded document file storage configuration
type FilesConfig struct {
	BasePath string
	BaseURL  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int
	Env         string
	LogLevel    string
	FrontendURL string
}

type DocumentsConfig struct {
	WarnDays     int
	ScanInterval time.Duration
}

type AuditConfig struct {
	Actor string
}

// Load reads the environment, after an optional .env file, and validates
// the result. Every malformed value is reported, not just the first.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	env := &envReader{}
	config := &Config{
		Database: DatabaseConfig{
			Host:     env.String("DB_HOST", "localhost"),
			Port:     env.Int("DB_PORT", 5432),
			User:     env.String("DB_USER", "postgres"),
			Password: env.String("DB_PASSWORD", ""),
			Name:     env.String("DB_NAME", "lucidata_hr"),
			SSLMode:  env.String("DB_SSL_MODE", "disable"),
		},
		Storage: StorageConfig{
			Driver:     strings.ToLower(env.String("STORAGE_DRIVER", StorageDriverPostgres)),
			SQLitePath: env.String("SQLITE_PATH", "./data/hr.db"),
		},
		Files: FilesConfig{
			BasePath: env.String("FILES_BASE_PATH", "./uploads"),
			BaseURL:  env.String("FILES_BASE_URL", "http://localhost:8080/uploads"),
		},
		JWT: JWTConfig{
			Secret:           env.String("JWT_SECRET_KEY", ""),
			AccessExpiration: env.String("JWT_ACCESS_EXPIRATION_TIME", "1h"),
		},
		App: AppConfig{
			Port:        env.Int("APP_PORT", 8080),
			Env:         env.String("APP_ENV", "development"),
			LogLevel:    env.String("LOG_LEVEL", "info"),
			FrontendURL: env.String("FRONTEND_URL", "http://localhost:3000"),
		},
		Documents: DocumentsConfig{
			WarnDays:     env.Int("DOCUMENT_WARN_DAYS", DefaultWarnDays),
			ScanInterval: env.Duration("DOCUMENT_SCAN_INTERVAL", time.Hour),
		},
		Audit: AuditConfig{
			Actor: env.String("AUDIT_ACTOR", "HR Admin"),
		},
	}
	if env.err != nil {
		return nil, env.err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return config, nil
}

// Validate checks cross-field requirements and ranges.
func (c *Config) Validate() error {
	var errs []error
	switch c.Storage.Driver {
	case StorageDriverPostgres:
		if c.Database.Password == "" {
			errs = append(errs, errors.New("DB_PASSWORD is required for the postgres storage driver"))
		}
	case StorageDriverSQLite:
		if c.Storage.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required for the sqlite storage driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported STORAGE_DRIVER %q", c.Storage.Driver))
	}
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET_KEY is required"))
	}
	if c.Documents.WarnDays < MinWarnDays || c.Documents.WarnDays > MaxWarnDays {
		errs = append(errs, fmt.Errorf("DOCUMENT_WARN_DAYS must be between %d and %d", MinWarnDays, MaxWarnDays))
	}
	if c.Documents.ScanInterval <= 0 {
		errs = append(errs, errors.New("DOCUMENT_SCAN_INTERVAL must be positive"))
	}
	return errors.Join(errs...)
}

// DatabaseURL returns the PostgreSQL connection string with credentials
// escaped.
func (c *Config) DatabaseURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Database.User, c.Database.Password),
		Host:     net.JoinHostPort(c.Database.Host, strconv.Itoa(c.Database.Port)),
		Path:     "/" + c.Database.Name,
		RawQuery: url.Values{"sslmode": {c.Database.SSLMode}}.Encode(),
	}
	return u.String()
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// envReader reads typed variables, keeping the fallback and recording an
// error for values that do not parse.
type envReader struct {
	err error
}

func (e *envReader) String(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func (e *envReader) Int(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		e.err = errors.Join(e.err, fmt.Errorf("invalid %s: %w", key, err))
		return fallback
	}
	return v
}

func (e *envReader) Duration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		e.err = errors.Join(e.err, fmt.Errorf("invalid %s: %w", key, err))
		return fallback
	}
	return v
}
