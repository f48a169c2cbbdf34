// Package config loads application settings from viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/rupee-flow/internal/common"
	"github.com/Veraticus/rupee-flow/internal/model"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides, e.g. RUPEE_DATABASE_DSN.
const EnvPrefix = "RUPEE"

// Supported database drivers.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Settings is the typed view of the configuration.
type Settings struct {
	Database   DatabaseSettings
	Logging    LoggingSettings
	Server     ServerSettings
	Metrics    MetricsSettings
	Processing ProcessingSettings
}

// DatabaseSettings selects and locates the database.
type DatabaseSettings struct {
	Driver string
	DSN    string
}

// LoggingSettings configures slog.
type LoggingSettings struct {
	Level  string
	Format string
}

// ServerSettings configures the HTTP API.
type ServerSettings struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// MetricsSettings configures Prometheus export.
type MetricsSettings struct {
	Namespace string
	Enabled   bool
}

// ProcessingSettings configures batch extraction.
type ProcessingSettings struct {
	Thresholds model.ConfidenceThresholds
	Workers    int
	BatchLimit int
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.path", "~/.local/share/rupee/rupee.db")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.namespace", "rupee")
	v.SetDefault("processing.workers", 4)
	v.SetDefault("processing.batch_limit", 500)
	thresholds := model.DefaultConfidenceThresholds()
	v.SetDefault("processing.high_confidence", thresholds.High)
	v.SetDefault("processing.medium_confidence", thresholds.Medium)
}

// Load reads settings from v, applying defaults for unset keys.
func Load(v *viper.Viper) (*Settings, error) {
	SetDefaults(v)

	s := &Settings{
		Database: DatabaseSettings{
			Driver: strings.ToLower(v.GetString("database.driver")),
			DSN:    v.GetString("database.dsn"),
		},
		Logging: LoggingSettings{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
		},
		Server: ServerSettings{
			Addr:            v.GetString("server.addr"),
			ReadTimeout:     v.GetDuration("server.read_timeout"),
			WriteTimeout:    v.GetDuration("server.write_timeout"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		},
		Metrics: MetricsSettings{
			Enabled:   v.GetBool("metrics.enabled"),
			Namespace: v.GetString("metrics.namespace"),
		},
		Processing: ProcessingSettings{
			Workers:    v.GetInt("processing.workers"),
			BatchLimit: v.GetInt("processing.batch_limit"),
			Thresholds: model.ConfidenceThresholds{
				High:   v.GetInt("processing.high_confidence"),
				Medium: v.GetInt("processing.medium_confidence"),
			},
		},
	}

	// SQLite is located by path; the DSN is derived unless given directly.
	if s.Database.DSN == "" && s.Database.Driver == DriverSQLite {
		s.Database.DSN = ExpandPath(v.GetString("database.path"))
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks settings for values the application cannot run with.
func (s *Settings) Validate() error {
	switch s.Database.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("%w: unsupported database driver %q", common.ErrInvalidConfig, s.Database.Driver)
	}
	if s.Database.DSN == "" {
		return fmt.Errorf("%w: database.dsn", common.ErrMissingConfig)
	}
	if s.Processing.Workers < 1 {
		return fmt.Errorf("%w: processing.workers must be at least 1", common.ErrInvalidConfig)
	}
	if s.Processing.BatchLimit < 0 {
		return fmt.Errorf("%w: processing.batch_limit must not be negative", common.ErrInvalidConfig)
	}
	t := s.Processing.Thresholds
	if t.Medium < 0 || t.High > 100 || t.Medium > t.High {
		return fmt.Errorf("%w: confidence thresholds must satisfy 0 <= medium <= high <= 100", common.ErrInvalidConfig)
	}
	return nil
}

// DefaultConfigDir returns the directory searched for config.yaml.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "rupee")
}

// ExpandPath expands a leading ~ and $VAR references in a file path.
func ExpandPath(path string) string {
	switch {
	case path == "":
		return path
	case path == "~" || strings.HasPrefix(path, "~/"):
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}
	return os.ExpandEnv(path)
}
