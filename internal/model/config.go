package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendJSON   = "json"
)

// StorageConfig selects and locates the persistence backend.
type StorageConfig struct {
	// Backend is "sqlite" or "json".
	Backend string `mapstructure:"backend" yaml:"backend"`

	// DBPath is the SQLite database file.
	DBPath string `mapstructure:"db_path" yaml:"db_path"`

	// JSONDir holds the planit_*.json files of the JSON backend.
	JSONDir string `mapstructure:"json_dir" yaml:"json_dir"`
}

// ServerConfig holds settings for the REST server.
type ServerConfig struct {
	Addr       string `mapstructure:"addr" yaml:"addr"`
	CORSOrigin string `mapstructure:"cors_origin" yaml:"cors_origin"`

	// Token enables bearer authentication. Empty falls back to the
	// PLANIT_API_TOKEN variable and then the keyring.
	Token string `mapstructure:"token" yaml:"token"`
}

// SchedulerConfig controls the nightly refresh of cached occurrences.
type SchedulerConfig struct {
	// RefreshAt is the local time of day, formatted HH:MM.
	RefreshAt string `mapstructure:"refresh_at" yaml:"refresh_at"`
}

// LogConfig controls logging output.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Storage   StorageConfig   `mapstructure:"storage" yaml:"storage"`
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	Display   Settings        `mapstructure:"display" yaml:"display"`
	Scheduler SchedulerConfig `mapstructure:"scheduler" yaml:"scheduler"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
}

// DefaultDataDir returns ~/.config/planit.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "planit")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/planit/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(DefaultDataDir(), "config.yaml")
}

// DefaultAppConfig returns the configuration used when no file exists.
func DefaultAppConfig() *AppConfig {
	dir := DefaultDataDir()
	return &AppConfig{
		Storage: StorageConfig{
			Backend: BackendSQLite,
			DBPath:  filepath.Join(dir, "planit.db"),
			JSONDir: dir,
		},
		Server: ServerConfig{
			Addr:       ":8080",
			CORSOrigin: "http://localhost:5173",
		},
		Display: Settings{
			Language:      LanguageEnglish,
			DashboardMode: DashboardCounts,
		},
		Scheduler: SchedulerConfig{RefreshAt: "00:05"},
		Log:       LogConfig{Level: "info"},
	}
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("PLANIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults double as the key list for environment overrides.
	def := DefaultAppConfig()
	v.SetDefault("storage.backend", def.Storage.Backend)
	v.SetDefault("storage.db_path", def.Storage.DBPath)
	v.SetDefault("storage.json_dir", def.Storage.JSONDir)
	v.SetDefault("server.addr", def.Server.Addr)
	v.SetDefault("server.cors_origin", def.Server.CORSOrigin)
	v.SetDefault("server.token", "")
	v.SetDefault("display.language", string(def.Display.Language))
	v.SetDefault("display.dashboard_mode", string(def.Display.DashboardMode))
	v.SetDefault("scheduler.refresh_at", def.Scheduler.RefreshAt)
	v.SetDefault("log.level", def.Log.Level)
	return v
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// A missing file yields the defaults; PLANIT_* environment variables
// override both.
func LoadConfig(path string) (*AppConfig, error) {
	v := newViper(path)

	if err := v.ReadInConfig(); err != nil {
		var pathErr *os.PathError
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &pathErr) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := DefaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, fmt.Errorf("validating config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *AppConfig) normalize() error {
	var err error
	if c.Display.Language, err = ParseLanguage(string(c.Display.Language)); err != nil {
		return err
	}
	if c.Display.DashboardMode, err = ParseDashboardMode(string(c.Display.DashboardMode)); err != nil {
		return err
	}
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	switch c.Storage.Backend {
	case BackendSQLite, BackendJSON:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	return nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("storage", cfg.Storage)
	v.Set("server", cfg.Server)
	v.Set("display", cfg.Display)
	v.Set("scheduler", cfg.Scheduler)
	v.Set("log", cfg.Log)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
