package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	// Playback tuning
	Player PlayerConfig `koanf:"player"`

	// Issue manifest to play from
	Catalog CatalogConfig `koanf:"catalog"`

	// Preferences and playlist database
	State StateConfig `koanf:"state"`

	Log LogConfig `koanf:"log"`

	// Desktop media controls (linux only)
	MPRIS MPRISConfig `koanf:"mpris"`
}

// PlayerConfig holds player tuning.
type PlayerConfig struct {
	ProgressInterval     time.Duration `koanf:"progress_interval"`      // progress sampling period (default: 200ms)
	SeekStep             time.Duration `koanf:"seek_step"`              // seek forward/backward step (default: 15s)
	BreakMargin          time.Duration `koanf:"break_margin"`           // seek back skips breaks closer than this (default: 2s)
	ConnectTimeout       time.Duration `koanf:"connect_timeout"`        // audio output connection timeout (default: 5s)
	DownloadTimeout      time.Duration `koanf:"download_timeout"`       // remote audio download timeout (default: 30s)
	DefaultPlaybackSpeed float64       `koanf:"default_playback_speed"` // speed until the user picks one (0.5-2.0, default: 1.0)
}

// CatalogConfig locates the issue manifest.
type CatalogConfig struct {
	Path string `koanf:"path"`
}

// StateConfig locates the sqlite database.
type StateConfig struct {
	DBPath string `koanf:"db_path"` // empty means the XDG data directory
}

// LogConfig configures the log file.
type LogConfig struct {
	Level string `koanf:"level"` // "debug", "info", "warn" or "error" (default: "info")
	File  string `koanf:"file"`  // empty means the XDG state directory
	JSON  bool   `koanf:"json"`
}

// MPRISConfig configures the MPRIS adapter.
type MPRISConfig struct {
	Enabled *bool `koanf:"enabled"` // default: true
}

// Load reads the config files in order of priority.
func Load() (*Config, error) {
	return LoadFrom(getConfigPaths()...)
}

// LoadFrom reads the given config files; later files win. Missing files are
// skipped.
func LoadFrom(paths ...string) (*Config, error) {
	k := koanf.New(".")

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	cfg.Catalog.Path = expandPath(cfg.Catalog.Path)
	cfg.State.DBPath = expandPath(cfg.State.DBPath)
	cfg.Log.File = expandPath(cfg.Log.File)
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/tazaudio/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "tazaudio", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// HasCatalog returns true if an issue manifest is configured.
func (c *Config) HasCatalog() bool {
	return c.Catalog.Path != ""
}

// MPRISEnabled reports whether the MPRIS adapter should run.
func (c *Config) MPRISEnabled() bool {
	return c.MPRIS.Enabled == nil || *c.MPRIS.Enabled
}

// GetPlayerConfig returns the player configuration with defaults applied.
func (c *Config) GetPlayerConfig() PlayerConfig {
	cfg := c.Player

	// Apply defaults
	if cfg.ProgressInterval <= 0 {
		cfg.ProgressInterval = 200 * time.Millisecond
	}
	if cfg.SeekStep <= 0 {
		cfg.SeekStep = 15 * time.Second
	}
	if cfg.BreakMargin <= 0 {
		cfg.BreakMargin = 2 * time.Second
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 5 * time.Second
	}
	if cfg.DownloadTimeout <= 0 {
		cfg.DownloadTimeout = 30 * time.Second
	}
	switch {
	case cfg.DefaultPlaybackSpeed <= 0:
		cfg.DefaultPlaybackSpeed = 1
	case cfg.DefaultPlaybackSpeed < 0.5:
		cfg.DefaultPlaybackSpeed = 0.5
	case cfg.DefaultPlaybackSpeed > 2:
		cfg.DefaultPlaybackSpeed = 2
	}

	return cfg
}

// GetLogConfig returns the log configuration with defaults applied.
func (c *Config) GetLogConfig() LogConfig {
	cfg := c.Log
	switch cfg.Level {
	case "debug", "info", "warn", "error":
	default:
		cfg.Level = "info"
	}
	return cfg
}
