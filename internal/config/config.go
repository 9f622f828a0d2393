// Package config handles configuration loading and defaults.
package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Default values.
const (
	DefaultDataDir        = "~/.tada"
	DefaultSearchDebounce = 300 * time.Millisecond
	DefaultSearchMode     = SearchDestructive
	DefaultLogLevel       = "warn"
	configFileName        = "config.toml"
)

// SearchMode selects how an applied search affects the stored list.
type SearchMode string

const (
	// SearchDestructive narrows the stored list to the matching todos.
	SearchDestructive SearchMode = "destructive"
	// SearchView keeps the list and hides non-matching todos from the view.
	SearchView SearchMode = "view"
)

func ParseSearchMode(s string) (SearchMode, error) {
	switch m := SearchMode(strings.ToLower(strings.TrimSpace(s))); m {
	case SearchDestructive, SearchView:
		return m, nil
	default:
		return "", fmt.Errorf("invalid search mode %q, must be one of: destructive, view", s)
	}
}

// Duration decodes TOML strings such as "300ms".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config holds the full configuration for tada.
type Config struct {
	DataDir        string     `toml:"data_dir"`
	SearchDebounce Duration   `toml:"search_debounce"`
	SearchMode     SearchMode `toml:"search_mode"`
	DarkMode       bool       `toml:"dark_mode"`
	LogLevel       string     `toml:"log_level"`

	// Group lists pending and done todos separately. Flag only.
	Group bool `toml:"-"`
}

func setDefaults(cfg *Config) {
	cfg.DataDir = DefaultDataDir
	cfg.SearchDebounce = Duration{DefaultSearchDebounce}
	cfg.SearchMode = DefaultSearchMode
	cfg.LogLevel = DefaultLogLevel
}

// Load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. User config file ($TADA_CONFIG or ~/.tada/config.toml)
// 3. Environment variables
// 4. CLI flags
//
// Remaining positional arguments are available from fs.Args().
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	cfg := &Config{}
	setDefaults(cfg)

	if path := findConfigFile(); path != "" {
		if err := loadConfigFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	if err := loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	if err := parseFlags(cfg, fs, args); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	if err := finalizeConfig(cfg); err != nil {
		return nil, fmt.Errorf("finalizing config: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := strings.TrimSpace(os.Getenv("TADA_CONFIG")); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	p := filepath.Join(home, ".tada", configFileName)
	if _, err := os.Stat(p); err != nil {
		return ""
	}
	return p
}

// loadConfigFile overlays the keys present in path onto cfg.
func loadConfigFile(cfg *Config, path string) error {
	_, err := toml.DecodeFile(path, cfg)
	return err
}

func loadFromEnv(cfg *Config) error {
	if v := os.Getenv("TADA_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("TADA_SEARCH_DEBOUNCE"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("TADA_SEARCH_DEBOUNCE: %w", err)
		}
		cfg.SearchDebounce = Duration{d}
	}
	if v := os.Getenv("TADA_SEARCH_MODE"); v != "" {
		cfg.SearchMode = SearchMode(v)
	}
	if v := os.Getenv("TADA_DARK_MODE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("TADA_DARK_MODE: %w", err)
		}
		cfg.DarkMode = b
	}
	if v := os.Getenv("TADA_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	return nil
}

// parseFlags registers root flags with the current values as defaults,
// so an unset flag keeps whatever the file or environment chose.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string) error {
	var mode string
	fs.BoolVar(&cfg.Group, "group", cfg.Group, "group output by pending/done")
	fs.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "directory holding storage.json")
	fs.DurationVar(&cfg.SearchDebounce.Duration, "search-debounce", cfg.SearchDebounce.Duration, "quiet interval before a search is applied")
	fs.StringVar(&mode, "search-mode", string(cfg.SearchMode), "destructive or view")
	fs.BoolVar(&cfg.DarkMode, "dark", cfg.DarkMode, "start with the dark theme")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg.SearchMode = SearchMode(mode)
	return nil
}

func finalizeConfig(cfg *Config) error {
	mode, err := ParseSearchMode(string(cfg.SearchMode))
	if err != nil {
		return err
	}
	cfg.SearchMode = mode

	if cfg.SearchDebounce.Duration < 0 {
		return fmt.Errorf("search_debounce must not be negative, got %s", cfg.SearchDebounce)
	}

	dir, err := expandHome(cfg.DataDir)
	if err != nil {
		return err
	}
	cfg.DataDir = dir
	return nil
}

func expandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}
