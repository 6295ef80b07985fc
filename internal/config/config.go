// Package config loads factlog settings from the data directory.
//
// Settings live in <data dir>/config.yaml; environment variables override
// the file so scripts and tests can redirect the tracker without touching
// the user's config:
//
//	FACTLOG_DATA_DIR    data directory (default: ~/.factlog)
//	FACTLOG_DAY_START   day-start offset, minutes past midnight or "HH:MM"
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultDayStartMinutes is 05:30 — the tracker's day rolls over in the
// early morning, not at midnight, so late-night work lands on the right day.
const DefaultDayStartMinutes = 5*60 + 30

type Config struct {
	DataDir         string `yaml:"-"`
	DayStartMinutes int    `yaml:"day_start_minutes"`
}

func Default() Config {
	home, _ := os.UserHomeDir()
	return Config{
		DataDir:         filepath.Join(home, ".factlog"),
		DayStartMinutes: DefaultDayStartMinutes,
	}
}

// Load resolves the effective configuration: defaults, then config.yaml if
// present, then environment overrides. A missing file is not an error.
func Load() (Config, error) {
	cfg := Default()

	if dir := os.Getenv("FACTLOG_DATA_DIR"); dir != "" {
		cfg.DataDir = dir
	}

	raw, err := os.ReadFile(filepath.Join(cfg.DataDir, "config.yaml"))
	if err == nil {
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("factlog: parse config.yaml: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return cfg, fmt.Errorf("factlog: read config.yaml: %w", err)
	}

	if v := os.Getenv("FACTLOG_DAY_START"); v != "" {
		minutes, err := ParseDayStart(v)
		if err != nil {
			return cfg, err
		}
		cfg.DayStartMinutes = minutes
	}

	if cfg.DayStartMinutes < 0 || cfg.DayStartMinutes >= 24*60 {
		cfg.DayStartMinutes = DefaultDayStartMinutes
	}

	return cfg, nil
}

// ParseDayStart accepts "330" (minutes) or "05:30" (clock time).
func ParseDayStart(v string) (int, error) {
	v = strings.TrimSpace(v)
	if h, m, ok := strings.Cut(v, ":"); ok {
		hours, err1 := strconv.Atoi(h)
		minutes, err2 := strconv.Atoi(m)
		if err1 != nil || err2 != nil || hours < 0 || hours > 23 || minutes < 0 || minutes > 59 {
			return 0, fmt.Errorf("factlog: invalid day start %q", v)
		}
		return hours*60 + minutes, nil
	}
	minutes, err := strconv.Atoi(v)
	if err != nil || minutes < 0 || minutes >= 24*60 {
		return 0, fmt.Errorf("factlog: invalid day start %q", v)
	}
	return minutes, nil
}

// DayStart returns the offset as a duration for the store.
func (c Config) DayStart() time.Duration {
	return time.Duration(c.DayStartMinutes) * time.Minute
}
