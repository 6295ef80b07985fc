package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaultsWhenNoFile(t *testing.T) {
	t.Setenv("FACTLOG_DATA_DIR", t.TempDir())
	t.Setenv("FACTLOG_DAY_START", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DayStartMinutes != DefaultDayStartMinutes {
		t.Fatalf("expected default day start, got %d", cfg.DayStartMinutes)
	}
	if cfg.DayStart() != 5*time.Hour+30*time.Minute {
		t.Fatalf("unexpected day start duration: %v", cfg.DayStart())
	}
}

func TestLoadReadsYAMLFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("FACTLOG_DATA_DIR", dir)
	t.Setenv("FACTLOG_DAY_START", "")

	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("day_start_minutes: 240\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DayStartMinutes != 240 {
		t.Fatalf("expected 240, got %d", cfg.DayStartMinutes)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("FACTLOG_DATA_DIR", dir)
	t.Setenv("FACTLOG_DAY_START", "06:00")

	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("day_start_minutes: 240\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DayStartMinutes != 360 {
		t.Fatalf("expected 360, got %d", cfg.DayStartMinutes)
	}
}

func TestParseDayStart(t *testing.T) {
	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "330", want: 330},
		{in: "05:30", want: 330},
		{in: "0", want: 0},
		{in: "23:59", want: 23*60 + 59},
		{in: "24:00", wantErr: true},
		{in: "1440", wantErr: true},
		{in: "-5", wantErr: true},
		{in: "soon", wantErr: true},
	}
	for _, tc := range cases {
		got, err := ParseDayStart(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseDayStart(%q): expected error, got %d", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseDayStart(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseDayStart(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
