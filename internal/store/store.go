// Package store implements the persistent fact engine for factlog.
//
// It keeps the tracked timeline in SQLite: facts (an activity over a time
// span), the activity/category catalog, and tags. All mutating operations
// run inside a single transaction so the conflict-resolution passes are
// atomic from any reader's perspective. This is the core of factlog —
// everything else (CLI, MCP server, TUI) talks to this.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ─── Types ───────────────────────────────────────────────────────────────────

// Fact is one tracked occurrence of an activity over a time span.
// End is nil while the fact is still being tracked ("open").
type Fact struct {
	ID          int64      `json:"id"`
	ActivityID  int64      `json:"activity_id"`
	Activity    string     `json:"activity"`
	CategoryID  int64      `json:"category_id"`
	Category    string     `json:"category"`
	Start       time.Time  `json:"start_time"`
	End         *time.Time `json:"end_time,omitempty"`
	Description string     `json:"description,omitempty"`
	Tags        []string   `json:"tags,omitempty"`

	// Set when the fact is read back through GetFacts: the logical day the
	// fact belongs to under the day-start offset, and the tracked duration.
	Date  time.Time     `json:"date"`
	Delta time.Duration `json:"delta"`
}

// Open reports whether the fact is still being tracked.
func (f *Fact) Open() bool { return f.End == nil }

type Activity struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	CategoryID int64  `json:"category_id"`
	Category   string `json:"category"`
	Deleted    bool   `json:"deleted,omitempty"`
}

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Tag struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Autocomplete bool   `json:"autocomplete"`
}

// Change describes what a mutating operation touched. It replaces ambient
// "something was modified" state: callers that need to refresh views get the
// notification as a return value instead of polling the store.
type Change struct {
	ID         string `json:"id"`
	Facts      bool   `json:"facts"`
	Activities bool   `json:"activities"`
	Tags       bool   `json:"tags"`
}

// Zero reports whether the operation modified nothing (e.g. a no-op re-add).
func (c Change) Zero() bool { return !c.Facts && !c.Activities && !c.Tags }

func newChange(facts, activities, tags bool) Change {
	return Change{ID: uuid.NewString(), Facts: facts, Activities: activities, Tags: tags}
}

// Stats summarizes the store for dashboards.
type Stats struct {
	TotalFacts      int    `json:"total_facts"`
	TotalActivities int    `json:"total_activities"`
	TotalCategories int    `json:"total_categories"`
	TotalTags       int    `json:"total_tags"`
	FirstFact       string `json:"first_fact,omitempty"`
}

// UnsortedID is the reserved category sentinel for uncategorized activities.
// It is never persisted as a categories row.
const UnsortedID int64 = -1

// UnsortedName is the display name used where a category name is expected.
const UnsortedName = "Unsorted"

// ─── Config ──────────────────────────────────────────────────────────────────

type Config struct {
	DataDir string

	// DayStart is the offset past midnight where the logical day begins
	// (default 05:30). Facts are bucketed into days relative to it.
	DayStart time.Duration

	// Now is the clock; injectable for tests.
	Now func() time.Time
}

func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{
		DataDir:  filepath.Join(home, ".factlog"),
		DayStart: 5*time.Hour + 30*time.Minute,
		Now:      time.Now,
	}
}

// ─── Store ───────────────────────────────────────────────────────────────────

type Store struct {
	db  *sql.DB
	cfg Config
}

func New(cfg Config) (*Store, error) {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("factlog: create data dir: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, "factlog.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("factlog: open database: %w", err)
	}

	// SQLite performance pragmas
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return nil, fmt.Errorf("factlog: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, cfg: cfg}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("factlog: migration: %w", err)
	}

	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// DayStart exposes the configured day-start offset to front-ends.
func (s *Store) DayStart() time.Duration { return s.cfg.DayStart }

func (s *Store) now() time.Time { return s.cfg.Now() }

// querier is satisfied by both *sql.DB and *sql.Tx so the engine internals
// can run inside the per-operation transaction.
type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// ─── Migrations ──────────────────────────────────────────────────────────────

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS categories (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			name           TEXT    NOT NULL,
			category_order INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS activities (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			name           TEXT    NOT NULL,
			category_id    INTEGER NOT NULL DEFAULT -1,
			activity_order INTEGER NOT NULL DEFAULT 0,
			deleted        INTEGER
		);

		CREATE TABLE IF NOT EXISTS tags (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			name         TEXT    NOT NULL,
			autocomplete INTEGER NOT NULL DEFAULT 1
		);

		CREATE TABLE IF NOT EXISTS facts (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			activity_id INTEGER NOT NULL,
			start_time  TEXT    NOT NULL,
			end_time    TEXT,
			description TEXT
		);

		CREATE TABLE IF NOT EXISTS fact_tags (
			fact_id INTEGER NOT NULL,
			tag_id  INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_facts_start_end ON facts(start_time, end_time);
		CREATE INDEX IF NOT EXISTS idx_facts_activity  ON facts(activity_id);
		CREATE INDEX IF NOT EXISTS idx_activities_cat  ON activities(category_id);
		CREATE INDEX IF NOT EXISTS idx_tags_name       ON tags(name);
		CREATE INDEX IF NOT EXISTS idx_fact_tags_fact  ON fact_tags(fact_id);
		CREATE INDEX IF NOT EXISTS idx_fact_tags_tag   ON fact_tags(tag_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// ─── Time encoding ───────────────────────────────────────────────────────────
//
// Timestamps are stored as local "YYYY-MM-DD HH:MM:SS" text with seconds
// zeroed: the tracker works at minute granularity, and the format keeps
// lexicographic order equal to chronological order for range queries.

const timeLayout = "2006-01-02 15:04:05"

func toMinute(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, t.Location())
}

func formatTime(t time.Time) string {
	return toMinute(t).Format(timeLayout)
}

func parseStoredTime(s string) time.Time {
	t, _ := time.ParseInLocation(timeLayout, s, time.Local)
	return t
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

// ─── Stats ───────────────────────────────────────────────────────────────────

func (s *Store) Stats() (*Stats, error) {
	stats := &Stats{}

	s.db.QueryRow("SELECT COUNT(*) FROM facts").Scan(&stats.TotalFacts)
	s.db.QueryRow("SELECT COUNT(*) FROM activities WHERE deleted IS NULL").Scan(&stats.TotalActivities)
	s.db.QueryRow("SELECT COUNT(*) FROM categories").Scan(&stats.TotalCategories)
	s.db.QueryRow("SELECT COUNT(*) FROM tags").Scan(&stats.TotalTags)

	var first *string
	s.db.QueryRow("SELECT MIN(start_time) FROM facts").Scan(&first)
	stats.FirstFact = derefString(first)

	return stats, nil
}
