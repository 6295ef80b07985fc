// Package tui implements the Bubbletea terminal UI for factlog.
//
// The layout follows the usual Elm-ish shape:
// - Screen constants as iota
// - a single Model struct holds ALL state
// - Update() with a type switch
// - per-screen key handlers returning (tea.Model, tea.Cmd)
// - vim keys (j/k) for navigation, esc walks back via PrevScreen
package tui

import (
	"time"

	"github.com/pkrastins/factlog/internal/store"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ─── Screens ─────────────────────────────────────────────────────────────────

type Screen int

const (
	ScreenDashboard Screen = iota
	ScreenToday
	ScreenAddFact
	ScreenLog
	ScreenSearch
	ScreenSearchResults
	ScreenActivities
)

// ─── Custom Messages ─────────────────────────────────────────────────────────

type statsLoadedMsg struct {
	stats *store.Stats
	err   error
}

type todayLoadedMsg struct {
	facts []store.Fact
	open  *store.Fact
	err   error
}

type logLoadedMsg struct {
	date  time.Time
	facts []store.Fact
	err   error
}

type searchResultsMsg struct {
	facts []store.Fact
	query string
	err   error
}

type activitiesLoadedMsg struct {
	activities []store.Activity
	err        error
}

type factSavedMsg struct {
	id  int64
	err error
}

type factRemovedMsg struct {
	err error
}

type trackingStoppedMsg struct {
	stopped bool
	err     error
}

// ─── Model ───────────────────────────────────────────────────────────────────

type Model struct {
	store      *store.Store
	Version    string
	Screen     Screen
	PrevScreen Screen
	Width      int
	Height     int
	Cursor     int
	Scroll     int

	// Error and status display
	ErrorMsg  string
	StatusMsg string

	// Dashboard
	Stats   *store.Stats
	Spinner spinner.Model

	// Today timeline
	TodayFacts []store.Fact
	OpenFact   *store.Fact

	// Add fact
	AddInput textinput.Model

	// Log browsing
	LogDate  time.Time
	LogFacts []store.Fact

	// Search
	SearchInput   textinput.Model
	SearchQuery   string
	SearchResults []store.Fact

	// Activity catalog
	Activities []store.Activity
}

// New creates a new TUI model connected to the given store.
func New(s *store.Store, version string) Model {
	add := textinput.New()
	add.Placeholder = "activity@category, description #tag"
	add.CharLimit = 256
	add.Width = 60

	search := textinput.New()
	search.Placeholder = "Search facts..."
	search.CharLimit = 256
	search.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorPeach)

	return Model{
		store:       s,
		Version:     version,
		Screen:      ScreenDashboard,
		LogDate:     s.Today(),
		AddInput:    add,
		SearchInput: search,
		Spinner:     sp,
	}
}

// Init loads initial data (stats and today's timeline for the dashboard).
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		loadStats(m.store),
		loadToday(m.store),
		m.Spinner.Tick,
		tea.EnterAltScreen,
	)
}

// ─── Commands (data loading) ─────────────────────────────────────────────────

func loadStats(s *store.Store) tea.Cmd {
	return func() tea.Msg {
		stats, err := s.Stats()
		return statsLoadedMsg{stats: stats, err: err}
	}
}

func loadToday(s *store.Store) tea.Cmd {
	return func() tea.Msg {
		facts, err := s.GetTodaysFacts()
		if err != nil {
			return todayLoadedMsg{err: err}
		}
		open, err := s.OpenFact()
		return todayLoadedMsg{facts: facts, open: open, err: err}
	}
}

func loadLog(s *store.Store, date time.Time) tea.Cmd {
	return func() tea.Msg {
		facts, err := s.GetFacts(date, date, "")
		return logLoadedMsg{date: date, facts: facts, err: err}
	}
}

func searchFacts(s *store.Store, query string) tea.Cmd {
	return func() tea.Msg {
		// Search covers the last 90 logical days.
		today := s.Today()
		facts, err := s.GetFacts(today.AddDate(0, 0, -90), today, query)
		return searchResultsMsg{facts: facts, query: query, err: err}
	}
}

func loadActivities(s *store.Store) tea.Cmd {
	return func() tea.Msg {
		activities, err := s.Activities(0)
		return activitiesLoadedMsg{activities: activities, err: err}
	}
}

func saveFact(s *store.Store, input string) tea.Cmd {
	return func() tea.Msg {
		id, _, err := s.AddFact(store.AddFactParams{Input: input})
		return factSavedMsg{id: id, err: err}
	}
}

func removeFact(s *store.Store, id int64) tea.Cmd {
	return func() tea.Msg {
		_, err := s.RemoveFact(id)
		return factRemovedMsg{err: err}
	}
}

func stopTracking(s *store.Store) tea.Cmd {
	return func() tea.Msg {
		change, err := s.StopTracking(nil)
		return trackingStoppedMsg{stopped: change.Facts, err: err}
	}
}
