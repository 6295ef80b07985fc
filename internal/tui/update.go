package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles all incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		return m, nil

	case tea.KeyMsg:
		// Global quit
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		// Focused text inputs swallow everything except their control keys.
		if m.Screen == ScreenAddFact && m.AddInput.Focused() {
			return m.handleAddFactKeys(msg)
		}
		if m.Screen == ScreenSearch && m.SearchInput.Focused() {
			return m.handleSearchKeys(msg)
		}

		return m.handleKeyPress(msg)

	case statsLoadedMsg:
		if msg.err != nil {
			m.ErrorMsg = msg.err.Error()
			return m, nil
		}
		m.Stats = msg.stats
		return m, nil

	case todayLoadedMsg:
		if msg.err != nil {
			m.ErrorMsg = msg.err.Error()
			return m, nil
		}
		m.TodayFacts = msg.facts
		m.OpenFact = msg.open
		m.clampCursor(len(m.TodayFacts))
		return m, nil

	case logLoadedMsg:
		if msg.err != nil {
			m.ErrorMsg = msg.err.Error()
			return m, nil
		}
		m.LogDate = msg.date
		m.LogFacts = msg.facts
		m.clampCursor(len(m.LogFacts))
		return m, nil

	case searchResultsMsg:
		if msg.err != nil {
			m.ErrorMsg = msg.err.Error()
			return m, nil
		}
		m.SearchQuery = msg.query
		m.SearchResults = msg.facts
		m.Cursor = 0
		m.Scroll = 0
		m.Screen = ScreenSearchResults
		m.PrevScreen = ScreenSearch
		return m, nil

	case activitiesLoadedMsg:
		if msg.err != nil {
			m.ErrorMsg = msg.err.Error()
			return m, nil
		}
		m.Activities = msg.activities
		m.clampCursor(len(m.Activities))
		return m, nil

	case factSavedMsg:
		if msg.err != nil {
			m.ErrorMsg = msg.err.Error()
			return m, nil
		}
		m.ErrorMsg = ""
		if msg.id == 0 {
			m.StatusMsg = "Nothing to track, fact discarded"
		} else {
			m.StatusMsg = "Fact saved"
		}
		m.AddInput.SetValue("")
		m.AddInput.Blur()
		m.Screen = ScreenToday
		m.Cursor = 0
		m.Scroll = 0
		return m, tea.Batch(loadToday(m.store), loadStats(m.store), loadLog(m.store, m.LogDate))

	case factRemovedMsg:
		if msg.err != nil {
			m.ErrorMsg = msg.err.Error()
			return m, nil
		}
		m.StatusMsg = "Fact removed"
		return m, tea.Batch(loadToday(m.store), loadStats(m.store), loadLog(m.store, m.LogDate))

	case trackingStoppedMsg:
		if msg.err != nil {
			m.ErrorMsg = msg.err.Error()
			return m, nil
		}
		if msg.stopped {
			m.StatusMsg = "Tracking stopped"
		} else {
			m.StatusMsg = "Nothing is being tracked"
		}
		return m, loadToday(m.store)

	case spinner.TickMsg:
		// Only animate while the dashboard is still loading.
		if m.Stats == nil {
			var cmd tea.Cmd
			m.Spinner, cmd = m.Spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	return m, nil
}

// ─── Key Routing ─────────────────────────────────────────────────────────────

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Any keypress clears a stale status line.
	m.StatusMsg = ""

	switch m.Screen {
	case ScreenDashboard:
		return m.handleDashboardKeys(msg)
	case ScreenToday:
		return m.handleTodayKeys(msg)
	case ScreenLog:
		return m.handleLogKeys(msg)
	case ScreenSearchResults:
		return m.handleSearchResultsKeys(msg)
	case ScreenActivities:
		return m.handleActivitiesKeys(msg)
	}
	return m, nil
}

var dashboardMenuItems = []string{
	"Today's timeline",
	"Start tracking",
	"Browse the log",
	"Search facts",
	"Activities",
	"Stop tracking",
	"Quit",
}

func (m Model) handleDashboardKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit

	case "j", "down":
		if m.Cursor < len(dashboardMenuItems)-1 {
			m.Cursor++
		}
		return m, nil

	case "k", "up":
		if m.Cursor > 0 {
			m.Cursor--
		}
		return m, nil

	case "enter":
		switch m.Cursor {
		case 0:
			return m.gotoToday()
		case 1:
			return m.gotoAddFact()
		case 2:
			return m.gotoLog()
		case 3:
			return m.gotoSearch()
		case 4:
			return m.gotoActivities()
		case 5:
			return m, stopTracking(m.store)
		case 6:
			return m, tea.Quit
		}
		return m, nil

	case "t":
		return m.gotoToday()
	case "a":
		return m.gotoAddFact()
	case "l":
		return m.gotoLog()
	case "/":
		return m.gotoSearch()
	case "s":
		return m, stopTracking(m.store)
	}
	return m, nil
}

func (m Model) handleTodayKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		return m.goBack()

	case "j", "down":
		m.moveCursor(1, len(m.TodayFacts), m.factListVisible())
		return m, nil

	case "k", "up":
		m.moveCursor(-1, len(m.TodayFacts), m.factListVisible())
		return m, nil

	case "a":
		return m.gotoAddFact()

	case "s":
		return m, stopTracking(m.store)

	case "r", "x":
		if m.Cursor < len(m.TodayFacts) {
			return m, removeFact(m.store, m.TodayFacts[m.Cursor].ID)
		}
		return m, nil

	case "l":
		return m.gotoLog()
	case "/":
		return m.gotoSearch()
	}
	return m, nil
}

func (m Model) handleAddFactKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.AddInput.Blur()
		return m.goBack()

	case "enter":
		input := strings.TrimSpace(m.AddInput.Value())
		if input == "" {
			return m, nil
		}
		return m, saveFact(m.store, input)
	}

	var cmd tea.Cmd
	m.AddInput, cmd = m.AddInput.Update(msg)
	return m, cmd
}

func (m Model) handleLogKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		return m.goBack()

	case "j", "down":
		m.moveCursor(1, len(m.LogFacts), m.factListVisible())
		return m, nil

	case "k", "up":
		m.moveCursor(-1, len(m.LogFacts), m.factListVisible())
		return m, nil

	case "h", "left":
		m.Cursor = 0
		m.Scroll = 0
		return m, loadLog(m.store, m.LogDate.AddDate(0, 0, -1))

	case "l", "right":
		m.Cursor = 0
		m.Scroll = 0
		return m, loadLog(m.store, m.LogDate.AddDate(0, 0, 1))

	case "t":
		m.Cursor = 0
		m.Scroll = 0
		return m, loadLog(m.store, m.store.Today())

	case "a":
		return m.gotoAddFact()

	case "r", "x":
		if m.Cursor < len(m.LogFacts) {
			return m, removeFact(m.store, m.LogFacts[m.Cursor].ID)
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.SearchInput.Blur()
		return m.goBack()

	case "enter":
		query := strings.TrimSpace(m.SearchInput.Value())
		if query == "" {
			return m, nil
		}
		m.SearchInput.Blur()
		return m, searchFacts(m.store, query)
	}

	var cmd tea.Cmd
	m.SearchInput, cmd = m.SearchInput.Update(msg)
	return m, cmd
}

func (m Model) handleSearchResultsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		m.Screen = ScreenDashboard
		m.Cursor = 0
		m.Scroll = 0
		return m, nil

	case "j", "down":
		m.moveCursor(1, len(m.SearchResults), m.factListVisible())
		return m, nil

	case "k", "up":
		m.moveCursor(-1, len(m.SearchResults), m.factListVisible())
		return m, nil

	case "/":
		return m.gotoSearch()
	}
	return m, nil
}

func (m Model) handleActivitiesKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		return m.goBack()

	case "j", "down":
		m.moveCursor(1, len(m.Activities), m.Height-8)
		return m, nil

	case "k", "up":
		m.moveCursor(-1, len(m.Activities), m.Height-8)
		return m, nil
	}
	return m, nil
}

// ─── Navigation Helpers ──────────────────────────────────────────────────────

func (m *Model) gotoToday() (tea.Model, tea.Cmd) {
	m.PrevScreen = m.Screen
	m.Screen = ScreenToday
	m.Cursor = 0
	m.Scroll = 0
	return *m, loadToday(m.store)
}

func (m *Model) gotoAddFact() (tea.Model, tea.Cmd) {
	m.PrevScreen = m.Screen
	m.Screen = ScreenAddFact
	m.AddInput.Focus()
	return *m, nil
}

func (m *Model) gotoLog() (tea.Model, tea.Cmd) {
	m.PrevScreen = m.Screen
	m.Screen = ScreenLog
	m.Cursor = 0
	m.Scroll = 0
	return *m, loadLog(m.store, m.LogDate)
}

func (m *Model) gotoSearch() (tea.Model, tea.Cmd) {
	m.PrevScreen = m.Screen
	m.Screen = ScreenSearch
	m.SearchInput.SetValue("")
	m.SearchInput.Focus()
	return *m, nil
}

func (m *Model) gotoActivities() (tea.Model, tea.Cmd) {
	m.PrevScreen = m.Screen
	m.Screen = ScreenActivities
	m.Cursor = 0
	m.Scroll = 0
	return *m, loadActivities(m.store)
}

// goBack returns to the previous screen and refreshes its data.
func (m *Model) goBack() (tea.Model, tea.Cmd) {
	m.Screen = m.PrevScreen
	m.PrevScreen = ScreenDashboard
	m.Cursor = 0
	m.Scroll = 0
	m.ErrorMsg = ""
	return *m, m.refreshScreen()
}

func (m Model) refreshScreen() tea.Cmd {
	switch m.Screen {
	case ScreenDashboard:
		return tea.Batch(loadStats(m.store), loadToday(m.store))
	case ScreenToday:
		return loadToday(m.store)
	case ScreenLog:
		return loadLog(m.store, m.LogDate)
	case ScreenActivities:
		return loadActivities(m.store)
	}
	return nil
}

// ─── Cursor / Scroll Math ────────────────────────────────────────────────────

// factListVisible is how many fact rows fit on screen (2 lines per fact).
func (m Model) factListVisible() int {
	visible := (m.Height - 10) / 2
	if visible < 3 {
		visible = 3
	}
	return visible
}

func (m *Model) moveCursor(delta, total, visible int) {
	m.Cursor += delta
	if m.Cursor < 0 {
		m.Cursor = 0
	}
	if m.Cursor > total-1 {
		m.Cursor = total - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}

	// Keep the cursor inside the visible window.
	if m.Cursor < m.Scroll {
		m.Scroll = m.Cursor
	}
	if m.Cursor >= m.Scroll+visible {
		m.Scroll = m.Cursor - visible + 1
	}
	if m.Scroll < 0 {
		m.Scroll = 0
	}
}

func (m *Model) clampCursor(total int) {
	if m.Cursor > total-1 {
		m.Cursor = total - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
	if m.Scroll > m.Cursor {
		m.Scroll = m.Cursor
	}
}
