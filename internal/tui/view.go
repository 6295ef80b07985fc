package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/pkrastins/factlog/internal/store"
)

// ─── Logo ────────────────────────────────────────────────────────────────────

func renderLogo() string {
	logoText := []string{
		`    ______    ___       ______   ______   __       ____     ______ `,
		`   / ____/   /   |     / ____/  /_  __/  / /      / __ \   / ____/ `,
		`  / /_      / /| |    / /        / /    / /      / / / /  / / __   `,
		` / __/     / ___ |   / /___     / /    / /___   / /_/ /  / /_/ /   `,
		`/_/       /_/  |_|   \____/    /_/    /_____/   \____/   \____/    `,
	}

	frameStyle := lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(colorOverlay).
		Padding(0, 1).
		MarginBottom(1)

	textStyle := lipgloss.NewStyle().Foreground(colorText).Bold(true)
	accentStyle := lipgloss.NewStyle().Foreground(colorPeach).Bold(true)
	taglineStyle := lipgloss.NewStyle().Foreground(colorSubtext).Italic(true)

	var b strings.Builder

	// Header line inside box
	b.WriteString(accentStyle.Render(" ⏱ TRACKER ONLINE ") + strings.Repeat(" ", 34) + accentStyle.Render(" DB: OK ") + "\n\n")

	// Logo body
	for _, line := range logoText {
		b.WriteString(" " + textStyle.Render(line) + "\n")
	}
	b.WriteString("\n")

	// Footer inside box
	b.WriteString(taglineStyle.Render(" > factlog — time tracking for the masses"))

	return frameStyle.Render(b.String()) + "\n"
}

// ─── View (main router) ─────────────────────────────────────────────────────

func (m Model) View() string {
	var content string

	switch m.Screen {
	case ScreenDashboard:
		content = m.viewDashboard()
	case ScreenToday:
		content = m.viewToday()
	case ScreenAddFact:
		content = m.viewAddFact()
	case ScreenLog:
		content = m.viewLog()
	case ScreenSearch:
		content = m.viewSearch()
	case ScreenSearchResults:
		content = m.viewSearchResults()
	case ScreenActivities:
		content = m.viewActivities()
	default:
		content = "Unknown screen"
	}

	// Show error if present
	if m.ErrorMsg != "" {
		content += "\n" + errorStyle.Render("Error: "+m.ErrorMsg)
	}
	if m.StatusMsg != "" {
		content += "\n" + statusStyle.Render(m.StatusMsg)
	}

	return appStyle.Render(content)
}

// ─── Dashboard ───────────────────────────────────────────────────────────────

func (m Model) viewDashboard() string {
	var b strings.Builder

	// Logo header
	b.WriteString(renderLogo())
	b.WriteString("\n")

	// Currently tracking card
	if m.OpenFact != nil {
		b.WriteString(trackingCardStyle.Render(fmt.Sprintf("▶ %s  %s",
			lipgloss.NewStyle().Bold(true).Foreground(colorPeach).Render(factLabel(m.OpenFact)),
			timestampStyle.Render("since "+m.OpenFact.Start.Format("15:04")))))
		b.WriteString("\n")
	}

	// Stats card
	if m.Stats != nil {
		statsContent := fmt.Sprintf(
			"%s %s\n%s %s\n%s %s\n%s %s",
			statNumberStyle.Render(fmt.Sprintf("%d", m.Stats.TotalFacts)),
			statLabelStyle.Render("facts"),
			statNumberStyle.Render(fmt.Sprintf("%d", m.Stats.TotalActivities)),
			statLabelStyle.Render("activities"),
			statNumberStyle.Render(fmt.Sprintf("%d", m.Stats.TotalCategories)),
			statLabelStyle.Render("categories"),
			statNumberStyle.Render(fmt.Sprintf("%d", m.Stats.TotalTags)),
			statLabelStyle.Render("tags"),
		)
		b.WriteString(statCardStyle.Render(statsContent))
		b.WriteString("\n")

		b.WriteString(fmt.Sprintf("  %s %s\n\n",
			detailLabelStyle.Render("Today:"),
			durationStyle.Render(formatDuration(totalDelta(m.TodayFacts)))))
	} else {
		b.WriteString(statCardStyle.Render(m.Spinner.View() + " Loading stats..."))
		b.WriteString("\n")
	}

	// Menu
	b.WriteString(titleStyle.Render("  Actions"))
	b.WriteString("\n")

	for i, item := range dashboardMenuItems {
		if i == m.Cursor {
			b.WriteString(menuSelectedStyle.Render("▸ " + item))
		} else {
			b.WriteString(menuItemStyle.Render("  " + item))
		}
		b.WriteString("\n")
	}

	// Help
	b.WriteString(helpStyle.Render("\n  j/k navigate • enter select • a add • s stop • q quit"))

	return b.String()
}

// ─── Today ───────────────────────────────────────────────────────────────────

func (m Model) viewToday() string {
	var b strings.Builder

	header := fmt.Sprintf("  Today — %s — %s tracked",
		m.store.Today().Format("Mon 2 Jan"),
		formatDuration(totalDelta(m.TodayFacts)))
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	b.WriteString(m.renderFactList(m.TodayFacts))

	// Per-category totals
	if totals := categoryTotals(m.TodayFacts); len(totals) > 0 {
		b.WriteString("\n")
		b.WriteString(sectionHeadingStyle.Render("  Totals"))
		b.WriteString("\n")
		for _, ct := range totals {
			b.WriteString(fmt.Sprintf("  %s %s\n",
				categoryStyle.Render(fmt.Sprintf("%-20s", ct.name)),
				durationStyle.Render(formatDuration(ct.total))))
		}
	}

	b.WriteString(helpStyle.Render("\n  j/k navigate • a add • s stop • r remove • esc back"))

	return b.String()
}

// ─── Add Fact ────────────────────────────────────────────────────────────────

func (m Model) viewAddFact() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("  Start Tracking"))
	b.WriteString("\n\n")

	b.WriteString(inputBoxStyle.Render(m.AddInput.View()))
	b.WriteString("\n\n")

	b.WriteString(descriptionStyle.Render("coding@work, fixing the parser #go"))
	b.WriteString("\n")
	b.WriteString(descriptionStyle.Render("12:30-13:00 lunch"))
	b.WriteString("\n\n")

	b.WriteString(helpStyle.Render("  enter start • esc cancel"))

	return b.String()
}

// ─── Log ─────────────────────────────────────────────────────────────────────

func (m Model) viewLog() string {
	var b strings.Builder

	header := fmt.Sprintf("  Log — %s — %s tracked",
		m.LogDate.Format("Mon 2 Jan 2006"),
		formatDuration(totalDelta(m.LogFacts)))
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	b.WriteString(m.renderFactList(m.LogFacts))

	b.WriteString(helpStyle.Render("\n  h/l prev/next day • t today • j/k navigate • r remove • esc back"))

	return b.String()
}

// ─── Search ──────────────────────────────────────────────────────────────────

func (m Model) viewSearch() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("  Search Facts"))
	b.WriteString("\n\n")

	b.WriteString(inputBoxStyle.Render(m.SearchInput.View()))
	b.WriteString("\n\n")

	b.WriteString(descriptionStyle.Render("space means AND, comma means OR"))
	b.WriteString("\n\n")

	b.WriteString(helpStyle.Render("  Type a query and press enter • esc go back"))

	return b.String()
}

// ─── Search Results ──────────────────────────────────────────────────────────

func (m Model) viewSearchResults() string {
	var b strings.Builder

	resultCount := len(m.SearchResults)
	header := fmt.Sprintf("  Search: %q — %d result", m.SearchQuery, resultCount)
	if resultCount != 1 {
		header += "s"
	}
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	if resultCount == 0 {
		b.WriteString(noResultsStyle.Render("No facts found. Try a different query."))
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("  / new search • esc back"))
		return b.String()
	}

	b.WriteString(m.renderFactList(m.SearchResults))

	b.WriteString(helpStyle.Render("\n  j/k navigate • / new search • esc back"))

	return b.String()
}

// ─── Activities ──────────────────────────────────────────────────────────────

func (m Model) viewActivities() string {
	var b strings.Builder

	count := len(m.Activities)
	header := fmt.Sprintf("  Activities — %d total", count)
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	if count == 0 {
		b.WriteString(noResultsStyle.Render("No activities yet."))
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("  esc back"))
		return b.String()
	}

	visibleItems := m.Height - 8
	if visibleItems < 5 {
		visibleItems = 5
	}

	end := m.Scroll + visibleItems
	if end > count {
		end = count
	}

	for i := m.Scroll; i < end; i++ {
		a := m.Activities[i]
		cursor := "  "
		style := listItemStyle
		if i == m.Cursor {
			cursor = "▸ "
			style = listSelectedStyle
		}

		b.WriteString(fmt.Sprintf("%s%s  %s\n",
			cursor,
			style.Render(fmt.Sprintf("%-30s", a.Name)),
			categoryStyle.Render("@"+a.Category)))
	}

	if count > visibleItems {
		b.WriteString(fmt.Sprintf("\n  %s",
			timestampStyle.Render(fmt.Sprintf("showing %d-%d of %d", m.Scroll+1, end, count))))
	}

	b.WriteString(helpStyle.Render("\n  j/k navigate • esc back"))

	return b.String()
}

// ─── Shared Renderers ────────────────────────────────────────────────────────

func (m Model) renderFactList(facts []store.Fact) string {
	count := len(facts)
	if count == 0 {
		return noResultsStyle.Render("No facts recorded.") + "\n"
	}

	visibleItems := m.factListVisible()
	end := m.Scroll + visibleItems
	if end > count {
		end = count
	}

	var b strings.Builder
	for i := m.Scroll; i < end; i++ {
		b.WriteString(m.renderFactListItem(i, &facts[i]))
	}

	if count > visibleItems {
		b.WriteString(fmt.Sprintf("\n  %s",
			timestampStyle.Render(fmt.Sprintf("showing %d-%d of %d", m.Scroll+1, end, count))))
	}

	return b.String()
}

func (m Model) renderFactListItem(index int, f *store.Fact) string {
	cursor := "  "
	style := listItemStyle
	if index == m.Cursor {
		cursor = "▸ "
		style = listSelectedStyle
	}

	span := f.Start.Format("15:04") + " - "
	if f.End != nil {
		span += f.End.Format("15:04")
	} else {
		span += "...  "
	}

	tags := ""
	if len(f.Tags) > 0 {
		tags = "  " + tagStyle.Render("#"+strings.Join(f.Tags, " #"))
	}

	line := fmt.Sprintf("%s%s %s %s%s  %s\n",
		cursor,
		idStyle.Render(fmt.Sprintf("#%-4d", f.ID)),
		timestampStyle.Render(span),
		style.Render(factLabel(f)),
		tags,
		durationStyle.Render(formatDuration(f.Delta)))

	// Description preview on second line
	preview := truncateStr(f.Description, 80)
	if preview != "" {
		line += descriptionStyle.Render(preview) + "\n"
	}

	return line
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func factLabel(f *store.Fact) string {
	if f.Category == store.UnsortedName {
		return f.Activity
	}
	return f.Activity + "@" + f.Category
}

type categoryTotal struct {
	name  string
	total time.Duration
}

// categoryTotals sums tracked time per category, keeping first-seen order.
func categoryTotals(facts []store.Fact) []categoryTotal {
	index := make(map[string]int)
	var totals []categoryTotal
	for i := range facts {
		name := facts[i].Category
		at, ok := index[name]
		if !ok {
			at = len(totals)
			index[name] = at
			totals = append(totals, categoryTotal{name: name})
		}
		totals[at].total += facts[i].Delta
	}
	return totals
}

func totalDelta(facts []store.Fact) time.Duration {
	var total time.Duration
	for i := range facts {
		total += facts[i].Delta
	}
	return total
}

func formatDuration(d time.Duration) string {
	minutes := int(d.Minutes())
	if minutes < 60 {
		return fmt.Sprintf("%dmin", minutes)
	}
	return fmt.Sprintf("%dh %dmin", minutes/60, minutes%60)
}

func truncateStr(s string, max int) string {
	// Remove newlines for single-line display
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
