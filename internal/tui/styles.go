package tui

import "github.com/charmbracelet/lipgloss"

// ─── Colors (warm tracker palette) ───────────────────────────────────────────

var (
	colorBase    = lipgloss.Color("#1e1e2e") // Deep night base
	colorSurface = lipgloss.Color("#313244") // Panel bg
	colorOverlay = lipgloss.Color("#6c7086") // Muted borders
	colorText    = lipgloss.Color("#cdd6f4") // Main text
	colorSubtext = lipgloss.Color("#a6adc8") // Dim text
	colorPeach   = lipgloss.Color("#fab387") // Primary brand orange
	colorGreen   = lipgloss.Color("#a6e3a1") // Success / durations
	colorRed     = lipgloss.Color("#f38ba8") // Errors
	colorBlue    = lipgloss.Color("#89b4fa") // IDs
	colorMauve   = lipgloss.Color("#cba6f7") // Section titles
	colorYellow  = lipgloss.Color("#f9e2af") // Categories
	colorTeal    = lipgloss.Color("#94e2d5") // Tags
)

// ─── Layout Styles ───────────────────────────────────────────────────────────

var (
	// App frame
	appStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Padding(1, 2)

	// Header bar
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPeach).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(colorOverlay).
			PaddingBottom(1).
			MarginBottom(1)

	// Footer / help bar
	helpStyle = lipgloss.NewStyle().
			Foreground(colorSubtext).
			MarginTop(1)

	// Error message
	errorStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true).
			Padding(0, 1)

	// Transient status message
	statusStyle = lipgloss.NewStyle().
			Foreground(colorGreen).
			Padding(0, 1)
)

// ─── Dashboard Styles ────────────────────────────────────────────────────────

var (
	// Big stat number
	statNumberStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorGreen).
			Width(8).
			Align(lipgloss.Right)

	// Stat label
	statLabelStyle = lipgloss.NewStyle().
			Foreground(colorText).
			PaddingLeft(2)

	// Stat card container
	statCardStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(colorOverlay).
			Padding(1, 2).
			MarginBottom(1)

	// Menu item (normal)
	menuItemStyle = lipgloss.NewStyle().
			Foreground(colorText).
			PaddingLeft(2)

	// Menu item (selected)
	menuSelectedStyle = lipgloss.NewStyle().
				Foreground(colorPeach).
				Bold(true).
				PaddingLeft(1)

	// Dashboard title
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorMauve).
			MarginBottom(1)

	// Currently tracking card
	trackingCardStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(colorPeach).
				Padding(0, 1).
				MarginBottom(1)
)

// ─── List Styles ─────────────────────────────────────────────────────────────

var (
	// List item (normal)
	listItemStyle = lipgloss.NewStyle().
			Foreground(colorText).
			PaddingLeft(2)

	// List item (selected/cursor)
	listSelectedStyle = lipgloss.NewStyle().
				Foreground(colorPeach).
				Bold(true).
				PaddingLeft(1)

	// Category badge
	categoryStyle = lipgloss.NewStyle().
			Foreground(colorYellow)

	// Tag badge
	tagStyle = lipgloss.NewStyle().
			Foreground(colorTeal)

	// Fact ID
	idStyle = lipgloss.NewStyle().
		Foreground(colorBlue)

	// Timestamp / time range
	timestampStyle = lipgloss.NewStyle().
			Foreground(colorSubtext).
			Italic(true)

	// Duration
	durationStyle = lipgloss.NewStyle().
			Foreground(colorGreen)

	// Description preview
	descriptionStyle = lipgloss.NewStyle().
				Foreground(colorSubtext).
				PaddingLeft(4)
)

// ─── Detail Styles ───────────────────────────────────────────────────────────

var (
	// Section heading
	sectionHeadingStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorMauve).
				MarginTop(1).
				MarginBottom(1)

	// Detail label
	detailLabelStyle = lipgloss.NewStyle().
				Foreground(colorSubtext).
				Width(14).
				Align(lipgloss.Right).
				PaddingRight(1)

	// Detail value
	detailValueStyle = lipgloss.NewStyle().
				Foreground(colorText)
)

// ─── Input Styles ────────────────────────────────────────────────────────────

var (
	inputBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(colorPeach).
			Foreground(colorText).
			Padding(0, 1).
			MarginBottom(1)

	noResultsStyle = lipgloss.NewStyle().
			Foreground(colorSubtext).
			Italic(true).
			PaddingLeft(2).
			MarginTop(1)
)
