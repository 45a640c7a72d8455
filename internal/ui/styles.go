package ui

import "github.com/charmbracelet/lipgloss"

// Colors used in the application.
var (
	colorPrimary   = lipgloss.Color("62")  // Purple
	colorSecondary = lipgloss.Color("241") // Gray
	colorMuted     = lipgloss.Color("240") // Darker gray
	colorHighlight = lipgloss.Color("212") // Pink
	colorSuccess   = lipgloss.Color("78")  // Green
	colorWarning   = lipgloss.Color("214") // Orange
)

// SelectedItem style for the row under the cursor.
var SelectedItem = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Background(colorPrimary).
	Padding(0, 1)

// NormalItem style for other rows.
var NormalItem = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Padding(0, 1)

// MarkedItem style for photos selected for removal.
var MarkedItem = lipgloss.NewStyle().
	Foreground(colorHighlight).
	Padding(0, 1)

// Header style for the view title line.
var Header = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight).
	Padding(0, 1).
	MarginBottom(1)

// Subtle style for secondary details (coordinates, ages).
var Subtle = lipgloss.NewStyle().
	Foreground(colorSecondary)

// EmptyState style for the "no images" label.
var EmptyState = lipgloss.NewStyle().
	Foreground(colorMuted).
	Italic(true).
	Padding(1, 2)

// Hydration badges.
var (
	BadgeHydrated = lipgloss.NewStyle().Foreground(colorSuccess)
	BadgeLoading  = lipgloss.NewStyle().Foreground(colorWarning)
	BadgeFailed   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	BadgeIdle     = lipgloss.NewStyle().Foreground(colorMuted)
)

// StatusBar style for the bottom status bar.
var StatusBar = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("236")).
	Padding(0, 1)

// StatusBarKey style for key hints in status bar.
var StatusBarKey = lipgloss.NewStyle().
	Foreground(colorHighlight).
	Bold(true)

// StatusBarText style for descriptive text in status bar.
var StatusBarText = lipgloss.NewStyle().
	Foreground(colorSecondary)

// ErrorStyle for displaying errors.
var ErrorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("196")).
	Bold(true).
	Padding(0, 1)

// InfoStyle for non-error notices.
var InfoStyle = lipgloss.NewStyle().
	Foreground(colorSuccess).
	Padding(0, 1)

// InputBar style for the add-pin prompt.
var InputBar = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(colorMuted).
	Padding(0, 1)
