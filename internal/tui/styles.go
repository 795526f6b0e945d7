// Package tui is the interactive terminal front end: a submit form, the
// reviews list and a single review card, all backed by the workflow package.
package tui

import "github.com/charmbracelet/lipgloss"

// Palette
var (
	Primary     = lipgloss.Color("#2563EB")
	Accent      = lipgloss.Color("#F59E0B")
	Muted       = lipgloss.Color("#6B7280")
	Border      = lipgloss.Color("#D1D5DB")
	Success     = lipgloss.Color("#16A34A")
	Destructive = lipgloss.Color("#DC2626")
)

// Styles bundles every style the pages render with.
type Styles struct {
	Header  lipgloss.Style
	Title   lipgloss.Style
	Tab     lipgloss.Style
	TabOn   lipgloss.Style
	Footer  lipgloss.Style
	Label   lipgloss.Style
	Focused lipgloss.Style
	Muted   lipgloss.Style
	Stars   lipgloss.Style
	Card    lipgloss.Style
	Button  lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
}

// DefaultStyles returns the standard style set.
func DefaultStyles() Styles {
	return Styles{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			MarginBottom(1),
		Title: lipgloss.NewStyle().Bold(true),
		Tab: lipgloss.NewStyle().
			Foreground(Muted).
			Padding(0, 1),
		TabOn: lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			Underline(true).
			Padding(0, 1),
		Footer:  lipgloss.NewStyle().Foreground(Muted).MarginTop(1),
		Label:   lipgloss.NewStyle().Bold(true),
		Focused: lipgloss.NewStyle().Bold(true).Foreground(Primary),
		Muted:   lipgloss.NewStyle().Foreground(Muted),
		Stars:   lipgloss.NewStyle().Foreground(Accent),
		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Border).
			Padding(0, 1),
		Button: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(Primary).
			Padding(0, 2),
		Success: lipgloss.NewStyle().
			Foreground(Success).
			Border(lipgloss.NormalBorder()).
			BorderForeground(Success).
			Padding(0, 1),
		Error: lipgloss.NewStyle().
			Foreground(Destructive).
			Border(lipgloss.NormalBorder()).
			BorderForeground(Destructive).
			Padding(0, 1),
	}
}
