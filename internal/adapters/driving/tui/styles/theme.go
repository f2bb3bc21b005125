// Package styles holds the procdesk TUI palette and the lipgloss styles
// derived from it.
package styles

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// Palette names the colours the views draw with.
type Palette struct {
	Accent  lipgloss.Color
	Heading lipgloss.Color
	Text    lipgloss.Color
	Dim     lipgloss.Color
	Ok      lipgloss.Color
	Caution lipgloss.Color
	Fail    lipgloss.Color
	Frame   lipgloss.Color
	Bar     lipgloss.Color
}

// DefaultPalette is a dark-terminal palette.
func DefaultPalette() Palette {
	return Palette{
		Accent:  lipgloss.Color("#2563EB"),
		Heading: lipgloss.Color("#0EA5E9"),
		Text:    lipgloss.Color("#E5E7EB"),
		Dim:     lipgloss.Color("#6B7280"),
		Ok:      lipgloss.Color("#22C55E"),
		Caution: lipgloss.Color("#EAB308"),
		Fail:    lipgloss.Color("#EF4444"),
		Frame:   lipgloss.Color("#374151"),
		Bar:     lipgloss.Color("#111827"),
	}
}

// Styles are the rendered styles shared by every view.
type Styles struct {
	palette Palette

	Title      lipgloss.Style
	Subtitle   lipgloss.Style
	Normal     lipgloss.Style
	Muted      lipgloss.Style
	Selected   lipgloss.Style
	Error      lipgloss.Style
	Success    lipgloss.Style
	Warning    lipgloss.Style
	Label      lipgloss.Style // form field names, fixed width so inputs line up
	InputField lipgloss.Style
	StatusBar  lipgloss.Style
	Help       lipgloss.Style
}

// NewStyles derives the view styles from p.
func NewStyles(p Palette) *Styles {
	text := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }

	return &Styles{
		palette:  p,
		Title:    text(p.Accent).Bold(true),
		Subtitle: text(p.Heading).Bold(true),
		Normal:   text(p.Text),
		Muted:    text(p.Dim),
		Selected: text(p.Text).Background(p.Accent).Bold(true),
		Error:    text(p.Fail),
		Success:  text(p.Ok).Bold(true),
		Warning:  text(p.Caution),
		Label:    text(p.Heading).Bold(true).Width(14),
		InputField: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(p.Frame).
			Padding(0, 1),
		StatusBar: text(p.Dim).Background(p.Bar).Padding(0, 1),
		Help:      text(p.Dim),
	}
}

func DefaultStyles() *Styles {
	return NewStyles(DefaultPalette())
}

// Table styles the ledger table: framed header, accent selection.
func (s *Styles) Table() table.Styles {
	ts := table.DefaultStyles()
	ts.Header = ts.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(s.palette.Frame).
		BorderBottom(true).
		Bold(true).
		Foreground(s.palette.Heading)
	ts.Selected = ts.Selected.
		Foreground(s.palette.Text).
		Background(s.palette.Accent).
		Bold(false)
	return ts
}

// Outcome renders a run or ledger outcome in success or error colour.
func (s *Styles) Outcome(text string, succeeded bool) string {
	if succeeded {
		return s.Success.Render(text)
	}
	return s.Error.Render(text)
}
