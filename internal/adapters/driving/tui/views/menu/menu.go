// Package menu is the main menu shown after login.
package menu

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/procdesk/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/procdesk/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/procdesk/internal/adapters/driving/tui/styles"
)

type entry struct {
	label string
	cmd   tea.Cmd
	// rewind puts the cursor back on the first entry once chosen.
	rewind bool
}

func switchTo(v messages.ViewType) tea.Cmd {
	return func() tea.Msg { return messages.ViewChanged{View: v} }
}

// View lists the things an admitted operator can do. Items can be chosen
// with the cursor or by their number.
type View struct {
	styles  *styles.Styles
	keys    *keymap.KeyMap
	entries []entry
	cursor  int
	user    string
	width   int
	height  int
	ready   bool
}

func NewView(s *styles.Styles, km *keymap.KeyMap) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		styles: s,
		keys:   km,
		entries: []entry{
			{label: "Ejecutar proceso", cmd: switchTo(messages.ViewRun)},
			{label: "Registros de uso", cmd: switchTo(messages.ViewLedger)},
			{label: "Ayuda", cmd: switchTo(messages.ViewHelp)},
			{label: "Cerrar sesión", cmd: func() tea.Msg { return messages.LoggedOut{} }, rewind: true},
			{label: "Salir", cmd: tea.Quit},
		},
		width:  80,
		height: 24,
	}
}

func (v *View) Init() tea.Cmd {
	return nil
}

func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
	case tea.KeyMsg:
		return v, v.handleKey(msg)
	}
	return v, nil
}

func (v *View) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, v.keys.Up):
		v.cursor = max(v.cursor-1, 0)
	case key.Matches(msg, v.keys.Down):
		v.cursor = min(v.cursor+1, len(v.entries)-1)
	case key.Matches(msg, v.keys.Select):
		return v.choose(v.cursor)
	case key.Matches(msg, v.keys.Help):
		return switchTo(messages.ViewHelp)
	case key.Matches(msg, v.keys.Quit):
		return tea.Quit
	default:
		s := msg.String()
		if len(s) == 1 && s[0] >= '1' && int(s[0]-'0') <= len(v.entries) {
			return v.choose(int(s[0] - '1'))
		}
	}
	return nil
}

func (v *View) choose(i int) tea.Cmd {
	v.cursor = i
	if v.entries[i].rewind {
		v.cursor = 0
	}
	return v.entries[i].cmd
}

func (v *View) View() string {
	if !v.ready {
		return "Iniciando..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("procdesk"))
	b.WriteString("\n\n")

	subtitle := "Procesamiento de documentos"
	if v.user != "" {
		subtitle += " · " + v.user
	}
	b.WriteString(v.styles.Muted.Render(subtitle))
	b.WriteString("\n\n")

	for i, e := range v.entries {
		line := fmt.Sprintf("%d. %s", i+1, e.label)
		if i == v.cursor {
			b.WriteString("> " + v.styles.Subtitle.Render(line))
		} else {
			b.WriteString("  " + v.styles.Normal.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// SetUser sets the operator shown under the title.
func (v *View) SetUser(user string) {
	v.user = user
}

func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Selected is the cursor position.
func (v *View) Selected() int {
	return v.cursor
}
