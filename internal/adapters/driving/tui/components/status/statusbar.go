// Package status renders the bottom line of the TUI: the operator, what
// the app is doing, and the keys that apply right now.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/procdesk/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/procdesk/internal/adapters/driving/tui/styles"
)

type State string

const (
	StateReady      State = "ready"
	StateRunning    State = "running"
	StateError      State = "error"
	StateDone       State = "done"
	StateConfirming State = "confirming"
)

// Bar is passive: the app sets its fields after every update.
type Bar struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	state   State
	message string
	user    string
	hints   []key.Binding
	width   int
}

func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &Bar{styles: s, keymap: km, state: StateReady, width: 80}
}

func (s *Bar) View() string {
	left, right := s.left(), s.right()
	gap := max(s.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return s.styles.StatusBar.Width(s.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (s *Bar) left() string {
	style, fallback := s.styles.Muted, "Disponible"
	text := s.message
	switch s.state {
	case StateRunning:
		style, text = s.styles.Warning, "Procesando..."
	case StateError:
		style, fallback = s.styles.Error, "Error"
		if text != "" {
			text = "Error: " + text
		}
	case StateDone:
		style, fallback = s.styles.Success, "Listo"
	case StateConfirming:
		style, fallback = s.styles.Warning, "¿Confirmar?"
	}
	if text == "" {
		text = fallback
	}

	state := style.Render(text)
	if s.user == "" {
		return state
	}
	return s.styles.Normal.Render(s.user) + s.styles.Muted.Render(" | ") + state
}

func (s *Bar) right() string {
	bindings := s.hints
	switch {
	case s.state == StateConfirming:
		bindings = s.keymap.ConfirmHelp()
	case len(bindings) == 0:
		bindings = s.keymap.ShortHelp()
	}

	parts := make([]string, len(bindings))
	for i, b := range bindings {
		parts[i] = fmt.Sprintf("%s: %s", b.Help().Key, b.Help().Desc)
	}
	return s.styles.Muted.Render(strings.Join(parts, " | "))
}

func (s *Bar) SetState(state State)  { s.state = state }
func (s *Bar) State() State          { return s.state }
func (s *Bar) SetMessage(msg string) { s.message = msg }
func (s *Bar) Message() string       { return s.message }
func (s *Bar) SetUser(user string)   { s.user = user }
func (s *Bar) User() string          { return s.user }
func (s *Bar) SetWidth(width int)    { s.width = width }
func (s *Bar) Width() int            { return s.width }

// SetHints overrides the key hints. Nil restores the defaults.
func (s *Bar) SetHints(b []key.Binding) { s.hints = b }

// Clear returns to the ready state, keeping the operator.
func (s *Bar) Clear() {
	s.state = StateReady
	s.message = ""
	s.hints = nil
}
