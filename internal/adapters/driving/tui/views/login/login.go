// Package login provides the access key prompt for the TUI.
package login

import (
	"context"
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/procdesk/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/procdesk/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/procdesk/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/procdesk/internal/core/domain"
	"github.com/custodia-labs/procdesk/internal/core/ports/driving"
)

// View asks for the shared access key and admits the operator.
type View struct {
	styles *styles.Styles
	gate   driving.SessionGate
	ctx    context.Context

	user    string
	field   *input.Field
	err     error
	notice  string
	loading bool
	width   int
	height  int
}

// NewView creates a new login view.
func NewView(s *styles.Styles, gate driving.SessionGate, user string) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	field := input.NewSecretField(s, "Clave")
	field.Focus()

	return &View{
		styles: s,
		gate:   gate,
		ctx:    context.Background(),
		user:   user,
		field:  field,
		width:  80,
		height: 24,
	}
}

// WithContext sets the context used for admission.
func (v *View) WithContext(ctx context.Context) {
	v.ctx = ctx
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return tea.Batch(v.field.Focus(), v.field.Init())
}

// Update handles messages for the login view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if v.loading {
			return v, nil
		}
		switch msg.String() {
		case "enter":
			secret := v.field.Value()
			if strings.TrimSpace(secret) == "" {
				v.err = errors.New("introduzca la clave de acceso")
				return v, nil
			}
			v.loading = true
			v.err = nil
			return v, v.admit(secret)
		case "esc":
			return v, tea.Quit
		}
		var cmd tea.Cmd
		v.field, cmd = v.field.Update(msg)
		return v, cmd

	case messages.LoginCompleted:
		v.loading = false
		v.field.Reset()
		if msg.Err != nil {
			v.err = msg.Err
		}
		return v, nil
	}

	var cmd tea.Cmd
	v.field, cmd = v.field.Update(msg)
	return v, cmd
}

// admit returns a command that checks the key against the session gate.
func (v *View) admit(secret string) tea.Cmd {
	gate, ctx, user := v.gate, v.ctx, v.user
	return func() tea.Msg {
		if gate == nil {
			return messages.LoginCompleted{Err: errors.New("session gate not available")}
		}
		session, err := gate.Admit(ctx, secret, user)
		if errors.Is(err, domain.ErrInvalidSecret) {
			err = errors.New("clave incorrecta")
		}
		return messages.LoginCompleted{Session: session, Err: err}
	}
}

// View renders the login form.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("procdesk"))
	b.WriteString("\n\n")
	b.WriteString(v.styles.Muted.Render("Introduzca la clave de acceso para continuar."))
	b.WriteString("\n\n")
	b.WriteString(v.field.View())
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Verificando..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render(v.err.Error()))
	case v.notice != "":
		b.WriteString(v.styles.Warning.Render(v.notice))
	}
	b.WriteString("\n\n")

	if v.gate != nil && v.gate.UsingDefaultSecret() {
		b.WriteString(v.styles.Warning.Render("Aviso: se está usando la clave por defecto. Configure APP_PASS."))
		b.WriteString("\n\n")
	}

	b.WriteString(v.styles.Help.Render("[Enter] Entrar  [Esc] Salir"))
	return b.String()
}

// Reset clears the form and shows notice, for example after logout.
func (v *View) Reset(notice string) {
	v.field.Reset()
	v.field.Focus()
	v.err = nil
	v.loading = false
	v.notice = notice
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.field.SetWidth(width)
}

// Err returns the last admission error.
func (v *View) Err() error {
	return v.err
}

// Loading returns whether an admission is in flight.
func (v *View) Loading() bool {
	return v.loading
}
