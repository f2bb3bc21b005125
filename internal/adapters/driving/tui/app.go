package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/procdesk/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/procdesk/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/procdesk/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/procdesk/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/procdesk/internal/adapters/driving/tui/views/ledger"
	"github.com/custodia-labs/procdesk/internal/adapters/driving/tui/views/login"
	"github.com/custodia-labs/procdesk/internal/adapters/driving/tui/views/menu"
	"github.com/custodia-labs/procdesk/internal/adapters/driving/tui/views/run"
	"github.com/custodia-labs/procdesk/internal/core/domain"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	styles *styles.Styles
	keymap *keymap.KeyMap

	loginView  *login.View
	menuView   *menu.View
	runView    *run.View
	ledgerView *ledger.View
	statusBar  *status.Bar

	// session is nil until the operator is admitted.
	session *domain.Session

	// currentView tracks which view is active.
	currentView messages.ViewType

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	bar := status.NewBar(s, km)
	bar.SetUser(ports.User)

	menuView := menu.NewView(s, km)
	menuView.SetUser(ports.User)

	return &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		keymap:      km,
		loginView:   login.NewView(s, ports.Sessions, ports.User),
		menuView:    menuView,
		runView:     run.NewView(s, ports.Process, ports.User, ports.ArchiveDir),
		ledgerView:  ledger.NewView(s, ports.Ledger),
		statusBar:   bar,
		currentView: messages.ViewLogin,
	}, nil
}

// WithContext sets the context for the app and its views.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.loginView.WithContext(ctx)
	a.runView.WithContext(ctx)
	a.ledgerView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("procdesk"),
		a.loginView.Init(),
	)
}

// Update implements tea.Model.
//
//nolint:gocognit,gocyclo,funlen // central message handler requires complexity
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		// Global quit with ctrl+c
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

		switch a.currentView {
		case messages.ViewLogin:
			a.loginView, cmd = a.loginView.Update(msg)
		case messages.ViewMenu:
			a.menuView, cmd = a.menuView.Update(msg)
		case messages.ViewRun:
			a.runView, cmd = a.runView.Update(msg)
		case messages.ViewLedger:
			a.ledgerView, cmd = a.ledgerView.Update(msg)
		case messages.ViewHelp:
			if msg.Type == tea.KeyEsc {
				a.currentView = messages.ViewMenu
			}
		}
		a.syncStatus()
		return a, cmd

	case messages.LoginCompleted:
		a.loginView, cmd = a.loginView.Update(msg)
		if msg.Err != nil || msg.Session == nil {
			return a, cmd
		}
		a.setSession(msg.Session)
		a.currentView = messages.ViewMenu
		a.statusBar.Clear()
		return a, cmd

	case messages.LoggedOut:
		a.endSession("Sesión cerrada.")
		return a, nil

	case messages.ViewChanged:
		a.currentView = msg.View
		a.statusBar.Clear()
		switch msg.View {
		case messages.ViewRun:
			a.runView.Reset()
			cmd = a.runView.Init()
		case messages.ViewLedger:
			cmd = a.ledgerView.Init()
		case messages.ViewLogin, messages.ViewMenu, messages.ViewHelp:
			// No initialisation needed
		}
		a.syncStatus()
		return a, cmd

	case messages.ProcessesLoaded:
		if a.sessionLost(msg.Err) {
			return a, nil
		}
		a.runView, cmd = a.runView.Update(msg)
		return a, cmd

	case messages.InvocationCompleted:
		if a.sessionLost(msg.Err) {
			return a, nil
		}
		a.runView, cmd = a.runView.Update(msg)
		switch {
		case msg.Err != nil:
			a.statusBar.SetState(status.StateError)
			a.statusBar.SetMessage(msg.Err.Error())
		case msg.Report != nil && !msg.Report.Succeeded():
			a.statusBar.SetState(status.StateError)
			a.statusBar.SetMessage(msg.Report.Err.Error())
		default:
			a.statusBar.SetState(status.StateDone)
			a.statusBar.SetMessage("Proceso completado")
		}
		return a, cmd

	case messages.LedgerLoaded:
		if a.sessionLost(msg.Err) {
			return a, nil
		}
		a.ledgerView, cmd = a.ledgerView.Update(msg)
		a.syncStatus()
		return a, cmd

	case messages.LedgerCleared:
		if a.sessionLost(msg.Err) {
			return a, nil
		}
		a.ledgerView, cmd = a.ledgerView.Update(msg)
		a.syncStatus()
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
		a.statusBar.SetState(status.StateError)
		if msg.Err != nil {
			a.statusBar.SetMessage(msg.Err.Error())
		}
		return a, nil

	case messages.Quit:
		return a, tea.Quit
	}

	// Spinner ticks and anything else go to the active view.
	switch a.currentView {
	case messages.ViewLogin:
		a.loginView, cmd = a.loginView.Update(msg)
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewRun:
		a.runView, cmd = a.runView.Update(msg)
	case messages.ViewLedger:
		a.ledgerView, cmd = a.ledgerView.Update(msg)
	case messages.ViewHelp:
		// Help view doesn't need to handle other messages
	}

	return a, cmd
}

func (a *App) setSession(session *domain.Session) {
	a.session = session
	a.err = nil
	a.runView.SetSession(session)
	a.ledgerView.SetSession(session)
	a.menuView.SetUser(session.User)
	a.statusBar.SetUser(session.User)
}

// endSession drops the session and returns to the login view.
func (a *App) endSession(notice string) {
	if a.session != nil {
		a.ports.Sessions.Logout(a.session)
	}
	a.session = nil
	a.runView.SetSession(nil)
	a.ledgerView.SetSession(nil)
	a.runView.Reset()
	a.statusBar.Clear()
	a.loginView.Reset(notice)
	a.currentView = messages.ViewLogin
}

// sessionLost returns to the login view when err means the session is gone.
func (a *App) sessionLost(err error) bool {
	switch {
	case errors.Is(err, domain.ErrSessionExpired):
		a.endSession("La sesión ha expirado.")
		return true
	case errors.Is(err, domain.ErrNotAdmitted):
		a.endSession("Inicie sesión de nuevo.")
		return true
	}
	return false
}

// syncStatus updates the status bar from the active view.
func (a *App) syncStatus() {
	switch a.currentView {
	case messages.ViewRun:
		if a.runView.Stage() == run.StageRunning {
			a.statusBar.SetState(status.StateRunning)
			return
		}
		if a.statusBar.State() == status.StateRunning {
			a.statusBar.SetState(status.StateReady)
		}
		a.statusBar.SetHints(a.keymap.RunHelp())
	case messages.ViewLedger:
		if a.ledgerView.Confirming() {
			a.statusBar.SetState(status.StateConfirming)
			a.statusBar.SetMessage("¿Borrar registros?")
			return
		}
		if a.statusBar.State() == status.StateConfirming {
			a.statusBar.SetState(status.StateReady)
			a.statusBar.SetMessage("")
		}
		a.statusBar.SetHints(a.keymap.LedgerHelp())
	case messages.ViewMenu:
		a.statusBar.SetHints(a.keymap.MenuHelp())
	default:
		a.statusBar.SetHints(nil)
	}
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Iniciando..."
	}

	var body string
	switch a.currentView {
	case messages.ViewLogin:
		return a.loginView.View()
	case messages.ViewMenu:
		body = a.menuView.View()
	case messages.ViewRun:
		body = a.runView.View()
	case messages.ViewLedger:
		body = a.ledgerView.View()
	case messages.ViewHelp:
		body = a.viewHelp()
	default:
		body = a.menuView.View()
	}

	return body + "\n\n" + a.statusBar.View()
}

// viewHelp renders the help view.
func (a *App) viewHelp() string {
	var b strings.Builder

	b.WriteString(a.styles.Title.Render("Ayuda"))
	b.WriteString("\n\n")

	for _, group := range a.keymap.FullHelp() {
		for _, binding := range group {
			h := binding.Help()
			b.WriteString(fmt.Sprintf("  %-10s %s\n", h.Key, h.Desc))
		}
		b.WriteString("\n")
	}

	b.WriteString(a.styles.Normal.Render("Los resultados se guardan como resultados_<proceso>.zip"))
	b.WriteString("\n")
	b.WriteString(a.styles.Normal.Render("y cada ejecución queda en los registros de uso."))
	b.WriteString("\n\n")
	b.WriteString(a.styles.Help.Render("[esc] volver al menú"))

	return b.String()
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && a.ctx.Err() != nil {
		return nil
	}
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Session returns the active session, or nil before login.
func (a *App) Session() *domain.Session {
	return a.session
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true

	// One line for the status bar and one for spacing.
	bodyHeight := height - 2
	a.loginView.SetDimensions(width, height)
	a.menuView.SetDimensions(width, bodyHeight)
	a.runView.SetDimensions(width, bodyHeight)
	a.ledgerView.SetDimensions(width, bodyHeight)
	a.statusBar.SetWidth(width)
}
