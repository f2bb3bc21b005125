// Package ledger provides the usage ledger view for the TUI.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/procdesk/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/procdesk/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/procdesk/internal/core/domain"
	"github.com/custodia-labs/procdesk/internal/core/ports/driving"
)

// columnWidths follows domain.LedgerColumns.
var columnWidths = []int{19, 12, 16, 28, 30}

// View shows the ledger as a table.
type View struct {
	styles  *styles.Styles
	service driving.LedgerService
	session *domain.Session
	ctx     context.Context

	table      table.Model
	records    []domain.LedgerRecord
	confirming bool
	loading    bool
	notice     string
	err        error
	width      int
	height     int
}

// NewView creates a new ledger view.
func NewView(s *styles.Styles, service driving.LedgerService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	columns := make([]table.Column, len(domain.LedgerColumns))
	for i, title := range domain.LedgerColumns {
		columns[i] = table.Column{Title: title, Width: columnWidths[i]}
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)
	t.SetStyles(s.Table())

	return &View{
		styles:  s,
		service: service,
		ctx:     context.Background(),
		table:   t,
		width:   80,
		height:  24,
	}
}

// WithContext sets the context used for ledger calls.
func (v *View) WithContext(ctx context.Context) {
	v.ctx = ctx
}

// SetSession sets the session every call runs under.
func (v *View) SetSession(session *domain.Session) {
	v.session = session
}

// Init loads the ledger.
func (v *View) Init() tea.Cmd {
	v.loading = true
	v.confirming = false
	return v.load()
}

func (v *View) load() tea.Cmd {
	service, ctx, session := v.service, v.ctx, v.session
	return func() tea.Msg {
		if service == nil {
			return messages.LedgerLoaded{Err: errors.New("ledger service not available")}
		}
		records, err := service.List(ctx, session)
		return messages.LedgerLoaded{Records: records, Err: err}
	}
}

func (v *View) clear() tea.Cmd {
	service, ctx, session := v.service, v.ctx, v.session
	return func() tea.Msg {
		if service == nil {
			return messages.LedgerCleared{Err: errors.New("ledger service not available")}
		}
		return messages.LedgerCleared{Err: service.Clear(ctx, session)}
	}
}

// Update handles messages for the ledger view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.LedgerLoaded:
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.setRecords(msg.Records)
		}
		return v, nil

	case messages.LedgerCleared:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.notice = "Registros borrados."
		v.loading = true
		return v, v.load()

	case tea.KeyMsg:
		if v.confirming {
			return v.updateConfirm(msg)
		}
		switch msg.String() {
		case "esc":
			return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewMenu} }
		case "r":
			v.notice = ""
			v.loading = true
			return v, v.load()
		case "x":
			if len(v.records) == 0 {
				return v, nil
			}
			v.confirming = true
			return v, nil
		}
	}

	var cmd tea.Cmd
	v.table, cmd = v.table.Update(msg)
	return v, cmd
}

func (v *View) updateConfirm(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "y", "s":
		v.confirming = false
		return v, v.clear()
	case "n", "esc":
		v.confirming = false
	}
	return v, nil
}

func (v *View) setRecords(records []domain.LedgerRecord) {
	v.records = records
	rows := make([]table.Row, 0, len(records))
	// Newest first.
	for i := len(records) - 1; i >= 0; i-- {
		rows = append(rows, records[i].Row())
	}
	v.table.SetRows(rows)
	v.table.GotoTop()
}

// View renders the ledger.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Registros de uso"))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Cargando registros..."))
		b.WriteString("\n")
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		b.WriteString("\n")
	case len(v.records) == 0:
		b.WriteString(v.styles.Muted.Render("No hay registros."))
		b.WriteString("\n")
	default:
		b.WriteString(v.table.View())
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("%d registros (%d con error)", len(v.records), v.failures())))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if v.confirming {
		b.WriteString(v.styles.Warning.Render("¿Borrar todos los registros? Esta acción no se puede deshacer. [y/n]"))
		return b.String()
	}
	if v.notice != "" {
		b.WriteString(v.styles.Success.Render(v.notice))
		b.WriteString("\n")
	}
	b.WriteString(v.styles.Help.Render("[j/k] Navigate  [r] Refresh  [x] Clear  [Esc] Back"))

	return b.String()
}

func (v *View) failures() int {
	n := 0
	for _, r := range v.records {
		if r.Failed() {
			n++
		}
	}
	return n
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	if h := height - 8; h > 3 {
		v.table.SetHeight(h)
	}
	v.table.SetWidth(width)
}

// Records returns the loaded records.
func (v *View) Records() []domain.LedgerRecord {
	return v.records
}

// Confirming reports whether a clear confirmation is pending.
func (v *View) Confirming() bool {
	return v.confirming
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
