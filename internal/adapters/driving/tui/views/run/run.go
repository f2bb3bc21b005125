// Package run provides the process run view for the TUI.
//
// The operator picks a process, enters the path of a PDF and an output
// folder, and waits for the invocation. The result archive is saved to the
// output folder and the summary is shown.
package run

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/procdesk/internal/adapters/driving/results"
	"github.com/custodia-labs/procdesk/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/procdesk/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/procdesk/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/procdesk/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/procdesk/internal/core/domain"
	"github.com/custodia-labs/procdesk/internal/core/ports/driving"
)

// Stage is the step of the run flow.
type Stage int

const (
	// StageSelect lists processes.
	StageSelect Stage = iota
	// StageForm asks for the document and output folder.
	StageForm
	// StageRunning waits for the invocation.
	StageRunning
	// StageDone shows the result.
	StageDone
)

// ErrNotPDF is returned when the chosen document is not a PDF.
var ErrNotPDF = errors.New("solo se admiten archivos PDF")

// View is the process run view.
type View struct {
	styles  *styles.Styles
	service driving.ProcessService
	session *domain.Session
	ctx     context.Context
	user    string

	stage     Stage
	processes *list.ProcessList
	process   *domain.ProcessInfo
	fileField *input.Field
	outField  *input.Field
	focus     int
	spinner   spinner.Model

	result  *messages.InvocationCompleted
	err     error
	loading bool
	width   int
	height  int
}

// NewView creates a new run view. archiveDir is the default output folder.
func NewView(s *styles.Styles, service driving.ProcessService, user, archiveDir string) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if archiveDir == "" {
		archiveDir = "."
	}

	outField := input.NewField(s, "Carpeta", "carpeta de resultados")
	outField.SetValue(archiveDir)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = s.Subtitle

	return &View{
		styles:    s,
		service:   service,
		ctx:       context.Background(),
		user:      user,
		processes: list.NewProcessList(s),
		fileField: input.NewField(s, "Documento", "ruta/al/documento.pdf"),
		outField:  outField,
		spinner:   sp,
		width:     80,
		height:    24,
	}
}

// WithContext sets the context used for invocations.
func (v *View) WithContext(ctx context.Context) {
	v.ctx = ctx
}

// SetSession sets the session every call runs under.
func (v *View) SetSession(session *domain.Session) {
	v.session = session
}

// Init loads the process list.
func (v *View) Init() tea.Cmd {
	v.loading = true
	return v.loadProcesses()
}

// Reset returns to the process list.
func (v *View) Reset() {
	v.stage = StageSelect
	v.process = nil
	v.result = nil
	v.err = nil
	v.fileField.Reset()
	v.fileField.Blur()
	v.outField.Blur()
	v.focus = 0
}

func (v *View) loadProcesses() tea.Cmd {
	service, ctx, session := v.service, v.ctx, v.session
	return func() tea.Msg {
		if service == nil {
			return messages.ProcessesLoaded{Err: errors.New("process service not available")}
		}
		processes, err := service.List(ctx, session)
		return messages.ProcessesLoaded{Processes: processes, Err: err}
	}
}

// Update handles messages for the run view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.ProcessesLoaded:
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.processes.SetProcesses(msg.Processes)
		}
		return v, nil

	case messages.InvocationCompleted:
		v.stage = StageDone
		v.result = &msg
		return v, nil

	case spinner.TickMsg:
		if v.stage != StageRunning {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd

	case tea.KeyMsg:
		switch v.stage {
		case StageSelect:
			return v.updateSelect(msg)
		case StageForm:
			return v.updateForm(msg)
		case StageDone:
			return v.updateDone(msg)
		case StageRunning:
			return v, nil
		}
	}

	return v, nil
}

func (v *View) updateSelect(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return v, backToMenu
	case "r":
		v.loading = true
		return v, v.loadProcesses()
	case "enter":
		selected := v.processes.SelectedProcess()
		if selected == nil {
			return v, nil
		}
		p := *selected
		v.process = &p
		v.err = nil
		v.stage = StageForm
		v.focus = 0
		v.outField.Blur()
		return v, v.fileField.Focus()
	}
	var cmd tea.Cmd
	v.processes, cmd = v.processes.Update(msg)
	return v, cmd
}

func (v *View) updateForm(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "esc":
		v.Reset()
		return v, nil
	case "tab", "shift+tab", "up", "down":
		return v, v.toggleFocus()
	case "enter":
		path, err := validateDocument(v.fileField.Value())
		if err != nil {
			v.err = err
			return v, nil
		}
		v.err = nil
		v.stage = StageRunning
		return v, tea.Batch(v.spinner.Tick, v.invoke(path, strings.TrimSpace(v.outField.Value())))
	}

	var cmd tea.Cmd
	if v.focus == 0 {
		v.fileField, cmd = v.fileField.Update(msg)
	} else {
		v.outField, cmd = v.outField.Update(msg)
	}
	return v, cmd
}

func (v *View) updateDone(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "enter":
		// Another document for the same process.
		v.result = nil
		v.stage = StageForm
		v.fileField.Reset()
		v.focus = 0
		v.outField.Blur()
		return v, v.fileField.Focus()
	case "esc":
		v.Reset()
		return v, nil
	}
	return v, nil
}

func (v *View) toggleFocus() tea.Cmd {
	if v.focus == 0 {
		v.focus = 1
		v.fileField.Blur()
		return v.outField.Focus()
	}
	v.focus = 0
	v.outField.Blur()
	return v.fileField.Focus()
}

// validateDocument checks the path names an existing PDF file.
func validateDocument(raw string) (string, error) {
	path := strings.TrimSpace(raw)
	if path == "" {
		return "", errors.New("indique la ruta del documento")
	}
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return "", ErrNotPDF
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("no se puede leer el documento: %w", err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%s no es un archivo", path)
	}
	return path, nil
}

// invoke returns a command that runs the selected process and saves the archive.
func (v *View) invoke(path, outDir string) tea.Cmd {
	service, ctx, session, user := v.service, v.ctx, v.session, v.user
	process := v.process.Name
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return messages.InvocationCompleted{Err: fmt.Errorf("opening document: %w", err)}
		}
		defer f.Close()

		report, err := service.Invoke(ctx, session, domain.InvocationRequest{
			Process:  process,
			Filename: filepath.Base(path),
			Content:  f,
			User:     user,
		})
		if err != nil {
			return messages.InvocationCompleted{Err: err}
		}

		done := messages.InvocationCompleted{Report: report}
		if report.Archive != nil {
			archivePath, err := results.Save(outDir, report.Archive)
			if err != nil {
				done.Err = err
				return done
			}
			done.ArchivePath = archivePath
		}
		return done
	}
}

func backToMenu() tea.Msg {
	return messages.ViewChanged{View: messages.ViewMenu}
}

// View renders the current stage.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Ejecutar proceso"))
	b.WriteString("\n\n")

	switch v.stage {
	case StageSelect:
		v.viewSelect(&b)
	case StageForm:
		v.viewForm(&b)
	case StageRunning:
		b.WriteString(v.spinner.View())
		b.WriteString(" ")
		b.WriteString(v.styles.Normal.Render(fmt.Sprintf("Ejecutando %s...", v.process.Name)))
		b.WriteString("\n")
	case StageDone:
		v.viewDone(&b)
	}

	return b.String()
}

func (v *View) viewSelect(b *strings.Builder) {
	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Cargando procesos..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	default:
		b.WriteString(v.processes.View())
	}
	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[j/k] Navigate  [Enter] Select  [r] Refresh  [Esc] Back"))
}

func (v *View) viewForm(b *strings.Builder) {
	b.WriteString(v.styles.Subtitle.Render(v.process.Name))
	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render(v.process.Description))
	b.WriteString("\n\n")
	b.WriteString(v.fileField.View())
	b.WriteString("\n")
	b.WriteString(v.outField.View())
	b.WriteString("\n\n")
	if v.err != nil {
		b.WriteString(v.styles.Error.Render(v.err.Error()))
		b.WriteString("\n\n")
	}
	b.WriteString(v.styles.Help.Render("[Tab] Next field  [Enter] Run  [Esc] Back"))
}

func (v *View) viewDone(b *strings.Builder) {
	res := v.result
	switch {
	case res.Report == nil:
		b.WriteString(v.styles.Error.Render("Error: " + res.Err.Error()))
		b.WriteString("\n")
	default:
		report := res.Report
		b.WriteString(v.styles.Outcome(report.Message(), report.Succeeded()))
		b.WriteString("\n\n")

		if keys := report.Result.Summary.Keys(); len(keys) > 0 {
			b.WriteString(v.styles.Subtitle.Render("Resumen"))
			b.WriteString("\n")
			for _, k := range keys {
				b.WriteString(fmt.Sprintf("  %s: %v\n", k, report.Result.Summary[k]))
			}
			b.WriteString("\n")
		}

		if res.ArchivePath != "" {
			b.WriteString(v.styles.Normal.Render(fmt.Sprintf("Resultados: %s (%d entradas)",
				res.ArchivePath, len(report.Archive.Entries))))
			b.WriteString("\n")
			if report.Archive.Warnings != nil {
				b.WriteString(v.styles.Warning.Render("Aviso: " + report.Archive.Warnings.Error()))
				b.WriteString("\n")
			}
		}
		if res.Err != nil {
			b.WriteString(v.styles.Error.Render(res.Err.Error()))
			b.WriteString("\n")
		}
		if report.LedgerErr != nil {
			b.WriteString(v.styles.Warning.Render("Aviso: no se pudo registrar la operación"))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[Enter] Another document  [Esc] Processes"))
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.processes.SetDimensions(width, height-6)
	v.fileField.SetWidth(width)
	v.outField.SetWidth(width)
}

// Stage returns the current stage.
func (v *View) Stage() Stage {
	return v.stage
}

// Err returns the last error shown by the view.
func (v *View) Err() error {
	return v.err
}

// Result returns the last invocation result, if any.
func (v *View) Result() *messages.InvocationCompleted {
	return v.result
}
