// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/procdesk/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/procdesk/internal/core/domain"
)

// ProcessList displays registered processes in a navigable list.
type ProcessList struct {
	processes []domain.ProcessInfo
	selected  int
	styles    *styles.Styles
	width     int
	height    int
}

// NewProcessList creates a new process list component.
func NewProcessList(s *styles.Styles) *ProcessList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &ProcessList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the process list.
func (p *ProcessList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (p *ProcessList) Update(msg tea.Msg) (*ProcessList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			p.MoveUp()
		case "down", "j":
			p.MoveDown()
		}
	}
	return p, nil
}

// View renders the process list.
func (p *ProcessList) View() string {
	if len(p.processes) == 0 {
		return p.styles.Muted.Render("No processes registered")
	}

	lines := make([]string, 0, len(p.processes)*2+2)
	lines = append(lines, p.styles.Subtitle.Render(fmt.Sprintf("Procesos (%d)", len(p.processes))), "")

	// Each process takes two lines.
	visibleCount := (p.height - 4) / 2
	if visibleCount < 1 {
		visibleCount = 1
	}

	start := 0
	if p.selected >= visibleCount {
		start = p.selected - visibleCount + 1
	}
	end := start + visibleCount
	if end > len(p.processes) {
		end = len(p.processes)
	}

	for i := start; i < end; i++ {
		lines = append(lines, p.renderProcess(i, &p.processes[i]))
	}

	return strings.Join(lines, "\n")
}

// renderProcess formats one process with the first line of its description.
func (p *ProcessList) renderProcess(index int, info *domain.ProcessInfo) string {
	indicator := "  "
	if index == p.selected {
		indicator = "> "
	}

	var nameLine string
	if index == p.selected {
		nameLine = p.styles.Selected.Render(indicator + info.Name)
	} else {
		nameLine = p.styles.Normal.Render(indicator + info.Name)
	}
	if info.Source != "" {
		nameLine += "  " + p.styles.Muted.Render("["+info.Source+"]")
	}

	desc := info.Description
	if i := strings.IndexByte(desc, '\n'); i >= 0 {
		desc = desc[:i]
	}
	maxLen := p.width - 6
	if maxLen < 20 {
		maxLen = 20
	}
	if r := []rune(desc); len(r) > maxLen {
		desc = string(r[:maxLen-3]) + "..."
	}

	return nameLine + "\n" + p.styles.Muted.Render("    "+desc)
}

// SetProcesses updates the list.
func (p *ProcessList) SetProcesses(processes []domain.ProcessInfo) {
	p.processes = processes
	p.selected = 0
}

// Processes returns the listed processes.
func (p *ProcessList) Processes() []domain.ProcessInfo {
	return p.processes
}

// Selected returns the index of the selected process.
func (p *ProcessList) Selected() int {
	return p.selected
}

// SelectedProcess returns the selected process, or nil if the list is empty.
func (p *ProcessList) SelectedProcess() *domain.ProcessInfo {
	if len(p.processes) == 0 || p.selected < 0 || p.selected >= len(p.processes) {
		return nil
	}
	return &p.processes[p.selected]
}

// MoveUp moves selection up.
func (p *ProcessList) MoveUp() {
	if p.selected > 0 {
		p.selected--
	}
}

// MoveDown moves selection down.
func (p *ProcessList) MoveDown() {
	if p.selected < len(p.processes)-1 {
		p.selected++
	}
}

// SetDimensions sets the component dimensions.
func (p *ProcessList) SetDimensions(width, height int) {
	p.width = width
	p.height = height
}

// Count returns the number of processes.
func (p *ProcessList) Count() int {
	return len(p.processes)
}
