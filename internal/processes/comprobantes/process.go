package comprobantes

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/custodia-labs/procdesk/internal/core/domain"
	"github.com/custodia-labs/procdesk/internal/core/ports/driven"
	"github.com/custodia-labs/procdesk/internal/processes/output"
)

// Name is the registered process name.
const Name = "comprobantes"

// Ensure Process implements the interface.
var _ driven.ProcessPlugin = (*Process)(nil)

// Header is the column set of operaciones.csv.
var Header = []string{"archivo", "pagina", "fecha", "monto", "descripcion"}

var (
	datePattern   = regexp.MustCompile(`\b\d{2}[/-]\d{2}[/-]\d{4}\b`)
	amountPattern = regexp.MustCompile(`-?(?:\$\s?)?\d+(?:[.,]\d{3})*[.,]\d{2}\b`)
)

// CommandRunner executes an external command and returns its stdout.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run executes name with args. Stderr is folded into the returned error.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: %s", err, msg)
		}
		return nil, err
	}
	return out, nil
}

// Process is the comprobantes plugin.
type Process struct {
	tool   string
	runner CommandRunner
}

// New creates the plugin using the pdftotext binary at tool.
// An empty tool means "pdftotext" from PATH.
func New(tool string) *Process {
	return NewWithRunner(tool, ExecRunner{})
}

// NewWithRunner creates the plugin with a custom command runner.
func NewWithRunner(tool string, runner CommandRunner) *Process {
	if tool == "" {
		tool = "pdftotext"
	}
	return &Process{tool: tool, runner: runner}
}

// Name returns the registered process name.
func (p *Process) Name() string {
	return Name
}

// Describe returns the description shown to users.
func (p *Process) Describe() string {
	return "Extrae las operaciones de un extracto bancario en PDF: una fila por página " +
		"con fecha y monto en operaciones.csv, y guarda una copia del PDF."
}

// Run refines the statement at inputPath into outputDir.
func (p *Process) Run(ctx context.Context, inputPath, outputDir string) (domain.Summary, error) {
	if err := checkPDF(inputPath); err != nil {
		return nil, err
	}

	text, err := p.runner.Run(ctx, p.tool, "-layout", "-enc", "UTF-8", inputPath, "-")
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, fmt.Errorf("%s not found: %s", p.tool, InstallInstructions())
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("extracting text: %w", err)
	}

	name := filepath.Base(inputPath)
	rows, pages := extractRows(name, string(text))

	w := output.NewWriter(outputDir)
	if err := w.AppendRows(Header, rows); err != nil {
		return nil, err
	}
	if _, err := w.CopyDocument(inputPath, name); err != nil {
		return nil, err
	}

	withAmount := 0
	for _, row := range rows {
		if row[3] != "" {
			withAmount++
		}
	}

	summary := domain.Summary{
		"paginas":     pages,
		"operaciones": withAmount,
		"sin_monto":   len(rows) - withAmount,
	}
	if len(rows) == 0 {
		return summary, fmt.Errorf("%s has no text layer: %w", name, domain.ErrRecoverable)
	}
	return summary, nil
}

// checkPDF rejects inputs without the PDF signature.
func checkPDF(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening input: %w", err)
	}
	defer f.Close()

	sig := make([]byte, 5)
	if _, err := io.ReadFull(f, sig); err != nil || string(sig) != "%PDF-" {
		return fmt.Errorf("%w: %s is not a PDF", domain.ErrInvalidInput, filepath.Base(path))
	}
	return nil
}

// extractRows turns pdftotext output into one row per page with text.
// Pages are separated by form feeds. It also returns the page count.
func extractRows(file, text string) ([][]string, int) {
	pages := strings.Split(text, "\f")
	// pdftotext terminates the last page with a form feed.
	if len(pages) > 1 && strings.TrimSpace(pages[len(pages)-1]) == "" {
		pages = pages[:len(pages)-1]
	}

	var rows [][]string
	for i, page := range pages {
		if strings.TrimSpace(page) == "" {
			continue
		}
		rows = append(rows, []string{
			file,
			strconv.Itoa(i + 1),
			datePattern.FindString(page),
			normaliseAmount(amountPattern.FindString(page)),
			firstLine(page),
		})
	}
	return rows, len(pages)
}

// normaliseAmount converts "$ 1.234,56" or "1,234.56" to "1234.56".
// The last separator is taken as the decimal mark.
func normaliseAmount(raw string) string {
	if raw == "" {
		return ""
	}
	negative := strings.HasPrefix(raw, "-")
	digits := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' {
			return r
		}
		return -1
	}, raw)

	dec := strings.LastIndexAny(digits, ".,")
	intPart := strings.NewReplacer(".", "", ",", "").Replace(digits[:dec])
	amount := intPart + "." + digits[dec+1:]
	if negative {
		amount = "-" + amount
	}
	return amount
}

func firstLine(page string) string {
	for _, line := range strings.Split(page, "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			return line
		}
	}
	return ""
}

// InstallInstructions returns how to install pdftotext.
func InstallInstructions() string {
	return "install poppler-utils (macOS: brew install poppler, Debian/Ubuntu: apt install poppler-utils)"
}
