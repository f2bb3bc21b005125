// Package copia implements the built-in process that archives its input
// unchanged, recording size and SHA-256 checksum in operaciones.csv.
package copia

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/custodia-labs/procdesk/internal/core/domain"
	"github.com/custodia-labs/procdesk/internal/core/ports/driven"
	"github.com/custodia-labs/procdesk/internal/processes/output"
)

// Name is the registered process name.
const Name = "copia"

// Ensure Process implements the interface.
var _ driven.ProcessPlugin = (*Process)(nil)

// Header is the column set of operaciones.csv.
var Header = []string{"archivo", "bytes", "sha256"}

// Process is the copia plugin.
type Process struct{}

// New creates the plugin.
func New() *Process {
	return &Process{}
}

// Name returns the registered process name.
func (p *Process) Name() string {
	return Name
}

// Describe returns the description shown to users.
func (p *Process) Describe() string {
	return "Guarda una copia del documento y registra su tamaño y huella SHA-256 en operaciones.csv."
}

// Run copies inputPath into the documents folder and records its checksum.
func (p *Process) Run(ctx context.Context, inputPath, outputDir string) (domain.Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	size, sum, err := checksum(inputPath)
	if err != nil {
		return nil, err
	}

	name := filepath.Base(inputPath)
	w := output.NewWriter(outputDir)
	if _, err := w.CopyDocument(inputPath, name); err != nil {
		return nil, err
	}
	if err := w.AppendRows(Header, [][]string{{name, strconv.FormatInt(size, 10), sum}}); err != nil {
		return nil, err
	}

	summary := domain.Summary{
		"archivo": name,
		"bytes":   size,
		"sha256":  sum,
	}
	if !strings.EqualFold(filepath.Ext(name), ".pdf") {
		summary["aviso"] = "solo los archivos .pdf se incluyen en el paquete de resultados"
	}
	return summary, nil
}

func checksum(path string) (int64, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, "", fmt.Errorf("opening input: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return 0, "", fmt.Errorf("reading input: %w", err)
	}
	return n, hex.EncodeToString(h.Sum(nil)), nil
}
