// Package output writes process deliverables in the layout the result
// packager expects.
package output

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/custodia-labs/procdesk/internal/core/domain"
)

// ErrHeaderMismatch is returned when an existing tabular file was written
// with different columns.
var ErrHeaderMismatch = errors.New("tabular header mismatch")

// Writer places deliverables below <outputDir>/comprobantes_refinado.
type Writer struct {
	root string
}

// NewWriter creates a writer for a process output directory.
func NewWriter(outputDir string) *Writer {
	return &Writer{root: filepath.Join(outputDir, domain.DeliverablesDir)}
}

// TabularPath returns the path of operaciones.csv.
func (w *Writer) TabularPath() string {
	return filepath.Join(w.root, domain.TabularFile)
}

// DocumentsDir returns the folder holding document deliverables.
func (w *Writer) DocumentsDir() string {
	return filepath.Join(w.root, domain.DocumentsDir)
}

// AppendRows adds rows to operaciones.csv, writing header first if the file
// is new. Rows from earlier runs are kept.
func (w *Writer) AppendRows(header []string, rows [][]string) error {
	if err := os.MkdirAll(w.root, 0755); err != nil {
		return fmt.Errorf("creating deliverables directory: %w", err)
	}

	f, err := os.OpenFile(w.TabularPath(), os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", domain.TabularFile, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("inspecting %s: %w", domain.TabularFile, err)
	}

	cw := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := cw.Write(header); err != nil {
			return fmt.Errorf("writing %s header: %w", domain.TabularFile, err)
		}
	} else if err := checkHeader(f, header); err != nil {
		return err
	}

	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("writing %s: %w", domain.TabularFile, err)
	}
	return nil
}

func checkHeader(r io.ReaderAt, want []string) error {
	got, err := csv.NewReader(io.NewSectionReader(r, 0, 1<<20)).Read()
	if err != nil {
		return fmt.Errorf("reading %s header: %w", domain.TabularFile, err)
	}
	if !slices.Equal(got, want) {
		return fmt.Errorf("%w: %s has %v, want %v", ErrHeaderMismatch, domain.TabularFile, got, want)
	}
	return nil
}

// CopyDocument copies src into the documents folder under name and returns
// the destination path. An existing document with the same name is replaced.
func (w *Writer) CopyDocument(src, name string) (string, error) {
	if err := os.MkdirAll(w.DocumentsDir(), 0755); err != nil {
		return "", fmt.Errorf("creating documents directory: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("opening input: %w", err)
	}
	defer in.Close()

	dst := filepath.Join(w.DocumentsDir(), filepath.Base(name))
	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", filepath.Base(dst), err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return "", fmt.Errorf("copying %s: %w", filepath.Base(dst), err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("copying %s: %w", filepath.Base(dst), err)
	}
	return dst, nil
}
