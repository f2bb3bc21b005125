package csv

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/custodia-labs/procdesk/internal/core/domain"
	"github.com/custodia-labs/procdesk/internal/core/ports/driven"
	"github.com/custodia-labs/procdesk/internal/logger"
)

// Ensure Ledger implements the interface.
var _ driven.UsageLedger = (*Ledger)(nil)

// ErrHeaderMismatch is returned when an existing ledger file does not start
// with the expected header.
var ErrHeaderMismatch = errors.New("ledger header mismatch")

// Ledger is a CSV-file implementation of driven.UsageLedger.
type Ledger struct {
	mu   sync.Mutex
	path string
	log  *slog.Logger
}

// NewLedger creates a ledger backed by the CSV file at path.
// The file and its directory are created on first append.
func NewLedger(path string) *Ledger {
	return &Ledger{path: path, log: logger.With("ledger")}
}

// Path returns the ledger file path.
func (l *Ledger) Path() string {
	return l.path
}

// Append writes one record at the end of the file.
func (l *Ledger) Append(ctx context.Context, record domain.LedgerRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("creating ledger directory: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("opening ledger: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	prefix, err := l.prepare(f)
	if err != nil {
		return err
	}
	buf.Write(prefix)

	w := csv.NewWriter(&buf)
	if err := w.Write(record.Row()); err != nil {
		return fmt.Errorf("encoding ledger row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("encoding ledger row: %w", err)
	}

	if _, err := f.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("writing ledger: %w", err)
	}
	return nil
}

// prepare returns the bytes that must precede the next row: the header for an
// empty file, or a newline when the last row was left unterminated.
func (l *Ledger) prepare(f *os.File) ([]byte, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("inspecting ledger: %w", err)
	}

	if info.Size() == 0 {
		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		_ = w.Write(domain.LedgerColumns)
		w.Flush()
		return buf.Bytes(), w.Error()
	}

	if err := checkHeader(f); err != nil {
		return nil, err
	}

	last := make([]byte, 1)
	if _, err := f.ReadAt(last, info.Size()-1); err != nil {
		return nil, fmt.Errorf("reading ledger: %w", err)
	}
	if last[0] != '\n' {
		return []byte("\n"), nil
	}
	return nil, nil
}

// checkHeader verifies the first row of r matches LedgerColumns.
func checkHeader(r io.ReaderAt) error {
	reader := csv.NewReader(io.NewSectionReader(r, 0, 1<<20))
	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("reading ledger header: %w", err)
	}
	header[0] = trimBOM(header[0])
	if !slices.Equal(header, domain.LedgerColumns) {
		return fmt.Errorf("%w: got %v, want %v", ErrHeaderMismatch, header, domain.LedgerColumns)
	}
	return nil
}

// ReadAll returns every record in file order.
func (l *Ledger) ReadAll(ctx context.Context) ([]domain.LedgerRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []domain.LedgerRecord{}, nil
		}
		return nil, fmt.Errorf("opening ledger: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = len(domain.LedgerColumns)

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading ledger: %w", err)
	}

	records := make([]domain.LedgerRecord, 0, len(rows))
	if len(rows) == 0 {
		return records, nil
	}

	rows[0][0] = trimBOM(rows[0][0])
	if !slices.Equal(rows[0], domain.LedgerColumns) {
		return nil, fmt.Errorf("%w: got %v, want %v", ErrHeaderMismatch, rows[0], domain.LedgerColumns)
	}

	for i, row := range rows[1:] {
		rec, err := domain.ParseLedgerRow(row)
		if err != nil {
			return nil, fmt.Errorf("ledger line %d: %w", i+2, err)
		}
		if rec.Timestamp.IsZero() {
			l.log.Warn("unreadable timestamp", "line", i+2, "fecha", row[0])
		}
		records = append(records, rec)
	}
	return records, nil
}

// Clear removes the ledger file. A missing file is not an error.
func (l *Ledger) Clear(_ context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing ledger: %w", err)
	}
	return nil
}

// trimBOM strips a UTF-8 byte order mark, which spreadsheet tools add on save.
func trimBOM(s string) string {
	const bom = "\ufeff"
	if len(s) >= len(bom) && s[:len(bom)] == bom {
		return s[len(bom):]
	}
	return s
}
