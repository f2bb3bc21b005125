package domain

import (
	"strings"
	"time"
)

// OutcomeSuccess is the outcome recorded for a successful invocation.
const OutcomeSuccess = "Éxito"

// errorOutcomePrefix prefixes every failure outcome.
const errorOutcomePrefix = "Error: "

// LedgerTimeFormat is the timestamp layout used in the ledger file.
const LedgerTimeFormat = "2006-01-02 15:04:05"

// LedgerColumns is the fixed ledger schema. Column order is significant:
// existing ledger files on disk use exactly this header.
var LedgerColumns = []string{"Fecha", "Usuario", "Proceso", "Archivo", "Resultado"}

// LedgerRecord is one row of the usage ledger.
type LedgerRecord struct {
	Timestamp time.Time
	User      string
	Process   string
	Filename  string
	// Outcome is OutcomeSuccess or an error message prefixed with "Error: ".
	Outcome string
	// InvocationID links the record to its invocation logs. It is not part of
	// the CSV schema and is empty for records read back from CSV.
	InvocationID string
}

// ErrorOutcome returns the ledger outcome for a failed invocation.
func ErrorOutcome(err error) string {
	if err == nil {
		return errorOutcomePrefix + "unknown"
	}
	return errorOutcomePrefix + err.Error()
}

// Succeeded returns true if the record's outcome marks a success.
func (r LedgerRecord) Succeeded() bool {
	return r.Outcome == OutcomeSuccess
}

// Failed returns true if the record's outcome carries an error message.
func (r LedgerRecord) Failed() bool {
	return strings.HasPrefix(r.Outcome, errorOutcomePrefix)
}

// Row returns the record as a row following LedgerColumns.
// A zero Timestamp is written as an empty Fecha.
func (r LedgerRecord) Row() []string {
	fecha := ""
	if !r.Timestamp.IsZero() {
		fecha = r.Timestamp.Format(LedgerTimeFormat)
	}
	return []string{
		fecha,
		r.User,
		r.Process,
		r.Filename,
		r.Outcome,
	}
}

// ParseLedgerRow converts a row following LedgerColumns into a record.
// Timestamps are read in local time, as they are written. An unreadable
// timestamp leaves Timestamp zero so one hand-edited line does not hide
// the rest of the ledger.
func ParseLedgerRow(row []string) (LedgerRecord, error) {
	if len(row) != len(LedgerColumns) {
		return LedgerRecord{}, ErrInvalidInput
	}
	rec := LedgerRecord{
		User:     row[1],
		Process:  row[2],
		Filename: row[3],
		Outcome:  row[4],
	}
	if ts, err := time.ParseInLocation(LedgerTimeFormat, strings.TrimSpace(row[0]), time.Local); err == nil {
		rec.Timestamp = ts
	}
	return rec, nil
}
