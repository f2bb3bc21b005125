package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArchiveName(t *testing.T) {
	assert.Equal(t, "resultados_comprobantes.zip", ArchiveName("comprobantes"))
}

func TestSummary_KeysSorted(t *testing.T) {
	s := Summary{"rows": 5, "archivo": "x.pdf", "Páginas": 2}
	assert.Equal(t, []string{"Páginas", "archivo", "rows"}, s.Keys())
}

func TestSummary_EmptyKeys(t *testing.T) {
	assert.Empty(t, Summary{}.Keys())
	assert.Empty(t, Summary(nil).Keys())
}

func TestResultStatus_String(t *testing.T) {
	assert.Equal(t, "success", StatusSuccess.String())
	assert.Equal(t, "recoverable", StatusRecoverable.String())
	assert.Equal(t, "fatal", StatusFatal.String())
	assert.Equal(t, "unknown", ResultStatus(42).String())
}

func TestExecutionError_MessageIsCause(t *testing.T) {
	cause := errors.New("x")
	err := &ExecutionError{Process: "A", Cause: cause}

	assert.Equal(t, "x", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestExecutionError_NilCause(t *testing.T) {
	err := &ExecutionError{Process: "A"}
	assert.Equal(t, "process failed", err.Error())
}

func TestStagingError(t *testing.T) {
	cause := errors.New("disk full")
	err := &StagingError{Filename: "report.pdf", Cause: cause}

	assert.Equal(t, "staging report.pdf: disk full", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestIsRecoverable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"plain error", errors.New("boom"), false},
		{"marked recoverable", fmt.Errorf("busy: %w", ErrRecoverable), true},
		{"timeout", fmt.Errorf("slow: %w", ErrTimeout), true},
		{"execution error recoverable", &ExecutionError{Cause: errors.New("x"), Recoverable: true}, true},
		{"execution error fatal", &ExecutionError{Cause: errors.New("x")}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRecoverable(tt.err))
		})
	}
}

func TestArchive_Empty(t *testing.T) {
	var nilArchive *Archive
	assert.True(t, nilArchive.Empty())
	assert.True(t, (&Archive{}).Empty())
	assert.False(t, (&Archive{Entries: []string{"operaciones.csv"}}).Empty())
}
