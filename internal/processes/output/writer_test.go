package output

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter_Paths(t *testing.T) {
	w := NewWriter("/out/A")

	assert.Equal(t, filepath.Join("/out/A", "comprobantes_refinado", "operaciones.csv"), w.TabularPath())
	assert.Equal(t, filepath.Join("/out/A", "comprobantes_refinado", "pdfs"), w.DocumentsDir())
}

func TestWriter_AppendRows_NewFile(t *testing.T) {
	w := NewWriter(t.TempDir())

	require.NoError(t, w.AppendRows([]string{"archivo", "monto"}, [][]string{{"a.pdf", "10.00"}}))

	data, err := os.ReadFile(w.TabularPath())
	require.NoError(t, err)
	assert.Equal(t, "archivo,monto\na.pdf,10.00\n", string(data))
}

func TestWriter_AppendRows_AccumulatesAcrossRuns(t *testing.T) {
	w := NewWriter(t.TempDir())
	header := []string{"archivo", "monto"}

	require.NoError(t, w.AppendRows(header, [][]string{{"a.pdf", "10.00"}}))
	require.NoError(t, w.AppendRows(header, [][]string{{"b.pdf", "20.00"}, {"b.pdf", "1,5"}}))

	data, err := os.ReadFile(w.TabularPath())
	require.NoError(t, err)
	assert.Equal(t, "archivo,monto\na.pdf,10.00\nb.pdf,20.00\nb.pdf,\"1,5\"\n", string(data))
}

func TestWriter_AppendRows_NoRowsStillCreatesHeader(t *testing.T) {
	w := NewWriter(t.TempDir())

	require.NoError(t, w.AppendRows([]string{"archivo"}, nil))

	data, err := os.ReadFile(w.TabularPath())
	require.NoError(t, err)
	assert.Equal(t, "archivo\n", string(data))
}

func TestWriter_AppendRows_HeaderMismatch(t *testing.T) {
	w := NewWriter(t.TempDir())
	require.NoError(t, w.AppendRows([]string{"archivo", "monto"}, nil))

	err := w.AppendRows([]string{"archivo", "bytes", "sha256"}, [][]string{{"a", "1", "x"}})

	assert.ErrorIs(t, err, ErrHeaderMismatch)
}

func TestWriter_CopyDocument(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.pdf")
	require.NoError(t, os.WriteFile(src, []byte("%PDF-1.4"), 0644))
	w := NewWriter(filepath.Join(dir, "out"))

	dst, err := w.CopyDocument(src, "../marzo.pdf")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(w.DocumentsDir(), "marzo.pdf"), dst)
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))
}

func TestWriter_CopyDocument_MissingSource(t *testing.T) {
	w := NewWriter(t.TempDir())

	_, err := w.CopyDocument(filepath.Join(t.TempDir(), "missing.pdf"), "missing.pdf")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "opening input")
}
