package filesystem

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/procdesk/internal/core/domain"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	root := t.TempDir()
	return NewStore(filepath.Join(root, "uploads"), filepath.Join(root, "outputs")), root
}

func TestStore_Stage(t *testing.T) {
	store, root := newTestStore(t)

	path, err := store.Stage(context.Background(), "marzo.pdf", strings.NewReader("%PDF-1.4"))

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "uploads", "marzo.pdf"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))
}

func TestStore_Stage_SameNameOverwrites(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.Stage(ctx, "marzo.pdf", strings.NewReader("first version, longer"))
	require.NoError(t, err)
	path, err := store.Stage(ctx, "marzo.pdf", strings.NewReader("second"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestStore_Stage_StripsDirectories(t *testing.T) {
	store, root := newTestStore(t)

	tests := []struct {
		name     string
		filename string
	}{
		{"unix traversal", "../../etc/marzo.pdf"},
		{"windows path", `C:\Users\ana\marzo.pdf`},
		{"absolute", "/tmp/marzo.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, err := store.Stage(context.Background(), tt.filename, strings.NewReader("x"))
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(root, "uploads", "marzo.pdf"), path)
		})
	}
}

func TestStore_Stage_InvalidFilename(t *testing.T) {
	store, _ := newTestStore(t)

	for _, name := range []string{"", " ", ".", "..", "dir/", "a/.."} {
		_, err := store.Stage(context.Background(), name, strings.NewReader("x"))
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "filename %q", name)
	}
}

func TestStore_Stage_NilContent(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Stage(context.Background(), "marzo.pdf", nil)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStore_Stage_FromStagedCopy(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	path, err := store.Stage(ctx, "report.pdf", strings.NewReader("%PDF-1.4 body"))
	require.NoError(t, err)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	again, err := store.Stage(ctx, "report.pdf", f)
	require.NoError(t, err)

	assert.Equal(t, path, again)
	data, err := os.ReadFile(again)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 body", string(data))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestStore_Stage_ReadError(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Stage(context.Background(), "marzo.pdf", failingReader{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	entries, err := os.ReadDir(store.UploadsDir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStore_Stage_CancelledContext(t *testing.T) {
	store, root := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Stage(ctx, "marzo.pdf", strings.NewReader("x"))

	assert.ErrorIs(t, err, context.Canceled)
	assert.NoDirExists(t, filepath.Join(root, "uploads"))
}

func TestStore_EnsureOutputDir_KeepsContents(t *testing.T) {
	store, root := newTestStore(t)
	ctx := context.Background()

	dir, err := store.EnsureOutputDir(ctx, "comprobantes")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "outputs", "comprobantes"), dir)
	assert.DirExists(t, dir)

	previous := filepath.Join(dir, "previous.txt")
	require.NoError(t, os.WriteFile(previous, []byte("x"), 0644))

	again, err := store.EnsureOutputDir(ctx, "comprobantes")
	require.NoError(t, err)
	assert.Equal(t, dir, again)
	assert.FileExists(t, previous)
}

func TestStore_EnsureOutputDir_InvalidProcess(t *testing.T) {
	store, _ := newTestStore(t)

	for _, name := range []string{"", ".", "..", "a/b", `a\b`} {
		_, err := store.EnsureOutputDir(context.Background(), name)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "process %q", name)
	}
}

func TestStore_OutputDir_DoesNotTouchDisk(t *testing.T) {
	store, root := newTestStore(t)

	dir := store.OutputDir("copia")

	assert.Equal(t, filepath.Join(root, "outputs", "copia"), dir)
	assert.NoDirExists(t, dir)
}
