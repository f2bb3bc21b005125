package driven

import (
	"context"
	"io"
)

// ArtifactStore manages on-disk staging of uploads and the output tree.
type ArtifactStore interface {
	// Stage writes an uploaded document under the staging root, named after
	// its original filename. A later upload with the same name overwrites it.
	Stage(ctx context.Context, filename string, content io.Reader) (string, error)

	// EnsureOutputDir creates the process's output root if missing and returns it.
	// Existing contents are never cleared.
	EnsureOutputDir(ctx context.Context, process string) (string, error)

	// OutputDir returns the output root path for a process without touching disk.
	OutputDir(process string) string
}
