package external

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/procdesk/internal/core/domain"
	"github.com/custodia-labs/procdesk/internal/core/ports/driven"
)

// ExitRecoverable is the exit code marking a recoverable failure (EX_TEMPFAIL).
const ExitRecoverable = 75

// maxReason bounds how much stderr is kept in a failure reason.
const maxReason = 500

// Ensure Plugin implements the interface.
var _ driven.ProcessPlugin = (*Plugin)(nil)

// Plugin runs an external command described by a manifest.
type Plugin struct {
	manifest Manifest
	dir      string
	logger   *slog.Logger
}

// Name returns the manifest name.
func (p *Plugin) Name() string {
	return p.manifest.Name
}

// Describe returns the manifest description.
func (p *Plugin) Describe() string {
	return p.manifest.Description
}

// Dir returns the plugin folder.
func (p *Plugin) Dir() string {
	return p.dir
}

// Run executes the command and parses its stdout as the summary.
func (p *Plugin) Run(ctx context.Context, inputPath, outputDir string) (domain.Summary, error) {
	// The command runs inside the plugin folder, so every path handed to it
	// must stop depending on our working directory.
	inputPath, outputDir = absPath(inputPath), absPath(outputDir)
	command := p.manifest.resolveCommand(p.dir)
	args := p.manifest.expandArgs(inputPath, outputDir)

	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Dir = p.dir
	cmd.Env = append(os.Environ(),
		"PROCDESK_INPUT="+inputPath,
		"PROCDESK_OUTPUT="+outputDir,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	p.logger.Debug("Executing external process", "process", p.Name(), "command", command, "args", args)

	err := cmd.Run()
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	summary, parseErr := parseSummary(stdout.Bytes())
	if err != nil {
		p.logger.Warn("External process failed",
			"process", p.Name(),
			"error", err,
			"stderr", stderr.String(),
		)
		return summary, runError(err, stderr.String())
	}
	if parseErr != nil {
		return nil, parseErr
	}
	return summary, nil
}

// absPath returns path made absolute, or path unchanged if that fails.
func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// runError converts a failed command into a plugin error.
func runError(err error, stderr string) error {
	reason := strings.TrimSpace(stderr)
	if len(reason) > maxReason {
		reason = reason[:maxReason] + "..."
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if reason == "" {
			reason = exitErr.Error()
		}
		if exitErr.ExitCode() == ExitRecoverable {
			return fmt.Errorf("%s: %w", reason, domain.ErrRecoverable)
		}
		return errors.New(reason)
	}
	return fmt.Errorf("starting command: %w", err)
}

// parseSummary decodes stdout as a JSON object. Empty output is an empty summary.
func parseSummary(out []byte) (domain.Summary, error) {
	if len(bytes.TrimSpace(out)) == 0 {
		return domain.Summary{}, nil
	}
	var summary domain.Summary
	if err := json.Unmarshal(out, &summary); err != nil {
		return nil, fmt.Errorf("invalid summary output: %w", err)
	}
	if summary == nil {
		summary = domain.Summary{}
	}
	return summary, nil
}
