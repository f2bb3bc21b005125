package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/custodia-labs/procdesk/internal/core/domain"
	"github.com/custodia-labs/procdesk/internal/core/ports/driven"
	"github.com/custodia-labs/procdesk/internal/logger"
)

// DefaultStopGrace is how long a cancelled plugin gets to return.
const DefaultStopGrace = 5 * time.Second

// Runner invokes a plugin against a staged input.
// It converts every plugin failure, including panics and timeouts,
// into an *domain.ExecutionError and never records to the ledger itself.
type Runner struct {
	timeout time.Duration
	grace   time.Duration
	log     *slog.Logger

	mu sync.Mutex
	// lingering is the result channel of a run that outlived its grace.
	lingering     <-chan runOutcome
	lingeringName string
}

// NewRunner creates a runner. A zero timeout lets plugins run unbounded.
func NewRunner(timeout time.Duration) *Runner {
	return &Runner{
		timeout: timeout,
		grace:   DefaultStopGrace,
		log:     logger.With("runner"),
	}
}

// Timeout returns the configured per-run time budget.
func (r *Runner) Timeout() time.Duration {
	return r.timeout
}

type runOutcome struct {
	summary domain.Summary
	err     error
}

// Execute runs the plugin and returns its result.
// The output directory is created before the plugin starts.
// On timeout or cancellation the plugin's context is cancelled and Execute
// waits up to the stop grace for it to return. A plugin that is still
// running after that makes later calls fail with domain.ErrStillRunning
// until it exits, so two runs never write at the same time.
func (r *Runner) Execute(
	ctx context.Context,
	plugin driven.ProcessPlugin,
	inputPath, outputDir string,
) (domain.InvocationResult, error) {
	if plugin == nil {
		return r.fail("", fmt.Errorf("%w: nil plugin", domain.ErrInvalidInput), false)
	}
	name := plugin.Name()

	// Nothing ran, so there are no partial deliverables to package.
	if err := r.checkLingering(); err != nil {
		return r.fail(name, err, false)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return r.fail(name, fmt.Errorf("creating output directory: %w", err), false)
	}

	runCtx := ctx
	cancel := func() {}
	if r.timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, r.timeout)
	}
	defer cancel()

	done := make(chan runOutcome, 1)
	started := time.Now()
	go func() {
		defer func() {
			if v := recover(); v != nil {
				done <- runOutcome{err: fmt.Errorf("panic: %v", v)}
			}
		}()
		summary, err := plugin.Run(runCtx, inputPath, outputDir)
		done <- runOutcome{summary: summary, err: err}
	}()

	select {
	case out := <-done:
		r.log.Debug("process finished", "process", name, "elapsed", time.Since(started), "error", out.err)
		if out.err != nil {
			// Keep partial summaries of failed runs.
			res, err := r.fail(name, out.err, errors.Is(out.err, domain.ErrRecoverable))
			res.Summary = out.summary
			return res, err
		}
		summary := out.summary
		if summary == nil {
			summary = domain.Summary{}
		}
		return domain.InvocationResult{Status: domain.StatusSuccess, Summary: summary}, nil

	case <-runCtx.Done():
		cause := fmt.Errorf("process cancelled: %w", ctx.Err())
		if ctx.Err() == nil && errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			r.log.Warn("process timed out", "process", name, "timeout", r.timeout)
			cause = fmt.Errorf("%w after %s", domain.ErrTimeout, r.timeout)
		}
		r.awaitStop(name, done)
		return r.fail(name, cause, true)
	}
}

// awaitStop gives a cancelled plugin the stop grace to return. If it does
// not, its result channel is kept so later runs can tell when it is gone.
func (r *Runner) awaitStop(name string, done <-chan runOutcome) {
	select {
	case <-done:
		return
	case <-time.After(r.grace):
	}
	r.log.Warn("process ignored cancellation and is still running", "process", name, "grace", r.grace)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.lingering = done
	r.lingeringName = name
}

func (r *Runner) checkLingering() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lingering == nil {
		return nil
	}
	select {
	case <-r.lingering:
		r.log.Info("lingering process exited", "process", r.lingeringName)
		r.lingering = nil
		r.lingeringName = ""
		return nil
	default:
		return fmt.Errorf("%w: %s", domain.ErrStillRunning, r.lingeringName)
	}
}

func (r *Runner) fail(process string, cause error, recoverable bool) (domain.InvocationResult, error) {
	status := domain.StatusFatal
	if recoverable {
		status = domain.StatusRecoverable
	}
	return domain.InvocationResult{
			Status: status,
			Reason: cause.Error(),
		}, &domain.ExecutionError{
			Process:     process,
			Cause:       cause,
			Recoverable: recoverable,
		}
}
