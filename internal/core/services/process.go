package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/procdesk/internal/core/domain"
	"github.com/custodia-labs/procdesk/internal/core/ports/driven"
	"github.com/custodia-labs/procdesk/internal/core/ports/driving"
	"github.com/custodia-labs/procdesk/internal/logger"
)

// Ensure ProcessService implements the interface.
var _ driving.ProcessService = (*ProcessService)(nil)

// ProcessService orchestrates invocations:
// stage -> ensure output dir -> execute -> package -> record.
//
// Invocations are serialised. Output trees and the ledger are shared,
// unlocked state on disk, so only one invocation touches them at a time.
type ProcessService struct {
	registry *PluginRegistry
	gate     driving.SessionGate
	store    driven.ArtifactStore
	runner   *Runner
	packager driven.ResultPackager
	ledger   driven.UsageLedger

	mu      sync.Mutex
	nowFunc func() time.Time
	log     *slog.Logger
}

// NewProcessService creates a new process service.
func NewProcessService(
	registry *PluginRegistry,
	gate driving.SessionGate,
	store driven.ArtifactStore,
	runner *Runner,
	packager driven.ResultPackager,
	ledger driven.UsageLedger,
) *ProcessService {
	return &ProcessService{
		registry: registry,
		gate:     gate,
		store:    store,
		runner:   runner,
		packager: packager,
		ledger:   ledger,
		nowFunc:  time.Now,
		log:      logger.With("process"),
	}
}

// List returns all registered processes sorted by name.
func (s *ProcessService) List(_ context.Context, session *domain.Session) ([]domain.ProcessInfo, error) {
	if err := s.gate.Validate(session); err != nil {
		return nil, err
	}
	return s.registry.List(), nil
}

// Describe returns the description of a process.
func (s *ProcessService) Describe(_ context.Context, session *domain.Session, name string) (string, error) {
	if err := s.gate.Validate(session); err != nil {
		return "", err
	}
	plugin, err := s.registry.Get(name)
	if err != nil {
		return "", err
	}
	return plugin.Describe(), nil
}

// Invoke runs one process against one uploaded document.
func (s *ProcessService) Invoke(
	ctx context.Context,
	session *domain.Session,
	req domain.InvocationRequest,
) (report *domain.InvocationReport, err error) {
	if err := s.gate.Validate(session); err != nil {
		return nil, err
	}
	plugin, err := s.registry.Get(req.Process)
	if err != nil {
		return nil, err
	}

	user := strings.TrimSpace(req.User)
	if user == "" {
		user = session.User
	}
	if user == "" {
		return nil, fmt.Errorf("%w: user is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(req.Filename) == "" || req.Content == nil {
		return nil, fmt.Errorf("%w: an uploaded file is required", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	report = &domain.InvocationReport{
		ID:       uuid.New().String(),
		Process:  req.Process,
		Filename: req.Filename,
		User:     user,
		Started:  s.nowFunc(),
	}
	log := s.log.With("invocation", report.ID, "process", report.Process, "file", report.Filename)

	// Single recovery path: whatever happens below, exactly one record is written
	// and the report is still returned.
	defer func() {
		if v := recover(); v != nil {
			report.Err = fmt.Errorf("internal error: %v", v)
			report.Result = domain.InvocationResult{Status: domain.StatusFatal, Reason: report.Err.Error()}
			report.Archive = nil
		}
		report.Ended = s.nowFunc()
		s.record(ctx, report, log)
	}()

	report.Err = s.run(ctx, plugin, req, report, log)
	return report, nil
}

// run performs the invocation steps in strict sequence.
func (s *ProcessService) run(
	ctx context.Context,
	plugin driven.ProcessPlugin,
	req domain.InvocationRequest,
	report *domain.InvocationReport,
	log *slog.Logger,
) error {
	inputPath, err := s.store.Stage(ctx, req.Filename, req.Content)
	if err != nil {
		log.Warn("staging failed", "error", err)
		var stagingErr *domain.StagingError
		if !errors.As(err, &stagingErr) {
			err = &domain.StagingError{Filename: req.Filename, Cause: err}
		}
		report.Result = domain.InvocationResult{Status: domain.StatusFatal, Reason: err.Error()}
		return err
	}
	report.InputPath = inputPath

	outputDir, err := s.store.EnsureOutputDir(ctx, req.Process)
	if err != nil {
		log.Warn("preparing output directory failed", "error", err)
		report.Result = domain.InvocationResult{Status: domain.StatusFatal, Reason: err.Error()}
		return fmt.Errorf("preparing output directory: %w", err)
	}
	report.OutputDir = outputDir

	log.Debug("executing process", "input", inputPath, "output", outputDir)
	result, execErr := s.runner.Execute(ctx, plugin, inputPath, outputDir)
	report.Result = result
	if execErr != nil && result.Status != domain.StatusRecoverable {
		log.Warn("process failed", "error", execErr)
		return execErr
	}

	archive, err := s.packager.Package(ctx, outputDir, req.Process)
	if err != nil {
		log.Warn("packaging failed", "error", err)
		if execErr != nil {
			return execErr
		}
		return &domain.PackagingError{Cause: err}
	}
	if archive.Warnings != nil {
		log.Warn("some deliverables were skipped", "warnings", archive.Warnings)
	}
	report.Archive = archive

	if execErr != nil {
		log.Warn("process failed, partial deliverables packaged", "error", execErr, "entries", len(archive.Entries))
		return execErr
	}
	return nil
}

// record appends the invocation's single ledger record.
// A ledger failure does not change the invocation's outcome.
func (s *ProcessService) record(ctx context.Context, report *domain.InvocationReport, log *slog.Logger) {
	report.Outcome = domain.OutcomeSuccess
	if report.Err != nil {
		report.Outcome = domain.ErrorOutcome(report.Err)
	}

	rec := domain.LedgerRecord{
		Timestamp: report.Ended,
		User:      report.User,
		Process:   report.Process,
		Filename:  report.Filename,
		Outcome:   report.Outcome,

		InvocationID: report.ID,
	}
	if err := s.ledger.Append(context.WithoutCancel(ctx), rec); err != nil {
		report.LedgerErr = err
		log.Error("recording invocation in ledger failed", "error", err)
		return
	}
	log.Debug("invocation recorded", "outcome", report.Outcome, "elapsed", report.Duration())
}
