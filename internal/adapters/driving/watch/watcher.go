// Package watch runs a process on every document dropped into a folder.
//
// The watcher listens for file system events with fsnotify, waits until a
// file has stopped changing, then invokes the process through the driving
// port. Invocations are throttled with a token bucket so a bulk copy into
// the folder does not flood the runner.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/procdesk/internal/adapters/driving/results"
	"github.com/custodia-labs/procdesk/internal/core/domain"
	"github.com/custodia-labs/procdesk/internal/core/ports/driving"
	"github.com/custodia-labs/procdesk/internal/logger"
)

// DefaultSettle is how long a file must be quiet before it is processed.
const DefaultSettle = 500 * time.Millisecond

// ErrClosed is returned when Run is called on a closed watcher.
var ErrClosed = errors.New("watcher closed")

// Config configures a Watcher.
type Config struct {
	// Dir is the folder to watch. It must exist.
	Dir string

	// Process is the registered process to run on each document.
	Process string

	// OutputDir receives the result archives. Defaults to Dir.
	OutputDir string

	// MaxPerSecond throttles invocations. Zero or less means one per second.
	MaxPerSecond float64

	// Settle overrides DefaultSettle.
	Settle time.Duration

	// OnResult is called after each invocation. Optional.
	OnResult func(Result)
}

// Result is the outcome of one watched document.
type Result struct {
	// Path is the document that triggered the invocation.
	Path string

	// Report is nil when the invocation was rejected before running.
	Report *domain.InvocationReport

	// ArchivePath is where the result archive was saved, if any.
	ArchivePath string

	// Err is a rejection or an archive write failure.
	// Failures inside the invocation are in Report.
	Err error
}

// Watcher invokes a process for each new document in a folder.
type Watcher struct {
	cfg     Config
	service driving.ProcessService
	session *domain.Session
	limiter *rate.Limiter
	logger  *slog.Logger

	mu     sync.Mutex
	closed bool
}

// New creates a watcher. Run starts it.
func New(service driving.ProcessService, session *domain.Session, cfg Config) *Watcher {
	if cfg.OutputDir == "" {
		cfg.OutputDir = cfg.Dir
	}
	if cfg.Settle <= 0 {
		cfg.Settle = DefaultSettle
	}
	perSecond := cfg.MaxPerSecond
	if perSecond <= 0 {
		perSecond = 1
	}
	return &Watcher{
		cfg:     cfg,
		service: service,
		session: session,
		limiter: rate.NewLimiter(rate.Limit(perSecond), 1),
		logger:  logger.With("watch").With(slog.String("process", cfg.Process)),
	}
}

// Run watches the folder until ctx is cancelled.
// It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	w.mu.Lock()
	closed := w.closed
	w.mu.Unlock()
	if closed {
		return ErrClosed
	}

	info, err := os.Stat(w.cfg.Dir)
	if err != nil {
		return fmt.Errorf("watch directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watch directory: %s is not a directory", w.cfg.Dir)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.cfg.Dir); err != nil {
		return fmt.Errorf("watching %s: %w", w.cfg.Dir, err)
	}
	w.logger.Info("watching folder", slog.String("dir", w.cfg.Dir))

	settle := newSettler(w.cfg.Settle)
	defer settle.stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if path, ok := w.handleFsEvent(event); ok {
				settle.touch(ctx, path)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", slog.Any("error", err))

		case item := <-settle.ready:
			if !settle.accept(item) {
				continue
			}
			if err := w.limiter.Wait(ctx); err != nil {
				return nil
			}
			res := w.process(ctx, item.path)
			if w.cfg.OnResult != nil {
				w.cfg.OnResult(res)
			}
		}
	}
}

// Close stops future Run calls. A running Run stops with its context.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

// handleFsEvent returns the document path for events that should trigger
// an invocation: creates and writes of visible regular *.pdf files.
func (w *Watcher) handleFsEvent(event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return "", false
	}

	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") {
		return "", false
	}
	if !strings.EqualFold(filepath.Ext(name), ".pdf") {
		return "", false
	}

	info, err := os.Stat(event.Name)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	return event.Name, true
}

func (w *Watcher) process(ctx context.Context, path string) Result {
	res := Result{Path: path}
	log := w.logger.With(slog.String("file", filepath.Base(path)))

	f, err := os.Open(path)
	if err != nil {
		res.Err = fmt.Errorf("opening document: %w", err)
		log.Warn("document vanished", slog.Any("error", err))
		return res
	}
	defer f.Close()

	report, err := w.service.Invoke(ctx, w.session, domain.InvocationRequest{
		Process:  w.cfg.Process,
		Filename: filepath.Base(path),
		Content:  f,
	})
	if err != nil {
		res.Err = err
		log.Warn("invocation rejected", slog.Any("error", err))
		return res
	}
	res.Report = report

	if report.Archive != nil {
		archivePath, err := results.SaveAs(w.cfg.OutputDir, archiveName(path, report.Archive), report.Archive)
		if err != nil {
			res.Err = err
			log.Error("saving archive", slog.Any("error", err))
			return res
		}
		res.ArchivePath = archivePath
	}

	log.Info("document processed", slog.String("outcome", report.Outcome))
	return res
}

// archiveName prefixes the archive name with the document's stem so runs
// over different documents do not collide.
func archiveName(docPath string, archive *domain.Archive) string {
	stem := strings.TrimSuffix(filepath.Base(docPath), filepath.Ext(docPath))
	return stem + "_" + archive.Name
}
