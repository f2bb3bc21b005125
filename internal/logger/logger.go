// Package logger provides logging for procdesk.
//
// The printf-style helpers print only in verbose mode, enabled by the
// --verbose flag. Components that want structured records use With,
// which returns a log/slog logger sharing the same output; it emits
// warnings and errors always, and debug and info only when verbose.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr

	level = new(slog.LevelVar)
	base  = slog.New(slog.NewTextHandler(sharedWriter{}, &slog.HandlerOptions{Level: level}))
)

func init() {
	level.Set(slog.LevelWarn)
}

// sharedWriter forwards to the current output so SetOutput applies to
// loggers created before the call.
type sharedWriter struct{}

func (sharedWriter) Write(p []byte) (int, error) {
	mu.RLock()
	defer mu.RUnlock()
	return output.Write(p)
}

// SetVerbose toggles verbose output for both the printf helpers and
// structured loggers.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	if v {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelWarn)
	}
}

// SetOutput redirects all logging. Defaults to os.Stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// With returns a structured logger tagged with a component attribute.
func With(component string) *slog.Logger {
	return base.With(slog.String("component", component))
}

func Debug(format string, args ...any) { printf("DEBUG", format, args) }

func Info(format string, args ...any) { printf("INFO", format, args) }

func Warn(format string, args ...any) { printf("WARN", format, args) }

func printf(tag, format string, args []any) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "["+tag+"] "+format+"\n", args...)
	}
}
