package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/procdesk/internal/core/domain"
)

func TestRunner_Execute_Success(t *testing.T) {
	r := NewRunner(0)
	out := filepath.Join(t.TempDir(), "outputs", "A")
	plugin := &mockPlugin{name: "A", run: func(_ context.Context, _, outputDir string) (domain.Summary, error) {
		_, err := os.Stat(outputDir)
		require.NoError(t, err, "output dir must exist before run")
		return domain.Summary{"rows": 5}, nil
	}}

	result, err := r.Execute(context.Background(), plugin, "in.pdf", out)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccess, result.Status)
	assert.Equal(t, domain.Summary{"rows": 5}, result.Summary)
}

func TestRunner_Execute_NilSummaryNormalised(t *testing.T) {
	r := NewRunner(0)
	plugin := &mockPlugin{name: "A", run: func(context.Context, string, string) (domain.Summary, error) {
		return nil, nil
	}}

	result, err := r.Execute(context.Background(), plugin, "in.pdf", t.TempDir())
	require.NoError(t, err)
	assert.NotNil(t, result.Summary)
	assert.Empty(t, result.Summary)
}

func TestRunner_Execute_PluginError(t *testing.T) {
	r := NewRunner(0)
	plugin := &mockPlugin{name: "A", run: func(context.Context, string, string) (domain.Summary, error) {
		return nil, errors.New("x")
	}}

	result, err := r.Execute(context.Background(), plugin, "in.pdf", t.TempDir())
	require.Error(t, err)

	var execErr *domain.ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, "A", execErr.Process)
	assert.False(t, execErr.Recoverable)
	assert.Equal(t, "x", err.Error())
	assert.Equal(t, domain.StatusFatal, result.Status)
	assert.Equal(t, "x", result.Reason)
}

func TestRunner_Execute_RecoverableError(t *testing.T) {
	r := NewRunner(0)
	plugin := &mockPlugin{name: "A", run: func(context.Context, string, string) (domain.Summary, error) {
		return nil, fmt.Errorf("service busy: %w", domain.ErrRecoverable)
	}}

	result, err := r.Execute(context.Background(), plugin, "in.pdf", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, domain.StatusRecoverable, result.Status)
	assert.True(t, domain.IsRecoverable(err))
}

func TestRunner_Execute_RecoverableKeepsPartialSummary(t *testing.T) {
	r := NewRunner(0)
	plugin := &mockPlugin{name: "A", run: func(context.Context, string, string) (domain.Summary, error) {
		return domain.Summary{"paginas": 2}, fmt.Errorf("no text layer: %w", domain.ErrRecoverable)
	}}

	result, err := r.Execute(context.Background(), plugin, "in.pdf", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, domain.Summary{"paginas": 2}, result.Summary)
	assert.Equal(t, "no text layer: recoverable failure", result.Reason)
}

func TestRunner_Execute_Panic(t *testing.T) {
	r := NewRunner(0)
	plugin := &mockPlugin{name: "A", run: func(context.Context, string, string) (domain.Summary, error) {
		panic("index out of range")
	}}

	var (
		result domain.InvocationResult
		err    error
	)
	require.NotPanics(t, func() {
		result, err = r.Execute(context.Background(), plugin, "in.pdf", t.TempDir())
	})
	require.Error(t, err)
	assert.Equal(t, "panic: index out of range", err.Error())
	assert.Equal(t, domain.StatusFatal, result.Status)
}

func TestRunner_Execute_Timeout(t *testing.T) {
	r := NewRunner(20 * time.Millisecond)
	plugin := &mockPlugin{name: "slow", run: func(ctx context.Context, _, _ string) (domain.Summary, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}

	result, err := r.Execute(context.Background(), plugin, "in.pdf", t.TempDir())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTimeout)
	assert.Equal(t, domain.StatusRecoverable, result.Status)
	assert.Contains(t, err.Error(), "timed out after 20ms")
}

func TestRunner_Execute_TimeoutIgnoredByPlugin(t *testing.T) {
	r := NewRunner(10 * time.Millisecond)
	r.grace = 20 * time.Millisecond
	release := make(chan struct{})
	defer close(release)
	plugin := &mockPlugin{name: "hang", run: func(context.Context, string, string) (domain.Summary, error) {
		<-release
		return nil, nil
	}}

	start := time.Now()
	_, err := r.Execute(context.Background(), plugin, "in.pdf", t.TempDir())
	assert.ErrorIs(t, err, domain.ErrTimeout)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestRunner_Execute_WaitsForCancelledPlugin(t *testing.T) {
	r := NewRunner(10 * time.Millisecond)
	r.grace = time.Second
	stopped := false
	plugin := &mockPlugin{name: "slow", run: func(ctx context.Context, _, _ string) (domain.Summary, error) {
		<-ctx.Done()
		time.Sleep(30 * time.Millisecond)
		stopped = true
		return nil, ctx.Err()
	}}

	_, err := r.Execute(context.Background(), plugin, "in.pdf", t.TempDir())

	assert.ErrorIs(t, err, domain.ErrTimeout)
	assert.True(t, stopped)
}

func TestRunner_Execute_BlockedWhileEarlierRunLingers(t *testing.T) {
	r := NewRunner(10 * time.Millisecond)
	r.grace = 10 * time.Millisecond
	release := make(chan struct{})
	exited := make(chan struct{})
	hang := &mockPlugin{name: "hang", run: func(context.Context, string, string) (domain.Summary, error) {
		defer close(exited)
		<-release
		return nil, nil
	}}
	next := &mockPlugin{name: "next"}

	_, err := r.Execute(context.Background(), hang, "in.pdf", t.TempDir())
	require.ErrorIs(t, err, domain.ErrTimeout)

	result, err := r.Execute(context.Background(), next, "in.pdf", t.TempDir())
	require.ErrorIs(t, err, domain.ErrStillRunning)
	assert.Contains(t, err.Error(), "hang")
	assert.Equal(t, domain.StatusFatal, result.Status)
	assert.Zero(t, next.Calls())

	close(release)
	<-exited
	require.Eventually(t, func() bool {
		_, err := r.Execute(context.Background(), next, "in.pdf", t.TempDir())
		return err == nil
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, next.Calls())
}

func TestRunner_Execute_ParentCancelled(t *testing.T) {
	r := NewRunner(time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	plugin := &mockPlugin{name: "A", run: func(ctx context.Context, _, _ string) (domain.Summary, error) {
		cancel()
		<-ctx.Done()
		time.Sleep(10 * time.Millisecond)
		return nil, ctx.Err()
	}}

	_, err := r.Execute(ctx, plugin, "in.pdf", t.TempDir())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, domain.ErrTimeout)
}

func TestRunner_Execute_OutputDirUncreatable(t *testing.T) {
	r := NewRunner(0)
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	plugin := &mockPlugin{name: "A"}

	_, err := r.Execute(context.Background(), plugin, "in.pdf", filepath.Join(file, "sub"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "creating output directory")
	assert.Zero(t, plugin.Calls())
}

func TestRunner_Execute_NilPlugin(t *testing.T) {
	r := NewRunner(0)
	_, err := r.Execute(context.Background(), nil, "in.pdf", t.TempDir())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
