package logger

import (
	"bytes"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// capture redirects logging into a buffer for the duration of the test.
func capture(t *testing.T, verbose bool) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(verbose)
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	})
	return &buf
}

func TestPrintfHelpers(t *testing.T) {
	tests := []struct {
		name string
		log  func(string, ...any)
		want string
	}{
		{"debug", Debug, "[DEBUG] plugin comprobantes loaded\n"},
		{"info", Info, "[INFO] plugin comprobantes loaded\n"},
		{"warn", Warn, "[WARN] plugin comprobantes loaded\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name+" verbose", func(t *testing.T) {
			buf := capture(t, true)
			tt.log("plugin %s loaded", "comprobantes")
			assert.Equal(t, tt.want, buf.String())
		})
		t.Run(tt.name+" quiet", func(t *testing.T) {
			buf := capture(t, false)
			tt.log("plugin %s loaded", "comprobantes")
			assert.Empty(t, buf.String())
		})
	}
}

func TestWith_WarnAlwaysShown(t *testing.T) {
	buf := capture(t, false)

	log := With("runner")
	log.Debug("hidden")
	log.Info("hidden too")
	assert.Empty(t, buf.String())

	log.Warn("ledger append failed", "process", "copia")
	assert.Contains(t, buf.String(), "component=runner")
	assert.Contains(t, buf.String(), "process=copia")
}

func TestWith_DebugWhenVerbose(t *testing.T) {
	buf := capture(t, false)
	log := With("watch")

	SetVerbose(true)
	log.Debug("queued", "file", "a.pdf")

	assert.Contains(t, buf.String(), "file=a.pdf")
}

func TestSetOutput_AppliesToExistingLoggers(t *testing.T) {
	first := capture(t, true)
	log := With("mcp")

	var second bytes.Buffer
	SetOutput(&second)
	log.Info("serving")

	assert.Empty(t, first.String())
	assert.Contains(t, second.String(), "serving")
}

func TestConcurrentAccess(t *testing.T) {
	capture(t, false)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			SetVerbose(i%2 == 0)
			Debug("concurrent %d", i)
			With("test").Info("concurrent", "i", i)
		}()
	}
	wg.Wait()
}
