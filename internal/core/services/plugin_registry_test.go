package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/procdesk/internal/core/domain"
	"github.com/custodia-labs/procdesk/internal/core/ports/driven"
)

func TestNewPluginRegistry(t *testing.T) {
	r := NewPluginRegistry()
	require.NotNil(t, r)
	assert.Empty(t, r.Names())
	assert.False(t, r.Frozen())
}

func TestPluginRegistry_Register(t *testing.T) {
	r := NewPluginRegistry()
	require.NoError(t, r.Register(&mockPlugin{name: "A", desc: "first"}))

	assert.True(t, r.Has("A"))
	p, err := r.Get("A")
	require.NoError(t, err)
	assert.Equal(t, "first", p.Describe())
}

func TestPluginRegistry_Register_Invalid(t *testing.T) {
	r := NewPluginRegistry()

	assert.ErrorIs(t, r.Register(nil), domain.ErrInvalidInput)
	assert.ErrorIs(t, r.Register(&mockPlugin{name: "  "}), domain.ErrInvalidInput)
	assert.ErrorIs(t, r.Register(&mockPlugin{name: "a/b"}), domain.ErrInvalidInput)
	assert.ErrorIs(t, r.Register(&mockPlugin{name: ".."}), domain.ErrInvalidInput)
}

func TestPluginRegistry_Register_Duplicate(t *testing.T) {
	r := NewPluginRegistry()
	require.NoError(t, r.Register(&mockPlugin{name: "A"}))

	err := r.Register(&mockPlugin{name: "A"})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestPluginRegistry_Get_NotFound(t *testing.T) {
	r := NewPluginRegistry()
	_, err := r.Get("missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPluginRegistry_Discover_RegistersAllSources(t *testing.T) {
	r := NewPluginRegistry()
	builtins := &mockSource{name: "builtin", plugins: []driven.ProcessPlugin{
		&mockPlugin{name: "copia", desc: "copy"},
	}}
	external := &mockSource{name: "external", plugins: []driven.ProcessPlugin{
		&mockPlugin{name: "ocr", desc: "text"},
		&mockPlugin{name: "bancos", desc: "banks"},
	}}

	require.NoError(t, r.Discover(context.Background(), builtins, external))

	assert.Equal(t, []string{"bancos", "copia", "ocr"}, r.Names())
	assert.True(t, r.Frozen())

	infos := r.List()
	require.Len(t, infos, 3)
	assert.Equal(t, domain.ProcessInfo{Name: "bancos", Description: "banks", Source: "external"}, infos[0])
	assert.Equal(t, "builtin", infos[1].Source)
}

func TestPluginRegistry_Discover_OnlyOnce(t *testing.T) {
	r := NewPluginRegistry()
	require.NoError(t, r.Discover(context.Background()))

	err := r.Discover(context.Background(), &mockSource{name: "late"})
	assert.ErrorIs(t, err, domain.ErrRegistryFrozen)
}

func TestPluginRegistry_Discover_FailsLoudly(t *testing.T) {
	r := NewPluginRegistry()
	bad := &mockSource{name: "external", err: fmt.Errorf("manifest broken/manifest.toml: %w", domain.ErrInvalidInput)}

	err := r.Discover(context.Background(), bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "external")
	assert.Contains(t, err.Error(), "broken")
	assert.True(t, r.Frozen(), "a failed discovery must not allow a second attempt")
}

func TestPluginRegistry_Discover_DuplicateAcrossSources(t *testing.T) {
	r := NewPluginRegistry()
	a := &mockSource{name: "builtin", plugins: []driven.ProcessPlugin{&mockPlugin{name: "copia"}}}
	b := &mockSource{name: "external", plugins: []driven.ProcessPlugin{&mockPlugin{name: "copia"}}}

	err := r.Discover(context.Background(), a, b)
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestPluginRegistry_Discover_CancelledContext(t *testing.T) {
	r := NewPluginRegistry()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.Discover(ctx, &mockSource{name: "builtin"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPluginRegistry_RegisterAfterFreeze(t *testing.T) {
	r := NewPluginRegistry()
	r.Freeze()

	err := r.Register(&mockPlugin{name: "A"})
	assert.ErrorIs(t, err, domain.ErrRegistryFrozen)
}

func TestPluginRegistry_ConcurrentReads(t *testing.T) {
	r := NewPluginRegistry()
	require.NoError(t, r.Register(&mockPlugin{name: "A"}))
	r.Freeze()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = r.List()
			_, _ = r.Get("A")
			_ = r.Has("B")
		}()
	}
	wg.Wait()
}
