package processes

import (
	"context"

	"github.com/custodia-labs/procdesk/internal/core/domain"
	"github.com/custodia-labs/procdesk/internal/core/ports/driven"
	"github.com/custodia-labs/procdesk/internal/processes/comprobantes"
	"github.com/custodia-labs/procdesk/internal/processes/copia"
	"github.com/custodia-labs/procdesk/internal/processes/external"
)

// BuiltinSourceName identifies built-in plugins in listings.
const BuiltinSourceName = "builtin"

// Ensure BuiltinSource implements the interface.
var _ driven.PluginSource = (*BuiltinSource)(nil)

// BuiltinSource supplies the plugins compiled into the binary.
type BuiltinSource struct {
	tools domain.ToolSettings
}

// NewBuiltinSource creates the built-in source.
func NewBuiltinSource(tools domain.ToolSettings) *BuiltinSource {
	return &BuiltinSource{tools: tools}
}

// Name returns the source name.
func (s *BuiltinSource) Name() string {
	return BuiltinSourceName
}

// Discover returns every built-in plugin.
func (s *BuiltinSource) Discover(_ context.Context) ([]driven.ProcessPlugin, error) {
	return []driven.ProcessPlugin{
		comprobantes.New(s.tools.PDFToText),
		copia.New(),
	}, nil
}

// Sources returns the plugin sources for the given settings: built-ins
// first, then external manifests below the plugins directory.
func Sources(settings domain.Settings) []driven.PluginSource {
	return []driven.PluginSource{
		NewBuiltinSource(settings.Tools),
		external.NewSource(settings.Paths.Resolve(settings.Paths.Plugins)),
	}
}
