package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	uriScheme        = "procdesk://"
	ledgerURI        = uriScheme + "ledger"
	processesURI     = uriScheme + "processes"
	processURIPrefix = processesURI + "/"
)

func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         ledgerURI,
		Name:        "ledger",
		Description: "Usage ledger as CSV (Fecha, Usuario, Proceso, Archivo, Resultado)",
		MIMEType:    "text/csv",
	}, s.handleLedgerResource)

	s.server.AddResource(&mcp.Resource{
		URI:         processesURI,
		Name:        "processes",
		Description: "Registered processes as JSON",
		MIMEType:    "application/json",
	}, s.handleProcessesResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: processURIPrefix + "{name}",
		Name:        "process-description",
		Description: "What a process expects and produces",
		MIMEType:    "text/plain",
	}, s.handleProcessResource)
}

func textResult(uri, mimeType, text string) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{URI: uri, MIMEType: mimeType, Text: text}},
	}
}

// handleLedgerResource serves the same CSV as "procdesk ledger export".
func (s *Server) handleLedgerResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	if s.ports.Ledger == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	var buf bytes.Buffer
	if err := s.ports.Ledger.Export(ctx, s.ports.Session, &buf); err != nil {
		return nil, fmt.Errorf("exporting ledger: %w", err)
	}
	return textResult(req.Params.URI, "text/csv", buf.String()), nil
}

func (s *Server) handleProcessesResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	infos, err := s.ports.Process.List(ctx, s.ports.Session)
	if err != nil {
		return nil, fmt.Errorf("listing processes: %w", err)
	}

	out := make([]ProcessOutput, len(infos))
	for i, info := range infos {
		out[i] = ProcessOutput{Name: info.Name, Description: info.Description, Source: info.Source}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling processes: %w", err)
	}
	return textResult(req.Params.URI, "application/json", string(data)), nil
}

func (s *Server) handleProcessResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	name := extractProcessName(req.Params.URI)
	if name == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	desc, err := s.ports.Process.Describe(ctx, s.ports.Session, name)
	if err != nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	return textResult(req.Params.URI, "text/plain", desc), nil
}

// extractProcessName returns {name} from procdesk://processes/{name}, or
// "" for anything else.
func extractProcessName(uri string) string {
	name, ok := strings.CutPrefix(uri, processURIPrefix)
	if !ok || strings.Contains(name, "/") {
		return ""
	}
	return name
}
