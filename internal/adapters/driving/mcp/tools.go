package mcp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/procdesk/internal/adapters/driving/results"
	"github.com/custodia-labs/procdesk/internal/core/domain"
)

// ListProcessesInput is the input schema for the list_processes tool.
type ListProcessesInput struct{}

// ListProcessesOutput is the output schema for the list_processes tool.
type ListProcessesOutput struct {
	Processes []ProcessOutput `json:"processes"`
	Count     int             `json:"count"`
}

// ProcessOutput describes one registered process.
type ProcessOutput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Source      string `json:"source,omitempty"`
}

// DescribeProcessInput is the input schema for the describe_process tool.
type DescribeProcessInput struct {
	Name string `json:"name" jsonschema:"the registered process name"`
}

// RunProcessInput is the input schema for the run_process tool.
type RunProcessInput struct {
	Process string `json:"process" jsonschema:"the registered process name"`
	Path    string `json:"path" jsonschema:"local path of the document to process"`
}

// RunProcessOutput is the output schema for the run_process tool.
type RunProcessOutput struct {
	InvocationID string         `json:"invocation_id"`
	Succeeded    bool           `json:"succeeded"`
	Outcome      string         `json:"outcome"`
	Message      string         `json:"message"`
	Summary      map[string]any `json:"summary,omitempty"`
	ArchivePath  string         `json:"archive_path,omitempty"`
	Entries      []string       `json:"entries,omitempty"`
	Warnings     string         `json:"warnings,omitempty"`
}

// ReadLedgerInput is the input schema for the read_ledger tool.
type ReadLedgerInput struct {
	Process string `json:"process,omitempty" jsonschema:"only records of this process"`
	Limit   int    `json:"limit,omitempty" jsonschema:"maximum number of most recent records (default 50)"`
}

// ReadLedgerOutput is the output schema for the read_ledger tool.
type ReadLedgerOutput struct {
	Records []LedgerRecordOutput `json:"records"`
	Count   int                  `json:"count"`
	Total   int                  `json:"total"`
}

// LedgerRecordOutput is one ledger row.
type LedgerRecordOutput struct {
	Fecha     string `json:"fecha"`
	Usuario   string `json:"usuario"`
	Proceso   string `json:"proceso"`
	Archivo   string `json:"archivo"`
	Resultado string `json:"resultado"`
}

const defaultLedgerLimit = 50

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_processes",
		Description: "List the registered document processes",
	}, s.handleListProcesses)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "describe_process",
		Description: "Describe what a process does",
	}, s.handleDescribeProcess)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "run_process",
		Description: "Run a process on a local document and save its result archive",
	}, s.handleRunProcess)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "read_ledger",
		Description: "Read the most recent usage ledger records",
	}, s.handleReadLedger)
}

// handleListProcesses handles the list_processes tool invocation.
func (s *Server) handleListProcesses(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListProcessesInput,
) (*mcp.CallToolResult, ListProcessesOutput, error) {
	infos, err := s.ports.Process.List(ctx, s.ports.Session)
	if err != nil {
		return nil, ListProcessesOutput{}, err
	}

	output := ListProcessesOutput{
		Processes: make([]ProcessOutput, len(infos)),
		Count:     len(infos),
	}
	for i, info := range infos {
		output.Processes[i] = ProcessOutput{
			Name:        info.Name,
			Description: info.Description,
			Source:      info.Source,
		}
	}
	return nil, output, nil
}

// handleDescribeProcess handles the describe_process tool invocation.
func (s *Server) handleDescribeProcess(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DescribeProcessInput,
) (*mcp.CallToolResult, ProcessOutput, error) {
	desc, err := s.ports.Process.Describe(ctx, s.ports.Session, input.Name)
	if err != nil {
		return nil, ProcessOutput{}, err
	}
	return nil, ProcessOutput{Name: input.Name, Description: desc}, nil
}

// handleRunProcess handles the run_process tool invocation.
// Failures inside the invocation are reported in the output, not as errors.
func (s *Server) handleRunProcess(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RunProcessInput,
) (*mcp.CallToolResult, RunProcessOutput, error) {
	if input.Path == "" {
		return nil, RunProcessOutput{}, errors.New("path is required")
	}

	f, err := os.Open(input.Path)
	if err != nil {
		return nil, RunProcessOutput{}, fmt.Errorf("opening document: %w", err)
	}
	defer f.Close()

	report, err := s.ports.Process.Invoke(ctx, s.ports.Session, domain.InvocationRequest{
		Process:  input.Process,
		Filename: filepath.Base(input.Path),
		Content:  f,
	})
	if err != nil {
		return nil, RunProcessOutput{}, err
	}

	output := RunProcessOutput{
		InvocationID: report.ID,
		Succeeded:    report.Succeeded(),
		Outcome:      report.Outcome,
		Message:      report.Message(),
		Summary:      report.Result.Summary,
	}

	if report.Archive != nil {
		path, err := results.Save(s.ports.ArchiveDir, report.Archive)
		if err != nil {
			return nil, output, err
		}
		output.ArchivePath = path
		output.Entries = report.Archive.Entries
		if report.Archive.Warnings != nil {
			output.Warnings = report.Archive.Warnings.Error()
		}
	}

	return nil, output, nil
}

// handleReadLedger handles the read_ledger tool invocation.
func (s *Server) handleReadLedger(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ReadLedgerInput,
) (*mcp.CallToolResult, ReadLedgerOutput, error) {
	if s.ports.Ledger == nil {
		return nil, ReadLedgerOutput{}, errors.New("ledger is not available")
	}

	records, err := s.ports.Ledger.List(ctx, s.ports.Session)
	if err != nil {
		return nil, ReadLedgerOutput{}, err
	}

	if input.Process != "" {
		filtered := records[:0:0]
		for _, rec := range records {
			if rec.Process == input.Process {
				filtered = append(filtered, rec)
			}
		}
		records = filtered
	}

	limit := input.Limit
	if limit <= 0 {
		limit = defaultLedgerLimit
	}
	total := len(records)
	if total > limit {
		records = records[total-limit:]
	}

	output := ReadLedgerOutput{
		Records: make([]LedgerRecordOutput, len(records)),
		Count:   len(records),
		Total:   total,
	}
	for i, rec := range records {
		row := rec.Row()
		output.Records[i] = LedgerRecordOutput{
			Fecha:     row[0],
			Usuario:   row[1],
			Proceso:   row[2],
			Archivo:   row[3],
			Resultado: row[4],
		}
	}
	return nil, output, nil
}
