package cli

import (
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/procdesk/internal/adapters/driving/mcp"
)

var (
	mcpPort     int
	mcpHost     string
	mcpArchives string
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Expose procdesk to MCP clients",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start a Model Context Protocol server offering the list_processes,
describe_process, run_process and read_ledger tools.

The operator is admitted once at startup and every tool call runs under
that session. Without --port the server speaks JSON-RPC over stdio.

Examples:
  PROCDESK_ACCESS_KEY=... procdesk mcp serve
  procdesk mcp serve --port 8080 --archives ./resultados`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	f := mcpServeCmd.Flags()
	f.IntVarP(&mcpPort, "port", "p", 0, "serve streamable HTTP on this port (0 = stdio)")
	f.StringVar(&mcpHost, "host", "localhost", "interface to bind in HTTP mode")
	f.StringVar(&mcpArchives, "archives", ".", "directory where run_process saves result archives")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	if mcpPort < 0 || mcpPort > 65535 {
		return fmt.Errorf("invalid port %d", mcpPort)
	}
	if processService == nil {
		return errors.New("process service not configured")
	}
	sess, err := requireSession(cmd)
	if err != nil {
		return err
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Process:    processService,
		Ledger:     ledgerService,
		Session:    sess,
		ArchiveDir: mcpArchives,
	})
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	if mcpPort == 0 {
		return server.Run(ctx)
	}
	addr := net.JoinHostPort(mcpHost, strconv.Itoa(mcpPort))
	cmd.Printf("MCP server listening on http://%s\n", addr)
	return server.RunHTTP(ctx, addr)
}
