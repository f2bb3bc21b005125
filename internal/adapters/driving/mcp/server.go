package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/procdesk/internal/logger"
)

// Version is reported to clients during initialization.
const Version = "0.1.0"

const instructions = `procdesk runs document processes on local files.
Call list_processes first, then run_process with a process name and the path of a PDF.
Each run is recorded in the usage ledger, readable with read_ledger.`

const shutdownGrace = 5 * time.Second

// Server exposes procdesk processes and the usage ledger as MCP tools
// and resources.
type Server struct {
	ports  *Ports
	server *mcp.Server
}

func NewServer(ports *Ports) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	s := &Server{
		ports: ports,
		server: mcp.NewServer(
			&mcp.Implementation{Name: "procdesk", Version: Version},
			&mcp.ServerOptions{Instructions: instructions},
		),
	}
	s.registerTools()
	s.registerResources()
	return s, nil
}

// Run serves over stdio until ctx is cancelled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	logger.With("mcp").Info("serving over stdio", "user", s.ports.Session.User)
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Handler serves the streamable HTTP transport.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.server
	}, nil)
}

// RunHTTP listens on addr until ctx is cancelled, then shuts down
// gracefully. A clean shutdown returns nil.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	log := logger.With("mcp")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("serving over http", "addr", addr, "user", s.ports.Session.User)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
