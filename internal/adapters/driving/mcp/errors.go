// Package mcp provides an MCP (Model Context Protocol) server adapter for procdesk.
// It lets AI assistants list processes, run them against local files and read
// the usage ledger.
package mcp

import "errors"

// ErrMissingProcessService is returned when the process service is not provided.
var ErrMissingProcessService = errors.New("mcp: process service is required")

// ErrMissingSession is returned when no admitted session is provided.
var ErrMissingSession = errors.New("mcp: admitted session is required")
