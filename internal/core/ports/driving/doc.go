// Package driving is the surface the CLI, TUI, MCP server and folder
// watcher call into. Every operation that runs a process or touches the
// ledger takes the caller's *domain.Session, which only the session gate
// hands out.
package driving
