package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"

	"github.com/ladoc-dev/ladoc/internal/cache"
	"github.com/ladoc-dev/ladoc/internal/runner"
)

const (
	// ServerName is the MCP server name
	ServerName = "ladoc"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server exposes the documentation pipeline over MCP stdio
type Server struct {
	mcp    *server.MCPServer
	runner *runner.Runner
	store  cache.Store
	runCfg runner.Config
}

// NewServer wraps an already-wired pipeline in an MCP server
func NewServer(r *runner.Runner, store cache.Store, runCfg runner.Config) *Server {
	s := &Server{
		mcp:    server.NewMCPServer(ServerName, ServerVersion),
		runner: r,
		store:  store,
		runCfg: runCfg,
	}
	s.registerTools()
	return s
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	defer func() { _ = s.store.Close() }()
	return server.ServeStdio(s.mcp)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(generateDocsTool(), s.handleGenerateDocs)
	s.mcp.AddTool(cacheStatsTool(), s.handleCacheStats)
}
