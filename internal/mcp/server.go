// Package mcp exposes the coach to AI agents as MCP tools over stdio.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/elilinden/Support-bot/internal/coach"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that exposes the coaching tools.
type Server struct {
	coach  *coach.Coach
	logger *zap.Logger
	mcp    *server.MCPServer
}

// NewServer creates a new MCP server around c.
func NewServer(c *coach.Coach, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		coach:  c,
		logger: logger,
	}

	s.mcp = server.NewMCPServer(
		"opcoach",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(checkDangerTool, s.handleCheckDanger)
	s.mcp.AddTool(parseResponseTool, s.handleParseResponse)
	s.mcp.AddTool(coachTurnTool, s.handleCoachTurn)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
