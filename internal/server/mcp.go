package mcpserver

import (
	"github.com/affanhamid/editor/tracker/internal/tools"
	"github.com/mark3labs/mcp-go/server"
)

// Version is reported to MCP clients during initialization.
const Version = "1.0.0"

func New(cfg *tools.Config) *server.MCPServer {
	s := server.NewMCPServer(
		"tracker",
		Version,
		server.WithToolCapabilities(true),
	)

	tools.RegisterAll(s, cfg)

	return s
}
