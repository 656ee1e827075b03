package tools

import (
	"github.com/affanhamid/editor/tracker/internal/db"
	"github.com/affanhamid/editor/tracker/internal/tracker"
	"github.com/mark3labs/mcp-go/server"
)

// Config is shared by every tool handler. Actor is the username the tools
// act as.
type Config struct {
	Actor   string
	Queries *db.Queries
	Service *tracker.Service
}

func NewConfig(actor string, q *db.Queries, svc *tracker.Service) *Config {
	if actor == "" {
		actor = "anonymous"
	}
	return &Config{
		Actor:   actor,
		Queries: q,
		Service: svc,
	}
}

func RegisterAll(s *server.MCPServer, cfg *Config) {
	registerProjectTools(s, cfg)
	registerTaskTools(s, cfg)
	registerDependencyTools(s, cfg)
}
