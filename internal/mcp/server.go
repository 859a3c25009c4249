package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the official MCP SDK server.
type Server struct {
	log     *slog.Logger
	name    string
	version string
	server  *mcp.Server

	mu    sync.Mutex
	tools map[string]struct{}
}

// NewServer creates a server advertising name and version.
func NewServer(log *slog.Logger, name, version string) *Server {
	return &Server{
		log:     log.With("component", "mcp"),
		name:    name,
		version: version,
		server:  mcp.NewServer(&mcp.Implementation{Name: name, Version: version}, nil),
		tools:   make(map[string]struct{}, 32),
	}
}

// AddTool registers a tool with the SDK server. Registering a name twice
// replaces the earlier tool.
func (s *Server) AddTool(tool *mcp.Tool, handler mcp.ToolHandler) {
	s.mu.Lock()
	s.tools[tool.Name] = struct{}{}
	s.mu.Unlock()

	s.server.AddTool(tool, handler)
}

// ToolCount returns the number of distinct tools registered.
func (s *Server) ToolCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.tools)
}

// Name returns the server name.
func (s *Server) Name() string {
	return s.name
}

// Version returns the server version.
func (s *Server) Version() string {
	return s.version
}

// Run serves the agent over transport until ctx ends or the agent
// disconnects.
func (s *Server) Run(ctx context.Context, transport mcp.Transport) error {
	s.log.Info("Serving tools", "name", s.name, "version", s.version, "tools", s.ToolCount())

	if err := s.server.Run(ctx, transport); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}

	return nil
}

// Connect starts a single session over transport without blocking.
func (s *Server) Connect(ctx context.Context, transport mcp.Transport) (*mcp.ServerSession, error) {
	return s.server.Connect(ctx, transport, nil)
}

// TextResult creates a CallToolResult with text content.
func TextResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

// ErrorResult creates a CallToolResult indicating an error.
func ErrorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: message},
		},
		IsError: true,
	}
}

// NewTool creates an mcp.Tool with the given parameters.
func NewTool(name, description string, inputSchema *jsonschema.Schema) *mcp.Tool {
	return &mcp.Tool{
		Name:        name,
		Description: description,
		InputSchema: inputSchema,
	}
}

// ParseArguments unmarshals CallToolRequest arguments into a map.
func ParseArguments(req *mcp.CallToolRequest) (map[string]any, error) {
	if req == nil || req.Params == nil {
		return make(map[string]any), nil
	}

	if len(req.Params.Arguments) == 0 {
		return make(map[string]any), nil
	}

	var args map[string]any
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return nil, fmt.Errorf("failed to unmarshal arguments: %w", err)
	}

	return args, nil
}
