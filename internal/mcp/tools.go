package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wagiedev/shim-bridge-go/internal/catalog"
)

// RegisterCatalog exposes every dispatcher operation as a tool.
func (s *Server) RegisterCatalog(d *catalog.Dispatcher) {
	for _, op := range d.Operations() {
		s.AddTool(NewTool(op.Name, op.Description, op.InputSchema()), catalogHandler(d, op.Name))
	}
}

func catalogHandler(d *catalog.Dispatcher, name string) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := ParseArguments(req)
		if err != nil {
			return ErrorResult("Error: " + err.Error()), nil
		}

		text, isError := d.Call(ctx, name, args)
		if isError {
			return ErrorResult(text), nil
		}

		return TextResult(text), nil
	}
}
