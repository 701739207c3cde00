// Package tools defines the MCP tools exposed by the server and the MCP
// server that hosts them.
package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// MCPTool is a tool definition paired with its handler.
type MCPTool interface {
	Build() mcp.Tool
	Invoke(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

// ServerInfo names the MCP server in the initialize handshake.
type ServerInfo struct {
	Name    string
	Version string
}

// NewMCPServer creates an MCP server with tool capabilities and registers
// every given tool on it.
func NewMCPServer(info ServerInfo, tools ...MCPTool) *server.MCPServer {
	s := server.NewMCPServer(
		info.Name,
		info.Version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	for _, t := range tools {
		s.AddTool(t.Build(), t.Invoke)
	}
	return s
}
