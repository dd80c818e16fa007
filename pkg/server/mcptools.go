// MCP tool definitions and handlers for the agent.

package server

import (
	"context"
	"time"

	"github.com/Colombia-Blockchain/erc8004-builder-kit/pkg/mcp"
)

// buildToolRegistry registers the agent's built-in MCP tools. Each call
// annotates the request's interaction entry with the tool name.
func (s *Server) buildToolRegistry() *mcp.ToolRegistry {
	reg := mcp.NewToolRegistry()

	register := func(def mcp.ToolDefinition, handler mcp.ToolHandler) {
		reg.Register(&mcp.Tool{
			Definition: def,
			Handler: func(ctx context.Context, args map[string]interface{}) (*mcp.ToolResult, error) {
				Annotate(ctx, "tool", def.Name)
				return handler(ctx, args)
			},
		})
	}

	emptySchema := map[string]any{
		"type":       "object",
		"properties": map[string]any{},
		"required":   []string{},
	}

	register(mcp.ToolDefinition{
		Name:        "get_agent_info",
		Description: "Get information about this agent",
		InputSchema: emptySchema,
	}, func(ctx context.Context, args map[string]interface{}) (*mcp.ToolResult, error) {
		return mcp.ToolResultJSON(map[string]any{
			"name":         s.reg.Name,
			"description":  s.reg.Description,
			"version":      s.version,
			"capabilities": s.reg.Capabilities,
			"services":     s.reg.ServiceNames(),
		})
	})

	register(mcp.ToolDefinition{
		Name:        "ping",
		Description: "Check if this agent is alive",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"message": map[string]any{
					"type":        "string",
					"description": "Optional echo message",
				},
			},
			"required": []string{},
		},
	}, func(ctx context.Context, args map[string]interface{}) (*mcp.ToolResult, error) {
		return mcp.ToolResultJSON(map[string]any{
			"pong":      true,
			"message":   mcp.GetString(args, "message", "Hello from "+s.reg.Name),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	register(mcp.ToolDefinition{
		Name:        "get_recent_interactions",
		Description: "Get the most recent interactions recorded by this agent",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"limit": map[string]any{
					"type":        "integer",
					"description": "Maximum number of interactions to return",
				},
			},
			"required": []string{},
		},
	}, func(ctx context.Context, args map[string]interface{}) (*mcp.ToolResult, error) {
		n := mcp.GetInt(args, "limit", defaultRecentWindow)
		return mcp.ToolResultJSON(map[string]any{
			"interactions": s.interactions.Recent(n),
		})
	})

	register(mcp.ToolDefinition{
		Name:        "get_interaction_stats",
		Description: "Get interaction counts grouped by type",
		InputSchema: emptySchema,
	}, func(ctx context.Context, args map[string]interface{}) (*mcp.ToolResult, error) {
		return mcp.ToolResultJSON(s.interactions.Stats())
	})

	return reg
}
