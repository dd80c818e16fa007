package mcp

import "context"

// ToolHandler is the signature for tool execution functions. The context
// is the HTTP request context of the tools/call.
type ToolHandler func(ctx context.Context, args map[string]interface{}) (*ToolResult, error)

// Tool represents a registered MCP tool.
type Tool struct {
	Definition ToolDefinition
	Handler    ToolHandler
}

// ToolRegistry manages all registered MCP tools.
// Tools are stored in a slice to preserve registration order for tools/list.
type ToolRegistry struct {
	tools  []*Tool
	byName map[string]*Tool
}

// NewToolRegistry creates an empty tool registry.
func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{
		tools:  make([]*Tool, 0, 8),
		byName: make(map[string]*Tool, 8),
	}
}

// Register adds a tool to the registry.
func (r *ToolRegistry) Register(tool *Tool) {
	r.tools = append(r.tools, tool)
	r.byName[tool.Definition.Name] = tool
}

// Get retrieves a tool by name.
func (r *ToolRegistry) Get(name string) *Tool {
	return r.byName[name]
}

// List returns all tool definitions in registration order.
func (r *ToolRegistry) List() []ToolDefinition {
	defs := make([]ToolDefinition, 0, len(r.tools))
	for _, tool := range r.tools {
		defs = append(defs, tool.Definition)
	}
	return defs
}

// Execute executes a tool by name. Failures surface as error tool
// results, never as protocol errors: an unknown tool and a handler
// error both yield isError content.
func (r *ToolRegistry) Execute(ctx context.Context, name string, args map[string]interface{}) *ToolResult {
	tool := r.byName[name]
	if tool == nil {
		return ToolResultError("tool not found: " + name)
	}
	result, err := tool.Handler(ctx, args)
	if err != nil {
		return ToolResultError(err.Error())
	}
	return result
}

// Argument extraction helpers.

// GetString extracts a string argument, falling back to defaultVal.
func GetString(args map[string]interface{}, key, defaultVal string) string {
	if v, ok := args[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return defaultVal
}

// GetInt extracts an integer argument, falling back to defaultVal.
// JSON numbers arrive as float64.
func GetInt(args map[string]interface{}, key string, defaultVal int) int {
	if v, ok := args[key]; ok {
		switch n := v.(type) {
		case float64:
			return int(n)
		case int:
			return n
		}
	}
	return defaultVal
}
