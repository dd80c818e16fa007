package mcp

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/Colombia-Blockchain/erc8004-builder-kit/pkg/httputil"
	"github.com/Colombia-Blockchain/erc8004-builder-kit/pkg/logging"
)

// Handler serves MCP over HTTP. It is stateless: initialize is answered
// but never required, so tools/list and tools/call work on a fresh
// connection.
type Handler struct {
	info  ServerInfo
	tools *ToolRegistry
	log   *slog.Logger
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithLogger sets the structured logger.
func WithLogger(log *slog.Logger) HandlerOption {
	return func(h *Handler) {
		if log != nil {
			h.log = log
		}
	}
}

// NewHandler creates an MCP handler serving the given tool registry.
func NewHandler(info ServerInfo, tools *ToolRegistry, opts ...HandlerOption) *Handler {
	if tools == nil {
		tools = NewToolRegistry()
	}
	h := &Handler{
		info:  info,
		tools: tools,
		log:   logging.Nop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServeHTTP handles a single JSON-RPC request per POST.
// JSON-RPC errors are returned with HTTP 200; only transport-level
// problems (wrong HTTP method) use HTTP status codes.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "MCP endpoint accepts POST only")
		return
	}

	req, rpcErr := ParseRequest(r.Body)
	if rpcErr != nil {
		h.writeResponse(w, ErrorResponse(nil, rpcErr))
		return
	}

	// Notifications get no response body.
	if req.IsNotification() {
		h.log.Debug("mcp notification", "method", req.Method)
		w.WriteHeader(http.StatusAccepted)
		return
	}

	h.log.Debug("mcp request", "method", req.Method, "id", req.ID)
	h.writeResponse(w, h.dispatch(r.Context(), req))
}

func (h *Handler) dispatch(ctx context.Context, req *JSONRPCRequest) *JSONRPCResponse {
	switch req.Method {
	case "initialize":
		return h.handleInitialize(req)
	case "ping":
		return SuccessResponse(req.ID, map[string]any{})
	case "tools/list":
		return SuccessResponse(req.ID, ToolsListResult{Tools: h.tools.List()})
	case "tools/call":
		return h.handleToolCall(ctx, req)
	default:
		return ErrorResponse(req.ID, MethodNotFoundError(req.Method))
	}
}

func (h *Handler) handleInitialize(req *JSONRPCRequest) *JSONRPCResponse {
	params, rpcErr := UnmarshalParams[InitializeParams](req.Params)
	if rpcErr != nil {
		return ErrorResponse(req.ID, rpcErr)
	}

	h.log.Info("mcp client connected",
		"client", params.ClientInfo.Name,
		"clientVersion", params.ClientInfo.Version,
		"protocolVersion", params.ProtocolVersion)

	return SuccessResponse(req.ID, InitializeResult{
		ProtocolVersion: ProtocolVersion,
		Capabilities: ServerCapabilities{
			Tools: &ToolsCapability{},
		},
		ServerInfo: h.info,
	})
}

func (h *Handler) handleToolCall(ctx context.Context, req *JSONRPCRequest) *JSONRPCResponse {
	params, rpcErr := UnmarshalParams[ToolCallParams](req.Params)
	if rpcErr != nil {
		return ErrorResponse(req.ID, rpcErr)
	}
	if params.Name == "" {
		return ErrorResponse(req.ID, InvalidParamsError("tool name is required"))
	}

	result := h.tools.Execute(ctx, params.Name, params.Arguments)
	if result.IsError {
		h.log.Warn("tool call failed", "tool", params.Name)
	}
	return SuccessResponse(req.ID, result)
}

func (h *Handler) writeResponse(w http.ResponseWriter, resp *JSONRPCResponse) {
	httputil.WriteJSON(w, http.StatusOK, resp)
}
