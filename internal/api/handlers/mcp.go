package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/matiasleandrokruk/wccmcp/internal/api/ctxkeys"
	"github.com/matiasleandrokruk/wccmcp/internal/domain/resource"
	"github.com/matiasleandrokruk/wccmcp/internal/domain/tool"
	"github.com/matiasleandrokruk/wccmcp/internal/version"
)

// ProtocolVersion is announced in the initialize result.
const ProtocolVersion = "2025-06-18"

// TransportName is recorded as the transport of every call served here.
const TransportName = "http"

// maxBodyBytes bounds a single JSON-RPC request body.
const maxBodyBytes = 4 << 20

// JSON-RPC error codes.
const (
	codeParseError       = -32700
	codeInvalidRequest   = -32600
	codeMethodNotFound   = -32601
	codeInvalidParams    = -32602
	codeInternalError    = -32603
	codeResourceNotFound = -32002
)

var methods = []string{
	"initialize",
	"ping",
	"tools/list",
	"tools/call",
	"resources/list",
	"resources/read",
	"resources/templates/list",
}

type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc,omitempty"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *rpcError) Error() string { return e.Message }

type callToolParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

type readResourceParams struct {
	URI string `json:"uri"`
}

type toolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	InputSchema any    `json:"inputSchema"`
}

// MCPHandler serves the JSON-RPC endpoint: one request object per POST.
type MCPHandler struct {
	dispatcher *tool.Dispatcher
	resources  *resource.Catalog
	endpoint   string
	logger     zerolog.Logger
}

func NewMCPHandler(dispatcher *tool.Dispatcher, resources *resource.Catalog, endpoint string, logger zerolog.Logger) *MCPHandler {
	return &MCPHandler{dispatcher: dispatcher, resources: resources, endpoint: endpoint, logger: logger}
}

// Describe answers GET on the endpoint with a summary of the server.
func (h *MCPHandler) Describe(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":        version.Name,
		"version":     version.Version,
		"description": "MCP server for the Oracle WebCenter Content REST API",
		"transport":   TransportName,
		"endpoint":    h.endpoint,
		"methods":     methods,
		"toolCount":   h.dispatcher.Registry().Len(),
	})
}

// Handle answers POST on the endpoint.
// Malformed JSON is a 500 with a parse error; every other outcome is a 200 carrying result or error.
func (h *MCPHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var req rpcRequest
	if err := decodeRequest(http.MaxBytesReader(w, r.Body, maxBodyBytes), &req); err != nil {
		h.logger.Warn().Err(err).Msg("mcp: malformed request body")
		writeJSON(w, http.StatusInternalServerError, rpcResponse{
			JSONRPC: "2.0",
			Error:   &rpcError{Code: codeParseError, Message: "Parse error", Data: err.Error()},
		})
		return
	}

	resp := rpcResponse{JSONRPC: "2.0", ID: req.ID}
	result, err := h.dispatch(r, req)
	if err != nil {
		var rerr *rpcError
		if !errors.As(err, &rerr) {
			rerr = &rpcError{Code: codeInternalError, Message: err.Error()}
		}
		resp.Error = rerr
	} else {
		resp.Result = result
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *MCPHandler) dispatch(r *http.Request, req rpcRequest) (any, error) {
	ctx := ctxkeys.WithValue(r.Context(), ctxkeys.Transport, TransportName)

	switch {
	case req.Method == "":
		return nil, &rpcError{Code: codeInvalidRequest, Message: "Invalid Request: method is required"}
	case strings.HasPrefix(req.Method, "notifications/"):
		return map[string]any{}, nil
	}

	switch req.Method {
	case "initialize":
		return map[string]any{
			"protocolVersion": ProtocolVersion,
			"capabilities": map[string]any{
				"tools":     map[string]any{"listChanged": false},
				"resources": map[string]any{"listChanged": false},
			},
			"serverInfo": map[string]any{"name": version.Name, "version": version.Version},
		}, nil

	case "ping":
		return map[string]any{}, nil

	case "tools/list":
		defs := h.dispatcher.Registry().List()
		tools := make([]toolInfo, 0, len(defs))
		for _, def := range defs {
			tools = append(tools, toolInfo{Name: def.Name, Description: def.Description, InputSchema: def.InputSchema()})
		}
		return map[string]any{"tools": tools}, nil

	case "tools/call":
		var p callToolParams
		if err := decodeParams(req.Params, &p); err != nil || strings.TrimSpace(p.Name) == "" {
			return nil, &rpcError{Code: codeInvalidParams, Message: "Invalid params: tools/call requires a tool name"}
		}
		args, err := decodeArguments(p.Arguments)
		if err != nil {
			return nil, &rpcError{Code: codeInvalidParams, Message: "Invalid params: arguments must be an object"}
		}
		return h.dispatcher.Invoke(ctx, tool.Request{Tool: p.Name, Arguments: args}), nil

	case "resources/list":
		return map[string]any{"resources": h.resources.List()}, nil

	case "resources/templates/list":
		templates := h.resources.Templates()
		if templates == nil {
			templates = []resource.Template{}
		}
		return map[string]any{"resourceTemplates": templates}, nil

	case "resources/read":
		var p readResourceParams
		if err := decodeParams(req.Params, &p); err != nil || p.URI == "" {
			return nil, &rpcError{Code: codeInvalidParams, Message: "Invalid params: resources/read requires a uri"}
		}
		c, err := h.resources.Read(ctx, p.URI)
		if errors.Is(err, resource.ErrNotFound) {
			return nil, &rpcError{Code: codeResourceNotFound, Message: "Resource not found", Data: map[string]string{"uri": p.URI}}
		}
		if err != nil {
			return nil, err
		}
		return map[string]any{"contents": []resource.Contents{c}}, nil
	}

	return nil, &rpcError{Code: codeMethodNotFound, Message: "Method not found: " + req.Method}
}

// decodeRequest reads exactly one JSON value; anything but whitespace after it is a parse error.
func decodeRequest(body io.Reader, req *rpcRequest) error {
	dec := json.NewDecoder(body)
	if err := dec.Decode(req); err != nil {
		return err
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected data after request object")
		}
		return err
	}
	return nil
}

// decodeArguments treats absent and null arguments as empty.
func decodeArguments(raw json.RawMessage) (map[string]any, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var args map[string]any
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}
	return args, nil
}

func decodeParams(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return errors.New("missing params")
	}
	return json.Unmarshal(raw, v)
}
