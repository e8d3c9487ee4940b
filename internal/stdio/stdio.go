// Package stdio is the process-local front end: an MCP server over stdin/stdout.
// Framing, request ordering and the protocol handshake are handled by the MCP SDK;
// this package only binds the tool registry, the dispatcher and the resource catalog to it.
package stdio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"

	"github.com/matiasleandrokruk/wccmcp/internal/api/ctxkeys"
	"github.com/matiasleandrokruk/wccmcp/internal/domain/resource"
	"github.com/matiasleandrokruk/wccmcp/internal/domain/tool"
	"github.com/matiasleandrokruk/wccmcp/internal/version"
)

// TransportName is recorded as the transport of every call served here.
const TransportName = "stdio"

// Server adapts the dispatcher to an mcp.Server.
type Server struct {
	mcp        *mcp.Server
	dispatcher *tool.Dispatcher
	resources  *resource.Catalog
	logger     zerolog.Logger
}

// NewServer registers every tool of the dispatcher's registry and every resource of the catalog.
func NewServer(dispatcher *tool.Dispatcher, resources *resource.Catalog, logger zerolog.Logger) *Server {
	s := &Server{
		mcp:        mcp.NewServer(&mcp.Implementation{Name: version.Name, Version: version.Version}, nil),
		dispatcher: dispatcher,
		resources:  resources,
		logger:     logger,
	}

	for _, def := range dispatcher.Registry().List() {
		s.mcp.AddTool(&mcp.Tool{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: def.InputSchema(),
		}, s.callTool(def.Name))
	}
	if resources != nil {
		for _, r := range resources.List() {
			s.mcp.AddResource(&mcp.Resource{
				URI:         r.URI,
				Name:        r.Name,
				Description: r.Description,
				MIMEType:    r.MIMEType,
			}, s.readResource)
		}
		for _, tpl := range resources.Templates() {
			s.mcp.AddResourceTemplate(&mcp.ResourceTemplate{
				URITemplate: tpl.URITemplate,
				Name:        tpl.Name,
				Description: tpl.Description,
				MIMEType:    tpl.MIMEType,
			}, s.readResource)
		}
	}
	return s
}

// MCP exposes the underlying SDK server, e.g. to connect an in-memory transport.
func (s *Server) MCP() *mcp.Server {
	return s.mcp
}

// Serve answers requests on stdin/stdout until the client disconnects or ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info().Int("tools", s.dispatcher.Registry().Len()).Msg("serving MCP over stdio")
	err := s.mcp.Run(ctx, &mcp.StdioTransport{})
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("stdio: %w", err)
	}
	return nil
}

func (s *Server) callTool(name string) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := decodeArguments(req.Params.Arguments)
		if err != nil {
			return &mcp.CallToolResult{
				IsError: true,
				Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("Invalid argument for tool %s: %v", name, err)}},
			}, nil
		}

		ctx = ctxkeys.WithValue(ctx, ctxkeys.Transport, TransportName)
		return toCallToolResult(s.dispatcher.Invoke(ctx, tool.Request{Tool: name, Arguments: args})), nil
	}
}

func (s *Server) readResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := req.Params.URI
	c, err := s.resources.Read(ctx, uri)
	if errors.Is(err, resource.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(uri)
	}
	if err != nil {
		return nil, err
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{URI: c.URI, MIMEType: c.MIMEType, Text: c.Text}},
	}, nil
}

// decodeArguments accepts an absent or null argument object as empty.
func decodeArguments(raw json.RawMessage) (map[string]any, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, errors.New("arguments must be a JSON object")
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}

func toCallToolResult(res tool.Result) *mcp.CallToolResult {
	out := &mcp.CallToolResult{IsError: res.IsError, Content: make([]mcp.Content, 0, len(res.Content))}
	for _, c := range res.Content {
		out.Content = append(out.Content, &mcp.TextContent{Text: c.Text})
	}
	return out
}
