// Package resource serves the read-only resources listed by resources/list.
package resource

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/matiasleandrokruk/wccmcp/internal/domain/audit"
	"github.com/matiasleandrokruk/wccmcp/internal/domain/content"
	"github.com/matiasleandrokruk/wccmcp/internal/domain/tool"
)

var ErrNotFound = errors.New("resource not found")

const (
	URIServerConfig   = "webcenter://server/config"
	URIToolCatalog    = "webcenter://tools/catalog"
	URISecurityGroups = "webcenter://security-groups"
	URIDocumentTypes  = "webcenter://document-types"
	URIRecentAudit    = "webcenter://audit/recent"

	// ToolAuditPrefix + <tool name> reads the audit records of one tool.
	ToolAuditPrefix      = "webcenter://audit/tools/"
	URITemplateToolAudit = ToolAuditPrefix + "{name}"

	mimeJSON     = "application/json"
	mimeMarkdown = "text/markdown"

	recentAuditLimit = 50
)

// Resource describes one entry of resources/list.
type Resource struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	MIMEType    string `json:"mimeType,omitempty"`
}

// Template describes one entry of resources/templates/list.
type Template struct {
	URITemplate string `json:"uriTemplate"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	MIMEType    string `json:"mimeType,omitempty"`
}

// Contents is the body of a resources/read answer.
type Contents struct {
	URI      string `json:"uri"`
	MIMEType string `json:"mimeType,omitempty"`
	Text     string `json:"text"`
}

// ServerInfo is the non-secret connection summary published as URIServerConfig.
type ServerInfo struct {
	BaseURL  string
	APIPath  string
	Username string
	Timeout  time.Duration
	Version  string
}

// AuditReader is the part of audit.Service the catalog reads.
type AuditReader interface {
	ListRecent(ctx context.Context, limit int) ([]*audit.Record, error)
	ListByTool(ctx context.Context, name string, limit int) ([]*audit.Record, error)
}

// Catalog resolves resource URIs. Live resources go through the content service.
type Catalog struct {
	info     ServerInfo
	registry *tool.Registry
	content  *content.Service
	audit    AuditReader
}

type Option func(*Catalog)

// WithAudit publishes URIRecentAudit and URITemplateToolAudit backed by a.
func WithAudit(a AuditReader) Option {
	return func(c *Catalog) { c.audit = a }
}

func NewCatalog(info ServerInfo, registry *tool.Registry, svc *content.Service, opts ...Option) *Catalog {
	c := &Catalog{info: info, registry: registry, content: svc}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// List returns the resources in a fixed order.
func (c *Catalog) List() []Resource {
	out := []Resource{
		{URI: URIServerConfig, Name: "Server configuration", MIMEType: mimeJSON,
			Description: "Connection settings of this adapter (credentials omitted)"},
		{URI: URIToolCatalog, Name: "Tool catalog", MIMEType: mimeMarkdown,
			Description: "Every tool with its description and required arguments"},
		{URI: URISecurityGroups, Name: "Security groups", MIMEType: mimeJSON,
			Description: "Security groups defined on the content server"},
		{URI: URIDocumentTypes, Name: "Document types", MIMEType: mimeJSON,
			Description: "Document types defined on the content server"},
	}
	if c.audit != nil {
		out = append(out, Resource{URI: URIRecentAudit, Name: "Recent tool calls", MIMEType: mimeJSON,
			Description: fmt.Sprintf("The last %d audited tool invocations", recentAuditLimit)})
	}
	return out
}

// Templates returns the parameterised resources; empty when audit is off.
func (c *Catalog) Templates() []Template {
	if c.audit == nil {
		return nil
	}
	return []Template{{
		URITemplate: URITemplateToolAudit,
		Name:        "Tool audit",
		MIMEType:    mimeJSON,
		Description: fmt.Sprintf("The last %d audited invocations of one tool", recentAuditLimit),
	}}
}

// Read renders the resource at uri. Unknown URIs return ErrNotFound.
func (c *Catalog) Read(ctx context.Context, uri string) (Contents, error) {
	switch uri {
	case URIServerConfig:
		return c.jsonContents(uri, map[string]any{
			"baseUrl":        c.info.BaseURL,
			"apiPath":        c.info.APIPath,
			"username":       c.info.Username,
			"timeoutSeconds": c.info.Timeout.Seconds(),
			"version":        c.info.Version,
			"toolCount":      c.registry.Len(),
		})
	case URIToolCatalog:
		return Contents{URI: uri, MIMEType: mimeMarkdown, Text: c.toolMarkdown()}, nil
	case URISecurityGroups:
		return c.live(ctx, uri, c.content.ListSecurityGroups)
	case URIDocumentTypes:
		return c.live(ctx, uri, c.content.ListDocumentTypes)
	case URIRecentAudit:
		if c.audit == nil {
			break
		}
		records, err := c.audit.ListRecent(ctx, recentAuditLimit)
		if err != nil {
			return Contents{}, fmt.Errorf("read %s: %w", uri, err)
		}
		return c.jsonContents(uri, records)
	}
	if name, ok := strings.CutPrefix(uri, ToolAuditPrefix); ok && c.audit != nil && validToolName(name) {
		records, err := c.audit.ListByTool(ctx, name, recentAuditLimit)
		if err != nil {
			return Contents{}, fmt.Errorf("read %s: %w", uri, err)
		}
		return c.jsonContents(uri, records)
	}
	return Contents{}, fmt.Errorf("%w: %s", ErrNotFound, uri)
}

// validToolName accepts any name a caller could have invoked, including unknown ones,
// but not an empty or nested path.
func validToolName(name string) bool {
	return strings.TrimSpace(name) != "" && !strings.ContainsAny(name, "/?#")
}

func (c *Catalog) live(ctx context.Context, uri string, fn func(context.Context, content.NoInput) (json.RawMessage, error)) (Contents, error) {
	raw, err := fn(ctx, content.NoInput{})
	if err != nil {
		return Contents{}, fmt.Errorf("read %s: %w", uri, err)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return Contents{}, fmt.Errorf("read %s: %w", uri, err)
	}
	return Contents{URI: uri, MIMEType: mimeJSON, Text: buf.String()}, nil
}

func (c *Catalog) jsonContents(uri string, v any) (Contents, error) {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return Contents{}, fmt.Errorf("read %s: %w", uri, err)
	}
	return Contents{URI: uri, MIMEType: mimeJSON, Text: string(raw)}, nil
}

func (c *Catalog) toolMarkdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# WebCenter Content tools (%d)\n\n", c.registry.Len())
	for _, def := range c.registry.List() {
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", def.Name, def.Description)
		if req := def.RequiredParams(); len(req) > 0 {
			fmt.Fprintf(&b, "Required: `%s`\n\n", strings.Join(req, "`, `"))
		}
	}
	return b.String()
}
