package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/matiasleandrokruk/wccmcp/internal/domain/content"
	"github.com/matiasleandrokruk/wccmcp/internal/domain/tool"
	"github.com/matiasleandrokruk/wccmcp/pkg/auth"
)

// catalogEntry is the exported shape of one tool, identical to a tools/list entry.
type catalogEntry struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	InputSchema *jsonschema.Schema `json:"inputSchema"`
}

func newToolsCommand(stdout io.Writer) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Print the tool catalog",
		Long:  "Print every tool with its description and input schema, in the same order tools/list returns them.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// The catalog is static; a service without a backend is enough to describe it.
			registry, err := tool.NewCatalogRegistry(content.NewService(nil))
			if err != nil {
				return err
			}
			return writeCatalog(stdout, registry.List(), format)
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "output format (json or yaml)")
	return cmd
}

func writeCatalog(w io.Writer, defs []*tool.Definition, format string) error {
	entries := make([]catalogEntry, 0, len(defs))
	for _, d := range defs {
		entries = append(entries, catalogEntry{Name: d.Name, Description: d.Description, InputSchema: d.InputSchema()})
	}

	raw, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}

	switch strings.ToLower(format) {
	case "json":
		_, err = fmt.Fprintln(w, string(raw))
		return err
	case "yaml", "yml":
		// Round-trip through JSON so field names follow the json tags.
		var generic any
		if err := json.Unmarshal(raw, &generic); err != nil {
			return fmt.Errorf("encode catalog: %w", err)
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(generic); err != nil {
			return fmt.Errorf("encode catalog: %w", err)
		}
		return enc.Close()
	default:
		return usageError{err: fmt.Errorf("unknown format %q (want json or yaml)", format)}
	}
}

func newTokenCommand(opts *options, stdout io.Writer) *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the HTTP endpoint",
		Long:  "Sign an HS256 token with MCP_HTTP_JWT_SECRET. The subject is recorded as the actor of every call made with it.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			if cfg.JWTSecret == "" {
				return errors.New("MCP_HTTP_JWT_SECRET is not set")
			}
			if strings.TrimSpace(subject) == "" {
				return usageError{err: errors.New("--subject is required")}
			}
			token, err := auth.IssueToken(cfg.JWTSecret, subject, ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(stdout, token)
			return err
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "token subject (audit actor)")
	cmd.Flags().DurationVar(&ttl, "ttl", auth.DefaultTokenTTL, "token lifetime")
	return cmd
}
