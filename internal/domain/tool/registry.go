package tool

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
)

var (
	ErrDuplicateTool     = errors.New("tool already registered")
	ErrInvalidDefinition = errors.New("invalid tool definition")
	ErrUnknownTool       = errors.New("unknown tool")
)

// Definition is one named tool. Immutable once registered.
type Definition struct {
	Name        string
	Description string
	Params      []ParamSpec
	Handler     Handler

	schema *jsonschema.Schema
}

// InputSchema returns the JSON schema built from Params at registration time.
func (d *Definition) InputSchema() *jsonschema.Schema {
	return d.schema
}

// RequiredParams lists the names of required parameters in declaration order.
func (d *Definition) RequiredParams() []string {
	var out []string
	for _, p := range d.Params {
		if p.Required {
			out = append(out, p.Name)
		}
	}
	return out
}

// Registry keeps definitions in registration order and indexes them by name.
// It is populated at startup and only read afterwards.
type Registry struct {
	defs   []*Definition
	byName map[string]*Definition
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Definition)}
}

// Register adds def. Duplicate names and malformed definitions are startup errors.
func (r *Registry) Register(def Definition) error {
	def.Name = strings.TrimSpace(def.Name)
	if def.Name == "" || def.Handler == nil {
		return fmt.Errorf("%w: name and handler are required", ErrInvalidDefinition)
	}
	if _, exists := r.byName[def.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateTool, def.Name)
	}

	seen := make(map[string]struct{}, len(def.Params))
	for _, p := range def.Params {
		if _, dup := seen[p.Name]; dup || p.Name == "" {
			return fmt.Errorf("%w: %s: bad or duplicate parameter %q", ErrInvalidDefinition, def.Name, p.Name)
		}
		seen[p.Name] = struct{}{}
	}

	schema, err := buildSchema(def.Params)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidDefinition, def.Name, err)
	}
	def.Params = append([]ParamSpec(nil), def.Params...)
	def.schema = schema

	stored := &def
	r.defs = append(r.defs, stored)
	r.byName[def.Name] = stored
	return nil
}

// RegisterAll registers defs in order and stops at the first error.
func (r *Registry) RegisterAll(defs []Definition) error {
	for _, def := range defs {
		if err := r.Register(def); err != nil {
			return err
		}
	}
	return nil
}

// Get looks a tool up by name.
func (r *Registry) Get(name string) (*Definition, bool) {
	def, ok := r.byName[name]
	return def, ok
}

// List returns every definition in registration order.
func (r *Registry) List() []*Definition {
	return append([]*Definition(nil), r.defs...)
}

// Schema returns the parameter specs of the named tool.
func (r *Registry) Schema(name string) ([]ParamSpec, error) {
	def, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	return append([]ParamSpec(nil), def.Params...), nil
}

// Len reports the number of registered tools.
func (r *Registry) Len() int {
	return len(r.defs)
}
