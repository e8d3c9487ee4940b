package tool

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
)

var (
	ErrMissingArgument = errors.New("missing required argument")
	ErrInvalidArgument = errors.New("invalid argument")
)

// ParamType is the JSON type a tool argument must have.
type ParamType string

const (
	TypeString  ParamType = "string"
	TypeNumber  ParamType = "number"
	TypeBoolean ParamType = "boolean"
	TypeObject  ParamType = "object"
)

// ParamSpec declares one argument of a tool. Owned by its Definition.
type ParamSpec struct {
	Name        string
	Type        ParamType
	Description string
	Required    bool
	// Default is applied when an optional argument is absent. Nil means no default.
	Default any
	// Integer restricts a number to whole values.
	Integer bool
	// Numeric lets a string argument arrive as a whole number, passed on in decimal form.
	Numeric bool
}

// want describes the accepted values, e.g. "an integer".
func (p ParamSpec) want() string {
	switch {
	case p.Type == TypeNumber && p.Integer:
		return "an integer"
	case p.Type == TypeString && p.Numeric:
		return "a string or integer"
	case p.Type == TypeObject:
		return "an object"
	}
	return "a " + string(p.Type)
}

// normalize checks v against p and returns the value handed to the tool.
func (p ParamSpec) normalize(v any) (any, bool) {
	if p.Type == TypeString && p.Numeric {
		if n, ok := wholeNumber(v); ok {
			return strconv.FormatInt(n, 10), true
		}
	}
	if !p.Type.accepts(v) {
		return nil, false
	}
	if p.Type == TypeNumber && p.Integer {
		if _, ok := wholeNumber(v); !ok {
			return nil, false
		}
	}
	return v, true
}

// ArgumentError names the offending field. It unwraps to ErrMissingArgument or ErrInvalidArgument.
type ArgumentError struct {
	Kind  error
	Field string
	// Want is a phrase such as "a string"; empty for missing arguments.
	Want string
}

func (e *ArgumentError) Error() string {
	if errors.Is(e.Kind, ErrMissingArgument) || e.Want == "" {
		return e.Field
	}
	return fmt.Sprintf("%s must be %s", e.Field, e.Want)
}

func (e *ArgumentError) Unwrap() error { return e.Kind }

// accepts reports whether v is a JSON value of type t, as produced by encoding/json.
func (t ParamType) accepts(v any) bool {
	switch t {
	case TypeString:
		_, ok := v.(string)
		return ok
	case TypeNumber:
		switch v.(type) {
		case float64, float32, int, int32, int64, json.Number:
			return true
		}
		return false
	case TypeBoolean:
		_, ok := v.(bool)
		return ok
	case TypeObject:
		_, ok := v.(map[string]any)
		return ok
	}
	return false
}

func wholeNumber(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float32:
		return wholeFloat(float64(n))
	case float64:
		return wholeFloat(n)
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	}
	return 0, false
}

func wholeFloat(f float64) (int64, bool) {
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.Abs(f) >= 1<<63 {
		return 0, false
	}
	return int64(f), true
}

// isMissing treats absent keys, JSON null and blank required strings alike.
func isMissing(v any, present bool) bool {
	if !present || v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}

// prepare validates args against params and returns a new map with defaults applied.
// Validation fails fast: the first missing required field in declaration order wins,
// then the first type mismatch. Unknown extra arguments are ignored.
func prepare(params []ParamSpec, args map[string]any) (map[string]any, error) {
	for _, p := range params {
		if !p.Required {
			continue
		}
		v, ok := args[p.Name]
		if isMissing(v, ok) {
			return nil, &ArgumentError{Kind: ErrMissingArgument, Field: p.Name}
		}
	}

	out := make(map[string]any, len(params))
	for _, p := range params {
		v, ok := args[p.Name]
		if !ok || v == nil {
			if p.Default != nil {
				out[p.Name] = p.Default
			}
			continue
		}
		nv, ok := p.normalize(v)
		if !ok {
			return nil, &ArgumentError{Kind: ErrInvalidArgument, Field: p.Name, Want: p.want()}
		}
		out[p.Name] = nv
	}
	return out, nil
}

// buildSchema renders params as the JSON schema published by tools/list.
func buildSchema(params []ParamSpec) (*jsonschema.Schema, error) {
	schema := &jsonschema.Schema{
		Type:       "object",
		Properties: make(map[string]*jsonschema.Schema, len(params)),
	}
	for _, p := range params {
		prop := &jsonschema.Schema{Type: string(p.Type), Description: p.Description}
		switch {
		case p.Type == TypeNumber && p.Integer:
			prop.Type = "integer"
		case p.Type == TypeString && p.Numeric:
			prop.Type, prop.Types = "", []string{"string", "integer"}
		}
		if p.Default != nil {
			raw, err := json.Marshal(p.Default)
			if err != nil {
				return nil, fmt.Errorf("default for %q: %w", p.Name, err)
			}
			prop.Default = raw
		}
		schema.Properties[p.Name] = prop
		if p.Required {
			schema.Required = append(schema.Required, p.Name)
		}
	}
	return schema, nil
}
