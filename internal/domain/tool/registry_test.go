package tool

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopHandler(context.Context, map[string]any) (Output, error) {
	return Output{JSON: json.RawMessage(`{}`)}, nil
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	require.NoError(t, r.Register(Definition{
		Name:    "get-folder",
		Params:  []ParamSpec{required("folderGUID", TypeString, "GUID")},
		Handler: noopHandler,
	}))

	def, ok := r.Get("get-folder")
	require.True(t, ok)
	assert.Equal(t, "get-folder", def.Name)
	assert.Equal(t, []string{"folderGUID"}, def.RequiredParams())

	_, ok = r.Get("missing")
	assert.False(t, ok)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_DuplicateName_ReturnsError(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	require.NoError(t, r.Register(Definition{Name: "list-accounts", Handler: noopHandler}))

	err := r.Register(Definition{Name: "list-accounts", Handler: noopHandler})
	assert.ErrorIs(t, err, ErrDuplicateTool)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_InvalidDefinitions(t *testing.T) {
	t.Parallel()

	cases := map[string]Definition{
		"empty name":      {Name: "  ", Handler: noopHandler},
		"nil handler":     {Name: "x"},
		"duplicate param": {Name: "x", Handler: noopHandler, Params: []ParamSpec{{Name: "a"}, {Name: "a"}}},
		"blank param":     {Name: "x", Handler: noopHandler, Params: []ParamSpec{{Name: ""}}},
		"bad default":     {Name: "x", Handler: noopHandler, Params: []ParamSpec{{Name: "a", Default: func() {}}}},
	}
	for name, def := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.ErrorIs(t, NewRegistry().Register(def), ErrInvalidDefinition)
		})
	}
}

func TestRegistry_ListKeepsRegistrationOrder(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	names := []string{"zeta", "alpha", "mid"}
	for _, n := range names {
		require.NoError(t, r.Register(Definition{Name: n, Handler: noopHandler}))
	}

	for i := 0; i < 3; i++ {
		var got []string
		for _, d := range r.List() {
			got = append(got, d.Name)
		}
		assert.Equal(t, names, got)
	}
}

func TestRegistry_Schema(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	params := []ParamSpec{required("query", TypeString, "q"), limit(10)}
	require.NoError(t, r.Register(Definition{Name: "search-folders", Params: params, Handler: noopHandler}))

	got, err := r.Schema("search-folders")
	require.NoError(t, err)
	assert.Equal(t, params, got)

	// Callers get a copy.
	got[0].Name = "changed"
	again, _ := r.Schema("search-folders")
	assert.Equal(t, "query", again[0].Name)

	_, err = r.Schema("nope")
	assert.ErrorIs(t, err, ErrUnknownTool)
}

func TestDefinition_InputSchema(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	require.NoError(t, r.Register(Definition{
		Name: "upload-document",
		Params: []ParamSpec{
			required("filePath", TypeString, "path"),
			defaulted("dSecurityGroup", TypeString, "group", "Public"),
			optional("metadata", TypeObject, "extra"),
		},
		Handler: noopHandler,
	}))
	def, _ := r.Get("upload-document")

	schema := def.InputSchema()
	require.NotNil(t, schema)
	assert.Equal(t, "object", schema.Type)
	assert.Equal(t, []string{"filePath"}, schema.Required)
	require.Contains(t, schema.Properties, "dSecurityGroup")
	assert.JSONEq(t, `"Public"`, string(schema.Properties["dSecurityGroup"].Default))
	assert.Equal(t, "object", schema.Properties["metadata"].Type)
	assert.Nil(t, schema.Properties["filePath"].Default)
}

func TestPrepare_FailsFastOnFirstMissingInDeclarationOrder(t *testing.T) {
	t.Parallel()

	params := []ParamSpec{
		required("dDocName", TypeString, ""),
		required("dID", TypeString, ""),
		required("outputPath", TypeString, ""),
	}

	_, err := prepare(params, map[string]any{"outputPath": "/tmp/x"})
	var argErr *ArgumentError
	require.True(t, errors.As(err, &argErr))
	assert.ErrorIs(t, err, ErrMissingArgument)
	assert.Equal(t, "dDocName", argErr.Field)

	_, err = prepare(params, map[string]any{"dDocName": "DOC1"})
	require.True(t, errors.As(err, &argErr))
	assert.Equal(t, "dID", argErr.Field)
}

func TestPrepare_BlankAndNullCountAsMissing(t *testing.T) {
	t.Parallel()

	params := []ParamSpec{required("dDocName", TypeString, "")}
	for _, v := range []any{nil, "", "   "} {
		_, err := prepare(params, map[string]any{"dDocName": v})
		assert.ErrorIs(t, err, ErrMissingArgument, "value %#v", v)
	}
}

func TestPrepare_DefaultsAndExtras(t *testing.T) {
	t.Parallel()

	params := []ParamSpec{
		required("query", TypeString, ""),
		limit(10),
		pOffset,
		optional("orderBy", TypeString, ""),
	}
	got, err := prepare(params, map[string]any{"query": "*", "offset": float64(5), "unknown": true})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"query": "*", "limit": 10, "offset": float64(5)}, got)
}

func TestPrepare_TypeMismatch(t *testing.T) {
	t.Parallel()

	params := []ParamSpec{
		required("query", TypeString, ""),
		limit(10),
		optional("metadata", TypeObject, ""),
		optional("flag", TypeBoolean, ""),
	}
	cases := map[string]map[string]any{
		"limit":    {"query": "*", "limit": "ten"},
		"metadata": {"query": "*", "metadata": []any{"a"}},
		"flag":     {"query": "*", "flag": "yes"},
		"query":    {"query": float64(3)},
	}
	for field, args := range cases {
		_, err := prepare(params, args)
		var argErr *ArgumentError
		require.True(t, errors.As(err, &argErr), field)
		assert.ErrorIs(t, err, ErrInvalidArgument)
		assert.Equal(t, field, argErr.Field)
	}

	_, err := prepare(params, map[string]any{"query": "*", "limit": "ten"})
	assert.EqualError(t, err, "limit must be an integer")
	_, err = prepare(params, map[string]any{"query": "*", "metadata": "x"})
	assert.EqualError(t, err, "metadata must be an object")
}

func TestPrepare_IntegerParams(t *testing.T) {
	t.Parallel()

	params := []ParamSpec{limit(10), pOffset}
	for _, v := range []any{float64(25), 25, json.Number("25")} {
		got, err := prepare(params, map[string]any{"limit": v})
		require.NoError(t, err, "value %#v", v)
		assert.Equal(t, v, got["limit"])
	}
	for _, v := range []any{10.5, json.Number("2.5"), 1e300} {
		_, err := prepare(params, map[string]any{"offset": v})
		assert.EqualError(t, err, "offset must be an integer", "value %#v", v)
	}
}

func TestPrepare_NumericIdentifier(t *testing.T) {
	t.Parallel()

	params := []ParamSpec{pDID}
	cases := map[any]string{
		"42":          "42",
		float64(42):   "42",
		7:             "7",
		"RV-00012":    "RV-00012",
		float64(1e15): "1000000000000000",
	}
	for in, want := range cases {
		got, err := prepare(params, map[string]any{"dID": in})
		require.NoError(t, err, "value %#v", in)
		assert.Equal(t, want, got["dID"])
	}

	_, err := prepare(params, map[string]any{"dID": true})
	assert.EqualError(t, err, "dID must be a string or integer")
	_, err = prepare([]ParamSpec{pDocName}, map[string]any{"dDocName": float64(42)})
	assert.EqualError(t, err, "dDocName must be a string")
}

func TestBuildSchema_IntegerAndNumericTypes(t *testing.T) {
	t.Parallel()

	schema, err := buildSchema([]ParamSpec{pDID, limit(20)})
	require.NoError(t, err)
	assert.Equal(t, []string{"string", "integer"}, schema.Properties["dID"].Types)
	assert.Empty(t, schema.Properties["dID"].Type)
	assert.Equal(t, "integer", schema.Properties["limit"].Type)

	raw, err := json.Marshal(schema.Properties["dID"])
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"type":["string","integer"]`)
}
