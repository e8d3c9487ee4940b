package resource

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matiasleandrokruk/wccmcp/internal/domain/audit"
	"github.com/matiasleandrokruk/wccmcp/internal/domain/content"
	"github.com/matiasleandrokruk/wccmcp/internal/domain/tool"
	"github.com/matiasleandrokruk/wccmcp/internal/infra/wcc"
)

type stubBackend struct {
	paths []string
	err   error
}

func (s *stubBackend) JSON(_ context.Context, req wcc.Request) (json.RawMessage, error) {
	s.paths = append(s.paths, req.Path)
	if s.err != nil {
		return nil, s.err
	}
	return json.RawMessage(`{"ResultSets":{"rows":[["Public"]]}}`), nil
}

func (s *stubBackend) Stream(context.Context, wcc.Request, io.Writer) (int64, error) {
	return 0, errors.New("not used")
}

type stubAudit struct{ records []*audit.Record }

func (s stubAudit) ListRecent(context.Context, int) ([]*audit.Record, error) {
	return s.records, nil
}

func (s stubAudit) ListByTool(_ context.Context, name string, _ int) ([]*audit.Record, error) {
	out := []*audit.Record{}
	for _, r := range s.records {
		if r.Tool == name {
			out = append(out, r)
		}
	}
	return out, nil
}

func newCatalog(t *testing.T, backend *stubBackend, opts ...Option) *Catalog {
	t.Helper()
	svc := content.NewService(backend)
	reg, err := tool.NewCatalogRegistry(svc)
	require.NoError(t, err)
	info := ServerInfo{
		BaseURL:  "https://wcc.example.com",
		APIPath:  "/documents/wcc/api/v1.1",
		Username: "weblogic",
		Timeout:  60 * time.Second,
		Version:  "test",
	}
	return NewCatalog(info, reg, svc, opts...)
}

func TestCatalog_ListWithoutAudit(t *testing.T) {
	t.Parallel()

	var uris []string
	for _, r := range newCatalog(t, &stubBackend{}).List() {
		uris = append(uris, r.URI)
	}
	assert.Equal(t, []string{URIServerConfig, URIToolCatalog, URISecurityGroups, URIDocumentTypes}, uris)
}

func TestCatalog_ListWithAudit(t *testing.T) {
	t.Parallel()

	list := newCatalog(t, &stubBackend{}, WithAudit(stubAudit{})).List()
	require.Len(t, list, 5)
	assert.Equal(t, URIRecentAudit, list[4].URI)
}

func TestCatalog_ReadServerConfig_OmitsPassword(t *testing.T) {
	t.Parallel()

	got, err := newCatalog(t, &stubBackend{}).Read(context.Background(), URIServerConfig)
	require.NoError(t, err)
	assert.Equal(t, "application/json", got.MIMEType)

	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(got.Text), &body))
	assert.Equal(t, "https://wcc.example.com", body["baseUrl"])
	assert.Equal(t, "weblogic", body["username"])
	assert.Equal(t, float64(60), body["timeoutSeconds"])
	assert.Equal(t, float64(56), body["toolCount"])
	assert.NotContains(t, got.Text, "password")
}

func TestCatalog_ReadToolCatalog(t *testing.T) {
	t.Parallel()

	got, err := newCatalog(t, &stubBackend{}).Read(context.Background(), URIToolCatalog)
	require.NoError(t, err)
	assert.Equal(t, "text/markdown", got.MIMEType)
	assert.True(t, strings.HasPrefix(got.Text, "# WebCenter Content tools (56)"))
	assert.Contains(t, got.Text, "## download-document")
	assert.Contains(t, got.Text, "Required: `dDocName`, `outputPath`")
}

func TestCatalog_ReadLiveResources(t *testing.T) {
	t.Parallel()

	backend := &stubBackend{}
	c := newCatalog(t, backend)

	got, err := c.Read(context.Background(), URISecurityGroups)
	require.NoError(t, err)
	assert.Contains(t, got.Text, "\"Public\"")

	_, err = c.Read(context.Background(), URIDocumentTypes)
	require.NoError(t, err)
	assert.Equal(t, []string{"/securitygroups", "/doctypes"}, backend.paths)
}

func TestCatalog_ReadLiveResource_BackendError(t *testing.T) {
	t.Parallel()

	apiErr := &wcc.APIError{StatusCode: 401, Message: "Unauthorized"}
	_, err := newCatalog(t, &stubBackend{err: apiErr}).Read(context.Background(), URISecurityGroups)

	var got *wcc.APIError
	require.ErrorAs(t, err, &got)
	assert.Equal(t, 401, got.StatusCode)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestCatalog_ReadRecentAudit(t *testing.T) {
	t.Parallel()

	records := []*audit.Record{{ID: "a1", Tool: "get-user", Outcome: tool.OutcomeSuccess}}
	got, err := newCatalog(t, &stubBackend{}, WithAudit(stubAudit{records: records})).Read(context.Background(), URIRecentAudit)
	require.NoError(t, err)

	var body []map[string]any
	require.NoError(t, json.Unmarshal([]byte(got.Text), &body))
	require.Len(t, body, 1)
	assert.Equal(t, "get-user", body[0]["tool"])
}

func TestCatalog_ReadUnknown(t *testing.T) {
	t.Parallel()

	c := newCatalog(t, &stubBackend{})
	for _, uri := range []string{"webcenter://nope", URIRecentAudit, ToolAuditPrefix + "get-user", ""} {
		_, err := c.Read(context.Background(), uri)
		assert.ErrorIs(t, err, ErrNotFound, uri)
	}
}

func TestCatalog_ToolAuditTemplate(t *testing.T) {
	t.Parallel()

	records := []*audit.Record{
		{ID: "a1", Tool: "get-user", Outcome: tool.OutcomeSuccess},
		{ID: "a2", Tool: "list-accounts", Outcome: tool.OutcomeBackendError},
	}
	c := newCatalog(t, &stubBackend{}, WithAudit(stubAudit{records: records}))

	tpls := c.Templates()
	require.Len(t, tpls, 1)
	assert.Equal(t, "webcenter://audit/tools/{name}", tpls[0].URITemplate)

	got, err := c.Read(context.Background(), ToolAuditPrefix+"list-accounts")
	require.NoError(t, err)
	assert.Equal(t, "application/json", got.MIMEType)
	var body []map[string]any
	require.NoError(t, json.Unmarshal([]byte(got.Text), &body))
	require.Len(t, body, 1)
	assert.Equal(t, "a2", body[0]["id"])

	got, err = c.Read(context.Background(), ToolAuditPrefix+"never-called")
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, got.Text)

	for _, uri := range []string{ToolAuditPrefix, ToolAuditPrefix + "a/b"} {
		_, err := c.Read(context.Background(), uri)
		assert.ErrorIs(t, err, ErrNotFound, uri)
	}
}

func TestCatalog_NoTemplatesWithoutAudit(t *testing.T) {
	t.Parallel()

	assert.Empty(t, newCatalog(t, &stubBackend{}).Templates())
}
