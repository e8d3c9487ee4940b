// Package content maps each WebCenter Content operation onto one REST call.
// Inputs are typed structs whose json tags match the tool argument names, so the
// tool layer can decode a validated argument object straight into them.
package content

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/matiasleandrokruk/wccmcp/internal/infra/wcc"
)

// Backend is the transport the service talks through. *wcc.Client implements it.
type Backend interface {
	JSON(ctx context.Context, req wcc.Request) (json.RawMessage, error)
	Stream(ctx context.Context, req wcc.Request, w io.Writer) (int64, error)
}

// Service exposes one method per remote operation.
type Service struct {
	backend Backend
}

func NewService(backend Backend) *Service {
	return &Service{backend: backend}
}

// NoInput is the argument type of operations that take no parameters.
type NoInput struct{}

// Page carries the common limit/offset pair.
type Page struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

func (p Page) apply(q url.Values) {
	q.Set("limit", strconv.Itoa(p.Limit))
	q.Set("offset", strconv.Itoa(p.Offset))
}

func (s *Service) get(ctx context.Context, path string, q url.Values) (json.RawMessage, error) {
	return s.backend.JSON(ctx, wcc.Request{Method: http.MethodGet, Path: path, Query: q})
}

func (s *Service) post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return s.backend.JSON(ctx, wcc.Request{Method: http.MethodPost, Path: path, Body: body})
}

func (s *Service) put(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return s.backend.JSON(ctx, wcc.Request{Method: http.MethodPut, Path: path, Body: body})
}

func (s *Service) delete(ctx context.Context, path string) (json.RawMessage, error) {
	return s.backend.JSON(ctx, wcc.Request{Method: http.MethodDelete, Path: path})
}

func (s *Service) download(ctx context.Context, path string, q url.Values, w io.Writer) (int64, error) {
	return s.backend.Stream(ctx, wcc.Request{Method: http.MethodGet, Path: path, Query: q}, w)
}

// setIf adds key=v only when v is non-empty; optional filters are never sent blank.
func setIf(q url.Values, key, v string) {
	if v != "" {
		q.Set(key, v)
	}
}

// body builds a JSON object from key/value pairs, dropping empty strings.
func body(kv ...string) map[string]any {
	out := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i+1] != "" {
			out[kv[i]] = kv[i+1]
		}
	}
	return out
}
