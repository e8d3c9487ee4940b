package content

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/matiasleandrokruk/wccmcp/internal/infra/wcc"
)

type FieldRef struct {
	FieldName string `json:"fieldName"`
}

type UserListInput struct {
	Filter string `json:"filter,omitempty"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
}

type UserRef struct {
	UserName string `json:"userName"`
}

func (s *Service) ListSecurityGroups(ctx context.Context, _ NoInput) (json.RawMessage, error) {
	return s.get(ctx, wcc.Path("securitygroups"), nil)
}

func (s *Service) ListDocumentTypes(ctx context.Context, _ NoInput) (json.RawMessage, error) {
	return s.get(ctx, wcc.Path("doctypes"), nil)
}

func (s *Service) ListMetadataFields(ctx context.Context, _ NoInput) (json.RawMessage, error) {
	return s.get(ctx, wcc.Path("metadatafields"), nil)
}

func (s *Service) GetMetadataField(ctx context.Context, in FieldRef) (json.RawMessage, error) {
	return s.get(ctx, wcc.Path("metadatafields", in.FieldName), nil)
}

func (s *Service) ListAccounts(ctx context.Context, _ NoInput) (json.RawMessage, error) {
	return s.get(ctx, wcc.Path("accounts"), nil)
}

func (s *Service) ListUsers(ctx context.Context, in UserListInput) (json.RawMessage, error) {
	q := url.Values{}
	Page{Limit: in.Limit, Offset: in.Offset}.apply(q)
	setIf(q, "filter", in.Filter)
	return s.get(ctx, wcc.Path("users"), q)
}

func (s *Service) GetUser(ctx context.Context, in UserRef) (json.RawMessage, error) {
	return s.get(ctx, wcc.Path("users", in.UserName), nil)
}

func (s *Service) GetCurrentUser(ctx context.Context, _ NoInput) (json.RawMessage, error) {
	return s.get(ctx, wcc.Path("users", ".me"), nil)
}
