package content

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/matiasleandrokruk/wccmcp/internal/infra/wcc"
)

type FolderRef struct {
	FolderGUID string `json:"folderGUID"`
}

type FolderPathInput struct {
	Path string `json:"path"`
}

type FolderItemsInput struct {
	FolderGUID string `json:"folderGUID"`
	Limit      int    `json:"limit"`
	Offset     int    `json:"offset"`
}

type CreateFolderInput struct {
	FolderName       string `json:"folderName"`
	ParentFolderGUID string `json:"parentFolderGUID"`
	SecurityGroup    string `json:"securityGroup,omitempty"`
}

type UpdateFolderInput struct {
	FolderGUID string         `json:"folderGUID"`
	Metadata   map[string]any `json:"metadata"`
}

type FolderRelocateInput struct {
	FolderGUID       string `json:"folderGUID"`
	TargetFolderGUID string `json:"targetFolderGUID"`
}

type FolderSearchInput struct {
	Query  string `json:"query"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
}

type FolderLinkInput struct {
	FolderGUID string `json:"folderGUID"`
	DocName    string `json:"dDocName"`
}

func (s *Service) ListRootFolders(ctx context.Context, _ NoInput) (json.RawMessage, error) {
	return s.get(ctx, wcc.Path("folders"), nil)
}

func (s *Service) GetFolder(ctx context.Context, in FolderRef) (json.RawMessage, error) {
	return s.get(ctx, wcc.Path("folders", in.FolderGUID), nil)
}

func (s *Service) GetFolderByPath(ctx context.Context, in FolderPathInput) (json.RawMessage, error) {
	return s.get(ctx, wcc.Path("folders", ".path"), url.Values{"path": {in.Path}})
}

func (s *Service) ListFolderItems(ctx context.Context, in FolderItemsInput) (json.RawMessage, error) {
	q := url.Values{}
	Page{Limit: in.Limit, Offset: in.Offset}.apply(q)
	return s.get(ctx, wcc.Path("folders", in.FolderGUID, "items"), q)
}

func (s *Service) CreateFolder(ctx context.Context, in CreateFolderInput) (json.RawMessage, error) {
	return s.post(ctx, wcc.Path("folders"), body(
		"fFolderName", in.FolderName,
		"fParentGUID", in.ParentFolderGUID,
		"fSecurityGroup", in.SecurityGroup,
	))
}

func (s *Service) UpdateFolder(ctx context.Context, in UpdateFolderInput) (json.RawMessage, error) {
	return s.put(ctx, wcc.Path("folders", in.FolderGUID), in.Metadata)
}

func (s *Service) DeleteFolder(ctx context.Context, in FolderRef) (json.RawMessage, error) {
	return s.delete(ctx, wcc.Path("folders", in.FolderGUID))
}

func (s *Service) MoveFolder(ctx context.Context, in FolderRelocateInput) (json.RawMessage, error) {
	return s.post(ctx, wcc.Path("folders", in.FolderGUID, ".move"), body("targetFolderGUID", in.TargetFolderGUID))
}

func (s *Service) CopyFolder(ctx context.Context, in FolderRelocateInput) (json.RawMessage, error) {
	return s.post(ctx, wcc.Path("folders", in.FolderGUID, ".copy"), body("targetFolderGUID", in.TargetFolderGUID))
}

func (s *Service) SearchFolders(ctx context.Context, in FolderSearchInput) (json.RawMessage, error) {
	q := url.Values{"q": {in.Query}}
	Page{Limit: in.Limit, Offset: in.Offset}.apply(q)
	return s.get(ctx, wcc.Path("folders", ".search"), q)
}

func (s *Service) LinkDocumentToFolder(ctx context.Context, in FolderLinkInput) (json.RawMessage, error) {
	return s.post(ctx, wcc.Path("folders", in.FolderGUID, "shortcuts"), body("dDocName", in.DocName))
}
