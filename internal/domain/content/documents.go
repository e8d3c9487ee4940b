package content

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/matiasleandrokruk/wccmcp/internal/infra/wcc"
)

type DocumentRef struct {
	DocName string `json:"dDocName"`
}

type SearchInput struct {
	Query   string `json:"query"`
	Limit   int    `json:"limit"`
	Offset  int    `json:"offset"`
	OrderBy string `json:"orderBy,omitempty"`
	Fields  string `json:"fields,omitempty"`
}

type MetadataSearchInput struct {
	Field  string `json:"field"`
	Value  string `json:"value"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
}

type DownloadInput struct {
	DocName    string `json:"dDocName"`
	OutputPath string `json:"outputPath"`
	Revision   string `json:"revision,omitempty"`
}

func (in DownloadInput) Destination() string { return in.OutputPath }

type UploadInput struct {
	FilePath         string         `json:"filePath"`
	Title            string         `json:"dDocTitle"`
	SecurityGroup    string         `json:"dSecurityGroup"`
	DocType          string         `json:"dDocType"`
	Account          string         `json:"dDocAccount,omitempty"`
	DocName          string         `json:"dDocName,omitempty"`
	ParentFolderGUID string         `json:"parentFolderGUID,omitempty"`
	Metadata         map[string]any `json:"metadata,omitempty"`
}

type UpdateMetadataInput struct {
	DocName  string         `json:"dDocName"`
	Metadata map[string]any `json:"metadata"`
}

type CheckinInput struct {
	DocName  string         `json:"dDocName"`
	FilePath string         `json:"filePath"`
	Comments string         `json:"comments,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type RevisionRef struct {
	DocName string `json:"dDocName"`
	DID     string `json:"dID"`
}

type RevisionDownloadInput struct {
	DocName    string `json:"dDocName"`
	DID        string `json:"dID"`
	OutputPath string `json:"outputPath"`
}

func (in RevisionDownloadInput) Destination() string { return in.OutputPath }

type RenditionDownloadInput struct {
	DocName    string `json:"dDocName"`
	Rendition  string `json:"rendition"`
	OutputPath string `json:"outputPath"`
}

func (in RenditionDownloadInput) Destination() string { return in.OutputPath }

type AttachmentDownloadInput struct {
	DocName        string `json:"dDocName"`
	AttachmentName string `json:"attachmentName"`
	OutputPath     string `json:"outputPath"`
}

func (in AttachmentDownloadInput) Destination() string { return in.OutputPath }

type RelocateInput struct {
	DocName          string `json:"dDocName"`
	TargetFolderGUID string `json:"targetFolderGUID"`
	NewTitle         string `json:"newTitle,omitempty"`
}

type HistoryInput struct {
	DocName string `json:"dDocName"`
	Limit   int    `json:"limit"`
}

type SubscribeInput struct {
	DocName          string `json:"dDocName"`
	SubscriptionType string `json:"subscriptionType"`
}

// ─── search ─────────────────────────────────────────────────────────────────

func (s *Service) SearchDocuments(ctx context.Context, in SearchInput) (json.RawMessage, error) {
	q := url.Values{"q": {in.Query}}
	Page{Limit: in.Limit, Offset: in.Offset}.apply(q)
	setIf(q, "orderBy", in.OrderBy)
	setIf(q, "fields", in.Fields)
	return s.get(ctx, wcc.Path("search", "items"), q)
}

// SearchByMetadata builds a Universal Query Syntax clause: <field> <matches> `<value>`.
func (s *Service) SearchByMetadata(ctx context.Context, in MetadataSearchInput) (json.RawMessage, error) {
	q := url.Values{"q": {fmt.Sprintf("%s <matches> `%s`", in.Field, in.Value)}}
	Page{Limit: in.Limit, Offset: in.Offset}.apply(q)
	return s.get(ctx, wcc.Path("search", "items"), q)
}

// ─── files ──────────────────────────────────────────────────────────────────

func (s *Service) GetDocumentMetadata(ctx context.Context, in DocumentRef) (json.RawMessage, error) {
	return s.get(ctx, wcc.Path("files", in.DocName), nil)
}

func (s *Service) DownloadDocument(ctx context.Context, in DownloadInput, w io.Writer) (int64, error) {
	q := url.Values{}
	setIf(q, "revision", in.Revision)
	return s.download(ctx, wcc.Path("files", in.DocName, "data"), q, w)
}

func (s *Service) UploadDocument(ctx context.Context, in UploadInput) (json.RawMessage, error) {
	meta := mergeMetadata(in.Metadata, body(
		"dDocTitle", in.Title,
		"dSecurityGroup", in.SecurityGroup,
		"dDocType", in.DocType,
		"dDocAccount", in.Account,
		"dDocName", in.DocName,
		"fParentGUID", in.ParentFolderGUID,
	))
	return s.backend.JSON(ctx, wcc.Request{
		Method: http.MethodPost,
		Path:   wcc.Path("files"),
		Upload: &wcc.Upload{FilePath: in.FilePath, Metadata: meta},
	})
}

func (s *Service) UpdateDocumentMetadata(ctx context.Context, in UpdateMetadataInput) (json.RawMessage, error) {
	return s.put(ctx, wcc.Path("files", in.DocName), in.Metadata)
}

func (s *Service) DeleteDocument(ctx context.Context, in DocumentRef) (json.RawMessage, error) {
	return s.delete(ctx, wcc.Path("files", in.DocName))
}

func (s *Service) CheckoutDocument(ctx context.Context, in DocumentRef) (json.RawMessage, error) {
	return s.post(ctx, wcc.Path("files", in.DocName, ".checkout"), nil)
}

func (s *Service) UndoCheckout(ctx context.Context, in DocumentRef) (json.RawMessage, error) {
	return s.post(ctx, wcc.Path("files", in.DocName, ".undocheckout"), nil)
}

func (s *Service) CheckinDocument(ctx context.Context, in CheckinInput) (json.RawMessage, error) {
	meta := mergeMetadata(in.Metadata, body("dRevComments", in.Comments))
	return s.backend.JSON(ctx, wcc.Request{
		Method: http.MethodPost,
		Path:   wcc.Path("files", in.DocName, ".checkin"),
		Upload: &wcc.Upload{FilePath: in.FilePath, Metadata: meta},
	})
}

// ─── revisions, renditions, attachments ─────────────────────────────────────

func (s *Service) ListDocumentRevisions(ctx context.Context, in DocumentRef) (json.RawMessage, error) {
	return s.get(ctx, wcc.Path("files", in.DocName, "versions"), nil)
}

func (s *Service) GetRevisionMetadata(ctx context.Context, in RevisionRef) (json.RawMessage, error) {
	return s.get(ctx, wcc.Path("files", in.DocName, "versions", in.DID), nil)
}

func (s *Service) DownloadRevision(ctx context.Context, in RevisionDownloadInput, w io.Writer) (int64, error) {
	return s.download(ctx, wcc.Path("files", in.DocName, "versions", in.DID, "data"), nil, w)
}

func (s *Service) DeleteRevision(ctx context.Context, in RevisionRef) (json.RawMessage, error) {
	return s.delete(ctx, wcc.Path("files", in.DocName, "versions", in.DID))
}

func (s *Service) ListRenditions(ctx context.Context, in DocumentRef) (json.RawMessage, error) {
	return s.get(ctx, wcc.Path("files", in.DocName, "renditions"), nil)
}

func (s *Service) DownloadRendition(ctx context.Context, in RenditionDownloadInput, w io.Writer) (int64, error) {
	return s.download(ctx, wcc.Path("files", in.DocName, "renditions", in.Rendition, "data"), nil, w)
}

func (s *Service) ListAttachments(ctx context.Context, in DocumentRef) (json.RawMessage, error) {
	return s.get(ctx, wcc.Path("files", in.DocName, "attachments"), nil)
}

func (s *Service) DownloadAttachment(ctx context.Context, in AttachmentDownloadInput, w io.Writer) (int64, error) {
	return s.download(ctx, wcc.Path("files", in.DocName, "attachments", in.AttachmentName, "data"), nil, w)
}

// ─── placement and lifecycle ────────────────────────────────────────────────

func (s *Service) CopyDocument(ctx context.Context, in RelocateInput) (json.RawMessage, error) {
	return s.post(ctx, wcc.Path("files", in.DocName, ".copy"),
		body("targetFolderGUID", in.TargetFolderGUID, "dDocTitle", in.NewTitle))
}

func (s *Service) MoveDocument(ctx context.Context, in RelocateInput) (json.RawMessage, error) {
	return s.post(ctx, wcc.Path("files", in.DocName, ".move"), body("targetFolderGUID", in.TargetFolderGUID))
}

func (s *Service) ResubmitConversion(ctx context.Context, in DocumentRef) (json.RawMessage, error) {
	return s.post(ctx, wcc.Path("files", in.DocName, ".resubmitConversion"), nil)
}

func (s *Service) GetDocumentPermissions(ctx context.Context, in DocumentRef) (json.RawMessage, error) {
	return s.get(ctx, wcc.Path("files", in.DocName, "permissions"), nil)
}

func (s *Service) GetDocumentHistory(ctx context.Context, in HistoryInput) (json.RawMessage, error) {
	return s.get(ctx, wcc.Path("files", in.DocName, "history"), url.Values{"limit": {strconv.Itoa(in.Limit)}})
}

func (s *Service) ListDocumentFolders(ctx context.Context, in DocumentRef) (json.RawMessage, error) {
	return s.get(ctx, wcc.Path("files", in.DocName, "folders"), nil)
}

// ─── subscriptions ──────────────────────────────────────────────────────────

func (s *Service) ListSubscriptions(ctx context.Context, _ NoInput) (json.RawMessage, error) {
	return s.get(ctx, wcc.Path("subscriptions"), nil)
}

func (s *Service) SubscribeDocument(ctx context.Context, in SubscribeInput) (json.RawMessage, error) {
	return s.post(ctx, wcc.Path("files", in.DocName, "subscriptions"), body("subscriptionType", in.SubscriptionType))
}

func (s *Service) UnsubscribeDocument(ctx context.Context, in DocumentRef) (json.RawMessage, error) {
	return s.delete(ctx, wcc.Path("files", in.DocName, "subscriptions"))
}

// mergeMetadata overlays the named fields on top of free-form metadata; named fields win.
func mergeMetadata(extra map[string]any, named map[string]any) map[string]any {
	out := make(map[string]any, len(extra)+len(named))
	for k, v := range extra {
		out[k] = v
	}
	for k, v := range named {
		out[k] = v
	}
	return out
}
