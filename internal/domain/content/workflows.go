package content

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/matiasleandrokruk/wccmcp/internal/infra/wcc"
)

type WorkflowRef struct {
	WorkflowName string `json:"workflowName"`
}

type WorkflowItemRef struct {
	DID string `json:"dID"`
}

type ApproveInput struct {
	DID      string `json:"dID"`
	Comments string `json:"comments,omitempty"`
}

type RejectInput struct {
	DID    string `json:"dID"`
	Reason string `json:"reason"`
}

type ReassignInput struct {
	DID      string `json:"dID"`
	Assignee string `json:"assignee"`
	Comments string `json:"comments,omitempty"`
}

type WorkflowDocumentInput struct {
	WorkflowName string `json:"workflowName"`
	DocName      string `json:"dDocName,omitempty"`
}

func (s *Service) ListWorkflows(ctx context.Context, _ NoInput) (json.RawMessage, error) {
	return s.get(ctx, wcc.Path("workflows"), nil)
}

func (s *Service) GetWorkflow(ctx context.Context, in WorkflowRef) (json.RawMessage, error) {
	return s.get(ctx, wcc.Path("workflows", in.WorkflowName), nil)
}

func (s *Service) GetWorkflowInbox(ctx context.Context, in Page) (json.RawMessage, error) {
	q := url.Values{}
	in.apply(q)
	return s.get(ctx, wcc.Path("workflows", ".inbox"), q)
}

func (s *Service) GetWorkflowItem(ctx context.Context, in WorkflowItemRef) (json.RawMessage, error) {
	return s.get(ctx, wcc.Path("workflows", "items", in.DID), nil)
}

func (s *Service) ApproveWorkflowItem(ctx context.Context, in ApproveInput) (json.RawMessage, error) {
	return s.post(ctx, wcc.Path("workflows", "items", in.DID, ".approve"), body("comments", in.Comments))
}

func (s *Service) RejectWorkflowItem(ctx context.Context, in RejectInput) (json.RawMessage, error) {
	return s.post(ctx, wcc.Path("workflows", "items", in.DID, ".reject"), body("reason", in.Reason))
}

func (s *Service) ReassignWorkflowItem(ctx context.Context, in ReassignInput) (json.RawMessage, error) {
	return s.post(ctx, wcc.Path("workflows", "items", in.DID, ".reassign"),
		body("assignee", in.Assignee, "comments", in.Comments))
}

func (s *Service) GetWorkflowItemHistory(ctx context.Context, in WorkflowItemRef) (json.RawMessage, error) {
	return s.get(ctx, wcc.Path("workflows", "items", in.DID, "history"), nil)
}

func (s *Service) StartWorkflow(ctx context.Context, in WorkflowDocumentInput) (json.RawMessage, error) {
	return s.post(ctx, wcc.Path("workflows", in.WorkflowName, ".start"), body("dDocName", in.DocName))
}

func (s *Service) CancelWorkflow(ctx context.Context, in WorkflowDocumentInput) (json.RawMessage, error) {
	return s.post(ctx, wcc.Path("workflows", in.WorkflowName, ".cancel"), body("dDocName", in.DocName))
}
