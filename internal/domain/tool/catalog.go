package tool

import (
	"github.com/matiasleandrokruk/wccmcp/internal/domain/content"
)

func required(name string, t ParamType, desc string) ParamSpec {
	return ParamSpec{Name: name, Type: t, Description: desc, Required: true}
}

func optional(name string, t ParamType, desc string) ParamSpec {
	return ParamSpec{Name: name, Type: t, Description: desc}
}

func defaulted(name string, t ParamType, desc string, def any) ParamSpec {
	return ParamSpec{Name: name, Type: t, Description: desc, Default: def}
}

// numeric marks a string identifier that callers may also send as a JSON number.
func numeric(p ParamSpec) ParamSpec {
	p.Numeric = true
	return p
}

func integer(p ParamSpec) ParamSpec {
	p.Integer = true
	return p
}

// Shared parameter specs.
var (
	pDocName    = required("dDocName", TypeString, "Content ID of the document")
	pDID        = numeric(required("dID", TypeString, "Revision ID"))
	pFolderGUID = required("folderGUID", TypeString, "GUID of the folder")
	pTarget     = required("targetFolderGUID", TypeString, "GUID of the destination folder")
	pOutputPath = required("outputPath", TypeString, "Local file path to write the content to")
	pWorkflow   = required("workflowName", TypeString, "Name of the workflow")
	pComments   = optional("comments", TypeString, "Comments to record with the action")
	pMetadata   = optional("metadata", TypeObject, "Additional metadata fields as key/value pairs")
)

func limit(def int) ParamSpec {
	return integer(defaulted("limit", TypeNumber, "Maximum number of results", def))
}

var pOffset = integer(defaulted("offset", TypeNumber, "Number of results to skip", 0))

// Catalog binds every tool name to its content.Service operation, in listing order.
func Catalog(svc *content.Service) []Definition {
	defs := make([]Definition, 0, 56)
	defs = append(defs, documentTools(svc)...)
	defs = append(defs, folderTools(svc)...)
	defs = append(defs, workflowTools(svc)...)
	defs = append(defs, adminTools(svc)...)
	return defs
}

// NewCatalogRegistry registers the full catalog. An error means the catalog itself is malformed.
func NewCatalogRegistry(svc *content.Service) (*Registry, error) {
	r := NewRegistry()
	if err := r.RegisterAll(Catalog(svc)); err != nil {
		return nil, err
	}
	return r, nil
}

func documentTools(svc *content.Service) []Definition {
	return []Definition{
		{
			Name:        "search-documents",
			Description: "Search for documents using a WebCenter Content query",
			Params: []ParamSpec{
				required("query", TypeString, "Search query (Universal Query Syntax, * for all)"),
				limit(10), pOffset,
				optional("orderBy", TypeString, "Sort field and direction, e.g. dInDate desc"),
				optional("fields", TypeString, "Comma separated list of fields to return"),
			},
			Handler: jsonTool(svc.SearchDocuments),
		},
		{
			Name:        "search-by-metadata",
			Description: "Search for documents whose metadata field matches a value",
			Params: []ParamSpec{
				required("field", TypeString, "Metadata field name, e.g. dDocTitle"),
				required("value", TypeString, "Value to match"),
				limit(10), pOffset,
			},
			Handler: jsonTool(svc.SearchByMetadata),
		},
		{
			Name:        "get-document-metadata",
			Description: "Get metadata of a document",
			Params:      []ParamSpec{pDocName},
			Handler:     jsonTool(svc.GetDocumentMetadata),
		},
		{
			Name:        "download-document",
			Description: "Download the native file of a document to a local path",
			Params: []ParamSpec{
				pDocName, pOutputPath,
				numeric(optional("revision", TypeString, "Revision selector, latest released when omitted")),
			},
			Handler: downloadTool("Document", svc.DownloadDocument),
		},
		{
			Name:        "upload-document",
			Description: "Check in a new document from a local file",
			Params: []ParamSpec{
				required("filePath", TypeString, "Local path of the file to upload"),
				required("dDocTitle", TypeString, "Document title"),
				defaulted("dSecurityGroup", TypeString, "Security group", "Public"),
				defaulted("dDocType", TypeString, "Document type", "Document"),
				optional("dDocAccount", TypeString, "Account"),
				optional("dDocName", TypeString, "Content ID, assigned by the server when omitted"),
				optional("parentFolderGUID", TypeString, "GUID of the folder to file the document in"),
				pMetadata,
			},
			Handler: jsonTool(svc.UploadDocument),
		},
		{
			Name:        "update-document-metadata",
			Description: "Update metadata fields of a document",
			Params: []ParamSpec{
				pDocName,
				required("metadata", TypeObject, "Metadata fields to update as key/value pairs"),
			},
			Handler: jsonTool(svc.UpdateDocumentMetadata),
		},
		{
			Name:        "delete-document",
			Description: "Delete a document and all its revisions",
			Params:      []ParamSpec{pDocName},
			Handler:     jsonTool(svc.DeleteDocument),
		},
		{
			Name:        "checkout-document",
			Description: "Check out a document",
			Params:      []ParamSpec{pDocName},
			Handler:     jsonTool(svc.CheckoutDocument),
		},
		{
			Name:        "undo-checkout",
			Description: "Undo the checkout of a document",
			Params:      []ParamSpec{pDocName},
			Handler:     jsonTool(svc.UndoCheckout),
		},
		{
			Name:        "checkin-document",
			Description: "Check in a new revision of a checked out document",
			Params: []ParamSpec{
				pDocName,
				required("filePath", TypeString, "Local path of the new revision file"),
				pComments, pMetadata,
			},
			Handler: jsonTool(svc.CheckinDocument),
		},
		{
			Name:        "list-document-revisions",
			Description: "List the revisions of a document",
			Params:      []ParamSpec{pDocName},
			Handler:     jsonTool(svc.ListDocumentRevisions),
		},
		{
			Name:        "get-revision-metadata",
			Description: "Get metadata of a specific revision",
			Params:      []ParamSpec{pDocName, pDID},
			Handler:     jsonTool(svc.GetRevisionMetadata),
		},
		{
			Name:        "download-revision",
			Description: "Download a specific revision to a local path",
			Params:      []ParamSpec{pDocName, pDID, pOutputPath},
			Handler:     downloadTool("Revision", svc.DownloadRevision),
		},
		{
			Name:        "delete-revision",
			Description: "Delete a specific revision",
			Params:      []ParamSpec{pDocName, pDID},
			Handler:     jsonTool(svc.DeleteRevision),
		},
		{
			Name:        "list-renditions",
			Description: "List the renditions of a document",
			Params:      []ParamSpec{pDocName},
			Handler:     jsonTool(svc.ListRenditions),
		},
		{
			Name:        "download-rendition",
			Description: "Download a rendition (web, thumbnail, ...) to a local path",
			Params: []ParamSpec{
				pDocName,
				required("rendition", TypeString, "Rendition name, e.g. web or thumbnail"),
				pOutputPath,
			},
			Handler: downloadTool("Rendition", svc.DownloadRendition),
		},
		{
			Name:        "list-attachments",
			Description: "List the attachments of a document",
			Params:      []ParamSpec{pDocName},
			Handler:     jsonTool(svc.ListAttachments),
		},
		{
			Name:        "download-attachment",
			Description: "Download an attachment to a local path",
			Params: []ParamSpec{
				pDocName,
				required("attachmentName", TypeString, "Name of the attachment"),
				pOutputPath,
			},
			Handler: downloadTool("Attachment", svc.DownloadAttachment),
		},
		{
			Name:        "copy-document",
			Description: "Copy a document into a folder",
			Params: []ParamSpec{
				pDocName, pTarget,
				optional("newTitle", TypeString, "Title of the copy"),
			},
			Handler: jsonTool(svc.CopyDocument),
		},
		{
			Name:        "move-document",
			Description: "Move a document into a folder",
			Params:      []ParamSpec{pDocName, pTarget},
			Handler:     jsonTool(svc.MoveDocument),
		},
		{
			Name:        "resubmit-conversion",
			Description: "Resubmit a document for conversion",
			Params:      []ParamSpec{pDocName},
			Handler:     jsonTool(svc.ResubmitConversion),
		},
		{
			Name:        "get-document-permissions",
			Description: "Get the permissions of the current user on a document",
			Params:      []ParamSpec{pDocName},
			Handler:     jsonTool(svc.GetDocumentPermissions),
		},
		{
			Name:        "get-document-history",
			Description: "Get the audit history of a document",
			Params:      []ParamSpec{pDocName, limit(25)},
			Handler:     jsonTool(svc.GetDocumentHistory),
		},
		{
			Name:        "list-document-folders",
			Description: "List the folders a document is filed in",
			Params:      []ParamSpec{pDocName},
			Handler:     jsonTool(svc.ListDocumentFolders),
		},
	}
}

func folderTools(svc *content.Service) []Definition {
	return []Definition{
		{
			Name:        "list-root-folders",
			Description: "List the top level folders",
			Handler:     jsonTool(svc.ListRootFolders),
		},
		{
			Name:        "get-folder",
			Description: "Get metadata of a folder",
			Params:      []ParamSpec{pFolderGUID},
			Handler:     jsonTool(svc.GetFolder),
		},
		{
			Name:        "get-folder-by-path",
			Description: "Resolve a folder by its path",
			Params:      []ParamSpec{required("path", TypeString, "Folder path, e.g. /Contribution Folders/Projects")},
			Handler:     jsonTool(svc.GetFolderByPath),
		},
		{
			Name:        "list-folder-items",
			Description: "List the documents and subfolders of a folder",
			Params:      []ParamSpec{pFolderGUID, limit(25), pOffset},
			Handler:     jsonTool(svc.ListFolderItems),
		},
		{
			Name:        "create-folder",
			Description: "Create a folder",
			Params: []ParamSpec{
				required("folderName", TypeString, "Name of the new folder"),
				required("parentFolderGUID", TypeString, "GUID of the parent folder"),
				optional("securityGroup", TypeString, "Security group of the folder"),
			},
			Handler: jsonTool(svc.CreateFolder),
		},
		{
			Name:        "update-folder",
			Description: "Update metadata of a folder",
			Params: []ParamSpec{
				pFolderGUID,
				required("metadata", TypeObject, "Folder fields to update as key/value pairs"),
			},
			Handler: jsonTool(svc.UpdateFolder),
		},
		{
			Name:        "delete-folder",
			Description: "Delete a folder",
			Params:      []ParamSpec{pFolderGUID},
			Handler:     jsonTool(svc.DeleteFolder),
		},
		{
			Name:        "move-folder",
			Description: "Move a folder under another folder",
			Params:      []ParamSpec{pFolderGUID, pTarget},
			Handler:     jsonTool(svc.MoveFolder),
		},
		{
			Name:        "copy-folder",
			Description: "Copy a folder under another folder",
			Params:      []ParamSpec{pFolderGUID, pTarget},
			Handler:     jsonTool(svc.CopyFolder),
		},
		{
			Name:        "search-folders",
			Description: "Search for folders",
			Params: []ParamSpec{
				required("query", TypeString, "Folder search query"),
				limit(10), pOffset,
			},
			Handler: jsonTool(svc.SearchFolders),
		},
		{
			Name:        "link-document-to-folder",
			Description: "File a shortcut to a document in a folder",
			Params:      []ParamSpec{pFolderGUID, pDocName},
			Handler:     jsonTool(svc.LinkDocumentToFolder),
		},
	}
}

func workflowTools(svc *content.Service) []Definition {
	return []Definition{
		{
			Name:        "list-workflows",
			Description: "List the defined workflows",
			Handler:     jsonTool(svc.ListWorkflows),
		},
		{
			Name:        "get-workflow",
			Description: "Get the definition of a workflow",
			Params:      []ParamSpec{pWorkflow},
			Handler:     jsonTool(svc.GetWorkflow),
		},
		{
			Name:        "get-workflow-inbox",
			Description: "List the workflow items assigned to the current user",
			Params:      []ParamSpec{limit(10), pOffset},
			Handler:     jsonTool(svc.GetWorkflowInbox),
		},
		{
			Name:        "get-workflow-item",
			Description: "Get a workflow item",
			Params:      []ParamSpec{pDID},
			Handler:     jsonTool(svc.GetWorkflowItem),
		},
		{
			Name:        "approve-workflow-item",
			Description: "Approve a workflow item",
			Params:      []ParamSpec{pDID, pComments},
			Handler:     jsonTool(svc.ApproveWorkflowItem),
		},
		{
			Name:        "reject-workflow-item",
			Description: "Reject a workflow item",
			Params:      []ParamSpec{pDID, required("reason", TypeString, "Reason for the rejection")},
			Handler:     jsonTool(svc.RejectWorkflowItem),
		},
		{
			Name:        "reassign-workflow-item",
			Description: "Reassign a workflow item to another user",
			Params:      []ParamSpec{pDID, required("assignee", TypeString, "User to assign the item to"), pComments},
			Handler:     jsonTool(svc.ReassignWorkflowItem),
		},
		{
			Name:        "get-workflow-item-history",
			Description: "Get the history of a workflow item",
			Params:      []ParamSpec{pDID},
			Handler:     jsonTool(svc.GetWorkflowItemHistory),
		},
		{
			Name:        "start-workflow",
			Description: "Start a workflow for a document",
			Params:      []ParamSpec{pWorkflow, pDocName},
			Handler:     jsonTool(svc.StartWorkflow),
		},
		{
			Name:        "cancel-workflow",
			Description: "Cancel a running workflow",
			Params:      []ParamSpec{pWorkflow, optional("dDocName", TypeString, "Limit the cancellation to this document")},
			Handler:     jsonTool(svc.CancelWorkflow),
		},
	}
}

func adminTools(svc *content.Service) []Definition {
	return []Definition{
		{
			Name:        "list-security-groups",
			Description: "List the security groups",
			Handler:     jsonTool(svc.ListSecurityGroups),
		},
		{
			Name:        "list-document-types",
			Description: "List the document types",
			Handler:     jsonTool(svc.ListDocumentTypes),
		},
		{
			Name:        "list-metadata-fields",
			Description: "List the metadata field definitions",
			Handler:     jsonTool(svc.ListMetadataFields),
		},
		{
			Name:        "get-metadata-field",
			Description: "Get a metadata field definition",
			Params:      []ParamSpec{required("fieldName", TypeString, "Name of the metadata field")},
			Handler:     jsonTool(svc.GetMetadataField),
		},
		{
			Name:        "list-accounts",
			Description: "List the accounts",
			Handler:     jsonTool(svc.ListAccounts),
		},
		{
			Name:        "list-users",
			Description: "List users",
			Params: []ParamSpec{
				optional("filter", TypeString, "Filter on user name"),
				limit(10), pOffset,
			},
			Handler: jsonTool(svc.ListUsers),
		},
		{
			Name:        "get-user",
			Description: "Get a user",
			Params:      []ParamSpec{required("userName", TypeString, "Login name of the user")},
			Handler:     jsonTool(svc.GetUser),
		},
		{
			Name:        "get-current-user",
			Description: "Get the user the server is connected as",
			Handler:     jsonTool(svc.GetCurrentUser),
		},
		{
			Name:        "list-subscriptions",
			Description: "List the subscriptions of the current user",
			Handler:     jsonTool(svc.ListSubscriptions),
		},
		{
			Name:        "subscribe-document",
			Description: "Subscribe to changes of a document",
			Params:      []ParamSpec{pDocName, defaulted("subscriptionType", TypeString, "Subscription type", "Basic")},
			Handler:     jsonTool(svc.SubscribeDocument),
		},
		{
			Name:        "unsubscribe-document",
			Description: "Remove the subscription to a document",
			Params:      []ParamSpec{pDocName},
			Handler:     jsonTool(svc.UnsubscribeDocument),
		},
	}
}
