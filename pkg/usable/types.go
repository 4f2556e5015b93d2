// Package usable is a typed client for the Usable fragment store API.
package usable

import "time"

// Fragment statuses reported by Usable.
const (
	StatusActive   = "active"
	StatusStale    = "stale"
	StatusArchived = "archived"
)

// Fragment is Usable's generic content record.
type Fragment struct {
	ID             string    `json:"id" validate:"required"`
	FragmentTypeID string    `json:"fragmentTypeId"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	Summary        string    `json:"summary,omitempty"`
	Tags           []string  `json:"tags"`
	WorkspaceID    string    `json:"workspaceId"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
	Status         string    `json:"status,omitempty" validate:"omitempty,oneof=active stale archived"`
}

// FragmentType is a workspace-level category of fragments.
type FragmentType struct {
	ID          string `json:"id" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty"`
}

// Workspace is a Usable tenant.
type Workspace struct {
	ID          string `json:"id" validate:"required"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ListParams filters a fragment listing. Tags are combined with AND.
type ListParams struct {
	WorkspaceID    string
	FragmentTypeID string
	Tags           []string
	Limit          int
	Offset         int
}

// CreateFragmentInput is the payload of a fragment creation.
type CreateFragmentInput struct {
	WorkspaceID    string   `json:"workspaceId"`
	FragmentTypeID string   `json:"fragmentTypeId"`
	Title          string   `json:"title"`
	Content        string   `json:"content"`
	Summary        string   `json:"summary,omitempty"`
	Tags           []string `json:"tags"`
	CreatedVia     string   `json:"createdVia,omitempty"`
}

// FragmentPatch is a partial update; nil fields keep their stored value.
type FragmentPatch struct {
	Title   *string  `json:"title,omitempty"`
	Content *string  `json:"content,omitempty"`
	Summary *string  `json:"summary,omitempty"`
	Tags    []string `json:"tags,omitempty"`
}

// UploadRequest asks Usable for a presigned upload URL.
type UploadRequest struct {
	WorkspaceID string   `json:"workspaceId"`
	FileName    string   `json:"fileName"`
	MimeType    string   `json:"mimeType"`
	SizeBytes   int64    `json:"sizeBytes"`
	Tags        []string `json:"tags"`
}

// UploadTicket is the response to an UploadRequest.
type UploadTicket struct {
	FileID    string `json:"fileId" validate:"required"`
	UploadURL string `json:"uploadUrl" validate:"required,url"`
	ExpiresAt string `json:"expiresAt,omitempty"`
}

// FileMetadata describes a stored file and where to download it.
type FileMetadata struct {
	FileID      string `json:"fileId"`
	FileName    string `json:"fileName"`
	MimeType    string `json:"mimeType"`
	FileSize    int64  `json:"fileSize"`
	DownloadURL string `json:"downloadUrl,omitempty"`
}
