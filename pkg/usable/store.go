package usable

import (
	"context"
	"io"
)

// DefaultListLimit is used when ListParams.Limit is zero.
const DefaultListLimit = 100

// Store is the fragment capability the card codec and template provisioning
// depend on. Implementations do not retry; every failure is returned.
type Store interface {
	ListFragments(ctx context.Context, params ListParams) ([]Fragment, error)
	CreateFragment(ctx context.Context, in CreateFragmentInput) (*Fragment, error)
	UpdateFragment(ctx context.Context, id string, patch FragmentPatch) (*Fragment, error)
	DeleteFragment(ctx context.Context, id string) error
	ListFragmentTypes(ctx context.Context, workspaceID string) ([]FragmentType, error)
}

// FileStore covers the attachment upload flow.
type FileStore interface {
	RequestUpload(ctx context.Context, req UploadRequest) (*UploadTicket, error)
	Upload(ctx context.Context, uploadURL, mimeType string, body io.Reader, size int64) error
	AttachToFragment(ctx context.Context, fileID, fragmentID, description string) error
	DownloadInfo(ctx context.Context, fileID string) (*FileMetadata, error)
}

// API is everything the gateway forwards: fragments, files and workspaces.
type API interface {
	Store
	FileStore
	ListWorkspaces(ctx context.Context) ([]Workspace, error)
}

var (
	_ Store     = (*Client)(nil)
	_ FileStore = (*Client)(nil)
	_ API       = (*Client)(nil)
)
