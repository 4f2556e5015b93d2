// Package usabletest provides an in-memory usable.Store for tests.
package usabletest

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/houzhh15/taskable/pkg/usable"
)

// Calls counts store operations.
type Calls struct {
	List, Create, Update, Delete, Types int
}

// Writes returns the number of mutating calls.
func (c Calls) Writes() int {
	return c.Create + c.Update + c.Delete
}

// Store is a concurrency-safe in-memory fragment store. Tag filters are
// AND-ed like the real API.
type Store struct {
	mu        sync.Mutex
	fragments []usable.Fragment
	types     []usable.FragmentType
	calls     Calls

	// Err makes every call fail when set.
	Err error
	// DeleteErr makes DeleteFragment fail when set.
	DeleteErr error
	// CreateErr makes CreateFragment fail for the given fragment type id.
	CreateErr map[string]error
	// Workspaces is returned by ListWorkspaces.
	Workspaces []usable.Workspace
}

// New returns a store with the given fragment types.
func New(types ...usable.FragmentType) *Store {
	return &Store{types: types}
}

// Seed adds fragments as they are.
func (s *Store) Seed(fragments ...usable.Fragment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fragments = append(s.fragments, fragments...)
}

// Fragments returns a snapshot of the stored fragments.
func (s *Store) Fragments() []usable.Fragment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]usable.Fragment, len(s.fragments))
	copy(out, s.fragments)
	return out
}

// Get returns a stored fragment by id.
func (s *Store) Get(id string) (usable.Fragment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.fragments {
		if f.ID == id {
			return f, true
		}
	}
	return usable.Fragment{}, false
}

// Calls returns the call counters.
func (s *Store) Calls() Calls {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// ResetCalls zeroes the call counters.
func (s *Store) ResetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = Calls{}
}

func (s *Store) ListFragments(ctx context.Context, params usable.ListParams) ([]usable.Fragment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls.List++
	if s.Err != nil {
		return nil, s.Err
	}

	var out []usable.Fragment
	for _, f := range s.fragments {
		if params.WorkspaceID != "" && f.WorkspaceID != params.WorkspaceID {
			continue
		}
		if params.FragmentTypeID != "" && f.FragmentTypeID != params.FragmentTypeID {
			continue
		}
		if !hasAll(f.Tags, params.Tags) {
			continue
		}
		out = append(out, f)
	}
	if params.Offset > 0 {
		if params.Offset >= len(out) {
			return []usable.Fragment{}, nil
		}
		out = out[params.Offset:]
	}
	// 与真实 API 一致，未指定 limit 时只返回第一页
	limit := params.Limit
	if limit <= 0 {
		limit = usable.DefaultListLimit
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) CreateFragment(ctx context.Context, in usable.CreateFragmentInput) (*usable.Fragment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls.Create++
	if s.Err != nil {
		return nil, s.Err
	}
	if err := s.CreateErr[in.FragmentTypeID]; err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	summary := in.Summary
	if summary == "" {
		summary = in.Title
	}
	f := usable.Fragment{
		ID:             uuid.NewString(),
		FragmentTypeID: in.FragmentTypeID,
		Title:          in.Title,
		Content:        in.Content,
		Summary:        summary,
		Tags:           append([]string(nil), in.Tags...),
		WorkspaceID:    in.WorkspaceID,
		CreatedAt:      now,
		UpdatedAt:      now,
		Status:         usable.StatusActive,
	}
	s.fragments = append(s.fragments, f)
	return &f, nil
}

func (s *Store) UpdateFragment(ctx context.Context, id string, patch usable.FragmentPatch) (*usable.Fragment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls.Update++
	if s.Err != nil {
		return nil, s.Err
	}

	for i := range s.fragments {
		f := &s.fragments[i]
		if f.ID != id {
			continue
		}
		if patch.Title != nil {
			f.Title = *patch.Title
		}
		if patch.Content != nil {
			f.Content = *patch.Content
		}
		if patch.Summary != nil {
			f.Summary = *patch.Summary
		}
		if patch.Tags != nil {
			f.Tags = append([]string(nil), patch.Tags...)
		}
		f.UpdatedAt = time.Now().UTC()
		out := *f
		return &out, nil
	}
	return nil, notFound(id)
}

func (s *Store) DeleteFragment(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls.Delete++
	if s.Err != nil {
		return s.Err
	}
	if s.DeleteErr != nil {
		return s.DeleteErr
	}

	for i, f := range s.fragments {
		if f.ID == id {
			s.fragments = append(s.fragments[:i], s.fragments[i+1:]...)
			return nil
		}
	}
	return notFound(id)
}

func (s *Store) ListFragmentTypes(ctx context.Context, workspaceID string) ([]usable.FragmentType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls.Types++
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]usable.FragmentType, len(s.types))
	copy(out, s.types)
	return out, nil
}

func (s *Store) ListWorkspaces(ctx context.Context) ([]usable.Workspace, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]usable.Workspace, len(s.Workspaces))
	copy(out, s.Workspaces)
	return out, nil
}

func notFound(id string) error {
	return &usable.APIError{StatusCode: 404, Message: fmt.Sprintf("fragment %s not found", id)}
}

func hasAll(tags, want []string) bool {
	for _, w := range want {
		found := false
		for _, t := range tags {
			if t == w {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Upload is one recorded file upload.
type Upload struct {
	URL      string
	MimeType string
	Size     int64
	Body     []byte
}

// FileStore records the attachment flow calls in order.
type FileStore struct {
	mu       sync.Mutex
	Steps    []string
	Uploads  []Upload
	Attached map[string]string

	// FailAt makes the named step fail.
	FailAt string
}

// NewFileStore returns an empty FileStore.
func NewFileStore() *FileStore {
	return &FileStore{Attached: make(map[string]string)}
}

func (fs *FileStore) step(name string) error {
	fs.Steps = append(fs.Steps, name)
	if fs.FailAt == name {
		return &usable.APIError{StatusCode: 500, Message: name + " failed"}
	}
	return nil
}

func (fs *FileStore) RequestUpload(ctx context.Context, req usable.UploadRequest) (*usable.UploadTicket, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if err := fs.step("request"); err != nil {
		return nil, err
	}
	id := uuid.NewString()
	return &usable.UploadTicket{FileID: id, UploadURL: "https://storage.test/upload/" + id}, nil
}

func (fs *FileStore) Upload(ctx context.Context, uploadURL, mimeType string, body io.Reader, size int64) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if err := fs.step("upload"); err != nil {
		return err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	fs.Uploads = append(fs.Uploads, Upload{URL: uploadURL, MimeType: mimeType, Size: size, Body: data})
	return nil
}

func (fs *FileStore) AttachToFragment(ctx context.Context, fileID, fragmentID, description string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if err := fs.step("attach"); err != nil {
		return err
	}
	fs.Attached[fileID] = fragmentID
	return nil
}

func (fs *FileStore) DownloadInfo(ctx context.Context, fileID string) (*usable.FileMetadata, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if err := fs.step("download"); err != nil {
		return nil, err
	}
	return &usable.FileMetadata{FileID: fileID, DownloadURL: "https://storage.test/download/" + fileID}, nil
}

var (
	_ usable.Store     = (*Store)(nil)
	_ usable.FileStore = (*FileStore)(nil)
)
