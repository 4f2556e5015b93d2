package usable

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/houzhh15/taskable/pkg/metrics"
)

const filesPath = "/api/files"

type attachRequest struct {
	FragmentID   string `json:"fragmentId"`
	Description  string `json:"description,omitempty"`
	DisplayOrder int    `json:"displayOrder"`
}

// RequestUpload asks Usable for a presigned upload URL.
func (c *Client) RequestUpload(ctx context.Context, req UploadRequest) (*UploadTicket, error) {
	if req.WorkspaceID == "" || req.FileName == "" || req.MimeType == "" || req.SizeBytes <= 0 {
		return nil, fmt.Errorf("request upload: workspaceId, fileName, mimeType and sizeBytes are required")
	}
	if req.Tags == nil {
		req.Tags = []string{}
	}
	var ticket UploadTicket
	if err := c.do(ctx, "request_upload", http.MethodPost, filesPath+"/upload/request", nil, req, &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// Upload PUTs the file bytes to a presigned URL. The bearer token is never
// sent to the storage host.
func (c *Client) Upload(ctx context.Context, uploadURL, mimeType string, body io.Reader, size int64) error {
	start := time.Now()
	status := "network_error"
	defer func() {
		metrics.RecordStoreRequest("upload_file", status)
		metrics.RecordStoreDuration("upload_file", time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, body)
	if err != nil {
		return fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Content-Type", mimeType)
	req.ContentLength = size

	resp, err := c.uploadClient.Do(req)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	status = fmt.Sprint(resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("upload failed with status %d", resp.StatusCode)}
	}
	return nil
}

// AttachToFragment links an uploaded file to a fragment.
func (c *Client) AttachToFragment(ctx context.Context, fileID, fragmentID, description string) error {
	if fragmentID == "" {
		return fmt.Errorf("attach file: fragment id is required")
	}
	body := attachRequest{FragmentID: fragmentID, Description: description}
	return c.do(ctx, "attach_file", http.MethodPost, filesPath+"/"+url.PathEscape(fileID)+"/attachments", nil, body, nil)
}

// DownloadInfo returns file metadata including a download URL.
func (c *Client) DownloadInfo(ctx context.Context, fileID string) (*FileMetadata, error) {
	var meta FileMetadata
	if err := c.do(ctx, "download_file", http.MethodGet, filesPath+"/"+url.PathEscape(fileID)+"/download", nil, nil, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}
