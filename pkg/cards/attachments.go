package cards

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/houzhh15/taskable/pkg/usable"
)

// MaxFileSize is the largest attachment accepted (10 MB).
const MaxFileSize = 10 * 1024 * 1024

// AttachmentTags are set on files uploaded for items.
var AttachmentTags = []string{AppTag, TypePrefix + ":item-attachment"}

var allowedMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// FileInput is a file about to be attached to an item.
type FileInput struct {
	Name     string
	MimeType string
	Size     int64
	Body     io.Reader
}

// ValidateFile checks size and type before any network call.
func ValidateFile(name, mimeType string, size int64) error {
	if size > MaxFileSize {
		return fmt.Errorf("%w: %s exceeds 10 MB (current size: %s)", ErrFileTooLarge, name, FormatFileSize(size))
	}
	if !allowedMimeTypes[mimeType] {
		return fmt.Errorf("%w: %s (allowed: JPEG, PNG, GIF, WEBP)", ErrUnsupportedFileType, mimeType)
	}
	return nil
}

// OpenFile opens a local file for upload, detecting its MIME type from its
// content. The caller closes the returned file.
func OpenFile(path string) (FileInput, *os.File, error) {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return FileInput{}, nil, fmt.Errorf("detect file type: %w", err)
	}
	f, err := os.Open(path)
	if err != nil {
		return FileInput{}, nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return FileInput{}, nil, err
	}
	return FileInput{
		Name:     filepath.Base(path),
		MimeType: mediaType(mtype),
		Size:     info.Size(),
		Body:     f,
	}, f, nil
}

// NewFileInput wraps an in-memory file, detecting its MIME type from data.
func NewFileInput(name string, data []byte) FileInput {
	return FileInput{
		Name:     filepath.Base(name),
		MimeType: mediaType(mimetype.Detect(data)),
		Size:     int64(len(data)),
		Body:     bytes.NewReader(data),
	}
}

// mediaType drops parameters: text types come back as "text/plain; charset=utf-8".
func mediaType(mtype *mimetype.MIME) string {
	mt, _, err := mime.ParseMediaType(mtype.String())
	if err != nil {
		return mtype.String()
	}
	return mt
}

// UploadAttachment runs the upload sequence: request URL, upload bytes,
// attach to the fragment and fetch download metadata. Each step consumes the
// previous one's output; no Attachment exists unless all of them succeed.
func UploadAttachment(ctx context.Context, files usable.FileStore, workspaceID, fragmentID string, in FileInput) (*Attachment, error) {
	if err := ValidateFile(in.Name, in.MimeType, in.Size); err != nil {
		return nil, err
	}

	ticket, err := files.RequestUpload(ctx, usable.UploadRequest{
		WorkspaceID: workspaceID,
		FileName:    in.Name,
		MimeType:    in.MimeType,
		SizeBytes:   in.Size,
		Tags:        AttachmentTags,
	})
	if err != nil {
		return nil, fmt.Errorf("request upload url: %w", err)
	}
	if err := files.Upload(ctx, ticket.UploadURL, in.MimeType, in.Body, in.Size); err != nil {
		return nil, fmt.Errorf("upload %s: %w", in.Name, err)
	}
	if err := files.AttachToFragment(ctx, ticket.FileID, fragmentID, ""); err != nil {
		return nil, fmt.Errorf("attach %s: %w", ticket.FileID, err)
	}
	meta, err := files.DownloadInfo(ctx, ticket.FileID)
	if err != nil {
		return nil, fmt.Errorf("download info %s: %w", ticket.FileID, err)
	}

	return &Attachment{
		ID:           uuid.NewString(),
		FileID:       ticket.FileID,
		FileName:     in.Name,
		MimeType:     in.MimeType,
		FileSize:     in.Size,
		ThumbnailURL: meta.DownloadURL,
	}, nil
}

// AttachFile uploads a file and appends it to an item of the card. The item
// limit is checked before anything is uploaded.
func (s *Service) AttachFile(ctx context.Context, files usable.FileStore, card Card, itemID string, in FileInput) (*Card, error) {
	item, ok := FindItem(card.Items, itemID)
	if !ok {
		return nil, ErrItemNotFound
	}
	if len(item.Attachments) >= MaxAttachments {
		return nil, fmt.Errorf("%w: max %d", ErrTooManyAttachments, MaxAttachments)
	}

	att, err := UploadAttachment(ctx, files, s.workspaceID, card.ID, in)
	if err != nil {
		return nil, err
	}
	s.logger.Info("attachment uploaded", "card_id", card.ID, "item_id", itemID, "file_id", att.FileID)

	return s.UpdateItem(ctx, card, itemID, func(it *Item) {
		attachments := make([]Attachment, 0, len(it.Attachments)+1)
		attachments = append(attachments, it.Attachments...)
		it.Attachments = append(attachments, *att)
	})
}
