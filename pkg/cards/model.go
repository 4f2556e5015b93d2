// Package cards maps Taskable todo cards onto Usable fragments: the item
// codec, the tag scheme and the card service built on top of them.
package cards

import (
	"bytes"
	"encoding/json"

	"github.com/houzhh15/taskable/pkg/usable"
)

// Limits on the optional v2 item fields.
const (
	MaxDescriptionLength = 5000
	MaxLinks             = 20
	MaxAttachments       = 5
	MaxSubTasks          = 50
)

// Link is an external URL attached to an item.
type Link struct {
	ID    string `json:"id"`
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
}

// Attachment references a file stored in Usable. It only exists once the
// upload, attach and download-metadata calls have all succeeded.
type Attachment struct {
	ID           string `json:"id"`
	FileID       string `json:"fileId"`
	FileName     string `json:"fileName"`
	MimeType     string `json:"mimeType"`
	FileSize     int64  `json:"fileSize"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
}

// SubTask is a nested checkable entry of an item.
type SubTask struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Checked bool   `json:"checked"`
}

// Item is one checkable entry of a card.
//
// Schema v1 items only carry ID, Text and Checked. A nil slice means the
// field is absent and is left out of the encoded content; an empty slice is
// encoded as [].
type Item struct {
	ID          string       `json:"id"`
	Text        string       `json:"text"`
	Checked     bool         `json:"checked"`
	Description *string      `json:"description,omitempty"`
	Links       []Link       `json:"links,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
	SubTasks    []SubTask    `json:"subTasks,omitempty"`
}

// MarshalJSON keeps empty-but-present collections in the output.
func (it Item) MarshalJSON() ([]byte, error) {
	type wireItem struct {
		ID          string        `json:"id"`
		Text        string        `json:"text"`
		Checked     bool          `json:"checked"`
		Description *string       `json:"description,omitempty"`
		Links       *[]Link       `json:"links,omitempty"`
		Attachments *[]Attachment `json:"attachments,omitempty"`
		SubTasks    *[]SubTask    `json:"subTasks,omitempty"`
	}
	w := wireItem{
		ID:          it.ID,
		Text:        it.Text,
		Checked:     it.Checked,
		Description: it.Description,
	}
	if it.Links != nil {
		w.Links = &it.Links
	}
	if it.Attachments != nil {
		w.Attachments = &it.Attachments
	}
	if it.SubTasks != nil {
		w.SubTasks = &it.SubTasks
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(w); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Card is a fragment whose content decodes to a list of items.
type Card struct {
	usable.Fragment
	Items []Item `json:"items"`
}

// Collection returns the collection encoded in the card's tags.
func (c Card) Collection() string {
	return CollectionOf(c.Tags)
}

// Meta returns the typed view of the card's tags.
func (c Card) Meta() Meta {
	return MetaFromTags(c.Tags)
}

// CreateCardInput describes a new card.
type CreateCardInput struct {
	Title      string `json:"title"`
	Summary    string `json:"summary,omitempty"`
	Items      []Item `json:"items"`
	Collection string `json:"collection"`
}

// UpdateCardInput describes a partial card update. Nil fields are left
// untouched by the store.
type UpdateCardInput struct {
	ID         string  `json:"id"`
	Title      *string `json:"title,omitempty"`
	Summary    *string `json:"summary,omitempty"`
	Items      []Item  `json:"items,omitempty"`
	Collection *string `json:"collection,omitempty"`
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}
