package cards

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/houzhh15/taskable/pkg/usable"
)

// Serialize encodes items as the JSON array stored in a fragment's content.
// Output is indented with two spaces and does not HTML-escape text.
func Serialize(items []Item) (string, error) {
	if items == nil {
		items = []Item{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(items); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// Parse decodes fragment content into items. It never fails: content that is
// not a JSON array yields an empty list, and elements without a string id, a
// string text and a boolean checked are dropped.
func Parse(content string) []Item {
	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return []Item{}
	}

	items := make([]Item, 0, len(raw))
	for _, elem := range raw {
		if item, ok := parseItem(elem); ok {
			items = append(items, item)
		}
	}
	return items
}

// FragmentToCard decodes a fragment's content into a card.
func FragmentToCard(f usable.Fragment) Card {
	return Card{Fragment: f, Items: Parse(f.Content)}
}

// FragmentsToCards converts a list of fragments.
func FragmentsToCards(fragments []usable.Fragment) []Card {
	out := make([]Card, 0, len(fragments))
	for _, f := range fragments {
		out = append(out, FragmentToCard(f))
	}
	return out
}

func parseItem(elem json.RawMessage) (Item, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(elem, &fields); err != nil || fields == nil {
		return Item{}, false
	}

	var item Item
	var ok bool
	if item.ID, ok = decodeString(fields["id"]); !ok {
		return Item{}, false
	}
	if item.Text, ok = decodeString(fields["text"]); !ok {
		return Item{}, false
	}
	if item.Checked, ok = decodeBool(fields["checked"]); !ok {
		return Item{}, false
	}

	if desc, ok := decodeString(fields["description"]); ok {
		item.Description = &desc
	}
	item.Links = decodeList[Link](fields["links"])
	item.Attachments = decodeList[Attachment](fields["attachments"])
	item.SubTasks = decodeList[SubTask](fields["subTasks"])
	return item, true
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func decodeString(raw json.RawMessage) (string, bool) {
	if isNull(raw) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func decodeBool(raw json.RawMessage) (bool, bool) {
	if isNull(raw) {
		return false, false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return false, false
	}
	return b, true
}

// decodeList reads an optional collection, falling back to an empty list when
// the field is missing or has the wrong shape.
func decodeList[T any](raw json.RawMessage) []T {
	if isNull(raw) {
		return []T{}
	}
	var out []T
	if err := json.Unmarshal(raw, &out); err != nil || out == nil {
		return []T{}
	}
	return out
}
