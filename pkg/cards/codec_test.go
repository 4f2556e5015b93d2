package cards

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/houzhh15/taskable/pkg/usable"
)

func TestSerializeParse_Roundtrip(t *testing.T) {
	desc := "call before <noon> & bring docs"
	items := []Item{
		{
			ID:          "a",
			Text:        "Renew passport",
			Checked:     false,
			Description: &desc,
			Links:       []Link{{ID: "l1", URL: "https://example.com/passport", Title: "Form"}},
			Attachments: []Attachment{{ID: "att", FileID: "f1", FileName: "photo.jpg", MimeType: "image/jpeg", FileSize: 2048}},
			SubTasks: []SubTask{
				{ID: "s1", Text: "Photo", Checked: true},
				{ID: "s2", Text: "Pay fee", Checked: false},
			},
		},
		{
			ID:          "b",
			Text:        "Buy milk",
			Checked:     true,
			Links:       []Link{},
			Attachments: []Attachment{},
			SubTasks:    []SubTask{},
		},
	}

	content, err := Serialize(items)
	require.NoError(t, err)

	if diff := cmp.Diff(items, Parse(content)); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestSerialize_Format(t *testing.T) {
	content, err := Serialize([]Item{{ID: "a", Text: "<b>", Checked: true, SubTasks: []SubTask{}}})
	require.NoError(t, err)

	want := "[\n  {\n    \"id\": \"a\",\n    \"text\": \"<b>\",\n    \"checked\": true,\n    \"subTasks\": []\n  }\n]"
	assert.Equal(t, want, content)
}

func TestSerialize_NilIsEmptyArray(t *testing.T) {
	content, err := Serialize(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", content)
}

func TestParse_V1Items(t *testing.T) {
	items := Parse(`[{"id":"1","text":"old item","checked":true}]`)

	want := []Item{{
		ID:          "1",
		Text:        "old item",
		Checked:     true,
		Links:       []Link{},
		Attachments: []Attachment{},
		SubTasks:    []SubTask{},
	}}
	if diff := cmp.Diff(want, items); diff != "" {
		t.Errorf("v1 parse mismatch (-want +got):\n%s", diff)
	}
	assert.Nil(t, items[0].Description)
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", "not json"},
		{"object", "{}"},
		{"empty string", ""},
		{"null", "null"},
		{"number", "42"},
		{"array of strings", `["a","b"]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := Parse(tt.content)
			assert.NotNil(t, items)
			assert.Empty(t, items)
		})
	}
}

func TestParse_DropsInvalidElements(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantIDs []string
	}{
		{"missing checked", `[{"id":"x","text":"y"}]`, nil},
		{"null checked", `[{"id":"x","text":"y","checked":null}]`, nil},
		{"string checked", `[{"id":"x","text":"y","checked":"true"}]`, nil},
		{"numeric id", `[{"id":1,"text":"y","checked":false}]`, nil},
		{"missing text", `[{"id":"x","checked":false}]`, nil},
		{"keeps valid neighbours", `[{"id":"a","text":"ok","checked":false},{"id":"b"},{"id":"c","text":"ok","checked":true}]`, []string{"a", "c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := Parse(tt.content)
			var ids []string
			for _, it := range items {
				ids = append(ids, it.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestParse_BadOptionalFieldsFallBack(t *testing.T) {
	items := Parse(`[{"id":"a","text":"t","checked":false,"description":7,"links":"nope","attachments":null,"subTasks":{}}]`)
	require.Len(t, items, 1)

	assert.Nil(t, items[0].Description)
	assert.Equal(t, []Link{}, items[0].Links)
	assert.Equal(t, []Attachment{}, items[0].Attachments)
	assert.Equal(t, []SubTask{}, items[0].SubTasks)
}

func TestFragmentToCard(t *testing.T) {
	f := usable.Fragment{
		ID:      "card-1",
		Title:   "Groceries",
		Content: `[{"id":"1","text":"eggs","checked":false}]`,
		Tags:    []string{"app:taskable", "collection:home", "version:2.0.0"},
	}

	card := FragmentToCard(f)
	assert.Equal(t, "card-1", card.ID)
	assert.Equal(t, "home", card.Collection())
	require.Len(t, card.Items, 1)
	assert.Equal(t, "eggs", card.Items[0].Text)

	cards := FragmentsToCards([]usable.Fragment{f, {ID: "card-2", Content: "garbage"}})
	require.Len(t, cards, 2)
	assert.Empty(t, cards[1].Items)
	assert.Equal(t, DefaultCollection, cards[1].Collection())
}

func TestItemMarshal_OmitsAbsentFields(t *testing.T) {
	content, err := Serialize([]Item{{ID: "a", Text: "t"}})
	require.NoError(t, err)

	for _, field := range []string{"description", "links", "attachments", "subTasks"} {
		assert.False(t, strings.Contains(content, field), "unexpected %s in %s", field, content)
	}
}
