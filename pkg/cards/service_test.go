package cards

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/houzhh15/taskable/pkg/usable"
	"github.com/houzhh15/taskable/pkg/usable/usabletest"
)

const (
	testWorkspace = "ws-1"
	testCardsType = "type-cards"
)

func newTestService(t *testing.T) (*Service, *usabletest.Store) {
	t.Helper()
	store := usabletest.New(usable.FragmentType{ID: testCardsType, Name: "Cards"})
	return NewService(store, testWorkspace, testCardsType, nil), store
}

func TestService_CreateCard(t *testing.T) {
	svc, store := newTestService(t)

	card, err := svc.CreateCard(context.Background(), CreateCardInput{
		Title:      "  Groceries ",
		Collection: "Home Stuff",
		Items:      []Item{{Text: "eggs"}, {Text: "milk", Checked: true}},
	})
	require.NoError(t, err)

	assert.Equal(t, "Groceries", card.Title)
	assert.Equal(t, "Groceries", card.Summary)
	assert.Equal(t, []string{"app:taskable", "collection:homestuff", "version:2.0.0"}, card.Tags)
	assert.Equal(t, testCardsType, card.FragmentTypeID)
	require.Len(t, card.Items, 2)
	for _, it := range card.Items {
		assert.NotEmpty(t, it.ID)
	}

	stored, ok := store.Get(card.ID)
	require.True(t, ok)
	assert.Equal(t, card.Items, Parse(stored.Content))
}

func TestService_CreateCard_Validation(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateCard(ctx, CreateCardInput{Title: " "})
	assert.ErrorIs(t, err, ErrTitleRequired)

	_, err = svc.CreateCard(ctx, CreateCardInput{Title: "x", Collection: "a:b"})
	assert.ErrorIs(t, err, ErrInvalidCollection)

	_, err = svc.CreateCard(ctx, CreateCardInput{Title: "x", Items: []Item{{Text: ""}}})
	assert.ErrorIs(t, err, ErrEmptyText)

	assert.Zero(t, store.Calls().Create)
}

func TestService_ListCards(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateCard(ctx, CreateCardInput{Title: "a", Collection: "work"})
	require.NoError(t, err)
	_, err = svc.CreateCard(ctx, CreateCardInput{Title: "b", Collection: "home"})
	require.NoError(t, err)
	store.Seed(usable.Fragment{ID: "foreign", WorkspaceID: testWorkspace, FragmentTypeID: testCardsType, Tags: []string{"collection:work"}})

	all, err := svc.ListCards(ctx, ListOptions{Collection: AllCollections})
	require.NoError(t, err)
	assert.Len(t, all, 2, "fragments without the app tag are not cards")

	work, err := svc.ListCards(ctx, ListOptions{Collection: "work"})
	require.NoError(t, err)
	require.Len(t, work, 1)
	assert.Equal(t, "a", work[0].Title)

	collections, err := svc.Collections(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"home", "work"}, collections)
}

func TestService_GetCard(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateCard(ctx, CreateCardInput{Title: "a"})
	require.NoError(t, err)

	got, err := svc.GetCard(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = svc.GetCard(ctx, "missing")
	assert.ErrorIs(t, err, ErrCardNotFound)
}

func TestService_UpdateCard(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateCard(ctx, CreateCardInput{Title: "a", Summary: "keep me", Items: []Item{{Text: "x"}}})
	require.NoError(t, err)

	updated, err := svc.UpdateCard(ctx, UpdateCardInput{ID: created.ID, Title: StringPtr("b"), Collection: StringPtr("Work")})
	require.NoError(t, err)

	assert.Equal(t, "b", updated.Title)
	assert.Equal(t, "keep me", updated.Summary)
	assert.Equal(t, "work", updated.Collection())
	assert.Equal(t, created.Items, updated.Items)

	stored, _ := store.Get(created.ID)
	assert.Equal(t, CardTags("work", SchemaVersion), stored.Tags)
}

func TestService_ItemMutations(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	card, err := svc.CreateCard(ctx, CreateCardInput{Title: "list"})
	require.NoError(t, err)

	item := NewItem("walk dog")
	item.SubTasks = []SubTask{NewSubTask("leash")}
	card, err = svc.AddItem(ctx, *card, item)
	require.NoError(t, err)
	require.Len(t, card.Items, 1)

	card, err = svc.ToggleSubTask(ctx, *card, item.ID, item.SubTasks[0].ID)
	require.NoError(t, err)
	assert.True(t, card.Items[0].SubTasks[0].Checked)
	assert.False(t, card.Items[0].Checked)

	card, err = svc.ToggleItem(ctx, *card, item.ID)
	require.NoError(t, err)
	assert.True(t, card.Items[0].Checked)

	card, err = svc.UpdateItem(ctx, *card, item.ID, func(it *Item) {
		it.Links = append(it.Links, NewLink("javascript:alert(1)", ""))
	})
	assert.ErrorIs(t, err, ErrInvalidLinkURL)
	assert.Nil(t, card)

	cards, err := svc.ListCards(ctx, ListOptions{})
	require.NoError(t, err)
	require.Len(t, cards, 1)
	require.Len(t, cards[0].Items, 1)
	assert.Empty(t, cards[0].Items[0].Links)

	card, err = svc.RemoveItem(ctx, cards[0], item.ID)
	require.NoError(t, err)
	assert.Empty(t, card.Items)
}

func TestService_DeleteCard(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	card, err := svc.CreateCard(ctx, CreateCardInput{Title: "gone"})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteCard(ctx, card.ID))

	_, ok := store.Get(card.ID)
	assert.False(t, ok)

	err = svc.DeleteCard(ctx, card.ID)
	assert.ErrorIs(t, err, usable.ErrNotFound)
}

func TestService_ListCards_NormalizesCollectionFilter(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateCard(ctx, CreateCardInput{Title: "a", Collection: "Work"})
	require.NoError(t, err)
	_, err = svc.CreateCard(ctx, CreateCardInput{Title: "b", Collection: "Home Stuff"})
	require.NoError(t, err)

	tests := []struct {
		collection string
		want       []string
	}{
		{"Work", []string{"a"}},
		{"work", []string{"a"}},
		{"Home Stuff", []string{"b"}},
		{"ALL", []string{"a", "b"}},
		{"", []string{"a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.collection, func(t *testing.T) {
			list, err := svc.ListCards(ctx, ListOptions{Collection: tt.collection})
			require.NoError(t, err)
			titles := make([]string, 0, len(list))
			for _, c := range list {
				titles = append(titles, c.Title)
			}
			assert.ElementsMatch(t, tt.want, titles)
		})
	}

	_, err = svc.ListCards(ctx, ListOptions{Collection: "a:b"})
	assert.ErrorIs(t, err, ErrInvalidCollection)
}

func TestService_LegacyItemsDoNotBlockMutations(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	store.Seed(usable.Fragment{
		ID:             "c1",
		WorkspaceID:    testWorkspace,
		FragmentTypeID: testCardsType,
		Title:          "legacy",
		Content:        `[{"id":"a","text":"","checked":false},{"id":"b","text":"ok","checked":false,"links":[{"id":"l1","url":"ftp://old.example"}]},{"id":"c","text":"fine","checked":false}]`,
		Tags:           CardTags(DefaultCollection, "1.0.0"),
	})
	card, err := svc.GetCard(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, card.Items, 3)

	card, err = svc.ToggleItem(ctx, *card, "c")
	require.NoError(t, err)
	assert.True(t, card.Items[2].Checked)
	assert.Equal(t, "", card.Items[0].Text, "stored items are kept as they are")

	card, err = svc.ToggleItem(ctx, *card, "a")
	require.NoError(t, err)
	assert.True(t, card.Items[0].Checked)

	card, err = svc.UpdateItem(ctx, *card, "c", func(it *Item) { it.Text = "still fine" })
	require.NoError(t, err)
	assert.Equal(t, "still fine", card.Items[2].Text)

	card, err = svc.AddItem(ctx, *card, NewItem("new"))
	require.NoError(t, err)
	require.Len(t, card.Items, 4)

	// the changed item itself is still validated
	_, err = svc.UpdateItem(ctx, *card, "b", func(it *Item) { it.Text = "edited" })
	assert.ErrorIs(t, err, ErrInvalidLinkURL)
	_, err = svc.AddItem(ctx, *card, Item{Text: ""})
	assert.ErrorIs(t, err, ErrEmptyText)

	card, err = svc.RemoveItem(ctx, *card, "b")
	require.NoError(t, err)
	assert.Len(t, card.Items, 3)
}

func TestService_GetCard_BeyondFirstPage(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	total := usable.DefaultListLimit + 1
	for i := 0; i < total; i++ {
		store.Seed(usable.Fragment{
			ID:             fmt.Sprintf("c%d", i),
			WorkspaceID:    testWorkspace,
			FragmentTypeID: testCardsType,
			Title:          fmt.Sprintf("card %d", i),
			Content:        "[]",
			Tags:           CardTags(fmt.Sprintf("col%d", i%3), SchemaVersion),
		})
	}

	first, err := svc.ListCards(ctx, ListOptions{})
	require.NoError(t, err)
	assert.Len(t, first, usable.DefaultListLimit)

	store.ResetCalls()
	last, err := svc.GetCard(ctx, fmt.Sprintf("c%d", total-1))
	require.NoError(t, err)
	assert.Equal(t, "card 100", last.Title)
	assert.Equal(t, 2, store.Calls().List)

	store.ResetCalls()
	_, err = svc.GetCard(ctx, "c0")
	require.NoError(t, err)
	assert.Equal(t, 1, store.Calls().List, "stops at the page holding the card")

	_, err = svc.GetCard(ctx, "missing")
	assert.ErrorIs(t, err, ErrCardNotFound)

	collections, err := svc.Collections(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"col0", "col1", "col2"}, collections)
}
