package cards

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/houzhh15/taskable/pkg/usable"
)

// Service performs card operations against a fragment store for one
// workspace and cards fragment type.
type Service struct {
	store          usable.Store
	workspaceID    string
	fragmentTypeID string
	logger         *slog.Logger
}

// NewService returns a card service. A nil logger falls back to slog.Default.
func NewService(store usable.Store, workspaceID, fragmentTypeID string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:          store,
		workspaceID:    workspaceID,
		fragmentTypeID: fragmentTypeID,
		logger:         logger,
	}
}

// ListOptions filters ListCards.
type ListOptions struct {
	// Collection limits results to one collection; "" and "all" list every card.
	Collection string
	Limit      int
	Offset     int
}

// ListCards returns the app's cards, always scoped by the app marker tag.
func (s *Service) ListCards(ctx context.Context, opts ListOptions) ([]Card, error) {
	tags := []string{AppTag}
	if opts.Collection != "" {
		// 卡片写入时集合名已规范化，过滤条件需同样处理
		collection, err := NormalizeCollection(opts.Collection)
		if err != nil {
			return nil, fmt.Errorf("list cards: %w", err)
		}
		if collection != AllCollections {
			tags = append(tags, CollectionPrefix+":"+collection)
		}
	}

	fragments, err := s.store.ListFragments(ctx, usable.ListParams{
		WorkspaceID:    s.workspaceID,
		FragmentTypeID: s.fragmentTypeID,
		Tags:           tags,
		Limit:          opts.Limit,
		Offset:         opts.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	return FragmentsToCards(fragments), nil
}

// eachPage walks every page of the app's cards until fn returns false or a
// short page ends the listing.
func (s *Service) eachPage(ctx context.Context, fn func([]Card) bool) error {
	for offset := 0; ; offset += usable.DefaultListLimit {
		page, err := s.ListCards(ctx, ListOptions{Limit: usable.DefaultListLimit, Offset: offset})
		if err != nil {
			return err
		}
		if !fn(page) || len(page) < usable.DefaultListLimit {
			return nil
		}
	}
}

// GetCard finds a card by fragment id among the app's cards.
func (s *Service) GetCard(ctx context.Context, id string) (*Card, error) {
	var found *Card
	err := s.eachPage(ctx, func(page []Card) bool {
		for i := range page {
			if page[i].ID == id {
				found = &page[i]
				return false
			}
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, fmt.Errorf("%w: %s", ErrCardNotFound, id)
	}
	return found, nil
}

// Collections returns the sorted distinct collections in use.
func (s *Service) Collections(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	err := s.eachPage(ctx, func(page []Card) bool {
		for _, c := range page {
			seen[c.Collection()] = struct{}{}
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

// CreateCard stores a new card. Items without an id get one and the summary
// defaults to the title.
func (s *Service) CreateCard(ctx context.Context, in CreateCardInput) (*Card, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("create card: %w", ErrTitleRequired)
	}
	collection, err := NormalizeCollection(in.Collection)
	if err != nil {
		return nil, fmt.Errorf("create card: %w", err)
	}
	items := ensureIDs(in.Items)
	if err := ValidateItems(items); err != nil {
		return nil, fmt.Errorf("create card: %w", err)
	}
	content, err := Serialize(items)
	if err != nil {
		return nil, fmt.Errorf("create card: %w", err)
	}

	summary := in.Summary
	if summary == "" {
		summary = title
	}

	f, err := s.store.CreateFragment(ctx, usable.CreateFragmentInput{
		WorkspaceID:    s.workspaceID,
		FragmentTypeID: s.fragmentTypeID,
		Title:          title,
		Content:        content,
		Summary:        summary,
		Tags:           CardTags(collection, SchemaVersion),
	})
	if err != nil {
		return nil, fmt.Errorf("create card: %w", err)
	}
	s.logger.Info("card created", "card_id", f.ID, "collection", collection, "items", len(items))

	card := FragmentToCard(*f)
	return &card, nil
}

// UpdateCard sends a partial update. Changing the collection rewrites the
// card's tags, which also moves it to the current schema version.
func (s *Service) UpdateCard(ctx context.Context, in UpdateCardInput) (*Card, error) {
	var patch usable.FragmentPatch

	if in.Title != nil && strings.TrimSpace(*in.Title) != "" {
		patch.Title = StringPtr(strings.TrimSpace(*in.Title))
	}
	if in.Summary != nil {
		summary := *in.Summary
		if summary == "" && patch.Title != nil {
			summary = *patch.Title
		}
		patch.Summary = &summary
	}
	if in.Items != nil {
		items := ensureIDs(in.Items)
		if err := ValidateItems(items); err != nil {
			return nil, fmt.Errorf("update card %s: %w", in.ID, err)
		}
		content, err := Serialize(items)
		if err != nil {
			return nil, fmt.Errorf("update card %s: %w", in.ID, err)
		}
		patch.Content = &content
	}
	if in.Collection != nil {
		collection, err := NormalizeCollection(*in.Collection)
		if err != nil {
			return nil, fmt.Errorf("update card %s: %w", in.ID, err)
		}
		patch.Tags = CardTags(collection, SchemaVersion)
	}

	f, err := s.store.UpdateFragment(ctx, in.ID, patch)
	if err != nil {
		return nil, fmt.Errorf("update card %s: %w", in.ID, err)
	}
	card := FragmentToCard(*f)
	return &card, nil
}

// DeleteCard removes a card.
func (s *Service) DeleteCard(ctx context.Context, id string) error {
	if err := s.store.DeleteFragment(ctx, id); err != nil {
		return fmt.Errorf("delete card %s: %w", id, err)
	}
	s.logger.Info("card deleted", "card_id", id)
	return nil
}

// ReplaceItems validates and stores a whole new item list for a card.
func (s *Service) ReplaceItems(ctx context.Context, cardID string, items []Item) (*Card, error) {
	return s.UpdateCard(ctx, UpdateCardInput{ID: cardID, Items: items})
}

// writeItems stores items without validating them. Item mutations check only
// the item they touch, so stored items that fail validation do not block
// edits elsewhere on the card.
func (s *Service) writeItems(ctx context.Context, cardID string, items []Item) (*Card, error) {
	content, err := Serialize(items)
	if err != nil {
		return nil, fmt.Errorf("update card %s: %w", cardID, err)
	}
	f, err := s.store.UpdateFragment(ctx, cardID, usable.FragmentPatch{Content: &content})
	if err != nil {
		return nil, fmt.Errorf("update card %s: %w", cardID, err)
	}
	card := FragmentToCard(*f)
	return &card, nil
}

// UpdateItem applies fn to one item, validates that item and stores the card.
func (s *Service) UpdateItem(ctx context.Context, card Card, itemID string, fn func(*Item)) (*Card, error) {
	items, err := UpdateItem(card.Items, itemID, fn)
	if err != nil {
		return nil, err
	}
	changed, _ := FindItem(items, itemID)
	if err := ValidateItem(changed); err != nil {
		return nil, fmt.Errorf("update item %s: %w", itemID, err)
	}
	return s.writeItems(ctx, card.ID, items)
}

// AddItem validates and appends a new item to a card.
func (s *Service) AddItem(ctx context.Context, card Card, item Item) (*Card, error) {
	item = ensureIDs([]Item{item})[0]
	if err := ValidateItem(item); err != nil {
		return nil, fmt.Errorf("add item: %w", err)
	}
	items := make([]Item, 0, len(card.Items)+1)
	items = append(items, card.Items...)
	items = append(items, item)
	return s.writeItems(ctx, card.ID, items)
}

// RemoveItem drops one item from a card.
func (s *Service) RemoveItem(ctx context.Context, card Card, itemID string) (*Card, error) {
	items, err := RemoveItem(card.Items, itemID)
	if err != nil {
		return nil, err
	}
	return s.writeItems(ctx, card.ID, items)
}

// ToggleItem flips an item's own checked flag.
func (s *Service) ToggleItem(ctx context.Context, card Card, itemID string) (*Card, error) {
	items, err := ToggleItem(card.Items, itemID)
	if err != nil {
		return nil, err
	}
	return s.writeItems(ctx, card.ID, items)
}

// ToggleSubTask flips one sub-task without touching the parent flag.
func (s *Service) ToggleSubTask(ctx context.Context, card Card, itemID, subTaskID string) (*Card, error) {
	items, err := ToggleSubTask(card.Items, itemID, subTaskID)
	if err != nil {
		return nil, err
	}
	return s.writeItems(ctx, card.ID, items)
}
