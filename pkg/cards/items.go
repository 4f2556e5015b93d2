package cards

import (
	"github.com/google/uuid"
)

// NewItem returns an unchecked item with a fresh id and empty v2 collections.
func NewItem(text string) Item {
	return Item{
		ID:          uuid.NewString(),
		Text:        text,
		Links:       []Link{},
		Attachments: []Attachment{},
		SubTasks:    []SubTask{},
	}
}

// NewLink returns a link with a fresh id.
func NewLink(rawURL, title string) Link {
	return Link{ID: uuid.NewString(), URL: rawURL, Title: title}
}

// NewSubTask returns an unchecked sub-task with a fresh id.
func NewSubTask(text string) SubTask {
	return SubTask{ID: uuid.NewString(), Text: text}
}

// ensureIDs assigns ids to items created without one.
func ensureIDs(items []Item) []Item {
	out := make([]Item, len(items))
	for i, item := range items {
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		out[i] = item
	}
	return out
}

// UpdateItem returns a copy of items where fn has been applied to the item
// with the given id.
func UpdateItem(items []Item, itemID string, fn func(*Item)) ([]Item, error) {
	out := make([]Item, len(items))
	copy(out, items)
	for i := range out {
		if out[i].ID == itemID {
			fn(&out[i])
			return out, nil
		}
	}
	return nil, ErrItemNotFound
}

// ToggleItem flips an item's own checked flag. Sub-tasks are not touched.
func ToggleItem(items []Item, itemID string) ([]Item, error) {
	return UpdateItem(items, itemID, func(it *Item) {
		it.Checked = !it.Checked
	})
}

// ToggleSubTask flips one sub-task. The parent's checked flag is left as is;
// effective completion is derived by IsItemComplete.
func ToggleSubTask(items []Item, itemID, subTaskID string) ([]Item, error) {
	var found bool
	out, err := UpdateItem(items, itemID, func(it *Item) {
		subTasks := make([]SubTask, len(it.SubTasks))
		copy(subTasks, it.SubTasks)
		for i := range subTasks {
			if subTasks[i].ID == subTaskID {
				subTasks[i].Checked = !subTasks[i].Checked
				found = true
			}
		}
		it.SubTasks = subTasks
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrSubTaskNotFound
	}
	return out, nil
}

// RemoveItem drops the item with the given id.
func RemoveItem(items []Item, itemID string) ([]Item, error) {
	out := make([]Item, 0, len(items))
	for _, item := range items {
		if item.ID != itemID {
			out = append(out, item)
		}
	}
	if len(out) == len(items) {
		return nil, ErrItemNotFound
	}
	return out, nil
}

// FindItem returns the item with the given id.
func FindItem(items []Item, itemID string) (Item, bool) {
	for _, item := range items {
		if item.ID == itemID {
			return item, true
		}
	}
	return Item{}, false
}
