package cards

import "errors"

var (
	// ErrTitleRequired is returned when a card is created without a title.
	ErrTitleRequired = errors.New("card title is required")

	// ErrEmptyText is returned for items or sub-tasks without text.
	ErrEmptyText = errors.New("item text must not be empty")

	// ErrDescriptionTooLong is returned when a description exceeds MaxDescriptionLength.
	ErrDescriptionTooLong = errors.New("item description too long")

	// ErrTooManyLinks is returned when an item carries more than MaxLinks links.
	ErrTooManyLinks = errors.New("too many links on item")

	// ErrTooManyAttachments is returned when an item carries more than MaxAttachments files.
	ErrTooManyAttachments = errors.New("too many attachments on item")

	// ErrTooManySubTasks is returned when an item carries more than MaxSubTasks sub-tasks.
	ErrTooManySubTasks = errors.New("too many sub-tasks on item")

	// ErrInvalidLinkURL is returned for links that are not absolute http(s) URLs.
	ErrInvalidLinkURL = errors.New("invalid link URL")

	// ErrCardNotFound is returned when a card id is not among the app's fragments.
	ErrCardNotFound = errors.New("card not found")

	// ErrItemNotFound is returned when an item id is not on the card.
	ErrItemNotFound = errors.New("item not found")

	// ErrSubTaskNotFound is returned when a sub-task id is not on the item.
	ErrSubTaskNotFound = errors.New("sub-task not found")

	// ErrFileTooLarge is returned by ValidateFile before any upload starts.
	ErrFileTooLarge = errors.New("file too large")

	// ErrUnsupportedFileType is returned by ValidateFile for non-image files.
	ErrUnsupportedFileType = errors.New("unsupported file type")
)
