package cards

import (
	"fmt"
	"net"
	"net/url"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/idna"
)

// IsValidURL accepts absolute http and https URLs with a resolvable-looking
// host. javascript: and every other scheme are rejected.
func IsValidURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	host := u.Hostname()
	if host == "" {
		return false
	}
	if net.ParseIP(host) != nil {
		return true
	}
	_, err = idna.Lookup.ToASCII(host)
	return err == nil
}

// ValidateItem checks an item against the v2 schema limits.
func ValidateItem(item Item) error {
	if strings.TrimSpace(item.Text) == "" {
		return ErrEmptyText
	}
	if item.Description != nil && utf8.RuneCountInString(*item.Description) > MaxDescriptionLength {
		return fmt.Errorf("%w: %d characters, max %d", ErrDescriptionTooLong, utf8.RuneCountInString(*item.Description), MaxDescriptionLength)
	}
	if len(item.Links) > MaxLinks {
		return fmt.Errorf("%w: %d, max %d", ErrTooManyLinks, len(item.Links), MaxLinks)
	}
	for _, link := range item.Links {
		if !IsValidURL(link.URL) {
			return fmt.Errorf("%w: %q", ErrInvalidLinkURL, link.URL)
		}
	}
	if len(item.Attachments) > MaxAttachments {
		return fmt.Errorf("%w: %d, max %d", ErrTooManyAttachments, len(item.Attachments), MaxAttachments)
	}
	if len(item.SubTasks) > MaxSubTasks {
		return fmt.Errorf("%w: %d, max %d", ErrTooManySubTasks, len(item.SubTasks), MaxSubTasks)
	}
	for _, st := range item.SubTasks {
		if strings.TrimSpace(st.Text) == "" {
			return fmt.Errorf("sub-task %s: %w", st.ID, ErrEmptyText)
		}
	}
	return nil
}

// ValidateItems validates every item and reports the first failure.
func ValidateItems(items []Item) error {
	for i, item := range items {
		if err := ValidateItem(item); err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
	}
	return nil
}
