package model

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// CurrentFormatVersion is the only payload schema this build emits or accepts.
const CurrentFormatVersion uint8 = 1

const (
	MinRating = 0
	MaxRating = 10
)

// MaxItems is the longest list the codec accepts.
const MaxItems = 65536

// CleanAuthor replaces invalid UTF-8 so the name survives a token round trip.
func CleanAuthor(author string) string {
	return strings.ToValidUTF8(author, "\uFFFD")
}

// Token is an opaque, URL-safe encoding of a ListState (or UserRegistry).
// Only internal/codec looks inside it.
type Token string

type CatalogEntry struct {
	ID           uint64 `json:"id"`
	Name         string `json:"name"`
	ReferenceURL string `json:"referenceUrl"`
}

type ListItem struct {
	// ID is unique within its owning list and stable across edits.
	ID        uint64 `json:"id"`
	CatalogID uint64 `json:"catalogId"`
	Viewed    bool   `json:"viewed"`
	Rating    int    `json:"rating"`
}

type ListState struct {
	FormatVersion uint8      `json:"formatVersion"`
	Author        string     `json:"author"`
	Items         []ListItem `json:"items"`
}

type UserRegistry struct {
	FormatVersion uint8    `json:"formatVersion"`
	Authors       []string `json:"authors"`
}

func DefaultListState() ListState {
	return ListState{
		FormatVersion: CurrentFormatVersion,
		Author:        "",
		Items:         []ListItem{},
	}
}

func DefaultUserRegistry() UserRegistry {
	return UserRegistry{
		FormatVersion: CurrentFormatVersion,
		Authors:       []string{},
	}
}

// Clone returns a copy that shares no backing array with s.
func (s ListState) Clone() ListState {
	items := make([]ListItem, len(s.Items))
	copy(items, s.Items)
	return ListState{
		FormatVersion: s.FormatVersion,
		Author:        s.Author,
		Items:         items,
	}
}

// Equal compares structurally; a nil item slice equals an empty one.
func (s ListState) Equal(o ListState) bool {
	if s.FormatVersion != o.FormatVersion || s.Author != o.Author {
		return false
	}
	if len(s.Items) != len(o.Items) {
		return false
	}
	for i := range s.Items {
		if s.Items[i] != o.Items[i] {
			return false
		}
	}
	return true
}

func (s ListState) IsEmpty() bool {
	return s.Author == "" && len(s.Items) == 0
}

// FindItem returns the index of the first item with the given id, or -1.
func (s ListState) FindItem(id uint64) int {
	for i := range s.Items {
		if s.Items[i].ID == id {
			return i
		}
	}
	return -1
}

// Validate reports the first invariant violation, if any.
func (s ListState) Validate() error {
	if len(s.Items) > MaxItems {
		return fmt.Errorf("%d items exceeds limit %d", len(s.Items), MaxItems)
	}
	if !utf8.ValidString(s.Author) {
		return fmt.Errorf("author %q is not valid UTF-8", s.Author)
	}
	for _, it := range s.Items {
		if it.Rating < MinRating || it.Rating > MaxRating {
			return fmt.Errorf("item %d: rating %d out of range [%d,%d]", it.ID, it.Rating, MinRating, MaxRating)
		}
	}
	return nil
}

func (r UserRegistry) Contains(author string) bool {
	for _, a := range r.Authors {
		if a == author {
			return true
		}
	}
	return false
}
