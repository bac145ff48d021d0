package bookmarks

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidBookmarkData rejects an interchange payload. Validation is
// all or nothing: one bad entry fails the whole import and the store is
// left untouched.
var ErrInvalidBookmarkData = errors.New("invalid bookmark data")

// interchangeEntry is the portable wire form: page and name, nothing
// else. IDs and timestamps are local to each store.
type interchangeEntry struct {
	Page int    `json:"page"`
	Name string `json:"name"`
}

// Export renders a bookmark list in the interchange format.
func Export(list []*Bookmark) ([]byte, error) {
	entries := make([]interchangeEntry, 0, len(list))
	for _, bm := range list {
		entries = append(entries, interchangeEntry{Page: bm.Page, Name: bm.Name})
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding bookmarks: %w", err)
	}
	return append(data, '\n'), nil
}

// ParseInterchange validates an interchange payload and returns the
// bookmarks it describes, without IDs. The payload must be a JSON array
// of {page, name} objects with integer pages from 1 up and non-empty
// names; anything else fails wholesale with ErrInvalidBookmarkData.
func ParseInterchange(data []byte) ([]*Bookmark, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var entries []interchangeEntry
	if err := dec.Decode(&entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBookmarkData, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after bookmark list", ErrInvalidBookmarkData)
	}
	if entries == nil {
		return nil, fmt.Errorf("%w: expected a JSON array", ErrInvalidBookmarkData)
	}

	list := make([]*Bookmark, 0, len(entries))
	for i, e := range entries {
		if e.Page < 1 {
			return nil, fmt.Errorf("%w: entry %d has page %d", ErrInvalidBookmarkData, i, e.Page)
		}
		if strings.TrimSpace(e.Name) == "" {
			return nil, fmt.Errorf("%w: entry %d has no name", ErrInvalidBookmarkData, i)
		}
		list = append(list, &Bookmark{Page: e.Page, Name: strings.TrimSpace(e.Name)})
	}
	return list, nil
}

// Import merges an interchange payload into doc. Entries already present
// as the same page and name are skipped, so importing the same file
// twice is harmless. It returns how many bookmarks were added.
func (s *Store) Import(doc string, data []byte) (int, error) {
	incoming, err := ParseInterchange(data)
	if err != nil {
		return 0, err
	}

	existing, err := s.Load(doc)
	if err != nil {
		return 0, err
	}

	seen := make(map[string]bool, len(existing))
	for _, bm := range existing {
		seen[fmt.Sprintf("%d\x00%s", bm.Page, bm.Name)] = true
	}

	added := 0
	now := time.Now()
	for _, bm := range incoming {
		key := fmt.Sprintf("%d\x00%s", bm.Page, bm.Name)
		if seen[key] {
			continue
		}
		seen[key] = true
		bm.ID = uuid.NewString()
		bm.CreatedAt = now
		existing = append(existing, bm)
		added++
	}

	if added == 0 {
		return 0, nil
	}
	if err := s.Save(doc, existing); err != nil {
		return 0, fmt.Errorf("importing bookmarks: %w", err)
	}
	return added, nil
}

// ExportDocument is the store-level counterpart of Import.
func (s *Store) ExportDocument(doc string) ([]byte, error) {
	list, err := s.Load(doc)
	if err != nil {
		return nil, err
	}
	return Export(list)
}
