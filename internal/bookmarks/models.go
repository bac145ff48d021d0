package bookmarks

import (
	"time"
)

// Bookmark marks one page of one document. IDs are assigned by the store
// and survive export/import round trips only as page+name pairs; the
// interchange format deliberately carries no IDs.
type Bookmark struct {
	ID        string    `json:"id"`
	Page      int       `json:"page"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Position is the remembered reading position for one document, written
// on page changes and read once when the document is reopened.
type Position struct {
	Page         int       `json:"page"`
	Layout       string    `json:"layout"`
	ScrollOffset int       `json:"scroll_offset"`
	UpdatedAt    time.Time `json:"updated_at"`
}
