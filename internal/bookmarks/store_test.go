package bookmarks

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	bolt "go.etcd.io/bbolt"
)

func setupTestStore(t *testing.T) (*Store, func()) {
	tmpDir, err := os.MkdirTemp("", "bookmarks-test-*")
	if err != nil {
		t.Fatal(err)
	}

	dbPath := filepath.Join(tmpDir, "test.db")
	store, err := NewStore(dbPath)
	if err != nil {
		os.RemoveAll(tmpDir)
		t.Fatal(err)
	}

	cleanup := func() {
		store.Close()
		os.RemoveAll(tmpDir)
	}

	return store, cleanup
}

func TestStore_AddAndLoad(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	second, err := store.Add("report.pdf", 42, "Appendix")
	if err != nil {
		t.Fatalf("failed to add bookmark: %v", err)
	}
	first, err := store.Add("report.pdf", 3, "")
	if err != nil {
		t.Fatalf("failed to add bookmark: %v", err)
	}

	if first.ID == "" || second.ID == "" {
		t.Error("bookmarks should get IDs on add")
	}
	if first.ID == second.ID {
		t.Error("bookmark IDs should be distinct")
	}
	if first.Name != "Page 3" {
		t.Errorf("expected default name Page 3, got %q", first.Name)
	}

	list, err := store.Load("report.pdf")
	if err != nil {
		t.Fatalf("failed to load bookmarks: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 bookmarks, got %d", len(list))
	}
	if list[0].Page != 3 || list[1].Page != 42 {
		t.Errorf("expected page order [3 42], got [%d %d]", list[0].Page, list[1].Page)
	}

	// Other documents stay empty.
	other, err := store.Load("novel.pdf")
	if err != nil {
		t.Fatalf("failed to load bookmarks: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("expected no bookmarks for other document, got %d", len(other))
	}
}

func TestStore_LoadMalformed(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	err := store.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bookmarksBucket).Put([]byte("broken.pdf"), []byte("{not json"))
	})
	if err != nil {
		t.Fatalf("failed to plant malformed value: %v", err)
	}

	list, err := store.Load("broken.pdf")
	if err != nil {
		t.Fatalf("malformed data should not error: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("expected empty list for malformed data, got %d", len(list))
	}
}

func TestStore_SaveReplaces(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	if _, err := store.Add("doc.pdf", 1, "one"); err != nil {
		t.Fatalf("failed to add bookmark: %v", err)
	}
	if _, err := store.Add("doc.pdf", 2, "two"); err != nil {
		t.Fatalf("failed to add bookmark: %v", err)
	}

	err := store.Save("doc.pdf", []*Bookmark{{ID: "x", Page: 7, Name: "only"}})
	if err != nil {
		t.Fatalf("failed to save list: %v", err)
	}

	list, err := store.Load("doc.pdf")
	if err != nil {
		t.Fatalf("failed to load bookmarks: %v", err)
	}
	if len(list) != 1 || list[0].Page != 7 {
		t.Errorf("expected the replacement list, got %+v", list)
	}

	// Saving an empty list clears the key entirely.
	if err := store.Save("doc.pdf", nil); err != nil {
		t.Fatalf("failed to save empty list: %v", err)
	}
	list, err = store.Load("doc.pdf")
	if err != nil {
		t.Fatalf("failed to load bookmarks: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("expected no bookmarks after clearing, got %d", len(list))
	}
}

func TestStore_Remove(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	bm, err := store.Add("doc.pdf", 5, "keep me not")
	if err != nil {
		t.Fatalf("failed to add bookmark: %v", err)
	}
	if _, err := store.Add("doc.pdf", 9, "keeper"); err != nil {
		t.Fatalf("failed to add bookmark: %v", err)
	}

	if err := store.Remove("doc.pdf", bm.ID); err != nil {
		t.Fatalf("failed to remove bookmark: %v", err)
	}

	list, err := store.Load("doc.pdf")
	if err != nil {
		t.Fatalf("failed to load bookmarks: %v", err)
	}
	if len(list) != 1 || list[0].Name != "keeper" {
		t.Errorf("expected only the keeper, got %+v", list)
	}

	if err := store.Remove("doc.pdf", "no-such-id"); err == nil {
		t.Error("expected error removing unknown bookmark")
	}
}

func TestStore_Positions(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	pos, err := store.LoadPosition("fresh.pdf")
	if err != nil {
		t.Fatalf("failed to load position: %v", err)
	}
	if pos != nil {
		t.Errorf("expected no position for an unread document, got %+v", pos)
	}

	err = store.SavePosition("fresh.pdf", &Position{Page: 12, Layout: "spread", ScrollOffset: -1})
	if err != nil {
		t.Fatalf("failed to save position: %v", err)
	}
	err = store.SavePosition("fresh.pdf", &Position{Page: 30, Layout: "scroll", ScrollOffset: 290})
	if err != nil {
		t.Fatalf("failed to save position: %v", err)
	}

	pos, err = store.LoadPosition("fresh.pdf")
	if err != nil {
		t.Fatalf("failed to load position: %v", err)
	}
	if pos == nil {
		t.Fatal("expected a position after saving")
	}
	if pos.Page != 30 || pos.Layout != "scroll" || pos.ScrollOffset != 290 {
		t.Errorf("expected the latest position, got %+v", pos)
	}
	if pos.UpdatedAt.IsZero() {
		t.Error("expected UpdatedAt to be stamped")
	}
}

func TestStore_ImportExportRoundTrip(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	if _, err := store.Add("src.pdf", 4, "Methods"); err != nil {
		t.Fatalf("failed to add bookmark: %v", err)
	}
	if _, err := store.Add("src.pdf", 19, "Results"); err != nil {
		t.Fatalf("failed to add bookmark: %v", err)
	}

	data, err := store.ExportDocument("src.pdf")
	if err != nil {
		t.Fatalf("failed to export: %v", err)
	}

	added, err := store.Import("dst.pdf", data)
	if err != nil {
		t.Fatalf("failed to import: %v", err)
	}
	if added != 2 {
		t.Errorf("expected 2 imported, got %d", added)
	}

	list, err := store.Load("dst.pdf")
	if err != nil {
		t.Fatalf("failed to load bookmarks: %v", err)
	}
	if len(list) != 2 || list[0].Name != "Methods" || list[1].Name != "Results" {
		t.Errorf("unexpected imported list: %+v", list)
	}
	if list[0].ID == "" {
		t.Error("imported bookmarks should get fresh IDs")
	}

	// Importing the same payload again changes nothing.
	added, err = store.Import("dst.pdf", data)
	if err != nil {
		t.Fatalf("failed to re-import: %v", err)
	}
	if added != 0 {
		t.Errorf("expected idempotent re-import, got %d added", added)
	}
}

func TestStore_ImportRejectsWholesale(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"page as string", `[{"page":3,"name":"X"},{"page":"2","name":"Y"}]`},
		{"page below one", `[{"page":0,"name":"X"}]`},
		{"missing name", `[{"page":3,"name":"  "}]`},
		{"unknown field", `[{"page":3,"name":"X","color":"red"}]`},
		{"not an array", `{"page":3,"name":"X"}`},
		{"null", `null`},
		{"trailing data", `[{"page":3,"name":"X"}] []`},
		{"empty input", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, cleanup := setupTestStore(t)
			defer cleanup()

			if _, err := store.Add("doc.pdf", 1, "existing"); err != nil {
				t.Fatalf("failed to add bookmark: %v", err)
			}

			added, err := store.Import("doc.pdf", []byte(tt.payload))
			if !errors.Is(err, ErrInvalidBookmarkData) {
				t.Fatalf("expected ErrInvalidBookmarkData, got %v", err)
			}
			if added != 0 {
				t.Errorf("expected nothing added, got %d", added)
			}

			list, loadErr := store.Load("doc.pdf")
			if loadErr != nil {
				t.Fatalf("failed to load bookmarks: %v", loadErr)
			}
			if len(list) != 1 || list[0].Name != "existing" {
				t.Errorf("store should be untouched, got %+v", list)
			}
		})
	}
}

func TestStore_ImportEmptyArray(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	added, err := store.Import("doc.pdf", []byte(`[]`))
	if err != nil {
		t.Fatalf("an empty array is valid interchange: %v", err)
	}
	if added != 0 {
		t.Errorf("expected 0 added, got %d", added)
	}
}
