package bookmarks

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/quireapp/quire/internal/debuglog"
)

var (
	bookmarksBucket = []byte("bookmarks")
	positionsBucket = []byte("positions")
	metaBucket      = []byte("metadata")
)

var schemaVersionKey = []byte("schema_version")

const schemaVersion = "1"

// Store persists bookmarks and reading positions, both keyed by document
// name. Each bookmarks value is the complete JSON list for one document.
type Store struct {
	db *bolt.DB
}

func NewStore(dbPath string) (*Store, error) {
	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bookmarksBucket, positionsBucket, metaBucket} {
			if _, createErr := tx.CreateBucketIfNotExists(bucket); createErr != nil {
				return createErr
			}
		}
		meta := tx.Bucket(metaBucket)
		if meta.Get(schemaVersionKey) == nil {
			return meta.Put(schemaVersionKey, []byte(schemaVersion))
		}
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Load returns the bookmarks for doc sorted by page, then creation time.
// A missing key is an empty list, and so is a value that no longer
// parses: stale or corrupt data must never lock the reader out of its
// own document.
func (s *Store) Load(doc string) ([]*Bookmark, error) {
	var list []*Bookmark
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bookmarksBucket)
		data := b.Get([]byte(doc))
		if data == nil {
			return nil
		}
		if err := json.Unmarshal(data, &list); err != nil {
			debuglog.Warnf("discarding malformed bookmarks for %q: %v", doc, err)
			list = nil
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading bookmarks: %w", err)
	}

	sort.Slice(list, func(i, j int) bool {
		if list[i].Page != list[j].Page {
			return list[i].Page < list[j].Page
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list, nil
}

// Save replaces the stored list for doc wholesale.
func (s *Store) Save(doc string, list []*Bookmark) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bookmarksBucket)
		if len(list) == 0 {
			return b.Delete([]byte(doc))
		}
		data, err := json.Marshal(list)
		if err != nil {
			return err
		}
		return b.Put([]byte(doc), data)
	})
}

// Add appends a bookmark for doc at page and returns it with its
// assigned ID. An empty name defaults to the page number.
func (s *Store) Add(doc string, page int, name string) (*Bookmark, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = fmt.Sprintf("Page %d", page)
	}

	bm := &Bookmark{
		ID:        uuid.NewString(),
		Page:      page,
		Name:      name,
		CreatedAt: time.Now(),
	}

	list, err := s.Load(doc)
	if err != nil {
		return nil, err
	}
	if err := s.Save(doc, append(list, bm)); err != nil {
		return nil, fmt.Errorf("adding bookmark: %w", err)
	}
	return bm, nil
}

// Remove deletes the bookmark with the given ID from doc.
func (s *Store) Remove(doc, id string) error {
	list, err := s.Load(doc)
	if err != nil {
		return err
	}

	kept := list[:0]
	for _, bm := range list {
		if bm.ID != id {
			kept = append(kept, bm)
		}
	}
	if len(kept) == len(list) {
		return fmt.Errorf("bookmark not found")
	}
	return s.Save(doc, kept)
}

// SavePosition records where reading stopped in doc.
func (s *Store) SavePosition(doc string, pos *Position) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(positionsBucket)
		pos.UpdatedAt = time.Now()
		data, err := json.Marshal(pos)
		if err != nil {
			return err
		}
		return b.Put([]byte(doc), data)
	})
}

// LoadPosition returns the remembered position for doc, or nil when the
// document has never been read. Like Load, a value that fails to parse
// reads as absent.
func (s *Store) LoadPosition(doc string) (*Position, error) {
	var pos *Position
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(positionsBucket)
		data := b.Get([]byte(doc))
		if data == nil {
			return nil
		}
		var p Position
		if err := json.Unmarshal(data, &p); err != nil {
			debuglog.Warnf("discarding malformed position for %q: %v", doc, err)
			return nil
		}
		pos = &p
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading position: %w", err)
	}
	return pos, nil
}
