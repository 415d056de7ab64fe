// Package store persists serialized SBGN-ML documents with metadata.
//
// A Store holds the wire form, not the in-memory aggregate: documents go
// in as the bytes a client uploaded and come out byte-identical, with
// the map aggregate rebuilt by the wire adapters on demand. Two backends
// are provided: an in-process memory store and MongoDB.
package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// ErrNotFound is returned when no document has the requested id.
var ErrNotFound = errors.New("map not found")

// Document is one stored map with its metadata.
type Document struct {
	ID      string    `bson:"_id"`
	Name    string    `bson:"name"`
	Flavor  string    `bson:"flavor"`
	Data    []byte    `bson:"data"`
	Created time.Time `bson:"created"`
}

// Store is a map document repository.
type Store interface {
	// Put inserts or replaces a document by id.
	Put(ctx context.Context, doc Document) error

	// Get retrieves a document by id, or [ErrNotFound].
	Get(ctx context.Context, id string) (Document, error)

	// List returns all document metadata (Data omitted), sorted by name.
	List(ctx context.Context) ([]Document, error)

	// Delete removes a document. Deleting a missing id returns
	// [ErrNotFound].
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close(ctx context.Context) error
}

// MemoryStore is an in-process Store, for tests and single-binary use.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]Document
}

// NewMemoryStore creates an empty memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]Document)}
}

// Put inserts or replaces a document by id.
func (s *MemoryStore) Put(ctx context.Context, doc Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if doc.Created.IsZero() {
		doc.Created = time.Now()
	}
	doc.Data = append([]byte(nil), doc.Data...)
	s.docs[doc.ID] = doc
	return nil
}

// Get retrieves a document by id.
func (s *MemoryStore) Get(ctx context.Context, id string) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return Document{}, ErrNotFound
	}
	doc.Data = append([]byte(nil), doc.Data...)
	return doc, nil
}

// List returns all document metadata, sorted by name.
func (s *MemoryStore) List(ctx context.Context) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Document, 0, len(s.docs))
	for _, doc := range s.docs {
		doc.Data = nil
		out = append(out, doc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Delete removes a document.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return ErrNotFound
	}
	delete(s.docs, id)
	return nil
}

// Close does nothing for the memory store.
func (s *MemoryStore) Close(ctx context.Context) error { return nil }

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
