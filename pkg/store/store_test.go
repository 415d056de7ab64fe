package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStorePutGet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	doc := Document{ID: "m1", Name: "glycolysis", Flavor: "process description",
		Data: []byte("<sbgn/>")}
	if err := s.Put(ctx, doc); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := s.Get(ctx, "m1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "glycolysis" || got.Flavor != "process description" {
		t.Errorf("doc = %+v", got)
	}
	if string(got.Data) != "<sbgn/>" {
		t.Errorf("data = %q", got.Data)
	}
	if got.Created.IsZero() {
		t.Error("Put should stamp a creation time")
	}
}

func TestMemoryStorePutKeepsCreated(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := s.Put(ctx, Document{ID: "m1", Created: created}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := s.Get(ctx, "m1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !got.Created.Equal(created) {
		t.Errorf("created = %v, want %v", got.Created, created)
	}
}

func TestMemoryStoreGetMissing(t *testing.T) {
	s := NewMemoryStore()
	if _, err := s.Get(context.Background(), "ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestMemoryStorePutReplaces(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	s.Put(ctx, Document{ID: "m1", Name: "old"})
	s.Put(ctx, Document{ID: "m1", Name: "new"})

	got, err := s.Get(ctx, "m1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "new" {
		t.Errorf("name = %q, want new", got.Name)
	}

	docs, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(docs) != 1 {
		t.Errorf("documents = %d, want 1", len(docs))
	}
}

func TestMemoryStoreListSortedWithoutData(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	s.Put(ctx, Document{ID: "m2", Name: "zebra", Data: []byte("z")})
	s.Put(ctx, Document{ID: "m1", Name: "aardvark", Data: []byte("a")})

	docs, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("documents = %d, want 2", len(docs))
	}
	if docs[0].Name != "aardvark" || docs[1].Name != "zebra" {
		t.Errorf("order = %q, %q", docs[0].Name, docs[1].Name)
	}
	for _, d := range docs {
		if d.Data != nil {
			t.Errorf("List should omit document bytes, got %d for %s", len(d.Data), d.ID)
		}
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	s.Put(ctx, Document{ID: "m1"})
	if err := s.Delete(ctx, "m1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, "m1"); !errors.Is(err, ErrNotFound) {
		t.Error("deleted document should be gone")
	}
	if err := s.Delete(ctx, "m1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: err = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreCopiesData(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	data := []byte("original")
	s.Put(ctx, Document{ID: "m1", Data: data})
	data[0] = 'X'

	got, err := s.Get(ctx, "m1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got.Data) != "original" {
		t.Error("Put should copy the caller's bytes")
	}

	got.Data[0] = 'Y'
	again, _ := s.Get(ctx, "m1")
	if string(again.Data) != "original" {
		t.Error("Get should hand out a private copy")
	}
}
