package store

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "shelve.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_MigrateIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shelve.db")

	s1, err := Open(path)
	if err != nil {
		t.Fatalf("first Open: %v", err)
	}
	s1.Close()

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("second Open: %v", err)
	}
	s2.Close()
}

func TestUpsertSnippet_InsertAndGet(t *testing.T) {
	s := openTestStore(t)
	if err := s.UpsertSnippet("notes/a.md", "about go routines"); err != nil {
		t.Fatalf("UpsertSnippet: %v", err)
	}

	doc, err := s.Get("notes/a.md")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if doc.Snippet != "about go routines" || doc.Embedding != nil || doc.Model != "" {
		t.Fatalf("doc = %+v", doc)
	}
}

func TestGet_NotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Get("missing.md")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestUpsertSnippet_ChangedSnippetInvalidatesEmbedding(t *testing.T) {
	s := openTestStore(t)
	if err := s.UpsertSnippet("a.md", "v1"); err != nil {
		t.Fatalf("UpsertSnippet: %v", err)
	}
	if err := s.SetEmbedding("a.md", "m", []float32{1, 2}); err != nil {
		t.Fatalf("SetEmbedding: %v", err)
	}

	// Same snippet: embedding survives.
	if err := s.UpsertSnippet("a.md", "v1"); err != nil {
		t.Fatalf("UpsertSnippet: %v", err)
	}
	doc, err := s.Get("a.md")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if doc.Embedding == nil {
		t.Fatal("unchanged snippet must keep its embedding")
	}

	// Changed snippet: embedding cleared, document pending again.
	if err := s.UpsertSnippet("a.md", "v2"); err != nil {
		t.Fatalf("UpsertSnippet: %v", err)
	}
	doc, err = s.Get("a.md")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if doc.Embedding != nil || doc.Model != "" {
		t.Fatalf("changed snippet kept stale embedding: %+v", doc)
	}
}

func TestPending_NewAndStaleModel(t *testing.T) {
	s := openTestStore(t)
	for _, path := range []string{"b.md", "a.md", "c.md"} {
		if err := s.UpsertSnippet(path, "text"); err != nil {
			t.Fatalf("UpsertSnippet: %v", err)
		}
	}
	if err := s.SetEmbedding("b.md", "current", []float32{1}); err != nil {
		t.Fatalf("SetEmbedding: %v", err)
	}
	if err := s.SetEmbedding("c.md", "old", []float32{1}); err != nil {
		t.Fatalf("SetEmbedding: %v", err)
	}

	pending, err := s.Pending("current")
	if err != nil {
		t.Fatalf("Pending: %v", err)
	}
	// a.md was never embedded; c.md carries a stale model. Path order.
	if len(pending) != 2 || pending[0].Path != "a.md" || pending[1].Path != "c.md" {
		t.Fatalf("pending = %+v", pending)
	}
}

func TestSetEmbedding_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	if err := s.UpsertSnippet("a.md", "text"); err != nil {
		t.Fatalf("UpsertSnippet: %v", err)
	}

	emb := []float32{0.25, -1.5, 3.75}
	if err := s.SetEmbedding("a.md", "m", emb); err != nil {
		t.Fatalf("SetEmbedding: %v", err)
	}

	doc, err := s.Get("a.md")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if doc.Model != "m" || !reflect.DeepEqual(doc.Embedding, emb) {
		t.Fatalf("doc = %+v, want embedding %v", doc, emb)
	}
}

func TestSetEmbedding_UnknownPath(t *testing.T) {
	s := openTestStore(t)
	err := s.SetEmbedding("ghost.md", "m", []float32{1})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestEmbeddings_SkipsPending(t *testing.T) {
	s := openTestStore(t)
	for _, path := range []string{"a.md", "b.md"} {
		if err := s.UpsertSnippet(path, "text"); err != nil {
			t.Fatalf("UpsertSnippet: %v", err)
		}
	}
	if err := s.SetEmbedding("a.md", "m", []float32{1, 0}); err != nil {
		t.Fatalf("SetEmbedding: %v", err)
	}

	emb, err := s.Embeddings()
	if err != nil {
		t.Fatalf("Embeddings: %v", err)
	}
	if len(emb) != 1 || emb["a.md"] == nil {
		t.Fatalf("embeddings = %+v, want a.md only", emb)
	}
}

func TestPrune(t *testing.T) {
	s := openTestStore(t)
	for _, path := range []string{"a.md", "b.md", "c.md"} {
		if err := s.UpsertSnippet(path, "text"); err != nil {
			t.Fatalf("UpsertSnippet: %v", err)
		}
	}

	n, err := s.Prune([]string{"a.md", "c.md"})
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if n != 1 {
		t.Fatalf("pruned %d rows, want 1", n)
	}
	if count, _ := s.Count(); count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}

	n, err = s.Prune(nil)
	if err != nil {
		t.Fatalf("Prune(nil): %v", err)
	}
	if n != 2 {
		t.Fatalf("pruned %d rows, want 2", n)
	}
}

func TestBlobRoundTrip(t *testing.T) {
	emb := []float32{0, 1.5, -2.25, 3e-8}
	got := blobToEmbedding(embeddingToBlob(emb))
	if !reflect.DeepEqual(got, emb) {
		t.Fatalf("blob round trip = %v, want %v", got, emb)
	}
	if blobToEmbedding(nil) != nil {
		t.Fatal("empty blob should decode to nil")
	}
}
