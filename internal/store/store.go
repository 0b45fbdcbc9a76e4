// Package store persists the scanned vault in SQLite: one row per markdown
// file, carrying its snippet and, once computed, its embedding.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a document path has no row.
var ErrNotFound = errors.New("store: document not found")

// Document is one indexed markdown file.
type Document struct {
	Path      string
	Snippet   string
	Model     string    // embedding model name, "" until embedded
	Embedding []float32 // nil until embedded
}

// Store wraps the SQLite handle.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the document store at the given path.
func Open(path string) (*Store, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			path        TEXT PRIMARY KEY,
			snippet     TEXT NOT NULL,
			embedding   BLOB,
			model       TEXT NOT NULL DEFAULT '',
			scanned_at  TEXT NOT NULL,
			embedded_at TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_model ON documents(model)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

// UpsertSnippet records a scanned file. A changed snippet invalidates the
// stored embedding so the document shows up as pending again; an unchanged
// snippet keeps it.
func (s *Store) UpsertSnippet(path, snippet string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(
		`INSERT INTO documents (path, snippet, scanned_at) VALUES (?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET
			snippet    = excluded.snippet,
			scanned_at = excluded.scanned_at,
			embedding  = CASE WHEN documents.snippet = excluded.snippet
			                  THEN documents.embedding ELSE NULL END,
			model      = CASE WHEN documents.snippet = excluded.snippet
			                  THEN documents.model ELSE '' END`,
		path, snippet, now,
	)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", path, err)
	}
	return nil
}

// Get returns a single document by path.
func (s *Store) Get(path string) (Document, error) {
	var doc Document
	var blob []byte
	err := s.db.QueryRow(
		`SELECT path, snippet, model, embedding FROM documents WHERE path = ?`,
		path,
	).Scan(&doc.Path, &doc.Snippet, &doc.Model, &blob)
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return Document{}, fmt.Errorf("get %s: %w", path, err)
	}
	doc.Embedding = blobToEmbedding(blob)
	return doc, nil
}

// Pending lists documents that still need an embedding for the given
// model: never embedded, or embedded with a different model. Results come
// back in path order.
func (s *Store) Pending(model string) ([]Document, error) {
	rows, err := s.db.Query(
		`SELECT path, snippet FROM documents
		 WHERE embedding IS NULL OR model != ?
		 ORDER BY path`,
		model,
	)
	if err != nil {
		return nil, fmt.Errorf("query pending: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.Path, &d.Snippet); err != nil {
			return nil, fmt.Errorf("scan pending row: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// SetEmbedding stores a computed embedding for a document.
func (s *Store) SetEmbedding(path, model string, emb []float32) error {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(
		`UPDATE documents SET embedding = ?, model = ?, embedded_at = ? WHERE path = ?`,
		embeddingToBlob(emb), model, now, path,
	)
	if err != nil {
		return fmt.Errorf("set embedding %s: %w", path, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set embedding %s: %w", path, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return nil
}

// Embeddings loads the full path→vector map for one analysis run. Documents
// without an embedding are skipped.
func (s *Store) Embeddings() (map[string][]float32, error) {
	rows, err := s.db.Query(
		`SELECT path, embedding FROM documents WHERE embedding IS NOT NULL`,
	)
	if err != nil {
		return nil, fmt.Errorf("query embeddings: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]float32)
	for rows.Next() {
		var path string
		var blob []byte
		if err := rows.Scan(&path, &blob); err != nil {
			return nil, fmt.Errorf("scan embedding row: %w", err)
		}
		out[path] = blobToEmbedding(blob)
	}
	return out, rows.Err()
}

// Count returns the number of indexed documents.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM documents`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return n, nil
}

// Prune removes rows whose path is not in keep, so deleted vault files
// drop out of analysis after the next scan.
func (s *Store) Prune(keep []string) (int, error) {
	if len(keep) == 0 {
		res, err := s.db.Exec(`DELETE FROM documents`)
		if err != nil {
			return 0, fmt.Errorf("prune: %w", err)
		}
		n, _ := res.RowsAffected()
		return int(n), nil
	}

	placeholders := strings.Repeat("?,", len(keep)-1) + "?"
	args := make([]any, len(keep))
	for i, p := range keep {
		args[i] = p
	}
	res, err := s.db.Exec(
		`DELETE FROM documents WHERE path NOT IN (`+placeholders+`)`, args...,
	)
	if err != nil {
		return 0, fmt.Errorf("prune: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
