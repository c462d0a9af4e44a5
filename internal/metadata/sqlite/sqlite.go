// Package sqlite is a SQLite-backed metadata store using the cgo-free
// modernc driver.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"ragh/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS passages (
	id         TEXT PRIMARY KEY,
	doc_id     TEXT NOT NULL,
	source     TEXT NOT NULL,
	start_char INTEGER NOT NULL,
	end_char   INTEGER NOT NULL,
	text       TEXT NOT NULL,
	preview    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_passages_doc ON passages(doc_id);
`

// Store persists passage metadata in a SQLite database file.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
// WAL mode keeps concurrent ingestion and query readers from blocking.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Put stores meta under id, overwriting any previous record.
func (s *Store) Put(id string, meta domain.PassageMeta) error {
	_, err := s.db.Exec(`
		INSERT INTO passages (id, doc_id, source, start_char, end_char, text, preview)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			doc_id = excluded.doc_id,
			source = excluded.source,
			start_char = excluded.start_char,
			end_char = excluded.end_char,
			text = excluded.text,
			preview = excluded.preview`,
		id, meta.DocID, meta.Source, meta.StartChar, meta.EndChar, meta.Text, meta.Preview)
	return err
}

// Get returns the metadata for id or ErrNotFound.
func (s *Store) Get(id string) (domain.PassageMeta, error) {
	var meta domain.PassageMeta
	err := s.db.QueryRow(`
		SELECT doc_id, source, start_char, end_char, text, preview
		FROM passages WHERE id = ?`, id).
		Scan(&meta.DocID, &meta.Source, &meta.StartChar, &meta.EndChar, &meta.Text, &meta.Preview)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.PassageMeta{}, fmt.Errorf("%w: passage %q", domain.ErrNotFound, id)
	}
	if err != nil {
		return domain.PassageMeta{}, err
	}
	return meta, nil
}

// GetMany resolves the given ids in one query, omitting missing ones.
func (s *Store) GetMany(ids []string) (map[string]domain.PassageMeta, error) {
	out := make(map[string]domain.PassageMeta, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := s.db.Query(`
		SELECT id, doc_id, source, start_char, end_char, text, preview
		FROM passages WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		var meta domain.PassageMeta
		if err := rows.Scan(&id, &meta.DocID, &meta.Source, &meta.StartChar, &meta.EndChar, &meta.Text, &meta.Preview); err != nil {
			return nil, err
		}
		out[id] = meta
	}
	return out, rows.Err()
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
