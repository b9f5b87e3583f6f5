// Package sqliteindex is an embedded search backend: documents live in a
// SQLite table mirrored into an FTS5 table by triggers.
package sqliteindex

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/dalemusser/instructorsearch/internal/app/search/searchdoc"
	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

const schema = `
CREATE TABLE IF NOT EXISTS search_documents (
	id TEXT PRIMARY KEY,
	searchable_text TEXT NOT NULL
);

CREATE VIRTUAL TABLE IF NOT EXISTS search_documents_fts USING fts5(
	searchable_text,
	content='search_documents',
	content_rowid='rowid'
);

CREATE TRIGGER IF NOT EXISTS search_documents_ai AFTER INSERT ON search_documents BEGIN
	INSERT INTO search_documents_fts(rowid, searchable_text)
	VALUES (new.rowid, new.searchable_text);
END;

CREATE TRIGGER IF NOT EXISTS search_documents_ad AFTER DELETE ON search_documents BEGIN
	INSERT INTO search_documents_fts(search_documents_fts, rowid, searchable_text)
	VALUES ('delete', old.rowid, old.searchable_text);
END;

CREATE TRIGGER IF NOT EXISTS search_documents_au AFTER UPDATE ON search_documents BEGIN
	INSERT INTO search_documents_fts(search_documents_fts, rowid, searchable_text)
	VALUES ('delete', old.rowid, old.searchable_text);
	INSERT INTO search_documents_fts(rowid, searchable_text)
	VALUES (new.rowid, new.searchable_text);
END;
`

type Index struct {
	db *sql.DB
}

var _ searchdoc.Index = (*Index)(nil)

// Open opens (creating if needed) the database at path.
func Open(path string) (*Index, error) {
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open search db: %w", err)
	}
	if path == MemoryPath {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	} else if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	return &Index{db: db}, nil
}

func (ix *Index) EnsureSchema(ctx context.Context) error {
	if _, err := ix.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create search schema: %w", err)
	}
	return nil
}

func (ix *Index) Upsert(ctx context.Context, doc searchdoc.Document) error {
	_, err := ix.db.ExecContext(ctx,
		`INSERT INTO search_documents (id, searchable_text) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET searchable_text = excluded.searchable_text`,
		doc.ID, doc.SearchableText)
	if err != nil {
		return fmt.Errorf("upsert %q: %w", doc.ID, err)
	}
	return nil
}

func (ix *Index) Delete(ctx context.Context, id string) error {
	if _, err := ix.db.ExecContext(ctx, `DELETE FROM search_documents WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete %q: %w", id, err)
	}
	return nil
}

// Query returns documents containing every term of text, best bm25 first.
func (ix *Index) Query(ctx context.Context, text string, limit int) ([]searchdoc.Hit, error) {
	match := sanitizeQuery(text)
	if match == "" || limit <= 0 {
		return []searchdoc.Hit{}, nil
	}

	rows, err := ix.db.QueryContext(ctx, `
		SELECT d.id, -f.rank
		  FROM search_documents_fts f
		  JOIN search_documents d ON d.rowid = f.rowid
		 WHERE search_documents_fts MATCH ?
		 ORDER BY f.rank, d.id
		 LIMIT ?`, match, limit)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	hits := []searchdoc.Hit{}
	for rows.Next() {
		var h searchdoc.Hit
		if err := rows.Scan(&h.ID, &h.Score); err != nil {
			return nil, fmt.Errorf("scan hit: %w", err)
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

func (ix *Index) Ping(ctx context.Context) error {
	return ix.db.PingContext(ctx)
}

func (ix *Index) Close() error {
	return ix.db.Close()
}

// sanitizeQuery turns free text into an FTS5 expression of quoted terms,
// split the way the unicode61 tokenizer splits indexed text. Quoting keeps
// words like AND or NEAR from being read as operators.
func sanitizeQuery(q string) string {
	terms := strings.FieldsFunc(q, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for i, t := range terms {
		terms[i] = `"` + t + `"`
	}
	return strings.Join(terms, " ")
}
