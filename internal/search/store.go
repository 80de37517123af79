package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/minjae-ko/chatmarks/internal/db"
)

// Store persists search documents in SQLite and answers substring
// queries against them.
type Store struct {
	db *db.DB
}

func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// ReplaceAll swaps the whole document table for docs in one
// transaction.
func (s *Store) ReplaceAll(ctx context.Context, docs []Document) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM search_documents`); err != nil {
		return fmt.Errorf("clearing documents: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO search_documents (id, chat_id, message_id, kind, content)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, doc := range docs {
		if _, err := stmt.ExecContext(ctx, doc.ID, doc.ChatID, doc.MessageID, string(doc.Kind), doc.Content); err != nil {
			return fmt.Errorf("inserting document %s: %w", doc.ID, err)
		}
	}
	return tx.Commit()
}

// Substring returns documents whose content contains the query. SQLite
// LIKE is case-insensitive for ASCII, which matches how people search
// their own notes.
func (s *Store) Substring(ctx context.Context, query string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 10
	}

	pattern := "%" + escapeLike(query) + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, chat_id, message_id, kind, content
		FROM search_documents
		WHERE content LIKE ? ESCAPE '\'
		ORDER BY chat_id, message_id
		LIMIT ?`, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var kind string
		if err := rows.Scan(&r.ID, &r.ChatID, &r.MessageID, &kind, &r.Content); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		r.Kind = Kind(kind)
		r.Similarity = 1
		results = append(results, r)
	}
	return results, rows.Err()
}

// Count reports how many documents are stored.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM search_documents`).Scan(&n)
	return n, err
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
