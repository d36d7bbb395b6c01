package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/conorfennell/knolstudy/internal/domain"
)

// LoadNotes retrieves every note in collection order.
func (db *DB) LoadNotes(ctx context.Context) ([]domain.Note, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, title, content, subject, tags, created_at, updated_at
		FROM notes ORDER BY position, rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to load notes: %w", err)
	}
	defer rows.Close()

	var notes []domain.Note
	for rows.Next() {
		var (
			n    domain.Note
			tags string
		)
		if err := rows.Scan(&n.ID, &n.Title, &n.Content, &n.Subject, &tags, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan note row: %w", err)
		}
		if n.Tags, err = decodeTags(tags); err != nil {
			return nil, fmt.Errorf("failed to decode tags of note %s: %w", n.ID, err)
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// SaveNotes replaces the whole note collection.
func (db *DB) SaveNotes(ctx context.Context, notes []domain.Note) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM notes`); err != nil {
			return fmt.Errorf("failed to clear notes: %w", err)
		}
		for i, n := range notes {
			tags, err := encodeTags(n.Tags)
			if err != nil {
				return fmt.Errorf("failed to encode tags of note %s: %w", n.ID, err)
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO notes (id, title, content, subject, tags, position, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			`, n.ID, n.Title, n.Content, n.Subject, tags, i, n.CreatedAt, n.UpdatedAt); err != nil {
				return fmt.Errorf("failed to insert note %s: %w", n.ID, err)
			}
		}
		return nil
	})
}
